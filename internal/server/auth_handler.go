package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-studio/internal/types"
	"github.com/jonathan/resume-studio/internal/validation"
)

// AuthHandler handles registration and login requests.
type AuthHandler struct {
	userService *UserService
	jwtService  *JWTService
	validator   *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		validator:   newRequestValidator(),
	}
}

// newRequestValidator reports field errors under their JSON names.
func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Register creates an account. It responds 201 with the user and does not log in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeFieldErrors(w, extractValidationErrors(err))
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login authenticates and responds with the user and a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeFieldErrors(w, extractValidationErrors(err))
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		log.Printf("[auth] failed to generate token: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	writeJSON(w, http.StatusOK, types.LoginResponse{User: user, Token: token})
}

// Profile responds with the caller's account.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Profile(r.Context(), callerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ChangePassword replaces the caller's password. Issued tokens stay valid until they expire.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req types.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeFieldErrors(w, extractValidationErrors(err))
		return
	}

	if err := h.userService.ChangePassword(r.Context(), callerID(r), &req); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

// DeleteAccount removes the caller's account, resumes and favorites.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if err := h.userService.DeleteAccount(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}
	log.Printf("[auth] deleted account %s", userID)
	w.WriteHeader(http.StatusNoContent)
}

// extractValidationErrors converts validator errors to field errors keyed by JSON name.
func extractValidationErrors(err error) []types.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []types.FieldError{{Field: "non_field_errors", Message: "invalid request"}}
	}
	out := make([]types.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg := "Invalid value (" + fe.Tag() + ")."
		switch fe.Tag() {
		case "required":
			msg = "This field is required."
		case "email":
			msg = "Enter a valid email address."
		case "min":
			msg = "Ensure this field has at least " + fe.Param() + " characters."
		case "max":
			msg = "Ensure this field has no more than " + fe.Param() + " characters."
		case "alphanum":
			msg = "Only letters and digits are allowed."
		case "nefield":
			msg = "The new password must differ from the current one."
		}
		out = append(out, types.FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

// writeFieldErrors writes a 400 carrying nested field errors.
func writeFieldErrors(w http.ResponseWriter, fields []types.FieldError) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"errors": validation.Nest(fields),
	})
}

// writeServiceError maps a service error to its status. Internal errors are logged, not exposed.
func writeServiceError(w http.ResponseWriter, err error) {
	var fv *ErrFieldValidation
	if errors.As(err, &fv) {
		writeFieldErrors(w, fv.Fields)
		return
	}
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[server] internal error: %v", err)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// writeError writes an error JSON response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
