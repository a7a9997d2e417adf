// Package server provides the HTTP REST API for resume-studio.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/resume-studio/internal/types"
)

// ErrUserExists indicates the username or email is already registered
type ErrUserExists struct {
	Username string
	Email    string
}

func (e *ErrUserExists) Error() string {
	return fmt.Sprintf("username or email already registered: %s, %s", e.Username, e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid username or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrUnauthenticated indicates the route needs a signed-in caller
type ErrUnauthenticated struct{}

func (e *ErrUnauthenticated) Error() string {
	return "authentication required"
}

// ErrResumeNotFound indicates a resume does not exist or is not owned by the caller
type ErrResumeNotFound struct {
	ID int64
}

func (e *ErrResumeNotFound) Error() string {
	return fmt.Sprintf("resume not found: %d", e.ID)
}

// ErrForbidden indicates the caller may not see a resume
type ErrForbidden struct {
	ID int64
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("not authorized to access resume %d", e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrFieldValidation carries every field error of a rejected document
type ErrFieldValidation struct {
	Fields []types.FieldError
}

func (e *ErrFieldValidation) Error() string {
	return fmt.Sprintf("validation failed: %d field errors", len(e.Fields))
}

// HTTPStatus returns the appropriate HTTP status code for an error, looking through wrapping
func HTTPStatus(err error) int {
	for ; err != nil; err = errors.Unwrap(err) {
		switch err.(type) {
		case *ErrUserExists:
			return http.StatusConflict
		case *ErrInvalidCredentials, *ErrUnauthenticated:
			return http.StatusUnauthorized
		case *ErrUserNotFound, *ErrResumeNotFound:
			return http.StatusNotFound
		case *ErrForbidden:
			return http.StatusForbidden
		case *ErrValidation, *ErrFieldValidation:
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}
