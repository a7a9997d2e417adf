package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonathan/resume-studio/internal/actions"
	"github.com/jonathan/resume-studio/internal/form"
	"github.com/jonathan/resume-studio/internal/types"
	"github.com/jonathan/resume-studio/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, token string) (*Client, *actions.MemorySessionStore) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	store := actions.NewMemorySessionStore(token)
	c, err := New(srv.URL, store, nil)
	require.NoError(t, err)
	return c, store
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("not a url", nil, nil)
	assert.Error(t, err)
}

func TestClient_SendsBearerToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "/resumes/42", r.URL.Path)
		writeJSON(w, http.StatusOK, types.Resume{ID: 42, Title: "Mine"})
	}, "secret")

	r, err := c.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), r.ID)
}

func TestClient_ListQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/public-resumes", r.URL.Path)
		assert.Equal(t, "-updated_at", r.URL.Query().Get("ordering"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "", r.URL.Query().Get("page_size"))
		writeJSON(w, http.StatusOK, types.ResumePage{Count: 1, Results: []types.Resume{{ID: 7}}})
	}, "")

	page, err := c.ListPublic(context.Background(), actions.ListOptions{Ordering: "-updated_at", Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, int64(7), page.Results[0].ID)
}

func TestClient_LoginStoresToken(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req types.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ada", req.Username)
		writeJSON(w, http.StatusOK, types.LoginResponse{Token: "issued"})
	}, "")

	_, err := c.Login(context.Background(), types.LoginRequest{Username: "ada", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "issued", store.Token())

	require.NoError(t, c.Logout())
	assert.Equal(t, "", store.Token())
}

func TestClient_UnauthorizedClearsSession(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token expired"})
	}, "stale")

	_, err := c.List(context.Background(), actions.ListOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, actions.ErrUnauthorized))
	assert.Equal(t, "", store.Token())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "token expired", apiErr.Message)
}

func TestClient_NotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	}, "t")

	_, err := c.Get(context.Background(), 9)
	assert.True(t, errors.Is(err, actions.ErrNotFound))
	assert.False(t, errors.Is(err, actions.ErrUnauthorized))
}

func TestClient_ServerValidationFlattened(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "validation failed",
			"errors": map[string]any{
				"personal_details": map[string]any{"email": []string{"Enter a valid email address."}},
				"title":            []string{"This field may not be blank."},
			},
		})
	}, "t")

	_, err := c.Create(context.Background(), types.SubmissionPayload{})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, []types.FieldError{
		{Field: "personal_details.email", Message: "Enter a valid email address."},
		{Field: "title", Message: "This field may not be blank."},
	}, apiErr.Fields)
}

func TestClient_BareFieldErrorBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"title": []string{"required"}})
	}, "t")

	_, err := c.Replace(context.Background(), 1, types.SubmissionPayload{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, []types.FieldError{{Field: "title", Message: "required"}}, apiErr.Fields)
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, nil, nil)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), 1)
	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	assert.NotNil(t, errors.Unwrap(tErr))
}

func TestClient_ToggleFavoriteAndStatus(t *testing.T) {
	fav := true
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/resumes/42/favorite":
			writeJSON(w, http.StatusOK, types.FavoriteResult{IsFavorited: true, Resume: types.Resume{ID: 42, IsFavorited: &fav}})
		case r.Method == http.MethodPatch && r.URL.Path == "/resumes/42/status":
			var body types.StatusUpdate
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			writeJSON(w, http.StatusOK, types.Resume{ID: 42, Status: body.Status})
		case r.Method == http.MethodDelete && r.URL.Path == "/resumes/42":
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/resumes/42/link":
			writeJSON(w, http.StatusOK, types.ViewLink{URL: "http://x/resumes/42/view"})
		case r.URL.Path == "/user/stats":
			writeJSON(w, http.StatusOK, types.UserStats{Views: 3})
		case r.URL.Path == "/favorites":
			writeJSON(w, http.StatusOK, []types.Resume{{ID: 42}})
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}, "t")
	ctx := context.Background()

	res, err := c.ToggleFavorite(ctx, 42)
	require.NoError(t, err)
	assert.True(t, res.IsFavorited)
	assert.True(t, res.Resume.Favorited())

	r, err := c.UpdateStatus(ctx, 42, types.StatusArchived)
	require.NoError(t, err)
	assert.Equal(t, types.StatusArchived, r.Status)

	require.NoError(t, c.Delete(ctx, 42))

	link, err := c.ViewURL(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "http://x/resumes/42/view", link)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Views)

	favs, err := c.ListFavorites(ctx)
	require.NoError(t, err)
	assert.Len(t, favs, 1)
}

func TestClient_Download(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="resume-42.json"`)
		_, _ = w.Write([]byte(`{"id":42}`))
	}, "t")

	d, err := c.Download(context.Background(), 42)
	require.NoError(t, err)
	defer func() { _ = d.Body.Close() }()

	assert.Equal(t, "resume-42.json", d.Filename)
	data, err := io.ReadAll(d.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":42}`, string(data))
}

func TestClient_CreateDraftWithUnparseableGrade(t *testing.T) {
	hits := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		edu := body["education"].([]any)[0].(map[string]any)
		v, ok := edu["cgpa"]
		assert.True(t, ok, "cgpa is sent")
		assert.Nil(t, v, "an unparseable grade is sent as null")
		writeJSON(w, http.StatusCreated, types.Resume{ID: 5, Title: "My draft", Status: types.StatusDraft})
	}, "secret")

	doc := form.NewEditable()
	doc.Title = "My draft"
	doc.Education = []types.EditableEducation{{Institution: "MIT", Grade: "3.x"}}
	require.Empty(t, validation.Validate(doc, types.StatusDraft))

	stored, err := c.Create(context.Background(), form.ToSubmission(doc))
	require.NoError(t, err)
	assert.Equal(t, int64(5), stored.ID)
	assert.Equal(t, 1, hits)
	assert.Equal(t, "3.x", doc.Education[0].Grade, "the form keeps the typed grade")
}

func TestClient_AccountCalls(t *testing.T) {
	var calls []string
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/me":
			writeJSON(w, http.StatusOK, types.User{Username: "ada", Email: "ada@example.com"})
		case r.Method == http.MethodPut && r.URL.Path == "/me/password":
			var req types.ChangePasswordRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.OldPassword != "analytical" {
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"error":  "validation failed",
					"errors": map[string]any{"old_password": []string{"Incorrect password"}},
				})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
		case r.Method == http.MethodDelete && r.URL.Path == "/me":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}, "secret")
	ctx := context.Background()

	me, err := c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada", me.Username)

	err = c.ChangePassword(ctx, types.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "difference"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	require.NoError(t, c.ChangePassword(ctx, types.ChangePasswordRequest{OldPassword: "analytical", NewPassword: "difference"}))

	require.NoError(t, c.DeleteAccount(ctx))
	assert.Equal(t, "", store.Token(), "the session is dropped with the account")
	assert.Equal(t, []string{"GET /me", "PUT /me/password", "PUT /me/password", "DELETE /me"}, calls)
}
