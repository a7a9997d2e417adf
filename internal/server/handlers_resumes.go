package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/resume-studio/internal/schemas"
	"github.com/jonathan/resume-studio/internal/server/middleware"
	"github.com/jonathan/resume-studio/internal/types"
)

// Paging defaults
const (
	defaultPageSize = 10
	maxPageSize     = 100
	maxBodyBytes    = 1 << 20
)

// handleListResumes returns the caller's resumes, paginated
func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	docs, total, err := s.resumes.ListOwn(r.Context(), callerID(r), page)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageOf(r, page, docs, total))
}

// handleListPublicResumes returns public resumes of other users, paginated
func (s *Server) handleListPublicResumes(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	docs, total, err := s.resumes.ListPublic(r.Context(), callerID(r), page)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageOf(r, page, docs, total))
}

// handleListFavorites returns every resume the caller has favorited
func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	docs, err := s.resumes.ListFavorites(r.Context(), callerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// handleCreateResume stores a new resume for the caller
func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeSubmission(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	doc, err := s.resumes.Create(r.Context(), callerID(r), payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// handleGetResume returns one resume
func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, err := s.resumes.Get(r.Context(), callerID(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleReplaceResume overwrites one of the caller's resumes
func (s *Server) handleReplaceResume(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	payload, err := decodeSubmission(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	doc, err := s.resumes.Replace(r.Context(), callerID(r), id, payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleUpdateResumeStatus changes only the status of one of the caller's resumes
func (s *Server) handleUpdateResumeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req types.StatusUpdate
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		writeFieldErrors(w, extractValidationErrors(err))
		return
	}
	doc, err := s.resumes.UpdateStatus(r.Context(), callerID(r), id, req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleDeleteResume removes one of the caller's resumes
func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.resumes.Delete(r.Context(), callerID(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleToggleFavorite flips the caller's favorite on a resume
func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := s.resumes.ToggleFavorite(r.Context(), callerID(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleViewLink returns the shareable view URL of a resume
func (s *Server) handleViewLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := s.resumes.Get(r.Context(), callerID(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	base := s.publicBaseURL
	if base == "" {
		base = requestBaseURL(r)
	}
	link := fmt.Sprintf("%s/resumes/%d/view", strings.TrimRight(base, "/"), id)
	writeJSON(w, http.StatusOK, types.ViewLink{URL: link})
}

// handleViewResume returns a resume for display and counts the view
func (s *Server) handleViewResume(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, err := s.resumes.View(r.Context(), callerID(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleDownloadResume returns a resume as a JSON attachment and counts the download
func (s *Server) handleDownloadResume(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, err := s.resumes.Download(r.Context(), callerID(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": downloadFilename(doc),
	}))
	writeJSON(w, http.StatusOK, doc)
}

// handleUserStats returns engagement totals for the caller's resumes
func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.resumes.Stats(r.Context(), callerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// decodeSubmission reads a create or replace body, checking its structure against
// the submission schema before decoding it.
func decodeSubmission(w http.ResponseWriter, r *http.Request) (types.SubmissionPayload, error) {
	var p types.SubmissionPayload
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return p, &ErrValidation{Field: "body", Message: "request body too large or unreadable"}
	}
	if err := schemas.ValidateSubmission(body); err != nil {
		var vErr *schemas.ValidationError
		if errors.As(err, &vErr) {
			return p, &ErrFieldValidation{Fields: vErr.Errors}
		}
		return p, &ErrValidation{Field: "body", Message: "Invalid request body"}
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return p, &ErrValidation{Field: "body", Message: "Invalid request body"}
	}
	return p, nil
}

// parsePage reads ordering, page and page_size from the query string.
func parsePage(r *http.Request) (PageRequest, error) {
	q := r.URL.Query()
	page := PageRequest{Ordering: q.Get("ordering"), Page: 1, PageSize: defaultPageSize}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return page, &ErrValidation{Field: "page", Message: "Invalid page."}
		}
		page.Page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return page, &ErrValidation{Field: "page_size", Message: "Invalid page size."}
		}
		page.PageSize = min(n, maxPageSize)
	}
	return page, nil
}

// pageOf wraps results with the total count and neighbouring page links.
func pageOf(r *http.Request, page PageRequest, docs []types.Resume, total int) types.ResumePage {
	out := types.ResumePage{Count: total, Results: docs}
	if page.Page*page.PageSize < total {
		next := pageLink(r, page.Page+1)
		out.Next = &next
	}
	if page.Page > 1 {
		prev := pageLink(r, page.Page-1)
		out.Previous = &prev
	}
	return out
}

func pageLink(r *http.Request, page int) string {
	q := r.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{Path: r.URL.Path, RawQuery: q.Encode()}
	return requestBaseURL(r) + u.String()
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// downloadFilename derives an attachment name from the resume title.
func downloadFilename(doc *types.Resume) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == '"' || r < ' ':
			return '_'
		}
		return r
	}, strings.TrimSpace(doc.Title))
	if name == "" {
		name = fmt.Sprintf("resume-%d", doc.ID)
	}
	return name + ".json"
}

// pathID parses the {id} path value, writing 404 when it is not a resume ID.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}

// callerID returns the authenticated user, or uuid.Nil for anonymous requests.
func callerID(r *http.Request) uuid.UUID {
	id, err := middleware.GetUserID(r)
	if err != nil {
		return uuid.Nil
	}
	return id
}
