// Package client implements actions.Service over the backing service's HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/resume-studio/internal/actions"
	"github.com/jonathan/resume-studio/internal/types"
	"github.com/jonathan/resume-studio/internal/validation"
)

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for API requests.
const DefaultUserAgent = "resume-studio/1.0"

// Options configures a Client.
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// DefaultOptions returns sensible defaults for talking to the API.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client talks to the backing service. It is safe for concurrent use.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	session   actions.SessionStore
}

var _ actions.Service = (*Client)(nil)

// New returns a client for the API rooted at baseURL. The bearer token is read
// from session on every request and cleared when the service answers 401.
func New(baseURL string, session actions.SessionStore, opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q", baseURL)
	}
	if session == nil {
		session = actions.NewMemorySessionStore("")
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Client{baseURL: u, http: hc, userAgent: ua, session: session}, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, req types.RegisterRequest) (*types.User, error) {
	var user types.User
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates and stores the issued token in the session store.
func (c *Client) Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error) {
	var resp types.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	if err := c.session.SetToken(resp.Token); err != nil {
		return nil, fmt.Errorf("failed to store session token: %w", err)
	}
	return &resp, nil
}

// Logout forgets the session token.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// Profile returns the signed-in account.
func (c *Client) Profile(ctx context.Context) (*types.User, error) {
	var user types.User
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword replaces the signed-in account's password. The session token stays valid.
func (c *Client) ChangePassword(ctx context.Context, req types.ChangePasswordRequest) error {
	return c.do(ctx, http.MethodPut, "/me/password", nil, req, nil)
}

// DeleteAccount removes the signed-in account with its resumes and favorites, then
// forgets the session token.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/me", nil, nil, nil); err != nil {
		return err
	}
	if err := c.session.Clear(); err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	return nil
}

// List returns the caller's own resumes.
func (c *Client) List(ctx context.Context, opts actions.ListOptions) (*types.ResumePage, error) {
	return c.listPage(ctx, "/resumes", opts)
}

// ListPublic returns the public feed.
func (c *Client) ListPublic(ctx context.Context, opts actions.ListOptions) (*types.ResumePage, error) {
	return c.listPage(ctx, "/public-resumes", opts)
}

// ListFavorites returns the caller's favorited resumes.
func (c *Client) ListFavorites(ctx context.Context) ([]types.Resume, error) {
	var out []types.Resume
	if err := c.do(ctx, http.MethodGet, "/favorites", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) listPage(ctx context.Context, path string, opts actions.ListOptions) (*types.ResumePage, error) {
	q := url.Values{}
	if opts.Ordering != "" {
		q.Set("ordering", opts.Ordering)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(opts.PageSize))
	}
	var page types.ResumePage
	if err := c.do(ctx, http.MethodGet, path, q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get fetches one resume.
func (c *Client) Get(ctx context.Context, id int64) (*types.Resume, error) {
	var r types.Resume
	if err := c.do(ctx, http.MethodGet, resumePath(id), nil, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Create stores a new resume.
func (c *Client) Create(ctx context.Context, p types.SubmissionPayload) (*types.Resume, error) {
	var r types.Resume
	if err := c.do(ctx, http.MethodPost, "/resumes", nil, p, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Replace overwrites a resume wholesale.
func (c *Client) Replace(ctx context.Context, id int64, p types.SubmissionPayload) (*types.Resume, error) {
	var r types.Resume
	if err := c.do(ctx, http.MethodPut, resumePath(id), nil, p, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateStatus moves a resume to another lifecycle status.
func (c *Client) UpdateStatus(ctx context.Context, id int64, status types.Status) (*types.Resume, error) {
	var r types.Resume
	body := types.StatusUpdate{Status: status}
	if err := c.do(ctx, http.MethodPatch, resumePath(id)+"/status", nil, body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Delete removes a resume.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, resumePath(id), nil, nil, nil)
}

// ToggleFavorite flips the caller's favorite flag on a resume.
func (c *Client) ToggleFavorite(ctx context.Context, id int64) (*types.FavoriteResult, error) {
	var res types.FavoriteResult
	if err := c.do(ctx, http.MethodPost, resumePath(id)+"/favorite", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ViewURL returns a shareable URL for a resume.
func (c *Client) ViewURL(ctx context.Context, id int64) (string, error) {
	var link types.ViewLink
	if err := c.do(ctx, http.MethodGet, resumePath(id)+"/link", nil, nil, &link); err != nil {
		return "", err
	}
	return link.URL, nil
}

// Download streams a rendered resume. The caller must close the body.
func (c *Client) Download(ctx context.Context, id int64) (*actions.Download, error) {
	resp, err := c.send(ctx, http.MethodGet, resumePath(id)+"/download", nil, nil)
	if err != nil {
		return nil, err
	}
	filename := fmt.Sprintf("resume-%d", id)
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return &actions.Download{
		Filename:    filename,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
	}, nil
}

// Stats returns engagement totals across the caller's resumes.
func (c *Client) Stats(ctx context.Context) (*types.UserStats, error) {
	var stats types.UserStats
	if err := c.do(ctx, http.MethodGet, "/user/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func resumePath(id int64) string {
	return "/resumes/" + strconv.FormatInt(id, 10)
}

// do sends a request and decodes a JSON response into out, which may be nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	resp, err := c.send(ctx, method, path, query, in)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Method: method, URL: resp.Request.URL.String(), Cause: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// send performs the request and returns the response only for 2xx statuses.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, in any) (*http.Response, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: u.String(), Cause: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, URL: u.String(), Cause: err}
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.session.Clear(); err != nil {
			log.Printf("[client] failed to clear session after 401: %v", err)
		}
	}
	return nil, decodeAPIError(method, path, resp)
}

func decodeAPIError(method, path string, resp *http.Response) error {
	apiErr := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &TransportError{Method: method, URL: resp.Request.URL.String(), Cause: fmt.Errorf("failed to read error body: %w", err)}
	}

	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
		return apiErr
	}

	for _, key := range []string{"error", "detail", "message"} {
		if msg, ok := body[key].(string); ok {
			apiErr.Message = msg
			delete(body, key)
			break
		}
	}
	if nested, ok := body["errors"]; ok {
		apiErr.Fields = validation.Flatten(nested)
	} else if apiErr.Message == "" && len(body) > 0 {
		apiErr.Fields = validation.Flatten(body)
	}
	return apiErr
}

// IsValidation reports whether err carries server-side field errors.
func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && len(apiErr.Fields) > 0
}
