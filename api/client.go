// Package api is the HTTP client for the docchat backend. It speaks the five
// endpoints of the service contract (list, upload, delete, ingest, chat) and
// validates every response body against explicit types.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrMalformedResponse marks a reply that arrived but did not decode into the
// expected shape. Distinct from transport errors so callers can tell a broken
// backend apart from an unreachable one.
var ErrMalformedResponse = errors.New("malformed backend response")

// Client talks to one docchat backend. A Client is safe for use from a single
// cooperative loop; it holds no mutable state beyond the http.Client.
type Client struct {
	baseURL   string
	http      *http.Client
	sessionID string
}

// New builds a Client for the given base URL. timeout zero means no deadline,
// matching the service's long-running ingestion calls.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: timeout},
		sessionID: uuid.NewString(),
	}
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// SessionID is the per-client conversation id sent with every chat request.
func (c *Client) SessionID() string { return c.sessionID }

// ListPDFs fetches the canonical document set. The returned slice replaces
// any local copy entirely; it is never nil on success.
func (c *Client) ListPDFs(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/pdfs", nil)
	if err != nil {
		return nil, err
	}
	var body ListResponse
	if err := c.do(req, &body); err != nil {
		return nil, err
	}
	if body.PDFs == nil {
		body.PDFs = []string{}
	}
	return body.PDFs, nil
}

// Upload sends one local file as the multipart field "file".
func (c *Client) Upload(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, nil)
}

// Delete removes one document server-side and reports whether the backend
// also rebuilt its index.
func (c *Client) Delete(ctx context.Context, filename string) (DeleteResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/pdfs/"+url.PathEscape(filename), nil)
	if err != nil {
		return DeleteResponse{}, err
	}
	var body DeleteResponse
	if err := c.do(req, &body); err != nil {
		return DeleteResponse{}, err
	}
	return body, nil
}

// Ingest triggers a server-side (re)processing of the current document set.
func (c *Client) Ingest(ctx context.Context) (IngestResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ingest", nil)
	if err != nil {
		return IngestResponse{}, err
	}
	var body IngestResponse
	if err := c.do(req, &body); err != nil {
		return IngestResponse{}, err
	}
	return body, nil
}

// Chat asks a question and returns the answer with its citations.
func (c *Client) Chat(ctx context.Context, message string) (ChatResponse, error) {
	payload, err := json.Marshal(ChatRequest{Message: message})
	if err != nil {
		return ChatResponse{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return ChatResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", c.sessionID)
	var body ChatResponse
	if err := c.do(req, &body); err != nil {
		return ChatResponse{}, err
	}
	return body, nil
}

// do runs the request and decodes a 2xx JSON body into out when out is
// non-nil. Non-2xx statuses surface the server's message when one is present.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", req.Method, req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %s: %s",
			req.Method, req.URL.Path, resp.Status, serverDetail(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: %w: %v", req.Method, req.URL.Path, ErrMalformedResponse, err)
	}
	return nil
}

// serverDetail pulls the human-readable detail out of an error body when the
// backend sent one, falling back to a clipped raw snippet.
func serverDetail(raw []byte) string {
	var body struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Detail != "" {
			return body.Detail
		}
		if body.Message != "" {
			return body.Message
		}
	}
	snippet := strings.TrimSpace(string(raw))
	if len(snippet) > 120 {
		snippet = snippet[:120] + "..."
	}
	if snippet == "" {
		snippet = "no detail"
	}
	return snippet
}
