// Package client talks to the enhancement API over HTTP.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/ultraview/enhancer/internal/transform"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// EnhanceResult is the answer to a successful upload.
type EnhanceResult struct {
	DownloadURL string `json:"downloadUrl"`
}

// Token returns the artifact token carried by the download URL.
func (r *EnhanceResult) Token() string {
	u, err := url.Parse(r.DownloadURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("file")
}

// Client is an HTTP client for the enhancement API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the server at baseURL, e.g. "http://localhost:8080".
// No request timeout is set; cancel through the context instead.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Enhance uploads r as the multipart field "file" named name. Settings are
// sent as JSON in the "settings" field when non-nil. The body is streamed,
// so r is never held in memory as a whole.
func (c *Client) Enhance(ctx context.Context, name string, r io.Reader, settings *transform.Settings) (*EnhanceResult, error) {
	var settingsJSON []byte
	if settings != nil {
		var err error
		if settingsJSON, err = json.Marshal(settings); err != nil {
			return nil, fmt.Errorf("encode settings: %w", err)
		}
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUpload(mw, name, r, settingsJSON))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve("/api/enhance"), pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	// Unblocks the writer goroutine if the transport stopped reading early.
	pr.Close()
	if err != nil {
		return nil, fmt.Errorf("upload %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp)
	}

	var result EnhanceResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if result.DownloadURL == "" {
		return nil, fmt.Errorf("response carries no downloadUrl")
	}
	return &result, nil
}

func writeUpload(mw *multipart.Writer, name string, r io.Reader, settingsJSON []byte) error {
	if settingsJSON != nil {
		if err := mw.WriteField("settings", string(settingsJSON)); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return mw.Close()
}

// Download fetches downloadURL (absolute, or relative to the server) into w
// and returns the filename announced by the server.
func (c *Client) Download(ctx context.Context, downloadURL string, w io.Writer) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(downloadURL), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", readAPIError(resp)
	}

	filename := attachmentName(resp.Header.Get("Content-Disposition"))
	if filename == "" {
		filename = req.URL.Query().Get("file")
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("download %q: %w", filename, err)
	}
	return filename, nil
}

func (c *Client) resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return c.baseURL.String() + ref
	}
	return c.baseURL.ResolveReference(u).String()
}

func attachmentName(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// readAPIError turns an error response into an *APIError. JSON bodies carry
// {"error": "..."}; download errors are plain text.
func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))

	msg := strings.TrimSpace(string(body))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
