// Package client talks to the lostfound HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client is an API client. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL. A nil httpClient uses a
// client with a 30 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Submission is a new item report.
type Submission struct {
	Title        string
	Description  string
	Status       string
	Location     string
	SecretDetail string
	Image        io.Reader
	// Filename is sent with the photo; it defaults to "photo.jpg".
	Filename string
}

// FoundReport reports that a lost item was found.
type FoundReport struct {
	ItemID   int64
	Phone    string
	Image    io.Reader
	Filename string
}

// ListItems fetches every item, newest first.
func (c *Client) ListItems(ctx context.Context) ([]model.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/items", nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	var items []model.Item
	if err := c.do(req, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Submit uploads a new item report and returns the stored item.
func (c *Client) Submit(ctx context.Context, s Submission) (*model.Item, error) {
	fields := map[string]string{
		"title":        s.Title,
		"description":  s.Description,
		"status":       s.Status,
		"location":     s.Location,
		"secretDetail": s.SecretDetail,
	}
	req, err := c.multipart(ctx, "/upload", fields, "image", s.Filename, s.Image)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Success bool `json:"success"`
		model.Item
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

// ReportFound sends a found report and returns the server's message.
func (c *Client) ReportFound(ctx context.Context, r FoundReport) (string, error) {
	fields := map[string]string{
		"itemId": strconv.FormatInt(r.ItemID, 10),
		"phone":  r.Phone,
	}
	req, err := c.multipart(ctx, "/found-report", fields, "foundImage", r.Filename, r.Image)
	if err != nil {
		return "", err
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// VerifySecret checks a claimed secret detail against an item.
func (c *Client) VerifySecret(ctx context.Context, itemID int64, secret string) (bool, error) {
	form := url.Values{"secretDetail": {secret}}
	endpoint := fmt.Sprintf("%s/items/%d/verify", c.baseURL, itemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp struct {
		Verified bool `json:"verified"`
	}
	if err := c.do(req, &resp); err != nil {
		return false, err
	}
	return resp.Verified, nil
}

// multipart builds a multipart POST. A nil file omits the file part.
func (c *Client) multipart(ctx context.Context, path string, fields map[string]string, fileField, filename string, file io.Reader) (*http.Request, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("writing field %s: %w", k, err)
		}
	}
	if file != nil {
		if filename == "" {
			filename = "photo.jpg"
		}
		part, err := w.CreateFormFile(fileField, filename)
		if err != nil {
			return nil, fmt.Errorf("creating file part: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, fmt.Errorf("copying file: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req, nil
}

func (c *Client) do(req *http.Request, target any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
