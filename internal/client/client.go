// Package client is a typed client for the flipbook REST API, mirroring
// the operations the browser data-access layer uses.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/leca/flipbook/internal/model"
)

// APIError is a non-2xx response decoded from the server's {"error"} body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// Client calls the flipbook API at a base URL such as
// "http://localhost:4000".
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the given base URL using http.DefaultClient.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
}

// NewWithHTTPClient creates a Client that uses the supplied *http.Client.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	c := New(baseURL)
	c.httpClient = hc
	return c
}

// do issues a JSON request and decodes the response into out (skipped when
// out is nil or the response is 204).
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError turns a failed response into an *APIError, keeping a generic
// message when the body is not the expected shape.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: "request failed"}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
	}
	return apiErr
}

// Health reports whether the server considers its store reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

// Pages returns all pages in display order.
func (c *Client) Pages(ctx context.Context) ([]*model.Page, error) {
	var pages []*model.Page
	if err := c.do(ctx, http.MethodGet, "/api/pages", nil, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

// CreatePage appends a new page with the given title.
func (c *Client) CreatePage(ctx context.Context, title string) (*model.Page, error) {
	var page model.Page
	body := map[string]string{"title": title}
	if err := c.do(ctx, http.MethodPost, "/api/pages", body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdatePage applies a partial update; nil fields are left unchanged.
func (c *Client) UpdatePage(ctx context.Context, pageID int64, upd model.PageUpdate) (*model.Page, error) {
	body := map[string]interface{}{}
	if upd.Title != nil {
		body["title"] = *upd.Title
	}
	if upd.SortOrder != nil {
		body["sortOrder"] = *upd.SortOrder
	}

	var page model.Page
	path := fmt.Sprintf("/api/pages/%d", pageID)
	if err := c.do(ctx, http.MethodPut, path, body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// DeletePage removes a page and, through cascade, its blocks.
func (c *Client) DeletePage(ctx context.Context, pageID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/pages/%d", pageID), nil, nil)
}

// Blocks returns a page's blocks in display order.
func (c *Client) Blocks(ctx context.Context, pageID int64) ([]*model.Block, error) {
	var blocks []*model.Block
	path := fmt.Sprintf("/api/pages/%d/blocks", pageID)
	if err := c.do(ctx, http.MethodGet, path, nil, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// CreateBlock appends a block to a page.
func (c *Client) CreateBlock(ctx context.Context, pageID int64, blockType, content string) (*model.Block, error) {
	body := map[string]string{"blockType": blockType, "content": content}

	var block model.Block
	path := fmt.Sprintf("/api/pages/%d/blocks", pageID)
	if err := c.do(ctx, http.MethodPost, path, body, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

// UpdateBlock replaces a block's type and content; a nil SortOrder keeps
// the stored ordering.
func (c *Client) UpdateBlock(ctx context.Context, pageID, blockID int64, upd model.BlockUpdate) (*model.Block, error) {
	body := map[string]interface{}{
		"blockType": upd.BlockType,
		"content":   upd.Content,
	}
	if upd.SortOrder != nil {
		body["sortOrder"] = *upd.SortOrder
	}

	var block model.Block
	path := fmt.Sprintf("/api/pages/%d/blocks/%d", pageID, blockID)
	if err := c.do(ctx, http.MethodPut, path, body, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

// DeleteBlock removes a single block.
func (c *Client) DeleteBlock(ctx context.Context, pageID, blockID int64) error {
	path := fmt.Sprintf("/api/pages/%d/blocks/%d", pageID, blockID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// UploadImage uploads image bytes and returns the public URL assigned to
// them, suitable for use as image-block content.
func (c *Client) UploadImage(ctx context.Context, fileName, mimeType string, data io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, fileName))
	header.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return "", fmt.Errorf("write form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/uploads", &buf)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", decodeError(resp)
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return body.URL, nil
}
