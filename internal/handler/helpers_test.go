package handler_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"

	"github.com/leca/flipbook/internal/config"
	"github.com/leca/flipbook/internal/database"
	"github.com/leca/flipbook/internal/router"
	"github.com/stretchr/testify/require"
)

// testServer creates a test HTTP server backed by in-memory SQLite. The
// store comes up with the four seeded default pages.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	return testServerWithConfig(t, &config.Config{
		CORSOrigins:    []string{"*"},
		MaxUploadBytes: config.DefaultMaxUploadBytes,
	})
}

func testServerWithConfig(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()

	db, err := database.NewSQLiteDB("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := router.New(db, cfg)
	ts := httptest.NewServer(srv.Router)
	t.Cleanup(ts.Close)
	return ts
}

// doJSON issues a request with an optional JSON body and returns the
// response.
func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// decodeResponse decodes the JSON body into the provided target.
func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target))
}

// pageResult and blockResult mirror the JSON shapes returned by the API.
type pageResult struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	SortOrder int    `json:"sortOrder"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type blockResult struct {
	ID        int64  `json:"id"`
	PageID    int64  `json:"pageId"`
	BlockType string `json:"blockType"`
	Content   string `json:"content"`
	SortOrder int    `json:"sortOrder"`
}

type errorResult struct {
	Error string `json:"error"`
}

// createPage is a helper that creates a page and returns it.
func createPage(t *testing.T, ts *httptest.Server, title string) pageResult {
	t.Helper()
	resp := doJSON(t, "POST", ts.URL+"/api/pages", map[string]string{"title": title})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var p pageResult
	decodeResponse(t, resp, &p)
	return p
}

// makePNG encodes a small valid PNG image in memory.
func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

// multipartImageBody builds a multipart body with one "image" field whose
// part carries the given content type.
func multipartImageBody(t *testing.T, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	fw, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

// uploadImage posts a multipart upload and returns the response.
func uploadImage(t *testing.T, ts *httptest.Server, fileName, contentType string, content []byte) *http.Response {
	t.Helper()
	body, formType := multipartImageBody(t, fileName, contentType, content)
	resp, err := http.Post(ts.URL+"/api/uploads", formType, body)
	require.NoError(t, err)
	return resp
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// uploadPath extracts the request path from an upload URL.
func uploadPath(t *testing.T, url string) string {
	t.Helper()
	idx := strings.Index(url, "/api/uploads/")
	require.GreaterOrEqual(t, idx, 0, "upload URL %q must contain /api/uploads/", url)
	return url[idx:]
}
