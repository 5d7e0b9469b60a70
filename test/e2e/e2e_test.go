//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leca/flipbook/internal/client"
	"github.com/leca/flipbook/internal/config"
	"github.com/leca/flipbook/internal/database"
	"github.com/leca/flipbook/internal/model"
	"github.com/leca/flipbook/internal/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestServer creates a test HTTP server backed by in-memory SQLite.
func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := database.NewSQLiteDB("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		CORSOrigins:    []string{"*"},
		MaxUploadBytes: config.DefaultMaxUploadBytes,
	}
	srv := router.New(db, cfg)
	ts := httptest.NewServer(srv.Router)
	t.Cleanup(ts.Close)
	return ts
}

// makePNG creates a small valid PNG image in memory and returns the bytes.
func makePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))))
	return buf.Bytes()
}

// TestFlipbookFlow walks the whole authoring flow: health check, page
// creation, text and image blocks, reordering, and cascade delete.
func TestFlipbookFlow(t *testing.T) {
	ts := setupTestServer(t)
	c := client.New(ts.URL)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	// Fresh store: seeded defaults.
	pages, err := c.Pages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 4)

	// Author a new page at the end of the book.
	page, err := c.CreatePage(ctx, "A New Chapter")
	require.NoError(t, err)
	assert.Greater(t, page.SortOrder, pages[len(pages)-1].SortOrder)

	// Write a text block, then illustrate it with an upload.
	text, err := c.CreateBlock(ctx, page.ID, model.BlockTypeText, "It was a dark and stormy night.")
	require.NoError(t, err)

	imgBytes := makePNG(t)
	url, err := c.UploadImage(ctx, "storm.png", "image/png", bytes.NewReader(imgBytes))
	require.NoError(t, err)

	picture, err := c.CreateBlock(ctx, page.ID, model.BlockTypeImage, url)
	require.NoError(t, err)
	assert.Greater(t, picture.SortOrder, text.SortOrder)

	// The image URL serves the exact bytes back.
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, imgBytes, got)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	// Move the picture above the text.
	first := 0
	_, err = c.UpdateBlock(ctx, page.ID, picture.ID, model.BlockUpdate{
		BlockType: model.BlockTypeImage,
		Content:   url,
		SortOrder: &first,
	})
	require.NoError(t, err)

	blocks, err := c.Blocks(ctx, page.ID)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, picture.ID, blocks[0].ID)
	assert.Equal(t, text.ID, blocks[1].ID)

	// Tearing out the page removes its blocks; the upload outlives them.
	require.NoError(t, c.DeletePage(ctx, page.ID))
	blocks, err = c.Blocks(ctx, page.ID)
	require.NoError(t, err)
	assert.Empty(t, blocks)

	resp, err = http.Get(url)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
