package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPagesReturnsSeededPages(t *testing.T) {
	ts := testServer(t)

	resp := doJSON(t, "GET", ts.URL+"/api/pages", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pages []pageResult
	decodeResponse(t, resp, &pages)
	require.Len(t, pages, 4)
	assert.Equal(t, "Page 1", pages[0].Title)
	assert.Equal(t, "The End", pages[3].Title)
	for i, p := range pages {
		assert.Equal(t, i+1, p.SortOrder)
	}
}

func TestCreatePageTrimsTitleAndAppends(t *testing.T) {
	ts := testServer(t)

	p := createPage(t, ts, "  My Story  ")
	assert.Equal(t, "My Story", p.Title)
	assert.Equal(t, 5, p.SortOrder, "created after the four seeded pages")

	// Empty titles are allowed.
	empty := createPage(t, ts, "")
	assert.Equal(t, "", empty.Title)
	assert.Equal(t, 6, empty.SortOrder)
}

func TestCreatePagesStrictlyIncreasingOrder(t *testing.T) {
	ts := testServer(t)

	prev := 0
	for i := 0; i < 5; i++ {
		p := createPage(t, ts, "p")
		assert.Greater(t, p.SortOrder, prev)
		prev = p.SortOrder
	}
}

func TestUpdatePagePartialFields(t *testing.T) {
	ts := testServer(t)
	p := createPage(t, ts, "before")

	// Title only.
	resp := doJSON(t, "PUT", ts.URL+"/api/pages/"+itoa(p.ID), map[string]interface{}{"title": " after "})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got pageResult
	decodeResponse(t, resp, &got)
	assert.Equal(t, "after", got.Title)
	assert.Equal(t, p.SortOrder, got.SortOrder)

	// Sort order only.
	resp = doJSON(t, "PUT", ts.URL+"/api/pages/"+itoa(p.ID), map[string]interface{}{"sortOrder": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeResponse(t, resp, &got)
	assert.Equal(t, "after", got.Title)
	assert.Equal(t, 1, got.SortOrder)

	// Non-integer sortOrder keeps the stored value.
	resp = doJSON(t, "PUT", ts.URL+"/api/pages/"+itoa(p.ID), map[string]interface{}{"sortOrder": 2.5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeResponse(t, resp, &got)
	assert.Equal(t, 1, got.SortOrder)

	// So do strings, even numeric ones, and explicit null.
	for _, v := range []interface{}{"5", "abc", nil} {
		resp = doJSON(t, "PUT", ts.URL+"/api/pages/"+itoa(p.ID), map[string]interface{}{"sortOrder": v})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decodeResponse(t, resp, &got)
		assert.Equal(t, 1, got.SortOrder)
	}
}

func TestUpdatePageErrors(t *testing.T) {
	ts := testServer(t)

	resp := doJSON(t, "PUT", ts.URL+"/api/pages/abc", map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, "PUT", ts.URL+"/api/pages/0", map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, "PUT", ts.URL+"/api/pages/999999", map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var e errorResult
	decodeResponse(t, resp, &e)
	assert.Equal(t, "page not found", e.Error)
}

func TestDeletePage(t *testing.T) {
	ts := testServer(t)
	p := createPage(t, ts, "short-lived")

	resp := doJSON(t, "DELETE", ts.URL+"/api/pages/"+itoa(p.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, "DELETE", ts.URL+"/api/pages/"+itoa(p.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, "DELETE", ts.URL+"/api/pages/-1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestHealth(t *testing.T) {
	ts := testServer(t)

	resp := doJSON(t, "GET", ts.URL+"/api/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]bool
	decodeResponse(t, resp, &body)
	assert.True(t, body["ok"])
}
