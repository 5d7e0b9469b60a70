package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/leca/flipbook/internal/api"
	"github.com/leca/flipbook/internal/database"
	"github.com/leca/flipbook/internal/model"
)

// ListPages handles GET /api/pages.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.DB.ListPages()
	if err != nil {
		api.Internal(w, "list pages", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, pages)
}

// CreatePage handles POST /api/pages. An empty title is allowed; the new
// page is appended after the current highest sort order.
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		api.BadRequest(w, "invalid JSON body: "+err.Error())
		return
	}

	page, err := h.DB.CreatePage(strings.TrimSpace(body.Title))
	if err != nil {
		api.Internal(w, "create page", err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, page)
}

// UpdatePage handles PUT /api/pages/{pageID} -- partial update; absent
// fields keep their stored values.
func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	pageID, ok := urlID(r, "pageID")
	if !ok {
		api.BadRequest(w, "invalid page id")
		return
	}

	var body struct {
		Title     *string         `json:"title"`
		SortOrder json.RawMessage `json:"sortOrder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		api.BadRequest(w, "invalid JSON body: "+err.Error())
		return
	}

	upd := model.PageUpdate{SortOrder: optionalSortOrder(body.SortOrder)}
	if body.Title != nil {
		title := strings.TrimSpace(*body.Title)
		upd.Title = &title
	}

	page, err := h.DB.UpdatePage(pageID, upd)
	if errors.Is(err, database.ErrNotFound) {
		api.NotFound(w, "page not found")
		return
	}
	if err != nil {
		api.Internal(w, "update page", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, page)
}

// DeletePage handles DELETE /api/pages/{pageID}. Blocks cascade with the
// page.
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	pageID, ok := urlID(r, "pageID")
	if !ok {
		api.BadRequest(w, "invalid page id")
		return
	}

	err := h.DB.DeletePage(pageID)
	if errors.Is(err, database.ErrNotFound) {
		api.NotFound(w, "page not found")
		return
	}
	if err != nil {
		api.Internal(w, "delete page", err)
		return
	}
	api.NoContent(w)
}
