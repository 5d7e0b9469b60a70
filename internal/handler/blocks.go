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

// validateBlockFields trims and validates the required block fields. The
// returned message is empty when both are acceptable.
func validateBlockFields(blockType, content string) (string, string, string) {
	blockType = strings.TrimSpace(blockType)
	content = strings.TrimSpace(content)
	if !model.ValidBlockType(blockType) {
		return "", "", "blockType must be 'text' or 'image'"
	}
	if content == "" {
		return "", "", "content is required"
	}
	return blockType, content, ""
}

// ListBlocks handles GET /api/pages/{pageID}/blocks. A page that does not
// exist (or has no blocks) yields an empty list, not an error.
func (h *Handler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	pageID, ok := urlID(r, "pageID")
	if !ok {
		api.BadRequest(w, "invalid page id")
		return
	}

	blocks, err := h.DB.ListBlocks(pageID)
	if err != nil {
		api.Internal(w, "list blocks", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, blocks)
}

// CreateBlock handles POST /api/pages/{pageID}/blocks.
func (h *Handler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	pageID, ok := urlID(r, "pageID")
	if !ok {
		api.BadRequest(w, "invalid page id")
		return
	}

	var body struct {
		BlockType string `json:"blockType"`
		Content   string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		api.BadRequest(w, "invalid JSON body: "+err.Error())
		return
	}

	blockType, content, msg := validateBlockFields(body.BlockType, body.Content)
	if msg != "" {
		api.BadRequest(w, msg)
		return
	}

	block, err := h.DB.CreateBlock(pageID, blockType, content)
	if err != nil {
		api.Internal(w, "create block", err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, block)
}

// UpdateBlock handles PUT /api/pages/{pageID}/blocks/{blockID} -- a full
// replace of blockType and content; sortOrder is kept unless a new integer
// value is supplied. Both ids must match the same row.
func (h *Handler) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	pageID, okPage := urlID(r, "pageID")
	blockID, okBlock := urlID(r, "blockID")
	if !okPage || !okBlock {
		api.BadRequest(w, "invalid id")
		return
	}

	var body struct {
		BlockType string          `json:"blockType"`
		Content   string          `json:"content"`
		SortOrder json.RawMessage `json:"sortOrder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		api.BadRequest(w, "invalid JSON body: "+err.Error())
		return
	}

	blockType, content, msg := validateBlockFields(body.BlockType, body.Content)
	if msg != "" {
		api.BadRequest(w, msg)
		return
	}

	upd := model.BlockUpdate{
		BlockType: blockType,
		Content:   content,
		SortOrder: optionalSortOrder(body.SortOrder),
	}

	block, err := h.DB.UpdateBlock(pageID, blockID, upd)
	if errors.Is(err, database.ErrNotFound) {
		api.NotFound(w, "block not found")
		return
	}
	if err != nil {
		api.Internal(w, "update block", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, block)
}

// DeleteBlock handles DELETE /api/pages/{pageID}/blocks/{blockID}.
func (h *Handler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	pageID, okPage := urlID(r, "pageID")
	blockID, okBlock := urlID(r, "blockID")
	if !okPage || !okBlock {
		api.BadRequest(w, "invalid id")
		return
	}

	err := h.DB.DeleteBlock(pageID, blockID)
	if errors.Is(err, database.ErrNotFound) {
		api.NotFound(w, "block not found")
		return
	}
	if err != nil {
		api.Internal(w, "delete block", err)
		return
	}
	api.NoContent(w)
}
