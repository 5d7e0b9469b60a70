package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/leca/flipbook/internal/api"
	"github.com/leca/flipbook/internal/database"
	"github.com/leca/flipbook/internal/imageproc"
	"github.com/leca/flipbook/internal/model"
)

// publicBaseURL returns the configured public base URL, falling back to
// the inbound request's scheme and host.
func (h *Handler) publicBaseURL(r *http.Request) string {
	if base := h.Config.PublicBaseURL; base != "" {
		return strings.TrimRight(base, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	// Honor the proxy header the way the original deployment did.
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

// UploadImage handles POST /api/uploads -- multipart upload of a single
// image field. The stored bytes are exactly what was submitted.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.Config.MaxUploadBytes); err != nil {
		api.BadRequest(w, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		api.BadRequest(w, "image file is required")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		api.BadRequest(w, "only image files are allowed")
		return
	}

	// Read one byte past the ceiling so oversize is distinguishable from
	// exactly-at-limit.
	data, err := io.ReadAll(io.LimitReader(file, h.Config.MaxUploadBytes+1))
	if err != nil {
		api.Internal(w, "read upload", err)
		return
	}
	if int64(len(data)) > h.Config.MaxUploadBytes {
		api.BadRequest(w, "image file is too large")
		return
	}

	// Trust the bytes over the declared type: browsers get the extension
	// mapping wrong often enough that the magic bytes are the better source.
	if format := imageproc.DetectFormat(data); format != "" {
		mimeType = "image/" + format
	}

	fileName := header.Filename
	if fileName == "" {
		fileName = "image"
	}

	width, height := imageproc.Dimensions(data)

	img := &model.UploadedImage{
		MimeType:  mimeType,
		FileName:  fileName,
		ImageData: data,
		Width:     width,
		Height:    height,
	}
	id, err := h.DB.CreateUploadedImage(img)
	if err != nil {
		api.Internal(w, "store upload", err)
		return
	}

	url := fmt.Sprintf("%s/api/uploads/%d", h.publicBaseURL(r), id)
	api.WriteJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// GetUploadedImage handles GET /api/uploads/{imageID} -- serves the stored
// bytes with the original mime type and filename. Stored images never
// change, so the response is marked immutable.
func (h *Handler) GetUploadedImage(w http.ResponseWriter, r *http.Request) {
	imageID, ok := urlID(r, "imageID")
	if !ok {
		api.BadRequest(w, "invalid image id")
		return
	}

	img, err := h.DB.GetUploadedImage(imageID)
	if errors.Is(err, database.ErrNotFound) {
		api.NotFound(w, "image not found")
		return
	}
	if err != nil {
		api.Internal(w, "get upload", err)
		return
	}

	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Content-Disposition", `inline; filename="`+img.FileName+`"`)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("Content-Length", strconv.Itoa(len(img.ImageData)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.ImageData); err != nil {
		slog.Error("failed to write image response", "error", err)
	}
}
