package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/leca/flipbook/internal/config"
	"github.com/leca/flipbook/internal/database"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	DB     database.Database
	Config *config.Config
}

// urlID parses the named chi URL parameter as a positive integer id.
// The second return value is false for missing, non-integer, or
// non-positive values.
func urlID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// optionalSortOrder interprets a raw JSON value as an optional integer.
// Absent, null, and non-integer values all mean "keep the existing value";
// the API has always coerced sortOrder loosely rather than rejecting it.
func optionalSortOrder(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	n := int(f)
	if float64(n) != f {
		return nil
	}
	return &n
}
