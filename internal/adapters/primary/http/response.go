package http

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/lorrc/user-directory/internal/adapters/primary/web"
)

// ListResponse wraps a list of items (non-paginated)
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The header is already sent; an encode error cannot be reported.
	_ = json.NewEncoder(w).Encode(v)
}

// NewListResponse wraps data, turning nil into an empty list
func NewListResponse[T any](data []T) ListResponse[T] {
	if data == nil {
		data = []T{}
	}
	return ListResponse[T]{Data: data, Count: len(data)}
}

// WriteHTML renders the page into a buffer before any header is written.
// A render failure is answered with a plain 500.
func WriteHTML(w http.ResponseWriter, status int, renderer *web.Renderer, view web.PageView) error {
	var buf bytes.Buffer
	if err := renderer.Render(&buf, view); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
