package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/lorrc/user-directory/internal/adapters/primary/http/middleware"
	"github.com/lorrc/user-directory/internal/adapters/primary/web"
	"github.com/lorrc/user-directory/internal/core/ports"
)

// PageHandler serves the server-rendered directory page.
type PageHandler struct {
	directory ports.DirectoryService
	renderer  *web.Renderer
	logger    *slog.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(
	directory ports.DirectoryService,
	renderer *web.Renderer,
	logger *slog.Logger,
) *PageHandler {
	return &PageHandler{
		directory: directory,
		renderer:  renderer,
		logger:    logger.With("handler", "page"),
	}
}

// RegisterRoutes registers the page routes.
func (h *PageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleIndex)
	r.Get("/search", h.HandleSearch)
}

// HandleIndex handles GET /. Every page load fetches a new batch into the
// session and renders all of it. A failed fetch is logged by the service and
// shown as the error message; the session keeps whatever it had before.
func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	sessionID := mw.GetSessionID(r.Context())

	users, err := h.directory.Load(r.Context(), sessionID)
	if err != nil {
		h.write(w, r, http.StatusBadGateway, h.renderer.ErrorView())
		return
	}

	h.write(w, r, http.StatusOK, h.renderer.CardsView(users, ""))
}

// HandleSearch handles GET /search?q=. It filters the records stored by the
// last page load and never fetches.
func (h *PageHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	sessionID := mw.GetSessionID(r.Context())
	query := r.URL.Query().Get("q")

	users, err := h.directory.Search(r.Context(), sessionID, query)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "search failed", "error", err)
		h.write(w, r, http.StatusInternalServerError, h.renderer.ErrorView())
		return
	}

	h.write(w, r, http.StatusOK, h.renderer.SearchView(users, query))
}

func (h *PageHandler) write(w http.ResponseWriter, r *http.Request, status int, view web.PageView) {
	if err := WriteHTML(w, status, h.renderer, view); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write page", "error", err)
	}
}
