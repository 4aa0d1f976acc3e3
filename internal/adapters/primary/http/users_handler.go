package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	mw "github.com/lorrc/user-directory/internal/adapters/primary/http/middleware"
	"github.com/lorrc/user-directory/internal/adapters/primary/web"
	"github.com/lorrc/user-directory/internal/core/domain"
	"github.com/lorrc/user-directory/internal/core/ports"
)

// UsersResponse is the card list plus the time the session last loaded.
// LoadedAt is omitted until a fetch has succeeded.
type UsersResponse struct {
	ListResponse[web.Card]
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
}

// UsersHandler exposes the session's directory as JSON.
type UsersHandler struct {
	directory    ports.DirectoryService
	renderer     *web.Renderer
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(
	directory ports.DirectoryService,
	renderer *web.Renderer,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *UsersHandler {
	return &UsersHandler{
		directory:    directory,
		renderer:     renderer,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "users"),
	}
}

// RegisterRoutes registers the /users routes.
func (h *UsersHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/fetch", h.HandleFetch)
}

// HandleList handles GET /users?q=.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.directory.Search(r.Context(), mw.GetSessionID(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.writeUsers(w, r, users)
}

// HandleFetch handles POST /users/fetch.
func (h *UsersHandler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	users, err := h.directory.Load(r.Context(), mw.GetSessionID(r.Context()))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.writeUsers(w, r, users)
}

func (h *UsersHandler) writeUsers(w http.ResponseWriter, r *http.Request, users []domain.UserRecord) {
	resp := UsersResponse{ListResponse: NewListResponse(web.NewCards(users, h.renderer.Location()))}
	if at, ok := h.directory.LoadedAt(r.Context(), mw.GetSessionID(r.Context())); ok {
		at = at.In(h.renderer.Location())
		resp.LoadedAt = &at
	}
	WriteJSON(w, http.StatusOK, resp)
}
