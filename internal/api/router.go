package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notesman/internal/ledgerservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *ledgerservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/ledger", h.Status)
	r.Get("/ledger/{kind}", h.ReadDocument)
	r.Get("/preview", h.Preview)
	r.Post("/process", h.Process)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
