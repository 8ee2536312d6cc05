package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notesman/internal/apperr"
	"github.com/starford/notesman/internal/ledgerservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *ledgerservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *ledgerservice.Service) *Handler {
	return &Handler{svc: svc}
}

// Status handles GET /api/ledger.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Status(r.Context())
	if err != nil {
		h.fail(w, "status", err)
		return
	}
	w.Header().Set("ETag", `"`+st.Checksum+`"`)
	writeJSON(w, http.StatusOK, st)
}

// ReadDocument handles GET /api/ledger/{kind}, kind being current, journal
// or archive.
func (h *Handler) ReadDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.ReadDocument(r.Context(), chi.URLParam(r, "kind"))
	if err != nil {
		h.fail(w, "read document", err)
		return
	}
	w.Header().Set("ETag", `"`+doc.Checksum+`"`)
	writeJSON(w, http.StatusOK, doc)
}

// Preview handles GET /api/preview.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Preview(r.Context())
	if err != nil {
		h.fail(w, "preview", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Process handles POST /api/process. An If-Match header carrying the
// checksum from GET /api/ledger guards against processing a document that
// changed in the meantime.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)
	rep, err := h.svc.Process(r.Context(), ifMatch)
	if err != nil {
		h.fail(w, "process", err)
		return
	}
	w.Header().Set("ETag", `"`+rep.Checksum+`"`)
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
