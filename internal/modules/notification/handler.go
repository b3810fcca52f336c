package notification

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bakehouse/bakehouse-backend/internal/modules/auth"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
	mw      *auth.Middleware
}

func NewHandler(service Service, mw *auth.Middleware) *Handler {
	return &Handler{service: service, mw: mw}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.Get("/", h.list)                 // GET /api/v1/notifications?unread=true
		r.Get("/unread-count", h.count)    // GET /api/v1/notifications/unread-count
		r.Patch("/{id}/read", h.markRead)  // PATCH /api/v1/notifications/{id}/read
	})
}

// list returns the notifications aimed at the session's role.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}
	unreadOnly := strings.EqualFold(r.URL.Query().Get("unread"), "true")
	items, err := h.service.ListForRole(r.Context(), string(claims.Role), unreadOnly)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func (h *Handler) count(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}
	count, err := h.service.CountUnread(r.Context(), string(claims.Role))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"unread": count})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "read"})
}
