package harvest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bakehouse/bakehouse-backend/internal/modules/auth"
	"github.com/bakehouse/bakehouse-backend/internal/modules/user"
	"github.com/go-chi/chi/v5"
)

// Handler exposes the mailbox harvest operations.
type Handler struct {
	service Service
	mw      *auth.Middleware
}

func NewHandler(service Service, mw *auth.Middleware) *Handler {
	return &Handler{service: service, mw: mw}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/harvest", func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.Use(h.mw.RequireRole(user.RoleStoreManager))
		r.Post("/check-emails", h.checkEmails)
		r.Post("/harvest-invoices", h.harvestInvoices)
		r.Post("/test-connection", h.testConnection)
	})
}

func (h *Handler) checkEmails(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.CheckEmails(r.Context())
	if err != nil {
		writeHarvestError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) harvestInvoices(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.HarvestInvoices(r.Context())
	if err != nil {
		writeHarvestError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) testConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.service.TestConnection(r.Context()); err != nil {
		writeHarvestError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "connected"})
}

func writeHarvestError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrRateLimited) {
		http.Error(w, "mail source rate limit exceeded, try again later", http.StatusTooManyRequests)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
