package sweep

import (
	"encoding/json"
	"net/http"

	"github.com/bakehouse/bakehouse-backend/internal/modules/auth"
	"github.com/bakehouse/bakehouse-backend/internal/modules/user"
	"github.com/go-chi/chi/v5"
)

// Handler exposes the overdue passes as endpoints. Dashboards call these on
// mount; the same-day guard makes repeated calls harmless.
type Handler struct {
	service Service
	mw      *auth.Middleware
}

func NewHandler(service Service, mw *auth.Middleware) *Handler {
	return &Handler{service: service, mw: mw}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/sweeps", func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.Use(h.mw.RequireRole(user.RoleStoreManager, user.RoleCourier))
		r.Post("/overdue-shipments", h.overdueShipments)
		r.Post("/overdue-pickups", h.overduePickups)
	})
}

func (h *Handler) overdueShipments(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.ProcessOverdueShipments(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (h *Handler) overduePickups(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.ProcessOverduePickups(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
