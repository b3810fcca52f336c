package order

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bakehouse/bakehouse-backend/internal/modules/auth"
	"github.com/bakehouse/bakehouse-backend/internal/modules/user"
	"github.com/go-chi/chi/v5"
)

// Handler exposes order HTTP endpoints.
type Handler struct {
	service Service
	mw      *auth.Middleware
}

func NewHandler(service Service, mw *auth.Middleware) *Handler {
	return &Handler{service: service, mw: mw}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	manager := h.mw.RequireRole(user.RoleStoreManager)
	picker := h.mw.RequireRole(user.RoleStoreManager, user.RolePicker)
	baker := h.mw.RequireRole(user.RoleStoreManager, user.RoleBaker)
	courier := h.mw.RequireRole(user.RoleStoreManager, user.RoleCourier)

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(h.mw.Authenticate)

		r.With(manager).Post("/", h.createOrder)
		r.Get("/", h.listOrders)
		r.With(manager).Get("/export", h.exportOrders)
		r.Get("/{id}", h.getOrder)
		r.Get("/number/{number}", h.getOrderByNumber)
		r.Get("/{id}/baking", h.listBakingOrders)

		r.With(picker).Post("/{id}/picking/start", h.startPicking)
		r.With(picker).Patch("/{id}/picking", h.recordPicking)
		r.With(picker).Post("/{id}/picking/complete", h.completePicking)

		r.With(baker).Post("/{id}/baking/split", h.splitBakingOrder)
		r.With(baker).Patch("/{id}/baking", h.recordBaking)
		r.With(baker).Post("/{id}/baking/revert", h.revertBakingOrder)

		r.With(manager).Post("/{id}/shipping/method", h.chooseShippingMethod)
		r.With(manager).Patch("/{id}/shipping/dates", h.updateShippingDates)
		r.With(courier).Post("/{id}/dispatch", h.dispatchWithCourier)
		r.With(courier).Post("/{id}/delivered", h.markDelivered)
		r.With(courier).Post("/{id}/not-delivered", h.markNotDelivered)
		r.With(courier).Post("/{id}/return", h.returnToQueue)

		r.With(manager).Post("/{id}/archive", h.archiveOrder)
		r.With(manager).Delete("/{id}", h.cancelOrder)
	})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.CreateOrder(r.Context(), req)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, o)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) getOrderByNumber(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrderByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context(),
		r.URL.Query().Get("status"), r.URL.Query().Get("type"))
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) listBakingOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListBakingOrders(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) startPicking(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func() (*Order, error) {
		return h.service.StartPicking(r.Context(), chi.URLParam(r, "id"))
	})
}

func (h *Handler) recordPicking(w http.ResponseWriter, r *http.Request) {
	var req RecordPickingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	h.mutate(w, r, func() (*Order, error) {
		return h.service.RecordPicking(r.Context(), chi.URLParam(r, "id"), req)
	})
}

func (h *Handler) completePicking(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func() (*Order, error) {
		return h.service.CompletePicking(r.Context(), chi.URLParam(r, "id"))
	})
}

func (h *Handler) splitBakingOrder(w http.ResponseWriter, r *http.Request) {
	var req SplitBakingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.SplitBakingOrder(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, o)
}

func (h *Handler) recordBaking(w http.ResponseWriter, r *http.Request) {
	var req RecordBakingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	h.mutate(w, r, func() (*Order, error) {
		return h.service.RecordBaking(r.Context(), chi.URLParam(r, "id"), req)
	})
}

func (h *Handler) revertBakingOrder(w http.ResponseWriter, r *http.Request) {
	var req RevertBakingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	h.mutate(w, r, func() (*Order, error) {
		return h.service.RevertBakingOrder(r.Context(), chi.URLParam(r, "id"), req)
	})
}

func (h *Handler) chooseShippingMethod(w http.ResponseWriter, r *http.Request) {
	var req ChooseMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	h.mutate(w, r, func() (*Order, error) {
		return h.service.ChooseShippingMethod(r.Context(), chi.URLParam(r, "id"), req)
	})
}

func (h *Handler) updateShippingDates(w http.ResponseWriter, r *http.Request) {
	var req UpdateDatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	h.mutate(w, r, func() (*Order, error) {
		return h.service.UpdateShippingDates(r.Context(), chi.URLParam(r, "id"), req)
	})
}

func (h *Handler) dispatchWithCourier(w http.ResponseWriter, r *http.Request) {
	var req DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	h.mutate(w, r, func() (*Order, error) {
		return h.service.DispatchWithCourier(r.Context(), chi.URLParam(r, "id"), req)
	})
}

func (h *Handler) markDelivered(w http.ResponseWriter, r *http.Request) {
	var req DeliveredRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	h.mutate(w, r, func() (*Order, error) {
		return h.service.MarkDelivered(r.Context(), chi.URLParam(r, "id"), req)
	})
}

func (h *Handler) markNotDelivered(w http.ResponseWriter, r *http.Request) {
	var req NotDeliveredRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	h.mutate(w, r, func() (*Order, error) {
		return h.service.MarkNotDelivered(r.Context(), chi.URLParam(r, "id"), req)
	})
}

func (h *Handler) returnToQueue(w http.ResponseWriter, r *http.Request) {
	var req ReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	h.mutate(w, r, func() (*Order, error) {
		return h.service.ReturnToQueue(r.Context(), chi.URLParam(r, "id"), req)
	})
}

func (h *Handler) archiveOrder(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func() (*Order, error) {
		return h.service.ArchiveOrder(r.Context(), chi.URLParam(r, "id"))
	})
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CancelOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "order cancelled"})
}

func (h *Handler) exportOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context(),
		r.URL.Query().Get("status"), r.URL.Query().Get("type"))
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	switch r.URL.Query().Get("format") {
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(RenderMarkdown(orders)))
	default:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)
		if err := WriteCSV(w, orders); err != nil {
			respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, fn func() (*Order, error)) {
	o, err := fn()
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, o)
}

func statusFor(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "cannot transition"),
		strings.Contains(msg, "already"),
		strings.Contains(msg, "is not"):
		return http.StatusUnprocessableEntity
	case strings.Contains(msg, "required"),
		strings.Contains(msg, "invalid"),
		strings.Contains(msg, "must"),
		strings.Contains(msg, "unknown"),
		strings.Contains(msg, "at least one"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
