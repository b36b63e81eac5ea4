package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emberline-pos/api/internal/service"
)

// KitchenHandler serves the kitchen order display.
type KitchenHandler struct {
	kitchen *service.KitchenService
	logger  *slog.Logger
}

// NewKitchenHandler creates a new KitchenHandler.
func NewKitchenHandler(kitchen *service.KitchenService, logger *slog.Logger) *KitchenHandler {
	return &KitchenHandler{kitchen: kitchen, logger: logger}
}

// RegisterRoutes registers the kitchen display endpoint.
func (h *KitchenHandler) RegisterRoutes(r chi.Router) {
	r.Get("/kitchen-orders", h.List)
}

// List returns active orders (new/preparing) for the kitchen display.
func (h *KitchenHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.kitchen.ListActiveOrders(r.Context())
	if err != nil {
		h.logger.Error("list kitchen orders", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}
