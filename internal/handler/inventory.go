package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emberline-pos/api/internal/demo"
	mw "github.com/emberline-pos/api/internal/middleware"
)

// InventoryHandler serves the inventory listing and stock receipt.
// Inventory has no backing table; the listing is static data.
type InventoryHandler struct{}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler() *InventoryHandler {
	return &InventoryHandler{}
}

// RegisterRoutes registers the inventory listing. Mounted behind
// Authenticate.
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/inventory", h.List)
}

// RegisterReceiveRoutes registers the stock receipt endpoint. Mounted
// behind Authenticate plus the "inventory" capability.
func (h *InventoryHandler) RegisterReceiveRoutes(r chi.Router) {
	r.Post("/inventory/receive", h.Receive)
}

// List returns the inventory items.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"inventory": demo.Inventory()})
}

// Receive acknowledges a stock receipt, attributed to the acting staff.
func (h *InventoryHandler) Receive(w http.ResponseWriter, r *http.Request) {
	identity := mw.IdentityFromContext(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Stock received by %s", identity.Name),
	})
}
