package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emberline-pos/api/internal/database"
	"github.com/emberline-pos/api/internal/demo"
)

// ProductStore defines the database methods needed by the product catalog.
type ProductStore interface {
	ListAvailableProducts(ctx context.Context) ([]database.Product, error)
}

// ProductHandler serves the menu. Any store failure falls back to the demo
// menu; the catalog read path never errors out.
type ProductHandler struct {
	store  ProductStore // nil in demo mode
	logger *slog.Logger
}

// NewProductHandler creates a new ProductHandler. store may be nil for
// demo mode.
func NewProductHandler(store ProductStore, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{store: store, logger: logger}
}

// RegisterRoutes registers the product catalog endpoint.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.List)
}

type productResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Category string `json:"category"`
}

// List returns all available products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, map[string]any{"products": demo.Products()})
		return
	}

	products, err := h.store.ListAvailableProducts(r.Context())
	if err != nil {
		h.logger.Warn("list products failed, serving demo menu", "error", err)
		writeJSON(w, http.StatusOK, map[string]any{"products": demo.Products()})
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = productResponse{
			ID:       p.ID,
			Name:     p.Name,
			Price:    database.NumericDecimal(p.Price).StringFixed(2),
			Category: p.Category,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": resp})
}
