package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/emberline-pos/api/internal/database"
	mw "github.com/emberline-pos/api/internal/middleware"
	"github.com/emberline-pos/api/internal/service"
)

// OrderHandler handles order creation.
type OrderHandler struct {
	orders *service.OrderService
	logger *slog.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// RegisterRoutes registers order endpoints. Mounted behind Authenticate.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.Create)
}

// --- Request / Response types ---

type orderItemRequest struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Price json.Number `json:"price"`
}

type createOrderRequest struct {
	Table               string             `json:"table"`
	OrderType           string             `json:"order_type"`
	SpecialInstructions string             `json:"special_instructions"`
	Items               []orderItemRequest `json:"items"`
}

type createOrderResponse struct {
	Success     bool   `json:"success"`
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Subtotal    string `json:"subtotal"`
	TaxAmount   string `json:"tax_amount"`
	TotalAmount string `json:"total_amount"`
	Message     string `json:"message"`
}

// --- Handlers ---

// Create validates the payload and delegates to the order service. The
// acting staff comes from the session, never from the request body.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := mw.IdentityFromContext(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	items := make([]service.OrderItemInput, len(req.Items))
	for i, item := range req.Items {
		price, err := decimal.NewFromString(item.Price.String())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("item %d: invalid price", i)})
			return
		}
		items[i] = service.OrderItemInput{
			ProductID: item.ID,
			Name:      item.Name,
			Price:     price,
		}
	}

	result, err := h.orders.CreateOrder(r.Context(), service.CreateOrderRequest{
		TableNumber:         req.Table,
		OrderType:           req.OrderType,
		SpecialInstructions: req.SpecialInstructions,
		Items:               items,
	}, *identity)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		h.logger.Error("create order", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, createOrderResponse{
		Success:     true,
		OrderID:     result.Order.ID,
		OrderNumber: result.Order.OrderNumber,
		Subtotal:    database.NumericDecimal(result.Order.Subtotal).StringFixed(2),
		TaxAmount:   database.NumericDecimal(result.Order.TaxAmount).StringFixed(2),
		TotalAmount: database.NumericDecimal(result.Order.TotalAmount).StringFixed(2),
		Message:     fmt.Sprintf("Order created by %s", identity.Name),
	})
}
