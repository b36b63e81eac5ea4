package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/emberline-pos/api/internal/database"
	"github.com/emberline-pos/api/internal/demo"
	"github.com/emberline-pos/api/internal/enum"
	"github.com/emberline-pos/api/internal/session"
)

// taxRate is the fixed sales tax applied to every order.
var taxRate = decimal.RequireFromString("0.085")

const maxOrderNumberRetries = 3

// Errors returned by the order service. All validation errors unwrap to
// ErrValidation.
var (
	ErrValidation       = errors.New("invalid order")
	ErrEmptyItems       = fmt.Errorf("%w: items are required", ErrValidation)
	ErrNegativePrice    = fmt.Errorf("%w: price must be non-negative", ErrValidation)
	ErrMissingItemName  = fmt.Errorf("%w: item name is required", ErrValidation)
	ErrInvalidOrderType = fmt.Errorf("%w: invalid order_type", ErrValidation)
)

// TxBeginner starts a new database transaction. Satisfied by
// *pgxpool.Pool; nil means the server is running without a database.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries bound to a transaction.
type OrderStore interface {
	NextOrderSequence(ctx context.Context) (int64, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx), letting the
// service bind store instances to its own transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// OrderItemInput is one item row of an incoming order. Each row represents
// a single unit; ordering two of something means two rows.
type OrderItemInput struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
}

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	TableNumber         string
	OrderType           string
	SpecialInstructions string
	Items               []OrderItemInput
}

// CreateOrderResult is the created order with its line items. DemoMode
// marks a synthetic result produced while the store was unreachable.
type CreateOrderResult struct {
	Order    database.Order
	Items    []database.OrderItem
	DemoMode bool
}

// OrderService validates orders, computes totals and persists them
// atomically.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
	logger   *slog.Logger
}

// NewOrderService creates an OrderService. pool may be nil for demo mode.
func NewOrderService(pool TxBeginner, newStore NewOrderStore, logger *slog.Logger) *OrderService {
	return &OrderService{pool: pool, newStore: newStore, logger: logger}
}

// CreateOrder validates the input, computes subtotal/tax/total with
// decimal arithmetic and creates the order plus all items in one
// transaction. Retries a bounded number of times if two transactions race
// to the same order number (unique constraint violation).
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest, actor session.Identity) (*CreateOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for i, item := range req.Items {
		if item.Name == "" {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrMissingItemName)
		}
		if item.Price.IsNegative() {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrNegativePrice)
		}
	}

	orderType := req.OrderType
	if orderType == "" {
		orderType = enum.OrderTypeDineIn
	}
	if !enum.ValidOrderType(orderType) {
		return nil, ErrInvalidOrderType
	}

	tableNumber := req.TableNumber
	if tableNumber == "" {
		tableNumber = "1"
	}

	// Each item row is one unit, so the subtotal is the plain sum of
	// item prices. Tax is rounded to cents before the total so that
	// subtotal + tax always equals the stored total exactly.
	subtotal := decimal.Zero
	for _, item := range req.Items {
		subtotal = subtotal.Add(item.Price)
	}
	tax := subtotal.Mul(taxRate).Round(2)
	total := subtotal.Add(tax)

	if s.pool == nil {
		return s.demoResult(req, orderType, tableNumber, subtotal, tax, total, actor), nil
	}

	// Bounded retry for the order-number race: two concurrent
	// transactions can reserve distinct sequence values yet still collide
	// if the constraint trips for another reason; the sequence itself is
	// atomic, so one retry round is almost always enough.
	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req, orderType, tableNumber, subtotal, tax, total, actor)
		if err == nil {
			return result, nil
		}
		if database.IsUnavailable(err) {
			s.logger.Warn("order store unreachable, returning demo order", "error", err)
			return s.demoResult(req, orderType, tableNumber, subtotal, tax, total, actor), nil
		}
		if isOrderNumberConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// isOrderNumberConflict checks for a unique constraint violation on the
// order number (pgconn error code 23505).
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_number_key"
	}
	return false
}

// createOrderTx executes the full order creation in a single transaction:
// reserving the number, inserting the order and inserting every item, or
// none of it.
func (s *OrderService) createOrderTx(
	ctx context.Context,
	req CreateOrderRequest,
	orderType, tableNumber string,
	subtotal, tax, total decimal.Decimal,
	actor session.Identity,
) (*CreateOrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	seq, err := store.NextOrderSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("next order sequence: %w", err)
	}
	orderNumber := formatOrderNumber(time.Now(), seq)

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderNumber:         orderNumber,
		TableNumber:         tableNumber,
		OrderType:           orderType,
		Status:              enum.OrderStatusNew,
		Subtotal:            database.NumericFromDecimal(subtotal),
		TaxAmount:           database.NumericFromDecimal(tax),
		TotalAmount:         database.NumericFromDecimal(total),
		SpecialInstructions: req.SpecialInstructions,
		CreatedBy:           actor.StaffID,
		CreatedByName:       actor.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]database.OrderItem, 0, len(req.Items))
	for i, in := range req.Items {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:     order.ID,
			ProductID:   in.ProductID,
			ProductName: in.Name,
			Quantity:    1,
			UnitPrice:   database.NumericFromDecimal(in.Price),
			TotalPrice:  database.NumericFromDecimal(in.Price),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item %d: %w", i, err)
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, Items: items}, nil
}

// demoResult builds the synthetic order returned when the store is
// unreachable. The totals are real; only the id and number are canned.
func (s *OrderService) demoResult(
	req CreateOrderRequest,
	orderType, tableNumber string,
	subtotal, tax, total decimal.Decimal,
	actor session.Identity,
) *CreateOrderResult {
	order := database.Order{
		ID:            demo.OrderID,
		OrderNumber:   formatOrderNumber(time.Now(), demo.OrderID),
		TableNumber:   tableNumber,
		OrderType:     orderType,
		Status:        enum.OrderStatusNew,
		Subtotal:      database.NumericFromDecimal(subtotal),
		TaxAmount:     database.NumericFromDecimal(tax),
		TotalAmount:   database.NumericFromDecimal(total),
		CreatedBy:     actor.StaffID,
		CreatedByName: actor.Name,
		CreatedAt:     time.Now(),
	}
	items := make([]database.OrderItem, 0, len(req.Items))
	for i, in := range req.Items {
		items = append(items, database.OrderItem{
			ID:          int64(i + 1),
			OrderID:     order.ID,
			ProductID:   in.ProductID,
			ProductName: in.Name,
			Quantity:    1,
			UnitPrice:   database.NumericFromDecimal(in.Price),
			TotalPrice:  database.NumericFromDecimal(in.Price),
		})
	}
	return &CreateOrderResult{Order: order, Items: items, DemoMode: true}
}

func formatOrderNumber(t time.Time, seq int64) string {
	return fmt.Sprintf("ORD-%s-%04d", t.Format("20060102"), seq)
}
