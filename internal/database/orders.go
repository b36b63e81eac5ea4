package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, order_number, table_number, order_type, status, subtotal,
	tax_amount, total_amount, special_instructions, created_by, created_by_name, created_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.TableNumber, &o.OrderType, &o.Status,
		&o.Subtotal, &o.TaxAmount, &o.TotalAmount, &o.SpecialInstructions,
		&o.CreatedBy, &o.CreatedByName, &o.CreatedAt,
	)
	return o, err
}

// NextOrderSequence reserves the next order number from a dedicated DB
// sequence. nextval never hands the same value to two transactions, which
// makes order numbering safe under concurrent creation.
func (q *Queries) NextOrderSequence(ctx context.Context) (int64, error) {
	var seq int64
	err := q.db.QueryRow(ctx, `SELECT nextval('orders_number_seq')`).Scan(&seq)
	return seq, err
}

// CreateOrderParams holds the fields for a new order row.
type CreateOrderParams struct {
	OrderNumber         string
	TableNumber         string
	OrderType           string
	Status              string
	Subtotal            pgtype.Numeric
	TaxAmount           pgtype.Numeric
	TotalAmount         pgtype.Numeric
	SpecialInstructions string
	CreatedBy           int64
	CreatedByName       string
}

// CreateOrder inserts an order and returns the stored row.
func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	var instructions any
	if arg.SpecialInstructions != "" {
		instructions = arg.SpecialInstructions
	}
	return scanOrder(q.db.QueryRow(ctx, `
		INSERT INTO orders (
			order_number, table_number, order_type, status,
			subtotal, tax_amount, total_amount,
			special_instructions, created_by, created_by_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+orderColumns,
		arg.OrderNumber, arg.TableNumber, arg.OrderType, arg.Status,
		arg.Subtotal, arg.TaxAmount, arg.TotalAmount,
		instructions, arg.CreatedBy, arg.CreatedByName,
	))
}

// CreateOrderItemParams holds the fields for a new order line item.
type CreateOrderItemParams struct {
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int32
	UnitPrice   pgtype.Numeric
	TotalPrice  pgtype.Numeric
}

// CreateOrderItem inserts a line item for an order.
func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	var item OrderItem
	err := q.db.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, order_id, product_id, product_name, quantity, unit_price, total_price`,
		arg.OrderID, arg.ProductID, arg.ProductName, arg.Quantity, arg.UnitPrice, arg.TotalPrice,
	).Scan(
		&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
		&item.Quantity, &item.UnitPrice, &item.TotalPrice,
	)
	return item, err
}

// ListActiveOrders returns orders with status new or preparing, most
// recent first. Completed and cancelled orders never appear here.
func (q *Queries) ListActiveOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE status IN ('new', 'preparing')
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListOrderItemsForOrders returns the line items of the given orders in a
// single query.
func (q *Queries) ListOrderItemsForOrders(ctx context.Context, orderIDs []int64) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, total_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.TotalPrice,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
