package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// SalesSummaryRow aggregates completed orders since a point in time.
type SalesSummaryRow struct {
	TotalSales    pgtype.Numeric
	TotalOrders   int64
	AvgOrderValue pgtype.Numeric
}

// GetSalesSummary returns totals over completed orders created at or after
// since.
func (q *Queries) GetSalesSummary(ctx context.Context, since time.Time) (SalesSummaryRow, error) {
	var row SalesSummaryRow
	err := q.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(total_amount), 0),
			COUNT(*),
			COALESCE(AVG(total_amount), 0)
		FROM orders
		WHERE status = 'completed' AND created_at >= $1`, since,
	).Scan(&row.TotalSales, &row.TotalOrders, &row.AvgOrderValue)
	return row, err
}

// CategorySalesRow is revenue attributed to one product category.
type CategorySalesRow struct {
	Category string
	Revenue  pgtype.Numeric
}

// GetSalesByCategory breaks completed-order revenue down by product
// category, highest revenue first.
func (q *Queries) GetSalesByCategory(ctx context.Context, since time.Time) ([]CategorySalesRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT COALESCE(p.category, 'Other'), COALESCE(SUM(oi.total_price), 0) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE o.status = 'completed' AND o.created_at >= $1
		GROUP BY 1
		ORDER BY revenue DESC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CategorySalesRow
	for rows.Next() {
		var r CategorySalesRow
		if err := rows.Scan(&r.Category, &r.Revenue); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// TopItemRow is one best-selling product.
type TopItemRow struct {
	Name         string
	QuantitySold int64
	Revenue      pgtype.Numeric
}

// GetTopItems returns the best-selling items of completed orders, by
// quantity sold.
func (q *Queries) GetTopItems(ctx context.Context, since time.Time, limit int32) ([]TopItemRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT oi.product_name, SUM(oi.quantity) AS sold, COALESCE(SUM(oi.total_price), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status = 'completed' AND o.created_at >= $1
		GROUP BY oi.product_name
		ORDER BY sold DESC
		LIMIT $2`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TopItemRow
	for rows.Next() {
		var r TopItemRow
		if err := rows.Scan(&r.Name, &r.QuantitySold, &r.Revenue); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
