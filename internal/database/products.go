package database

import "context"

// ListAvailableProducts returns the menu: products with is_available = true.
func (q *Queries) ListAvailableProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, name, price, category, is_available
		FROM products
		WHERE is_available = true
		ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.IsAvailable); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
