package database

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Staff is a row of the staff table. PINs are stored as bcrypt hashes;
// the plaintext never touches the database.
type Staff struct {
	ID          int64
	PinHash     string
	Name        string
	Email       pgtype.Text
	Role        string
	Permissions map[string]bool
	IsActive    bool
	LastLogin   pgtype.Timestamptz
	CreatedBy   pgtype.Int8
	CreatedAt   time.Time
}

// Order is a row of the orders table.
type Order struct {
	ID                  int64
	OrderNumber         string
	TableNumber         string
	OrderType           string
	Status              string
	Subtotal            pgtype.Numeric
	TaxAmount           pgtype.Numeric
	TotalAmount         pgtype.Numeric
	SpecialInstructions pgtype.Text
	CreatedBy           int64
	CreatedByName       string
	CreatedAt           time.Time
}

// OrderItem is a row of the order_items table. Items never exist without
// their owning order; they are inserted in the same transaction.
type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int32
	UnitPrice   pgtype.Numeric
	TotalPrice  pgtype.Numeric
}

// Product is a row of the products table. Read-only from the POS core.
type Product struct {
	ID          int64
	Name        string
	Price       pgtype.Numeric
	Category    string
	IsAvailable bool
}
