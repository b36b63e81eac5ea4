// Package demo holds the fixed fallback data served when the database is
// unreachable. Demo mode is a deliberate operability feature: the POS keeps
// working with a built-in roster and menu instead of hard-failing.
package demo

import "github.com/emberline-pos/api/internal/enum"

// StaffMember is one entry of the built-in roster.
type StaffMember struct {
	ID          int64
	Name        string
	Email       string
	Role        string
	Permissions map[string]bool
}

// The demo PINs are public fixtures (they ship in the README and the login
// screen hint), so a plain map lookup is fine here.
var roster = map[string]StaffMember{
	"1234": {ID: 1, Name: "Admin User", Email: "admin@restaurant.com", Role: enum.StaffRoleAdmin, Permissions: map[string]bool{
		enum.CapabilityPOS: true, enum.CapabilityInventory: true, enum.CapabilityReports: true, enum.CapabilityStaff: true, enum.CapabilitySettings: true,
	}},
	"1111": {ID: 2, Name: "John Manager", Email: "john@restaurant.com", Role: enum.StaffRoleManager, Permissions: map[string]bool{
		enum.CapabilityPOS: true, enum.CapabilityInventory: true, enum.CapabilityReports: true, enum.CapabilityStaff: false, enum.CapabilitySettings: false,
	}},
	"2222": {ID: 3, Name: "Sarah Staff", Email: "sarah@restaurant.com", Role: enum.StaffRoleStaff, Permissions: map[string]bool{
		enum.CapabilityPOS: true, enum.CapabilityInventory: false, enum.CapabilityReports: false, enum.CapabilityStaff: false, enum.CapabilitySettings: false,
	}},
	"3333": {ID: 4, Name: "Mike Cook", Email: "mike@restaurant.com", Role: enum.StaffRoleStaff, Permissions: map[string]bool{
		enum.CapabilityPOS: true, enum.CapabilityInventory: false, enum.CapabilityReports: false, enum.CapabilityStaff: false, enum.CapabilitySettings: false,
	}},
}

// StaffByPIN looks up the demo roster by PIN.
func StaffByPIN(pin string) (StaffMember, bool) {
	s, ok := roster[pin]
	return s, ok
}

// PINs returns the demo PINs in roster order. Used by the seeder.
func PINs() []string {
	return []string{"1234", "1111", "2222", "3333"}
}

// StaffListEntry is one row of the demo staff-management listing.
type StaffListEntry struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Email     string `json:"email"`
	Active    bool   `json:"active"`
	LastLogin string `json:"last_login"`
}

// StaffList returns the fixed staff-management listing.
func StaffList() []StaffListEntry {
	return []StaffListEntry{
		{ID: 1, Name: "Admin User", Role: enum.StaffRoleAdmin, Email: "admin@restaurant.com", Active: true, LastLogin: "2024-01-15 09:30"},
		{ID: 2, Name: "John Manager", Role: enum.StaffRoleManager, Email: "john@restaurant.com", Active: true, LastLogin: "2024-01-15 08:45"},
		{ID: 3, Name: "Sarah Staff", Role: enum.StaffRoleStaff, Email: "sarah@restaurant.com", Active: true, LastLogin: "2024-01-15 09:00"},
		{ID: 4, Name: "Mike Cook", Role: enum.StaffRoleStaff, Email: "mike@restaurant.com", Active: true, LastLogin: "2024-01-14 16:30"},
	}
}

// Product is one entry of the demo menu.
type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Category string `json:"category"`
}

// Products returns the fixed demo menu.
func Products() []Product {
	return []Product{
		{ID: 1, Name: "Classic Burger", Price: "12.99", Category: "Mains"},
		{ID: 2, Name: "Cheeseburger", Price: "13.99", Category: "Mains"},
		{ID: 3, Name: "French Fries", Price: "4.99", Category: "Sides"},
		{ID: 4, Name: "Chicken Wings", Price: "10.99", Category: "Appetizers"},
		{ID: 5, Name: "Soda", Price: "1.99", Category: "Drinks"},
		{ID: 6, Name: "Ice Cream", Price: "3.99", Category: "Desserts"},
		{ID: 7, Name: "Caesar Salad", Price: "8.99", Category: "Appetizers"},
		{ID: 8, Name: "Steak", Price: "24.99", Category: "Mains"},
	}
}

// OrderID is the synthetic order id returned in demo mode.
const OrderID int64 = 1234

// KitchenItem is a line of a demo kitchen order.
type KitchenItem struct {
	Name     string `json:"name"`
	Quantity int32  `json:"quantity"`
}

// KitchenOrder is one demo kitchen display entry.
type KitchenOrder struct {
	ID          int64         `json:"id"`
	TableNumber string        `json:"table_number"`
	Time        string        `json:"time"`
	Status      string        `json:"status"`
	CreatedBy   string        `json:"created_by"`
	Items       []KitchenItem `json:"items"`
}

// KitchenOrders returns the fixed two-entry kitchen display.
func KitchenOrders() []KitchenOrder {
	return []KitchenOrder{
		{
			ID: 1, TableNumber: "Table 5", Time: "12:30 PM",
			Status: enum.OrderStatusNew, CreatedBy: "Sarah Staff",
			Items: []KitchenItem{
				{Name: "Classic Burger", Quantity: 2},
				{Name: "French Fries", Quantity: 1},
			},
		},
		{
			ID: 2, TableNumber: "Table 3", Time: "12:28 PM",
			Status: enum.OrderStatusPreparing, CreatedBy: "John Manager",
			Items: []KitchenItem{
				{Name: "Chicken Wings", Quantity: 1},
			},
		},
	}
}

// InventoryItem is one row of the fixed inventory listing. Inventory has no
// backing table; the listing is static by design.
type InventoryItem struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Stock   int    `json:"stock"`
	Unit    string `json:"unit"`
	Reorder int    `json:"reorder"`
	Status  string `json:"status"`
}

// Inventory returns the fixed inventory listing.
func Inventory() []InventoryItem {
	return []InventoryItem{
		{ID: 1, Name: "Beef Patty", Stock: 45, Unit: "each", Reorder: 20, Status: "ok"},
		{ID: 2, Name: "Burger Bun", Stock: 32, Unit: "each", Reorder: 30, Status: "low"},
		{ID: 3, Name: "Lettuce", Stock: 8, Unit: "head", Reorder: 10, Status: "low"},
		{ID: 4, Name: "Chicken Wings", Stock: 0, Unit: "lbs", Reorder: 15, Status: "out"},
	}
}

// ReportSummary mirrors the sales-report summary block.
type ReportSummary struct {
	TotalSales    string `json:"total_sales"`
	TotalOrders   int64  `json:"total_orders"`
	AvgOrderValue string `json:"avg_order_value"`
}

// CategoryRevenue is one by-category report row.
type CategoryRevenue struct {
	Category string `json:"category"`
	Revenue  string `json:"revenue"`
}

// TopItem is one top-sellers report row.
type TopItem struct {
	Name         string `json:"name"`
	QuantitySold int64  `json:"quantity_sold"`
	Revenue      string `json:"revenue"`
}

// SalesReport is the demo sales report served when the store is
// unreachable.
type SalesReport struct {
	Summary    ReportSummary     `json:"summary"`
	ByCategory []CategoryRevenue `json:"by_category"`
	TopItems   []TopItem         `json:"top_items"`
}

// Report returns the fixed demo sales report.
func Report() SalesReport {
	return SalesReport{
		Summary: ReportSummary{TotalSales: "2450.75", TotalOrders: 42, AvgOrderValue: "58.35"},
		ByCategory: []CategoryRevenue{
			{Category: "Mains", Revenue: "1250.50"},
			{Category: "Drinks", Revenue: "480.25"},
			{Category: "Appetizers", Revenue: "380.00"},
		},
		TopItems: []TopItem{
			{Name: "Classic Burger", QuantitySold: 18, Revenue: "233.82"},
			{Name: "French Fries", QuantitySold: 15, Revenue: "74.85"},
		},
	}
}
