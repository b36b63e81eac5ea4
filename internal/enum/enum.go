package enum

// ── State machines (CHECK constrained in DB) ──

const (
	OrderStatusNew       = "new"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

const (
	StaffRoleAdmin   = "admin"
	StaffRoleManager = "manager"
	StaffRoleStaff   = "staff"
)

const (
	OrderTypeDineIn   = "dine-in"
	OrderTypeTakeOut  = "take-out"
	OrderTypeDelivery = "delivery"
)

// ── Permission capabilities (keys of the staff permissions map) ──

const (
	CapabilityPOS       = "pos"
	CapabilityInventory = "inventory"
	CapabilityReports   = "reports"
	CapabilityStaff     = "staff"
	CapabilitySettings  = "settings"
)

// ValidRole reports whether s is a known staff role.
func ValidRole(s string) bool {
	switch s {
	case StaffRoleAdmin, StaffRoleManager, StaffRoleStaff:
		return true
	}
	return false
}

// ValidOrderType reports whether s is a known order type.
func ValidOrderType(s string) bool {
	switch s {
	case OrderTypeDineIn, OrderTypeTakeOut, OrderTypeDelivery:
		return true
	}
	return false
}
