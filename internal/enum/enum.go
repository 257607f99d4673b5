package enum

// --- Order snapshot lifecycle ---

const (
	OrderStatusSent      = "sent"
	OrderStatusModified  = "modified"
	OrderStatusCancelled = "cancelled"
)

// --- Fulfillment (drives the service-fee step function) ---

const (
	ServiceTypeDelivery    = "Delivery"
	ServiceTypePickup      = "Pickup"
	ServiceTypeFullService = "Full Service"
)

// --- Configurable labels (no store constraint) ---

const (
	EquipmentTypeTakeaway = "Takeaway"
	EquipmentTypeWarmers  = "Warmers"
)

// --- Media tree node kinds ---

const (
	MediaKindFolder = "folder"
	MediaKindFile   = "file"
)

// ValidOrderStatus reports whether s is a recognized snapshot status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusSent, OrderStatusModified, OrderStatusCancelled:
		return true
	}
	return false
}

// ValidServiceType reports whether s is a recognized fulfillment method.
func ValidServiceType(s string) bool {
	switch s {
	case ServiceTypeDelivery, ServiceTypePickup, ServiceTypeFullService:
		return true
	}
	return false
}
