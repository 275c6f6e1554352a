// Package enum holds the string constants shared across the API surface,
// the database and the storefront packages.
package enum

// Order statuses. The lifecycle is forward-only: pending, ready, delivered.
const (
	OrderStatusPending   = "pending"
	OrderStatusReady     = "ready"
	OrderStatusDelivered = "delivered"
)

// orderStatusRank fixes the total order over statuses. Display code derives
// step completion from this, so a forward jump still marks earlier steps done.
var orderStatusRank = map[string]int{
	OrderStatusPending:   0,
	OrderStatusReady:     1,
	OrderStatusDelivered: 2,
}

// OrderStatusRank returns the position of status in the fixed progression,
// or -1 if the status is unknown.
func OrderStatusRank(status string) int {
	if r, ok := orderStatusRank[status]; ok {
		return r
	}
	return -1
}

// IsValidOrderStatus reports whether s is one of the known order statuses.
func IsValidOrderStatus(s string) bool {
	return OrderStatusRank(s) >= 0
}

// Payment methods.
const (
	PaymentMethodPayLater = "payLater"
	PaymentMethodDuitNow  = "duitnow"
)

func IsValidPaymentMethod(s string) bool {
	switch s {
	case PaymentMethodPayLater, PaymentMethodDuitNow:
		return true
	}
	return false
}

// Language codes.
const (
	LanguageEnglish = "en"
	LanguageArabic  = "ar"
)

// Push event types broadcast to websocket listeners.
const (
	EventNewOrder           = "new_order"
	EventOrderStatusUpdated = "order_status_updated"
)
