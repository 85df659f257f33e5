package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
)

// CanAdvanceTo reports whether next is the immediate successor status.
// Fulfillment is strictly sequential: pending -> shipped -> completed.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusShipped
	case OrderStatusShipped:
		return next == OrderStatusCompleted
	default:
		return false
	}
}

// Order is a finalized purchase created atomically at checkout. Its item list
// is immutable after creation; only the status advances.
type Order struct {
	ID        string
	BuyerID   string
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem carries the price captured at purchase time. The live card price
// may change afterwards; the purchase must reflect price-at-sale.
type OrderItem struct {
	ID         string
	OrderID    string
	CardID     string
	PriceCents int64
}

// OrderView is an order with its lines and the total computed at read time.
type OrderView struct {
	Order           Order
	Items           []OrderItem
	TotalPriceCents int64
}
