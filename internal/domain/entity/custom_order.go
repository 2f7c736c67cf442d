package entity

import "time"

// OrderStatus is the authoritative lifecycle field of a custom order.
// Every transition moves forward exactly one step; nothing ever moves
// backward or skips a state.
type OrderStatus string

const (
	OrderStatusRequested  OrderStatus = "requested"
	OrderStatusQuoted     OrderStatus = "quoted"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusInProgress OrderStatus = "in-progress"
	OrderStatusCompleted  OrderStatus = "completed"
)

var orderStatusSuccessor = map[OrderStatus]OrderStatus{
	OrderStatusRequested:  OrderStatusQuoted,
	OrderStatusQuoted:     OrderStatusPaid,
	OrderStatusPaid:       OrderStatusInProgress,
	OrderStatusInProgress: OrderStatusCompleted,
}

// Valid reports whether s is one of the five lifecycle states.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusRequested, OrderStatusQuoted, OrderStatusPaid, OrderStatusInProgress, OrderStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether target is the single legal successor
// of s.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	next, ok := orderStatusSuccessor[s]
	return ok && next == target
}

// AtLeastPaid reports whether the order has passed through a verified
// payment.
func (s OrderStatus) AtLeastPaid() bool {
	return s == OrderStatusPaid || s == OrderStatusInProgress || s == OrderStatusCompleted
}

// CustomOrder is a customer's bespoke-pottery request and its
// negotiation/fulfillment record. Email is immutable after creation and
// is the sole customer-side identity, compared case-insensitively.
type CustomOrder struct {
	ID              string      `json:"id" firestore:"id"`
	Name            string      `json:"name" firestore:"name"`
	Email           string      `json:"email" firestore:"email"`
	Phone           string      `json:"phone" firestore:"phone"`
	Description     string      `json:"description" firestore:"description"`
	ReferenceImages []string    `json:"reference_images" firestore:"referenceImages"`
	Notes           string      `json:"notes,omitempty" firestore:"notes,omitempty"`
	Status          OrderStatus `json:"status" firestore:"status"`

	// QuotedPrice is in currency minor units. Set exactly once when the
	// order moves to quoted, never cleared afterwards.
	QuotedPrice *int64 `json:"quoted_price,omitempty" firestore:"quotedPrice,omitempty"`

	PaymentID       string     `json:"payment_id,omitempty" firestore:"paymentId,omitempty"`
	GatewayOrderRef string     `json:"gateway_order_ref,omitempty" firestore:"gatewayOrderRef,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty" firestore:"paidAt,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
