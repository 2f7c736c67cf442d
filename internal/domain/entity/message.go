package entity

import "time"

// Sender roles on a custom-order thread. SenderType is always derived
// from the authenticated principal, never from client input.
const (
	SenderTypeCustomer = "customer"
	SenderTypeAdmin    = "admin"
)

// AdminSenderID is the sentinel senderId used for admin-authored
// messages instead of a personal email address.
const AdminSenderID = "admin"

// Message belongs to exactly one CustomOrder. Read flips false to true
// once and never back.
type Message struct {
	ID            string    `json:"id" firestore:"id"`
	CustomOrderID string    `json:"custom_order_id" firestore:"customOrderId"`
	SenderID      string    `json:"sender_id" firestore:"senderId"`
	SenderType    string    `json:"sender_type" firestore:"senderType"`
	Message       string    `json:"message" firestore:"message"`
	Read          bool      `json:"read" firestore:"read"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
}

// OppositeSenderType returns the counterparty role for unread counting
// and read receipts.
func OppositeSenderType(senderType string) string {
	if senderType == SenderTypeAdmin {
		return SenderTypeCustomer
	}
	return SenderTypeAdmin
}
