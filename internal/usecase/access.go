package usecase

import (
	"strings"

	"basho/internal/domain/entity"
)

// canAccessOrder is the shared guard for custom-order data: admins can
// reach every order, customers only orders filed under their own email
// (case-insensitive). The order must already be loaded from the store;
// a missing order is a NotFound at the call site, never an access
// grant.
func canAccessOrder(order *entity.CustomOrder, user *entity.User) bool {
	if user.IsAdmin() {
		return true
	}
	return strings.EqualFold(order.Email, user.Email)
}

// senderTypeFor derives the message role from the authenticated
// account, never from client input.
func senderTypeFor(user *entity.User) string {
	if user.IsAdmin() {
		return entity.SenderTypeAdmin
	}
	return entity.SenderTypeCustomer
}

// senderIDFor returns the identifying senderId: the customer's email,
// or the shared admin sentinel.
func senderIDFor(user *entity.User) string {
	if user.IsAdmin() {
		return entity.AdminSenderID
	}
	return strings.ToLower(user.Email)
}
