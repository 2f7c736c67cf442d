package service

import "context"

// Notification kinds sent over the order lifecycle.
const (
	MailOrderSubmitted = "order_submitted"
	MailOrderQuoted    = "order_quoted"
	MailOrderPaid      = "order_paid"
)

// Mailer sends transactional email. All sends are fire-and-forget from
// the caller's point of view: failures are logged and never roll back
// the state transition that triggered them.
type Mailer interface {
	Send(ctx context.Context, kind string, recipients []string, data map[string]string) error
}
