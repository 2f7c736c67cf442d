package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"basho/internal/domain/service"
)

// SMTPMailer sends lifecycle emails over plain SMTP. Callers treat
// every send as best-effort; a failed delivery only produces a log
// line upstream.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, kind string, recipients []string, data map[string]string) error {
	if m.host == "" {
		return fmt.Errorf("smtp host not configured")
	}

	subject, body := renderTemplate(kind, data)

	msg := strings.Builder{}
	msg.WriteString("From: " + m.from + "\r\n")
	msg.WriteString("To: " + strings.Join(recipients, ", ") + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.from, recipients, []byte(msg.String()))
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func renderTemplate(kind string, data map[string]string) (string, string) {
	name := data["name"]
	orderID := data["order_id"]

	switch kind {
	case service.MailOrderSubmitted:
		return "We received your custom order request",
			fmt.Sprintf("Hi %s,\n\nThank you for your custom order request (%s). We will review it and get back to you with a quote.\n\n— Basho by Shivangi", name, orderID)
	case service.MailOrderQuoted:
		return "Your custom order has been quoted",
			fmt.Sprintf("Hi %s,\n\nYour custom order (%s) has been quoted at %s (minor units). Log in to review and pay.\n\n— Basho by Shivangi", name, orderID, data["price"])
	case service.MailOrderPaid:
		return "Payment received for your custom order",
			fmt.Sprintf("Hi %s,\n\nWe received your payment (ref %s) for order %s. Work will begin shortly.\n\n— Basho by Shivangi", name, data["payment_id"], orderID)
	default:
		return "Update on your custom order",
			fmt.Sprintf("Hi %s,\n\nThere is an update on your custom order %s.\n\n— Basho by Shivangi", name, orderID)
	}
}
