// Package email delivers ticket confirmations. Delivery failures are
// reported to the caller and never affect a committed purchase.
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/aeroregional/ticketing/config"
	"github.com/aeroregional/ticketing/internal/kafka"
	"github.com/aeroregional/ticketing/internal/logger"
)

type Sender struct {
	cfg config.SMTPConfig
	log *logger.Logger
}

func NewSender(cfg config.SMTPConfig, log *logger.Logger) *Sender {
	return &Sender{cfg: cfg, log: log}
}

// Send formats and delivers the ticket for a sold-ticket event. With no
// SMTP host configured it only logs the ticket, which keeps local
// development working without a mail relay.
func (s *Sender) Send(ctx context.Context, event kafka.TicketEvent) error {
	subject := fmt.Sprintf("Your flight ticket - %s", event.TicketCode)
	body := RenderTicket(event)

	if s.cfg.Host == "" {
		s.log.Info("email", "smtp disabled, ticket %s for %s:\n%s", event.TicketCode, event.Email, body)
		return nil
	}

	msg := buildMessage(s.cfg.From, event.Email, subject, body)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{event.Email}, msg); err != nil {
		return fmt.Errorf("send ticket email: %w", err)
	}

	s.log.Info("email", "ticket %s sent to %s", event.TicketCode, event.Email)
	return nil
}

// RenderTicket produces the plain-text body of the confirmation email.
func RenderTicket(event kafka.TicketEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your reservation is confirmed.\n\n")
	fmt.Fprintf(&b, "Ticket code: %s\n", event.TicketCode)
	fmt.Fprintf(&b, "Route:       %s -> %s\n", event.Origin, event.Destination)
	fmt.Fprintf(&b, "Departure:   %s\n", event.DepartureTime.Format("Mon, 02 Jan 2006 15:04 MST"))
	fmt.Fprintf(&b, "Price:       $%.2f\n", float64(event.PriceCents)/100)
	fmt.Fprintf(&b, "Purchased:   %s\n\n", event.PurchasedAt.Format("02 Jan 2006 15:04 MST"))
	fmt.Fprintf(&b, "A scannable copy of your ticket is available at /api/purchases/%s/qr\n", event.TicketCode)
	fmt.Fprintf(&b, "Keep the ticket code for future lookups and present it at boarding.\n")
	return b.String()
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
