// Package mailer sends failure-notification emails over SMTP, grounded on
// rashadism-openchoreo's internal/observer/notifications/smtp.go: a thin
// wrapper around net/smtp.SendMail, since no repository in the retrieved
// pack pulls in a third-party mail library.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Config holds the SMTP connection details.
type Config struct {
	Addr string // host:port
	From string
	Auth smtp.Auth // nil for an unauthenticated relay
}

// Mailer sends plain-text notification emails.
type Mailer struct {
	cfg Config
}

func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send de-duplicates recipients (case-insensitive) and short-circuits
// without touching the network when the recipient list is empty, matching
// original_source/mailutil.py's "no recipients" behaviour.
func (m *Mailer) Send(ctx context.Context, to []string, subject, body string) error {
	recipients := dedupeRecipients(to)
	if len(recipients) == 0 {
		return nil
	}

	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.From,
		strings.Join(recipients, ","),
		subject,
		body,
	)

	return smtp.SendMail(m.cfg.Addr, m.cfg.Auth, m.cfg.From, recipients, []byte(message))
}

// dedupeRecipients drops duplicate addresses (case-insensitive) and empty
// entries, preserving first-seen order.
func dedupeRecipients(addrs []string) []string {
	seen := make(map[string]bool, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a == "" {
			continue
		}
		key := strings.ToLower(a)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}
