// Copyright (c) 2026 Userbase. All rights reserved.
// Author: thach.le.ng@gmail.com

/*
Package mailer provides outbound email delivery for account flows.

The only consumer today is the password-reset flow, which sends a time-boxed
reset link. Delivery goes through go-mail's SMTP client (STARTTLS, AUTH
PLAIN, RFC 5322 message encoding), configured the same way as the rest of
the platform: host, port, and credentials from the environment.

Architecture:

  - Mailer: The delivery contract injected into domain services.
  - SMTPMailer: Production implementation speaking SMTP via go-mail.
  - Tests substitute a fake Mailer; no network is touched.
*/
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// Mailer is the delivery contract for outbound transactional email.
type Mailer interface {
	// Send delivers a single plain-text message. A non-nil error means the
	// message was not accepted by the transport.
	Send(ctx context.Context, to, subject, body string) error
}

// sendTimeout bounds a single SMTP conversation.
const sendTimeout = 10 * time.Second

// SMTPMailer delivers mail over SMTP with optional PLAIN auth and
// opportunistic STARTTLS.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// NewSMTP constructs an [SMTPMailer].
//
// # Parameters
//   - host, port: SMTP endpoint.
//   - username, password: AUTH PLAIN credentials. Leave empty to skip auth.
//   - from: The sender address placed in the From header and envelope.
func NewSMTP(host string, port int, username, password, from string) (*SMTPMailer, error) {
	options := []mail.Option{
		mail.WithPort(port),
		mail.WithTimeout(sendTimeout),
		// Plain submission stays available for local development relays
		// that don't advertise STARTTLS.
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}

	if username != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}

	client, err := mail.NewClient(host, options...)
	if err != nil {
		return nil, fmt.Errorf("mailer: failed to configure smtp client: %w", err)
	}

	return &SMTPMailer{client: client, from: from}, nil
}

// Send delivers the message, honoring context cancellation for the whole
// SMTP conversation.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	message, err := buildMessage(m.from, to, subject, body)
	if err != nil {
		return err
	}

	if err := m.client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("mailer: failed to send message: %w", err)
	}

	return nil
}

// buildMessage assembles a plain-text message with validated addresses.
func buildMessage(from, to, subject, body string) (*mail.Msg, error) {
	message := mail.NewMsg()

	if err := message.From(from); err != nil {
		return nil, fmt.Errorf("mailer: invalid sender address: %w", err)
	}
	if err := message.To(to); err != nil {
		return nil, fmt.Errorf("mailer: invalid recipient address: %w", err)
	}

	message.Subject(subject)
	message.SetBodyString(mail.TypeTextPlain, body)

	return message, nil
}
