// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

// Package mailer sends account confirmation emails over SMTP.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"github.com/wneessen/go-mail"

	"github.com/rushplatform/rush/internal/account"
)

const confirmationSubject = "Please confirm your email address"

// smtpSender is the subset of go-mail's client used by the
// ConfirmationMailer, extracted so tests can substitute a fake.
type smtpSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// ConfirmationMailer sends confirmation emails through an SMTP relay.
type ConfirmationMailer struct {
	client  smtpSender
	from    string
	baseURL string
	logger  *slog.Logger
}

// Options configures a ConfirmationMailer.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// BaseURL is the externally reachable control-plane URL that
	// confirmation links point at.
	BaseURL string
	Logger  *slog.Logger
}

// New creates a ConfirmationMailer connected to the given SMTP relay.
func New(opts Options) (*ConfirmationMailer, error) {
	if opts.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if opts.From == "" {
		return nil, fmt.Errorf("from address is required")
	}
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	clientOpts := []mail.Option{
		mail.WithPort(opts.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if opts.Username != "" {
		clientOpts = append(clientOpts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(opts.Username),
			mail.WithPassword(opts.Password),
		)
	}

	client, err := mail.NewClient(opts.Host, clientOpts...)
	if err != nil {
		return nil, oops.Code("MAIL_CLIENT_FAILED").
			With("host", opts.Host).
			Wrap(err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ConfirmationMailer{
		client:  client,
		from:    opts.From,
		baseURL: opts.BaseURL,
		logger:  logger,
	}, nil
}

// SendConfirmation emails the confirmation link to a freshly created
// account.
func (m *ConfirmationMailer) SendConfirmation(ctx context.Context, acct *account.Account, token uuid.UUID) error {
	link := ConfirmationLink(m.baseURL, token)

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return oops.Code("MAIL_SEND_FAILED").
			With("from", m.from).
			Wrap(err)
	}
	if err := msg.To(acct.Email); err != nil {
		return oops.Code("MAIL_SEND_FAILED").
			With("to", acct.Email).
			Wrap(err)
	}
	msg.Subject(confirmationSubject)
	msg.SetBodyString(mail.TypeTextPlain, textBody(acct.Name, link))
	msg.AddAlternativeString(mail.TypeTextHTML, htmlBody(acct.Name, link))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return oops.Code("MAIL_SEND_FAILED").
			With("to", acct.Email).
			Wrap(err)
	}

	m.logger.Info("confirmation email sent", "to", acct.Email)
	return nil
}

// ConfirmationLink builds the account confirmation URL for a token.
func ConfirmationLink(baseURL string, token uuid.UUID) string {
	return fmt.Sprintf("%s/account/confirm?token=%s", baseURL, url.QueryEscape(token.String()))
}

func textBody(name, link string) string {
	return fmt.Sprintf(
		"Hello %s,\n\nWelcome to Rush. Visit the link below to confirm your email address:\n\n%s\n\nIf you did not create this account, you can ignore this message.\n",
		name, link,
	)
}

func htmlBody(name, link string) string {
	return fmt.Sprintf(
		"<p>Hello %s,</p><p>Welcome to Rush. Click <a href=%q>here</a> to confirm your email address.</p><p>If you did not create this account, you can ignore this message.</p>",
		name, link,
	)
}

// LogNotifier logs confirmation links instead of sending email. It is
// used when no SMTP relay is configured, typically in development.
type LogNotifier struct {
	baseURL string
	logger  *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(baseURL string, logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{baseURL: baseURL, logger: logger}
}

// SendConfirmation logs the confirmation link for an account.
func (n *LogNotifier) SendConfirmation(_ context.Context, acct *account.Account, token uuid.UUID) error {
	n.logger.Info("confirmation email suppressed (no SMTP relay configured)",
		"to", acct.Email,
		"link", ConfirmationLink(n.baseURL, token),
	)
	return nil
}

// Compile-time interface checks.
var (
	_ account.Notifier = (*ConfirmationMailer)(nil)
	_ account.Notifier = (*LogNotifier)(nil)
)
