// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rush Platform Contributors

package mailer

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/rushplatform/rush/internal/account"
)

type fakeSender struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

func testAccount() *account.Account {
	return &account.Account{
		ID:        "kaylee@serenity.io",
		Email:     "kaylee@serenity.io",
		Name:      "Kaylee Frye",
		CreatedAt: time.Now(),
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		errMsg string
	}{
		{
			name:   "missing host",
			opts:   Options{From: "noreply@rush.io", BaseURL: "http://rush.io"},
			errMsg: "smtp host is required",
		},
		{
			name:   "missing from",
			opts:   Options{Host: "smtp.rush.io", BaseURL: "http://rush.io"},
			errMsg: "from address is required",
		},
		{
			name:   "missing base url",
			opts:   Options{Host: "smtp.rush.io", From: "noreply@rush.io"},
			errMsg: "base url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNew_Valid(t *testing.T) {
	m, err := New(Options{
		Host:     "smtp.rush.io",
		Port:     587,
		Username: "relay",
		Password: "secret",
		From:     "noreply@rush.io",
		BaseURL:  "https://rush.io",
	})
	require.NoError(t, err)
	require.NotNil(t, m)
}

func TestConfirmationMailer_SendConfirmation(t *testing.T) {
	token := uuid.New()
	sender := &fakeSender{}
	m := &ConfirmationMailer{
		client:  sender,
		from:    "noreply@rush.io",
		baseURL: "https://rush.io",
		logger:  slog.Default(),
	}

	err := m.SendConfirmation(context.Background(), testAccount(), token)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Contains(t, msg.GetGenHeader(mail.HeaderSubject), "Please confirm your email address")
}

func TestConfirmationMailer_SendConfirmation_RelayError(t *testing.T) {
	sender := &fakeSender{err: errors.New("relay unavailable")}
	m := &ConfirmationMailer{
		client:  sender,
		from:    "noreply@rush.io",
		baseURL: "https://rush.io",
		logger:  slog.Default(),
	}

	err := m.SendConfirmation(context.Background(), testAccount(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay unavailable")
}

func TestConfirmationMailer_SendConfirmation_BadRecipient(t *testing.T) {
	sender := &fakeSender{}
	m := &ConfirmationMailer{
		client:  sender,
		from:    "noreply@rush.io",
		baseURL: "https://rush.io",
		logger:  slog.Default(),
	}

	acct := testAccount()
	acct.Email = "not an address"
	err := m.SendConfirmation(context.Background(), acct, uuid.New())
	require.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestConfirmationLink(t *testing.T) {
	token := uuid.MustParse("c81d9bb8-7f8d-4f27-a1b4-6f3e0b4f7e10")
	link := ConfirmationLink("https://rush.example.com", token)
	assert.Equal(t,
		"https://rush.example.com/account/confirm?token=c81d9bb8-7f8d-4f27-a1b4-6f3e0b4f7e10",
		link,
	)
}

func TestLogNotifier_SendConfirmation(t *testing.T) {
	n := NewLogNotifier("https://rush.io", slog.Default())
	err := n.SendConfirmation(context.Background(), testAccount(), uuid.New())
	require.NoError(t, err)
}
