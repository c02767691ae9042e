package digest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermes-sec/hermes-cli/internal/config"
)

func TestMailerRejectsIncompleteConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.MailConfig
		wantErr string
	}{
		{
			name:    "missing host",
			cfg:     config.MailConfig{From: "a@b.c", To: []string{"d@e.f"}},
			wantErr: "mail.host",
		},
		{
			name:    "missing sender",
			cfg:     config.MailConfig{Host: "smtp.example.com", To: []string{"d@e.f"}},
			wantErr: "mail.from",
		},
		{
			name:    "missing recipients",
			cfg:     config.MailConfig{Host: "smtp.example.com", From: "a@b.c"},
			wantErr: "mail.to",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewMailer(tt.cfg).Send(context.Background(), "subject", []byte("<p>x</p>"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMailerRejectsInvalidAddresses(t *testing.T) {
	cfg := config.MailConfig{
		Host: "smtp.example.com",
		From: "not an address",
		To:   []string{"d@e.f"},
	}

	err := NewMailer(cfg).Send(context.Background(), "subject", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set sender")
}
