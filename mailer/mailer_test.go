package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stockwatch/stockwatch/logger"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 587, cfg.Port)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidateRejectsBadPort(t *testing.T) {
	cfg := Config{Port: 70000}
	assert.Error(t, cfg.Validate())
}

func TestSendHonorsCanceledContext(t *testing.T) {
	sender := NewSMTPSender(Config{}, logger.NewDefault())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sender.Send(ctx, "bob@x.com", "subject", "body")
	assert.ErrorIs(t, err, context.Canceled)
}
