package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPSenderDisabledWithoutCredentials(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com"}, nil)
	require.NoError(t, err)
	assert.False(t, s.Enabled())

	err = s.Send(context.Background(), Message{To: "a@b.io", Subject: "hi", Body: "x"})
	assert.True(t, errors.Is(err, ErrDelivery))
}

func TestSMTPSenderRejectsBadFromAddress(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", User: "u", Password: "p", From: "not an address"}, nil)
	assert.Error(t, err)
}

func TestSenderFunc(t *testing.T) {
	var got Message
	s := SenderFunc(func(_ context.Context, msg Message) error {
		got = msg
		return nil
	})
	require.NoError(t, s.Send(context.Background(), Message{To: "a@b.io"}))
	assert.Equal(t, "a@b.io", got.To)
}
