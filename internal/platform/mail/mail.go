// Package mail delivers transactional email.
package mail

import (
	"context"
	"errors"
)

// ErrDelivery wraps every failure to hand a message to the mail server.
var ErrDelivery = errors.New("mail: delivery failed")

// Message is a single plain-text email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender delivers a Message synchronously.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
