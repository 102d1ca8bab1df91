package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	"net/url"
	"strconv"

	"github.com/dajohi/goemail"
)

// SMTPConfig holds SMTP server settings.
type SMTPConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string // RFC 5322 address, e.g. "DevCamper <noreply@devcamper.io>"
	SkipVerify bool
}

// SMTPSender sends email over SMTPS. When credentials are missing the sender
// is disabled and every Send fails with ErrDelivery.
type SMTPSender struct {
	client      *goemail.SMTP
	mailName    string
	mailAddress string
	disabled    bool
	logger      *slog.Logger
}

// NewSMTPSender returns a new SMTP sender.
func NewSMTPSender(cfg SMTPConfig, logger *slog.Logger) (*SMTPSender, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		logger.Info("mail disabled")
		return &SMTPSender{disabled: true, logger: logger}, nil
	}

	a, err := mail.ParseAddress(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("mail: parse from address: %w", err)
	}

	host := cfg.Host
	if cfg.Port > 0 {
		host = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	}
	u := url.URL{
		Scheme: "smtps",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   host,
	}

	tlsConfig := &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.SkipVerify, //nolint:gosec // opt-in for local mail catchers
	}
	client, err := goemail.NewSMTP(u.String(), tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("mail: new smtp: %w", err)
	}
	logger.Info("mail enabled", slog.String("host", host), slog.String("from", a.Address))

	return &SMTPSender{
		client:      client,
		mailName:    a.Name,
		mailAddress: a.Address,
		logger:      logger,
	}, nil
}

// Enabled reports whether the sender has a configured server.
func (s *SMTPSender) Enabled() bool {
	return !s.disabled
}

// Send delivers msg.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.disabled {
		return fmt.Errorf("%w: smtp not configured", ErrDelivery)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	m := goemail.NewMessage(s.mailAddress, msg.Subject, msg.Body)
	m.SetName(s.mailName)
	m.AddTo(msg.To)
	if err := s.client.Send(m); err != nil {
		s.logger.Warn("smtp send", slog.String("subject", msg.Subject), slog.Any("error", err))
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}
