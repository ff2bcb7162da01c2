// Package mail delivers account emails.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/charmbracelet/log"
)

// Mailer sends password reset links.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, username, link string) error
}

type SMTPConfig struct {
	Server       string
	Port         string
	User         string
	Password     string
	From         string
	AuthDisabled bool
}

// SMTPMailer sends plain-text mail through an SMTP relay.
type SMTPMailer struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

func (m *SMTPMailer) SendPasswordReset(_ context.Context, to, username, link string) error {
	subject := "Reset your Pixel Canvas password"
	body := fmt.Sprintf("Hi %s,\n\nUse the link below to choose a new password. It can be used once and expires soon.\n\n%s\n\nIf you did not ask for this, ignore this message.\n", username, link)

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%s", m.cfg.Server, m.cfg.Port)
	var auth smtp.Auth
	if !m.cfg.AuthDisabled {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Server)
	}

	if err := m.send(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

// LogMailer records reset requests in the log instead of sending them. Used
// when no SMTP server is configured. The link carries the reset token, so it
// is only written at debug level.
type LogMailer struct {
	logger *log.Logger
}

func NewLogMailer(logger *log.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(_ context.Context, to, username, link string) error {
	m.logger.Warn("smtp not configured, password reset mail not sent", "to", to, "username", username)
	m.logger.Debug("password reset link", "username", username, "link", link)
	return nil
}
