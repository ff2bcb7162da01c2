package mail

import (
	"bytes"
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPMailer_ComposesMessage(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Server: "smtp.example.com", Port: "587", From: "noreply@example.com", AuthDisabled: true})

	var (
		gotAddr string
		gotAuth smtp.Auth
		gotTo   []string
		gotMsg  string
	)
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotTo, gotMsg = addr, a, to, string(msg)
		return nil
	}

	err := m.SendPasswordReset(context.Background(), "alice@example.com", "alice", "http://localhost/reset_password/abc")
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Nil(t, gotAuth)
	assert.Equal(t, []string{"alice@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "To: alice@example.com\r\n")
	assert.Contains(t, gotMsg, "http://localhost/reset_password/abc")
}

func TestSMTPMailer_UsesPlainAuth(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Server: "smtp.example.com", Port: "587", User: "u", Password: "p"})

	var gotAuth smtp.Auth
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAuth = a
		return errors.New("relay down")
	}

	err := m.SendPasswordReset(context.Background(), "a@example.com", "a", "link")
	require.Error(t, err)
	assert.NotNil(t, gotAuth)
}

func TestLogMailer_LinkOnlyAtDebug(t *testing.T) {
	const link = "http://x/reset_password/tok"

	var buf bytes.Buffer
	m := NewLogMailer(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))
	require.NoError(t, m.SendPasswordReset(context.Background(), "a@example.com", "a", link))
	assert.Contains(t, buf.String(), "a@example.com")
	assert.NotContains(t, buf.String(), link)

	buf.Reset()
	m = NewLogMailer(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	require.NoError(t, m.SendPasswordReset(context.Background(), "a@example.com", "a", link))
	assert.Contains(t, buf.String(), link)
}
