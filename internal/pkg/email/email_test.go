package email

import (
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/vidgen_server/config"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestService(cfg *config.EmailConfig) (*Service, *[]sentMail) {
	var sent []sentMail
	s := NewService(cfg)
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
	return s, &sent
}

func testConfig() *config.EmailConfig {
	return &config.EmailConfig{
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
		Username: "noreply@example.com",
		Password: "secret",
		From:     "noreply@example.com",
	}
}

func TestService_Configured(t *testing.T) {
	assert.True(t, NewService(testConfig()).Configured())
	assert.False(t, NewService(&config.EmailConfig{SMTPHost: "smtp.example.com"}).Configured())

	var nilService *Service
	assert.False(t, nilService.Configured())
}

func TestService_SendWelcome(t *testing.T) {
	s, sent := newTestService(testConfig())

	require.NoError(t, s.SendWelcome("alice@example.com", "Alice"))
	require.Len(t, *sent, 1)

	mail := (*sent)[0]
	assert.Equal(t, "smtp.example.com:587", mail.addr)
	assert.Equal(t, "noreply@example.com", mail.from)
	assert.Equal(t, []string{"alice@example.com"}, mail.to)
	assert.Contains(t, mail.msg, "Subject: Welcome to VidGen\r\n")
	assert.Contains(t, mail.msg, "Hi Alice,")
}

func TestService_SendReceipt(t *testing.T) {
	s, sent := newTestService(testConfig())

	require.NoError(t, s.SendReceipt("alice@example.com", "Pro", 49.99, 15, "2026-11-13"))
	require.Len(t, *sent, 1)

	msg := (*sent)[0].msg
	assert.Contains(t, msg, "Subject: Your VidGen Pro plan receipt\r\n")
	assert.Contains(t, msg, "£49.99")
	assert.Contains(t, msg, "Videos added: 15")
	assert.Contains(t, msg, "2026-11-13")
}
