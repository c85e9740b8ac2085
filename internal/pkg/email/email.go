package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/qs3c/vidgen_server/config"
)

type Service struct {
	cfg  *config.EmailConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg, send: smtp.SendMail}
}

// Configured 未配置 SMTP 账号时不发送邮件
func (s *Service) Configured() bool {
	return s != nil && s.cfg.SMTPHost != "" && s.cfg.Username != "" && s.cfg.Password != ""
}

// SendWelcome 发送欢迎邮件
func (s *Service) SendWelcome(to, name string) error {
	subject := "Welcome to VidGen"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">Welcome aboard!</h2>
        <p>Hi %s,</p>
        <p>Thanks for creating your VidGen account.</p>
        <p>Pick a plan on the pricing page to start turning prompts into videos.</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">This is an automated message, please do not reply.</p>
    </div>
</body>
</html>
`, name)

	return s.sendHTML(to, subject, body)
}

// SendReceipt 发送购买回执
func (s *Service) SendReceipt(to, planName string, amount float64, credits int, endDate string) error {
	subject := fmt.Sprintf("Your VidGen %s plan receipt", planName)
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">Payment confirmed</h2>
        <p>Plan: <strong>%s</strong></p>
        <p>Amount: £%.2f</p>
        <p>Videos added: %d</p>
        <p>Billing period ends: %s</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">This is an automated message, please do not reply.</p>
    </div>
</body>
</html>
`, planName, amount, credits, endDate)

	return s.sendHTML(to, subject, body)
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	headers := [][2]string{
		{"From", s.cfg.From},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var msg strings.Builder
	for _, h := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return s.send(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
