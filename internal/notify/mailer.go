package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/smtp"
	"os"
	"strconv"
)

// Mailer sends the account emails
type Mailer interface {
	SendWelcome(ctx context.Context, to, name string) error
}

// MailConfig holds email configuration
type MailConfig struct {
	Mode     string // "log" or "smtp"
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// MailConfigFromEnv reads EMAIL_MODE and the SMTP_* variables
func MailConfigFromEnv() *MailConfig {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	return &MailConfig{
		Mode:     getEnv("EMAIL_MODE", "log"),
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		User:     os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     getEnv("SMTP_FROM", "noreply@sportiify.app"),
		FromName: getEnv("SMTP_FROM_NAME", "Sportiify"),
	}
}

// NewMailer returns an SMTP mailer in smtp mode and a logging one otherwise
func NewMailer(cfg *MailConfig, logger *slog.Logger) Mailer {
	if cfg.Mode == "smtp" {
		return &smtpMailer{config: cfg, logger: logger}
	}
	return &logMailer{logger: logger}
}

// logMailer writes emails to the log (development mode)
type logMailer struct {
	logger *slog.Logger
}

func (m *logMailer) SendWelcome(_ context.Context, to, name string) error {
	m.logger.Info("[DEV] Welcome email", "to", to, "name", name)
	return nil
}

// smtpMailer sends emails via SMTP
type smtpMailer struct {
	config *MailConfig
	logger *slog.Logger
}

func (m *smtpMailer) SendWelcome(_ context.Context, to, name string) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", m.config.FromName, m.config.From)
	message += fmt.Sprintf("To: %s\r\n", to)
	message += "Subject: Welcome to Sportiify\r\n"
	message += "MIME-Version: 1.0\r\n"
	message += "Content-Type: text/html; charset=UTF-8\r\n"
	message += "\r\n"
	message += welcomeBody(name)

	auth := smtp.PlainAuth("", m.config.User, m.config.Password, m.config.Host)
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	if err := smtp.SendMail(addr, auth, m.config.From, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("Welcome email sent via SMTP", "to", to)
	return nil
}

func welcomeBody(name string) string {
	greeting := "Hello,"
	if name != "" {
		greeting = fmt.Sprintf("Hello %s,", html.EscapeString(name))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="color: #1a7f37;">Welcome to Sportiify</h1>
    <p>%s</p>
    <p>Your account is ready. Browse the latest match predictions, filter them by date, league or team,
    and open any fixture to get a fresh prediction.</p>
    <hr style="border: none; border-top: 1px solid #ddd; margin: 30px 0;">
    <p style="font-size: 12px; color: #999;">This is an automated message, please do not reply to this email.</p>
</body>
</html>
`, greeting)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
