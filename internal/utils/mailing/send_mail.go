package mailing

import (
	"fmt"
	"strconv"

	"omnom/internal/utils"

	"gopkg.in/gomail.v2"
)

type MailConfig struct {
	AppURL       string
	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPEmail    string
	SMTPPassword string
}

func LoadMailConfig() MailConfig {
	return MailConfig{
		AppURL:       utils.GetConfig("APP_URL"),
		SMTPHost:     utils.GetConfig("SMTP_HOST"),
		SMTPPort:     utils.GetConfig("SMTP_PORT"),
		SMTPSender:   utils.GetConfig("SMTP_SENDER_NAME"),
		SMTPEmail:    utils.GetConfig("SMTP_AUTH_EMAIL"),
		SMTPPassword: utils.GetConfig("SMTP_AUTH_PASSWORD"),
	}
}

// SendResetPasswordEmail mails a short-lived reset link to the user.
func SendResetPasswordEmail(to string, displayName string, token string) error {
	cfg := LoadMailConfig()

	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		return fmt.Errorf("invalid SMTP port: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", cfg.AppURL, token)

	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>We received a request to reset your OmNom password. "+
			"Click the link below to choose a new one. The link expires in 15 minutes.</p>"+
			"<p><a href=%q>Reset your password</a></p>"+
			"<p>If you did not request this, you can safely ignore this email.</p>",
		displayName, resetURL,
	)

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(cfg.SMTPEmail, cfg.SMTPSender))
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Reset your OmNom password")
	m.SetBody("text/html", body)

	d := gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPEmail, cfg.SMTPPassword)
	return d.DialAndSend(m)
}
