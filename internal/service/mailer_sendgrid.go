package service

import (
	"context"
	"fmt"

	"go_5_onboard_keep/internal/config"
	"go_5_onboard_keep/internal/middleware"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer は SendGrid API を使ってメールを送信する実装です
type SendGridMailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

func NewSendGridMailer(cfg *config.Config) Mailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(cfg.SendGrid.APIKey),
		from:   sgmail.NewEmail(cfg.App.Name, cfg.SendGrid.From),
	}
}

// Send は SendGrid を使用してメールを送信します
func (m *SendGridMailer) Send(ctx context.Context, to, subject, body string) error {
	logger := middleware.GetLogger(ctx)

	message := sgmail.NewSingleEmail(m.from, subject, sgmail.NewEmail("", to), body, "")

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		logger.Error("Failed to send email via SendGrid", "error", err, "to", to)
		return err
	}
	// 2xx以外はAPI側の拒否として扱う
	if resp.StatusCode >= 300 {
		logger.Error("SendGrid rejected email", "status_code", resp.StatusCode, "body", resp.Body, "to", to)
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}

	logger.Info("Email sent successfully via SendGrid", "to", to, "subject", subject)
	return nil
}
