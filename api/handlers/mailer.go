package handlers

import (
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Mailer sends transactional email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(toEmail, toName, subject, htmlContent, plainText string) error
}

// SendgridMailer sends email through the SendGrid API
type SendgridMailer struct{}

// NewSendgridMailer returns a mailer backed by SENDGRID_API_KEY
func NewSendgridMailer() SendgridMailer {
	return SendgridMailer{}
}

// Send delivers a single email and returns an error on any non-2xx response
func (SendgridMailer) Send(toEmail, toName, subject, htmlContent, plainText string) error {
	from := mail.NewEmail("AniResQ", "no-reply@aniresq.org")
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send email", "error", err, "to", toEmail)
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", toEmail)
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}
	zap.S().Infow("email sent successfully", "to", toEmail, "subject", subject)
	return nil
}
