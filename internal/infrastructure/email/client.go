// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"
	"os"

	"github.com/havenwellness/haven-go/internal/infrastructure/email/templates"
	"github.com/resendlabs/resend-go"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendLeadNotificationEmail(lead templates.LeadNotificationProps) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
	toEmail   string
}

// NewService creates a new email service client, returning the Service interface.
func NewService() (Service, error) {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	fromEmail := os.Getenv("EMAIL_FROM")
	if fromEmail == "" {
		fromEmail = "noreply@havenwellness.co.uk" // Default from address
	}

	fromName := os.Getenv("EMAIL_FROM_NAME")
	if fromName == "" {
		fromName = "Haven Wellness" // Default from name
	}

	toEmail := os.Getenv("LEAD_NOTIFICATION_EMAIL")
	if toEmail == "" {
		toEmail = fromEmail
	}

	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
		toEmail:   toEmail,
	}, nil
}

// NoopService discards emails. Used when no provider is configured so lead
// capture keeps working without notifications.
type NoopService struct{}

// NewNoopService creates a discarding email service.
func NewNoopService() Service {
	return &NoopService{}
}

// SendLeadNotificationEmail discards the notification.
func (n *NoopService) SendLeadNotificationEmail(lead templates.LeadNotificationProps) error {
	return nil
}

// SendLeadNotificationEmail composes and sends the new-enquiry notification.
func (c *ResendClient) SendLeadNotificationEmail(lead templates.LeadNotificationProps) error {
	subject := fmt.Sprintf("New enquiry from %s", lead.Name)

	content := templates.GetLeadNotificationContent(lead)

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Content: content,
	})

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{c.toEmail},
		Subject: subject,
		Html:    htmlContent,
	}

	_, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send lead notification via Resend: %w", err)
	}

	return nil
}
