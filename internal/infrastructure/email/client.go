// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"
	"os"

	"github.com/fieldstack/widgethost-go/internal/infrastructure/email/templates"
	"github.com/resendlabs/resend-go"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendAppInstallNotification(toEmail, appName, spaceID, manageURL string, installed bool) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

// NewService creates a new email service client, returning the Service interface.
func NewService() (Service, error) {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	fromEmail := os.Getenv("NOTIFY_EMAIL_FROM")
	if fromEmail == "" {
		fromEmail = "noreply@fieldstack.io"
	}

	fromName := os.Getenv("NOTIFY_EMAIL_FROM_NAME")
	if fromName == "" {
		fromName = "FieldStack"
	}

	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}, nil
}

// SendAppInstallNotification tells space admins that an app was installed
// into or removed from their space.
func (c *ResendClient) SendAppInstallNotification(toEmail, appName, spaceID, manageURL string, installed bool) error {
	verb := "installed into"
	subject := fmt.Sprintf("App %q was installed", appName)
	if !installed {
		verb = "removed from"
		subject = fmt.Sprintf("App %q was removed", appName)
	}

	content := templates.GetParagraph(fmt.Sprintf("The app %q was %s space %s.", appName, verb, spaceID)) +
		templates.GetParagraph("If you did not expect this change, review the installed apps for your space.")
	if manageURL != "" {
		content += templates.GetButton(templates.ButtonProps{
			Text: "Manage apps",
			URL:  manageURL,
		})
	}

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Preheader: subject,
		Content:   content,
	})

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    htmlContent,
	}

	if _, err := c.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send install notification via Resend: %w", err)
	}
	return nil
}
