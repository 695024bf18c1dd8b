package service

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"todolists/internal/logger"
)

// sesSender is the part of the SES client the service uses
type sesSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client    sesSender
	fromEmail string
	fromName  string
	enabled   bool
	log       *logger.Logger
}

// NewEmailService creates a new email service. An empty fromEmail yields a
// disabled service that logs and skips every send.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName string, log *logger.Logger) (*EmailService, error) {
	log = log.WithComponent("email")

	if fromEmail == "" {
		log.Info("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, log: log}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Infow("Email service enabled", "from", fromEmail, "region", awsRegion)
	return newEmailServiceWithClient(sesv2.NewFromConfig(cfg), fromEmail, fromName, log), nil
}

func newEmailServiceWithClient(client sesSender, fromEmail, fromName string, log *logger.Logger) *EmailService {
	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
		log:       log,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

var shareInviteHTML = template.Must(template.New("invite").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<p>{{.Sender}} shared the to-do list <strong>{{.ListName}}</strong> with you.</p>
	<p><a href="{{.Link}}">Open the list</a></p>
	<p style="font-size: 12px; color: #666;">The link works until {{.Expires}}. Saving the list adds it to your lists.</p>
</body>
</html>
`))

// SendShareInvite mails a share link for a list
func (s *EmailService) SendShareInvite(ctx context.Context, toEmail, sender, listName, link string, expiresAt time.Time) error {
	if !s.enabled {
		s.log.Infow("Skipping email send (service disabled)", "kind", "share_invite", "to", toEmail)
		return nil
	}

	expires := expiresAt.UTC().Format("2 Jan 2006 15:04 MST")

	var html strings.Builder
	err := shareInviteHTML.Execute(&html, map[string]string{
		"Sender":   sender,
		"ListName": listName,
		"Link":     link,
		"Expires":  expires,
	})
	if err != nil {
		return fmt.Errorf("failed to render invite: %w", err)
	}

	text := fmt.Sprintf("%s shared the to-do list %q with you.\n\nOpen it here: %s\n\nThe link works until %s.\n",
		sender, listName, link, expires)

	subject := fmt.Sprintf("%s shared a to-do list with you", sender)
	return s.sendEmail(ctx, toEmail, subject, html.String(), text)
}

func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	messageID := ""
	if result.MessageId != nil {
		messageID = *result.MessageId
	}
	s.log.Infow("Email sent", "to", toEmail, "subject", subject, "message_id", messageID)
	return nil
}
