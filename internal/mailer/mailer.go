// Package mailer renders quote emails and dispatches them through SES.
// Sending is fire-and-forget from the session's point of view: the caller
// persists the order snapshot only after a confirmed send.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/nidys-catering/api/internal/config"
)

// ErrDisabled is returned when outbound email is not configured. Handlers
// surface it as a retryable failure without persisting the snapshot.
var ErrDisabled = errors.New("email sending is not configured")

// Sender dispatches one rendered email.
type Sender interface {
	Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error
}

// Disabled is the Sender used when no SES region is configured.
type Disabled struct{}

func (Disabled) Send(context.Context, string, string, string, string) error {
	return ErrDisabled
}

// SES sends through AWS Simple Email Service.
type SES struct {
	client      *ses.Client
	senderEmail string
}

// NewSES builds the SES sender from config. Returns Disabled when the
// region is unset so the rest of the app wires identically either way.
func NewSES(ctx context.Context, cfg *config.Config) (Sender, error) {
	if cfg.SESRegion == "" {
		log.Println("email disabled: SES_REGION not set")
		return Disabled{}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.SESRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.SESAccessKeyID, cfg.SESSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	if cfg.SenderEmail == "" {
		return nil, errors.New("SENDER_EMAIL is required when SES is configured")
	}
	return &SES{client: ses.NewFromConfig(awsCfg), senderEmail: cfg.SenderEmail}, nil
}

func (s *SES) Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error {
	if toEmail == "" {
		return errors.New("recipient email address is empty")
	}

	input := &ses.SendEmailInput{
		Source: aws.String(s.senderEmail),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(htmlBody),
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		log.Printf("ERROR: send email to %s (%s): %v", toEmail, toName, err)
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
