// Package email sends outbound mail through AWS SES: ad-hoc messages with
// text and HTML bodies, and template-driven messages rendered by SES itself.
package email

import (
	"context"
	"encoding/json"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/user/bazaar-go/apperror"
	"github.com/user/bazaar-go/config"
)

const charsetUTF8 = "UTF-8"

// sesAPI is the slice of the SES client the service uses.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	SendTemplatedEmail(ctx context.Context, params *ses.SendTemplatedEmailInput, optFns ...func(*ses.Options)) (*ses.SendTemplatedEmailOutput, error)
}

// SendInput describes an ad-hoc message. At least one of TextBody and
// HTMLBody must be set; From defaults to the configured sender.
type SendInput struct {
	To       []string
	From     string
	Subject  string
	TextBody string
	HTMLBody string
}

// SendTemplatedInput describes a message rendered from an SES template.
type SendTemplatedInput struct {
	To           []string
	From         string
	TemplateName string
	TemplateData map[string]interface{}
}

// EmailService sends mail through SES on behalf of the application.
type EmailService struct {
	client      sesAPI
	defaultFrom string
}

// NewEmailService builds the SES client from configuration.
func NewEmailService(ctx context.Context, awsCfg *config.AWSConfig, emailCfg *config.EmailConfig) (*EmailService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(awsCfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			awsCfg.AccessKeyID, awsCfg.SecretAccessKey, "",
		)),
		awsconfig.WithRetryMaxAttempts(3),
	)
	if err != nil {
		return nil, apperror.NewConfigError("failed to load AWS configuration", err)
	}

	return &EmailService{
		client:      ses.NewFromConfig(cfg),
		defaultFrom: emailCfg.DefaultFrom,
	}, nil
}

// Send delivers an ad-hoc message and returns the SES message id.
func (s *EmailService) Send(ctx context.Context, input SendInput) (string, error) {
	from := input.From
	if from == "" {
		from = s.defaultFrom
	}

	body := &sestypes.Body{}
	if input.TextBody != "" {
		body.Text = &sestypes.Content{Data: aws.String(input.TextBody), Charset: aws.String(charsetUTF8)}
	}
	if input.HTMLBody != "" {
		body.Html = &sestypes.Content{Data: aws.String(input.HTMLBody), Charset: aws.String(charsetUTF8)}
	}

	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(from),
		Destination: &sestypes.Destination{ToAddresses: input.To},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(input.Subject), Charset: aws.String(charsetUTF8)},
			Body:    body,
		},
	})
	if err != nil {
		log.Printf("SES send failed: %v", err)
		return "", apperror.NewExternalServiceError("failed to send email", err)
	}

	return aws.ToString(out.MessageId), nil
}

// SendTemplated delivers a message rendered server-side by SES from a stored
// template and returns the SES message id.
func (s *EmailService) SendTemplated(ctx context.Context, input SendTemplatedInput) (string, error) {
	from := input.From
	if from == "" {
		from = s.defaultFrom
	}

	data, err := json.Marshal(input.TemplateData)
	if err != nil {
		return "", apperror.NewBadRequestError("template data is not serializable", err)
	}

	out, err := s.client.SendTemplatedEmail(ctx, &ses.SendTemplatedEmailInput{
		Source:       aws.String(from),
		Destination:  &sestypes.Destination{ToAddresses: input.To},
		Template:     aws.String(input.TemplateName),
		TemplateData: aws.String(string(data)),
	})
	if err != nil {
		log.Printf("SES templated send failed (template %s): %v", input.TemplateName, err)
		return "", apperror.NewExternalServiceError("failed to send templated email", err)
	}

	return aws.ToString(out.MessageId), nil
}
