package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/ChickenCoderzzz/CoachAssist/internal/config"
)

type SESMailer struct {
	client *sesv2.Client
	sender string
}

func NewSESMailer(ctx context.Context, cfg *config.Config) (*SESMailer, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.SESRegion),
	}
	if cfg.SESAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.SESAccessKey, cfg.SESSecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load ses config: %w", err)
	}

	client := sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
		if cfg.SESEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.SESEndpoint)
		}
	})

	return &SESMailer{client: client, sender: cfg.EmailFrom}, nil
}

func (m *SESMailer) SendVerificationCode(ctx context.Context, to, code string) error {
	subject := "Verify your CoachAssist email"
	body := fmt.Sprintf(
		"Welcome to CoachAssist!\n\nYour verification code is: %s\n\nThe code expires in 15 minutes. If you did not sign up, you can ignore this email.",
		code,
	)
	return m.send(ctx, to, subject, body)
}

func (m *SESMailer) SendPasswordResetCode(ctx context.Context, to, code string) error {
	subject := "CoachAssist password reset"
	body := fmt.Sprintf(
		"Your password reset code is: %s\n\nThe code expires in 15 minutes. If you did not request a reset, you can ignore this email.",
		code,
	)
	return m.send(ctx, to, subject, body)
}

func (m *SESMailer) send(ctx context.Context, to, subject, body string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: &m.sender,
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Text: &types.Content{Data: &body},
				},
			},
		},
	}
	_, err := m.client.SendEmail(ctx, input)
	return err
}
