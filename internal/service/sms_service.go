package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SMSService delivers verification codes. Messages go out through Amazon
// SES to a carrier email-to-SMS gateway; when no sender or gateway is
// configured the service runs disabled and codes are only logged, which is
// the mode used for local development.
type SMSService struct {
	client        *sesv2.Client
	fromEmail     string
	fromName      string
	gatewayDomain string
	enabled       bool
	debug         bool
}

// NewSMSService creates a new SMS delivery service
func NewSMSService(awsRegion, fromEmail, fromName, gatewayDomain string, debug bool) (*SMSService, error) {
	// Without a sender and gateway domain, run disabled
	if fromEmail == "" || gatewayDomain == "" {
		log.Println("SMS service disabled: SES_FROM_EMAIL or SMS_GATEWAY_DOMAIN not configured")
		return &SMSService{
			enabled: false,
			debug:   debug,
		}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing SMS service with AWS SES")
		log.Printf("[DEBUG] AWS Region: %s", awsRegion)
		log.Printf("[DEBUG] From Email: %s", fromEmail)
		log.Printf("[DEBUG] Gateway Domain: %s", gatewayDomain)
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)
	log.Printf("SMS service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &SMSService{
		client:        client,
		fromEmail:     fromEmail,
		fromName:      fromName,
		gatewayDomain: gatewayDomain,
		enabled:       true,
		debug:         debug,
	}, nil
}

// IsEnabled returns whether real delivery is configured
func (s *SMSService) IsEnabled() bool {
	return s.enabled
}

// SendOTP delivers a verification code to a phone number
func (s *SMSService) SendOTP(ctx context.Context, phone, code string) error {
	if !s.enabled {
		// Development mode: the code shows up in the server log
		log.Printf("Skipping SMS send (service disabled): verification code for %s is %s", phone, code)
		return nil
	}

	if s.debug {
		log.Printf("[DEBUG] SendOTP called: phone=%s", phone)
	}

	toAddress := fmt.Sprintf("%s@%s", phone, s.gatewayDomain)
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	body := fmt.Sprintf("Your STEM Quest verification code is %s. It expires in 5 minutes.", code)

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toAddress},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String("STEM Quest verification code"),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(body),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send verification code to %s: %w", phone, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message id: %s", *result.MessageId)
	}

	log.Printf("Verification code sent: phone=%s", phone)
	return nil
}
