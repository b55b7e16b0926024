package sms

import (
	"context"
	"fmt"
	"time"

	"github.com/jordanlanch/trainhub/pkg/domain"
	"github.com/jordanlanch/trainhub/pkg/phone"
)

// SMSProvider defines the interface for SMS delivery providers (Twilio, etc.)
type SMSProvider interface {
	SendSMS(ctx context.Context, to, from, body string) (*SMSResult, error)
}

// SMSResult holds the result of sending an SMS
type SMSResult struct {
	SID         string
	Status      string
	DateCreated time.Time
}

// Service handles SMS operations
type Service struct {
	provider   SMSProvider
	fromNumber string
}

// NewService creates a new SMS service
func NewService(provider SMSProvider, fromNumber string) *Service {
	return &Service{
		provider:   provider,
		fromNumber: fromNumber,
	}
}

// SendOTP delivers a one-time code to the given phone number
func (s *Service) SendOTP(ctx context.Context, to, code string) error {
	normalized, err := phone.NormalizeE164(to, "")
	if err != nil {
		return domain.NewValidationError(fmt.Sprintf("invalid phone number: %v", err))
	}

	body := fmt.Sprintf("Your TrainHub verification code is %s. It expires in 10 minutes.", code)

	if _, err := s.provider.SendSMS(ctx, normalized, s.fromNumber, body); err != nil {
		return domain.NewExternalServiceError("sms", err)
	}

	return nil
}
