package email

import (
	"fmt"
	"log"

	"github.com/jordanlanch/trainhub/pkg/models"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Service handles email sending via SendGrid. With no API key
// configured it logs the mail instead, which keeps development
// environments working without credentials.
type Service struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	baseURL   string
}

// NewService creates a new email service
func NewService(apiKey, fromEmail, fromName, baseURL string) *Service {
	var client *sendgrid.Client
	if apiKey != "" {
		client = sendgrid.NewSendClient(apiKey)
	}

	return &Service{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		baseURL:   baseURL,
	}
}

// SendWelcomeEmail greets a newly registered user
func (s *Service) SendWelcomeEmail(toEmail, toName string) error {
	subject := "Welcome to TrainHub"
	body := fmt.Sprintf("Hi %s,\n\nWelcome to TrainHub! Your account is ready.\n\nGet started: %s\n\nThe TrainHub Team", toName, s.baseURL)

	return s.send(toEmail, toName, subject, body)
}

// SendPasswordChangedEmail notifies a user their password was reset
func (s *Service) SendPasswordChangedEmail(toEmail, toName string) error {
	subject := "Your TrainHub password was changed"
	body := fmt.Sprintf("Hi %s,\n\nYour password was just changed. If this wasn't you, contact support immediately.\n\nThe TrainHub Team", toName)

	return s.send(toEmail, toName, subject, body)
}

// SendCareerFormNotification forwards a career application to the team
// inbox
func (s *Service) SendCareerFormNotification(form *models.CareerForm) error {
	subject := fmt.Sprintf("New career application: %s", form.Name)
	body := fmt.Sprintf("Name: %s\nEmail: %s\nResume: %s\n\n%s", form.Name, form.Email, form.ResumeURL, form.Message)

	return s.send(s.fromEmail, s.fromName, subject, body)
}

func (s *Service) send(toEmail, toName, subject, body string) error {
	if s.client == nil {
		log.Printf("📧 [EMAIL] To: %s, Subject: %s (SendGrid not configured, logging only)", toEmail, subject)
		return nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, body)

	resp, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}

	return nil
}
