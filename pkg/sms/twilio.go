package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TwilioProvider sends SMS through the Twilio Messages REST API
type TwilioProvider struct {
	accountSID string
	authToken  string
	httpClient *http.Client
	baseURL    string
}

// NewTwilioProvider creates a Twilio-backed SMS provider
func NewTwilioProvider(accountSID, authToken string) *TwilioProvider {
	return &TwilioProvider{
		accountSID: accountSID,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.twilio.com/2010-04-01",
	}
}

type twilioMessageResponse struct {
	SID         string `json:"sid"`
	Status      string `json:"status"`
	DateCreated string `json:"date_created"`
	Message     string `json:"message"` // error message on non-2xx
}

// SendSMS sends a single message and returns the provider SID
func (p *TwilioProvider) SendSMS(ctx context.Context, to, from, body string) (*SMSResult, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", p.baseURL, p.accountSID)

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(p.accountSID, p.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	var msg twilioMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return nil, fmt.Errorf("failed to decode twilio response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("twilio returned %d: %s", resp.StatusCode, msg.Message)
	}

	created, _ := time.Parse(time.RFC1123Z, msg.DateCreated)

	return &SMSResult{
		SID:         msg.SID,
		Status:      msg.Status,
		DateCreated: created,
	}, nil
}
