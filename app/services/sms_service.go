// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/kaitkan/kaitkan-api/config"
	"github.com/kaitkan/kaitkan-api/utils"
)

// SMSService handles WhatsApp message dispatch through the SMS gateway
type SMSService interface {
	SendOTP(ctx context.Context, recipient, code string) error
	SendMessage(ctx context.Context, recipient, message string) error
}

// SMSServiceImpl implements SMSService against the WebSMS HTTP gateway
type SMSServiceImpl struct {
	config *config.SMSConfig
	client *http.Client
}

// NewSMSService creates a new SMS service instance
func NewSMSService(cfg *config.SMSConfig) SMSService {
	return &SMSServiceImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// SendOTP sends a verification code message
func (s *SMSServiceImpl) SendOTP(ctx context.Context, recipient, code string) error {
	message := fmt.Sprintf("Kode verifikasi %s Anda: %s. Berlaku %d menit. Jangan bagikan kode ini.",
		s.config.SenderName, code, int(utils.OTPExpiry.Minutes()))
	return s.SendMessage(ctx, recipient, message)
}

// SendMessage sends a free-form message. The gateway expects the local 08
// phone form and takes everything as GET query parameters.
func (s *SMSServiceImpl) SendMessage(ctx context.Context, recipient, message string) error {
	params := url.Values{}
	params.Set("token", s.config.Token)
	params.Set("to", utils.LocalizePhone(recipient))
	params.Set("msg", message)

	endpoint := fmt.Sprintf("%s?%s", s.config.GatewayURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create gateway request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach SMS gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("SMS gateway rejected message: status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// MockSMSService implements SMSService for testing
type MockSMSService struct {
	SentMessages []MockSMSMessage
	FailNext     bool
}

// MockSMSMessage represents a captured outbound message
type MockSMSMessage struct {
	Recipient string
	Message   string
	SentAt    time.Time
}

// NewMockSMSService creates a new mock SMS service
func NewMockSMSService() *MockSMSService {
	return &MockSMSService{
		SentMessages: make([]MockSMSMessage, 0),
	}
}

// SendOTP captures a mock verification message
func (m *MockSMSService) SendOTP(ctx context.Context, recipient, code string) error {
	return m.SendMessage(ctx, recipient, fmt.Sprintf("Kode verifikasi Anda: %s", code))
}

// SendMessage captures a mock message, or fails once when FailNext is set.
// The message is also logged so operators can read issued codes in development.
func (m *MockSMSService) SendMessage(ctx context.Context, recipient, message string) error {
	if m.FailNext {
		m.FailNext = false
		return fmt.Errorf("mock gateway failure for %s", recipient)
	}

	log.Printf("mock sms to %s: %s", recipient, message)

	m.SentMessages = append(m.SentMessages, MockSMSMessage{
		Recipient: recipient,
		Message:   message,
		SentAt:    utils.UTCNow(),
	})
	return nil
}

// GetSentMessages returns all captured messages
func (m *MockSMSService) GetSentMessages() []MockSMSMessage {
	return m.SentMessages
}

// ClearSentMessages clears the captured messages list
func (m *MockSMSService) ClearSentMessages() {
	m.SentMessages = make([]MockSMSMessage, 0)
}
