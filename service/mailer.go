package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/stagelink/backend/config"
)

// Email is a single outbound message
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Mailer is the outbound email transport. Implementations either deliver
// or return an error; the integration layer converts errors to boolean
// outcomes so notification failures never fail the primary transaction.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// APIMailer delivers via an HTTP mail provider (SendGrid-style JSON API)
type APIMailer struct {
	config     *config.MailConfig
	httpClient *http.Client
}

func NewAPIMailer(cfg *config.MailConfig) *APIMailer {
	return &APIMailer{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type mailSendRequest struct {
	To          string `json:"to"`
	FromAddress string `json:"from_address"`
	FromName    string `json:"from_name,omitempty"`
	Subject     string `json:"subject"`
	HTML        string `json:"html"`
}

type mailSendResponse struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

// Send posts the message to the provider endpoint
func (m *APIMailer) Send(ctx context.Context, email Email) error {
	reqBody := mailSendRequest{
		To:          email.To,
		FromAddress: m.config.FromAddress,
		FromName:    m.config.FromName,
		Subject:     email.Subject,
		HTML:        email.HTML,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.APIURL+"/v1/send", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+m.config.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var result mailSendResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w, body: %s", err, string(body))
	}
	if result.Code != 0 {
		return fmt.Errorf("mail provider error: %s", result.Message)
	}

	return nil
}
