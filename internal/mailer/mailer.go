// Package mailer sends transactional email through an HTTP mail API.
// Every send is best-effort from the lifecycle's point of view: callers
// log failures and move on, they never fail a request over email.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Mailer is the notification surface the lifecycle depends on.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// HTTPMailer delivers mail through a transactional email HTTP API.
type HTTPMailer struct {
	endpoint string
	apiKey   string
	sender   string
	client   *http.Client
}

// NewHTTPMailer creates a mailer client bounded by the given timeout.
func NewHTTPMailer(endpoint, apiKey, sender string, timeout time.Duration) *HTTPMailer {
	return &HTTPMailer{
		endpoint: endpoint,
		apiKey:   apiKey,
		sender:   sender,
		client:   &http.Client{Timeout: timeout},
	}
}

type sendRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	TextBody string `json:"text_body"`
}

// Send delivers one email.
func (m *HTTPMailer) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	payload, err := json.Marshal(sendRequest{
		From:     m.sender,
		To:       to,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mail API returned %d: %s", resp.StatusCode, raw)
	}
	return nil
}
