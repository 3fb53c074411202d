// Package mail implements the outbound email transport port.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"diy-research-agent/internal/domain/model"
	"diy-research-agent/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.MailAdapter = (*SendGridAdapter)(nil)

const sendGridURL = "https://api.sendgrid.com/v3/mail/send"

// SendGridAdapter posts the v3 mail/send payload. Provider errors carry
// the HTTP status and a body snippet so operators can diagnose failed
// deliveries from the job status alone.
type SendGridAdapter struct {
	apiKey string
	from   string
	base   string
	client *http.Client
}

func NewSendGridAdapter(apiKey, from string) (*SendGridAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("sendgrid api key empty")
	}
	if from == "" {
		return nil, errors.New("sendgrid from address empty")
	}
	return &SendGridAdapter{
		apiKey: apiKey,
		from:   from,
		base:   sendGridURL,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// WithBaseURL overrides the endpoint; used by tests.
func (s *SendGridAdapter) WithBaseURL(u string) *SendGridAdapter {
	s.base = u
	return s
}

func (s *SendGridAdapter) Send(ctx context.Context, msg adapter.MailMessage) (*model.DeliveryReceipt, error) {
	payload := map[string]any{
		"personalizations": []map[string]any{
			{"to": []map[string]string{{"email": msg.To}}},
		},
		"from":    map[string]string{"email": s.from},
		"subject": msg.Subject,
		"content": []map[string]string{
			{"type": "text/html", "value": msg.HTML},
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.base, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sendgrid: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("sendgrid http %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	return &model.DeliveryReceipt{
		MessageID:  ulid.Make().String(),
		StatusCode: resp.StatusCode,
		SentAt:     time.Now(),
	}, nil
}
