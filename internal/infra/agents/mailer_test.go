// File: internal/infra/agents/mailer_test.go
package agents

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"diy-research-agent/internal/domain"
	"diy-research-agent/internal/domain/model"
	"diy-research-agent/internal/domain/ports/adapter"
)

type fakeTransport struct {
	sent []adapter.MailMessage
	err  error
}

func (f *fakeTransport) Send(_ context.Context, msg adapter.MailMessage) (*model.DeliveryReceipt, error) {
	f.sent = append(f.sent, msg)
	if f.err != nil {
		return nil, f.err
	}
	return &model.DeliveryReceipt{MessageID: "msg-1", StatusCode: 202, SentAt: time.Now()}, nil
}

func TestDeliverRendersAndSends(t *testing.T) {
	transport := &fakeTransport{}
	m := NewReportMailer(transport)
	report := &model.Report{
		ShortSummary:   "Laminat in drei Schritten.",
		MarkdownReport: "# Laminat verlegen\n\n## Uebersicht\nText.",
	}

	receipt, err := m.Deliver(context.Background(), report, "kunde@example.com")
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if receipt.StatusCode != 202 {
		t.Errorf("status = %d", receipt.StatusCode)
	}
	if len(transport.sent) != 1 {
		t.Fatalf("sent %d messages", len(transport.sent))
	}
	msg := transport.sent[0]
	if msg.To != "kunde@example.com" {
		t.Errorf("to = %q", msg.To)
	}
	if msg.Subject == "" {
		t.Error("empty subject")
	}
	if !strings.Contains(msg.HTML, "<h1") {
		t.Errorf("body not rendered to HTML: %q", msg.HTML)
	}
}

func TestDeliverRejectsEmptyReport(t *testing.T) {
	transport := &fakeTransport{}
	m := NewReportMailer(transport)

	_, err := m.Deliver(context.Background(), &model.Report{MarkdownReport: "  "}, "kunde@example.com")
	if !domain.IsExternalServiceError(err) || !errors.Is(err, domain.ErrEmptyReport) {
		t.Fatalf("got %v", err)
	}
	if len(transport.sent) != 0 {
		t.Error("empty report was sent")
	}
}

func TestDeliverRejectsBadAddress(t *testing.T) {
	transport := &fakeTransport{}
	m := NewReportMailer(transport)
	report := &model.Report{MarkdownReport: "# R\nText."}

	_, err := m.Deliver(context.Background(), report, "not-an-address")
	if !errors.Is(err, domain.ErrInvalidEmail) {
		t.Fatalf("got %v", err)
	}
}

func TestDeliverPassesTransportErrorThrough(t *testing.T) {
	transport := &fakeTransport{err: errors.New("sendgrid http 401: unauthorized")}
	m := NewReportMailer(transport)
	report := &model.Report{MarkdownReport: "# R\nText."}

	_, err := m.Deliver(context.Background(), report, "kunde@example.com")
	if !domain.IsExternalServiceError(err) {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(err.Error(), "sendgrid http 401") {
		t.Errorf("provider detail lost: %v", err)
	}
}
