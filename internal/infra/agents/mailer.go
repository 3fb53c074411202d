package agents

import (
	"context"
	"regexp"
	"strings"

	"diy-research-agent/internal/domain"
	"diy-research-agent/internal/domain/model"
	"diy-research-agent/internal/domain/ports/adapter"
	"diy-research-agent/internal/domain/ports/agent"
	"diy-research-agent/internal/infra/metrics"
	"diy-research-agent/internal/infra/render"
)

// Compile-time check
var _ agent.Mailer = (*ReportMailer)(nil)

var mailAddressRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ReportMailer renders the report to HTML and hands it to the mail
// transport. Validation failures here are mailer failures, not silent
// skips; the transport's own error details pass through untouched.
type ReportMailer struct {
	transport adapter.MailAdapter
}

func NewReportMailer(transport adapter.MailAdapter) *ReportMailer {
	return &ReportMailer{transport: transport}
}

func (m *ReportMailer) Deliver(ctx context.Context, report *model.Report, to string) (*model.DeliveryReceipt, error) {
	if strings.TrimSpace(report.MarkdownReport) == "" {
		return nil, domain.NewExternalServiceError("mailer", domain.ErrEmptyReport)
	}
	if !mailAddressRx.MatchString(to) {
		return nil, domain.NewExternalServiceError("mailer", domain.ErrInvalidEmail)
	}

	htmlDoc, err := render.Email(report)
	if err != nil {
		return nil, domain.NewExternalServiceError("mailer", err)
	}

	receipt, err := m.transport.Send(ctx, adapter.MailMessage{
		To:      to,
		Subject: render.Subject(report),
		HTML:    htmlDoc,
	})
	metrics.IncMailDelivery(err == nil)
	if err != nil {
		return nil, domain.NewExternalServiceError("mailer", err)
	}
	return receipt, nil
}
