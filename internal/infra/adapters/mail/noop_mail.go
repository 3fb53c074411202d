package mail

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"diy-research-agent/internal/domain/model"
	"diy-research-agent/internal/domain/ports/adapter"
)

var _ adapter.MailAdapter = (*NoopMailAdapter)(nil)

// NoopMailAdapter logs instead of sending; for local/dev runs without a
// SendGrid key.
type NoopMailAdapter struct{}

func NewNoopMailAdapter() *NoopMailAdapter {
	return &NoopMailAdapter{}
}

func (a *NoopMailAdapter) Send(ctx context.Context, msg adapter.MailMessage) (*model.DeliveryReceipt, error) {
	log.Printf("[noop-mail] to=%s subject=%q bytes=%d\n", msg.To, msg.Subject, len(msg.HTML))
	return &model.DeliveryReceipt{
		MessageID:  ulid.Make().String(),
		StatusCode: http.StatusAccepted,
		SentAt:     time.Now(),
	}, nil
}
