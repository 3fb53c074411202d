package adapter

import (
	"context"

	"diy-research-agent/internal/domain/model"
)

// MailMessage is a fully rendered outbound email.
type MailMessage struct {
	To      string
	Subject string
	HTML    string
}

// MailAdapter is the port for outbound email transport.
type MailAdapter interface {
	Send(ctx context.Context, msg MailMessage) (*model.DeliveryReceipt, error)
}
