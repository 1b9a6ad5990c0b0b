package publisher

import (
	"context"

	"go.uber.org/zap"

	"github.com/mamadbah2/pvoil/internal/domain/models"
	"github.com/mamadbah2/pvoil/internal/service/reporting"
	client "github.com/mamadbah2/pvoil/pkg/clients/whatsapp"
)

// WhatsAppPublisher sends a short summary of the new prices to a WhatsApp recipient.
type WhatsAppPublisher struct {
	client client.Client
	to     string
	logger *zap.Logger
}

// NewWhatsAppPublisher builds a notification publisher.
func NewWhatsAppPublisher(c client.Client, to string, logger *zap.Logger) *WhatsAppPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsAppPublisher{client: c, to: to, logger: logger}
}

func (p *WhatsAppPublisher) Name() string { return "whatsapp" }

func (p *WhatsAppPublisher) Publish(ctx context.Context, update models.LedgerUpdate) error {
	resp, err := p.client.SendTextMessage(ctx, client.SendTextMessageRequest{
		To:   p.to,
		Body: reporting.FormatSummary(update),
	})
	if err != nil {
		return err
	}

	if len(resp.Messages) > 0 {
		p.logger.Debug("price summary sent", zap.String("message_id", resp.Messages[0].ID))
	}
	return nil
}
