// Package notify dispatches booking events to customers and admins. The
// current sink logs the dispatch; SMS/WhatsApp delivery plugs in behind it.
package notify

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"travelink/internal/kafka"
)

type Sink struct {
	log *zap.Logger
}

func NewSink(log *zap.Logger) *Sink {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sink{log: log}
}

// Handle routes a raw event payload by its type field. Unknown types are
// logged and dropped so a schema bump never wedges the consumer group.
func (s *Sink) Handle(ctx context.Context, payload []byte) error {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		s.log.Warn("notify: malformed event", zap.Error(err))
		return nil
	}

	switch envelope.Type {
	case "ticket_created", "ticket_confirmed", "ticket_cancelled", "ticket_completed":
		var event kafka.TicketEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return err
		}
		s.log.Info("notify ticket event",
			zap.String("type", event.Type),
			zap.String("ticket_number", event.TicketNumber),
			zap.String("status", event.Status))
	case "proof_submitted", "proof_rejected":
		var event kafka.ProofEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return err
		}
		s.log.Info("notify proof event",
			zap.String("type", event.Type),
			zap.String("proof_number", event.ProofNumber),
			zap.String("status", event.Status))
	case "coin_credited", "coin_debited", "coin_refunded":
		var event kafka.CoinEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return err
		}
		s.log.Info("notify coin event",
			zap.String("type", event.Type),
			zap.String("admin_id", event.AdminID),
			zap.Int64("amount", event.Amount),
			zap.Int64("balance_after", event.BalanceAfter))
	default:
		s.log.Debug("notify: unhandled event type", zap.String("type", envelope.Type))
	}
	return nil
}
