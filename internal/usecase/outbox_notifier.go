package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iho/marketledger/internal/domain"
)

// OutboxNotifier implements Notifier by enqueueing notifications in the
// outbox. A background publisher delivers them.
type OutboxNotifier struct {
	outbox OutboxRepository
	idGen  IDGenerator
	now    func() time.Time
}

// NewOutboxNotifier creates a new OutboxNotifier.
func NewOutboxNotifier(outbox OutboxRepository, idGen IDGenerator) *OutboxNotifier {
	return &OutboxNotifier{
		outbox: outbox,
		idGen:  idGen,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Notify implements Notifier.
func (n *OutboxNotifier) Notify(ctx context.Context, msg domain.Notification) error {
	data, err := toPayloadMap(msg.Data)
	if err != nil {
		return fmt.Errorf("encode %s notification: %w", msg.Template, err)
	}

	event := &domain.OutboxEvent{
		ID:            n.idGen.Generate(),
		AggregateID:   msg.OrderID,
		AggregateType: domain.AggregateTypeOrder,
		EventType:     msg.EventType,
		Payload: map[string]any{
			"template":  msg.Template,
			"recipient": msg.Recipient,
			"email":     msg.Email,
			"data":      data,
		},
		CreatedAt: n.now(),
	}

	if err := n.outbox.Create(ctx, event); err != nil {
		return persistence("enqueue notification", err)
	}
	return nil
}

func toPayloadMap(v any) (map[string]any, error) {
	if v == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
