package nodes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/omnidesk/scenario-engine/pkg/events"
	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/omnidesk/scenario-engine/pkg/platform"
)

// SendMessageHandler posts an outbound bot message on the bound conversation
// and notifies collaborators through the event bus.
type SendMessageHandler struct {
	deps Deps
}

func (h *SendMessageHandler) Execute(ctx context.Context, config map[string]any, ectx *models.ExecutionContext) (string, error) {
	return h.send(ctx, configString(config, "message", ""), ectx)
}

func (h *SendMessageHandler) send(ctx context.Context, message string, ectx *models.ExecutionContext) (string, error) {
	if ectx.ConversationID == "" {
		return "", errors.New("no conversation bound to execution")
	}

	if message == "" {
		return "", errors.New("empty message")
	}

	messageID, err := h.deps.Messenger.PostMessage(ctx, ectx.ConversationID, message, map[string]any{
		"scenario_id": ectx.ScenarioID,
	})
	if err != nil {
		return "", err
	}

	event := events.MessageSent{
		BaseEvent: events.BaseEvent{
			ID:        uuid.NewString(),
			Type:      events.MessageSentEventType,
			Timestamp: time.Now().UTC(),
			TenantID:  ectx.TenantID,
		},
		ConversationID: ectx.ConversationID,
		MessageID:      messageID,
		ScenarioID:     ectx.ScenarioID,
	}

	err = h.deps.Publisher.Publish(ctx, ectx.TenantID, event)
	if err != nil {
		// The message is already posted; losing the notification is
		// recoverable downstream.
		h.deps.Logger.WarnContext(ctx, "Failed to publish message.sent event", "error", err)
	}

	return models.PortOut, nil
}

// SendEmailHandler enqueues an email job for the conversation's customer
// contact. A missing contact email routes to the error port.
type SendEmailHandler struct {
	deps Deps
}

func (h *SendEmailHandler) Execute(ctx context.Context, config map[string]any, ectx *models.ExecutionContext) (string, error) {
	email, _ := models.Lookup(ectx.Variables, "customer.email")

	to, ok := email.(string)
	if !ok || to == "" {
		return "", errors.New("customer has no email address")
	}

	body := configString(config, "body", "")

	return models.PortOut, h.deps.Notifications.EnqueueEmail(ctx, platform.EmailJob{
		To:       to,
		Subject:  configString(config, "subject", ""),
		BodyText: body,
		BodyHTML: body,
	})
}
