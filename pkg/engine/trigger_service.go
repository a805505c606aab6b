package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/omnidesk/scenario-engine/pkg/conditions"
	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/omnidesk/scenario-engine/pkg/persistence"
	"github.com/omnidesk/scenario-engine/pkg/platform"
)

// TriggerService decides which scenarios an incoming platform event starts
// and launches each match on its own goroutine. Matching is evaluated in
// priority order; completion order is unspecified.
type TriggerService struct {
	persistence   persistence.Persistence
	executor      *Executor
	conversations platform.ConversationStore
	customers     platform.CustomerStore
	logger        *slog.Logger

	wg sync.WaitGroup
}

// NewTriggerService creates a trigger service. The conversation and customer
// stores are only used by the denormalizing convenience wrappers and may be
// nil when callers always build payloads themselves.
func NewTriggerService(
	p persistence.Persistence,
	executor *Executor,
	conversations platform.ConversationStore,
	customers platform.CustomerStore,
	logger *slog.Logger,
) *TriggerService {
	return &TriggerService{
		persistence:   p,
		executor:      executor,
		conversations: conversations,
		customers:     customers,
		logger:        logger,
	}
}

// FireEvent evaluates every active trigger bound to (tenant, eventType) and
// starts the scenarios whose filters and conditions match the payload. It
// returns the number of scenarios launched; per-trigger failures are logged
// and never block other triggers.
func (s *TriggerService) FireEvent(ctx context.Context, eventType, tenantID string, data map[string]any) (int, error) {
	logger := s.logger.With("tenant_id", tenantID, "event_type", eventType)
	logger.InfoContext(ctx, "Firing event")

	triggers, err := s.persistence.TriggerRepository().ActiveTriggers(ctx, tenantID, eventType)
	if err != nil {
		return 0, err
	}

	logger.DebugContext(ctx, "Loaded triggers", "count", len(triggers))

	launched := 0

	for _, trigger := range triggers {
		if !s.shouldFire(trigger, data) {
			continue
		}

		logger.InfoContext(ctx, "Trigger matched",
			"trigger_id", trigger.ID,
			"scenario_id", trigger.ScenarioID,
			"priority", trigger.Priority)

		launched++

		s.wg.Add(1)

		go func(trigger *models.Trigger) {
			defer s.wg.Done()

			// The firing must not die with the caller's request context.
			_, err := s.executor.Execute(context.WithoutCancel(ctx), tenantID, trigger.ScenarioID, eventType, data)
			if err != nil {
				logger.ErrorContext(ctx, "Scenario execution failed",
					"trigger_id", trigger.ID,
					"scenario_id", trigger.ScenarioID,
					"error", err)
			}
		}(trigger)
	}

	return launched, nil
}

// Wait blocks until all in-flight executions launched by this service finish.
// Used on shutdown and in tests.
func (s *TriggerService) Wait() {
	s.wg.Wait()
}

// shouldFire applies the channel filter and the trigger's conditions.
func (s *TriggerService) shouldFire(trigger *models.Trigger, data map[string]any) bool {
	if len(trigger.ChannelFilter) > 0 {
		channel, _ := models.Lookup(data, "conversation.channel")

		channelStr, ok := channel.(string)
		if !ok {
			return false
		}

		found := false

		for _, allowed := range trigger.ChannelFilter {
			if allowed == channelStr {
				found = true

				break
			}
		}

		if !found {
			return false
		}
	}

	return conditions.EvaluateAll(trigger.Conditions, data, trigger.Logic())
}

// FireConversationEvent denormalizes the conversation (and its customer)
// into the payload before firing.
func (s *TriggerService) FireConversationEvent(ctx context.Context, eventType, tenantID, conversationID string, extra map[string]any) (int, error) {
	conversation, err := s.conversations.GetConversation(ctx, conversationID)
	if err != nil || conversation == nil {
		return 0, err
	}

	data := map[string]any{
		"conversation_id": conversationID,
		"conversation":    conversationPayload(conversation),
	}

	if conversation.CustomerID != "" {
		data["customer_id"] = conversation.CustomerID
		s.attachCustomer(ctx, data, conversation.CustomerID)
	}

	for k, v := range extra {
		data[k] = v
	}

	return s.FireEvent(ctx, eventType, tenantID, data)
}

// FireMessageEvent fires a message-scoped event carrying the message text and
// the denormalized conversation state.
func (s *TriggerService) FireMessageEvent(ctx context.Context, eventType, tenantID, messageID, conversationID, messageText string) (int, error) {
	conversation, err := s.conversations.GetConversation(ctx, conversationID)
	if err != nil || conversation == nil {
		return 0, err
	}

	data := map[string]any{
		"message_id":      messageID,
		"message_text":    messageText,
		"conversation_id": conversationID,
		"conversation":    conversationPayload(conversation),
	}

	if conversation.CustomerID != "" {
		data["customer_id"] = conversation.CustomerID
		s.attachCustomer(ctx, data, conversation.CustomerID)
	}

	return s.FireEvent(ctx, eventType, tenantID, data)
}

func (s *TriggerService) attachCustomer(ctx context.Context, data map[string]any, customerID string) {
	customer, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil || customer == nil {
		return
	}

	data["customer"] = map[string]any{
		"id":    customer.ID,
		"email": customer.Email,
		"phone": customer.Phone,
		"name":  customer.Name,
		"tags":  customer.Tags,
	}
}

func conversationPayload(c *platform.Conversation) map[string]any {
	return map[string]any{
		"id":       c.ID,
		"status":   c.Status,
		"channel":  c.Channel,
		"priority": c.Priority,
		"tags":     c.Tags,
		"subject":  c.Subject,
	}
}
