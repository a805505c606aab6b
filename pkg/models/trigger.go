package models

import "time"

// Platform event types that can start a scenario.
const (
	EventConversationCreated  = "conversation.created"
	EventConversationAssigned = "conversation.assigned"
	EventConversationClosed   = "conversation.closed"
	EventConversationReopened = "conversation.reopened"
	EventMessageReceived      = "message.received"
	EventMessageSent          = "message.sent"
	EventCustomerCreated      = "customer.created"
	EventCustomerUpdated      = "customer.updated"
	EventSchedule             = "schedule"
	EventManual               = "manual"
)

// ConditionLogic selects how multiple trigger conditions combine.
type ConditionLogic string

const (
	ConditionLogicAnd ConditionLogic = "and"
	ConditionLogicOr  ConditionLogic = "or"
)

// Condition is one {field, operator, value} predicate evaluated against an
// event payload. Field is a dot-path (e.g. "customer.tags").
type Condition struct {
	Field    string `json:"field"    validate:"required"`
	Operator string `json:"operator" validate:"required"`
	Value    any    `json:"value"`
}

// Trigger binds a platform event type to a scenario for one tenant. Triggers
// never mutate themselves during evaluation.
type Trigger struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenant_id"   validate:"required"`
	ScenarioID string `json:"scenario_id" validate:"required"`
	Name       string `json:"name"        validate:"required,min=3"`

	EventType      string         `json:"event_type" validate:"required"`
	Conditions     []Condition    `json:"conditions"`
	ConditionLogic ConditionLogic `json:"condition_logic"`

	// Config carries trigger-type specific settings, e.g. a cron expression
	// for schedule triggers.
	Config map[string]any `json:"config,omitempty"`

	ChannelFilter []string `json:"channel_filter,omitempty"`
	Priority      int      `json:"priority"` // Higher fires first
	IsActive      bool     `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Logic returns the effective condition logic, defaulting to "and".
func (t *Trigger) Logic() ConditionLogic {
	if t.ConditionLogic == ConditionLogicOr {
		return ConditionLogicOr
	}

	return ConditionLogicAnd
}
