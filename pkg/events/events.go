// Package events defines the event envelopes flowing through the automation
// event bus: platform events entering the engine and engine lifecycle
// notifications leaving it.
package events

import (
	"time"
)

// EventType identifies the envelope shape on the bus. The platform event
// name (conversation.created, message.received, ...) travels inside the
// PlatformEvent payload.
type EventType string

// Topic is the bus topic all automation events are published on.
const Topic = "scenario.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// PlatformEventType wraps a platform lifecycle event that may start
	// scenarios.
	PlatformEventType EventType = "platform.event"

	// Execution lifecycle notifications.
	ExecutionStartedEventType   EventType = "execution.started"
	ExecutionCompletedEventType EventType = "execution.completed"
	ExecutionFailedEventType    EventType = "execution.failed"

	// MessageSentEventType is emitted when a scenario posts a bot message.
	MessageSentEventType EventType = "message.sent"
)

// BaseEvent carries fields shared by all envelopes.
type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	TenantID  string         `json:"tenant_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// PlatformEvent is the inbound envelope: one platform lifecycle event with
// its denormalized payload.
type PlatformEvent struct {
	BaseEvent

	EventName string         `json:"event_name"`
	Data      map[string]any `json:"data,omitempty"`
}

func (e PlatformEvent) GetType() EventType {
	return PlatformEventType
}

// ExecutionStarted notifies that a firing created an execution record.
type ExecutionStarted struct {
	BaseEvent

	ExecutionID  string `json:"execution_id"`
	ScenarioID   string `json:"scenario_id"`
	TriggerEvent string `json:"trigger_event"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEventType
}

// ExecutionCompleted notifies a clean terminal state.
type ExecutionCompleted struct {
	BaseEvent

	ExecutionID string        `json:"execution_id"`
	ScenarioID  string        `json:"scenario_id"`
	Duration    time.Duration `json:"duration"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEventType
}

// ExecutionFailed notifies a failed terminal state. Watchers that alert on
// failures consume this.
type ExecutionFailed struct {
	BaseEvent

	ExecutionID string        `json:"execution_id"`
	ScenarioID  string        `json:"scenario_id"`
	Error       string        `json:"error"`
	Duration    time.Duration `json:"duration"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEventType
}

// MessageSent notifies collaborators that a bot message was posted.
type MessageSent struct {
	BaseEvent

	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	ScenarioID     string `json:"scenario_id,omitempty"`
}

func (e MessageSent) GetType() EventType {
	return MessageSentEventType
}
