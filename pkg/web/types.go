// Package web provides the REST API for scenario and trigger management.
package web

import "github.com/omnidesk/scenario-engine/pkg/models"

// CreateScenarioRequest is the body for creating a scenario.
type CreateScenarioRequest struct {
	Name        string                `json:"name"        validate:"required,min=3"`
	Description string                `json:"description"`
	Status      models.ScenarioStatus `json:"status"      validate:"omitempty,oneof=draft active paused archived"`
	IsActive    bool                  `json:"is_active"`
	Nodes       []*models.Node        `json:"nodes"`
	Edges       []*models.Edge        `json:"edges"`
	Variables   map[string]any        `json:"variables"`
}

// UpdateScenarioRequest supports partial updates; nil fields keep their
// current values.
type UpdateScenarioRequest struct {
	Name        *string                `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string                `json:"description,omitempty"`
	Status      *models.ScenarioStatus `json:"status,omitempty"      validate:"omitempty,oneof=draft active paused archived"`
	IsActive    *bool                  `json:"is_active,omitempty"`
	Nodes       []*models.Node         `json:"nodes,omitempty"`
	Edges       []*models.Edge         `json:"edges,omitempty"`
	Variables   map[string]any         `json:"variables,omitempty"`
}

// CreateTriggerRequest is the body for creating a trigger.
type CreateTriggerRequest struct {
	ScenarioID     string                `json:"scenario_id"     validate:"required"`
	Name           string                `json:"name"            validate:"required,min=3"`
	EventType      string                `json:"event_type"      validate:"required"`
	Conditions     []models.Condition    `json:"conditions"`
	ConditionLogic models.ConditionLogic `json:"condition_logic" validate:"omitempty,oneof=and or"`
	Config         map[string]any        `json:"config"`
	ChannelFilter  []string              `json:"channel_filter"`
	Priority       int                   `json:"priority"`
	IsActive       bool                  `json:"is_active"`
}

// UpdateTriggerRequest supports partial trigger updates.
type UpdateTriggerRequest struct {
	Name           *string                `json:"name,omitempty"            validate:"omitempty,min=3"`
	EventType      *string                `json:"event_type,omitempty"`
	Conditions     []models.Condition     `json:"conditions,omitempty"`
	ConditionLogic *models.ConditionLogic `json:"condition_logic,omitempty" validate:"omitempty,oneof=and or"`
	Config         map[string]any         `json:"config,omitempty"`
	ChannelFilter  []string               `json:"channel_filter,omitempty"`
	Priority       *int                   `json:"priority,omitempty"`
	IsActive       *bool                  `json:"is_active,omitempty"`
}

// FireEventRequest is the body of the manual test-run endpoint.
type FireEventRequest struct {
	EventType string         `json:"event_type" validate:"required"`
	Data      map[string]any `json:"data"`
}
