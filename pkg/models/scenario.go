// Package models defines the core domain models for scenario automation.
package models

import "time"

// ScenarioStatus represents the lifecycle state of a scenario.
type ScenarioStatus string

const (
	ScenarioStatusDraft    ScenarioStatus = "draft"    // Editable, not executable
	ScenarioStatusActive   ScenarioStatus = "active"   // Eligible for triggering
	ScenarioStatusPaused   ScenarioStatus = "paused"   // Temporarily disabled
	ScenarioStatusArchived ScenarioStatus = "archived" // Historical, not executable
)

// Scenario is a tenant-scoped automation defined as a node/edge graph plus
// default variables. Scenarios are never executed directly; a firing always
// goes through a Trigger.
type Scenario struct {
	ID          string         `json:"id"`
	TenantID    string         `json:"tenant_id"   validate:"required"`
	Name        string         `json:"name"        validate:"required,min=3"`
	Description string         `json:"description"`
	Status      ScenarioStatus `json:"status"      validate:"required"`
	IsActive    bool           `json:"is_active"`
	Nodes       []*Node        `json:"nodes"`
	Edges       []*Edge        `json:"edges"`
	Variables   map[string]any `json:"variables"`

	Version              int `json:"version"`
	ExecutionsCount      int `json:"executions_count"`
	SuccessfulExecutions int `json:"successful_executions"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Triggerable reports whether the scenario may be started by a trigger.
func (s *Scenario) Triggerable() bool {
	return s.Status == ScenarioStatusActive && s.IsActive && s.DeletedAt == nil
}

// StartNode returns the single START node of the graph, or nil when the
// graph has none.
func (s *Scenario) StartNode() *Node {
	for _, n := range s.Nodes {
		if n.Type == NodeTypeStart {
			return n
		}
	}

	return nil
}

// NodeByID returns the node with the given graph-unique id.
func (s *Scenario) NodeByID(id string) *Node {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n
		}
	}

	return nil
}

// Adjacency builds the source-node-id -> outgoing-edges index used by the
// executor. Edge order within a source is preserved: the executor picks the
// first edge whose handle matches the output port.
func (s *Scenario) Adjacency() map[string][]*Edge {
	adjacency := make(map[string][]*Edge, len(s.Edges))
	for _, e := range s.Edges {
		adjacency[e.Source] = append(adjacency[e.Source], e)
	}

	return adjacency
}
