// Package persistence provides the storage abstraction for scenarios,
// triggers and execution records.
package persistence

import (
	"context"

	"github.com/omnidesk/scenario-engine/pkg/models"
)

// ScenarioRepository stores scenario definitions.
type ScenarioRepository interface {
	Scenarios(ctx context.Context, tenantID string) ([]*models.Scenario, error)
	ScenarioByID(ctx context.Context, tenantID, id string) (*models.Scenario, error)

	// ActiveScenarioByID returns the scenario only when it is eligible for
	// triggering (status active, is_active set). A missing or ineligible
	// scenario yields ErrScenarioNotFound.
	ActiveScenarioByID(ctx context.Context, tenantID, id string) (*models.Scenario, error)

	SaveScenario(ctx context.Context, scenario *models.Scenario) error
	DeleteScenario(ctx context.Context, tenantID, id string) error
}

// TriggerRepository stores trigger bindings.
type TriggerRepository interface {
	// ActiveTriggers returns active triggers for the tenant and event type
	// whose owning scenario is itself eligible for triggering, ordered by
	// descending priority.
	ActiveTriggers(ctx context.Context, tenantID, eventType string) ([]*models.Trigger, error)

	TriggersByScenario(ctx context.Context, tenantID, scenarioID string) ([]*models.Trigger, error)
	TriggerByID(ctx context.Context, tenantID, id string) (*models.Trigger, error)
	SaveTrigger(ctx context.Context, trigger *models.Trigger) error
	DeleteTrigger(ctx context.Context, tenantID, id string) error

	// ScheduleTriggers returns every active schedule trigger across tenants;
	// the cron scheduler scans these.
	ScheduleTriggers(ctx context.Context) ([]*models.Trigger, error)
}

// ExecutionRepository stores execution records. An execution is created in
// the running state and updated exactly once into a terminal state.
type ExecutionRepository interface {
	CreateExecution(ctx context.Context, execution *models.Execution) error
	UpdateExecution(ctx context.Context, execution *models.Execution) error
	ExecutionByID(ctx context.Context, tenantID, id string) (*models.Execution, error)
	ExecutionsByScenario(ctx context.Context, tenantID, scenarioID string, limit int) ([]*models.Execution, error)
}

// Persistence aggregates the repositories behind one connection lifecycle.
type Persistence interface {
	ScenarioRepository() ScenarioRepository
	TriggerRepository() TriggerRepository
	ExecutionRepository() ExecutionRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
