package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/omnidesk/scenario-engine/pkg/persistence"
)

// ScenarioRepository handles scenario-related database operations.
type ScenarioRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewScenarioRepository creates a new scenario repository.
func NewScenarioRepository(db *sql.DB, logger *slog.Logger) *ScenarioRepository {
	return &ScenarioRepository{db: db, logger: logger}
}

const scenarioColumns = `
	id
  , tenant_id
  , name
  , description
  , status
  , is_active
  , nodes
  , edges
  , variables
  , version
  , executions_count
  , successful_executions
  , created_at
  , updated_at
  , deleted_at
`

// Scenarios returns all non-deleted scenarios for a tenant, newest first.
func (r *ScenarioRepository) Scenarios(ctx context.Context, tenantID string) ([]*models.Scenario, error) {
	query := `
		SELECT ` + scenarioColumns + `
		FROM scenarios
		WHERE tenant_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenarios: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	scenarios := make([]*models.Scenario, 0)

	for rows.Next() {
		scenario, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}

		scenarios = append(scenarios, scenario)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating scenarios: %w", err)
	}

	return scenarios, nil
}

// ScenarioByID returns a tenant's scenario by its ID.
func (r *ScenarioRepository) ScenarioByID(ctx context.Context, tenantID, id string) (*models.Scenario, error) {
	query := `
		SELECT ` + scenarioColumns + `
		FROM scenarios
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`

	row := r.db.QueryRowContext(ctx, query, id, tenantID)

	scenario, err := scanScenario(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewScenarioError("ScenarioByID", id, persistence.ErrScenarioNotFound)
		}

		return nil, fmt.Errorf("failed to scan scenario: %w", err)
	}

	return scenario, nil
}

// ActiveScenarioByID returns the scenario only when it is eligible for
// triggering.
func (r *ScenarioRepository) ActiveScenarioByID(ctx context.Context, tenantID, id string) (*models.Scenario, error) {
	scenario, err := r.ScenarioByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if !scenario.Triggerable() {
		return nil, persistence.NewScenarioError("ActiveScenarioByID", id, persistence.ErrScenarioNotFound)
	}

	return scenario, nil
}

// SaveScenario inserts or updates a scenario. Every save of an existing
// scenario bumps its version.
func (r *ScenarioRepository) SaveScenario(ctx context.Context, scenario *models.Scenario) error {
	now := time.Now().UTC()

	if scenario.CreatedAt.IsZero() {
		scenario.CreatedAt = now
	}

	scenario.UpdatedAt = now

	if scenario.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate scenario ID: %w", err)
		}

		scenario.ID = id.String()
		scenario.Version = 1
	}

	nodesJSON, err := json.Marshal(scenario.Nodes)
	if err != nil {
		return fmt.Errorf("failed to marshal nodes: %w", err)
	}

	edgesJSON, err := json.Marshal(scenario.Edges)
	if err != nil {
		return fmt.Errorf("failed to marshal edges: %w", err)
	}

	variablesJSON, err := json.Marshal(scenario.Variables)
	if err != nil {
		return fmt.Errorf("failed to marshal variables: %w", err)
	}

	query := `
		INSERT INTO scenarios (id, tenant_id, name, description, status, is_active,
			nodes, edges, variables, version, executions_count, successful_executions,
			created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			is_active = EXCLUDED.is_active,
			nodes = EXCLUDED.nodes,
			edges = EXCLUDED.edges,
			variables = EXCLUDED.variables,
			version = scenarios.version + 1,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
		RETURNING version
	`

	err = r.db.QueryRowContext(ctx, query,
		scenario.ID,
		scenario.TenantID,
		scenario.Name,
		scenario.Description,
		scenario.Status,
		scenario.IsActive,
		nodesJSON,
		edgesJSON,
		variablesJSON,
		scenario.Version,
		scenario.ExecutionsCount,
		scenario.SuccessfulExecutions,
		scenario.CreatedAt,
		scenario.UpdatedAt,
		scenario.DeletedAt,
	).Scan(&scenario.Version)
	if err != nil {
		return fmt.Errorf("failed to save scenario: %w", err)
	}

	return nil
}

// DeleteScenario soft deletes a scenario by setting its deleted_at timestamp.
func (r *ScenarioRepository) DeleteScenario(ctx context.Context, tenantID, id string) error {
	query := `UPDATE scenarios SET deleted_at = NOW() WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewScenarioError("DeleteScenario", id, persistence.ErrScenarioNotFound)
	}

	return nil
}

func scanScenario(scanner interface {
	Scan(dest ...any) error
}) (*models.Scenario, error) {
	var (
		scenario                            models.Scenario
		nodesJSON, edgesJSON, variablesJSON []byte
	)

	err := scanner.Scan(
		&scenario.ID,
		&scenario.TenantID,
		&scenario.Name,
		&scenario.Description,
		&scenario.Status,
		&scenario.IsActive,
		&nodesJSON,
		&edgesJSON,
		&variablesJSON,
		&scenario.Version,
		&scenario.ExecutionsCount,
		&scenario.SuccessfulExecutions,
		&scenario.CreatedAt,
		&scenario.UpdatedAt,
		&scenario.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	if nodesJSON != nil {
		err := json.Unmarshal(nodesJSON, &scenario.Nodes)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal nodes: %w", err)
		}
	}

	if edgesJSON != nil {
		err := json.Unmarshal(edgesJSON, &scenario.Edges)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal edges: %w", err)
		}
	}

	if variablesJSON != nil {
		err := json.Unmarshal(variablesJSON, &scenario.Variables)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal variables: %w", err)
		}
	}

	return &scenario, nil
}
