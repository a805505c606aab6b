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

// ExecutionRepository handles execution record database operations. It also
// maintains the per-scenario execution counters.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

const executionColumns = `
	id
  , tenant_id
  , scenario_id
  , status
  , trigger_event
  , trigger_data
  , result
  , error_message
  , execution_log
  , started_at
  , completed_at
`

// CreateExecution inserts a new execution record and increments the owning
// scenario's executions counter.
func (r *ExecutionRepository) CreateExecution(ctx context.Context, execution *models.Execution) error {
	if execution.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate execution ID: %w", err)
		}

		execution.ID = id.String()
	}

	if execution.StartedAt.IsZero() {
		execution.StartedAt = time.Now().UTC()
	}

	triggerDataJSON, resultJSON, logJSON, err := marshalExecutionFields(execution)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO scenario_executions (id, tenant_id, scenario_id, status,
			trigger_event, trigger_data, result, error_message, execution_log,
			started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = tx.ExecContext(ctx, query,
		execution.ID,
		execution.TenantID,
		execution.ScenarioID,
		execution.Status,
		execution.TriggerEvent,
		triggerDataJSON,
		resultJSON,
		execution.ErrorMessage,
		logJSON,
		execution.StartedAt,
		execution.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create execution: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE scenarios SET executions_count = executions_count + 1 WHERE id = $1",
		execution.ScenarioID)
	if err != nil {
		return fmt.Errorf("failed to increment executions counter: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateExecution updates a non-terminal execution record. Reaching the
// completed status increments the scenario's success counter.
func (r *ExecutionRepository) UpdateExecution(ctx context.Context, execution *models.Execution) error {
	triggerDataJSON, resultJSON, logJSON, err := marshalExecutionFields(execution)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var currentStatus models.ExecutionStatus

	err = tx.QueryRowContext(ctx,
		"SELECT status FROM scenario_executions WHERE id = $1 FOR UPDATE",
		execution.ID).Scan(&currentStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.ErrExecutionNotFound
		}

		return fmt.Errorf("failed to lock execution: %w", err)
	}

	if currentStatus.Terminal() {
		return persistence.ErrExecutionTerminal
	}

	query := `
		UPDATE scenario_executions SET
			status = $2,
			trigger_data = $3,
			result = $4,
			error_message = $5,
			execution_log = $6,
			completed_at = $7
		WHERE id = $1
	`

	_, err = tx.ExecContext(ctx, query,
		execution.ID,
		execution.Status,
		triggerDataJSON,
		resultJSON,
		execution.ErrorMessage,
		logJSON,
		execution.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update execution: %w", err)
	}

	if execution.Status == models.ExecutionStatusCompleted {
		_, err = tx.ExecContext(ctx,
			"UPDATE scenarios SET successful_executions = successful_executions + 1 WHERE id = $1",
			execution.ScenarioID)
		if err != nil {
			return fmt.Errorf("failed to increment success counter: %w", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ExecutionByID returns a tenant's execution record by its ID.
func (r *ExecutionRepository) ExecutionByID(ctx context.Context, tenantID, id string) (*models.Execution, error) {
	query := `
		SELECT ` + executionColumns + `
		FROM scenario_executions
		WHERE id = $1 AND tenant_id = $2
	`

	row := r.db.QueryRowContext(ctx, query, id, tenantID)

	execution, err := scanExecution(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrExecutionNotFound
		}

		return nil, fmt.Errorf("failed to scan execution: %w", err)
	}

	return execution, nil
}

// ExecutionsByScenario returns the most recent executions of a scenario.
func (r *ExecutionRepository) ExecutionsByScenario(ctx context.Context, tenantID, scenarioID string, limit int) ([]*models.Execution, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + executionColumns + `
		FROM scenario_executions
		WHERE tenant_id = $1 AND scenario_id = $2
		ORDER BY started_at DESC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, scenarioID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	executions := make([]*models.Execution, 0)

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		executions = append(executions, execution)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	return executions, nil
}

func marshalExecutionFields(execution *models.Execution) (triggerData, result, log []byte, err error) {
	triggerData, err = json.Marshal(execution.TriggerData)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal trigger data: %w", err)
	}

	if execution.Result != nil {
		result, err = json.Marshal(execution.Result)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal result: %w", err)
		}
	}

	if execution.ExecutionLog != nil {
		log, err = json.Marshal(execution.ExecutionLog)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal execution log: %w", err)
		}
	}

	return triggerData, result, log, nil
}

func scanExecution(scanner interface {
	Scan(dest ...any) error
}) (*models.Execution, error) {
	var (
		execution                      models.Execution
		triggerDataJSON, resultJSON    []byte
		logJSON                        []byte
	)

	err := scanner.Scan(
		&execution.ID,
		&execution.TenantID,
		&execution.ScenarioID,
		&execution.Status,
		&execution.TriggerEvent,
		&triggerDataJSON,
		&resultJSON,
		&execution.ErrorMessage,
		&logJSON,
		&execution.StartedAt,
		&execution.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if triggerDataJSON != nil {
		err := json.Unmarshal(triggerDataJSON, &execution.TriggerData)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger data: %w", err)
		}
	}

	if resultJSON != nil {
		err := json.Unmarshal(resultJSON, &execution.Result)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
	}

	if logJSON != nil {
		err := json.Unmarshal(logJSON, &execution.ExecutionLog)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution log: %w", err)
		}
	}

	return &execution, nil
}
