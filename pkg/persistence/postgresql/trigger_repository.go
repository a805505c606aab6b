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

// TriggerRepository handles trigger-related database operations.
type TriggerRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTriggerRepository creates a new trigger repository.
func NewTriggerRepository(db *sql.DB, logger *slog.Logger) *TriggerRepository {
	return &TriggerRepository{db: db, logger: logger}
}

const triggerColumns = `
	t.id
  , t.tenant_id
  , t.scenario_id
  , t.name
  , t.event_type
  , t.conditions
  , t.condition_logic
  , t.config
  , t.channel_filter
  , t.priority
  , t.is_active
  , t.created_at
  , t.updated_at
`

// ActiveTriggers returns active triggers for a tenant and event type whose
// owning scenario is eligible for triggering, highest priority first.
func (r *TriggerRepository) ActiveTriggers(ctx context.Context, tenantID, eventType string) ([]*models.Trigger, error) {
	query := `
		SELECT ` + triggerColumns + `
		FROM scenario_triggers t
		JOIN scenarios s ON s.id = t.scenario_id
		WHERE t.tenant_id = $1
		  AND t.event_type = $2
		  AND t.is_active = true
		  AND s.status = 'active'
		  AND s.is_active = true
		  AND s.deleted_at IS NULL
		ORDER BY t.priority DESC, t.created_at
	`

	return r.queryTriggers(ctx, query, tenantID, eventType)
}

// TriggersByScenario returns all triggers bound to a scenario.
func (r *TriggerRepository) TriggersByScenario(ctx context.Context, tenantID, scenarioID string) ([]*models.Trigger, error) {
	query := `
		SELECT ` + triggerColumns + `
		FROM scenario_triggers t
		WHERE t.tenant_id = $1 AND t.scenario_id = $2
		ORDER BY t.priority DESC, t.created_at
	`

	return r.queryTriggers(ctx, query, tenantID, scenarioID)
}

// ScheduleTriggers returns every active schedule trigger across all tenants.
// The scheduler uses this to build its cron entries.
func (r *TriggerRepository) ScheduleTriggers(ctx context.Context) ([]*models.Trigger, error) {
	query := `
		SELECT ` + triggerColumns + `
		FROM scenario_triggers t
		JOIN scenarios s ON s.id = t.scenario_id
		WHERE t.event_type = $1
		  AND t.is_active = true
		  AND s.deleted_at IS NULL
		ORDER BY t.created_at
	`

	return r.queryTriggers(ctx, query, models.EventSchedule)
}

// TriggerByID returns a tenant's trigger by its ID.
func (r *TriggerRepository) TriggerByID(ctx context.Context, tenantID, id string) (*models.Trigger, error) {
	query := `
		SELECT ` + triggerColumns + `
		FROM scenario_triggers t
		WHERE t.id = $1 AND t.tenant_id = $2
	`

	row := r.db.QueryRowContext(ctx, query, id, tenantID)

	trigger, err := scanTrigger(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrTriggerNotFound
		}

		return nil, fmt.Errorf("failed to scan trigger: %w", err)
	}

	return trigger, nil
}

// SaveTrigger inserts or updates a trigger.
func (r *TriggerRepository) SaveTrigger(ctx context.Context, trigger *models.Trigger) error {
	now := time.Now().UTC()

	if trigger.CreatedAt.IsZero() {
		trigger.CreatedAt = now
	}

	trigger.UpdatedAt = now

	if trigger.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate trigger ID: %w", err)
		}

		trigger.ID = id.String()
	}

	conditionsJSON, err := json.Marshal(trigger.Conditions)
	if err != nil {
		return fmt.Errorf("failed to marshal conditions: %w", err)
	}

	configJSON, err := json.Marshal(trigger.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	channelFilterJSON, err := json.Marshal(trigger.ChannelFilter)
	if err != nil {
		return fmt.Errorf("failed to marshal channel filter: %w", err)
	}

	query := `
		INSERT INTO scenario_triggers (id, tenant_id, scenario_id, name, event_type,
			conditions, condition_logic, config, channel_filter, priority, is_active,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			event_type = EXCLUDED.event_type,
			conditions = EXCLUDED.conditions,
			condition_logic = EXCLUDED.condition_logic,
			config = EXCLUDED.config,
			channel_filter = EXCLUDED.channel_filter,
			priority = EXCLUDED.priority,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		trigger.ID,
		trigger.TenantID,
		trigger.ScenarioID,
		trigger.Name,
		trigger.EventType,
		conditionsJSON,
		trigger.Logic(),
		configJSON,
		channelFilterJSON,
		trigger.Priority,
		trigger.IsActive,
		trigger.CreatedAt,
		trigger.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save trigger: %w", err)
	}

	return nil
}

// DeleteTrigger removes a trigger.
func (r *TriggerRepository) DeleteTrigger(ctx context.Context, tenantID, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM scenario_triggers WHERE id = $1 AND tenant_id = $2", id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete trigger: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.ErrTriggerNotFound
	}

	return nil
}

func (r *TriggerRepository) queryTriggers(ctx context.Context, query string, args ...any) ([]*models.Trigger, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query triggers: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	triggers := make([]*models.Trigger, 0)

	for rows.Next() {
		trigger, err := scanTrigger(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trigger: %w", err)
		}

		triggers = append(triggers, trigger)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating triggers: %w", err)
	}

	return triggers, nil
}

func scanTrigger(scanner interface {
	Scan(dest ...any) error
}) (*models.Trigger, error) {
	var (
		trigger                                     models.Trigger
		conditionsJSON, configJSON, channelFltJSON []byte
	)

	err := scanner.Scan(
		&trigger.ID,
		&trigger.TenantID,
		&trigger.ScenarioID,
		&trigger.Name,
		&trigger.EventType,
		&conditionsJSON,
		&trigger.ConditionLogic,
		&configJSON,
		&channelFltJSON,
		&trigger.Priority,
		&trigger.IsActive,
		&trigger.CreatedAt,
		&trigger.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if conditionsJSON != nil {
		err := json.Unmarshal(conditionsJSON, &trigger.Conditions)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal conditions: %w", err)
		}
	}

	if configJSON != nil {
		err := json.Unmarshal(configJSON, &trigger.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if channelFltJSON != nil {
		err := json.Unmarshal(channelFltJSON, &trigger.ChannelFilter)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal channel filter: %w", err)
		}
	}

	return &trigger, nil
}
