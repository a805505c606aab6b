// Package file provides file-based persistence for scenarios, triggers and
// executions. Each entity type lives in its own directory of JSON documents;
// it is meant for local development and tests, not production traffic.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/omnidesk/scenario-engine/pkg/persistence"
)

// Persistence implements persistence.Persistence on the file system.
type Persistence struct {
	root string

	// One write may rewrite several documents (scenario version bump plus
	// counters); a coarse lock keeps the directory consistent.
	mu sync.RWMutex
}

// NewPersistence creates a file persistence rooted at the given directory.
// Accepts plain paths and file:// URLs.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{root: cleanRoot}
}

func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) ScenarioRepository() persistence.ScenarioRepository {
	return &scenarioRepository{fp: fp}
}

func (fp *Persistence) TriggerRepository() persistence.TriggerRepository {
	return &triggerRepository{fp: fp}
}

func (fp *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return &executionRepository{fp: fp}
}

func (fp *Persistence) dir(kind string) string {
	return filepath.Join(fp.root, kind)
}

func (fp *Persistence) writeDocument(kind, id string, v any) error {
	dir := fp.dir(kind)

	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return fmt.Errorf("failed to create %s directory: %w", kind, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", kind, id, err)
	}

	err = os.WriteFile(filepath.Join(dir, id+".json"), data, 0o644)
	if err != nil {
		return fmt.Errorf("failed to write %s %s: %w", kind, id, err)
	}

	return nil
}

func (fp *Persistence) readDocument(kind, id string, v any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(fp.dir(kind), id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read %s %s: %w", kind, id, err)
	}

	err = json.Unmarshal(data, v)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal %s %s: %w", kind, id, err)
	}

	return true, nil
}

func (fp *Persistence) listIDs(kind string) ([]string, error) {
	entries, err := os.ReadDir(fp.dir(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to list %s directory: %w", kind, err)
	}

	ids := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}

	return ids, nil
}

func (fp *Persistence) removeDocument(kind, id string) (bool, error) {
	err := os.Remove(filepath.Join(fp.dir(kind), id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}

	return true, nil
}

// --- scenarios ---

type scenarioRepository struct {
	fp *Persistence
}

func (r *scenarioRepository) Scenarios(_ context.Context, tenantID string) ([]*models.Scenario, error) {
	r.fp.mu.RLock()
	defer r.fp.mu.RUnlock()

	ids, err := r.fp.listIDs("scenarios")
	if err != nil {
		return nil, err
	}

	scenarios := make([]*models.Scenario, 0, len(ids))

	for _, id := range ids {
		scenario := &models.Scenario{}

		ok, err := r.fp.readDocument("scenarios", id, scenario)
		if err != nil {
			return nil, err
		}

		if ok && scenario.TenantID == tenantID && scenario.DeletedAt == nil {
			scenarios = append(scenarios, scenario)
		}
	}

	sort.Slice(scenarios, func(i, j int) bool {
		return scenarios[i].CreatedAt.After(scenarios[j].CreatedAt)
	})

	return scenarios, nil
}

func (r *scenarioRepository) ScenarioByID(_ context.Context, tenantID, id string) (*models.Scenario, error) {
	r.fp.mu.RLock()
	defer r.fp.mu.RUnlock()

	return r.scenarioByID(tenantID, id)
}

func (r *scenarioRepository) scenarioByID(tenantID, id string) (*models.Scenario, error) {
	scenario := &models.Scenario{}

	ok, err := r.fp.readDocument("scenarios", id, scenario)
	if err != nil {
		return nil, err
	}

	if !ok || scenario.TenantID != tenantID || scenario.DeletedAt != nil {
		return nil, persistence.NewScenarioError("ScenarioByID", id, persistence.ErrScenarioNotFound)
	}

	return scenario, nil
}

func (r *scenarioRepository) ActiveScenarioByID(ctx context.Context, tenantID, id string) (*models.Scenario, error) {
	scenario, err := r.ScenarioByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if !scenario.Triggerable() {
		return nil, persistence.NewScenarioError("ActiveScenarioByID", id, persistence.ErrScenarioNotFound)
	}

	return scenario, nil
}

func (r *scenarioRepository) SaveScenario(_ context.Context, scenario *models.Scenario) error {
	r.fp.mu.Lock()
	defer r.fp.mu.Unlock()

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
	} else {
		existing := &models.Scenario{}
		if ok, _ := r.fp.readDocument("scenarios", scenario.ID, existing); ok {
			scenario.Version = existing.Version + 1
		}
	}

	return r.fp.writeDocument("scenarios", scenario.ID, scenario)
}

func (r *scenarioRepository) DeleteScenario(_ context.Context, tenantID, id string) error {
	r.fp.mu.Lock()
	defer r.fp.mu.Unlock()

	scenario, err := r.scenarioByID(tenantID, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	scenario.DeletedAt = &now

	return r.fp.writeDocument("scenarios", scenario.ID, scenario)
}

// --- triggers ---

type triggerRepository struct {
	fp *Persistence
}

func (r *triggerRepository) ActiveTriggers(ctx context.Context, tenantID, eventType string) ([]*models.Trigger, error) {
	triggers, err := r.triggers(func(t *models.Trigger) bool {
		return t.TenantID == tenantID && t.EventType == eventType && t.IsActive
	})
	if err != nil {
		return nil, err
	}

	// Keep only triggers whose owning scenario is eligible.
	scenarioRepo := &scenarioRepository{fp: r.fp}
	active := triggers[:0]

	for _, t := range triggers {
		scenario, err := scenarioRepo.ActiveScenarioByID(ctx, tenantID, t.ScenarioID)
		if err != nil || scenario == nil {
			continue
		}

		active = append(active, t)
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority > active[j].Priority
	})

	return active, nil
}

func (r *triggerRepository) TriggersByScenario(_ context.Context, tenantID, scenarioID string) ([]*models.Trigger, error) {
	return r.triggers(func(t *models.Trigger) bool {
		return t.TenantID == tenantID && t.ScenarioID == scenarioID
	})
}

func (r *triggerRepository) ScheduleTriggers(_ context.Context) ([]*models.Trigger, error) {
	return r.triggers(func(t *models.Trigger) bool {
		return t.EventType == models.EventSchedule && t.IsActive
	})
}

func (r *triggerRepository) triggers(keep func(*models.Trigger) bool) ([]*models.Trigger, error) {
	r.fp.mu.RLock()
	defer r.fp.mu.RUnlock()

	ids, err := r.fp.listIDs("triggers")
	if err != nil {
		return nil, err
	}

	triggers := make([]*models.Trigger, 0, len(ids))

	for _, id := range ids {
		trigger := &models.Trigger{}

		ok, err := r.fp.readDocument("triggers", id, trigger)
		if err != nil {
			return nil, err
		}

		if ok && keep(trigger) {
			triggers = append(triggers, trigger)
		}
	}

	return triggers, nil
}

func (r *triggerRepository) TriggerByID(_ context.Context, tenantID, id string) (*models.Trigger, error) {
	r.fp.mu.RLock()
	defer r.fp.mu.RUnlock()

	trigger := &models.Trigger{}

	ok, err := r.fp.readDocument("triggers", id, trigger)
	if err != nil {
		return nil, err
	}

	if !ok || trigger.TenantID != tenantID {
		return nil, persistence.ErrTriggerNotFound
	}

	return trigger, nil
}

func (r *triggerRepository) SaveTrigger(_ context.Context, trigger *models.Trigger) error {
	r.fp.mu.Lock()
	defer r.fp.mu.Unlock()

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

	return r.fp.writeDocument("triggers", trigger.ID, trigger)
}

func (r *triggerRepository) DeleteTrigger(_ context.Context, tenantID, id string) error {
	r.fp.mu.Lock()
	defer r.fp.mu.Unlock()

	trigger := &models.Trigger{}

	ok, err := r.fp.readDocument("triggers", id, trigger)
	if err != nil {
		return err
	}

	if !ok || trigger.TenantID != tenantID {
		return persistence.ErrTriggerNotFound
	}

	_, err = r.fp.removeDocument("triggers", id)

	return err
}

// --- executions ---

type executionRepository struct {
	fp *Persistence
}

func (r *executionRepository) CreateExecution(_ context.Context, execution *models.Execution) error {
	r.fp.mu.Lock()
	defer r.fp.mu.Unlock()

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

	err := r.fp.writeDocument("executions", execution.ID, execution)
	if err != nil {
		return err
	}

	return r.bumpCounters(execution.ScenarioID, false)
}

func (r *executionRepository) UpdateExecution(_ context.Context, execution *models.Execution) error {
	r.fp.mu.Lock()
	defer r.fp.mu.Unlock()

	existing := &models.Execution{}

	ok, err := r.fp.readDocument("executions", execution.ID, existing)
	if err != nil {
		return err
	}

	if !ok {
		return persistence.ErrExecutionNotFound
	}

	if existing.Status.Terminal() {
		return persistence.ErrExecutionTerminal
	}

	err = r.fp.writeDocument("executions", execution.ID, execution)
	if err != nil {
		return err
	}

	if execution.Status == models.ExecutionStatusCompleted {
		return r.bumpCounters(execution.ScenarioID, true)
	}

	return nil
}

// bumpCounters maintains the scenario execution statistics. Counter writes
// must not change the scenario version, so this bypasses SaveScenario.
func (r *executionRepository) bumpCounters(scenarioID string, successful bool) error {
	scenario := &models.Scenario{}

	ok, err := r.fp.readDocument("scenarios", scenarioID, scenario)
	if err != nil || !ok {
		return err
	}

	if successful {
		scenario.SuccessfulExecutions++
	} else {
		scenario.ExecutionsCount++
	}

	return r.fp.writeDocument("scenarios", scenarioID, scenario)
}

func (r *executionRepository) ExecutionByID(_ context.Context, tenantID, id string) (*models.Execution, error) {
	r.fp.mu.RLock()
	defer r.fp.mu.RUnlock()

	execution := &models.Execution{}

	ok, err := r.fp.readDocument("executions", id, execution)
	if err != nil {
		return nil, err
	}

	if !ok || execution.TenantID != tenantID {
		return nil, persistence.ErrExecutionNotFound
	}

	return execution, nil
}

func (r *executionRepository) ExecutionsByScenario(_ context.Context, tenantID, scenarioID string, limit int) ([]*models.Execution, error) {
	r.fp.mu.RLock()
	defer r.fp.mu.RUnlock()

	ids, err := r.fp.listIDs("executions")
	if err != nil {
		return nil, err
	}

	executions := make([]*models.Execution, 0, len(ids))

	for _, id := range ids {
		execution := &models.Execution{}

		ok, err := r.fp.readDocument("executions", id, execution)
		if err != nil {
			return nil, err
		}

		if ok && execution.TenantID == tenantID && execution.ScenarioID == scenarioID {
			executions = append(executions, execution)
		}
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.After(executions[j].StartedAt)
	})

	if limit > 0 && len(executions) > limit {
		executions = executions[:limit]
	}

	return executions, nil
}
