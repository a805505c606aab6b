// Package scheduler fires schedule-type triggers on their cron expressions.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/omnidesk/scenario-engine/pkg/engine"
	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/omnidesk/scenario-engine/pkg/persistence"
	"github.com/robfig/cron/v3"
)

// Scheduler keeps one cron entry per active schedule trigger. Reload
// re-reads the trigger set, so edits take effect without a restart.
type Scheduler struct {
	cron        *cron.Cron
	persistence persistence.Persistence
	triggers    *engine.TriggerService
	logger      *slog.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(p persistence.Persistence, triggers *engine.TriggerService, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		persistence: p,
		triggers:    triggers,
		logger:      logger,
		entries:     make(map[string]cron.EntryID),
	}
}

// Start loads the schedule triggers and begins firing them.
func (s *Scheduler) Start(ctx context.Context) error {
	err := s.Reload(ctx)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.InfoContext(ctx, "Scheduler started")

	return nil
}

// Reload synchronizes cron entries with the persisted schedule triggers:
// new triggers are added, removed or deactivated ones are dropped, changed
// expressions are re-registered.
func (s *Scheduler) Reload(ctx context.Context) error {
	triggers, err := s.persistence.TriggerRepository().ScheduleTriggers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load schedule triggers: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(triggers))

	for _, trigger := range triggers {
		expression, ok := trigger.Config["cron"].(string)
		if !ok || expression == "" {
			s.logger.WarnContext(ctx, "Schedule trigger has no cron expression", "trigger_id", trigger.ID)

			continue
		}

		seen[trigger.ID] = true

		if entryID, exists := s.entries[trigger.ID]; exists {
			s.cron.Remove(entryID)
		}

		entryID, err := s.cron.AddFunc(expression, s.fire(trigger))
		if err != nil {
			s.logger.ErrorContext(ctx, "Invalid cron expression",
				"trigger_id", trigger.ID,
				"expression", expression,
				"error", err)

			continue
		}

		s.entries[trigger.ID] = entryID
	}

	for triggerID, entryID := range s.entries {
		if !seen[triggerID] {
			s.cron.Remove(entryID)
			delete(s.entries, triggerID)
		}
	}

	s.logger.InfoContext(ctx, "Schedule triggers loaded", "count", len(seen))

	return nil
}

// Stop halts the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

func (s *Scheduler) fire(trigger *models.Trigger) func() {
	tenantID := trigger.TenantID
	triggerID := trigger.ID

	return func() {
		ctx := context.Background()

		data := map[string]any{
			"trigger_id": triggerID,
			"fired_at":   time.Now().UTC().Format(time.RFC3339),
		}

		_, err := s.triggers.FireEvent(ctx, models.EventSchedule, tenantID, data)
		if err != nil {
			s.logger.ErrorContext(ctx, "Schedule firing failed", "trigger_id", triggerID, "error", err)
		}
	}
}
