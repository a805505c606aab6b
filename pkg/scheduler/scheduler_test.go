package scheduler

import (
	"context"
	"testing"

	"github.com/omnidesk/scenario-engine/pkg/log"
	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/omnidesk/scenario-engine/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) (*Scheduler, *file.Persistence) {
	t.Helper()

	persistence := file.NewPersistence(t.TempDir())

	return NewScheduler(persistence, nil, log.Discard()), persistence
}

func saveScheduleTrigger(t *testing.T, p *file.Persistence, id, expression string, active bool) {
	t.Helper()

	trigger := &models.Trigger{
		ID:         id,
		TenantID:   "tenant-1",
		ScenarioID: "scn-1",
		Name:       "nightly digest",
		EventType:  models.EventSchedule,
		IsActive:   active,
	}
	if expression != "" {
		trigger.Config = map[string]any{"cron": expression}
	}

	require.NoError(t, p.TriggerRepository().SaveTrigger(context.Background(), trigger))
}

func (s *Scheduler) entryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

func TestScheduler_Reload_RegistersScheduleTriggers(t *testing.T) {
	scheduler, persistence := newTestScheduler(t)

	saveScheduleTrigger(t, persistence, "trg-1", "0 9 * * *", true)
	saveScheduleTrigger(t, persistence, "trg-2", "*/5 * * * *", true)

	require.NoError(t, scheduler.Reload(context.Background()))
	assert.Equal(t, 2, scheduler.entryCount())
}

func TestScheduler_Reload_SkipsInvalidEntries(t *testing.T) {
	scheduler, persistence := newTestScheduler(t)

	saveScheduleTrigger(t, persistence, "trg-ok", "0 9 * * *", true)
	saveScheduleTrigger(t, persistence, "trg-no-cron", "", true)
	saveScheduleTrigger(t, persistence, "trg-bad-cron", "not a cron line", true)
	saveScheduleTrigger(t, persistence, "trg-disabled", "0 9 * * *", false)

	require.NoError(t, scheduler.Reload(context.Background()))
	assert.Equal(t, 1, scheduler.entryCount())
}

func TestScheduler_Reload_DropsRemovedTriggers(t *testing.T) {
	scheduler, persistence := newTestScheduler(t)
	ctx := context.Background()

	saveScheduleTrigger(t, persistence, "trg-1", "0 9 * * *", true)
	saveScheduleTrigger(t, persistence, "trg-2", "0 18 * * *", true)
	require.NoError(t, scheduler.Reload(ctx))

	require.NoError(t, persistence.TriggerRepository().DeleteTrigger(ctx, "tenant-1", "trg-2"))
	require.NoError(t, scheduler.Reload(ctx))

	assert.Equal(t, 1, scheduler.entryCount())

	scheduler.mu.Lock()
	_, kept := scheduler.entries["trg-1"]
	scheduler.mu.Unlock()
	assert.True(t, kept)
}

func TestScheduler_Reload_ReplacesChangedExpression(t *testing.T) {
	scheduler, persistence := newTestScheduler(t)
	ctx := context.Background()

	saveScheduleTrigger(t, persistence, "trg-1", "0 9 * * *", true)
	require.NoError(t, scheduler.Reload(ctx))

	scheduler.mu.Lock()
	before := scheduler.entries["trg-1"]
	scheduler.mu.Unlock()

	saveScheduleTrigger(t, persistence, "trg-1", "0 12 * * *", true)
	require.NoError(t, scheduler.Reload(ctx))

	scheduler.mu.Lock()
	after := scheduler.entries["trg-1"]
	scheduler.mu.Unlock()

	assert.Equal(t, 1, scheduler.entryCount())
	assert.NotEqual(t, before, after)
	assert.Len(t, scheduler.cron.Entries(), 1)
}
