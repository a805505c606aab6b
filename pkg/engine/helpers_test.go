package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/omnidesk/scenario-engine/pkg/eventbus"
	"github.com/omnidesk/scenario-engine/pkg/log"
	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/omnidesk/scenario-engine/pkg/nodes"
	"github.com/omnidesk/scenario-engine/pkg/persistence/file"
	"github.com/omnidesk/scenario-engine/pkg/platform/memory"
	"github.com/stretchr/testify/require"
)

const testTenant = "tenant-1"

// capturePublisher records events instead of putting them on a bus.
type capturePublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *capturePublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)

	return nil
}

func (p *capturePublisher) published() []eventbus.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]eventbus.Event(nil), p.events...)
}

type testEngine struct {
	persistence *file.Persistence
	store       *memory.Store
	publisher   *capturePublisher
	executor    *Executor
}

func newTestEngine(t *testing.T, opts ExecutorOptions) *testEngine {
	t.Helper()

	persistence := file.NewPersistence(t.TempDir())
	store := memory.NewStore()
	publisher := &capturePublisher{}

	deps := nodes.Deps{
		Conversations: store,
		Customers:     store,
		Messenger:     store,
		AI:            store,
		Router:        store,
		Notifications: store,
		Publisher:     publisher,
		Logger:        log.Discard(),
	}

	dispatcher := nodes.NewDispatcher(nodes.NewRegistry(deps), log.Discard())

	return &testEngine{
		persistence: persistence,
		store:       store,
		publisher:   publisher,
		executor:    NewExecutor(persistence, dispatcher, publisher, nil, log.Discard(), opts),
	}
}

func (e *testEngine) saveScenario(t *testing.T, scenario *models.Scenario) {
	t.Helper()

	if scenario.TenantID == "" {
		scenario.TenantID = testTenant
	}

	if scenario.Status == "" {
		scenario.Status = models.ScenarioStatusActive
		scenario.IsActive = true
	}

	err := e.persistence.ScenarioRepository().SaveScenario(context.Background(), scenario)
	require.NoError(t, err)
}

// branchingScenario is the reference graph: start -> condition on the
// trigger message, tagging "vip" on the true path and "other" on the false
// path, both ending in an end node.
func branchingScenario(id string) *models.Scenario {
	return &models.Scenario{
		ID:   id,
		Name: "VIP routing",
		Nodes: []*models.Node{
			{ID: "s", Type: models.NodeTypeStart},
			{ID: "c", Type: models.NodeTypeCondition, Config: map[string]any{
				"field":    "trigger.message_text",
				"operator": "contains",
				"value":    "refund",
			}},
			{ID: "t1", Type: models.NodeTypeAddTag, Config: map[string]any{"tag": "vip"}},
			{ID: "t2", Type: models.NodeTypeAddTag, Config: map[string]any{"tag": "other"}},
			{ID: "e", Type: models.NodeTypeEnd},
		},
		Edges: []*models.Edge{
			{ID: "e1", Source: "s", Target: "c"},
			{ID: "e2", Source: "c", Target: "t1", SourceHandle: "true"},
			{ID: "e3", Source: "c", Target: "t2", SourceHandle: "false"},
			{ID: "e4", Source: "t1", Target: "e"},
			{ID: "e5", Source: "t2", Target: "e"},
		},
	}
}
