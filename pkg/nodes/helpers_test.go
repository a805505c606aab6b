package nodes

import (
	"context"
	"errors"
	"sync"

	"github.com/omnidesk/scenario-engine/pkg/eventbus"
	"github.com/omnidesk/scenario-engine/pkg/log"
	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/omnidesk/scenario-engine/pkg/platform"
	"github.com/omnidesk/scenario-engine/pkg/platform/memory"
)

// fakePublisher captures published events in memory.
type fakePublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
	fail   bool
}

func (p *fakePublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fail {
		return errors.New("bus unavailable")
	}

	p.events = append(p.events, event)

	return nil
}

func (p *fakePublisher) published() []eventbus.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]eventbus.Event(nil), p.events...)
}

func newTestDeps(store *memory.Store, publisher *fakePublisher) Deps {
	return Deps{
		Conversations: store,
		Customers:     store,
		Messenger:     store,
		AI:            store,
		Router:        store,
		Notifications: store,
		Publisher:     publisher,
		Logger:        log.Discard(),
	}
}

func newTestContext(conversationID string) *models.ExecutionContext {
	return &models.ExecutionContext{
		TenantID:       "tenant-1",
		ScenarioID:     "scn-1",
		ExecutionID:    "exec-1",
		ConversationID: conversationID,
		Variables:      map[string]any{},
	}
}

func seedConversation(store *memory.Store, id string) {
	store.PutConversation(&platform.Conversation{
		ID:       id,
		TenantID: "tenant-1",
		Status:   platform.ConversationStatusOpen,
		Channel:  "email",
		Priority: "normal",
	})
}
