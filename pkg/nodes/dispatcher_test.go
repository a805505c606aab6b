package nodes

import (
	"context"
	"errors"
	"testing"

	"github.com/omnidesk/scenario-engine/pkg/log"
	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/omnidesk/scenario-engine/pkg/platform/memory"
	"github.com/stretchr/testify/assert"
)

type erroringHandler struct{}

func (h *erroringHandler) Execute(_ context.Context, _ map[string]any, _ *models.ExecutionContext) (string, error) {
	return "", errors.New("boom")
}

type panickingHandler struct{}

func (h *panickingHandler) Execute(_ context.Context, _ map[string]any, _ *models.ExecutionContext) (string, error) {
	panic("nope")
}

func TestDispatcher_Dispatch_SubstitutesVariables(t *testing.T) {
	store := memory.NewStore()
	seedConversation(store, "conv-1")

	publisher := &fakePublisher{}
	dispatcher := NewDispatcher(NewRegistry(newTestDeps(store, publisher)), log.Discard())

	ectx := newTestContext("conv-1")
	ectx.Variables["customer"] = map[string]any{"name": "Ada"}

	node := &models.Node{
		ID:     "msg",
		Type:   models.NodeTypeSendMessage,
		Config: map[string]any{"message": "Hi {{customer.name}}"},
	}

	port := dispatcher.Dispatch(context.Background(), node, ectx)

	assert.Equal(t, models.PortOut, port)

	messages := store.Messages()
	assert.Len(t, messages, 1)
	assert.Equal(t, "Hi Ada", messages[0].Content)
}

func TestDispatcher_Dispatch_UnknownTypeSkips(t *testing.T) {
	dispatcher := NewDispatcher(&Registry{handlers: map[models.NodeType]Handler{}}, log.Discard())
	ectx := newTestContext("")

	port := dispatcher.Dispatch(context.Background(), &models.Node{ID: "x", Type: "hologram"}, ectx)

	assert.Equal(t, models.PortOut, port)
	assert.Empty(t, ectx.Err)
}

func TestDispatcher_Dispatch_HandlerErrorRoutesToErrorPort(t *testing.T) {
	registry := &Registry{handlers: map[models.NodeType]Handler{}}
	registry.Register(models.NodeTypeSendMessage, &erroringHandler{})

	dispatcher := NewDispatcher(registry, log.Discard())
	ectx := newTestContext("conv-1")

	port := dispatcher.Dispatch(context.Background(), &models.Node{ID: "x", Type: models.NodeTypeSendMessage}, ectx)

	assert.Equal(t, models.PortError, port)
	// Handled node failures are routed, not recorded: the context error
	// field stays reserved for execution-level failure.
	assert.Empty(t, ectx.Err)
}

func TestDispatcher_Dispatch_PanicIsIsolated(t *testing.T) {
	registry := &Registry{handlers: map[models.NodeType]Handler{}}
	registry.Register(models.NodeTypeSendMessage, &panickingHandler{})

	dispatcher := NewDispatcher(registry, log.Discard())
	ectx := newTestContext("conv-1")

	port := dispatcher.Dispatch(context.Background(), &models.Node{ID: "x", Type: models.NodeTypeSendMessage}, ectx)

	assert.Equal(t, models.PortError, port)
	assert.Empty(t, ectx.Err)
}

func TestRegistry_DeclaredOnlyTypesAreAbsent(t *testing.T) {
	registry := NewRegistry(newTestDeps(memory.NewStore(), &fakePublisher{}))

	for _, nodeType := range []models.NodeType{
		models.NodeTypeSplit,
		models.NodeTypeMerge,
		models.NodeTypeTransferConversation,
		models.NodeTypeAISummarize,
		models.NodeTypeAISentiment,
		models.NodeTypeWebhook,
		models.NodeTypeEnd,
	} {
		_, ok := registry.Handler(nodeType)
		assert.False(t, ok, "type %s should not be executable", nodeType)
	}
}
