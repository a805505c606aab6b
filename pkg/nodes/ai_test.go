package nodes

import (
	"context"
	"testing"

	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/omnidesk/scenario-engine/pkg/platform/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triggerContext(conversationID, messageText string) *models.ExecutionContext {
	ectx := newTestContext(conversationID)
	ectx.Variables["trigger"] = map[string]any{"message_text": messageText}

	return ectx
}

func TestAIClassifyHandler(t *testing.T) {
	handler := &AIClassifyHandler{deps: newTestDeps(memory.NewStore(), &fakePublisher{})}

	ectx := triggerContext("conv-1", "I want a refund for my order")

	port, err := handler.Execute(context.Background(), map[string]any{
		"categories": []any{"billing", "refund", "other"},
	}, ectx)

	require.NoError(t, err)
	assert.Equal(t, models.PortOut, port)
	assert.Equal(t, "refund", ectx.Variables["classification"])
}

func TestAIClassifyHandler_CustomOutputVariable(t *testing.T) {
	handler := &AIClassifyHandler{deps: newTestDeps(memory.NewStore(), &fakePublisher{})}

	ectx := triggerContext("conv-1", "question about billing")

	_, err := handler.Execute(context.Background(), map[string]any{
		"categories":      []any{"billing", "other"},
		"output_variable": "intent",
	}, ectx)

	require.NoError(t, err)
	assert.Equal(t, "billing", ectx.Variables["intent"])
}

func TestAIClassifyHandler_Noops(t *testing.T) {
	handler := &AIClassifyHandler{deps: newTestDeps(memory.NewStore(), &fakePublisher{})}

	t.Run("no categories", func(t *testing.T) {
		ectx := triggerContext("conv-1", "hello")

		port, err := handler.Execute(context.Background(), map[string]any{}, ectx)

		require.NoError(t, err)
		assert.Equal(t, models.PortOut, port)
		assert.NotContains(t, ectx.Variables, "classification")
	})

	t.Run("no message text", func(t *testing.T) {
		ectx := newTestContext("conv-1")

		port, err := handler.Execute(context.Background(), map[string]any{
			"categories": []any{"billing"},
		}, ectx)

		require.NoError(t, err)
		assert.Equal(t, models.PortOut, port)
		assert.NotContains(t, ectx.Variables, "classification")
	})
}

func TestAIRespondHandler(t *testing.T) {
	store := memory.NewStore()
	seedConversation(store, "conv-1")

	deps := newTestDeps(store, &fakePublisher{})
	handler := &AIRespondHandler{deps: deps, sendMessage: &SendMessageHandler{deps: deps}}

	ectx := triggerContext("conv-1", "How do I reset my password?")

	port, err := handler.Execute(context.Background(), map[string]any{}, ectx)

	require.NoError(t, err)
	assert.Equal(t, models.PortOut, port)
	assert.NotEmpty(t, ectx.Variables["ai_response"])

	// Without auto_send nothing is posted.
	assert.Empty(t, store.Messages())
}

func TestAIRespondHandler_AutoSend(t *testing.T) {
	store := memory.NewStore()
	seedConversation(store, "conv-1")

	deps := newTestDeps(store, &fakePublisher{})
	handler := &AIRespondHandler{deps: deps, sendMessage: &SendMessageHandler{deps: deps}}

	ectx := triggerContext("conv-1", "How do I reset my password?")

	port, err := handler.Execute(context.Background(), map[string]any{"auto_send": true}, ectx)

	require.NoError(t, err)
	assert.Equal(t, models.PortOut, port)

	messages := store.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, ectx.Variables["ai_response"], messages[0].Content)
}

func TestAIRespondHandler_Errors(t *testing.T) {
	deps := newTestDeps(memory.NewStore(), &fakePublisher{})
	handler := &AIRespondHandler{deps: deps, sendMessage: &SendMessageHandler{deps: deps}}

	t.Run("no conversation", func(t *testing.T) {
		_, err := handler.Execute(context.Background(), nil, triggerContext("", "hello"))
		assert.ErrorContains(t, err, "no conversation")
	})

	t.Run("no message text", func(t *testing.T) {
		_, err := handler.Execute(context.Background(), nil, newTestContext("conv-1"))
		assert.ErrorContains(t, err, "no message text")
	})
}
