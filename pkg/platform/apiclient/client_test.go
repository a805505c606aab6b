package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/omnidesk/scenario-engine/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

// newTestClient serves canned JSON and records what the client sent.
func newTestClient(t *testing.T, status int, response string) (*Client, *recordedRequest) {
	t.Helper()

	recorded := &recordedRequest{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorded.method = r.Method
		recorded.path = r.URL.Path
		recorded.auth = r.Header.Get("Authorization")

		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&recorded.body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	return New(server.URL+"/", "service-token", log.Discard()), recorded
}

func TestClient_GetConversation(t *testing.T) {
	client, recorded := newTestClient(t, http.StatusOK,
		`{"id":"conv-1","status":"open","channel":"email","tags":["vip"]}`)

	conversation, err := client.GetConversation(context.Background(), "conv-1")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, recorded.method)
	assert.Equal(t, "/internal/v1/conversations/conv-1", recorded.path)
	assert.Equal(t, "Bearer service-token", recorded.auth)
	assert.Equal(t, "open", conversation.Status)
	assert.Equal(t, []string{"vip"}, conversation.Tags)
}

func TestClient_PostMessage(t *testing.T) {
	client, recorded := newTestClient(t, http.StatusCreated, `{"id":"msg-42"}`)

	id, err := client.PostMessage(context.Background(), "conv-1", "Hello!", map[string]any{"scenario_id": "scn-1"})
	require.NoError(t, err)

	assert.Equal(t, "msg-42", id)
	assert.Equal(t, http.MethodPost, recorded.method)
	assert.Equal(t, "/internal/v1/conversations/conv-1/messages", recorded.path)
	assert.Equal(t, "Hello!", recorded.body["content"])
	assert.Equal(t, "bot", recorded.body["sender_type"])
}

func TestClient_RemoveTag_EscapesPath(t *testing.T) {
	client, recorded := newTestClient(t, http.StatusNoContent, "")

	err := client.RemoveTag(context.Background(), "conv-1", "needs review")
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, recorded.method)
	assert.Equal(t, "/internal/v1/conversations/conv-1/tags/needs review", recorded.path)
}

func TestClient_Classify(t *testing.T) {
	client, recorded := newTestClient(t, http.StatusOK, `{"category":"billing"}`)

	category, err := client.Classify(context.Background(), "my invoice is wrong", []string{"billing", "technical"})
	require.NoError(t, err)

	assert.Equal(t, "billing", category)
	assert.Equal(t, "/internal/v1/ai/classify", recorded.path)
	assert.Equal(t, "my invoice is wrong", recorded.body["text"])
}

func TestClient_ErrorResponseIncludesSnippet(t *testing.T) {
	client, _ := newTestClient(t, http.StatusNotFound, `{"error":"conversation not found"}`)

	_, err := client.GetConversation(context.Background(), "conv-missing")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "conversation not found")
}

func TestClient_UpdateCustomerFields(t *testing.T) {
	client, recorded := newTestClient(t, http.StatusOK, `{}`)

	err := client.UpdateCustomerFields(context.Background(), "cust-1", map[string]any{"plan": "pro"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, recorded.method)
	assert.Equal(t, "/internal/v1/customers/cust-1", recorded.path)

	fields, ok := recorded.body["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "pro", fields["plan"])
}
