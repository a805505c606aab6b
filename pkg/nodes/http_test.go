package nodes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRequestHandler_Success(t *testing.T) {
	var gotMethod, gotContentType, gotBody string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")

		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ticket": "T-1"})
	}))
	defer server.Close()

	handler := &HTTPRequestHandler{Client: server.Client()}
	ectx := newTestContext("")

	port, err := handler.Execute(context.Background(), map[string]any{
		"url":             server.URL,
		"body":            `{"a":1}`,
		"output_variable": "response",
	}, ectx)

	require.NoError(t, err)
	assert.Equal(t, models.PortOut, port)

	// POST and JSON content type are the defaults.
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"a":1}`, gotBody)

	assert.Equal(t, map[string]any{"ticket": "T-1"}, ectx.Variables["response"])
}

func TestHTTPRequestHandler_NonJSONResponseStoredAsString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("plain text"))
	}))
	defer server.Close()

	handler := &HTTPRequestHandler{Client: server.Client()}
	ectx := newTestContext("")

	port, err := handler.Execute(context.Background(), map[string]any{
		"url":             server.URL,
		"method":          "get",
		"output_variable": "response",
	}, ectx)

	require.NoError(t, err)
	assert.Equal(t, models.PortOut, port)
	assert.Equal(t, "plain text", ectx.Variables["response"])
}

func TestHTTPRequestHandler_ErrorStatusRoutesToErrorPort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	handler := &HTTPRequestHandler{Client: server.Client()}
	ectx := newTestContext("")

	port, err := handler.Execute(context.Background(), map[string]any{
		"url":             server.URL,
		"output_variable": "response",
	}, ectx)

	// A reachable server answering >= 400 is not a handler failure.
	require.NoError(t, err)
	assert.Equal(t, models.PortError, port)
	assert.NotEmpty(t, ectx.Variables["response"])
}

func TestHTTPRequestHandler_MissingURL(t *testing.T) {
	_, err := (&HTTPRequestHandler{}).Execute(context.Background(), map[string]any{}, newTestContext(""))

	assert.ErrorContains(t, err, "url")
}

func TestHTTPRequestHandler_SendsConfiguredHeaders(t *testing.T) {
	var gotHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Api-Key")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	handler := &HTTPRequestHandler{Client: server.Client()}

	port, err := handler.Execute(context.Background(), map[string]any{
		"url":     server.URL,
		"method":  "GET",
		"headers": map[string]any{"X-Api-Key": "secret"},
	}, newTestContext(""))

	require.NoError(t, err)
	assert.Equal(t, models.PortOut, port)
	assert.Equal(t, "secret", gotHeader)
}
