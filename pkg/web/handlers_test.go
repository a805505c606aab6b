package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/omnidesk/scenario-engine/pkg/engine"
	"github.com/omnidesk/scenario-engine/pkg/eventbus"
	"github.com/omnidesk/scenario-engine/pkg/log"
	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/omnidesk/scenario-engine/pkg/nodes"
	"github.com/omnidesk/scenario-engine/pkg/persistence/file"
	"github.com/omnidesk/scenario-engine/pkg/platform/memory"
	"github.com/omnidesk/scenario-engine/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTenant = "tenant-1"

type dropPublisher struct{}

func (dropPublisher) Publish(_ context.Context, _ string, _ eventbus.Event) error { return nil }

type testAPI struct {
	app         *fiber.App
	persistence *file.Persistence
	triggers    *engine.TriggerService
}

func setupTestApp(t *testing.T) *testAPI {
	t.Helper()

	persistence := file.NewPersistence(t.TempDir())
	store := memory.NewStore()

	deps := nodes.Deps{
		Conversations: store,
		Customers:     store,
		Messenger:     store,
		AI:            store,
		Router:        store,
		Notifications: store,
		Publisher:     dropPublisher{},
		Logger:        log.Discard(),
	}

	dispatcher := nodes.NewDispatcher(nodes.NewRegistry(deps), log.Discard())
	executor := engine.NewExecutor(persistence, dispatcher, dropPublisher{}, nil, log.Discard(), engine.ExecutorOptions{})
	triggers := engine.NewTriggerService(persistence, executor, store, store, log.Discard())

	handlers := web.NewAPIHandlers(persistence, triggers, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()

	app.Get("/nodes", handlers.GetNodeCatalog)

	s := app.Group("/scenarios")
	s.Get("/", handlers.GetScenarios)
	s.Post("/", handlers.CreateScenario)
	s.Get("/:id", handlers.GetScenario)
	s.Patch("/:id", handlers.UpdateScenario)
	s.Delete("/:id", handlers.DeleteScenario)
	s.Get("/:id/triggers", handlers.GetScenarioTriggers)
	s.Get("/:id/executions", handlers.GetScenarioExecutions)

	tr := app.Group("/triggers")
	tr.Post("/", handlers.CreateTrigger)
	tr.Get("/:id", handlers.GetTrigger)
	tr.Patch("/:id", handlers.UpdateTrigger)
	tr.Delete("/:id", handlers.DeleteTrigger)

	app.Get("/executions/:id", handlers.GetExecution)
	app.Post("/events", handlers.FireEvent)
	app.Get("/health", handlers.HealthCheck)

	return &testAPI{app: app, persistence: persistence, triggers: triggers}
}

func (a *testAPI) request(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)

	req.Header.Set(web.TenantHeader, testTenant)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.app.Test(req)
	require.NoError(t, err)

	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	defer resp.Body.Close()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return out
}

func TestAPIHandlers_CreateScenario(t *testing.T) {
	api := setupTestApp(t)

	resp := api.request(t, http.MethodPost, "/scenarios/", web.CreateScenarioRequest{
		Name: "Welcome flow",
		Nodes: []*models.Node{
			{ID: "s", Type: models.NodeTypeStart},
			{ID: "m", Type: models.NodeTypeSendMessage, Config: map[string]any{"message": "hi"}},
		},
		Edges: []*models.Edge{{ID: "e1", Source: "s", Target: "m"}},
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	scenario := decode[models.Scenario](t, resp)
	assert.NotEmpty(t, scenario.ID)
	assert.Equal(t, testTenant, scenario.TenantID)
	assert.Equal(t, models.ScenarioStatusDraft, scenario.Status)
	assert.Equal(t, 1, scenario.Version)
}

func TestAPIHandlers_CreateScenario_InvalidGraph(t *testing.T) {
	api := setupTestApp(t)

	resp := api.request(t, http.MethodPost, "/scenarios/", web.CreateScenarioRequest{
		Name: "Broken",
		Nodes: []*models.Node{
			{ID: "m", Type: models.NodeTypeSendMessage, Config: map[string]any{"message": "hi"}},
		},
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	problem := decode[map[string]any](t, resp)
	assert.Equal(t, "validation_error", problem["type"])
}

func TestAPIHandlers_CreateScenario_ValidationErrors(t *testing.T) {
	api := setupTestApp(t)

	t.Run("name too short", func(t *testing.T) {
		resp := api.request(t, http.MethodPost, "/scenarios/", web.CreateScenarioRequest{Name: "ab"})
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("bad status", func(t *testing.T) {
		resp := api.request(t, http.MethodPost, "/scenarios/", map[string]any{
			"name":   "Nice name",
			"status": "running",
		})
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAPIHandlers_TenantHeaderRequired(t *testing.T) {
	api := setupTestApp(t)

	req, err := http.NewRequest(http.MethodGet, "/scenarios/", nil)
	require.NoError(t, err)

	resp, err := api.app.Test(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_GetScenario_NotFound(t *testing.T) {
	api := setupTestApp(t)

	resp := api.request(t, http.MethodGet, "/scenarios/ghost", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	problem := decode[map[string]any](t, resp)
	assert.Equal(t, "scenario_not_found", problem["type"])
}

func TestAPIHandlers_UpdateScenario(t *testing.T) {
	api := setupTestApp(t)

	created := decode[models.Scenario](t, api.request(t, http.MethodPost, "/scenarios/", web.CreateScenarioRequest{
		Name: "Welcome flow",
	}))

	newStatus := models.ScenarioStatusActive
	isActive := true

	resp := api.request(t, http.MethodPatch, "/scenarios/"+created.ID, web.UpdateScenarioRequest{
		Status:   &newStatus,
		IsActive: &isActive,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	updated := decode[models.Scenario](t, resp)
	assert.Equal(t, models.ScenarioStatusActive, updated.Status)
	assert.True(t, updated.IsActive)
	assert.Equal(t, created.Version+1, updated.Version)

	// Name untouched by the partial update.
	assert.Equal(t, "Welcome flow", updated.Name)
}

func TestAPIHandlers_DeleteScenario(t *testing.T) {
	api := setupTestApp(t)

	created := decode[models.Scenario](t, api.request(t, http.MethodPost, "/scenarios/", web.CreateScenarioRequest{
		Name: "Doomed",
	}))

	resp := api.request(t, http.MethodDelete, "/scenarios/"+created.ID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = api.request(t, http.MethodGet, "/scenarios/"+created.ID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_TriggerLifecycle(t *testing.T) {
	api := setupTestApp(t)

	scenario := decode[models.Scenario](t, api.request(t, http.MethodPost, "/scenarios/", web.CreateScenarioRequest{
		Name: "Flow",
	}))

	resp := api.request(t, http.MethodPost, "/triggers/", web.CreateTriggerRequest{
		ScenarioID: scenario.ID,
		Name:       "on new message",
		EventType:  models.EventMessageReceived,
		Priority:   5,
		IsActive:   true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	trigger := decode[models.Trigger](t, resp)
	assert.NotEmpty(t, trigger.ID)
	assert.Equal(t, testTenant, trigger.TenantID)

	listResp := api.request(t, http.MethodGet, "/scenarios/"+scenario.ID+"/triggers", nil)
	listing := decode[map[string][]models.Trigger](t, listResp)
	assert.Len(t, listing["triggers"], 1)

	resp = api.request(t, http.MethodDelete, "/triggers/"+trigger.ID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAPIHandlers_CreateTrigger_UnknownScenario(t *testing.T) {
	api := setupTestApp(t)

	resp := api.request(t, http.MethodPost, "/triggers/", web.CreateTriggerRequest{
		ScenarioID: "ghost",
		Name:       "orphan",
		EventType:  models.EventMessageReceived,
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_FireEvent(t *testing.T) {
	api := setupTestApp(t)

	scenario := decode[models.Scenario](t, api.request(t, http.MethodPost, "/scenarios/", web.CreateScenarioRequest{
		Name:     "Tagger",
		Status:   models.ScenarioStatusActive,
		IsActive: true,
		Nodes: []*models.Node{
			{ID: "s", Type: models.NodeTypeStart},
			{ID: "v", Type: models.NodeTypeSetVariable, Config: map[string]any{
				"variable_name": "handled", "value": "true", "value_type": "boolean",
			}},
		},
		Edges: []*models.Edge{{ID: "e1", Source: "s", Target: "v"}},
	}))

	triggerResp := api.request(t, http.MethodPost, "/triggers/", web.CreateTriggerRequest{
		ScenarioID: scenario.ID,
		Name:       "manual run",
		EventType:  models.EventManual,
		IsActive:   true,
	})
	require.Equal(t, http.StatusCreated, triggerResp.StatusCode)
	triggerResp.Body.Close()

	resp := api.request(t, http.MethodPost, "/events", web.FireEventRequest{
		EventType: models.EventManual,
		Data:      map[string]any{"source": "test"},
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	result := decode[map[string]any](t, resp)
	assert.Equal(t, models.EventManual, result["event_type"])
	assert.Equal(t, float64(1), result["launched"])

	api.triggers.Wait()

	execResp := api.request(t, http.MethodGet, "/scenarios/"+scenario.ID+"/executions", nil)
	executions := decode[map[string][]models.Execution](t, execResp)
	require.Len(t, executions["executions"], 1)
	assert.Equal(t, models.ExecutionStatusCompleted, executions["executions"][0].Status)
}

func TestAPIHandlers_GetNodeCatalog(t *testing.T) {
	api := setupTestApp(t)

	resp := api.request(t, http.MethodGet, "/nodes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	catalog := decode[map[string][]map[string]any](t, resp)
	assert.NotEmpty(t, catalog["nodes"])
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	api := setupTestApp(t)

	resp := api.request(t, http.MethodGet, "/health", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
