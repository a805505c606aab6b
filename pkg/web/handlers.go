package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/omnidesk/scenario-engine/pkg/engine"
	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/omnidesk/scenario-engine/pkg/nodes"
	"github.com/omnidesk/scenario-engine/pkg/persistence"
)

// TenantHeader carries the tenant scope of every request. The API gateway in
// front of this service sets it after authentication.
const TenantHeader = "X-Tenant-ID"

type APIHandlers struct {
	persistence persistence.Persistence
	triggers    *engine.TriggerService
	validator   *validator.Validate
}

func NewAPIHandlers(p persistence.Persistence, triggers *engine.TriggerService, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		persistence: p,
		triggers:    triggers,
		validator:   validator,
	}
}

func tenantID(c fiber.Ctx) string {
	return c.Get(TenantHeader)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	httpStatus := http.StatusOK

	err := h.persistence.HealthCheck(c.Context())
	if err != nil {
		status = "unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC(),
	})
}

// GetNodeCatalog lists every node type with its ports and config schema, for
// the scenario builder UI.
func (h *APIHandlers) GetNodeCatalog(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"nodes": nodes.Catalog()})
}

func (h *APIHandlers) GetScenarios(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "Tenant ID header is required")
	}

	scenarios, err := h.persistence.ScenarioRepository().Scenarios(c.Context(), tenant)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"scenarios": scenarios})
}

func (h *APIHandlers) GetScenario(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "Tenant ID header is required")
	}

	scenario, err := h.persistence.ScenarioRepository().ScenarioByID(c.Context(), tenant, c.Params("id"))
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.JSON(scenario)
}

func (h *APIHandlers) CreateScenario(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "Tenant ID header is required")
	}

	var req CreateScenarioRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	status := req.Status
	if status == "" {
		status = models.ScenarioStatusDraft
	}

	scenario := &models.Scenario{
		TenantID:    tenant,
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		IsActive:    req.IsActive,
		Nodes:       req.Nodes,
		Edges:       req.Edges,
		Variables:   req.Variables,
	}

	if err := ValidateGraph(scenario); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.persistence.ScenarioRepository().SaveScenario(c.Context(), scenario); err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(scenario)
}

func (h *APIHandlers) UpdateScenario(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "Tenant ID header is required")
	}

	var req UpdateScenarioRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.persistence.ScenarioRepository().ScenarioByID(c.Context(), tenant, c.Params("id"))
	if err != nil {
		return handleRepositoryError(c, err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Description != nil {
		existing.Description = *req.Description
	}

	if req.Status != nil {
		existing.Status = *req.Status
	}

	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if req.Nodes != nil {
		existing.Nodes = req.Nodes
	}

	if req.Edges != nil {
		existing.Edges = req.Edges
	}

	if req.Variables != nil {
		existing.Variables = req.Variables
	}

	if err := ValidateGraph(existing); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.persistence.ScenarioRepository().SaveScenario(c.Context(), existing); err != nil {
		return internalError(c, err)
	}

	return c.JSON(existing)
}

func (h *APIHandlers) DeleteScenario(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "Tenant ID header is required")
	}

	err := h.persistence.ScenarioRepository().DeleteScenario(c.Context(), tenant, c.Params("id"))
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetScenarioTriggers(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "Tenant ID header is required")
	}

	triggers, err := h.persistence.TriggerRepository().TriggersByScenario(c.Context(), tenant, c.Params("id"))
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"triggers": triggers})
}

func (h *APIHandlers) GetTrigger(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "Tenant ID header is required")
	}

	trigger, err := h.persistence.TriggerRepository().TriggerByID(c.Context(), tenant, c.Params("id"))
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.JSON(trigger)
}

func (h *APIHandlers) CreateTrigger(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "Tenant ID header is required")
	}

	var req CreateTriggerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	// The owning scenario must exist in this tenant.
	if _, err := h.persistence.ScenarioRepository().ScenarioByID(c.Context(), tenant, req.ScenarioID); err != nil {
		return handleRepositoryError(c, err)
	}

	trigger := &models.Trigger{
		TenantID:       tenant,
		ScenarioID:     req.ScenarioID,
		Name:           req.Name,
		EventType:      req.EventType,
		Conditions:     req.Conditions,
		ConditionLogic: req.ConditionLogic,
		Config:         req.Config,
		ChannelFilter:  req.ChannelFilter,
		Priority:       req.Priority,
		IsActive:       req.IsActive,
	}

	if err := h.persistence.TriggerRepository().SaveTrigger(c.Context(), trigger); err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(trigger)
}

func (h *APIHandlers) UpdateTrigger(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "Tenant ID header is required")
	}

	var req UpdateTriggerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.persistence.TriggerRepository().TriggerByID(c.Context(), tenant, c.Params("id"))
	if err != nil {
		return handleRepositoryError(c, err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.EventType != nil {
		existing.EventType = *req.EventType
	}

	if req.Conditions != nil {
		existing.Conditions = req.Conditions
	}

	if req.ConditionLogic != nil {
		existing.ConditionLogic = *req.ConditionLogic
	}

	if req.Config != nil {
		existing.Config = req.Config
	}

	if req.ChannelFilter != nil {
		existing.ChannelFilter = req.ChannelFilter
	}

	if req.Priority != nil {
		existing.Priority = *req.Priority
	}

	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if err := h.persistence.TriggerRepository().SaveTrigger(c.Context(), existing); err != nil {
		return internalError(c, err)
	}

	return c.JSON(existing)
}

func (h *APIHandlers) DeleteTrigger(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "Tenant ID header is required")
	}

	err := h.persistence.TriggerRepository().DeleteTrigger(c.Context(), tenant, c.Params("id"))
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetScenarioExecutions(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "Tenant ID header is required")
	}

	limit := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			return badRequest(c, "Invalid limit parameter")
		}

		limit = parsed
	}

	executions, err := h.persistence.ExecutionRepository().ExecutionsByScenario(c.Context(), tenant, c.Params("id"), limit)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"executions": executions})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "Tenant ID header is required")
	}

	execution, err := h.persistence.ExecutionRepository().ExecutionByID(c.Context(), tenant, c.Params("id"))
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.JSON(execution)
}

// FireEvent is the manual test-run endpoint: it feeds an event directly into
// the trigger evaluator, exactly as if it had arrived on the bus.
func (h *APIHandlers) FireEvent(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "Tenant ID header is required")
	}

	var req FireEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	launched, err := h.triggers.FireEvent(c.Context(), req.EventType, tenant, req.Data)
	if err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"event_type": req.EventType,
		"launched":   launched,
	})
}
