// Package engine contains the scenario executor and the trigger firing
// service, the two halves of the automation engine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/omnidesk/scenario-engine/pkg/eventbus"
	"github.com/omnidesk/scenario-engine/pkg/events"
	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/omnidesk/scenario-engine/pkg/nodes"
	"github.com/omnidesk/scenario-engine/pkg/otelhelper"
	"github.com/omnidesk/scenario-engine/pkg/persistence"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	// DefaultStepBudget bounds graph traversal: a cyclic graph fails its
	// execution instead of walking forever.
	DefaultStepBudget = 10_000

	// DefaultDeadline is the wall-clock limit for one execution.
	DefaultDeadline = 15 * time.Minute

	maxErrorMessageLen = 1000
)

// GraphError marks structural failures of the scenario graph (no start node,
// traversal budget exceeded). They fail the whole execution rather than
// routing to a node error port.
type GraphError struct {
	Reason string
}

func (e *GraphError) Error() string {
	return "graph error: " + e.Reason
}

// ExecutorOptions tune traversal limits.
type ExecutorOptions struct {
	StepBudget int
	Deadline   time.Duration
}

// Executor runs one scenario graph per call. It is safe for concurrent use;
// every execution owns its own context and variables.
type Executor struct {
	persistence persistence.Persistence
	dispatcher  *nodes.Dispatcher
	publisher   eventbus.EventPublisher
	tracer      trace.Tracer
	logger      *slog.Logger

	stepBudget int
	deadline   time.Duration
}

// NewExecutor creates an executor. A nil tracer disables tracing.
func NewExecutor(
	p persistence.Persistence,
	dispatcher *nodes.Dispatcher,
	publisher eventbus.EventPublisher,
	tracer trace.Tracer,
	logger *slog.Logger,
	opts ExecutorOptions,
) *Executor {
	if opts.StepBudget <= 0 {
		opts.StepBudget = DefaultStepBudget
	}

	if opts.Deadline <= 0 {
		opts.Deadline = DefaultDeadline
	}

	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("scenario-engine")
	}

	return &Executor{
		persistence: p,
		dispatcher:  dispatcher,
		publisher:   publisher,
		tracer:      tracer,
		logger:      logger,
		stepBudget:  opts.StepBudget,
		deadline:    opts.Deadline,
	}
}

// Execute runs one scenario firing end to end and returns the execution ID.
// A missing or ineligible scenario fails before any execution record is
// written; every other failure is captured on the record itself.
func (e *Executor) Execute(ctx context.Context, tenantID, scenarioID, triggerEvent string, triggerData map[string]any) (string, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "scenario.execute",
		attribute.String(otelhelper.TenantIDKey, tenantID),
		attribute.String(otelhelper.ScenarioIDKey, scenarioID),
		attribute.String(otelhelper.EventTypeKey, triggerEvent),
	)
	defer span.End()

	scenario, err := e.persistence.ScenarioRepository().ActiveScenarioByID(ctx, tenantID, scenarioID)
	if err != nil {
		otelhelper.SetError(span, err)

		return "", err
	}

	executionID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate execution ID: %w", err)
	}

	span.SetAttributes(attribute.String(otelhelper.ExecutionIDKey, executionID.String()))

	execution := &models.Execution{
		ID:           executionID.String(),
		TenantID:     tenantID,
		ScenarioID:   scenario.ID,
		Status:       models.ExecutionStatusRunning,
		TriggerEvent: triggerEvent,
		TriggerData:  triggerData,
		StartedAt:    time.Now().UTC(),
	}

	err = e.persistence.ExecutionRepository().CreateExecution(ctx, execution)
	if err != nil {
		otelhelper.SetError(span, err)

		return "", fmt.Errorf("failed to create execution record: %w", err)
	}

	e.publishStarted(ctx, execution)

	logger := e.logger.With(
		"tenant_id", tenantID,
		"scenario_id", scenario.ID,
		"execution_id", execution.ID,
	)
	logger.InfoContext(ctx, "Execution started", "trigger_event", triggerEvent)

	ectx := models.NewExecutionContext(scenario, execution.ID, triggerEvent, triggerData)

	runCtx, cancel := context.WithTimeout(ctx, e.deadline)
	defer cancel()

	traverseErr := e.traverse(runCtx, scenario, ectx)

	now := time.Now().UTC()
	execution.CompletedAt = &now
	execution.ExecutionLog = ectx.Log()

	if traverseErr != nil {
		message := traverseErr.Error()
		if len(message) > maxErrorMessageLen {
			message = message[:maxErrorMessageLen]
		}

		execution.Status = models.ExecutionStatusFailed
		execution.ErrorMessage = message
		ectx.Err = traverseErr.Error()

		logger.ErrorContext(ctx, "Execution failed", "error", traverseErr)
		otelhelper.SetError(span, traverseErr)
	} else {
		execution.Status = models.ExecutionStatusCompleted
		execution.Result = map[string]any{"variables": ectx.Variables}

		logger.InfoContext(ctx, "Execution completed",
			"visited_nodes", len(ectx.VisitedNodes),
			"duration", now.Sub(execution.StartedAt))
	}

	err = e.persistence.ExecutionRepository().UpdateExecution(ctx, execution)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to persist execution result", "error", err)
	}

	e.publishFinished(ctx, execution)

	return execution.ID, nil
}

// traverse walks the graph from the start node, following one edge per
// dispatched output port, until no edge matches, an end node is reached, or
// a limit trips.
func (e *Executor) traverse(ctx context.Context, scenario *models.Scenario, ectx *models.ExecutionContext) error {
	current := scenario.StartNode()
	if current == nil {
		return &GraphError{Reason: "no start node found"}
	}

	adjacency := scenario.Adjacency()

	for steps := 0; current != nil; steps++ {
		if steps >= e.stepBudget {
			return &GraphError{Reason: fmt.Sprintf("step budget of %d exceeded", e.stepBudget)}
		}

		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return &GraphError{Reason: "execution deadline exceeded"}
			}

			return err
		}

		ectx.Visit(current.ID)

		port := e.dispatcher.Dispatch(ctx, current, ectx)

		var next *models.Node

		for _, edge := range adjacency[current.ID] {
			if !edge.Matches(port) {
				continue
			}

			target := scenario.NodeByID(edge.Target)
			if target != nil && target.Type != models.NodeTypeEnd {
				next = target
			}

			break
		}

		current = next
	}

	return nil
}

func (e *Executor) publishStarted(ctx context.Context, execution *models.Execution) {
	event := events.ExecutionStarted{
		BaseEvent: events.BaseEvent{
			ID:        uuid.NewString(),
			Type:      events.ExecutionStartedEventType,
			Timestamp: time.Now().UTC(),
			TenantID:  execution.TenantID,
		},
		ExecutionID:  execution.ID,
		ScenarioID:   execution.ScenarioID,
		TriggerEvent: execution.TriggerEvent,
	}

	if err := e.publisher.Publish(ctx, execution.TenantID, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish execution.started event", "error", err)
	}
}

func (e *Executor) publishFinished(ctx context.Context, execution *models.Execution) {
	var (
		event    eventbus.Event
		duration time.Duration
	)

	if execution.CompletedAt != nil {
		duration = execution.CompletedAt.Sub(execution.StartedAt)
	}

	base := events.BaseEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		TenantID:  execution.TenantID,
	}

	if execution.Status == models.ExecutionStatusFailed {
		base.Type = events.ExecutionFailedEventType
		event = events.ExecutionFailed{
			BaseEvent:   base,
			ExecutionID: execution.ID,
			ScenarioID:  execution.ScenarioID,
			Error:       execution.ErrorMessage,
			Duration:    duration,
		}
	} else {
		base.Type = events.ExecutionCompletedEventType
		event = events.ExecutionCompleted{
			BaseEvent:   base,
			ExecutionID: execution.ID,
			ScenarioID:  execution.ScenarioID,
			Duration:    duration,
		}
	}

	if err := e.publisher.Publish(ctx, execution.TenantID, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish execution lifecycle event", "error", err)
	}
}
