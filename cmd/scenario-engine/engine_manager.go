package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/omnidesk/scenario-engine/pkg/engine"
	"github.com/omnidesk/scenario-engine/pkg/eventbus"
	"github.com/omnidesk/scenario-engine/pkg/events"
	"github.com/omnidesk/scenario-engine/pkg/scheduler"
)

// EngineManager ties the event bus, the trigger service and the scheduler
// into one long-running process: every platform event coming off the bus is
// evaluated against the tenant's triggers, and schedule triggers fire on
// their cron expressions.
type EngineManager struct {
	id        string
	eventBus  eventbus.EventBus
	triggers  *engine.TriggerService
	schedules *scheduler.Scheduler
	logger    *slog.Logger
}

func NewEngineManager(
	id string,
	eventBus eventbus.EventBus,
	triggers *engine.TriggerService,
	schedules *scheduler.Scheduler,
	logger *slog.Logger,
) *EngineManager {
	return &EngineManager{
		id:        id,
		eventBus:  eventBus,
		triggers:  triggers,
		schedules: schedules,
		logger:    logger,
	}
}

// Start subscribes to platform events and blocks until SIGINT or SIGTERM.
// In-flight scenario executions are drained before returning.
func (m *EngineManager) Start(ctx context.Context) error {
	m.logger.InfoContext(ctx, "Starting engine manager")

	err := m.eventBus.Handle(events.PlatformEventType, m.handlePlatformEvent)
	if err != nil {
		return err
	}

	err = m.eventBus.Subscribe(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	err = m.schedules.Start(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed to start scheduler", "error", err)

		return err
	}

	m.logger.InfoContext(ctx, "Engine started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	m.logger.InfoContext(ctx, "Shutting down engine...")

	m.schedules.Stop()
	m.triggers.Wait()

	return nil
}

func (m *EngineManager) handlePlatformEvent(ctx context.Context, event any) error {
	platformEvent, ok := event.(*events.PlatformEvent)
	if !ok {
		m.logger.ErrorContext(ctx, "Invalid event type for PlatformEvent")

		return nil
	}

	logger := m.logger.With(
		"tenant_id", platformEvent.TenantID,
		"event_name", platformEvent.EventName,
		"event_id", platformEvent.ID,
	)
	logger.InfoContext(ctx, "Processing platform event")

	launched, err := m.triggers.FireEvent(ctx, platformEvent.EventName, platformEvent.TenantID, platformEvent.Data)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to fire event", "error", err)

		return err
	}

	logger.InfoContext(ctx, "Platform event processed", "scenarios_launched", launched)

	return nil
}
