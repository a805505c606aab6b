package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/omnidesk/scenario-engine/pkg/cmd"
	"github.com/omnidesk/scenario-engine/pkg/engine"
	"github.com/omnidesk/scenario-engine/pkg/log"
	"github.com/omnidesk/scenario-engine/pkg/nodes"
	"github.com/omnidesk/scenario-engine/pkg/otelhelper"
	"github.com/omnidesk/scenario-engine/pkg/scheduler"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

func main() {
	command := &cli.Command{
		Name:                  "scenario-engine",
		Usage:                 "Consume platform events and run automation scenarios",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "engine-id",
				Aliases: []string{"id"},
				Usage:   "Custom engine ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("ENGINE_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus type (kafka, gochannel)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma-separated Kafka broker list",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the notification queue and router",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "platform-api-url",
				Usage:   "Base URL of the core platform API",
				Sources: cli.EnvVars("PLATFORM_API_URL"),
			},
			&cli.StringFlag{
				Name:    "platform-api-token",
				Usage:   "Service token for the core platform API",
				Sources: cli.EnvVars("PLATFORM_API_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			engineID := command.String("engine-id")
			if engineID == "" {
				engineID = "engine-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("scenario-engine").With("engine_id", engineID)

			logger.InfoContext(ctx, "Initializing scenario engine")

			var tracer trace.Tracer

			tracer, err := otelhelper.NewTracer(ctx, "scenario-engine")
			if err != nil {
				logger.WarnContext(ctx, "Tracing disabled", "error", err)

				tracer = nil
			}

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(
				command.String("event-bus"),
				"scenario-engine",
				command.String("kafka-brokers"),
				logger,
			)
			defer func() {
				err := eventBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			deps := cmd.NewCollaborators(
				command.String("platform-api-url"),
				command.String("platform-api-token"),
				command.String("redis-url"),
				eventBus,
				logger,
			)

			dispatcher := nodes.NewDispatcher(nodes.NewRegistry(deps), logger)
			executor := engine.NewExecutor(persistence, dispatcher, eventBus, tracer, logger, engine.ExecutorOptions{})
			triggers := engine.NewTriggerService(persistence, executor, deps.Conversations, deps.Customers, logger)
			schedules := scheduler.NewScheduler(persistence, triggers, logger)

			manager := NewEngineManager(engineID, eventBus, triggers, schedules, logger)

			return manager.Start(ctx)
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
