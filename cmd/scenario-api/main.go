package main

import (
	"context"
	"os"

	"github.com/omnidesk/scenario-engine/pkg/cmd"
	"github.com/omnidesk/scenario-engine/pkg/engine"
	"github.com/omnidesk/scenario-engine/pkg/log"
	"github.com/omnidesk/scenario-engine/pkg/nodes"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9090

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "scenario-api",
		Usage:                 "Create and manage automation scenarios",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
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

			logger.InfoContext(ctx, "Initializing scenario API")

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(
				command.String("event-bus"),
				"scenario-api",
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
			executor := engine.NewExecutor(persistence, dispatcher, eventBus, nil, logger, engine.ExecutorOptions{})
			triggers := engine.NewTriggerService(persistence, executor, deps.Conversations, deps.Customers, logger)

			api := NewAPI(logger, persistence, triggers)

			err := api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			triggers.Wait()

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
