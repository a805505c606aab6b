package cmd

import (
	"fmt"
	"log/slog"

	"github.com/omnidesk/scenario-engine/pkg/eventbus"
	"github.com/omnidesk/scenario-engine/pkg/nodes"
	"github.com/omnidesk/scenario-engine/pkg/platform/apiclient"
	"github.com/omnidesk/scenario-engine/pkg/platform/memory"
	"github.com/omnidesk/scenario-engine/pkg/platform/redisq"
)

// NewCollaborators builds the platform collaborators node handlers act
// through. With a platform API URL the core API client serves conversations,
// customers, messaging and AI; without one the in-memory store stands in
// (local development). Notifications and routing go through redis when a
// redis URL is given, otherwise they are recorded in memory too.
func NewCollaborators(
	platformURL, platformToken, redisURL string,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
) nodes.Deps {
	store := memory.NewStore()

	deps := nodes.Deps{
		Conversations: store,
		Customers:     store,
		Messenger:     store,
		AI:            store,
		Router:        store,
		Notifications: store,
		Publisher:     publisher,
		Logger:        logger,
	}

	if platformURL != "" {
		client := apiclient.New(platformURL, platformToken, logger)
		deps.Conversations = client
		deps.Customers = client
		deps.Messenger = client
		deps.AI = client
	}

	if redisURL != "" {
		queue, err := redisq.NewQueue(redisURL, logger)
		if err != nil {
			panic(fmt.Errorf("failed to connect to redis: %w", err))
		}

		deps.Notifications = queue
		deps.Router = queue
	}

	return deps
}
