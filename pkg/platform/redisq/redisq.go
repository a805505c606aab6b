// Package redisq provides the redis-backed notification queue and routing
// collaborators. Notification workers consume the email queue; the router
// worker listens on the routing channel for assignment requests.
package redisq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/omnidesk/scenario-engine/pkg/platform"
	redis "github.com/redis/go-redis/v9"
)

const (
	emailQueueKey  = "queue:notifications:email"
	routingChannel = "events:conversation.routing"
)

// Queue implements platform.NotificationQueue and platform.Router on redis.
type Queue struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewQueue creates a queue from a redis URL.
func NewQueue(redisURL string, logger *slog.Logger) (*Queue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	return &Queue{
		client: redis.NewClient(opts),
		logger: logger.With("module", "redisq"),
	}, nil
}

// NewQueueWithClient wraps an existing client (used by tests).
func NewQueueWithClient(client redis.UniversalClient, logger *slog.Logger) *Queue {
	return &Queue{client: client, logger: logger.With("module", "redisq")}
}

// EnqueueEmail pushes an email job onto the notification worker queue.
func (q *Queue) EnqueueEmail(ctx context.Context, job platform.EmailJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal email job: %w", err)
	}

	err = q.client.RPush(ctx, emailQueueKey, payload).Err()
	if err != nil {
		return fmt.Errorf("failed to enqueue email job: %w", err)
	}

	q.logger.DebugContext(ctx, "Enqueued email job", "to", job.To)

	return nil
}

// RequestAssignment publishes a routing request for the router worker to
// pick an operator (round-robin / least-busy is the router's concern).
func (q *Queue) RequestAssignment(ctx context.Context, tenantID, conversationID string) error {
	payload, err := json.Marshal(map[string]string{
		"conversation_id": conversationID,
		"tenant_id":       tenantID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal routing request: %w", err)
	}

	err = q.client.Publish(ctx, routingChannel, payload).Err()
	if err != nil {
		return fmt.Errorf("failed to publish routing request: %w", err)
	}

	return nil
}

// Close releases the underlying client.
func (q *Queue) Close() error {
	return q.client.Close()
}
