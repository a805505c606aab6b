package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/omnidesk/scenario-engine/pkg/platform"
)

// RoutingRequest is a recorded operator-assignment request.
type RoutingRequest struct {
	TenantID       string
	ConversationID string
}

// EnqueueEmail records the email job instead of delivering it.
func (s *Store) EnqueueEmail(_ context.Context, job platform.EmailJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.emails = append(s.emails, job)

	return nil
}

// RequestAssignment records the routing request instead of publishing it.
func (s *Store) RequestAssignment(_ context.Context, tenantID, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.routingRequests = append(s.routingRequests, RoutingRequest{
		TenantID:       tenantID,
		ConversationID: conversationID,
	})

	return nil
}

// Classify picks the first category whose name appears in the text, falling
// back to the first category. Good enough for development scenarios.
func (s *Store) Classify(_ context.Context, text string, categories []string) (string, error) {
	if len(categories) == 0 {
		return "", fmt.Errorf("no categories to classify into")
	}

	lowered := strings.ToLower(text)
	for _, category := range categories {
		if strings.Contains(lowered, strings.ToLower(category)) {
			return category, nil
		}
	}

	return categories[0], nil
}

// GenerateSuggestion returns a canned reply that echoes the inbound message.
func (s *Store) GenerateSuggestion(_ context.Context, message, kbContext string) (string, error) {
	if kbContext != "" {
		return fmt.Sprintf("Based on our documentation: %s", kbContext), nil
	}

	return fmt.Sprintf("Thanks for reaching out about %q. An agent will follow up shortly.", message), nil
}

// RetrieveContext returns no knowledge-base context in memory mode.
func (s *Store) RetrieveContext(_ context.Context, _, _ string, _ int) (string, error) {
	return "", nil
}

// Emails returns a copy of all recorded email jobs.
func (s *Store) Emails() []platform.EmailJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.emails)
}

// RoutingRequests returns a copy of all recorded routing requests.
func (s *Store) RoutingRequests() []RoutingRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.routingRequests)
}
