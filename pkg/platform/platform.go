// Package platform defines the collaborator contracts the scenario engine
// consumes: conversation/customer mutation, outbound messaging, AI
// capabilities, operator routing and notification delivery. The engine never
// owns these systems; it talks to them through these narrow interfaces.
package platform

import (
	"context"
	"time"
)

// Conversation statuses the engine writes.
const (
	ConversationStatusOpen     = "open"
	ConversationStatusAssigned = "assigned"
	ConversationStatusClosed   = "closed"
)

// Conversation is the engine-visible projection of a conversation record.
type Conversation struct {
	ID           string         `json:"id"`
	TenantID     string         `json:"tenant_id"`
	CustomerID   string         `json:"customer_id,omitempty"`
	Status       string         `json:"status"`
	Channel      string         `json:"channel"`
	Priority     string         `json:"priority"`
	Subject      string         `json:"subject,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	AssignedToID string         `json:"assigned_to_id,omitempty"`
	DepartmentID string         `json:"department_id,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	ClosedAt     *time.Time     `json:"closed_at,omitempty"`
}

// Customer is the engine-visible projection of a customer record.
type Customer struct {
	ID       string         `json:"id"`
	TenantID string         `json:"tenant_id"`
	Name     string         `json:"name,omitempty"`
	Email    string         `json:"email,omitempty"`
	Phone    string         `json:"phone,omitempty"`
	Tags     []string       `json:"tags,omitempty"`
	Fields   map[string]any `json:"fields,omitempty"`
}

// ConversationStore exposes the field-level conversation mutations scenario
// nodes perform. Implementations serialize writes per conversation id.
type ConversationStore interface {
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	AssignOperator(ctx context.Context, conversationID, operatorID string) error
	AssignDepartment(ctx context.Context, conversationID, departmentID string) error
	AddTag(ctx context.Context, conversationID, tag string) error
	RemoveTag(ctx context.Context, conversationID, tag string) error
	SetPriority(ctx context.Context, conversationID, priority string) error
	CloseConversation(ctx context.Context, conversationID string) error
}

// CustomerStore exposes customer record mutations.
type CustomerStore interface {
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	UpdateCustomerFields(ctx context.Context, customerID string, fields map[string]any) error
	CreateCustomerNote(ctx context.Context, customerID, content string, metadata map[string]any) error
}

// Messenger posts outbound bot messages onto a conversation.
type Messenger interface {
	PostMessage(ctx context.Context, conversationID, content string, metadata map[string]any) (string, error)
}

// AIService is the AI collaborator: intent classification, reply generation
// and knowledge-base retrieval (the retrieval pipeline itself is external).
type AIService interface {
	Classify(ctx context.Context, text string, categories []string) (string, error)
	GenerateSuggestion(ctx context.Context, message, kbContext string) (string, error)
	RetrieveContext(ctx context.Context, tenantID, query string, topK int) (string, error)
}

// Router handles non-specific operator assignment (round-robin, least-busy).
// Calls are fire-and-forget from the engine's point of view.
type Router interface {
	RequestAssignment(ctx context.Context, tenantID, conversationID string) error
}

// EmailJob is the payload handed to the notification workers.
type EmailJob struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	BodyText string `json:"body_text"`
	BodyHTML string `json:"body_html"`
}

// NotificationQueue enqueues fire-and-forget notification jobs.
type NotificationQueue interface {
	EnqueueEmail(ctx context.Context, job EmailJob) error
}
