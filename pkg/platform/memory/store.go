// Package memory provides in-memory platform collaborators for development
// and tests. Conversation writes are serialized per conversation id.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/omnidesk/scenario-engine/pkg/platform"
)

// Message is an outbound message recorded by the in-memory messenger.
type Message struct {
	ID             string
	ConversationID string
	Content        string
	SenderType     string
	Metadata       map[string]any
	CreatedAt      time.Time
}

// Note is a customer note recorded by the in-memory customer store.
type Note struct {
	ID         string
	CustomerID string
	Content    string
	Metadata   map[string]any
}

// Store implements every platform collaborator in memory: conversation and
// customer stores, messenger, notification queue, router and a canned AI
// service. Binaries fall back to it when no platform API is configured.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*platform.Conversation
	customers     map[string]*platform.Customer
	messages      []Message
	notes         []Note

	emails          []platform.EmailJob
	routingRequests []RoutingRequest

	convLocks *platform.KeyedMutex
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		conversations: make(map[string]*platform.Conversation),
		customers:     make(map[string]*platform.Customer),
		convLocks:     platform.NewKeyedMutex(),
	}
}

// PutConversation seeds or replaces a conversation record.
func (s *Store) PutConversation(conversation *platform.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations[conversation.ID] = conversation
}

// PutCustomer seeds or replaces a customer record.
func (s *Store) PutCustomer(customer *platform.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.customers[customer.ID] = customer
}

// GetConversation returns a copy of the conversation record.
func (s *Store) GetConversation(_ context.Context, id string) (*platform.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversation, ok := s.conversations[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s not found", id)
	}

	copied := *conversation
	copied.Tags = slices.Clone(conversation.Tags)

	return &copied, nil
}

// mutateConversation applies fn to the conversation under its per-id lock.
func (s *Store) mutateConversation(id string, fn func(*platform.Conversation)) error {
	unlock := s.convLocks.Lock(id)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	conversation, ok := s.conversations[id]
	if !ok {
		return fmt.Errorf("conversation %s not found", id)
	}

	fn(conversation)

	return nil
}

func (s *Store) AssignOperator(_ context.Context, conversationID, operatorID string) error {
	return s.mutateConversation(conversationID, func(c *platform.Conversation) {
		c.AssignedToID = operatorID
		c.Status = platform.ConversationStatusAssigned
	})
}

func (s *Store) AssignDepartment(_ context.Context, conversationID, departmentID string) error {
	return s.mutateConversation(conversationID, func(c *platform.Conversation) {
		c.DepartmentID = departmentID
	})
}

func (s *Store) AddTag(_ context.Context, conversationID, tag string) error {
	return s.mutateConversation(conversationID, func(c *platform.Conversation) {
		if !slices.Contains(c.Tags, tag) {
			c.Tags = append(c.Tags, tag)
		}
	})
}

func (s *Store) RemoveTag(_ context.Context, conversationID, tag string) error {
	return s.mutateConversation(conversationID, func(c *platform.Conversation) {
		c.Tags = slices.DeleteFunc(c.Tags, func(t string) bool { return t == tag })
	})
}

func (s *Store) SetPriority(_ context.Context, conversationID, priority string) error {
	return s.mutateConversation(conversationID, func(c *platform.Conversation) {
		c.Priority = priority
	})
}

func (s *Store) CloseConversation(_ context.Context, conversationID string) error {
	now := time.Now().UTC()

	return s.mutateConversation(conversationID, func(c *platform.Conversation) {
		c.Status = platform.ConversationStatusClosed
		c.ClosedAt = &now
	})
}

// GetCustomer returns a copy of the customer record.
func (s *Store) GetCustomer(_ context.Context, id string) (*platform.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %s not found", id)
	}

	copied := *customer
	copied.Tags = slices.Clone(customer.Tags)

	return &copied, nil
}

func (s *Store) UpdateCustomerFields(_ context.Context, customerID string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, ok := s.customers[customerID]
	if !ok {
		return fmt.Errorf("customer %s not found", customerID)
	}

	for name, value := range fields {
		switch name {
		case "name":
			customer.Name, _ = value.(string)
		case "email":
			customer.Email, _ = value.(string)
		case "phone":
			customer.Phone, _ = value.(string)
		default:
			if customer.Fields == nil {
				customer.Fields = make(map[string]any)
			}

			customer.Fields[name] = value
		}
	}

	return nil
}

func (s *Store) CreateCustomerNote(_ context.Context, customerID, content string, metadata map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[customerID]; !ok {
		return fmt.Errorf("customer %s not found", customerID)
	}

	s.notes = append(s.notes, Note{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		Content:    content,
		Metadata:   metadata,
	})

	return nil
}

// PostMessage records an outbound bot message on the conversation.
func (s *Store) PostMessage(_ context.Context, conversationID, content string, metadata map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conversationID]; !ok {
		return "", fmt.Errorf("conversation %s not found", conversationID)
	}

	message := Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Content:        content,
		SenderType:     "bot",
		Metadata:       metadata,
		CreatedAt:      time.Now().UTC(),
	}
	s.messages = append(s.messages, message)

	return message.ID, nil
}

// Messages returns a copy of all recorded messages.
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.messages)
}

// Notes returns a copy of all recorded notes.
func (s *Store) Notes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.notes)
}
