// Package apiclient implements the platform collaborator contracts against
// the omnidesk core API. The scenario engine runs beside the platform, not
// inside it; every conversation or customer mutation a node performs goes
// through these endpoints with an internal service token.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/omnidesk/scenario-engine/pkg/platform"
)

const (
	defaultTimeout  = 15 * time.Second
	maxErrorBodyLen = 512
)

// Client talks to the core platform API. It implements
// platform.ConversationStore, platform.CustomerStore, platform.Messenger and
// platform.AIService.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a client for the given base URL. The token is sent as a bearer
// token on every request.
func New(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  logger.With("module", "apiclient"),
	}
}

// do performs one JSON request. A non-nil out is decoded from the response
// body. Responses >= 400 become errors carrying a body snippet.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("platform API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))

		return fmt.Errorf("platform API returned %d for %s %s: %s",
			resp.StatusCode, method, path, string(snippet))
	}

	if out == nil {
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("failed to decode platform API response: %w", err)
	}

	return nil
}

// GetConversation fetches the engine-visible conversation projection.
func (c *Client) GetConversation(ctx context.Context, id string) (*platform.Conversation, error) {
	var conversation platform.Conversation

	err := c.do(ctx, http.MethodGet, "/internal/v1/conversations/"+url.PathEscape(id), nil, &conversation)
	if err != nil {
		return nil, err
	}

	return &conversation, nil
}

func (c *Client) AssignOperator(ctx context.Context, conversationID, operatorID string) error {
	return c.do(ctx, http.MethodPost,
		"/internal/v1/conversations/"+url.PathEscape(conversationID)+"/assign",
		map[string]string{"operator_id": operatorID}, nil)
}

func (c *Client) AssignDepartment(ctx context.Context, conversationID, departmentID string) error {
	return c.do(ctx, http.MethodPost,
		"/internal/v1/conversations/"+url.PathEscape(conversationID)+"/department",
		map[string]string{"department_id": departmentID}, nil)
}

func (c *Client) AddTag(ctx context.Context, conversationID, tag string) error {
	return c.do(ctx, http.MethodPost,
		"/internal/v1/conversations/"+url.PathEscape(conversationID)+"/tags",
		map[string]string{"tag": tag}, nil)
}

func (c *Client) RemoveTag(ctx context.Context, conversationID, tag string) error {
	return c.do(ctx, http.MethodDelete,
		"/internal/v1/conversations/"+url.PathEscape(conversationID)+"/tags/"+url.PathEscape(tag),
		nil, nil)
}

func (c *Client) SetPriority(ctx context.Context, conversationID, priority string) error {
	return c.do(ctx, http.MethodPost,
		"/internal/v1/conversations/"+url.PathEscape(conversationID)+"/priority",
		map[string]string{"priority": priority}, nil)
}

func (c *Client) CloseConversation(ctx context.Context, conversationID string) error {
	return c.do(ctx, http.MethodPost,
		"/internal/v1/conversations/"+url.PathEscape(conversationID)+"/close", nil, nil)
}

// GetCustomer fetches the engine-visible customer projection.
func (c *Client) GetCustomer(ctx context.Context, id string) (*platform.Customer, error) {
	var customer platform.Customer

	err := c.do(ctx, http.MethodGet, "/internal/v1/customers/"+url.PathEscape(id), nil, &customer)
	if err != nil {
		return nil, err
	}

	return &customer, nil
}

func (c *Client) UpdateCustomerFields(ctx context.Context, customerID string, fields map[string]any) error {
	return c.do(ctx, http.MethodPatch,
		"/internal/v1/customers/"+url.PathEscape(customerID),
		map[string]any{"fields": fields}, nil)
}

func (c *Client) CreateCustomerNote(ctx context.Context, customerID, content string, metadata map[string]any) error {
	return c.do(ctx, http.MethodPost,
		"/internal/v1/customers/"+url.PathEscape(customerID)+"/notes",
		map[string]any{"content": content, "metadata": metadata}, nil)
}

// PostMessage posts an outbound bot message and returns its id.
func (c *Client) PostMessage(ctx context.Context, conversationID, content string, metadata map[string]any) (string, error) {
	var created struct {
		ID string `json:"id"`
	}

	err := c.do(ctx, http.MethodPost,
		"/internal/v1/conversations/"+url.PathEscape(conversationID)+"/messages",
		map[string]any{
			"content":     content,
			"sender_type": "bot",
			"metadata":    metadata,
		}, &created)
	if err != nil {
		return "", err
	}

	return created.ID, nil
}

// Classify asks the AI service to pick one of the given categories.
func (c *Client) Classify(ctx context.Context, text string, categories []string) (string, error) {
	var result struct {
		Category string `json:"category"`
	}

	err := c.do(ctx, http.MethodPost, "/internal/v1/ai/classify",
		map[string]any{"text": text, "categories": categories}, &result)
	if err != nil {
		return "", err
	}

	return result.Category, nil
}

// GenerateSuggestion asks the AI service for a reply suggestion.
func (c *Client) GenerateSuggestion(ctx context.Context, message, kbContext string) (string, error) {
	var result struct {
		Suggestion string `json:"suggestion"`
	}

	err := c.do(ctx, http.MethodPost, "/internal/v1/ai/suggest",
		map[string]any{"message": message, "context": kbContext}, &result)
	if err != nil {
		return "", err
	}

	return result.Suggestion, nil
}

// RetrieveContext asks the knowledge-base pipeline for retrieval context.
func (c *Client) RetrieveContext(ctx context.Context, tenantID, query string, topK int) (string, error) {
	var result struct {
		Context string `json:"context"`
	}

	err := c.do(ctx, http.MethodPost, "/internal/v1/ai/context",
		map[string]any{"tenant_id": tenantID, "query": query, "top_k": topK}, &result)
	if err != nil {
		return "", err
	}

	return result.Context, nil
}
