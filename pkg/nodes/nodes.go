// Package nodes implements the per-type action handlers scenario executions
// dispatch through. Handlers receive their node config with variables
// already substituted and return the output port the traversal should follow.
package nodes

import (
	"context"
	"log/slog"

	"github.com/omnidesk/scenario-engine/pkg/eventbus"
	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/omnidesk/scenario-engine/pkg/platform"
)

// Handler executes one node type. Returning an error (or panicking) routes
// the traversal to the "error" port; handlers never abort the execution.
type Handler interface {
	Execute(ctx context.Context, config map[string]any, ectx *models.ExecutionContext) (string, error)
}

// Deps are the platform collaborators handlers act through.
type Deps struct {
	Conversations platform.ConversationStore
	Customers     platform.CustomerStore
	Messenger     platform.Messenger
	AI            platform.AIService
	Router        platform.Router
	Notifications platform.NotificationQueue
	Publisher     eventbus.EventPublisher
	Logger        *slog.Logger
}

// Registry maps node types to their handlers.
type Registry struct {
	handlers map[models.NodeType]Handler
}

// NewRegistry builds a registry with every executable node type wired to the
// given collaborators. Declared-but-unimplemented types (split, merge, ...)
// are intentionally absent: the dispatcher treats them as unknown.
func NewRegistry(deps Deps) *Registry {
	r := &Registry{handlers: make(map[models.NodeType]Handler)}

	sendMessage := &SendMessageHandler{deps: deps}

	r.Register(models.NodeTypeStart, &StartHandler{})
	r.Register(models.NodeTypeCondition, &ConditionHandler{})
	r.Register(models.NodeTypeDelay, &DelayHandler{})
	r.Register(models.NodeTypeSendMessage, sendMessage)
	r.Register(models.NodeTypeSendEmail, &SendEmailHandler{deps: deps})
	r.Register(models.NodeTypeAssignOperator, &AssignOperatorHandler{deps: deps})
	r.Register(models.NodeTypeAssignDepartment, &AssignDepartmentHandler{deps: deps})
	r.Register(models.NodeTypeAddTag, &AddTagHandler{deps: deps})
	r.Register(models.NodeTypeRemoveTag, &RemoveTagHandler{deps: deps})
	r.Register(models.NodeTypeSetPriority, &SetPriorityHandler{deps: deps})
	r.Register(models.NodeTypeSetVariable, &SetVariableHandler{})
	r.Register(models.NodeTypeCloseConversation, &CloseConversationHandler{deps: deps})
	r.Register(models.NodeTypeAIClassify, &AIClassifyHandler{deps: deps})
	r.Register(models.NodeTypeAIRespond, &AIRespondHandler{deps: deps, sendMessage: sendMessage})
	r.Register(models.NodeTypeHTTPRequest, &HTTPRequestHandler{})
	r.Register(models.NodeTypeUpdateCustomer, &UpdateCustomerHandler{deps: deps})
	r.Register(models.NodeTypeCreateNote, &CreateNoteHandler{deps: deps})

	return r
}

// Register binds a handler to a node type, replacing any existing binding.
func (r *Registry) Register(nodeType models.NodeType, handler Handler) {
	r.handlers[nodeType] = handler
}

// Handler returns the handler for a node type.
func (r *Registry) Handler(nodeType models.NodeType) (Handler, bool) {
	h, ok := r.handlers[nodeType]

	return h, ok
}
