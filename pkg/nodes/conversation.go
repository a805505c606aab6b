package nodes

import (
	"context"

	"github.com/omnidesk/scenario-engine/pkg/models"
)

// Conversation mutation handlers. All of them are no-ops when the execution
// has no bound conversation, matching how conversation-less firings (e.g.
// customer.created) flow through shared graphs.

// AssignOperatorHandler assigns the conversation directly when the config
// names a specific operator, otherwise hands the decision to the routing
// collaborator.
type AssignOperatorHandler struct {
	deps Deps
}

func (h *AssignOperatorHandler) Execute(ctx context.Context, config map[string]any, ectx *models.ExecutionContext) (string, error) {
	if ectx.ConversationID == "" {
		return models.PortOut, nil
	}

	strategy := configString(config, "strategy", "round_robin")
	operatorID := configString(config, "operator_id", "")

	if strategy == "specific" && operatorID != "" {
		return models.PortOut, h.deps.Conversations.AssignOperator(ctx, ectx.ConversationID, operatorID)
	}

	return models.PortOut, h.deps.Router.RequestAssignment(ctx, ectx.TenantID, ectx.ConversationID)
}

// AssignDepartmentHandler moves the conversation into a department.
type AssignDepartmentHandler struct {
	deps Deps
}

func (h *AssignDepartmentHandler) Execute(ctx context.Context, config map[string]any, ectx *models.ExecutionContext) (string, error) {
	departmentID := configString(config, "department_id", "")
	if ectx.ConversationID == "" || departmentID == "" {
		return models.PortOut, nil
	}

	return models.PortOut, h.deps.Conversations.AssignDepartment(ctx, ectx.ConversationID, departmentID)
}

// AddTagHandler tags the conversation. Adding an existing tag is a no-op.
type AddTagHandler struct {
	deps Deps
}

func (h *AddTagHandler) Execute(ctx context.Context, config map[string]any, ectx *models.ExecutionContext) (string, error) {
	tag := configString(config, "tag", "")
	if ectx.ConversationID == "" || tag == "" {
		return models.PortOut, nil
	}

	return models.PortOut, h.deps.Conversations.AddTag(ctx, ectx.ConversationID, tag)
}

// RemoveTagHandler removes a tag from the conversation.
type RemoveTagHandler struct {
	deps Deps
}

func (h *RemoveTagHandler) Execute(ctx context.Context, config map[string]any, ectx *models.ExecutionContext) (string, error) {
	tag := configString(config, "tag", "")
	if ectx.ConversationID == "" || tag == "" {
		return models.PortOut, nil
	}

	return models.PortOut, h.deps.Conversations.RemoveTag(ctx, ectx.ConversationID, tag)
}

// SetPriorityHandler changes the conversation priority.
type SetPriorityHandler struct {
	deps Deps
}

func (h *SetPriorityHandler) Execute(ctx context.Context, config map[string]any, ectx *models.ExecutionContext) (string, error) {
	priority := configString(config, "priority", "")
	if ectx.ConversationID == "" || priority == "" {
		return models.PortOut, nil
	}

	return models.PortOut, h.deps.Conversations.SetPriority(ctx, ectx.ConversationID, priority)
}

// CloseConversationHandler marks the conversation closed.
type CloseConversationHandler struct {
	deps Deps
}

func (h *CloseConversationHandler) Execute(ctx context.Context, _ map[string]any, ectx *models.ExecutionContext) (string, error) {
	if ectx.ConversationID == "" {
		return models.PortOut, nil
	}

	return models.PortOut, h.deps.Conversations.CloseConversation(ctx, ectx.ConversationID)
}
