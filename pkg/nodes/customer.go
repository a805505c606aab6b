package nodes

import (
	"context"

	"github.com/omnidesk/scenario-engine/pkg/models"
)

// UpdateCustomerHandler writes field values onto the bound customer record.
// No bound customer means no-op.
type UpdateCustomerHandler struct {
	deps Deps
}

func (h *UpdateCustomerHandler) Execute(ctx context.Context, config map[string]any, ectx *models.ExecutionContext) (string, error) {
	fields, ok := config["fields"].(map[string]any)
	if ectx.CustomerID == "" || !ok || len(fields) == 0 {
		return models.PortOut, nil
	}

	return models.PortOut, h.deps.Customers.UpdateCustomerFields(ctx, ectx.CustomerID, fields)
}

// CreateNoteHandler appends a note to the bound customer record.
type CreateNoteHandler struct {
	deps Deps
}

func (h *CreateNoteHandler) Execute(ctx context.Context, config map[string]any, ectx *models.ExecutionContext) (string, error) {
	content := configString(config, "content", "")
	if ectx.CustomerID == "" || content == "" {
		return models.PortOut, nil
	}

	return models.PortOut, h.deps.Customers.CreateCustomerNote(ctx, ectx.CustomerID, content, map[string]any{
		"scenario_id": ectx.ScenarioID,
	})
}
