package nodes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/omnidesk/scenario-engine/pkg/template"
)

// Dispatcher routes a node to its handler and enforces the node-level
// partial-failure boundary: any handler error or panic becomes the "error"
// output port instead of aborting the execution.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, logger: logger}
}

// Dispatch substitutes variables into the node config, executes the handler
// and returns the output port. Unknown node types degrade to "out" with a
// warning so newer graphs keep running on older engines.
func (d *Dispatcher) Dispatch(ctx context.Context, node *models.Node, ectx *models.ExecutionContext) (port string) {
	logger := d.logger.With(
		"execution_id", ectx.ExecutionID,
		"node_id", node.ID,
		"node_type", node.Type,
	)

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "Node handler panicked", "panic", fmt.Sprintf("%v", r))
			port = models.PortError
		}
	}()

	handler, ok := d.registry.Handler(node.Type)
	if !ok {
		logger.WarnContext(ctx, "Unknown node type, skipping")

		return models.PortOut
	}

	config := template.Substitute(node.Config, ectx.Variables)

	port, err := handler.Execute(ctx, config, ectx)
	if err != nil {
		logger.ErrorContext(ctx, "Node execution error", "error", err)

		return models.PortError
	}

	return port
}
