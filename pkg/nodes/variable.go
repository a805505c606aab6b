package nodes

import (
	"context"
	"strconv"
	"strings"

	"github.com/omnidesk/scenario-engine/pkg/models"
)

// SetVariableHandler writes a value into the execution variables, coercing it
// per the configured value_type.
type SetVariableHandler struct{}

func (h *SetVariableHandler) Execute(_ context.Context, config map[string]any, ectx *models.ExecutionContext) (string, error) {
	name := configString(config, "variable_name", "")
	if name == "" {
		return models.PortOut, nil
	}

	value := config["value"]

	switch configString(config, "value_type", "string") {
	case "number":
		if s, ok := value.(string); ok {
			// Unparseable numbers keep the raw string, matching the loose
			// coercion graphs rely on.
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				value = f
			}
		}
	case "boolean":
		if s, ok := value.(string); ok {
			switch strings.ToLower(s) {
			case "true", "1", "yes":
				value = true
			default:
				value = false
			}
		}
	}

	ectx.Variables[name] = value

	return models.PortOut, nil
}
