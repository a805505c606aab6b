package web

import (
	"fmt"
	"slices"

	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/omnidesk/scenario-engine/pkg/nodes"
)

// ValidateGraph enforces the structural invariants a scenario must satisfy
// before it can be saved: exactly one start node, known node ids on every
// edge, edges only on declared output ports, and per-type config schemas.
func ValidateGraph(scenario *models.Scenario) error {
	if len(scenario.Nodes) == 0 {
		return nil
	}

	byID := make(map[string]*models.Node, len(scenario.Nodes))
	starts := 0

	for _, node := range scenario.Nodes {
		if node.ID == "" {
			return fmt.Errorf("node of type %s has no id", node.Type)
		}

		if _, dup := byID[node.ID]; dup {
			return fmt.Errorf("duplicate node id %q", node.ID)
		}

		byID[node.ID] = node

		if node.Type == models.NodeTypeStart {
			starts++
		}

		if _, known := nodes.DefinitionFor(node.Type); !known {
			return fmt.Errorf("node %q has unknown type %q", node.ID, node.Type)
		}

		if err := nodes.ValidateConfig(node.Type, node.Config); err != nil {
			return fmt.Errorf("node %q: %w", node.ID, err)
		}
	}

	if starts != 1 {
		return fmt.Errorf("scenario must have exactly one start node, found %d", starts)
	}

	for _, edge := range scenario.Edges {
		source, ok := byID[edge.Source]
		if !ok {
			return fmt.Errorf("edge %q references unknown source node %q", edge.ID, edge.Source)
		}

		if _, ok := byID[edge.Target]; !ok {
			return fmt.Errorf("edge %q references unknown target node %q", edge.ID, edge.Target)
		}

		if !slices.Contains(nodes.OutputPorts(source.Type), edge.Handle()) {
			return fmt.Errorf("edge %q uses port %q not declared by node type %s",
				edge.ID, edge.Handle(), source.Type)
		}
	}

	return nil
}
