// Package template expands {{path.to.var}} placeholders inside node
// configuration trees using an execution's variable mapping.
package template

import (
	"regexp"

	"github.com/omnidesk/scenario-engine/pkg/conditions"
	"github.com/omnidesk/scenario-engine/pkg/models"
)

var placeholderPattern = regexp.MustCompile(`\{\{(\w+(?:\.\w+)*)\}\}`)

// Substitute returns a copy of config with every {{path}} placeholder in its
// string leaves expanded against variables. Mappings and sequences are
// walked recursively; non-string leaves pass through unchanged. The input is
// never mutated.
func Substitute(config map[string]any, variables map[string]any) map[string]any {
	if config == nil {
		return nil
	}

	out := make(map[string]any, len(config))
	for k, v := range config {
		out[k] = substituteValue(v, variables)
	}

	return out
}

// ExpandString expands placeholders in a single string. A resolved path is
// stringified in place (nil resolves to the empty string); a failed lookup
// leaves the placeholder text untouched so unresolved paths round-trip.
func ExpandString(s string, variables map[string]any) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		path := match[2 : len(match)-2]

		value, ok := models.Lookup(variables, path)
		if !ok {
			return match
		}

		return conditions.Stringify(value)
	})
}

func substituteValue(v any, variables map[string]any) any {
	switch t := v.(type) {
	case string:
		return ExpandString(t, variables)
	case map[string]any:
		return Substitute(t, variables)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = substituteValue(item, variables)
		}

		return out
	default:
		return v
	}
}
