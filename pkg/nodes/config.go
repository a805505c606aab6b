package nodes

// Config value extraction helpers. Node configs arrive as decoded JSON, so
// numbers are float64 and shapes are loose; these degrade to defaults rather
// than erroring.

func configString(config map[string]any, key, fallback string) string {
	if s, ok := config[key].(string); ok {
		return s
	}

	return fallback
}

func configBool(config map[string]any, key string, fallback bool) bool {
	if b, ok := config[key].(bool); ok {
		return b
	}

	return fallback
}

func configFloat(config map[string]any, key string, fallback float64) float64 {
	switch v := config[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return fallback
	}
}

func configStringSlice(config map[string]any, key string) []string {
	raw, ok := config[key].([]any)
	if !ok {
		if list, ok := config[key].([]string); ok {
			return list
		}

		return nil
	}

	out := make([]string, 0, len(raw))

	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}

	return out
}

func configStringMap(config map[string]any, key string) map[string]string {
	raw, ok := config[key].(map[string]any)
	if !ok {
		return nil
	}

	out := make(map[string]string, len(raw))

	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}

	return out
}
