package models

import "strings"

// Lookup resolves a dot-path (e.g. "customer.tags") against a nested
// key/value payload. Missing keys and non-mapping intermediates resolve to
// (nil, false); the lookup never panics.
func Lookup(data map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = data

	for part := range strings.SplitSeq(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}

	return current, true
}
