// Package conditions evaluates trigger and branch conditions against nested
// event payloads. Evaluation is pure: no operator ever panics or performs
// I/O, and malformed input degrades to false.
package conditions

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/omnidesk/scenario-engine/pkg/models"
)

// Supported operators.
const (
	OpEquals      = "equals"
	OpNotEquals   = "not_equals"
	OpContains    = "contains"
	OpNotContains = "not_contains"
	OpStartsWith  = "starts_with"
	OpEndsWith    = "ends_with"
	OpRegex       = "regex"
	OpGreaterThan = "greater_than"
	OpLessThan    = "less_than"
	OpIsEmpty     = "is_empty"
	OpIsNotEmpty  = "is_not_empty"
	OpIn          = "in"
	OpNotIn       = "not_in"
)

// Evaluate resolves the condition's field dot-path against the payload and
// applies the operator. Missing paths resolve to nil and are compared as
// such; unknown operators evaluate to false.
func Evaluate(condition models.Condition, payload map[string]any) bool {
	actual, _ := models.Lookup(payload, condition.Field)

	return Compare(actual, condition.Operator, condition.Value)
}

// EvaluateAll combines multiple conditions with AND/OR logic. An empty
// condition list always matches.
func EvaluateAll(conditions []models.Condition, payload map[string]any, logic models.ConditionLogic) bool {
	if len(conditions) == 0 {
		return true
	}

	if logic == models.ConditionLogicOr {
		for _, c := range conditions {
			if Evaluate(c, payload) {
				return true
			}
		}

		return false
	}

	for _, c := range conditions {
		if !Evaluate(c, payload) {
			return false
		}
	}

	return true
}

// Compare applies one operator to an actual and expected value.
func Compare(actual any, operator string, expected any) bool {
	switch operator {
	case OpEquals:
		return Stringify(actual) == Stringify(expected)
	case OpNotEquals:
		return Stringify(actual) != Stringify(expected)
	case OpContains:
		return strings.Contains(lower(actual), lower(expected))
	case OpNotContains:
		return !strings.Contains(lower(actual), lower(expected))
	case OpStartsWith:
		return strings.HasPrefix(lower(actual), lower(expected))
	case OpEndsWith:
		return strings.HasSuffix(lower(actual), lower(expected))
	case OpRegex:
		re, err := regexp.Compile("(?i)" + Stringify(expected))
		if err != nil {
			return false
		}

		return re.MatchString(Stringify(actual))
	case OpGreaterThan:
		a, aOK := toFloat(actual)
		e, eOK := toFloat(expected)

		return aOK && eOK && a > e
	case OpLessThan:
		a, aOK := toFloat(actual)
		e, eOK := toFloat(expected)

		return aOK && eOK && a < e
	case OpIsEmpty:
		return isEmpty(actual)
	case OpIsNotEmpty:
		return !isEmpty(actual)
	case OpIn:
		return isMember(actual, expected)
	case OpNotIn:
		return !isMember(actual, expected)
	default:
		return false
	}
}

// Stringify renders a value for string-cast comparison. Nil renders as the
// empty string so absent fields compare like blanks rather than a sentinel.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(v)
	}
}

func lower(v any) string {
	return strings.ToLower(Stringify(v))
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		// Absent numeric fields compare as zero, matching trigger payloads
		// that omit optional counters.
		return 0, true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)

		return f, err == nil
	default:
		return 0, false
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case int:
		return t == 0
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

// isMember tests membership of actual in either a literal list or a
// comma-split string.
func isMember(actual, expected any) bool {
	needle := Stringify(actual)

	switch list := expected.(type) {
	case []any:
		for _, item := range list {
			if Stringify(item) == needle {
				return true
			}
		}

		return false
	case []string:
		for _, item := range list {
			if item == needle {
				return true
			}
		}

		return false
	default:
		for part := range strings.SplitSeq(Stringify(expected), ",") {
			if strings.TrimSpace(part) == needle {
				return true
			}
		}

		return false
	}
}
