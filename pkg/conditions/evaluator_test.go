package conditions

import (
	"testing"

	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		actual   any
		operator string
		expected any
		want     bool
	}{
		{"equals strings", "email", OpEquals, "email", true},
		{"equals mismatched", "email", OpEquals, "chat", false},
		{"equals number vs string", float64(5), OpEquals, "5", true},
		{"equals bool vs string", true, OpEquals, "true", true},
		{"equals nil vs empty", nil, OpEquals, "", true},

		{"not equals", "a", OpNotEquals, "b", true},

		{"contains case-insensitive", "URGENT: refund", OpContains, "urgent", true},
		{"contains missing", "hello", OpContains, "refund", false},
		{"not contains", "hello", OpNotContains, "refund", true},

		{"starts with", "REFUND please", OpStartsWith, "refund", true},
		{"ends with", "please refund", OpEndsWith, "REFUND", true},

		{"regex match", "order #12345", OpRegex, `#\d+`, true},
		{"regex case-insensitive", "Hello", OpRegex, "hello", true},
		{"regex no match", "hello", OpRegex, `\d+`, false},
		{"regex malformed degrades to false", "anything", OpRegex, "([", false},

		{"greater than numbers", float64(10), OpGreaterThan, float64(5), true},
		{"greater than numeric strings", "10", OpGreaterThan, "5", true},
		{"greater than non-numeric", "abc", OpGreaterThan, float64(5), false},
		{"greater than nil treated as zero", nil, OpGreaterThan, float64(-1), true},
		{"less than", float64(3), OpLessThan, float64(5), true},
		{"less than equal is false", float64(5), OpLessThan, float64(5), false},

		{"is empty nil", nil, OpIsEmpty, nil, true},
		{"is empty blank string", "", OpIsEmpty, nil, true},
		{"is empty list", []any{}, OpIsEmpty, nil, true},
		{"is empty false for value", "x", OpIsEmpty, nil, false},
		{"is not empty", "x", OpIsNotEmpty, nil, true},

		{"in list", "email", OpIn, []any{"email", "chat"}, true},
		{"in list miss", "phone", OpIn, []any{"email", "chat"}, false},
		{"in comma string", "chat", OpIn, "email, chat, widget", true},
		{"in stringifies numbers", float64(2), OpIn, []any{float64(1), float64(2)}, true},
		{"not in", "phone", OpNotIn, []any{"email"}, true},

		{"unknown operator", "x", "approximately", "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.actual, tt.operator, tt.expected))
		})
	}
}

func TestEvaluate_ResolvesDotPath(t *testing.T) {
	payload := map[string]any{
		"conversation": map[string]any{"channel": "email"},
	}

	assert.True(t, Evaluate(models.Condition{
		Field:    "conversation.channel",
		Operator: OpEquals,
		Value:    "email",
	}, payload))

	// A missing path resolves to nil and compares like a blank.
	assert.True(t, Evaluate(models.Condition{
		Field:    "conversation.subject",
		Operator: OpIsEmpty,
	}, payload))

	assert.False(t, Evaluate(models.Condition{
		Field:    "conversation.subject",
		Operator: OpEquals,
		Value:    "hello",
	}, payload))
}

func TestEvaluateAll(t *testing.T) {
	payload := map[string]any{
		"channel":  "email",
		"priority": "high",
	}

	matchChannel := models.Condition{Field: "channel", Operator: OpEquals, Value: "email"}
	matchPriority := models.Condition{Field: "priority", Operator: OpEquals, Value: "high"}
	missPriority := models.Condition{Field: "priority", Operator: OpEquals, Value: "low"}

	t.Run("empty conditions always match", func(t *testing.T) {
		assert.True(t, EvaluateAll(nil, payload, models.ConditionLogicAnd))
		assert.True(t, EvaluateAll([]models.Condition{}, payload, models.ConditionLogicOr))
	})

	t.Run("and requires all", func(t *testing.T) {
		assert.True(t, EvaluateAll([]models.Condition{matchChannel, matchPriority}, payload, models.ConditionLogicAnd))
		assert.False(t, EvaluateAll([]models.Condition{matchChannel, missPriority}, payload, models.ConditionLogicAnd))
	})

	t.Run("or requires any", func(t *testing.T) {
		assert.True(t, EvaluateAll([]models.Condition{missPriority, matchChannel}, payload, models.ConditionLogicOr))
		assert.False(t, EvaluateAll([]models.Condition{missPriority, missPriority}, payload, models.ConditionLogicOr))
	})
}
