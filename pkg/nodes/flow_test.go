package nodes

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartHandler(t *testing.T) {
	port, err := (&StartHandler{}).Execute(context.Background(), nil, newTestContext(""))

	require.NoError(t, err)
	assert.Equal(t, models.PortOut, port)
}

func TestConditionHandler(t *testing.T) {
	ectx := newTestContext("")
	ectx.Variables["trigger"] = map[string]any{"message_text": "I want a refund"}

	tests := []struct {
		name   string
		config map[string]any
		port   string
	}{
		{
			"match goes true",
			map[string]any{"field": "trigger.message_text", "operator": "contains", "value": "refund"},
			models.PortTrue,
		},
		{
			"mismatch goes false",
			map[string]any{"field": "trigger.message_text", "operator": "contains", "value": "invoice"},
			models.PortFalse,
		},
		{
			"operator defaults to equals",
			map[string]any{"field": "trigger.message_text", "value": "I want a refund"},
			models.PortTrue,
		},
		{
			"missing field compares as blank",
			map[string]any{"field": "trigger.subject", "operator": "is_empty"},
			models.PortTrue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port, err := (&ConditionHandler{}).Execute(context.Background(), tt.config, ectx)

			require.NoError(t, err)
			assert.Equal(t, tt.port, port)
		})
	}
}

func TestDelayHandler_ZeroAndNegativeDurationsPassThrough(t *testing.T) {
	handler := &DelayHandler{}

	for _, config := range []map[string]any{
		nil,
		{"duration": float64(0)},
		{"duration": float64(-5)},
		{"duration": "not a number"},
	} {
		port, err := handler.Execute(context.Background(), config, newTestContext(""))

		require.NoError(t, err)
		assert.Equal(t, models.PortOut, port)
	}
}

func TestDelayFor_CapsRequestedDuration(t *testing.T) {
	tests := []struct {
		name   string
		config map[string]any
		want   time.Duration
	}{
		{
			name:   "within cap",
			config: map[string]any{"duration": float64(30), "unit": "seconds"},
			want:   30 * time.Second,
		},
		{
			name:   "minutes multiplier",
			config: map[string]any{"duration": float64(2), "unit": "minutes"},
			want:   2 * time.Minute,
		},
		{
			name:   "ten thousand hours capped at 300s",
			config: map[string]any{"duration": float64(10000), "unit": "hours"},
			want:   300 * time.Second,
		},
		{
			name:   "int64-overflowing request still capped",
			config: map[string]any{"duration": float64(1e15), "unit": "days"},
			want:   300 * time.Second,
		},
		{
			name:   "unknown unit falls back to seconds",
			config: map[string]any{"duration": float64(5), "unit": "fortnights"},
			want:   5 * time.Second,
		},
		{
			name:   "negative duration means no delay",
			config: map[string]any{"duration": float64(-5), "unit": "seconds"},
			want:   0,
		},
		{
			name:   "NaN duration means no delay",
			config: map[string]any{"duration": math.NaN(), "unit": "seconds"},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, delayFor(tt.config))
		})
	}
}

func TestDelayHandler_Waits(t *testing.T) {
	handler := &DelayHandler{}

	started := time.Now()
	port, err := handler.Execute(context.Background(), map[string]any{
		"duration": 0.02,
		"unit":     "seconds",
	}, newTestContext(""))

	require.NoError(t, err)
	assert.Equal(t, models.PortOut, port)
	assert.GreaterOrEqual(t, time.Since(started), 20*time.Millisecond)
}

func TestDelayHandler_HonorsContextCancellation(t *testing.T) {
	handler := &DelayHandler{}

	// Both requests cap at 300s, far beyond the test deadline; cancellation
	// must cut the wait short. The second one is large enough to overflow
	// int64 nanoseconds and must still wait instead of passing through.
	for _, config := range []map[string]any{
		{"duration": float64(1), "unit": "days"},
		{"duration": float64(1e15), "unit": "days"},
	} {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)

		_, err := handler.Execute(ctx, config, newTestContext(""))

		cancel()
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
}
