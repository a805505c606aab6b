package nodes

import (
	"context"
	"time"

	"github.com/omnidesk/scenario-engine/pkg/conditions"
	"github.com/omnidesk/scenario-engine/pkg/models"
)

// maxDelay is the hard cap on a single DELAY node, whatever the config asks
// for.
const maxDelay = 300 * time.Second

// StartHandler is the scenario entry point; it does nothing.
type StartHandler struct{}

func (h *StartHandler) Execute(_ context.Context, _ map[string]any, _ *models.ExecutionContext) (string, error) {
	return models.PortOut, nil
}

// ConditionHandler branches on a variable comparison. It resolves the
// configured field dot-path against the execution variables and applies the
// shared condition operator semantics.
type ConditionHandler struct{}

func (h *ConditionHandler) Execute(_ context.Context, config map[string]any, ectx *models.ExecutionContext) (string, error) {
	condition := models.Condition{
		Field:    configString(config, "field", ""),
		Operator: configString(config, "operator", conditions.OpEquals),
		Value:    config["value"],
	}

	if conditions.Evaluate(condition, ectx.Variables) {
		return models.PortTrue, nil
	}

	return models.PortFalse, nil
}

var unitMultipliers = map[string]time.Duration{
	"seconds": time.Second,
	"minutes": time.Minute,
	"hours":   time.Hour,
	"days":    24 * time.Hour,
}

// delayFor resolves the configured delay, clamped to [0, maxDelay]. Clamping
// happens in float space: converting an oversized duration*multiplier product
// to time.Duration first would overflow int64 and slip past the cap.
func delayFor(config map[string]any) time.Duration {
	duration := configFloat(config, "duration", 0)

	multiplier, ok := unitMultipliers[configString(config, "unit", "seconds")]
	if !ok {
		multiplier = time.Second
	}

	seconds := duration * multiplier.Seconds()
	if !(seconds > 0) { // negated to catch NaN as well
		return 0
	}

	if seconds > maxDelay.Seconds() {
		return maxDelay
	}

	return time.Duration(seconds * float64(time.Second))
}

// DelayHandler suspends the current execution, honoring context
// cancellation. Only this execution's goroutine sleeps.
type DelayHandler struct{}

func (h *DelayHandler) Execute(ctx context.Context, config map[string]any, _ *models.ExecutionContext) (string, error) {
	delay := delayFor(config)
	if delay <= 0 {
		return models.PortOut, nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return models.PortOut, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
