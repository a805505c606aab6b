// Package persistence provides standardized error types for storage
// operations.
package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrScenarioNotFound indicates a scenario was not found or is not
	// eligible for the requested operation.
	ErrScenarioNotFound = errors.New("scenario not found")

	// ErrTriggerNotFound indicates a trigger was not found.
	ErrTriggerNotFound = errors.New("trigger not found")

	// ErrExecutionNotFound indicates an execution record was not found.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrExecutionTerminal indicates an attempt to update an execution that
	// already reached a terminal state.
	ErrExecutionTerminal = errors.New("execution already terminal")
)

// ScenarioError wraps scenario storage errors with operation context.
type ScenarioError struct {
	Op         string
	ScenarioID string
	Err        error
}

func (e *ScenarioError) Error() string {
	return fmt.Sprintf("%s operation failed for scenario %s: %v", e.Op, e.ScenarioID, e.Err)
}

func (e *ScenarioError) Unwrap() error {
	return e.Err
}

func (e *ScenarioError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewScenarioError creates a scenario error with context.
func NewScenarioError(op, scenarioID string, err error) *ScenarioError {
	return &ScenarioError{Op: op, ScenarioID: scenarioID, Err: err}
}

// IsScenarioNotFound checks whether an error means the scenario is missing
// or ineligible.
func IsScenarioNotFound(err error) bool {
	return errors.Is(err, ErrScenarioNotFound)
}

// IsTriggerNotFound checks whether an error means the trigger is missing.
func IsTriggerNotFound(err error) bool {
	return errors.Is(err, ErrTriggerNotFound)
}

// IsExecutionNotFound checks whether an error means the execution is missing.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}
