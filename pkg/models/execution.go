package models

import "time"

// ExecutionStatus represents the lifecycle state of a scenario execution.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// Terminal reports whether the status is final. A terminal execution record
// is immutable.
func (s ExecutionStatus) Terminal() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusFailed || s == ExecutionStatusCancelled
}

// ExecutionLog records the path an execution took through the graph plus the
// final variable snapshot. It is persisted regardless of outcome.
type ExecutionLog struct {
	VisitedNodes   []string       `json:"visited_nodes"`
	FinalVariables map[string]any `json:"final_variables"`
}

// Execution is the durable record of one scenario firing.
type Execution struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenant_id"`
	ScenarioID string `json:"scenario_id"`

	Status       ExecutionStatus `json:"status"`
	TriggerEvent string          `json:"trigger_event"`
	TriggerData  map[string]any  `json:"trigger_data,omitempty"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Result       map[string]any `json:"result,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	ExecutionLog *ExecutionLog  `json:"execution_log,omitempty"`
}

// ExecutionContext is the mutable, execution-scoped state for one firing.
// It is owned exclusively by its execution and never shared.
type ExecutionContext struct {
	TenantID    string `json:"tenant_id"`
	ScenarioID  string `json:"scenario_id"`
	ExecutionID string `json:"execution_id"`

	ConversationID string         `json:"conversation_id,omitempty"`
	CustomerID     string         `json:"customer_id,omitempty"`
	MessageID      string         `json:"message_id,omitempty"`
	TriggerEvent   string         `json:"trigger_event,omitempty"`
	TriggerData    map[string]any `json:"trigger_data,omitempty"`

	Variables map[string]any `json:"variables"`

	CurrentNodeID string   `json:"current_node_id,omitempty"`
	VisitedNodes  []string `json:"visited_nodes"`
	Err           string   `json:"error,omitempty"`
}

// NewExecutionContext builds the context for one firing, seeding variables
// from the scenario defaults plus the trigger payload under key "trigger".
// Conversation, customer and message bindings are lifted from well-known
// trigger data keys.
func NewExecutionContext(scenario *Scenario, executionID, triggerEvent string, triggerData map[string]any) *ExecutionContext {
	variables := make(map[string]any, len(scenario.Variables)+1)
	for k, v := range scenario.Variables {
		variables[k] = v
	}

	variables["trigger"] = triggerData

	ectx := &ExecutionContext{
		TenantID:     scenario.TenantID,
		ScenarioID:   scenario.ID,
		ExecutionID:  executionID,
		TriggerEvent: triggerEvent,
		TriggerData:  triggerData,
		Variables:    variables,
		VisitedNodes: make([]string, 0, len(scenario.Nodes)),
	}

	ectx.ConversationID, _ = triggerData["conversation_id"].(string)
	ectx.CustomerID, _ = triggerData["customer_id"].(string)
	ectx.MessageID, _ = triggerData["message_id"].(string)

	return ectx
}

// Visit marks a node as the current traversal position and appends it to the
// visited log.
func (c *ExecutionContext) Visit(nodeID string) {
	c.CurrentNodeID = nodeID
	c.VisitedNodes = append(c.VisitedNodes, nodeID)
}

// Log snapshots the visited node path and final variables.
func (c *ExecutionContext) Log() *ExecutionLog {
	return &ExecutionLog{
		VisitedNodes:   c.VisitedNodes,
		FinalVariables: c.Variables,
	}
}
