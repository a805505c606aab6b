// Package models defines the node and edge vocabulary for scenario graphs.
package models

// NodeType identifies the behavior of a scenario node.
type NodeType string

// Flow control nodes.
const (
	NodeTypeStart     NodeType = "start"
	NodeTypeEnd       NodeType = "end"
	NodeTypeCondition NodeType = "condition"
	NodeTypeDelay     NodeType = "delay"
	NodeTypeSplit     NodeType = "split" // Declared, not executable
	NodeTypeMerge     NodeType = "merge" // Declared, not executable
)

// Action nodes.
const (
	NodeTypeSendMessage          NodeType = "send_message"
	NodeTypeSendEmail            NodeType = "send_email"
	NodeTypeAssignOperator       NodeType = "assign_operator"
	NodeTypeAssignDepartment     NodeType = "assign_department"
	NodeTypeAddTag               NodeType = "add_tag"
	NodeTypeRemoveTag            NodeType = "remove_tag"
	NodeTypeSetPriority          NodeType = "set_priority"
	NodeTypeSetVariable          NodeType = "set_variable"
	NodeTypeCloseConversation    NodeType = "close_conversation"
	NodeTypeTransferConversation NodeType = "transfer_conversation" // Declared, not executable
)

// AI nodes.
const (
	NodeTypeAIClassify  NodeType = "ai_classify"
	NodeTypeAIRespond   NodeType = "ai_respond"
	NodeTypeAISummarize NodeType = "ai_summarize" // Declared, not executable
	NodeTypeAISentiment NodeType = "ai_sentiment" // Declared, not executable
)

// Integration nodes.
const (
	NodeTypeHTTPRequest NodeType = "http_request"
	NodeTypeWebhook     NodeType = "webhook" // Declared, not executable
)

// Customer nodes.
const (
	NodeTypeUpdateCustomer NodeType = "update_customer"
	NodeTypeCreateNote     NodeType = "create_note"
)

// Output port names. Edges select the next node by matching their
// SourceHandle against the port returned by the node handler.
const (
	PortOut   = "out"
	PortTrue  = "true"
	PortFalse = "false"
	PortError = "error"
)

// Node is one step in a scenario graph. Config shape is type-specific and
// validated against the catalog schema on save.
type Node struct {
	ID        string         `json:"id"   validate:"required"`
	Type      NodeType       `json:"type" validate:"required"`
	Config    map[string]any `json:"config"`
	PositionX int            `json:"position_x"`
	PositionY int            `json:"position_y"`
}

// Edge connects a node output port to another node. An empty SourceHandle
// means the default "out" port.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source" validate:"required"`
	Target       string `json:"target" validate:"required"`
	SourceHandle string `json:"sourceHandle,omitempty"`
}

// Handle returns the effective output port this edge is attached to.
func (e *Edge) Handle() string {
	if e.SourceHandle == "" {
		return PortOut
	}

	return e.SourceHandle
}

// Matches reports whether this edge should be followed for the given output
// port. The default handle matches the "out" port.
func (e *Edge) Matches(port string) bool {
	if e.SourceHandle == port {
		return true
	}

	return port == PortOut && (e.SourceHandle == "" || e.SourceHandle == PortOut)
}
