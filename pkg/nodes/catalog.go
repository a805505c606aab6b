package nodes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/omnidesk/scenario-engine/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// PortSpec describes one connection port of a node type.
type PortSpec struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // default, true, false, error
}

// Definition is the catalog entry for a node type: metadata for builders plus
// the JSON schema its config is validated against on save.
type Definition struct {
	Type         models.NodeType `json:"type"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Icon         string          `json:"icon"`
	Executable   bool            `json:"executable"`
	Inputs       []PortSpec      `json:"inputs"`
	Outputs      []PortSpec      `json:"outputs"`
	ConfigSchema map[string]any  `json:"config_schema"`
}

var (
	inPort    = PortSpec{ID: "in", Name: "In", Type: "default"}
	outPort   = PortSpec{ID: models.PortOut, Name: "Out", Type: "default"}
	truePort  = PortSpec{ID: models.PortTrue, Name: "Yes", Type: "true"}
	falsePort = PortSpec{ID: models.PortFalse, Name: "No", Type: "false"}
	errorPort = PortSpec{ID: models.PortError, Name: "Error", Type: "error"}
)

var catalog = map[models.NodeType]Definition{
	models.NodeTypeStart: {
		Type: models.NodeTypeStart, Name: "Start", Description: "Scenario entry point",
		Category: "flow", Icon: "play", Executable: true,
		Outputs:      []PortSpec{outPort},
		ConfigSchema: map[string]any{},
	},
	models.NodeTypeEnd: {
		Type: models.NodeTypeEnd, Name: "End", Description: "Scenario termination",
		Category: "flow", Icon: "stop", Executable: true,
		Inputs:       []PortSpec{inPort},
		ConfigSchema: map[string]any{},
	},
	models.NodeTypeCondition: {
		Type: models.NodeTypeCondition, Name: "Condition", Description: "Branch on a variable comparison",
		Category: "flow", Icon: "git-branch", Executable: true,
		Inputs:  []PortSpec{inPort},
		Outputs: []PortSpec{truePort, falsePort},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"field": map[string]any{"type": "string"},
				"operator": map[string]any{
					"type": "string",
					"enum": []any{
						"equals", "not_equals", "contains", "not_contains",
						"starts_with", "ends_with", "regex",
						"greater_than", "less_than",
						"is_empty", "is_not_empty", "in", "not_in",
					},
				},
				"value": map[string]any{},
			},
			"required": []any{"field", "operator"},
		},
	},
	models.NodeTypeDelay: {
		Type: models.NodeTypeDelay, Name: "Delay", Description: "Pause before the next action",
		Category: "flow", Icon: "clock", Executable: true,
		Inputs:  []PortSpec{inPort},
		Outputs: []PortSpec{outPort},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"duration": map[string]any{"type": "integer", "minimum": 1},
				"unit": map[string]any{
					"type":    "string",
					"enum":    []any{"seconds", "minutes", "hours", "days"},
					"default": "seconds",
				},
			},
			"required": []any{"duration"},
		},
	},
	models.NodeTypeSplit: {
		Type: models.NodeTypeSplit, Name: "Split", Description: "Parallel branch fan-out (not yet executable)",
		Category: "flow", Icon: "git-merge", Executable: false,
		Inputs:       []PortSpec{inPort},
		Outputs:      []PortSpec{outPort},
		ConfigSchema: map[string]any{},
	},
	models.NodeTypeMerge: {
		Type: models.NodeTypeMerge, Name: "Merge", Description: "Parallel branch join (not yet executable)",
		Category: "flow", Icon: "git-merge", Executable: false,
		Inputs:       []PortSpec{inPort},
		Outputs:      []PortSpec{outPort},
		ConfigSchema: map[string]any{},
	},
	models.NodeTypeSendMessage: {
		Type: models.NodeTypeSendMessage, Name: "Send Message", Description: "Post a bot message on the conversation",
		Category: "actions", Icon: "message-square", Executable: true,
		Inputs:  []PortSpec{inPort},
		Outputs: []PortSpec{outPort, errorPort},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"message":     map[string]any{"type": "string"},
				"template_id": map[string]any{"type": "string"},
			},
			"required": []any{"message"},
		},
	},
	models.NodeTypeSendEmail: {
		Type: models.NodeTypeSendEmail, Name: "Send Email", Description: "Enqueue an email to the customer",
		Category: "actions", Icon: "mail", Executable: true,
		Inputs:  []PortSpec{inPort},
		Outputs: []PortSpec{outPort, errorPort},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"subject":     map[string]any{"type": "string"},
				"body":        map[string]any{"type": "string"},
				"template_id": map[string]any{"type": "string"},
			},
			"required": []any{"subject", "body"},
		},
	},
	models.NodeTypeAssignOperator: {
		Type: models.NodeTypeAssignOperator, Name: "Assign Operator", Description: "Assign the conversation to an operator",
		Category: "actions", Icon: "user-plus", Executable: true,
		Inputs:  []PortSpec{inPort},
		Outputs: []PortSpec{outPort, errorPort},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"operator_id": map[string]any{"type": "string"},
				"strategy": map[string]any{
					"type":    "string",
					"enum":    []any{"specific", "round_robin", "least_busy", "random"},
					"default": "round_robin",
				},
			},
		},
	},
	models.NodeTypeAssignDepartment: {
		Type: models.NodeTypeAssignDepartment, Name: "Assign Department", Description: "Move the conversation into a department",
		Category: "actions", Icon: "users", Executable: true,
		Inputs:  []PortSpec{inPort},
		Outputs: []PortSpec{outPort, errorPort},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"department_id": map[string]any{"type": "string"},
			},
			"required": []any{"department_id"},
		},
	},
	models.NodeTypeAddTag: {
		Type: models.NodeTypeAddTag, Name: "Add Tag", Description: "Tag the conversation",
		Category: "actions", Icon: "tag", Executable: true,
		Inputs:  []PortSpec{inPort},
		Outputs: []PortSpec{outPort, errorPort},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"tag": map[string]any{"type": "string"},
			},
			"required": []any{"tag"},
		},
	},
	models.NodeTypeRemoveTag: {
		Type: models.NodeTypeRemoveTag, Name: "Remove Tag", Description: "Remove a conversation tag",
		Category: "actions", Icon: "tag", Executable: true,
		Inputs:  []PortSpec{inPort},
		Outputs: []PortSpec{outPort, errorPort},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"tag": map[string]any{"type": "string"},
			},
			"required": []any{"tag"},
		},
	},
	models.NodeTypeSetPriority: {
		Type: models.NodeTypeSetPriority, Name: "Set Priority", Description: "Change the conversation priority",
		Category: "actions", Icon: "alert-triangle", Executable: true,
		Inputs:  []PortSpec{inPort},
		Outputs: []PortSpec{outPort, errorPort},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"priority": map[string]any{
					"type": "string",
					"enum": []any{"low", "normal", "high", "urgent"},
				},
			},
			"required": []any{"priority"},
		},
	},
	models.NodeTypeSetVariable: {
		Type: models.NodeTypeSetVariable, Name: "Set Variable", Description: "Store a value in the execution variables",
		Category: "actions", Icon: "variable", Executable: true,
		Inputs:  []PortSpec{inPort},
		Outputs: []PortSpec{outPort},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"variable_name": map[string]any{"type": "string"},
				"value":         map[string]any{"type": "string"},
				"value_type": map[string]any{
					"type":    "string",
					"enum":    []any{"string", "number", "boolean"},
					"default": "string",
				},
			},
			"required": []any{"variable_name", "value"},
		},
	},
	models.NodeTypeCloseConversation: {
		Type: models.NodeTypeCloseConversation, Name: "Close Conversation", Description: "Close the current conversation",
		Category: "actions", Icon: "x-circle", Executable: true,
		Inputs:  []PortSpec{inPort},
		Outputs: []PortSpec{outPort, errorPort},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"resolution": map[string]any{"type": "string"},
			},
		},
	},
	models.NodeTypeTransferConversation: {
		Type: models.NodeTypeTransferConversation, Name: "Transfer Conversation", Description: "Transfer to another tenant workspace (not yet executable)",
		Category: "actions", Icon: "share", Executable: false,
		Inputs:       []PortSpec{inPort},
		Outputs:      []PortSpec{outPort},
		ConfigSchema: map[string]any{},
	},
	models.NodeTypeAIClassify: {
		Type: models.NodeTypeAIClassify, Name: "AI Classify", Description: "Classify the message with AI",
		Category: "ai", Icon: "brain", Executable: true,
		Inputs:  []PortSpec{inPort},
		Outputs: []PortSpec{outPort, errorPort},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"categories": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"output_variable": map[string]any{"type": "string"},
			},
			"required": []any{"categories"},
		},
	},
	models.NodeTypeAIRespond: {
		Type: models.NodeTypeAIRespond, Name: "AI Respond", Description: "Generate a reply with AI",
		Category: "ai", Icon: "message-circle", Executable: true,
		Inputs:  []PortSpec{inPort},
		Outputs: []PortSpec{outPort, errorPort},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"use_knowledge_base": map[string]any{"type": "boolean", "default": true},
				"system_prompt":      map[string]any{"type": "string"},
				"auto_send":          map[string]any{"type": "boolean", "default": false},
			},
		},
	},
	models.NodeTypeAISummarize: {
		Type: models.NodeTypeAISummarize, Name: "AI Summarize", Description: "Summarize the conversation (not yet executable)",
		Category: "ai", Icon: "file-text", Executable: false,
		Inputs:       []PortSpec{inPort},
		Outputs:      []PortSpec{outPort},
		ConfigSchema: map[string]any{},
	},
	models.NodeTypeAISentiment: {
		Type: models.NodeTypeAISentiment, Name: "AI Sentiment", Description: "Detect message sentiment (not yet executable)",
		Category: "ai", Icon: "smile", Executable: false,
		Inputs:       []PortSpec{inPort},
		Outputs:      []PortSpec{outPort},
		ConfigSchema: map[string]any{},
	},
	models.NodeTypeHTTPRequest: {
		Type: models.NodeTypeHTTPRequest, Name: "HTTP Request", Description: "Call an external HTTP endpoint",
		Category: "integrations", Icon: "globe", Executable: true,
		Inputs:  []PortSpec{inPort},
		Outputs: []PortSpec{outPort, errorPort},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"method": map[string]any{
					"type":    "string",
					"enum":    []any{"GET", "POST", "PUT", "PATCH", "DELETE"},
					"default": "POST",
				},
				"url":             map[string]any{"type": "string"},
				"headers":         map[string]any{"type": "object"},
				"body":            map[string]any{"type": "string"},
				"output_variable": map[string]any{"type": "string"},
			},
			"required": []any{"url"},
		},
	},
	models.NodeTypeWebhook: {
		Type: models.NodeTypeWebhook, Name: "Webhook", Description: "Inbound webhook step (not yet executable)",
		Category: "integrations", Icon: "webhook", Executable: false,
		Inputs:       []PortSpec{inPort},
		Outputs:      []PortSpec{outPort},
		ConfigSchema: map[string]any{},
	},
	models.NodeTypeUpdateCustomer: {
		Type: models.NodeTypeUpdateCustomer, Name: "Update Customer", Description: "Update customer record fields",
		Category: "actions", Icon: "user-edit", Executable: true,
		Inputs:  []PortSpec{inPort},
		Outputs: []PortSpec{outPort, errorPort},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"fields": map[string]any{
					"type":                 "object",
					"additionalProperties": map[string]any{"type": "string"},
				},
			},
			"required": []any{"fields"},
		},
	},
	models.NodeTypeCreateNote: {
		Type: models.NodeTypeCreateNote, Name: "Create Note", Description: "Append a note to the customer",
		Category: "actions", Icon: "file-text", Executable: true,
		Inputs:  []PortSpec{inPort},
		Outputs: []PortSpec{outPort, errorPort},
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"content": map[string]any{"type": "string"},
			},
			"required": []any{"content"},
		},
	},
}

// Catalog returns every node definition, ordered by category then type so
// the builder-facing catalog endpoint is stable across calls.
func Catalog() []Definition {
	defs := make([]Definition, 0, len(catalog))
	for _, d := range catalog {
		defs = append(defs, d)
	}

	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Category != defs[j].Category {
			return defs[i].Category < defs[j].Category
		}

		return defs[i].Type < defs[j].Type
	})

	return defs
}

// DefinitionFor returns the catalog entry for a node type.
func DefinitionFor(nodeType models.NodeType) (Definition, bool) {
	d, ok := catalog[nodeType]

	return d, ok
}

// OutputPorts lists the declared output port ids of a node type. Graph
// validation only allows edges on declared ports.
func OutputPorts(nodeType models.NodeType) []string {
	d, ok := catalog[nodeType]
	if !ok {
		return nil
	}

	ports := make([]string, 0, len(d.Outputs))
	for _, p := range d.Outputs {
		ports = append(ports, p.ID)
	}

	return ports
}

// ValidateConfig checks a node config against the type's JSON schema.
func ValidateConfig(nodeType models.NodeType, config map[string]any) error {
	def, ok := catalog[nodeType]
	if !ok {
		return fmt.Errorf("unknown node type: %s", nodeType)
	}

	if len(def.ConfigSchema) == 0 {
		return nil
	}

	if config == nil {
		config = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(def.ConfigSchema),
		gojsonschema.NewGoLoader(config),
	)
	if err != nil {
		return fmt.Errorf("failed to validate node config: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}

		return fmt.Errorf("invalid %s config: %s", nodeType, strings.Join(details, "; "))
	}

	return nil
}
