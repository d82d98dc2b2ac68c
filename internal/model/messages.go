package model

// ToolResult is one observed tool invocation result from the trajectory,
// already normalized by the conversation adapter: result text is always a
// plain string by the time it reaches the knowledge builder.
type ToolResult struct {
	ToolName   string         `json:"tool_name"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Arguments  map[string]any `json:"arguments,omitempty"`
	ResultText string         `json:"result_text"`
}

// ToolCallRef maps a tool call to the knowledge-node ids it produced.
// Refs keep trajectory order.
type ToolCallRef struct {
	ToolCallID string   `json:"tool_call_id"`
	GroundIDs  []string `json:"ground_ids"`
}
