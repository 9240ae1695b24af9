package core

// ToolEnvelope is the HTTP response wrapper for tool calls.
type ToolEnvelope struct {
	OK     bool       `json:"ok"`
	Meta   ToolMeta   `json:"meta"`
	Result any        `json:"result"`
	Error  *ToolError `json:"error,omitempty"`
}

// ToolMeta contains audit metadata for a tool call. EvidenceHash matches
// the journal entry for the same call.
type ToolMeta struct {
	ToolCallID   string `json:"tool_call_id"`
	TraceID      string `json:"trace_id"`
	EvidenceHash string `json:"evidence_hash,omitempty"`
}

// ToolError represents a call rejected before it reached a tool.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
