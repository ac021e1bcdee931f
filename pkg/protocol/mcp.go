package protocol

import (
	"encoding/json"
)

// DefaultProtocolVersion is answered when the client does not ask for one
const DefaultProtocolVersion = "2024-11-05"

// InitializeParams is the part of the initialize request the server reads
type InitializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities,omitempty"`
	ClientInfo      *ServerInfo    `json:"clientInfo,omitempty"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      ServerInfo     `json:"serverInfo"`
}

// ToolCallParams are the params of tools/call
type ToolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolContent is one block of a tool result
type ToolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is what tools/call returns.
// IsError marks a failure the model should read and correct, such as an unknown team.
type ToolResult struct {
	Content           []ToolContent `json:"content"`
	StructuredContent any           `json:"structuredContent,omitempty"`
	IsError           bool          `json:"isError,omitempty"`
}

// NewTextResult wraps text, and optionally the data it describes, as a successful tool result
func NewTextResult(text string, data any) *ToolResult {
	return &ToolResult{
		Content:           []ToolContent{{Type: "text", Text: text}},
		StructuredContent: data,
	}
}

// NewToolErrorResult reports a recoverable tool failure inside a normal response
func NewToolErrorResult(message string) *ToolResult {
	return &ToolResult{
		Content: []ToolContent{{Type: "text", Text: message}},
		IsError: true,
	}
}

// ParseToolCallParams decodes tools/call params
func ParseToolCallParams(raw json.RawMessage) (*ToolCallParams, error) {
	var p ToolCallParams
	if len(raw) == 0 {
		return &p, nil
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
