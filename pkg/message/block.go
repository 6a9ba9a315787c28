package message

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ContentBlock is a flat union representing one piece of content inside a message.
// The Type field discriminates which fields are meaningful:
//   - text: Text
//   - tool_use: ID, Name, Input
//   - tool_result: ToolUseID, Content, IsError
type ContentBlock struct {
	Type      BlockType       `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

// MarshalJSON implements json.Marshaler.
// It enforces union semantics:
// - tool_use blocks always carry an input object, "{}" when empty
// - other blocks omit input
func (b ContentBlock) MarshalJSON() ([]byte, error) {
	type alias ContentBlock
	normalized := b

	if normalized.Type == BlockToolUse {
		normalized.Input = NormalizeInput(normalized.Input)
	} else {
		normalized.Input = nil
	}

	return json.Marshal(alias(normalized))
}

// NewTextBlock creates a text content block.
func NewTextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// NewToolUseBlock creates a tool_use block. The input is copied.
func NewToolUseBlock(id, name string, input json.RawMessage) ContentBlock {
	cp := make(json.RawMessage, len(input))
	copy(cp, input)
	return ContentBlock{Type: BlockToolUse, ID: id, Name: name, Input: cp}
}

// NewToolResultBlock creates a tool_result block answering the tool_use with toolUseID.
func NewToolResultBlock(toolUseID, content string, isError bool) ContentBlock {
	return ContentBlock{Type: BlockToolResult, ToolUseID: toolUseID, Content: content, IsError: isError}
}

// NormalizeInput coerces an empty tool input into an empty JSON object.
// Empty bytes, null and an empty array all become "{}": decoders that do not
// distinguish maps from lists turn an empty object into "[]", which the model
// APIs reject as a tool input. Any other value is returned unchanged.
func NormalizeInput(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return emptyObject()
	}

	switch trimmed[0] {
	case 'n':
		if string(trimmed) == "null" {
			return emptyObject()
		}
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err == nil && len(list) == 0 {
			return emptyObject()
		}
	}
	return raw
}

func emptyObject() json.RawMessage {
	return json.RawMessage("{}")
}

// Normalize returns a copy of blocks where every tool_use input has been
// passed through NormalizeInput. Other blocks are copied as-is.
func Normalize(blocks []ContentBlock) []ContentBlock {
	if blocks == nil {
		return nil
	}
	out := make([]ContentBlock, len(blocks))
	for i, b := range blocks {
		if b.Type == BlockToolUse {
			b.Input = NormalizeInput(b.Input)
		}
		out[i] = b
	}
	return out
}

// HasToolUse reports whether any block is a tool_use block.
// Content is authoritative: a response may request tools under any stop reason.
func HasToolUse(blocks []ContentBlock) bool {
	for _, b := range blocks {
		if b.Type == BlockToolUse {
			return true
		}
	}
	return false
}

// ToolUses returns the tool_use blocks in their original order.
func ToolUses(blocks []ContentBlock) []ContentBlock {
	var uses []ContentBlock
	for _, b := range blocks {
		if b.Type == BlockToolUse {
			uses = append(uses, b)
		}
	}
	return uses
}

// TextContent concatenates the text of all text blocks, separated by newlines.
// Blocks of any other type are ignored.
func TextContent(blocks []ContentBlock) string {
	var parts []string
	for _, b := range blocks {
		if b.Type == BlockText {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}
