// Package message defines the provider-agnostic conversation model shared by
// the interaction loops, the model adapters and the run log: role-tagged
// messages made of typed content blocks.
package message

// Role identifies the author of a message.
type Role string

// Role constants for conversation messages.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// BlockType discriminates the variant stored in a ContentBlock.
type BlockType string

// Supported block types.
const (
	BlockText       BlockType = "text"
	BlockToolUse    BlockType = "tool_use"
	BlockToolResult BlockType = "tool_result"
)

// Message is one turn in a conversation.
type Message struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// NewUserText creates a user message holding a single text block.
func NewUserText(text string) Message {
	return Message{Role: RoleUser, Content: []ContentBlock{NewTextBlock(text)}}
}

// NewAssistant creates an assistant message from the given blocks.
func NewAssistant(blocks ...ContentBlock) Message {
	return Message{Role: RoleAssistant, Content: blocks}
}

// NewToolResults creates the user message that answers a turn's tool calls.
func NewToolResults(results ...ContentBlock) Message {
	return Message{Role: RoleUser, Content: results}
}

// Text returns the newline-joined text of the message's text blocks.
func (m Message) Text() string {
	return TextContent(m.Content)
}
