package message

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewTextBlock(t *testing.T) {
	b := NewTextBlock("hello")
	if b.Type != BlockText {
		t.Errorf("Type = %q, want %q", b.Type, BlockText)
	}
	if b.Text != "hello" {
		t.Errorf("Text = %q, want %q", b.Text, "hello")
	}
}

func TestNewToolUseBlock_CopiesInput(t *testing.T) {
	input := json.RawMessage(`{"a":1}`)
	b := NewToolUseBlock("tu_1", "calculator", input)
	input[2] = 'b'

	if string(b.Input) != `{"a":1}` {
		t.Errorf("Input = %s, want {\"a\":1}", b.Input)
	}
	if b.ID != "tu_1" || b.Name != "calculator" {
		t.Errorf("ID/Name = %q/%q", b.ID, b.Name)
	}
}

func TestNewToolResultBlock(t *testing.T) {
	b := NewToolResultBlock("tu_1", "boom", true)
	if b.Type != BlockToolResult {
		t.Errorf("Type = %q, want %q", b.Type, BlockToolResult)
	}
	if b.ToolUseID != "tu_1" || b.Content != "boom" || !b.IsError {
		t.Errorf("unexpected block: %+v", b)
	}
}

func TestNormalizeInput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"nil", "", "{}"},
		{"whitespace", "  ", "{}"},
		{"null", "null", "{}"},
		{"empty array", "[]", "{}"},
		{"empty array with spaces", "[ ]", "{}"},
		{"empty object", "{}", "{}"},
		{"object", `{"x":1}`, `{"x":1}`},
		{"non-empty array", `[1]`, `[1]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw json.RawMessage
			if tt.in != "" {
				raw = json.RawMessage(tt.in)
			}
			got := NormalizeInput(raw)
			if string(got) != tt.want {
				t.Errorf("NormalizeInput(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestMarshalJSON_EmptyToolInputIsObject(t *testing.T) {
	for _, in := range []json.RawMessage{nil, json.RawMessage("[]"), json.RawMessage("null")} {
		blocks := Normalize([]ContentBlock{{Type: BlockToolUse, ID: "1", Name: "clock", Input: in}})

		data, err := json.Marshal(blocks[0])
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !strings.Contains(string(data), `"input":{}`) {
			t.Errorf("marshal of input %q = %s, want input {}", in, data)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if _, ok := decoded["input"].(map[string]any); !ok {
			t.Errorf("round-tripped input is %T, want map[string]any", decoded["input"])
		}
	}
}

func TestMarshalJSON_UnnormalizedToolUseStillObject(t *testing.T) {
	data, err := json.Marshal(ContentBlock{Type: BlockToolUse, ID: "1", Name: "clock", Input: json.RawMessage("[]")})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), `"input":[]`) {
		t.Errorf("tool_use input serialized as list: %s", data)
	}
}

func TestMarshalJSON_TextOmitsInput(t *testing.T) {
	b := ContentBlock{Type: BlockText, Text: "hi", Input: json.RawMessage(`{"x":1}`)}
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), "input") {
		t.Errorf("text block should not carry input: %s", data)
	}
}

func TestNormalize_DoesNotMutateSource(t *testing.T) {
	src := []ContentBlock{
		NewTextBlock("thinking"),
		{Type: BlockToolUse, ID: "1", Name: "clock", Input: json.RawMessage("[]")},
	}
	out := Normalize(src)

	if string(src[1].Input) != "[]" {
		t.Errorf("source mutated: %s", src[1].Input)
	}
	if string(out[1].Input) != "{}" {
		t.Errorf("normalized input = %s, want {}", out[1].Input)
	}
	if out[0].Text != "thinking" {
		t.Errorf("text block changed: %+v", out[0])
	}
	if Normalize(nil) != nil {
		t.Error("Normalize(nil) should be nil")
	}
}

func TestHasToolUse(t *testing.T) {
	tests := []struct {
		name   string
		blocks []ContentBlock
		want   bool
	}{
		{"empty", nil, false},
		{"text only", []ContentBlock{NewTextBlock("a")}, false},
		{"tool only", []ContentBlock{NewToolUseBlock("1", "x", nil)}, true},
		{"mixed", []ContentBlock{NewTextBlock("a"), NewToolUseBlock("1", "x", nil)}, true},
		{"tool result is not tool use", []ContentBlock{NewToolResultBlock("1", "ok", false)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := HasToolUse(tt.blocks)
			second := HasToolUse(tt.blocks)
			if first != tt.want || second != tt.want {
				t.Errorf("HasToolUse = %v, %v; want %v", first, second, tt.want)
			}
		})
	}
}

func TestToolUses_PreservesOrder(t *testing.T) {
	blocks := []ContentBlock{
		NewToolUseBlock("1", "a", nil),
		NewTextBlock("between"),
		NewToolUseBlock("2", "b", nil),
	}
	uses := ToolUses(blocks)
	if len(uses) != 2 || uses[0].ID != "1" || uses[1].ID != "2" {
		t.Errorf("ToolUses = %+v", uses)
	}
}

func TestTextContent(t *testing.T) {
	blocks := []ContentBlock{
		NewTextBlock("first"),
		NewToolUseBlock("1", "x", nil),
		NewTextBlock("second"),
	}
	if got := TextContent(blocks); got != "first\nsecond" {
		t.Errorf("TextContent = %q, want %q", got, "first\nsecond")
	}
	if got := TextContent(nil); got != "" {
		t.Errorf("TextContent(nil) = %q, want empty", got)
	}
}
