package anthropic

import (
	"encoding/json"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/flemzord/sloop/internal/provider"
	"github.com/flemzord/sloop/pkg/message"
)

// convertRequest builds Messages API parameters. Request-level model and
// max tokens take precedence over the adapter's configuration.
func convertRequest(req provider.Request, cfg *Config) sdkanthropic.MessageNewParams {
	params := sdkanthropic.MessageNewParams{
		Model:     sdkanthropic.Model(cfg.Model),
		MaxTokens: int64(cfg.MaxTokens),
		Messages:  convertMessages(req.Messages),
	}
	if req.Model != "" {
		params.Model = sdkanthropic.Model(req.Model)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = int64(req.MaxTokens)
	}
	if req.System != "" {
		params.System = []sdkanthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature != nil {
		params.Temperature = sdkanthropic.Float(*req.Temperature)
	}
	if len(req.Stop) > 0 {
		params.StopSequences = req.Stop
	}
	if len(req.Tools) > 0 {
		params.Tools = convertTools(req.Tools)
	}
	return params
}

// convertMessages maps each message block by block. Tool results already
// travel grouped in one user message, which is what the API requires.
func convertMessages(msgs []message.Message) []sdkanthropic.MessageParam {
	result := make([]sdkanthropic.MessageParam, 0, len(msgs))
	for _, msg := range msgs {
		role := sdkanthropic.MessageParamRoleUser
		if msg.Role == message.RoleAssistant {
			role = sdkanthropic.MessageParamRoleAssistant
		}

		blocks := make([]sdkanthropic.ContentBlockParamUnion, 0, len(msg.Content))
		for _, b := range msg.Content {
			switch b.Type {
			case message.BlockText:
				if b.Text == "" {
					continue // the API rejects empty text blocks
				}
				blocks = append(blocks, sdkanthropic.NewTextBlock(b.Text))
			case message.BlockToolUse:
				// json.RawMessage marshals as-is, no double encoding.
				blocks = append(blocks, sdkanthropic.NewToolUseBlock(b.ID, message.NormalizeInput(b.Input), b.Name))
			case message.BlockToolResult:
				blocks = append(blocks, sdkanthropic.NewToolResultBlock(b.ToolUseID, b.Content, b.IsError))
			}
		}
		if len(blocks) == 0 {
			continue
		}
		result = append(result, sdkanthropic.MessageParam{Role: role, Content: blocks})
	}
	return result
}

// convertTools transforms tool definitions into SDK tool params.
func convertTools(tools []provider.ToolDefinition) []sdkanthropic.ToolUnionParam {
	result := make([]sdkanthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		tool := &sdkanthropic.ToolParam{Name: t.Name}
		if t.Description != "" {
			tool.Description = sdkanthropic.String(t.Description)
		}
		if len(t.Parameters) > 0 {
			tool.InputSchema = convertInputSchema(t.Parameters)
		}
		result[i] = sdkanthropic.ToolUnionParam{OfTool: tool}
	}
	return result
}

// convertInputSchema converts a raw JSON Schema into the SDK's
// ToolInputSchemaParam. Fields beyond properties and required are kept in
// ExtraFields.
func convertInputSchema(raw json.RawMessage) sdkanthropic.ToolInputSchemaParam {
	var full map[string]any
	if err := json.Unmarshal(raw, &full); err != nil {
		return sdkanthropic.ToolInputSchemaParam{}
	}

	param := sdkanthropic.ToolInputSchemaParam{}
	if props, ok := full["properties"]; ok {
		param.Properties = props
		delete(full, "properties")
	}
	if req, ok := full["required"].([]any); ok {
		strs := make([]string, 0, len(req))
		for _, v := range req {
			if s, ok := v.(string); ok {
				strs = append(strs, s)
			}
		}
		param.Required = strs
	}
	delete(full, "required")
	// "type" is always "object" and set by the SDK.
	delete(full, "type")

	if len(full) > 0 {
		param.ExtraFields = full
	}
	return param
}

// convertResponse maps an SDK message to a provider response. Unknown block
// types (thinking, server tools) are skipped.
func convertResponse(msg *sdkanthropic.Message) provider.Response {
	var blocks []message.ContentBlock
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case sdkanthropic.TextBlock:
			blocks = append(blocks, message.NewTextBlock(v.Text))
		case sdkanthropic.ToolUseBlock:
			blocks = append(blocks, message.NewToolUseBlock(v.ID, v.Name, v.Input))
		}
	}

	return provider.Response{
		Content:    message.Normalize(blocks),
		StopReason: convertStopReason(msg.StopReason),
		Usage: provider.TokenUsage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
		Model: string(msg.Model),
	}
}

// convertStopReason maps the SDK stop reason. Unlisted values pass through.
func convertStopReason(reason sdkanthropic.StopReason) provider.StopReason {
	switch reason {
	case sdkanthropic.StopReasonEndTurn:
		return provider.StopReasonEndTurn
	case sdkanthropic.StopReasonStopSequence:
		return provider.StopReasonStopSequence
	case sdkanthropic.StopReasonMaxTokens:
		return provider.StopReasonMaxTokens
	case sdkanthropic.StopReasonToolUse:
		return provider.StopReasonToolUse
	case sdkanthropic.StopReasonRefusal:
		return provider.StopReasonRefusal
	default:
		return provider.StopReason(reason)
	}
}
