package openai

import (
	"encoding/json"

	sdkopenai "github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/flemzord/sloop/internal/provider"
	"github.com/flemzord/sloop/pkg/message"
)

// buildParams builds Chat Completions parameters. Request-level model and
// max tokens take precedence over the adapter's configuration.
func buildParams(req provider.Request, cfg *Config) sdkopenai.ChatCompletionNewParams {
	model := cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	maxTokens := cfg.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	params := sdkopenai.ChatCompletionNewParams{
		Model:               shared.ChatModel(model),
		MaxCompletionTokens: sdkopenai.Int(int64(maxTokens)),
		Messages:            convertMessages(req.System, req.Messages),
	}
	if req.Temperature != nil {
		params.Temperature = sdkopenai.Float(*req.Temperature)
	}
	if len(req.Stop) > 0 {
		params.Stop = sdkopenai.ChatCompletionNewParamsStopUnion{OfStringArray: req.Stop}
	}
	if len(req.Tools) > 0 {
		params.Tools = convertTools(req.Tools)
	}
	return params
}

// convertMessages flattens block messages into Chat Completions messages.
// Tool results become one tool message each, placed before any user text
// of the same turn so they directly follow the assistant's tool calls.
func convertMessages(system string, msgs []message.Message) []sdkopenai.ChatCompletionMessageParamUnion {
	var result []sdkopenai.ChatCompletionMessageParamUnion
	if system != "" {
		result = append(result, sdkopenai.SystemMessage(system))
	}

	for _, msg := range msgs {
		if msg.Role == message.RoleAssistant {
			if m, ok := assistantMessage(msg); ok {
				result = append(result, m)
			}
			continue
		}

		for _, b := range msg.Content {
			if b.Type == message.BlockToolResult {
				result = append(result, sdkopenai.ToolMessage(b.Content, b.ToolUseID))
			}
		}
		if text := msg.Text(); text != "" {
			result = append(result, sdkopenai.UserMessage(text))
		}
	}
	return result
}

func assistantMessage(msg message.Message) (sdkopenai.ChatCompletionMessageParamUnion, bool) {
	param := sdkopenai.ChatCompletionAssistantMessageParam{}
	if text := msg.Text(); text != "" {
		param.Content = sdkopenai.ChatCompletionAssistantMessageParamContentUnion{
			OfString: sdkopenai.String(text),
		}
	}
	for _, use := range message.ToolUses(msg.Content) {
		param.ToolCalls = append(param.ToolCalls, sdkopenai.ChatCompletionMessageToolCallParam{
			ID: use.ID,
			Function: sdkopenai.ChatCompletionMessageToolCallFunctionParam{
				Name:      use.Name,
				Arguments: string(message.NormalizeInput(use.Input)),
			},
		})
	}
	if !param.Content.OfString.Valid() && len(param.ToolCalls) == 0 {
		return sdkopenai.ChatCompletionMessageParamUnion{}, false
	}
	return sdkopenai.ChatCompletionMessageParamUnion{OfAssistant: &param}, true
}

// convertTools maps tool definitions to function tools.
func convertTools(tools []provider.ToolDefinition) []sdkopenai.ChatCompletionToolParam {
	result := make([]sdkopenai.ChatCompletionToolParam, 0, len(tools))
	for _, def := range tools {
		tool := sdkopenai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:       def.Name,
				Parameters: functionParameters(def.Parameters),
			},
		}
		if def.Description != "" {
			tool.Function.Description = sdkopenai.String(def.Description)
		}
		result = append(result, tool)
	}
	return result
}

func functionParameters(raw json.RawMessage) shared.FunctionParameters {
	params := shared.FunctionParameters{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &params)
	}
	if _, ok := params["type"]; !ok {
		params["type"] = "object"
	}
	return params
}

// convertResponse maps the first choice to a provider response.
func convertResponse(completion *sdkopenai.ChatCompletion) provider.Response {
	resp := provider.Response{
		Usage: provider.TokenUsage{
			InputTokens:  int(completion.Usage.PromptTokens),
			OutputTokens: int(completion.Usage.CompletionTokens),
		},
		Model: completion.Model,
	}
	if len(completion.Choices) == 0 {
		resp.StopReason = provider.StopReasonEndTurn
		return resp
	}

	choice := completion.Choices[0]
	var blocks []message.ContentBlock
	if choice.Message.Content != "" {
		blocks = append(blocks, message.NewTextBlock(choice.Message.Content))
	}
	for _, tc := range choice.Message.ToolCalls {
		blocks = append(blocks, message.NewToolUseBlock(tc.ID, tc.Function.Name, toolArguments(tc.Function.Arguments)))
	}
	resp.Content = message.Normalize(blocks)
	resp.StopReason = convertFinishReason(choice.FinishReason)
	return resp
}

// toolArguments returns the arguments as JSON. Malformed arguments are
// wrapped as {"raw": "..."} so the tool sees them and can report the error.
func toolArguments(raw string) json.RawMessage {
	if raw == "" || json.Valid([]byte(raw)) {
		return json.RawMessage(raw)
	}
	wrapped, _ := json.Marshal(map[string]string{"raw": raw})
	return wrapped
}

// convertFinishReason maps OpenAI finish reasons onto stop reasons.
func convertFinishReason(reason string) provider.StopReason {
	switch reason {
	case "stop":
		return provider.StopReasonEndTurn
	case "length":
		return provider.StopReasonMaxTokens
	case "tool_calls", "function_call":
		return provider.StopReasonToolUse
	case "content_filter":
		return provider.StopReasonRefusal
	default:
		return provider.StopReason(reason)
	}
}
