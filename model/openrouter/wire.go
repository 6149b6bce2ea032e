package openrouter

import (
	"encoding/json"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/model"
)

// chatRequest is the OpenAI-compatible chat completions request body.
type chatRequest struct {
	Model       string           `json:"model"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Messages    []chatMessage    `json:"messages"`
	Tools       []model.ToolSpec `json:"tools,omitempty"`
	ToolChoice  model.ToolChoice `json:"tool_choice,omitempty"`
}

type chatMessage struct {
	Role       string         `json:"role"`
	Content    *string        `json:"content"`
	Name       string         `json:"name,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
}

type wireToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function wireFunctionCall `json:"function"`
}

type wireFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content   *string        `json:"content"`
			ToolCalls []wireToolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *model.TokenUsage `json:"usage"`
}

type errorBody struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// encodeRequest serializes req into the wire body. Tools and tool_choice are
// only emitted when tools are offered.
func encodeRequest(req model.Request) ([]byte, error) {
	body := chatRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages:    make([]chatMessage, 0, len(req.Messages)),
	}

	for _, m := range req.Messages {
		body.Messages = append(body.Messages, toChatMessage(m))
	}

	if req.HasTools() {
		body.Tools = req.Tools
		body.ToolChoice = req.ToolChoice
		if body.ToolChoice == "" {
			body.ToolChoice = model.ToolChoiceAuto
		}
	}

	return json.Marshal(body)
}

func toChatMessage(m core.Message) chatMessage {
	switch v := m.(type) {
	case core.AssistantMessage:
		msg := chatMessage{Role: string(core.RoleAssistant), Content: v.Content}
		for _, tc := range v.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, wireToolCall{
				ID:       tc.ID,
				Type:     "function",
				Function: wireFunctionCall{Name: tc.Name, Arguments: tc.Arguments},
			})
		}
		return msg
	case core.ToolMessage:
		content := v.Content
		return chatMessage{Role: string(core.RoleTool), Content: &content, Name: v.Name, ToolCallID: v.ToolCallID}
	default:
		text := m.Text()
		return chatMessage{Role: string(m.Role()), Content: &text}
	}
}

// decodeResponse parses a 2xx body into a model response.
func decodeResponse(data []byte) (*model.Response, error) {
	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, core.NewTransportError("malformed response body", err)
	}

	if len(resp.Choices) == 0 {
		if msg := errorMessage(data); msg != "" {
			return nil, core.NewTransportError(msg, nil)
		}
		return nil, core.NewTransportError("response contains no choices", nil)
	}

	choice := resp.Choices[0]
	out := &model.Response{
		ID:           resp.ID,
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Usage:        resp.Usage,
	}

	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, core.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return out, nil
}

// errorMessage extracts error.message from an API error body, or "".
func errorMessage(data []byte) string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Error == nil {
		return ""
	}
	return body.Error.Message
}
