// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API with function/tool calling. It adapts agentloop's
// normalized Request/Response structures into the SDK's message format and
// back.
package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/model"
)

// Options configure the OpenAI model adapter.
type Options struct {
	// BaseURL overrides the API base URL (e.g. an OpenAI-compatible gateway).
	BaseURL string
	// ClientOptions are passed to the SDK client as-is.
	ClientOptions []option.RequestOption
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
}

// NewModel creates a new OpenAI model using the official client. The API key
// is taken from each request.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	clientOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	clientOpts = append(clientOpts, opts.ClientOptions...)

	client := openai.NewClient(clientOpts...)

	return NewModelFromClient(&client)
}

// NewModelFromClient creates a new OpenAI model from an existing client.
func NewModelFromClient(client *openai.Client) *Model {
	return &Model{client: client}
}

// Generate performs one non-streaming chat completion.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	params := buildParams(req)

	reqOpts := []option.RequestOption{}
	if req.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(req.APIKey))
	}
	if req.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(req.Timeout))
	}

	resp, err := m.client.Chat.Completions.New(ctx, params, reqOpts...)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return nil, core.NewTransportError(apiErr.Message, err)
		}
		return nil, core.NewTransportError("request failed", err)
	}

	if len(resp.Choices) == 0 {
		return nil, core.NewTransportError("response contains no choices", nil)
	}

	ch0 := resp.Choices[0]
	out := &model.Response{
		ID:           resp.ID,
		FinishReason: ch0.FinishReason,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}

	if ch0.Message.Content != "" {
		content := ch0.Message.Content
		out.Content = &content
	}

	for _, tc := range ch0.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, core.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return out, nil
}

// buildParams assembles the OpenAI request parameters including tool definitions.
func buildParams(req model.Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:    buildMessages(req.Messages),
		Model:       req.Model,
		Temperature: openai.Float(req.Temperature),
	}

	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	if !req.HasTools() {
		return params
	}

	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, spec := range req.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        spec.Function.Name,
				Description: openai.String(spec.Function.Description),
				Parameters:  spec.Function.Parameters,
			},
		}
	}
	params.Tools = tools

	choice := string(req.ToolChoice)
	if choice == "" {
		choice = string(model.ToolChoiceAuto)
	}
	params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String(choice)}

	return params
}

// buildMessages converts typed messages into OpenAI chat messages.
func buildMessages(msgs []core.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))

	for _, msg := range msgs {
		switch v := msg.(type) {
		case core.SystemMessage:
			out = append(out, openai.SystemMessage(v.Content))
		case core.UserMessage:
			out = append(out, openai.UserMessage(v.Content))
		case core.ToolMessage:
			out = append(out, openai.ToolMessage(v.Content, v.ToolCallID))
		case core.AssistantMessage:
			if !v.HasToolCalls() {
				out = append(out, openai.AssistantMessage(v.Text()))
				continue
			}

			toolCalls := make([]openai.ChatCompletionMessageToolCallParam, len(v.ToolCalls))
			for i, tc := range v.ToolCalls {
				toolCalls[i] = openai.ChatCompletionMessageToolCallParam{
					ID:   tc.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				}
			}

			assistant := &openai.ChatCompletionAssistantMessageParam{
				Role:      "assistant",
				ToolCalls: toolCalls,
			}
			if v.Content != nil {
				assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{OfString: openai.String(*v.Content)}
			}

			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: assistant})
		}
	}

	return out
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          "chat-completions",
		Provider:      "openai",
		SupportsTools: true,
	}
}
