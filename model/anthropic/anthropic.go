// Package anthropic provides a model wrapper for the Anthropic Claude API.
package anthropic

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/internal/util"
	"github.com/hupe1980/agentloop/model"
)

// Options configures the Anthropic model adapter.
type Options struct {
	// BaseURL overrides the API base URL.
	BaseURL string
	// ClientOptions are passed to the SDK client as-is.
	ClientOptions []option.RequestOption
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
}

// NewModel creates a new Anthropic model using the official client. The API
// key is taken from each request.
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

	client := anthropic.NewClient(clientOpts...)

	return NewModelFromClient(&client)
}

// NewModelFromClient creates a new Anthropic model from an existing client.
func NewModelFromClient(client *anthropic.Client) *Model {
	return &Model{client: client}
}

// Generate performs one non-streaming Messages API call.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		Messages:    buildMessages(req.Messages),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
	}
	if params.MaxTokens <= 0 {
		params.MaxTokens = 1000
	}

	if system := extractSystem(req.Messages); len(system) > 0 {
		params.System = system
	}

	if req.HasTools() {
		params.Tools = buildTools(req.Tools)
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}

	reqOpts := []option.RequestOption{}
	if req.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(req.APIKey))
	}
	if req.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(req.Timeout))
	}

	resp, err := m.client.Messages.New(ctx, params, reqOpts...)
	if err != nil {
		return nil, core.NewTransportError("request failed", err)
	}

	out := &model.Response{
		ID:           resp.ID,
		FinishReason: "stop",
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}
	if resp.StopReason != "" {
		out.FinishReason = string(resp.StopReason)
	}

	var text string
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text += block.AsText().Text
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := "{}"
			if toolBlock.Input != nil {
				if b, err := json.Marshal(toolBlock.Input); err == nil {
					args = string(b)
				}
			}
			out.ToolCalls = append(out.ToolCalls, core.ToolCall{
				ID:        toolBlock.ID,
				Name:      toolBlock.Name,
				Arguments: args,
			})
		}
	}
	if text != "" {
		out.Content = &text
	}

	return out, nil
}

// buildMessages converts typed messages to Anthropic message params. System
// messages travel separately; tool results are sent as tool_result blocks
// inside user messages, consecutive results sharing one message.
func buildMessages(msgs []core.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	var pendingResults []anthropic.ContentBlockParamUnion

	flush := func() {
		if len(pendingResults) > 0 {
			out = append(out, anthropic.NewUserMessage(pendingResults...))
			pendingResults = nil
		}
	}

	for _, msg := range msgs {
		switch v := msg.(type) {
		case core.SystemMessage:
			continue
		case core.ToolMessage:
			pendingResults = append(pendingResults, anthropic.NewToolResultBlock(v.ToolCallID, v.Content, false))
		case core.UserMessage:
			flush()
			if v.Content != "" {
				out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(v.Content)))
			}
		case core.AssistantMessage:
			flush()
			var blocks []anthropic.ContentBlockParamUnion
			if v.Text() != "" {
				blocks = append(blocks, anthropic.NewTextBlock(v.Text()))
			}
			for _, tc := range v.ToolCalls {
				var input any = map[string]any{}
				if tc.Arguments != "" {
					if err := json.Unmarshal([]byte(tc.Arguments), &input); err != nil {
						input = map[string]any{}
					}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		}
	}
	flush()

	return out
}

func extractSystem(msgs []core.Message) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, msg := range msgs {
		if sm, ok := msg.(core.SystemMessage); ok && sm.Content != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: sm.Content})
		}
	}
	return blocks
}

// buildTools converts tool specs to Anthropic tool params.
func buildTools(specs []model.ToolSpec) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, len(specs))

	for i, spec := range specs {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if params := spec.Function.Parameters; params != nil {
			if properties, ok := params["properties"]; ok {
				inputSchema.Properties = properties
			}
			inputSchema.Required = util.RequiredFields(params)
		}

		tools[i] = anthropic.ToolUnionParamOfTool(inputSchema, spec.Function.Name)
		if spec.Function.Description != "" && tools[i].OfTool != nil {
			tools[i].OfTool.Description = anthropic.String(spec.Function.Description)
		}
	}

	return tools
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          "messages",
		Provider:      "anthropic",
		SupportsTools: true,
	}
}
