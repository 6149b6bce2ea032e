package gemini

import (
	"encoding/json"

	"google.golang.org/genai"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/internal/util"
	"github.com/hupe1980/agentloop/logging"
	"github.com/hupe1980/agentloop/model"
)

// toContents converts typed messages to Gemini contents. System messages are
// returned separately as the system instruction; consecutive tool results
// share one user content. Malformed tool-call arguments in history are sent
// as an empty object.
func toContents(msgs []core.Message, logger logging.Logger) ([]*genai.Content, *genai.Content) {
	var contents []*genai.Content
	var system *genai.Content
	var results []*genai.Part

	flush := func() {
		if len(results) > 0 {
			contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: results})
			results = nil
		}
	}

	for _, msg := range msgs {
		switch v := msg.(type) {
		case core.SystemMessage:
			if v.Content == "" {
				continue
			}
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, genai.NewPartFromText(v.Content))
		case core.ToolMessage:
			results = append(results, &genai.Part{FunctionResponse: &genai.FunctionResponse{
				ID:       v.ToolCallID,
				Name:     v.Name,
				Response: toolResponse(v.Content),
			}})
		case core.UserMessage:
			flush()
			if v.Content != "" {
				contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{genai.NewPartFromText(v.Content)}})
			}
		case core.AssistantMessage:
			flush()
			var parts []*genai.Part
			if v.Text() != "" {
				parts = append(parts, genai.NewPartFromText(v.Text()))
			}
			for _, tc := range v.ToolCalls {
				args := map[string]any{}
				if tc.Arguments != "" {
					if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil || args == nil {
						if err != nil {
							logger.Warn("model.gemini.bad_arguments", "tool", tc.Name, "fc_id", tc.ID, "error", err.Error())
						}
						args = map[string]any{}
					}
				}
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{ID: tc.ID, Name: tc.Name, Args: args}})
			}
			if len(parts) > 0 {
				contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})
			}
		}
	}
	flush()

	return contents, system
}

// toolResponse wraps tool output for a FunctionResponse. JSON objects are
// passed through, everything else is placed under "output".
func toolResponse(content string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(content), &obj); err == nil && obj != nil {
		return obj
	}
	return map[string]any{"output": content}
}

// toTools converts tool specs into Gemini function declarations.
func toTools(specs []model.ToolSpec) []*genai.Tool {
	if len(specs) == 0 {
		return nil
	}

	decls := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, spec := range specs {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        spec.Function.Name,
			Description: spec.Function.Description,
			Parameters:  toSchema(spec.Function.Parameters),
		})
	}

	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// toSchema converts a JSON schema map into a Gemini schema, recursing into
// properties and array items.
func toSchema(schema map[string]any) *genai.Schema {
	if schema == nil {
		return &genai.Schema{Type: genai.TypeObject}
	}

	typ, _ := schema["type"].(string)
	out := &genai.Schema{Type: toType(typ)}

	if desc, ok := schema["description"].(string); ok {
		out.Description = desc
	}

	if props, ok := schema["properties"].(map[string]any); ok && len(props) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if pm, ok := p.(map[string]any); ok {
				out.Properties[name] = toSchema(pm)
			}
		}
	}

	if items, ok := schema["items"].(map[string]any); ok {
		out.Items = toSchema(items)
	}

	if required := util.RequiredFields(schema); len(required) > 0 {
		out.Required = required
	}

	return out
}

func toType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeObject
	}
}

// fromResponse converts a Gemini response. Gemini may omit call ids, in which
// case one is generated so tool results can be correlated.
func fromResponse(resp *genai.GenerateContentResponse) (*model.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, core.NewTransportError("no candidates in response", nil)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, core.NewTransportError("content blocked by safety filters", nil)
	}

	out := &model.Response{
		ID:           resp.ResponseID,
		FinishReason: string(candidate.FinishReason),
	}

	var text string
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.FunctionCall != nil {
				args, err := json.Marshal(part.FunctionCall.Args)
				if err != nil || part.FunctionCall.Args == nil {
					args = []byte("{}")
				}
				id := part.FunctionCall.ID
				if id == "" {
					id = core.NewID()
				}
				out.ToolCalls = append(out.ToolCalls, core.ToolCall{ID: id, Name: part.FunctionCall.Name, Arguments: string(args)})
				continue
			}
			text += part.Text
		}
	}
	if text != "" {
		out.Content = &text
	}

	if u := resp.UsageMetadata; u != nil {
		out.Usage = &model.TokenUsage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}

	return out, nil
}
