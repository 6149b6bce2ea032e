package agent

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/agentloop/core"
)

// NormalizeInput turns a caller payload into message text. Strings pass
// through unchanged, nil becomes "{}" and every other value is encoded as
// JSON (maps with sorted keys).
func NormalizeInput(input any) (string, error) {
	switch v := input.(type) {
	case nil:
		return "{}", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case json.RawMessage:
		return string(v), nil
	}

	data, err := json.Marshal(input)
	if err != nil {
		return "", &core.Error{
			Kind:    core.ErrConfiguration,
			Message: fmt.Sprintf("input of type %T cannot be encoded as JSON", input),
			Cause:   err,
		}
	}

	return string(data), nil
}

// BuildPrompt assembles [system] + history + [user]. The history slice is
// not modified. The last element of the result is always the new user
// message.
func BuildPrompt(systemPrompt string, history []core.Message, userText string) []core.Message {
	prompt := make([]core.Message, 0, len(history)+2)
	prompt = append(prompt, core.NewSystemMessage(systemPrompt))
	prompt = append(prompt, history...)
	prompt = append(prompt, core.NewUserMessage(userText))

	return prompt
}
