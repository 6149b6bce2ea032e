package agent

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentloop/config"
	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/logging"
)

// ObjectPayload is the envelope produced by the "object" response type.
type ObjectPayload struct {
	Agent     string        `json:"agent"`
	Type      string        `json:"type"`
	Input     any           `json:"input"`
	Response  string        `json:"response"`
	Timestamp string        `json:"timestamp"`
	Context   ObjectContext `json:"context"`
}

// ObjectContext summarizes the conversation in an ObjectPayload.
type ObjectContext struct {
	ConversationLength int    `json:"conversationLength"`
	LastInteraction    string `json:"lastInteraction"`
}

// FormatterOptions configures a Formatter.
type FormatterOptions struct {
	Logger logging.Logger
	// Now supplies timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Formatter shapes the final text of a turn into the caller payload.
type Formatter struct {
	responseType string
	agentName    string
	logger       logging.Logger
	now          func() time.Time
}

// NewFormatter creates a formatter for responseType ("text", "object" or
// "json"; empty means "text").
func NewFormatter(responseType, agentName string, optFns ...func(o *FormatterOptions)) (*Formatter, error) {
	opts := FormatterOptions{
		Logger: logging.NoOpLogger{},
		Now:    time.Now,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	switch responseType {
	case "":
		responseType = config.ResponseText
	case config.ResponseText, config.ResponseObject, config.ResponseJSON:
	default:
		return nil, core.NewConfigurationError(fmt.Sprintf("unknown response type %q", responseType))
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Formatter{
		responseType: responseType,
		agentName:    agentName,
		logger:       opts.Logger,
		now:          opts.Now,
	}, nil
}

// ResponseType returns the configured response type.
func (f *Formatter) ResponseType() string { return f.responseType }

// Format builds the payload for one completed turn. input is the original
// caller payload and historyLen the conversation length after the turn.
func (f *Formatter) Format(input any, text string, historyLen int) any {
	switch f.responseType {
	case config.ResponseObject:
		ts := f.now().UTC().Format(time.RFC3339Nano)
		return ObjectPayload{
			Agent:     f.agentName,
			Type:      "ai",
			Input:     input,
			Response:  text,
			Timestamp: ts,
			Context: ObjectContext{
				ConversationLength: historyLen,
				LastInteraction:    ts,
			},
		}
	case config.ResponseJSON:
		v, err := ParseJSON(text)
		if err != nil {
			f.logger.Warn("format.json.fallback", "agent", f.agentName, "error", err.Error())
			return text
		}
		return v
	default:
		return text
	}
}

// ParseJSON decodes model text as JSON. A surrounding markdown code fence is
// ignored. Failure is a format error.
func ParseJSON(text string) (any, error) {
	body := strings.TrimSpace(text)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}

	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return nil, core.NewFormatError(err)
	}

	return v, nil
}
