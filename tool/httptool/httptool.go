// Package httptool provides a tool that performs a template-parameterized
// HTTP request. Placeholders of the form ${a.b} in the URL, header names,
// header values and body are filled from the tool-call arguments.
package httptool

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/internal/util"
	"github.com/hupe1980/agentloop/tool"
	"github.com/hupe1980/agentloop/transport"
)

// Config describes one HTTP tool. It is usually decoded from the free-form
// options of a config.ToolConfig with Decode.
type Config struct {
	Name        string            `mapstructure:"name"`
	Description string            `mapstructure:"description"`
	Method      string            `mapstructure:"method"`
	URL         string            `mapstructure:"url"`
	Headers     map[string]string `mapstructure:"headers"`
	Body        string            `mapstructure:"body"`
	Parameters  map[string]any    `mapstructure:"parameters"`
	Timeout     time.Duration     `mapstructure:"timeout"`
}

// Decode builds a Config from a loosely typed options map. A non-string body
// is serialized to JSON text so it can still carry placeholders.
func Decode(options map[string]any) (Config, error) {
	var cfg Config

	opts := make(map[string]any, len(options))
	for k, v := range options {
		opts[k] = v
	}

	if body, ok := opts["body"]; ok && body != nil {
		if _, isString := body.(string); !isString {
			opts["body"] = util.ToText(body)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}

	if err := decoder.Decode(opts); err != nil {
		return Config{}, core.NewConfigurationError(fmt.Sprintf("invalid http tool options: %v", err))
	}

	return cfg, nil
}

// Options configures the tool runtime.
type Options struct {
	// Transport performs the request. Defaults to transport.NewHTTP().
	Transport transport.Transport
}

// Tool performs the configured request when called.
type Tool struct {
	cfg       Config
	transport transport.Transport
}

var _ tool.Tool = (*Tool)(nil)

// New creates an HTTP tool. Name and URL are required; the method defaults
// to GET.
func New(cfg Config, optFns ...func(o *Options)) (*Tool, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Transport == nil {
		opts.Transport = transport.NewHTTP()
	}

	if cfg.Name == "" {
		return nil, core.NewConfigurationError("http tool name is required")
	}

	if cfg.URL == "" {
		return nil, core.NewConfigurationError(fmt.Sprintf("http tool %q: url is required", cfg.Name))
	}

	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	if cfg.Method == "" {
		cfg.Method = http.MethodGet
	}

	return &Tool{cfg: cfg, transport: opts.Transport}, nil
}

// Name returns the tool name.
func (t *Tool) Name() string { return t.cfg.Name }

// Description returns the tool description.
func (t *Tool) Description() string {
	if t.cfg.Description != "" {
		return t.cfg.Description
	}
	return fmt.Sprintf("HTTP %s %s", t.cfg.Method, t.cfg.URL)
}

// Parameters returns the declared argument schema or an empty object schema.
func (t *Tool) Parameters() map[string]any {
	if t.cfg.Parameters == nil {
		return util.EmptyObjectSchema()
	}
	return t.cfg.Parameters
}

// Call renders the request from args and performs it. Any HTTP status is a
// result; only transport failures are errors.
func (t *Tool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	logger := toolCtx.Logger()

	req := &transport.Request{
		Method:  t.cfg.Method,
		URL:     util.Substitute(t.cfg.URL, args),
		Header:  make(http.Header, len(t.cfg.Headers)+1),
		Timeout: t.cfg.Timeout,
	}

	for k, v := range t.cfg.Headers {
		req.Header.Set(util.Substitute(k, args), util.Substitute(v, args))
	}

	if t.cfg.Body != "" && t.cfg.Method != http.MethodGet && t.cfg.Method != http.MethodHead {
		body := util.Substitute(t.cfg.Body, args)
		req.Body = []byte(body)

		if req.Header.Get("Content-Type") == "" {
			if json.Valid(req.Body) {
				req.Header.Set("Content-Type", "application/json")
			} else {
				req.Header.Set("Content-Type", "text/plain; charset=utf-8")
			}
		}
	}

	logger.Debug("tool.http.request", "tool", t.cfg.Name, "method", req.Method, "url", req.URL)

	resp, err := t.transport.Do(toolCtx.Context(), req)
	if err != nil {
		return nil, &tool.ToolError{
			Tool:    t.cfg.Name,
			Message: err.Error(),
			Code:    tool.CodeExecution,
		}
	}

	logger.Debug("tool.http.response", "tool", t.cfg.Name, "status", resp.StatusCode)

	return map[string]any{
		"status":  resp.StatusCode,
		"headers": flattenHeaders(resp.Header),
		"data":    decodeData(resp.Body),
	}, nil
}

// flattenHeaders lowercases names and joins repeated values.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	return out
}

func decodeData(body []byte) any {
	if len(body) == 0 {
		return ""
	}

	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		return v
	}

	return string(body)
}
