package tool

import (
	"fmt"
	"sync"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/internal/util"
	"github.com/hupe1980/agentloop/model"
)

// DefaultDescription is sent when a tool declares no description.
const DefaultDescription = "function"

// Registry holds the tools offered in a turn, in registration order. Names
// are unique. A Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools []Tool
	index map[string]Tool
}

// NewRegistry creates a registry from tools. Empty or duplicate names are
// configuration errors.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{index: make(map[string]Tool, len(tools))}

	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register adds a tool.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return core.NewConfigurationError("tool must not be nil")
	}

	name := t.Name()
	if name == "" {
		return core.NewConfigurationError("tool name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[name]; exists {
		return core.NewConfigurationError(fmt.Sprintf("duplicate tool name %q", name))
	}

	r.tools = append(r.tools, t)
	r.index[name] = t

	return nil
}

// Lookup finds a tool by exact name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	if r == nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.index[name]

	return t, ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tools)
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.tools))
	for i, t := range r.tools {
		names[i] = t.Name()
	}

	return names
}

// Specs formats the tools for transmission. A missing description becomes
// DefaultDescription and missing parameters an empty object schema, so a
// sparse tool definition never breaks request serialization.
func (r *Registry) Specs() []model.ToolSpec {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]model.ToolSpec, 0, len(r.tools))
	for _, t := range r.tools {
		desc := t.Description()
		if desc == "" {
			desc = DefaultDescription
		}

		params := t.Parameters()
		if params == nil {
			params = util.EmptyObjectSchema()
		}

		specs = append(specs, model.ToolSpec{
			Type: "function",
			Function: model.FunctionSpec{
				Name:        t.Name(),
				Description: desc,
				Parameters:  params,
			},
		})
	}

	return specs
}

// ToolChoice is auto when tools are registered and none otherwise.
func (r *Registry) ToolChoice() model.ToolChoice {
	if r.Len() > 0 {
		return model.ToolChoiceAuto
	}
	return model.ToolChoiceNone
}
