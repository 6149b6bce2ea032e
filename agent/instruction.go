package agent

import (
	"context"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/internal/util"
)

// InstructionContext is what an instruction provider sees when the system
// prompt of a turn is resolved.
type InstructionContext struct {
	Context   context.Context
	AgentName string
	ThreadID  string
	Input     string
	History   []core.Message
}

// templateData is the data ${...} placeholders in instructions resolve
// against: ${agent}, ${thread} and ${input}.
func (ic *InstructionContext) templateData() map[string]any {
	return map[string]any{
		"agent":  ic.AgentName,
		"thread": ic.ThreadID,
		"input":  ic.Input,
	}
}

// Provider supplies dynamic instruction text at runtime.
type Provider interface {
	Instruction(*InstructionContext) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(*InstructionContext) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(ic *InstructionContext) (string, error) { return f(ic) }

// Instruction represents either a static instruction string or a dynamic provider.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(*InstructionContext) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// IsZero reports whether neither text nor provider is set.
func (i Instruction) IsZero() bool { return i.provider == nil && i.text == "" }

// Resolve returns the instruction text, invoking the provider if needed, and
// fills ${agent}, ${thread} and ${input} placeholders.
func (i Instruction) Resolve(ic *InstructionContext) (string, error) {
	text := i.text
	if i.provider != nil {
		var err error
		if text, err = i.provider.Instruction(ic); err != nil {
			return "", err
		}
	}
	return util.Substitute(text, ic.templateData()), nil
}
