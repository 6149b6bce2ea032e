// Package model defines the provider-agnostic contract for one remote
// completion call and helpers for mocking it.
//
// A Request carries the prompt (core.Message values), optional tool specs
// with a tool-choice signal and the per-call settings; a Response carries the
// assistant content and any tool calls. Provider packages (openrouter,
// openai, anthropic, gemini) implement Model so the orchestration loop stays
// decoupled from vendor SDKs and wire formats.
package model
