// Package core provides the foundational domain types and interfaces used by
// agentloop. It defines:
//
//   - Message, a closed set of role-tagged conversation entries
//     (SystemMessage, UserMessage, AssistantMessage, ToolMessage)
//   - ToolCall and ToolInvocation records exchanged with the model
//   - Result, the outcome of one orchestrated turn
//   - Error, the typed error taxonomy (configuration, transport, tool, format)
//   - ToolContext, the scoped surface handed to tool implementations
//   - MemoryStore, the pluggable backing store for conversation history
//
// Implementation concerns (transport, providers, persistence, the loop
// itself) live in other packages and depend on these small abstractions.
package core
