// Package agent contains the turn pipeline of agentloop:
//
//  1. Prompt assembly (BuildPrompt, NormalizeInput)
//  2. The orchestration loop that calls the model and resolves tool calls (Loop)
//  3. Response formatting into text, object or JSON payloads (Formatter)
//  4. The Agent that ties them to conversation memory
//
// Execution model:
//   - One turn is sequential: model call, then tool calls in response order,
//     then the continuation call
//   - Tool failures and unknown tools are reported back to the model as
//     {"error": ...} tool messages; only transport, configuration and budget
//     errors end a turn
//   - Memory is appended once per completed turn (user input and final
//     answer); tool traffic is never persisted
//
// Model specifics, tools and stores live in their own packages; the agent
// depends on the model.Model, tool.Tool and core.MemoryStore interfaces only.
package agent
