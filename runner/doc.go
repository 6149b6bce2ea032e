// Package runner is the host-side scheduler for agent turns.
//
// An Agent assumes that two turns never run concurrently on the same thread.
// The Runner enforces that rule for hosts that receive requests concurrently
// (the HTTP server, chat bots): turns on one thread are serialized with a
// per-thread lock while turns on different threads run in parallel, bounded
// by MaxConcurrentTurns.
//
// # Responsibilities
//   - Per-thread single-writer serialization
//   - Global concurrency bound with context-aware waiting
//   - Asynchronous submission with cancellation by run id
package runner
