// Package server exposes agent turns over HTTP with gin.
//
// Turns are executed through a TurnRunner (usually a *runner.Runner) so that
// concurrent requests on the same thread are serialized. Errors are mapped by
// kind: configuration errors answer 422, transport and tool resolution
// errors 502, everything else 500.
//
// Routes:
//
//	POST /v1/threads                 create a thread id
//	POST /v1/threads/:id/turns       run one turn: {"input": <any>}
//	GET  /v1/threads/:id/history     stored history as message envelopes
//	GET  /healthz                    liveness
package server
