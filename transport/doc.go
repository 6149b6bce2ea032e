// Package transport performs single HTTP exchanges for model adapters and
// HTTP tools. A Transport sends one request with headers, body and timeout
// and returns the status, headers and body; it never retries. Non-2xx
// responses are returned as responses, only network failures are errors.
package transport
