package core

import (
	"errors"
	"fmt"
)

// Sentinel kinds of the error taxonomy. Match with errors.Is.
var (
	// ErrConfiguration marks missing or invalid configuration (model, key,
	// duplicate tools, malformed memory). Fatal to the turn; no remote call.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransport marks network failures and unusable model responses.
	ErrTransport = errors.New("transport error")
	// ErrToolResolution marks unknown tools, bad arguments and an exhausted
	// tool-call budget.
	ErrToolResolution = errors.New("tool resolution error")
	// ErrToolExecution marks a failing tool implementation.
	ErrToolExecution = errors.New("tool execution error")
	// ErrFormat marks model text that is not valid structured data.
	ErrFormat = errors.New("format error")
)

// Error is the typed error surfaced by agentloop components. Kind is one of
// the sentinels above; Cause, when set, is the underlying failure.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// NewConfigurationError creates a configuration error.
func NewConfigurationError(msg string) *Error {
	return &Error{Kind: ErrConfiguration, Message: msg}
}

// NewTransportError creates the composite error reported when the remote
// model cannot be reached or answered unusably.
func NewTransportError(msg string, cause error) *Error {
	return &Error{Kind: ErrTransport, Message: "AI API Error: " + msg, Cause: cause}
}

// NewToolResolutionError creates a tool resolution error.
func NewToolResolutionError(msg string) *Error {
	return &Error{Kind: ErrToolResolution, Message: msg}
}

// NewToolExecutionError creates a tool execution error wrapping cause.
func NewToolExecutionError(tool string, cause error) *Error {
	return &Error{Kind: ErrToolExecution, Message: fmt.Sprintf("tool %q failed", tool), Cause: cause}
}

// NewFormatError creates a format error wrapping cause.
func NewFormatError(cause error) *Error {
	return &Error{Kind: ErrFormat, Message: "response is not valid structured data", Cause: cause}
}

// IsFatal reports whether err ends a turn. Tool execution errors are fed back
// to the model and format errors are recovered locally.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrToolExecution) && !errors.Is(err, ErrFormat)
}
