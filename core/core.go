package core

import "github.com/hupe1980/agentloop/logging"

// scopedLogger prefixes every event with fixed key/value pairs, so tool logs
// carry the thread and call they belong to without each tool repeating them.
type scopedLogger struct {
	base  logging.Logger
	attrs []any
}

func newScopedLogger(l logging.Logger, attrs ...any) logging.Logger {
	if l == nil {
		return logging.NoOpLogger{}
	}
	if _, noop := l.(logging.NoOpLogger); noop {
		return l
	}
	return &scopedLogger{base: l, attrs: attrs}
}

func (s *scopedLogger) with(args []any) []any {
	out := make([]any, 0, len(s.attrs)+len(args))
	out = append(out, s.attrs...)
	return append(out, args...)
}

func (s *scopedLogger) Debug(msg string, args ...any) { s.base.Debug(msg, s.with(args)...) }
func (s *scopedLogger) Info(msg string, args ...any)  { s.base.Info(msg, s.with(args)...) }
func (s *scopedLogger) Warn(msg string, args ...any)  { s.base.Warn(msg, s.with(args)...) }
func (s *scopedLogger) Error(msg string, args ...any) { s.base.Error(msg, s.with(args)...) }
