// Package logger wraps slog with the request and job attributes the rest
// of the codebase logs on.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

// Context keys the HTTP middleware stores identifiers under. WithContext
// reads them back so handlers and services never thread IDs by hand.
const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	TraceIDKey   contextKey = "trace_id"
)

// Logger embeds slog.Logger, so callers keep the full slog API.
type Logger struct {
	*slog.Logger
}

// New builds the process logger. Development gets readable text at debug
// level; everything else logs JSON at info.
func New(env string) *Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// WithContext returns a logger carrying whichever of request_id, user_id
// and trace_id the context holds.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	out := l
	for _, key := range []struct {
		ctxKey contextKey
		attr   string
	}{
		{RequestIDKey, "request_id"},
		{UserIDKey, "user_id"},
		{TraceIDKey, "trace_id"},
	} {
		if v, ok := ctx.Value(key.ctxKey).(string); ok && v != "" {
			out = &Logger{Logger: out.With(slog.String(key.attr, v))}
		}
	}
	return out
}

func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.With(slog.String("request_id", requestID))}
}

func (l *Logger) WithUserID(userID string) *Logger {
	return &Logger{Logger: l.With(slog.String("user_id", userID))}
}

func (l *Logger) WithOrgID(orgID string) *Logger {
	return &Logger{Logger: l.With(slog.String("org_id", orgID))}
}

// JobEvent records a background job lifecycle transition (started,
// succeeded, failed) under a single message so job logs stay greppable.
func (l *Logger) JobEvent(task, event string, attrs ...any) {
	args := append([]any{slog.String("task", task), slog.String("event", event)}, attrs...)
	l.Info("job_event", args...)
}

// HTTPRequest is the access-log line emitted once per request.
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// RateLimitExceeded is logged when a client is throttled.
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
