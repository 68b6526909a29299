package logger

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// NewContext returns a context carrying the request ID
func NewContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext reads the request ID from a context. It returns
// the empty string for work that did not originate from a request,
// such as scheduled sweeps.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequest builds a log entry tagged with the context's request ID
func WithRequest(ctx context.Context, log *logrus.Logger) *logrus.Entry {
	if id := RequestIDFromContext(ctx); id != "" {
		return log.WithField("request_id", id)
	}
	return logrus.NewEntry(log)
}

// New creates a configured logrus logger. Format is "json" or "text";
// an unknown level falls back to info.
func New(level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return log
}
