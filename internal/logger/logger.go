// Package logger configures logrus and carries a per-request logger with a
// request ID through the context.
package logger

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKeyRequestLoggerType struct{}

var contextKeyRequestLogger = &contextKeyRequestLoggerType{}

// Init sets up the custom time formatter for all log statements.
func Init(level logrus.Level) {
	formatter := new(logrus.TextFormatter)
	formatter.TimestampFormat = "2006-01-02 15:04:05"
	formatter.FullTimestamp = true
	logrus.SetFormatter(formatter)
	logrus.SetLevel(level)
}

// Default returns a logger without a request ID.
func Default() *logrus.Entry {
	return logrus.NewEntry(logrus.StandardLogger())
}

// FromContext returns the request logger, or the default logger if the
// context carries none.
func FromContext(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if rlog, ok := ctx.Value(contextKeyRequestLogger).(*logrus.Entry); ok {
			return rlog
		}
	}
	return Default()
}

// Middleware attaches a logger with a fresh request ID to each request's
// context and logs method, path, and duration on completion.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rlog := logrus.WithField("requestID", uuid.NewString())
		ctx := context.WithValue(r.Context(), contextKeyRequestLogger, rlog)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		rlog.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("request handled")
	})
}
