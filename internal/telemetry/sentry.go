// Package telemetry wires Sentry error reporting into the process.
//
// Usage in main.go:
//
//	telemetry.Init(cfg.SentryDSN, version)
//	defer telemetry.Flush()
//	mux := telemetry.PanicRecoveryMiddleware()(router)
package telemetry

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
)

// Init initializes the Sentry SDK. dsn may be empty, in which case
// reporting is disabled without error — callers do not need to branch on
// whether telemetry is configured.
func Init(dsn, release string) error {
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "telemetry: SENTRY_DSN not set, error reporting disabled")
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          release,
		TracesSampleRate: 0.1,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			return scrubPII(event)
		},
	})
}

// CaptureError reports err to Sentry with optional context tags. Safe to
// call when Sentry is disabled.
func CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// Flush blocks until buffered events are sent or the timeout elapses.
// Call with defer in main().
func Flush() {
	sentry.Flush(2 * time.Second)
}

// PanicRecoveryMiddleware catches panics in HTTP handlers, reports them
// to Sentry with request context, and responds 500 instead of crashing
// the process.
func PanicRecoveryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					hub := sentry.CurrentHub().Clone()
					hub.Scope().SetRequest(r)

					var err error
					switch v := rec.(type) {
					case error:
						err = v
					default:
						err = fmt.Errorf("panic: %v", v)
					}
					hub.CaptureException(err)
					hub.Flush(2 * time.Second)

					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// scrubPII removes credentials and PII from an event before transmission.
func scrubPII(event *sentry.Event) *sentry.Event {
	if event == nil {
		return nil
	}
	if event.Request != nil {
		for k := range event.Request.Headers {
			switch k {
			case "Authorization", "Cookie", "X-Admin-Key":
				event.Request.Headers[k] = "[redacted]"
			}
		}
		// Xtream and session URLs carry credentials in the query string.
		event.Request.QueryString = ""
	}
	return event
}
