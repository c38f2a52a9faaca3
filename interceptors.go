package portalclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Headers set by the default request interceptors.
const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
	HeaderTimestamp     = "X-Timestamp"
)

type requestIDKey struct{}

// RequestIDFromContext returns the request id the trace interceptor assigned
// to a request's context.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// DefaultRequestID returns an id of the form req_<unix millis>_<random>.
func DefaultRequestID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("req_%d_%s", now.UnixMilli(), random[:9])
}

// AuthInterceptor injects the bearer token from store when one is available.
// A store error is logged and the request proceeds without a token.
func AuthInterceptor(store CredentialStore, logger Logger) RequestInterceptor {
	return func(req *http.Request) (*http.Request, error) {
		if store == nil {
			return req, nil
		}
		token, err := store.AccessToken()
		if err != nil {
			if logger != nil {
				logger.Warn("failed to read access token", "error", err)
			}
			return req, nil
		}
		if token != "" {
			req.Header.Set(HeaderAuthorization, "Bearer "+token)
		}
		return req, nil
	}
}

// TraceInterceptor stamps every request with a fresh X-Request-ID and the
// issue time in X-Timestamp.
func TraceInterceptor(idgen func(time.Time) string, now Clock) RequestInterceptor {
	if idgen == nil {
		idgen = DefaultRequestID
	}
	if now == nil {
		now = time.Now
	}
	return func(req *http.Request) (*http.Request, error) {
		issued := now()
		id := idgen(issued)
		req.Header.Set(HeaderRequestID, id)
		req.Header.Set(HeaderTimestamp, formatTimestamp(issued))
		return req.WithContext(context.WithValue(req.Context(), requestIDKey{}, id)), nil
	}
}

// HeaderInterceptor sets a fixed header on every request.
func HeaderInterceptor(key, value string) RequestInterceptor {
	return func(req *http.Request) (*http.Request, error) {
		req.Header.Set(key, value)
		return req, nil
	}
}

// successLogger passes successful outcomes through unchanged, logging them at
// debug level when enabled.
func successLogger(logger Logger, enabled func() bool) ResponseInterceptor {
	return ResponseInterceptor{
		OnSuccess: func(out *Outcome) (*Outcome, error) {
			if enabled() && logger != nil {
				logger.Debug("request completed",
					"service", out.Service,
					"request_id", out.RequestID,
					"method", out.Request.Method,
					"url", out.Request.URL.String(),
					"status", out.StatusCode(),
					"duration", out.Duration,
				)
			}
			return out, nil
		},
	}
}
