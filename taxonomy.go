package portalclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Taxonomy classifies failed calls into NormalizedErrors and runs the
// classification-specific side effects.
type Taxonomy struct {
	guard   *SessionGuard
	logger  Logger
	metrics *MetricsCollector
	now     Clock
}

// NewTaxonomy creates a taxonomy. guard may be nil, which disables the 401
// side effect.
func NewTaxonomy(guard *SessionGuard, logger Logger, metrics *MetricsCollector, now Clock) *Taxonomy {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if now == nil {
		now = time.Now
	}
	return &Taxonomy{
		guard:   guard,
		logger:  logger,
		metrics: metrics,
		now:     now,
	}
}

// Classify maps err to exactly one taxonomy class. It has no side effects and
// never panics. out may be nil.
func (t *Taxonomy) Classify(out *Outcome, err error) *NormalizedError {
	var ne *NormalizedError
	if errors.As(err, &ne) {
		return ne
	}

	ne = &NormalizedError{
		Timestamp: formatTimestamp(t.now()),
		cause:     err,
	}

	var statusErr *StatusError
	var transportErr *TransportError
	switch {
	case errors.As(err, &statusErr):
		message, code, details := parseErrorBody(statusErr.Body)
		if message == "" {
			message = statusErr.Error()
		}
		ne.Kind = KindProtocol
		ne.Message = message
		ne.Status = statusErr.StatusCode
		ne.Code = code
		ne.Details = details
	case errors.As(err, &transportErr):
		ne.Kind = KindNetwork
		ne.Message = "network error"
		ne.Code = CodeNetworkError
	default:
		ne.Kind = KindUnknown
		ne.Code = CodeUnknownError
		ne.Message = "unknown error"
		if err != nil && err.Error() != "" {
			ne.Message = err.Error()
		}
	}

	if out != nil {
		ne.Service = out.Service
		ne.RequestID = out.RequestID
		if out.Request != nil {
			ne.Method = out.Request.Method
			if out.Request.URL != nil {
				ne.URL = out.Request.URL.String()
			}
		}
	}
	return ne
}

// Handle is the default failure interceptor: it classifies the failure and,
// for protocol errors, runs the status-specific side effects. It always
// returns a *NormalizedError.
func (t *Taxonomy) Handle(out *Outcome, err error) (*Outcome, error) {
	ne := t.Classify(out, err)
	t.metrics.RecordError(string(ne.Service), ne.codeLabel())

	if ne.Kind != KindProtocol {
		if ne.Kind == KindNetwork {
			t.logger.Warn("network error", "service", ne.Service, "request_id", ne.RequestID, "url", ne.URL)
		}
		return out, ne
	}

	switch {
	case ne.Status == http.StatusUnauthorized:
		if t.guard != nil {
			var req *http.Request
			if out != nil {
				req = out.Request
			}
			if _, gerr := t.guard.Expire(bearerToken(req)); gerr != nil {
				t.logger.Error("session expiry side effect failed", "error", gerr)
			}
		}
	case ne.Status == http.StatusForbidden:
		t.logger.Warn("permission denied", "service", ne.Service, "request_id", ne.RequestID, "url", ne.URL)
	case ne.Status >= http.StatusInternalServerError:
		t.logger.Error("server error", "service", ne.Service, "status", ne.Status, "request_id", ne.RequestID, "message", ne.Message)
	}
	return out, ne
}

// FailureInterceptor wraps Handle as a ResponseInterceptor.
func (t *Taxonomy) FailureInterceptor() ResponseInterceptor {
	return ResponseInterceptor{OnFailure: t.Handle}
}

func (e *NormalizedError) codeLabel() string {
	if e.Code != "" {
		return e.Code
	}
	if e.Status > 0 {
		return fmt.Sprintf("HTTP_%d", e.Status)
	}
	return CodeUnknownError
}

// parseErrorBody reads the optional message, code and details of an error
// body. Any field that is absent or of an unexpected type is left empty. A
// body that is not a JSON object is returned as text in details.
func parseErrorBody(body []byte) (message, code string, details interface{}) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", "", nil
	}

	var obj map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return "", "", string(trimmed)
	}
	if obj == nil {
		return "", "", nil
	}

	if m, ok := obj["message"].(string); ok {
		message = m
	} else if m, ok := obj["error"].(string); ok {
		message = m
	}

	switch c := obj["code"].(type) {
	case string:
		code = c
	case json.Number:
		code = c.String()
	}

	details = obj["details"]
	return message, code, details
}
