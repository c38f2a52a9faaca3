package portalclient

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Sentinel errors naming the taxonomy class of a NormalizedError. A
// NormalizedError unwraps to one of ErrProtocol, ErrNetwork or ErrUnknown,
// and also to ErrUnknownService when that was the cause.
var (
	// ErrProtocol marks a call that received a non-2xx response.
	ErrProtocol = errors.New("portalclient: protocol error")

	// ErrNetwork marks a call that never received a response.
	ErrNetwork = errors.New("portalclient: network error")

	// ErrUnknown marks any other failure, such as a local error before dispatch.
	ErrUnknown = errors.New("portalclient: unknown error")

	// ErrUnknownService is returned when a service name is not registered.
	ErrUnknownService = errors.New("portalclient: unknown service")
)

// Error codes set on NormalizedError.Code for the non-protocol classes.
const (
	CodeNetworkError = "NETWORK_ERROR"
	CodeUnknownError = "UNKNOWN_ERROR"
)

// ErrorKind is the taxonomy class of a failure.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindProtocol
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindProtocol:
		return "protocol"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// NormalizedError is the only error shape returned to callers of the facade.
type NormalizedError struct {
	Message   string      `json:"message"`
	Status    int         `json:"status"`
	Code      string      `json:"code,omitempty"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp string      `json:"timestamp"`

	Kind      ErrorKind   `json:"-"`
	Service   ServiceName `json:"-"`
	RequestID string      `json:"-"`
	Method    string      `json:"-"`
	URL       string      `json:"-"`

	// cause is kept for diagnostics only and is never unwrapped.
	cause error
}

// StatusError is the raw failure for a call that received a non-2xx response.
// The taxonomy turns it into a protocol NormalizedError.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

// TransportError is the raw failure for a call that never received a response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Error implements error interface.
func (e *NormalizedError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	return msg
}

// Unwrap returns the sentinel for the error's taxonomy class, plus
// ErrUnknownService when the call named an unregistered service.
func (e *NormalizedError) Unwrap() []error {
	if e == nil {
		return nil
	}
	var kind error
	switch e.Kind {
	case KindProtocol:
		kind = ErrProtocol
	case KindNetwork:
		kind = ErrNetwork
	default:
		kind = ErrUnknown
	}
	if errors.Is(e.cause, ErrUnknownService) {
		return []error{kind, ErrUnknownService}
	}
	return []error{kind}
}

// Is compares kind and code for errors.Is. An empty code on the target
// matches any code of the same kind.
func (e *NormalizedError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*NormalizedError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *NormalizedError) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Error Kind: %s\n", e.Kind)
	info += fmt.Sprintf("Message: %s\n", e.Message)
	if e.Code != "" {
		info += fmt.Sprintf("Code: %s\n", e.Code)
	}
	if e.Status > 0 {
		info += fmt.Sprintf("Status: %d\n", e.Status)
	}
	if e.Service != "" {
		info += fmt.Sprintf("Service: %s\n", e.Service)
	}
	if e.RequestID != "" {
		info += fmt.Sprintf("Request ID: %s\n", e.RequestID)
	}
	if e.Method != "" {
		info += fmt.Sprintf("Method: %s\n", e.Method)
	}
	if e.URL != "" {
		info += fmt.Sprintf("URL: %s\n", e.URL)
	}
	if e.Timestamp != "" {
		info += fmt.Sprintf("Timestamp: %s\n", e.Timestamp)
	}
	if e.Details != nil {
		info += fmt.Sprintf("Details: %v\n", e.Details)
	}
	if e.cause != nil {
		info += fmt.Sprintf("Cause: %v\n", e.cause)
	}
	return info
}

// AsNormalized extracts a *NormalizedError from err.
func AsNormalized(err error) (*NormalizedError, bool) {
	var ne *NormalizedError
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// IsUnauthorized reports whether err is a protocol error with status 401.
func IsUnauthorized(err error) bool {
	return hasStatus(err, func(s int) bool { return s == http.StatusUnauthorized })
}

// IsForbidden reports whether err is a protocol error with status 403.
func IsForbidden(err error) bool {
	return hasStatus(err, func(s int) bool { return s == http.StatusForbidden })
}

// IsServerError reports whether err is a protocol error with a 5xx status.
func IsServerError(err error) bool {
	return hasStatus(err, func(s int) bool { return s >= http.StatusInternalServerError })
}

func hasStatus(err error, match func(int) bool) bool {
	ne, ok := AsNormalized(err)
	if !ok || ne.Kind != KindProtocol {
		return false
	}
	return match(ne.Status)
}

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(isoMillis)
}
