package portalclient

import (
	"net/http"
	"time"
)

// ServiceName identifies a backend service in the Registry.
type ServiceName string

// Well-known services of the admin portal.
const (
	ServiceAuth          ServiceName = "auth"
	ServiceUsers         ServiceName = "users"
	ServiceModules       ServiceName = "modules"
	ServiceNotifications ServiceName = "notifications"
)

// ResponseType selects how a response body is handed back to the caller.
type ResponseType int

const (
	// ResponseJSON decodes the body into an Envelope.
	ResponseJSON ResponseType = iota
	// ResponseBinary returns the raw body bytes.
	ResponseBinary
)

// RequestInterceptor mutates an outgoing request before dispatch. Returning
// an error fails the call before it reaches the network.
type RequestInterceptor func(req *http.Request) (*http.Request, error)

// ResponseInterceptor observes a settled call. OnSuccess runs while the call
// is successful, OnFailure while it is failed; an OnFailure that returns a nil
// error recovers the call. Either handler may be nil.
type ResponseInterceptor struct {
	OnSuccess func(out *Outcome) (*Outcome, error)
	OnFailure func(out *Outcome, err error) (*Outcome, error)
}

// RequestConfig describes a single call issued through Client.Do.
type RequestConfig struct {
	Method string
	// URL is a path relative to the service base URL.
	URL string
	// Data is JSON encoded unless it is a []byte, an io.Reader or *FormData.
	Data         interface{}
	Params       map[string]string
	Headers      map[string]string
	ResponseType ResponseType
}

// Outcome is a settled call as seen by response interceptors.
type Outcome struct {
	Service   ServiceName
	RequestID string
	Request   *http.Request
	// Response is nil when nothing was received from the remote service.
	Response *http.Response
	Body     []byte
	Duration time.Duration
}

// StatusCode of the response, or 0 when there is none.
func (o *Outcome) StatusCode() int {
	if o == nil || o.Response == nil {
		return 0
	}
	return o.Response.StatusCode
}

// Logger is the structured logger used by the client. hclog.Logger satisfies it.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// CredentialStore is the source of the bearer token and is cleared when a
// session expires.
type CredentialStore interface {
	AccessToken() (string, error)
	Clear() error
}

// Navigator redirects the user to another entry point, such as the login page.
type Navigator interface {
	Navigate(target string) error
}

// Clock returns the current time.
type Clock func() time.Time

// Option represents a configuration option
type Option func(*Client)
