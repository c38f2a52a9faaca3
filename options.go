package portalclient

import (
	"errors"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// WithTimeout sets the per-request timeout of every instance.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPTransport sets the round tripper shared by every instance.
func WithHTTPTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// WithHeader sets a default header sent by every instance.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithCredentialStore sets the store the auth interceptor reads the bearer
// token from and the session guard clears on a 401.
func WithCredentialStore(store CredentialStore) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithNavigator sets where the session guard sends the user on a 401.
func WithNavigator(nav Navigator) Option {
	return func(c *Client) {
		c.navigator = nav
	}
}

// WithLoginURL sets the navigation target used when a session expires.
func WithLoginURL(loginURL string) Option {
	return func(c *Client) {
		c.loginURL = loginURL
	}
}

// WithLogger sets the logger for every component of the client.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables per-request debug logging of successful calls.
func WithDebug() Option {
	return func(c *Client) {
		c.debug = true
	}
}

// WithMetrics enables Prometheus metrics collection on the default registerer.
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsRegisterer enables Prometheus metrics collection on reg.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollectorWithRegistry(reg)
	}
}

// WithMetricsCollector sets a custom metrics collector
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithRequestIDGenerator sets a custom function for generating request IDs
func WithRequestIDGenerator(gen func(time.Time) string) Option {
	return func(c *Client) {
		c.idgen = gen
	}
}

// WithClock overrides the time source used for request ids, timestamps and
// durations.
func WithClock(now Clock) Option {
	return func(c *Client) {
		c.now = now
	}
}

var errNilRegistry = errors.New("registry is required")

// ValidateConfiguration validates the client configuration and returns an error if invalid
func (c *Client) ValidateConfiguration() error {
	if c.registry == nil {
		return errNilRegistry
	}
	err := validation.ValidateStruct(c,
		validation.Field(&c.timeout, validation.Required, validation.Min(time.Millisecond), validation.Max(10*time.Minute)),
		validation.Field(&c.loginURL, validation.Required),
		validation.Field(&c.logger, validation.NotNil),
		validation.Field(&c.idgen, validation.NotNil),
		validation.Field(&c.now, validation.NotNil),
	)
	if err != nil {
		return errors.Join(errors.New("configuration validation failed"), err)
	}
	return nil
}
