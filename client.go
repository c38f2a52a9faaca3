package portalclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// DefaultTimeout bounds every request issued by an instance.
const DefaultTimeout = 30 * time.Second

// Client talks to the services of a Registry. It owns the instance cache and
// the interceptor pipeline shared by every instance, and is safe for
// concurrent use. Construct one per process at the composition root and pass
// it to the callers.
type Client struct {
	registry  *Registry
	cache     *instanceCache
	pipeline  *Pipeline
	taxonomy  *Taxonomy
	guard     *SessionGuard
	timeout   time.Duration
	transport http.RoundTripper
	headers   http.Header
	store     CredentialStore
	navigator Navigator
	loginURL  string
	logger    Logger
	metrics   *MetricsCollector
	debug     bool
	idgen     func(time.Time) string
	now       Clock

	validationError error
}

// New constructs a Client for registry using the provided functional options
// and installs the default interceptors: bearer auth and request tracing on
// the request side, debug logging and error classification on the response
// side. A best effort validation is performed; call IsValid / ValidationError
// for errors.
func New(registry *Registry, options ...Option) *Client {
	client := &Client{
		registry: registry,
		cache:    newInstanceCache(),
		pipeline: NewPipeline(),
		timeout:  DefaultTimeout,
		headers: http.Header{
			"Content-Type": []string{"application/json"},
			"Accept":       []string{"application/json"},
			"User-Agent":   []string{"portalclient/" + Version},
		},
		loginURL: DefaultLoginURL,
		logger:   hclog.NewNullLogger(),
		idgen:    DefaultRequestID,
		now:      time.Now,
	}

	for _, option := range options {
		option(client)
	}

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}
	// An invalid client still fails calls safely, so fill what an option
	// may have cleared.
	if client.logger == nil {
		client.logger = hclog.NewNullLogger()
	}
	if client.idgen == nil {
		client.idgen = DefaultRequestID
	}
	if client.now == nil {
		client.now = time.Now
	}

	client.guard = NewSessionGuard(client.store, client.navigator, client.loginURL, client.logger)
	client.guard.metrics = client.metrics
	client.taxonomy = NewTaxonomy(client.guard, client.logger, client.metrics, client.now)

	client.pipeline.AppendRequest(AuthInterceptor(client.store, client.logger))
	client.pipeline.AppendRequest(TraceInterceptor(client.idgen, client.now))
	client.pipeline.AppendResponse(successLogger(client.logger, func() bool { return client.debug }))
	client.pipeline.AppendResponse(client.taxonomy.FailureInterceptor())

	return client
}

// Registry returns the service registry.
func (c *Client) Registry() *Registry {
	return c.registry
}

// Pipeline returns the interceptor pipeline shared by every instance.
func (c *Client) Pipeline() *Pipeline {
	return c.pipeline
}

// Taxonomy returns the error taxonomy used by the default failure interceptor.
func (c *Client) Taxonomy() *Taxonomy {
	return c.taxonomy
}

// SessionGuard returns the guard that handles 401 responses.
func (c *Client) SessionGuard() *SessionGuard {
	return c.guard
}

// Instance returns the cached instance for service, building it on first use.
// Every call for the same name returns the same pointer.
func (c *Client) Instance(service ServiceName) (*Instance, error) {
	inst, created, err := c.cache.getOrCreate(service, func() (*Instance, error) {
		baseURL, ok := c.registry.BaseURL(service)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownService, service)
		}
		inst := newInstance(service, baseURL, c.timeout, c.transport, c.headers)
		c.pipeline.ApplyTo(inst)
		return inst, nil
	})
	if err != nil {
		ne := c.taxonomy.Classify(&Outcome{Service: service}, err)
		ne.Details = map[string]interface{}{"service": string(service)}
		return nil, ne
	}

	if created {
		c.logger.Debug("created service instance", "service", service, "base_url", inst.baseURL)
		c.metrics.RecordInstances(c.cache.len())
	}
	return inst, nil
}

// Instances returns the names of the services with a cached instance.
func (c *Client) Instances() []ServiceName {
	return c.cache.names()
}

// AddRequestInterceptor appends fn to the pipeline and attaches it to every
// instance, including those already cached.
func (c *Client) AddRequestInterceptor(fn RequestInterceptor) {
	c.pipeline.AppendRequest(fn)
	c.cache.each(c.pipeline.ApplyTo)
}

// AddResponseInterceptor appends ri to the pipeline and attaches it to every
// instance, including those already cached.
func (c *Client) AddResponseInterceptor(ri ResponseInterceptor) {
	c.pipeline.AppendResponse(ri)
	c.cache.each(c.pipeline.ApplyTo)
}

// Do issues one call to service through the pipeline. On success the returned
// outcome holds the fully read response body. On failure the error is always a
// *NormalizedError; the outcome describes as much of the call as happened.
func (c *Client) Do(ctx context.Context, service ServiceName, cfg RequestConfig) (*Outcome, error) {
	out := &Outcome{Service: service}
	if c.validationError != nil {
		return out, c.taxonomy.Classify(out, c.validationError)
	}

	inst, err := c.Instance(service)
	if err != nil {
		return out, err
	}
	requestStages, responseStages := inst.interceptors()

	start := c.now()
	c.metrics.RecordRequestStart(string(service))

	req, err := inst.newRequest(ctx, cfg)
	if err == nil {
		req, err = runRequestStages(req, requestStages)
	}
	out.Request = req

	if err == nil {
		out.RequestID = req.Header.Get(HeaderRequestID)
		err = c.dispatch(inst, out)
	}
	out.Duration = c.now().Sub(start)

	for _, stage := range responseStages {
		prev := out
		if err == nil {
			if stage.OnSuccess != nil {
				out, err = stage.OnSuccess(out)
			}
		} else if stage.OnFailure != nil {
			out, err = stage.OnFailure(out, err)
		}
		if out == nil {
			out = prev
		}
	}

	c.metrics.RecordRequestEnd(string(service))
	c.metrics.RecordRequest(string(service), cfg.method(), out.StatusCode(), out.Duration)

	if err != nil {
		return out, c.taxonomy.Classify(out, err)
	}
	return out, nil
}

func runRequestStages(req *http.Request, stages []RequestInterceptor) (*http.Request, error) {
	for _, stage := range stages {
		next, err := stage(req)
		if err != nil {
			return req, fmt.Errorf("request interceptor: %w", err)
		}
		if next == nil {
			return req, errors.New("request interceptor returned a nil request")
		}
		req = next
	}
	return req, nil
}

// dispatch executes the request and reads the whole body. A non-2xx status is
// reported as a *StatusError, a failure to obtain a response as a
// *TransportError. A body that cannot be read after the response arrived is
// neither, and classifies as unknown.
func (c *Client) dispatch(inst *Instance, out *Outcome) error {
	resp, err := inst.httpClient.Do(out.Request)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	out.Response = resp
	body, err := io.ReadAll(resp.Body)
	out.Body = body
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       body,
		}
	}
	return nil
}

func (cfg RequestConfig) method() string {
	if cfg.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(cfg.Method)
}

// newRequest builds the outgoing request for cfg with the instance's default
// headers; per-call headers override them.
func (i *Instance) newRequest(ctx context.Context, cfg RequestConfig) (*http.Request, error) {
	endpoint, err := i.resolve(cfg.URL, cfg.Params)
	if err != nil {
		return nil, err
	}

	header := i.headers.Clone()
	var body io.Reader
	var multipartType string
	switch data := cfg.Data.(type) {
	case nil:
	case *FormData:
		reader, contentType, err := data.encode()
		if err != nil {
			return nil, err
		}
		body = reader
		multipartType = contentType
	case []byte:
		body = bytes.NewReader(data)
	case io.Reader:
		body = data
	default:
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	for k, v := range cfg.Headers {
		header.Set(k, v)
	}
	// The boundary is only known here, so it wins over any caller value.
	if multipartType != "" {
		header.Set("Content-Type", multipartType)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.method(), endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = header
	return req, nil
}

// resolve joins path to the base URL. An absolute path replaces the base URL.
func (i *Instance) resolve(path string, params map[string]string) (string, error) {
	var raw string
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		raw = path
	} else {
		raw = i.baseURL + "/" + strings.TrimLeft(path, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid request URL %q: %w", raw, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}
