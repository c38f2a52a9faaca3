package portalclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// CallOption adjusts the RequestConfig of a single facade call.
type CallOption func(*RequestConfig)

// WithQuery merges params into the query string of the call.
func WithQuery(params map[string]string) CallOption {
	return func(cfg *RequestConfig) {
		for k, v := range params {
			setParam(cfg, k, v)
		}
	}
}

// WithParam sets one query parameter of the call.
func WithParam(key, value string) CallOption {
	return func(cfg *RequestConfig) {
		setParam(cfg, key, value)
	}
}

// WithRequestHeader sets a header on the call, overriding the defaults.
func WithRequestHeader(key, value string) CallOption {
	return func(cfg *RequestConfig) {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		cfg.Headers[key] = value
	}
}

func setParam(cfg *RequestConfig, key, value string) {
	if cfg.Params == nil {
		cfg.Params = make(map[string]string)
	}
	cfg.Params[key] = value
}

func newConfig(method, path string, data interface{}, opts []CallOption) RequestConfig {
	cfg := RequestConfig{Method: method, URL: path, Data: data}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Request performs cfg against service and decodes the response envelope.
// With ResponseBinary and T == []byte the raw body is placed in Data.
func Request[T any](ctx context.Context, c *Client, service ServiceName, cfg RequestConfig) (*Envelope[T], error) {
	out, err := c.Do(ctx, service, cfg)
	if err != nil {
		return nil, err
	}

	env := &Envelope[T]{}
	if cfg.ResponseType == ResponseBinary {
		if raw, ok := any(&env.Data).(*[]byte); ok {
			*raw = out.Body
			env.Status = StatusSuccess
			env.StatusCode = out.StatusCode()
			return env, nil
		}
	}

	empty, err := c.decode(out, env)
	if err != nil {
		return nil, err
	}
	if empty {
		env.Status = StatusSuccess
		env.StatusCode = out.StatusCode()
	}
	return env, nil
}

// Get issues a GET.
func Get[T any](ctx context.Context, c *Client, service ServiceName, path string, opts ...CallOption) (*Envelope[T], error) {
	return Request[T](ctx, c, service, newConfig(http.MethodGet, path, nil, opts))
}

// Post issues a POST with data as the body.
func Post[T any](ctx context.Context, c *Client, service ServiceName, path string, data interface{}, opts ...CallOption) (*Envelope[T], error) {
	return Request[T](ctx, c, service, newConfig(http.MethodPost, path, data, opts))
}

// Put issues a PUT with data as the body.
func Put[T any](ctx context.Context, c *Client, service ServiceName, path string, data interface{}, opts ...CallOption) (*Envelope[T], error) {
	return Request[T](ctx, c, service, newConfig(http.MethodPut, path, data, opts))
}

// Patch issues a PATCH with data as the body.
func Patch[T any](ctx context.Context, c *Client, service ServiceName, path string, data interface{}, opts ...CallOption) (*Envelope[T], error) {
	return Request[T](ctx, c, service, newConfig(http.MethodPatch, path, data, opts))
}

// Delete issues a DELETE.
func Delete[T any](ctx context.Context, c *Client, service ServiceName, path string, opts ...CallOption) (*Envelope[T], error) {
	return Request[T](ctx, c, service, newConfig(http.MethodDelete, path, nil, opts))
}

// Upload POSTs form as multipart/form-data.
func Upload[T any](ctx context.Context, c *Client, service ServiceName, path string, form *FormData, opts ...CallOption) (*Envelope[T], error) {
	if form == nil {
		form = &FormData{}
	}
	return Request[T](ctx, c, service, newConfig(http.MethodPost, path, form, opts))
}

// GetPaginated issues a GET and decodes a paginated envelope. The pagination
// block is returned as sent by the backend.
func GetPaginated[T any](ctx context.Context, c *Client, service ServiceName, path string, opts ...CallOption) (*PaginatedEnvelope[T], error) {
	out, err := c.Do(ctx, service, newConfig(http.MethodGet, path, nil, opts))
	if err != nil {
		return nil, err
	}

	env := &PaginatedEnvelope[T]{}
	empty, err := c.decode(out, env)
	if err != nil {
		return nil, err
	}
	if empty {
		env.Status = StatusSuccess
		env.StatusCode = out.StatusCode()
	}
	return env, nil
}

// Download issues a GET and returns the raw response body without decoding.
func (c *Client) Download(ctx context.Context, service ServiceName, path string, opts ...CallOption) ([]byte, error) {
	cfg := newConfig(http.MethodGet, path, nil, opts)
	cfg.ResponseType = ResponseBinary
	out, err := c.Do(ctx, service, cfg)
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// decode unmarshals the body of a successful call into v, keeping numbers as
// json.Number. It reports whether the body was empty. A decode failure is
// routed through the taxonomy as an unknown error.
func (c *Client) decode(out *Outcome, v interface{}) (bool, error) {
	body := bytes.TrimSpace(out.Body)
	if len(body) == 0 {
		return true, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		_, nerr := c.taxonomy.Handle(out, fmt.Errorf("failed to decode response: %w", err))
		return false, nerr
	}
	return false, nil
}
