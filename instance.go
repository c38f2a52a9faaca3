package portalclient

import (
	"net/http"
	"sync"
	"time"
)

// Instance is the transport client bound to one service. Instances are
// created by the Client on first use and cached for its lifetime.
type Instance struct {
	service    ServiceName
	baseURL    string
	httpClient *http.Client
	headers    http.Header

	mu       sync.RWMutex
	request  []RequestInterceptor
	response []ResponseInterceptor
}

func newInstance(service ServiceName, baseURL string, timeout time.Duration, transport http.RoundTripper, headers http.Header) *Instance {
	return &Instance{
		service: service,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		headers: headers.Clone(),
	}
}

// Service returns the service name the instance is bound to.
func (i *Instance) Service() ServiceName {
	return i.service
}

// BaseURL returns the base URL the instance is bound to.
func (i *Instance) BaseURL() string {
	return i.baseURL
}

// Timeout returns the per-request timeout of the instance.
func (i *Instance) Timeout() time.Duration {
	return i.httpClient.Timeout
}

// Header returns a copy of the default headers sent on every request.
func (i *Instance) Header() http.Header {
	return i.headers.Clone()
}

// Attached returns how many request and response interceptors are attached.
func (i *Instance) Attached() (request, response int) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.request), len(i.response)
}

// interceptors returns a snapshot of the attached interceptors.
func (i *Instance) interceptors() ([]RequestInterceptor, []ResponseInterceptor) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.request[:len(i.request):len(i.request)], i.response[:len(i.response):len(i.response)]
}
