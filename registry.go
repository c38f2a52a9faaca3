package portalclient

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Registry is the read-only mapping of service names to base URLs.
type Registry struct {
	services map[ServiceName]string
}

// NewRegistry validates and copies services. Base URLs must be absolute
// http or https URLs; a trailing slash is dropped.
func NewRegistry(services map[ServiceName]string) (*Registry, error) {
	if err := validation.Validate(services, validation.Required.Error("at least one service is required")); err != nil {
		return nil, fmt.Errorf("invalid service registry: %w", err)
	}

	errs := validation.Errors{}
	copied := make(map[ServiceName]string, len(services))
	for name, baseURL := range services {
		key := string(name)
		if strings.TrimSpace(key) == "" {
			errs["<empty>"] = errors.New("service name is required")
			continue
		}
		errs[key] = validation.Validate(baseURL, validation.Required, validation.By(httpURL))
		copied[name] = strings.TrimRight(baseURL, "/")
	}
	if err := errs.Filter(); err != nil {
		return nil, fmt.Errorf("invalid service registry: %w", err)
	}

	return &Registry{services: copied}, nil
}

// MustRegistry is like NewRegistry but panics on an invalid mapping.
func MustRegistry(services map[ServiceName]string) *Registry {
	r, err := NewRegistry(services)
	if err != nil {
		panic(err)
	}
	return r
}

// BaseURL returns the base URL registered for name.
func (r *Registry) BaseURL(name ServiceName) (string, bool) {
	if r == nil {
		return "", false
	}
	u, ok := r.services[name]
	return u, ok
}

// Names returns the registered service names in sorted order.
func (r *Registry) Names() []ServiceName {
	if r == nil {
		return nil
	}
	names := make([]ServiceName, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Len returns the number of registered services.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.services)
}

func httpURL(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("must be a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must use http or https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}
