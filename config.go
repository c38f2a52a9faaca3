package portalclient

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Config.ApplyEnv.
const (
	EnvLoginURL      = "PORTAL_LOGIN_URL"
	envServicePrefix = "PORTAL_SERVICE_"
	envServiceSuffix = "_URL"
)

// Config is the file form of the service registry and client settings.
//
// Example configuration (HCL):
//
//	login_url = "https://admin.example.com/login"
//	timeout   = "30s"
//
//	service "auth" {
//	  base_url = "https://auth.example.com/api"
//	}
//
//	service "users" {
//	  base_url = "https://users.example.com/api"
//	}
//
// The same document may be written as YAML with a "services" list of
// {name, base_url} entries.
type Config struct {
	LoginURL string          `hcl:"login_url,optional" yaml:"login_url" json:"login_url"`
	Timeout  string          `hcl:"timeout,optional" yaml:"timeout" json:"timeout"`
	Debug    bool            `hcl:"debug,optional" yaml:"debug" json:"debug"`
	Services []ServiceConfig `hcl:"service,block" yaml:"services" json:"services"`
}

// ServiceConfig is one registry entry.
type ServiceConfig struct {
	Name    string `hcl:"name,label" yaml:"name" json:"name"`
	BaseURL string `hcl:"base_url" yaml:"base_url" json:"base_url"`
}

// Validate checks a single registry entry.
func (s ServiceConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.BaseURL, validation.Required, validation.By(httpURL)),
	)
}

// LoadConfig reads and validates a configuration file. The format is chosen
// by extension: .hcl and .json are decoded as HCL, .yaml and .yml as YAML.
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".hcl", ".json":
		if err := hclsimple.Decode(path, src, nil, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(src, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LoginURL, validation.By(func(value interface{}) error {
			// Relative login paths are allowed for in-app navigation.
			s, _ := value.(string)
			if s == "" || strings.HasPrefix(s, "/") {
				return nil
			}
			return httpURL(s)
		})),
		validation.Field(&c.Timeout, validation.By(func(value interface{}) error {
			s, _ := value.(string)
			if s == "" {
				return nil
			}
			d, err := time.ParseDuration(s)
			if err != nil {
				return fmt.Errorf("must be a duration: %w", err)
			}
			if d <= 0 {
				return fmt.Errorf("must be positive, got %v", d)
			}
			return nil
		})),
		validation.Field(&c.Services, validation.Required),
	)
}

// ApplyEnv overrides settings from environ, a list of KEY=VALUE pairs as
// returned by os.Environ. PORTAL_SERVICE_<NAME>_URL replaces or adds the base
// URL of service <name> (lower-cased, "_" read as "-"); PORTAL_LOGIN_URL
// replaces the login URL.
func (c *Config) ApplyEnv(environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" {
			continue
		}
		if key == EnvLoginURL {
			c.LoginURL = value
			continue
		}
		if !strings.HasPrefix(key, envServicePrefix) || !strings.HasSuffix(key, envServiceSuffix) {
			continue
		}
		raw := strings.TrimSuffix(strings.TrimPrefix(key, envServicePrefix), envServiceSuffix)
		if raw == "" {
			continue
		}
		c.setService(strings.ReplaceAll(strings.ToLower(raw), "_", "-"), value)
	}
}

func (c *Config) setService(name, baseURL string) {
	for i := range c.Services {
		if c.Services[i].Name == name {
			c.Services[i].BaseURL = baseURL
			return
		}
	}
	c.Services = append(c.Services, ServiceConfig{Name: name, BaseURL: baseURL})
}

// Registry builds the validated service registry.
func (c *Config) Registry() (*Registry, error) {
	services := make(map[ServiceName]string, len(c.Services))
	for _, s := range c.Services {
		if _, dup := services[ServiceName(s.Name)]; dup {
			return nil, fmt.Errorf("invalid service registry: duplicate service %q", s.Name)
		}
		services[ServiceName(s.Name)] = s.BaseURL
	}
	return NewRegistry(services)
}

// Options converts the client settings to functional options.
func (c *Config) Options() []Option {
	var opts []Option
	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout); err == nil {
			opts = append(opts, WithTimeout(d))
		}
	}
	if c.LoginURL != "" {
		opts = append(opts, WithLoginURL(c.LoginURL))
	}
	if c.Debug {
		opts = append(opts, WithDebug())
	}
	return opts
}
