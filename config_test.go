package portalclient

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestNewRegistry(t *testing.T) {
	registry, err := NewRegistry(map[ServiceName]string{
		ServiceUsers: "https://users.example.com/api/",
		ServiceAuth:  "http://localhost:8081",
	})
	if err != nil {
		t.Fatalf("NewRegistry() returned error: %v", err)
	}

	if got, _ := registry.BaseURL(ServiceUsers); got != "https://users.example.com/api" {
		t.Errorf("Expected trailing slash trimmed, got %s", got)
	}
	if _, ok := registry.BaseURL(ServiceModules); ok {
		t.Error("Expected unregistered service to be missing")
	}
	names := registry.Names()
	if len(names) != 2 || names[0] != ServiceAuth || names[1] != ServiceUsers {
		t.Errorf("Expected sorted [auth users], got %v", names)
	}
	if registry.Len() != 2 {
		t.Errorf("Expected Len()=2, got %d", registry.Len())
	}
}

func TestNewRegistryCopies(t *testing.T) {
	services := map[ServiceName]string{ServiceUsers: "https://users.example.com"}
	registry := MustRegistry(services)
	services[ServiceUsers] = "https://evil.example.com"

	if got, _ := registry.BaseURL(ServiceUsers); got != "https://users.example.com" {
		t.Errorf("Expected registry to be immune to later map changes, got %s", got)
	}
}

func TestNewRegistryInvalid(t *testing.T) {
	tests := []struct {
		name     string
		services map[ServiceName]string
		contains []string
	}{
		{"empty", map[ServiceName]string{}, []string{"at least one service"}},
		{"nil", nil, []string{"at least one service"}},
		{"blank url", map[ServiceName]string{ServiceUsers: ""}, []string{"users"}},
		{"bad scheme", map[ServiceName]string{ServiceUsers: "ftp://files.example.com"}, []string{"http or https"}},
		{"no host", map[ServiceName]string{ServiceUsers: "https://"}, []string{"host"}},
		{"blank name", map[ServiceName]string{" ": "https://x.example.com"}, []string{"service name is required"}},
		{
			"every bad entry reported",
			map[ServiceName]string{ServiceUsers: "ftp://a", ServiceAuth: "mailto:x"},
			[]string{"users", "auth"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.services)
			if err == nil {
				t.Fatal("Expected error")
			}
			for _, want := range tt.contains {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Expected error to contain %q, got %v", want, err)
				}
			}
		})
	}
}

func TestMustRegistryPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected MustRegistry to panic")
		}
	}()
	MustRegistry(nil)
}

const hclConfig = `
login_url = "https://admin.example.com/login"
timeout   = "10s"
debug     = true

service "auth" {
  base_url = "https://auth.example.com/api"
}

service "users" {
  base_url = "https://users.example.com/api"
}
`

const jsonConfig = `{
  "login_url": "/login",
  "service": {
    "auth":  {"base_url": "https://auth.example.com/api"},
    "users": {"base_url": "https://users.example.com/api"}
  }
}`

const yamlConfig = `
login_url: /login
timeout: 15s
services:
  - name: auth
    base_url: https://auth.example.com/api
  - name: users
    base_url: https://users.example.com/api
`

func TestLoadConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/etc/portal/portal.hcl":  hclConfig,
		"/etc/portal/portal.json": jsonConfig,
		"/etc/portal/portal.yaml": yamlConfig,
	}
	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile returned error: %v", err)
		}
	}

	for path := range files {
		t.Run(path, func(t *testing.T) {
			cfg, err := LoadConfig(fs, path)
			if err != nil {
				t.Fatalf("LoadConfig() returned error: %v", err)
			}
			registry, err := cfg.Registry()
			if err != nil {
				t.Fatalf("Registry() returned error: %v", err)
			}
			if registry.Len() != 2 {
				t.Errorf("Expected 2 services, got %d", registry.Len())
			}
			if got, _ := registry.BaseURL(ServiceUsers); got != "https://users.example.com/api" {
				t.Errorf("Expected users base URL, got %s", got)
			}
		})
	}

	cfg, err := LoadConfig(fs, "/etc/portal/portal.hcl")
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg.LoginURL != "https://admin.example.com/login" || cfg.Timeout != "10s" || !cfg.Debug {
		t.Errorf("Unexpected HCL settings: %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	write := func(path, content string) {
		t.Helper()
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile returned error: %v", err)
		}
	}
	write("/portal.toml", "x = 1")
	write("/bad.hcl", "service {")
	write("/noservices.yaml", "login_url: /login\n")
	write("/timeout.yaml", "timeout: soon\nservices:\n  - name: users\n    base_url: https://u.example.com\n")
	write("/badurl.yaml", "services:\n  - name: users\n    base_url: ftp://u.example.com\n")
	write("/login.yaml", "login_url: login\nservices:\n  - name: users\n    base_url: https://u.example.com\n")

	tests := []struct {
		path string
		want string
	}{
		{"/missing.hcl", "failed to read config"},
		{"/portal.toml", "unsupported config format"},
		{"/bad.hcl", "failed to load config"},
		{"/noservices.yaml", "services"},
		{"/timeout.yaml", "must be a duration"},
		{"/badurl.yaml", "http or https"},
		{"/login.yaml", "login_url"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := LoadConfig(fs, tt.path)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error to contain %q, got %v", tt.want, err)
			}
		})
	}
}

func TestConfigApplyEnv(t *testing.T) {
	cfg := &Config{
		Services: []ServiceConfig{
			{Name: "users", BaseURL: "https://users.example.com"},
		},
	}

	cfg.ApplyEnv([]string{
		"PORTAL_SERVICE_USERS_URL=https://users.staging.example.com",
		"PORTAL_SERVICE_AUDIT_LOG_URL=https://audit.example.com",
		"PORTAL_SERVICE__URL=https://ignored.example.com",
		"PORTAL_SERVICE_EMPTY_URL=",
		"PORTAL_LOGIN_URL=https://sso.example.com/login",
		"HOME=/root",
	})

	registry, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry() returned error: %v", err)
	}
	if got, _ := registry.BaseURL(ServiceUsers); got != "https://users.staging.example.com" {
		t.Errorf("Expected users override, got %s", got)
	}
	if got, _ := registry.BaseURL("audit-log"); got != "https://audit.example.com" {
		t.Errorf("Expected audit-log to be added, got %s", got)
	}
	if registry.Len() != 2 {
		t.Errorf("Expected 2 services, got %v", registry.Names())
	}
	if cfg.LoginURL != "https://sso.example.com/login" {
		t.Errorf("Expected login URL override, got %s", cfg.LoginURL)
	}
}

func TestConfigRegistryDuplicate(t *testing.T) {
	cfg := &Config{Services: []ServiceConfig{
		{Name: "users", BaseURL: "https://a.example.com"},
		{Name: "users", BaseURL: "https://b.example.com"},
	}}
	if _, err := cfg.Registry(); err == nil || !strings.Contains(err.Error(), "duplicate service") {
		t.Errorf("Expected duplicate service error, got %v", err)
	}
}

func TestConfigOptions(t *testing.T) {
	cfg := &Config{
		LoginURL: "/sso",
		Timeout:  "12s",
		Debug:    true,
		Services: []ServiceConfig{{Name: "users", BaseURL: "https://users.example.com"}},
	}
	registry, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry() returned error: %v", err)
	}

	client := New(registry, cfg.Options()...)
	if client.timeout != 12*time.Second {
		t.Errorf("Expected timeout=12s, got %v", client.timeout)
	}
	if client.SessionGuard().LoginURL() != "/sso" {
		t.Errorf("Expected login URL /sso, got %s", client.SessionGuard().LoginURL())
	}
	if !client.debug {
		t.Error("Expected debug enabled")
	}
}
