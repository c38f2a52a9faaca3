package portalclient

import (
	"errors"
	"testing"
)

func TestBrowserNavigatorResolve(t *testing.T) {
	tests := []struct {
		base, target, want string
	}{
		{"https://admin.example.com", "/login", "https://admin.example.com/login"},
		{"https://admin.example.com/app/", "/login", "https://admin.example.com/login"},
		{"https://admin.example.com/app", "login", "https://admin.example.com/app/login"},
		{"https://admin.example.com", "https://sso.example.com/login", "https://sso.example.com/login"},
		{"", "/login", "/login"},
	}

	for _, tt := range tests {
		n := &BrowserNavigator{BaseURL: tt.base}
		got, err := n.Resolve(tt.target)
		if err != nil {
			t.Fatalf("Resolve(%q) returned error: %v", tt.target, err)
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) against %q: expected %s, got %s", tt.target, tt.base, tt.want, got)
		}
	}
}

func TestBrowserNavigatorNavigate(t *testing.T) {
	var opened string
	n := &BrowserNavigator{
		BaseURL: "https://admin.example.com",
		open: func(u string) error {
			opened = u
			return nil
		},
	}
	if err := n.Navigate("/login"); err != nil {
		t.Fatalf("Navigate returned error: %v", err)
	}
	if opened != "https://admin.example.com/login" {
		t.Errorf("Expected browser to open https://admin.example.com/login, got %s", opened)
	}
}

func TestNavigatorFunc(t *testing.T) {
	want := errors.New("blocked")
	var got string
	nav := NavigatorFunc(func(target string) error {
		got = target
		return want
	})
	if err := nav.Navigate("/login"); !errors.Is(err, want) {
		t.Errorf("Expected %v, got %v", want, err)
	}
	if got != "/login" {
		t.Errorf("Expected target /login, got %s", got)
	}
}
