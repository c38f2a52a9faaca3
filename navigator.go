package portalclient

import (
	"net/url"
	"strings"

	"github.com/pkg/browser"
)

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(target string) error

// Navigate calls f(target).
func (f NavigatorFunc) Navigate(target string) error {
	return f(target)
}

// BrowserNavigator opens the navigation target in the user's browser. A
// relative target is resolved against BaseURL.
type BrowserNavigator struct {
	BaseURL string

	// open defaults to browser.OpenURL.
	open func(string) error
}

// Navigate opens target in the browser.
func (n *BrowserNavigator) Navigate(target string) error {
	resolved, err := n.Resolve(target)
	if err != nil {
		return err
	}
	open := n.open
	if open == nil {
		open = browser.OpenURL
	}
	return open(resolved)
}

// Resolve returns the absolute URL Navigate would open.
func (n *BrowserNavigator) Resolve(target string) (string, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() || n.BaseURL == "" {
		return ref.String(), nil
	}
	base, err := url.Parse(strings.TrimRight(n.BaseURL, "/") + "/")
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
