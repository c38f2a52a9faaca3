// Package base holds what every portalctl command shares: the logger, the
// UI, the filesystem and the environment, plus the flags and helpers that
// turn them into a configured portal client.
package base

import (
	"bytes"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/imajkumar/portalclient"
	"github.com/imajkumar/portalclient/credentials"
)

// Environment variables read for flag defaults.
const (
	EnvConfig      = "PORTAL_CONFIG"
	EnvCredentials = "PORTAL_CREDENTIALS"
)

// DefaultConfigPath is used when neither -config nor PORTAL_CONFIG is set.
const DefaultConfigPath = "portal.hcl"

// Command is embedded by every command.
type Command struct {
	Log     hclog.Logger
	UI      cli.Ui
	Fs      afero.Fs
	Environ []string

	// Navigator handles session expiry. Nil opens absolute login URLs in the
	// browser and prints a hint for relative ones.
	Navigator portalclient.Navigator

	// Transport overrides the HTTP transport of the portal client.
	Transport http.RoundTripper

	flagConfig      string
	flagCredentials string
}

// Getenv returns the value of key in Environ.
func (c *Command) Getenv(key string) string {
	for _, kv := range c.Environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k == key {
			return v
		}
	}
	return ""
}

// FlagSet is a flag.FlagSet that can render its own help text.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet wraps f.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	return &FlagSet{FlagSet: f}
}

// Help renders the flag defaults for a command's help text.
func (f *FlagSet) Help() string {
	var buf bytes.Buffer
	out := f.Output()
	f.SetOutput(&buf)
	f.PrintDefaults()
	f.SetOutput(out)
	if buf.Len() == 0 {
		return ""
	}
	return "\n\nOptions:\n\n" + buf.String()
}

// NewCommandFlagSet returns a flag set for command name with the shared
// -config and -credentials flags registered.
func (c *Command) NewCommandFlagSet(name string) *FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})
	f := NewFlagSet(fs)

	config := c.Getenv(EnvConfig)
	if config == "" {
		config = DefaultConfigPath
	}
	f.StringVar(&c.flagConfig, "config", config,
		"Path to the portal configuration file (HCL, JSON or YAML). Overrides "+EnvConfig+".")
	f.StringVar(&c.flagCredentials, "credentials", c.defaultCredentialsPath(),
		"Path to the credentials file. Overrides "+EnvCredentials+".")
	return f
}

func (c *Command) defaultCredentialsPath() string {
	if p := c.Getenv(EnvCredentials); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".portal", "credentials.json")
	}
	return filepath.Join(home, ".portal", "credentials.json")
}

// ConfigPath returns the parsed -config value.
func (c *Command) ConfigPath() string {
	return c.flagConfig
}

// CredentialStore returns the file store selected by -credentials.
func (c *Command) CredentialStore() *credentials.FileStore {
	return credentials.NewFileStore(c.Fs, c.flagCredentials)
}

// LoadConfig reads the file selected by -config and applies the
// environment overrides.
func (c *Command) LoadConfig() (*portalclient.Config, error) {
	cfg, err := portalclient.LoadConfig(c.Fs, c.flagConfig)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(c.Environ)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config after environment overrides: %w", err)
	}
	return cfg, nil
}

// NewClient builds the portal client from the configuration and the
// credential store selected by the flags.
func (c *Command) NewClient() (*portalclient.Client, error) {
	cfg, err := c.LoadConfig()
	if err != nil {
		return nil, err
	}
	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	nav := c.Navigator
	if nav == nil {
		nav = &loginNavigator{ui: c.UI}
	}

	opts := append(cfg.Options(),
		portalclient.WithLogger(c.Log),
		portalclient.WithCredentialStore(c.CredentialStore()),
		portalclient.WithNavigator(nav),
	)
	if c.Transport != nil {
		opts = append(opts, portalclient.WithHTTPTransport(c.Transport))
	}

	client := portalclient.New(registry, opts...)
	if !client.IsValid() {
		return nil, client.ValidationError()
	}
	return client, nil
}

// loginNavigator opens absolute login URLs in the browser. A relative URL
// only makes sense inside the web app, so the user is told to sign in again.
type loginNavigator struct {
	ui      cli.Ui
	browser portalclient.BrowserNavigator
}

func (n *loginNavigator) Navigate(target string) error {
	u, err := url.Parse(target)
	if err == nil && u.IsAbs() {
		n.ui.Warn(fmt.Sprintf("Session expired, opening %s", target))
		return n.browser.Navigate(target)
	}
	n.ui.Warn("Session expired, run `portalctl login` to sign in again")
	return nil
}
