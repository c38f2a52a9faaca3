package portalclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/imajkumar/portalclient/internal/singleflight"
)

// DefaultLoginURL is the navigation target used when a session expires.
const DefaultLoginURL = "/login"

// SessionGuard performs the session-expiry side effect of a 401 response:
// clear the credential store, then navigate to the login entry point.
//
// The side effect runs once per session. A session is identified by the bearer
// token the failed request carried; any number of 401s for the same token,
// concurrent or not, fire it once, even when they arrive after a later session
// has expired. A 401 carrying a token not yet seen (a new login) fires it. Concurrent callers for the same token wait until the
// side effect has completed.
type SessionGuard struct {
	store    CredentialStore
	nav      Navigator
	loginURL string
	logger   Logger
	metrics  *MetricsCollector

	flights singleflight.Group[bool]

	mu      sync.Mutex
	expired map[string]struct{}
	fired   int
}

// NewSessionGuard creates a guard. store and nav may be nil, in which case
// the corresponding step is skipped.
func NewSessionGuard(store CredentialStore, nav Navigator, loginURL string, logger Logger) *SessionGuard {
	if loginURL == "" {
		loginURL = DefaultLoginURL
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &SessionGuard{
		store:    store,
		nav:      nav,
		loginURL: loginURL,
		logger:   logger,
		expired:  make(map[string]struct{}),
	}
}

// Expire runs the side effect for token unless it already ran for it. It
// reports whether this call performed the side effect.
func (g *SessionGuard) Expire(token string) (bool, error) {
	fired, err, _ := g.flights.Do(token, func() (bool, error) {
		g.mu.Lock()
		if _, done := g.expired[token]; done {
			g.mu.Unlock()
			return false, nil
		}
		g.expired[token] = struct{}{}
		g.fired++
		g.mu.Unlock()

		g.logger.Warn("session expired, clearing credentials", "login_url", g.loginURL)
		g.metrics.RecordSessionExpired()

		var errs []error
		if g.store != nil {
			if err := g.store.Clear(); err != nil {
				errs = append(errs, fmt.Errorf("clear credentials: %w", err))
			}
		}
		if g.nav != nil {
			if err := g.nav.Navigate(g.loginURL); err != nil {
				errs = append(errs, fmt.Errorf("navigate to login: %w", err))
			}
		}
		return true, errors.Join(errs...)
	})
	return fired, err
}

// Fired returns how many times the side effect has run.
func (g *SessionGuard) Fired() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fired
}

// LoginURL returns the navigation target.
func (g *SessionGuard) LoginURL() string {
	return g.loginURL
}

// bearerToken extracts the token from a request's Authorization header.
func bearerToken(req *http.Request) string {
	if req == nil {
		return ""
	}
	auth := req.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return auth[7:]
	}
	return ""
}
