package portalclient

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

const (
	contentTypeJSON        = "application/json"
	testToken              = "test-token"
	failedWriteResponseMsg = "Failed to write response: %v"
)

var fixedTime = time.Date(2024, 3, 1, 12, 30, 45, 123000000, time.UTC)

func fixedClock() time.Time { return fixedTime }

// fakeStore is a CredentialStore that counts Clear calls.
type fakeStore struct {
	mu     sync.Mutex
	token  string
	err    error
	clears int
}

func (s *fakeStore) AccessToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.err
}

func (s *fakeStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.clears++
	return nil
}

func (s *fakeStore) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *fakeStore) clearCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}

// fakeNavigator records navigation targets.
type fakeNavigator struct {
	mu      sync.Mutex
	targets []string
}

func (n *fakeNavigator) Navigate(target string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
	return nil
}

func (n *fakeNavigator) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.targets)
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

var errConnRefused = errors.New("dial tcp 127.0.0.1:1: connect: connection refused")

// failingTransport never produces a response.
var failingTransport = roundTripperFunc(func(*http.Request) (*http.Response, error) {
	return nil, errConnRefused
})

// newTestClient points every well-known service at server.
func newTestClient(t *testing.T, server *httptest.Server, options ...Option) *Client {
	t.Helper()
	registry, err := NewRegistry(map[ServiceName]string{
		ServiceAuth:          server.URL + "/auth",
		ServiceUsers:         server.URL + "/users",
		ServiceModules:       server.URL + "/modules",
		ServiceNotifications: server.URL + "/notifications",
	})
	if err != nil {
		t.Fatalf("NewRegistry() returned error: %v", err)
	}
	client := New(registry, options...)
	if !client.IsValid() {
		t.Fatalf("New() returned invalid client: %v", client.ValidationError())
	}
	return client
}

func jsonHandler(t *testing.T, status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(status)
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf(failedWriteResponseMsg, err)
		}
	}
}
