package player

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// streamEndpoint fakes the lessons streaming route and records what it saw
type streamEndpoint struct {
	mu      sync.Mutex
	status  int
	calls   int
	methods []string
	paths   []string
	auth    []string
	queries []string
	delay   time.Duration
}

func (s *streamEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls++
	s.methods = append(s.methods, r.Method)
	s.paths = append(s.paths, r.URL.Path)
	s.auth = append(s.auth, r.Header.Get("Authorization"))
	s.queries = append(s.queries, r.URL.Query().Get("token"))
	status, delay := s.status, s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
}

func (s *streamEndpoint) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newEndpoint(t *testing.T, status int) (*streamEndpoint, *httptest.Server) {
	t.Helper()
	ep := &streamEndpoint{status: status}
	srv := httptest.NewServer(ep)
	t.Cleanup(srv.Close)
	return ep, srv
}

func TestPrechecker_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{http.StatusOK, ErrorKindNone},
		{http.StatusNoContent, ErrorKindNone},
		{http.StatusUnauthorized, ErrorKindUnauthenticated},
		{http.StatusForbidden, ErrorKindForbidden},
		{http.StatusNotFound, ErrorKindNotFound},
		{http.StatusInternalServerError, ErrorKindUnknown},
		{http.StatusBadGateway, ErrorKindUnknown},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			ep, srv := newEndpoint(t, tt.status)
			p := NewPrechecker(PrecheckConfig{BaseURL: srv.URL}, MapCredentials{"access_token": "tok"}, srv.Client())

			result := p.Check(context.Background(), "abc123")

			assert.Equal(t, tt.want, result.Kind)
			assert.Equal(t, tt.status, result.Status)
			assert.True(t, result.Attempted)
			assert.Equal(t, tt.want == ErrorKindNone, result.OK())
			require.Equal(t, 1, ep.callCount(), "exactly one round trip per check")
			assert.Equal(t, http.MethodHead, ep.methods[0])
			assert.Equal(t, "/api/videos/abc123/stream", ep.paths[0])
		})
	}
}

func TestPrechecker_NoTokenMakesNoRequest(t *testing.T) {
	ep, srv := newEndpoint(t, http.StatusOK)
	p := NewPrechecker(PrecheckConfig{BaseURL: srv.URL}, MapCredentials{}, srv.Client())

	result := p.Check(context.Background(), "abc123")

	assert.Equal(t, ErrorKindUnauthenticated, result.Kind)
	assert.ErrorIs(t, result.Err, ErrNoCredential)
	assert.False(t, result.Attempted)
	assert.Zero(t, ep.callCount())
}

func TestPrechecker_TokenPlacement(t *testing.T) {
	creds := MapCredentials{"token": "legacy-tok"}

	t.Run("header", func(t *testing.T) {
		ep, srv := newEndpoint(t, http.StatusOK)
		p := NewPrechecker(PrecheckConfig{BaseURL: srv.URL, Placement: TokenInHeader}, creds, srv.Client())

		require.True(t, p.Check(context.Background(), "abc123").OK())
		assert.Equal(t, "Bearer legacy-tok", ep.auth[0])
		assert.Empty(t, ep.queries[0])
	})

	t.Run("query", func(t *testing.T) {
		ep, srv := newEndpoint(t, http.StatusOK)
		p := NewPrechecker(PrecheckConfig{BaseURL: srv.URL, Placement: TokenInQuery}, creds, srv.Client())

		require.True(t, p.Check(context.Background(), "abc123").OK())
		assert.Empty(t, ep.auth[0])
		assert.Equal(t, "legacy-tok", ep.queries[0])
	})
}

func TestPrechecker_MediaRequestCarriesSameToken(t *testing.T) {
	for _, placement := range []TokenPlacement{TokenInHeader, TokenInQuery} {
		t.Run(string(placement), func(t *testing.T) {
			ep, srv := newEndpoint(t, http.StatusOK)
			p := NewPrechecker(PrecheckConfig{BaseURL: srv.URL, Placement: placement}, MapCredentials{"access_token": "tok"}, srv.Client())

			require.True(t, p.Check(context.Background(), "abc123").OK())

			req, err := p.MediaRequest(context.Background(), "abc123")
			require.NoError(t, err)
			assert.Equal(t, http.MethodGet, req.Method)

			resp, err := srv.Client().Do(req)
			require.NoError(t, err)
			resp.Body.Close()

			require.Equal(t, 2, ep.callCount())
			assert.Equal(t, ep.auth[0], ep.auth[1])
			assert.Equal(t, ep.queries[0], ep.queries[1])
			assert.Equal(t, ep.paths[0], ep.paths[1])
		})
	}

	p := NewPrechecker(PrecheckConfig{BaseURL: "http://unused"}, MapCredentials{}, nil)
	_, err := p.MediaRequest(context.Background(), "abc123")
	assert.Equal(t, ErrorKindUnauthenticated, ClassifyError(err))
}

func TestPrechecker_NetworkFailures(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		p := NewPrechecker(PrecheckConfig{BaseURL: url}, MapCredentials{"access_token": "tok"}, nil)
		result := p.Check(context.Background(), "abc123")

		assert.Equal(t, ErrorKindUnknown, result.Kind)
		assert.Error(t, result.Err)
		assert.True(t, result.Attempted)
		assert.Zero(t, result.Status)
	})

	t.Run("timeout", func(t *testing.T) {
		ep, srv := newEndpoint(t, http.StatusOK)
		ep.delay = time.Second

		p := NewPrechecker(PrecheckConfig{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, MapCredentials{"access_token": "tok"}, srv.Client())
		result := p.Check(context.Background(), "abc123")

		assert.Equal(t, ErrorKindUnknown, result.Kind)
		assert.Error(t, result.Err)
	})
}
