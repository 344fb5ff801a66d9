package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	mu           sync.Mutex
	accessToken  string
	refreshToken string
	setCalls     int
	expiredCalls int
}

func (f *fakeAuth) hooks() Hooks {
	return Hooks{
		GetAccessToken: func() string {
			f.mu.Lock()
			defer f.mu.Unlock()
			return f.accessToken
		},
		GetRefreshToken: func() string {
			f.mu.Lock()
			defer f.mu.Unlock()
			return f.refreshToken
		},
		SetTokens: func(tokens Tokens) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.accessToken = tokens.AccessToken
			f.refreshToken = tokens.RefreshToken
			f.setCalls++
		},
		OnSessionExpired: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.expiredCalls++
		},
	}
}

func (f *fakeAuth) expired() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expiredCalls
}

func newTestClient(t *testing.T, serverURL string, auth *fakeAuth) *Client {
	t.Helper()
	return NewClient(serverURL, 5*time.Second, auth.hooks(), nil)
}

func TestSingleFlightRefresh(t *testing.T) {
	const workers = 8

	var refreshCalls atomic.Int64
	var arrived sync.WaitGroup
	arrived.Add(workers)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		// Keep the flight open long enough for every 401 observer to join it.
		time.Sleep(200 * time.Millisecond)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "old-refresh", body["refreshToken"])
		_ = json.NewEncoder(w).Encode(Tokens{AccessToken: "new-access", RefreshToken: "new-refresh"})
	})
	mux.HandleFunc("/risks/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer new-access" {
			_ = json.NewEncoder(w).Encode([]string{"ok"})
			return
		}
		// Hold every request until all workers are in flight, so they all
		// observe the 401 before the refresh resolves.
		arrived.Done()
		arrived.Wait()
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	auth := &fakeAuth{accessToken: "old-access", refreshToken: "old-refresh"}
	client := newTestClient(t, server.URL, auth)

	var done sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		done.Add(1)
		go func(index int) {
			defer done.Done()
			var out []string
			errs[index] = client.Get(context.Background(), "/risks/", &out)
		}(i)
	}
	done.Wait()

	for i, err := range errs {
		require.NoError(t, err, "request %d", i)
	}
	assert.Equal(t, int64(1), refreshCalls.Load(), "exactly one refresh call")
	assert.Equal(t, "new-access", auth.hooks().GetAccessToken())
	assert.Equal(t, 0, auth.expired())
}

func TestNoRefreshLoop(t *testing.T) {
	var refreshCalls, riskCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		_ = json.NewEncoder(w).Encode(Tokens{AccessToken: "new-access", RefreshToken: "new-refresh"})
	})
	mux.HandleFunc("/risks/", func(w http.ResponseWriter, r *http.Request) {
		riskCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	auth := &fakeAuth{accessToken: "old-access", refreshToken: "old-refresh"}
	client := newTestClient(t, server.URL, auth)

	err := client.Get(context.Background(), "/risks/", nil)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	// One original attempt, one retry, never a third.
	assert.Equal(t, int64(2), riskCalls.Load())
	assert.Equal(t, int64(1), refreshCalls.Load())
}

func TestAuthEndpointsNeverRefresh(t *testing.T) {
	var refreshCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	auth := &fakeAuth{accessToken: "access", refreshToken: "refresh"}
	client := newTestClient(t, server.URL, auth)

	for _, path := range []string{"/auth/login", "/auth/logout"} {
		err := client.Post(context.Background(), path, map[string]string{}, nil)
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr, path)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode, path)
	}

	assert.Equal(t, int64(0), refreshCalls.Load())
	assert.Equal(t, 0, auth.expired())
}

func TestMissingRefreshTokenExpiresSession(t *testing.T) {
	var refreshCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})
	mux.HandleFunc("/risks/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	auth := &fakeAuth{accessToken: "stale-access"}
	client := newTestClient(t, server.URL, auth)

	err := client.Get(context.Background(), "/risks/", nil)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, int64(0), refreshCalls.Load())
	assert.Equal(t, 1, auth.expired())
}

func TestRefreshFailurePropagatesRefreshError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid refresh token"})
	})
	mux.HandleFunc("/risks/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	auth := &fakeAuth{accessToken: "stale-access", refreshToken: "stale-refresh"}
	client := newTestClient(t, server.URL, auth)

	err := client.Get(context.Background(), "/risks/", nil)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid refresh token", apiErr.Message)
	assert.Equal(t, 1, auth.expired())
}

func TestTransportErrorIsNotRetried(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	serverURL := server.URL
	server.Close()

	auth := &fakeAuth{}
	client := newTestClient(t, serverURL, auth)

	err := client.Get(context.Background(), "/risks/", nil)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "cannot reach server, check that the backend is running", UserMessage(err, "fallback"))
}

func TestBearerAndRequestIDHeaders(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	auth := &fakeAuth{accessToken: "token-123"}
	client := newTestClient(t, server.URL, auth)

	require.NoError(t, client.Get(context.Background(), "/documents/", nil))
	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"backend message", &Error{StatusCode: 400, Message: "title required"}, "title required"},
		{"forbidden", &Error{StatusCode: 403, Message: "nope"}, "you do not have permission to access this resource"},
		{"not found", &Error{StatusCode: 404}, "resource not found"},
		{"blank message", &Error{StatusCode: 500}, "fallback"},
		{"other error", errors.New("boom"), "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err, "fallback"))
		})
	}
}

func TestParseErrorPrefersErrorThenDetail(t *testing.T) {
	assert.Equal(t, "bad", parseError(400, []byte(`{"error":"bad"}`)).Message)
	assert.Equal(t, "missing", parseError(400, []byte(`{"detail":"missing"}`)).Message)
	assert.Equal(t, "", parseError(400, []byte(`not json`)).Message)
}
