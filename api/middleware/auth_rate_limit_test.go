package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{counts: map[string]int64{}}
}

func (s *memoryStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key]++
	return s.counts[key], nil
}

func loginRequest(username, ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"`+username+`","password":"pw"}`))
	req.Header.Set("X-Forwarded-For", ip)
	return req
}

func passThroughHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRateLimitPerUsername(t *testing.T) {
	store := newMemoryStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 2)

	var calls int
	handler := AuthRateLimit(policy, store, testLogger())(passThroughHandler(&calls))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("alice", "10.0.0.1"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("alice", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 2, calls)

	// A different username has its own counter.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("bob", "10.0.0.1"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRateLimitUsernameIsCaseInsensitive(t *testing.T) {
	store := newMemoryStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 1)
	handler := AuthRateLimit(policy, store, testLogger())(passThroughHandler(new(int)))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("Alice", "10.0.0.1"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("  alice ", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAuthRateLimitPerIP(t *testing.T) {
	store := newMemoryStore()
	policy := NewAuthRateLimitPolicy("register", time.Minute, 1, 0)
	handler := AuthRateLimit(policy, store, testLogger())(passThroughHandler(new(int)))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("alice", "10.0.0.1"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("bob", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("carol", "10.0.0.2"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRateLimitBodyStaysReadable(t *testing.T) {
	store := newMemoryStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 5)

	var seen string
	handler := AuthRateLimit(policy, store, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(body)
		seen = string(body)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("alice", "10.0.0.1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, seen, `"username":"alice"`)
}

func TestAuthRateLimitDisabledPassesThrough(t *testing.T) {
	var calls int
	next := passThroughHandler(&calls)

	// Nil store means no redis was configured.
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 5, 5), nil, testLogger())(next)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("alice", "10.0.0.1"))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Zero limits disable the policy outright.
	handler = AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 0, 0), newMemoryStore(), testLogger())(next)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("alice", "10.0.0.1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, calls)
}
