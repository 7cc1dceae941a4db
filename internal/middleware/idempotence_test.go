package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pkgredis "github.com/stylescanner/server/internal/pkg/redis"
)

type memStore struct {
	mu   sync.Mutex
	vals map[string]string
	ttls map[string]time.Duration
	err  error
}

func newMemStore() *memStore {
	return &memStore{vals: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) SetNX(_ context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.vals[key]; ok {
		return false, nil
	}
	m.vals[key], m.ttls[key] = value.(string), ttl
	return true, nil
}

func (m *memStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key], m.ttls[key] = value.(string), ttl
	return nil
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vals[key], nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.vals, k)
		delete(m.ttls, k)
	}
	return nil
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.vals)
}

type idemEnv struct {
	router *gin.Engine
	calls  int
	status int
}

func newIdemEnv(store IdempotenceStore) *idemEnv {
	e := &idemEnv{status: http.StatusCreated}
	e.router = gin.New()
	e.router.POST("/api/generate-insight", Idempotence(store), func(c *gin.Context) {
		e.calls++
		c.JSON(e.status, gin.H{"n": e.calls})
	})
	e.router.GET("/api/myinsights", Idempotence(store), func(c *gin.Context) {
		e.calls++
		c.Status(http.StatusOK)
	})
	return e
}

func (e *idemEnv) post(body, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/generate-insight", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer token-a")
	if header != "" {
		req.Header.Set(idempotenceHeader, header)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestIdempotence_ReplayAfterSuccess(t *testing.T) {
	store := newMemStore()
	e := newIdemEnv(store)

	require.Equal(t, http.StatusCreated, e.post(`{"imageSource":"abc"}`, "").Code)

	w := e.post(`{"imageSource":"abc"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"The same request can only be sent once within 60 seconds"}`, w.Body.String())
	assert.Equal(t, 1, e.calls)

	for k, v := range store.vals {
		assert.True(t, strings.HasPrefix(k, idempotencePrefix))
		assert.Equal(t, idempotenceDone, v)
		assert.Equal(t, idempotenceTTL, store.ttls[k])
	}

	// a different body is a different request
	assert.Equal(t, http.StatusCreated, e.post(`{"imageSource":"xyz"}`, "").Code)
	assert.Equal(t, 2, e.calls)
}

func TestIdempotence_InFlight(t *testing.T) {
	store := newMemStore()
	store.vals[idempotencePrefix+"req-1"] = idempotencePending
	e := newIdemEnv(store)

	w := e.post(`{}`, "req-1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"The same request is already being processed"}`, w.Body.String())
	assert.Zero(t, e.calls)
}

func TestIdempotence_FailureReleasesKey(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusTooManyRequests, http.StatusInternalServerError} {
		store := newMemStore()
		e := newIdemEnv(store)
		e.status = status

		assert.Equal(t, status, e.post(`{"topic":"linen"}`, "").Code)
		assert.Zero(t, store.len())

		e.status = http.StatusCreated
		assert.Equal(t, http.StatusCreated, e.post(`{"topic":"linen"}`, "").Code)
		assert.Equal(t, 2, e.calls)
	}
}

func TestIdempotence_PassThrough(t *testing.T) {
	store := newMemStore()
	e := newIdemEnv(store)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/myinsights", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 2, e.calls)

	// store failures never block the request
	store.err = errors.New("connection refused")
	assert.Equal(t, http.StatusCreated, e.post(`{"a":1}`, "").Code)
	assert.Equal(t, http.StatusCreated, e.post(`{"a":1}`, "").Code)

	// without redis every request goes through
	var rc *pkgredis.Client
	e = newIdemEnv(rc)
	assert.Equal(t, http.StatusCreated, e.post(`{"a":1}`, "").Code)
	assert.Equal(t, http.StatusCreated, e.post(`{"a":1}`, "").Code)
	assert.Equal(t, 2, e.calls)

	e = newIdemEnv(nil)
	assert.Equal(t, http.StatusCreated, e.post(`{"a":1}`, "").Code)
	assert.Equal(t, http.StatusCreated, e.post(`{"a":1}`, "").Code)
}
