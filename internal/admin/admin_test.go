package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePurger struct {
	err    error
	called bool
}

func (f *fakePurger) ClearAlerts(ctx context.Context) error {
	f.called = true
	return f.err
}

type fakeHub struct{}

func (fakeHub) Stats() map[string]any {
	return map[string]any{"connectedClients": 3}
}

func newRouter(secret string, purger *fakePurger) *gin.Engine {
	s := New(secret, purger, fakeHub{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := gin.New()
	s.Register(r.Group("/admin"))
	return r
}

func do(r *gin.Engine, method, path, secret string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if secret != "" {
		req.Header.Set("X-Admin-Secret", secret)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestClearAlerts_WithSecret(t *testing.T) {
	purger := &fakePurger{}
	r := newRouter("s3cret", purger)

	w := do(r, http.MethodDelete, "/admin/alerts", "s3cret")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, purger.called)
}

func TestClearAlerts_WrongSecret(t *testing.T) {
	purger := &fakePurger{}
	r := newRouter("s3cret", purger)

	w := do(r, http.MethodDelete, "/admin/alerts", "nope")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, purger.called, "purge must not run without valid secret")
}

func TestClearAlerts_NoSecretConfigured(t *testing.T) {
	purger := &fakePurger{}
	r := newRouter("", purger)

	w := do(r, http.MethodDelete, "/admin/alerts", "anything")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, purger.called)
}

func TestClearAlerts_BackendFailure(t *testing.T) {
	purger := &fakePurger{err: errors.New("down")}
	r := newRouter("s3cret", purger)

	w := do(r, http.MethodDelete, "/admin/alerts", "s3cret")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestFeedStats(t *testing.T) {
	r := newRouter("s3cret", &fakePurger{})

	w := do(r, http.MethodGet, "/admin/feed/stats", "s3cret")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "connectedClients")
}
