package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/client/config"
	"github.com/dmitrijs2005/opsdash/internal/client/metrics"
	"github.com/dmitrijs2005/opsdash/internal/logging"
	"github.com/dmitrijs2005/opsdash/internal/remote"
	"github.com/dmitrijs2005/opsdash/internal/remote/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.LocalDBPath = ":memory:"
	c.WebAddr = "127.0.0.1:0"
	c.SessionSecret = "app-test-secret"
	return c
}

func newTestApp(t *testing.T, m *metrics.Metrics) (*App, *memory.Store) {
	t.Helper()
	store := memory.New()
	store.Insert(remote.AdminUsers, remote.Record{
		"id": "6f1c2a8e-3b7d-4e55-9a0b-1c2d3e4f5a6b", "email": "ops@example.com",
		"password": "hunter2", "created_at": time.Now(), "last_login": nil,
	})
	app, err := newApp(context.Background(), testConfig(), logging.Discard(), m, store)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app, store
}

func TestRunCLI_RestoresPersistedSession(t *testing.T) {
	app, _ := newTestApp(t, nil)
	ctx := context.Background()
	require.NoError(t, app.gate.SignIn(ctx, "ops@example.com", "hunter2"))

	var out bytes.Buffer
	require.NoError(t, app.RunCLI(ctx, strings.NewReader(""), &out))
	assert.Contains(t, out.String(), "Welcome back, ops")
}

func TestRunCLI_PromptsWhenSignedOut(t *testing.T) {
	app, _ := newTestApp(t, nil)

	var out bytes.Buffer
	require.NoError(t, app.RunCLI(context.Background(), strings.NewReader(""), &out))
	assert.Contains(t, out.String(), "Enter email")
}

func TestRunWeb_StopsOnCancel(t *testing.T) {
	app, _ := newTestApp(t, metrics.New())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- app.RunWeb(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunWeb did not return after cancel")
	}
}

func TestNewApp_ObservesRemoteQueries(t *testing.T) {
	m := metrics.New()
	app, _ := newTestApp(t, m)

	require.NoError(t, app.gate.SignIn(context.Background(), "ops@example.com", "hunter2"))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `opsdash_remote_queries_total{op="select",outcome="ok",resource="admin_users"}`)
}

func TestScreenOptions(t *testing.T) {
	app, _ := newTestApp(t, nil)
	opts := app.screenOptions()
	assert.Equal(t, 10, opts.UsersPageSize)
	assert.Equal(t, 20, opts.LogsPageSize)
	assert.Equal(t, 15*time.Second, opts.QueryTimeout)
}
