package server

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubManager struct {
	migrateErr error
	migrated   bool
	closed     bool
}

func (m *stubManager) Users() users.Repository     { return nil }
func (m *stubManager) Ping(context.Context) error { return nil }

func (m *stubManager) RunMigrations(context.Context) error {
	m.migrated = true
	return m.migrateErr
}

func (m *stubManager) Close(context.Context) error {
	m.closed = true
	return nil
}

func stubRepoManager(t *testing.T, m *stubManager, openErr error) {
	t.Helper()
	origNew, origOut := newRepositoryManager, logOutput
	t.Cleanup(func() { newRepositoryManager, logOutput = origNew, origOut })

	logOutput = io.Discard
	newRepositoryManager = func(context.Context, *config.Config) (repomanager.RepositoryManager, error) {
		if openErr != nil {
			return nil, openErr
		}
		return m, nil
	}
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrHealth = "127.0.0.1:0"
	c.HealthCheckInterval = 0
	c.ShutdownTimeout = time.Second
	return c
}

func TestNewApp(t *testing.T) {
	m := &stubManager{}
	stubRepoManager(t, m, nil)

	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)
	assert.True(t, m.migrated)
	assert.NotNil(t, app.userService)
	assert.NotNil(t, app.metrics)
}

func TestNewApp_Errors(t *testing.T) {
	stubRepoManager(t, nil, errors.New("no db"))
	_, err := NewApp(context.Background(), testConfig())
	assert.ErrorContains(t, err, "db init error")

	m := &stubManager{migrateErr: errors.New("bad sql")}
	stubRepoManager(t, m, nil)
	_, err = NewApp(context.Background(), testConfig())
	assert.ErrorContains(t, err, "migrations error")
	assert.True(t, m.closed)
}

func TestRun_StopsOnCancel(t *testing.T) {
	m := &stubManager{}
	stubRepoManager(t, m, nil)

	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.True(t, m.closed)
}
