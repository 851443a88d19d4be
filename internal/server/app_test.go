package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/captionly/internal/dbx"
	"github.com/dmitrijs2005/captionly/internal/server/config"
	"github.com/dmitrijs2005/captionly/internal/server/providers/caption"
	"github.com/dmitrijs2005/captionly/internal/server/providers/media"
	"github.com/dmitrijs2005/captionly/internal/server/repositories/posts"
	"github.com/dmitrijs2005/captionly/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/captionly/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepoManager struct {
	migrateErr error
	migrated   bool
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error {
	m.migrated = true
	return m.migrateErr
}
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository { return users.NewPostgresRepository(db) }
func (m *fakeRepoManager) Posts(db dbx.DBTX) posts.Repository { return posts.NewPostgresRepository(db) }

type nopCaptioner struct{}

func (nopCaptioner) Caption(context.Context, []byte, string) (string, error) { return "c", nil }

type nopStore struct{}

func (nopStore) Upload(context.Context, string, []byte, string) (string, error) { return "u", nil }
func (nopStore) Delete(context.Context, string) error { return nil }

// stubProviders replaces every constructor seam and restores them on cleanup.
func stubProviders(t *testing.T, rm *fakeRepoManager) sqlmock.Sqlmock {
	t.Helper()

	origOpen, origRM, origCap, origStore := openDB, newRepositoryManager, newCaptioner, newMediaStore
	t.Cleanup(func() {
		openDB, newRepositoryManager, newCaptioner, newMediaStore = origOpen, origRM, origCap, origStore
	})

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	openDB = func(string) (*sql.DB, error) { return db, nil }
	newRepositoryManager = func() repomanager.RepositoryManager { return rm }
	newCaptioner = func(context.Context, *config.Config) (caption.Captioner, error) { return nopCaptioner{}, nil }
	newMediaStore = func(context.Context, *config.Config) (media.Store, error) { return nopStore{}, nil }
	return mock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.EndpointAddrHTTP = "127.0.0.1:0"
	cfg.LogLevel = "error"
	return cfg
}

func TestNewApp_Success(t *testing.T) {
	rm := &fakeRepoManager{}
	stubProviders(t, rm)

	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)
	assert.True(t, rm.migrated)
	assert.NotNil(t, app.userService)
	assert.NotNil(t, app.postService)
}

func TestNewApp_Errors(t *testing.T) {
	t.Run("open", func(t *testing.T) {
		stubProviders(t, &fakeRepoManager{})
		openDB = func(string) (*sql.DB, error) { return nil, errors.New("bad dsn") }
		_, err := NewApp(context.Background(), testConfig())
		assert.ErrorContains(t, err, "db init error")
	})

	t.Run("migrations", func(t *testing.T) {
		mock := stubProviders(t, &fakeRepoManager{migrateErr: errors.New("dirty")})
		mock.ExpectClose()
		_, err := NewApp(context.Background(), testConfig())
		assert.ErrorContains(t, err, "migration error")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("captioner", func(t *testing.T) {
		stubProviders(t, &fakeRepoManager{})
		newCaptioner = func(context.Context, *config.Config) (caption.Captioner, error) {
			return nil, errors.New("no api key")
		}
		_, err := NewApp(context.Background(), testConfig())
		assert.ErrorContains(t, err, "caption provider init error")
	})

	t.Run("media", func(t *testing.T) {
		stubProviders(t, &fakeRepoManager{})
		newMediaStore = func(context.Context, *config.Config) (media.Store, error) {
			return nil, errors.New("no region")
		}
		_, err := NewApp(context.Background(), testConfig())
		assert.ErrorContains(t, err, "media store init error")
	})
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	mock := stubProviders(t, &fakeRepoManager{})
	mock.ExpectClose()

	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
