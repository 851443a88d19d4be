package services

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dmitrijs2005/captionly/internal/common"
	"github.com/dmitrijs2005/captionly/internal/dbx"
	"github.com/dmitrijs2005/captionly/internal/server/models"
	"github.com/dmitrijs2005/captionly/internal/server/repositories/posts"
	"github.com/dmitrijs2005/captionly/internal/server/repositories/users"
)

// --- repositories ---

type fakeRepoManager struct {
	users *fakeUsersRepo
	posts *fakePostsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository { return m.users }
func (m *fakeRepoManager) Posts(dbx.DBTX) posts.Repository { return m.posts }

type fakeUsersRepo struct {
	byName    map[string]*models.User
	getErr    error
	createErr error
	created   []*models.User
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byName: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byName[u.UserName]; ok {
		return nil, common.ErrorConflict
	}
	u.ID = "u-" + u.UserName
	f.byName[u.UserName] = u
	f.created = append(f.created, u)
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[userName]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakePostsRepo struct {
	createErr error
	created   []*models.Post
}

func (f *fakePostsRepo) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	p.ID = "p-1"
	f.created = append(f.created, p)
	return p, nil
}

// --- providers ---

type fakeCaptioner struct {
	text  string
	err   error
	block bool

	mu    sync.Mutex
	calls int
}

func (f *fakeCaptioner) Caption(ctx context.Context, image []byte, mimeType string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

type fakeStore struct {
	uploadErr error
	deleteErr error

	mu       sync.Mutex
	uploaded map[string][]byte
	deleted  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploaded: map[string][]byte{}}
}

func (f *fakeStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded[key] = data
	return "http://media.local/captionly/" + key, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.uploaded, key)
	return nil
}
