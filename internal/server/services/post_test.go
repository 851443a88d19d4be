package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/captionly/internal/common"
	"github.com/dmitrijs2005/captionly/internal/logging"
	"github.com/dmitrijs2005/captionly/internal/server/config"
	"github.com/dmitrijs2005/captionly/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "posts/2026/10/16/00000000-0000-4000-8000-000000000000.jpg"

type postFixture struct {
	svc       *PostService
	captioner *fakeCaptioner
	store     *fakeStore
	posts     *fakePostsRepo
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()

	orig := newObjectKey
	newObjectKey = func(ext string) string { return testKey }
	t.Cleanup(func() { newObjectKey = orig })

	db, _ := newSQLMockDB(t)
	f := &postFixture{
		captioner: &fakeCaptioner{text: "Morning brew ☕ #coffee"},
		store:     newFakeStore(),
		posts:     &fakePostsRepo{},
	}
	cfg := &config.Config{CaptionTimeout: time.Second, UploadTimeout: time.Second}
	f.svc = NewPostService(db, &fakeRepoManager{posts: f.posts}, f.captioner, f.store, cfg, logging.Nop())
	return f
}

func jpeg() *models.UploadedImage {
	b := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
	return &models.UploadedImage{Bytes: b, ContentType: "image/jpeg", Size: int64(len(b))}
}

func TestCreatePost_Success(t *testing.T) {
	f := newPostFixture(t)

	p, err := f.svc.CreatePost(context.Background(), "u-1", jpeg())
	require.NoError(t, err)

	assert.Equal(t, "p-1", p.ID)
	assert.Equal(t, "Morning brew ☕ #coffee", p.Caption)
	assert.Equal(t, "http://media.local/captionly/"+testKey, p.ImageURL)
	assert.Equal(t, testKey, p.StorageKey)
	assert.Equal(t, "u-1", p.AuthorID)

	require.Len(t, f.posts.created, 1)
	assert.Contains(t, f.store.uploaded, testKey)
	assert.Empty(t, f.store.deleted)
}

func TestCreatePost_EmptyImage(t *testing.T) {
	f := newPostFixture(t)

	for _, img := range []*models.UploadedImage{nil, {ContentType: "image/png"}} {
		_, err := f.svc.CreatePost(context.Background(), "u-1", img)
		assert.ErrorIs(t, err, common.ErrorBadRequest)
	}
	assert.Zero(t, f.captioner.calls)
	assert.Empty(t, f.store.uploaded)
	assert.Empty(t, f.posts.created)
}

func TestCreatePost_UploadFails(t *testing.T) {
	f := newPostFixture(t)
	f.store.uploadErr = errors.New("bucket missing")

	_, err := f.svc.CreatePost(context.Background(), "u-1", jpeg())
	assert.ErrorIs(t, err, common.ErrorUpstream)
	assert.ErrorContains(t, err, "bucket missing")
	assert.Empty(t, f.posts.created)
	assert.Empty(t, f.store.deleted)
}

func TestCreatePost_CaptionFailsDeletesUpload(t *testing.T) {
	f := newPostFixture(t)
	f.captioner.err = errors.New("model overloaded")

	_, err := f.svc.CreatePost(context.Background(), "u-1", jpeg())
	assert.ErrorIs(t, err, common.ErrorUpstream)
	assert.Empty(t, f.posts.created)

	// The upload may lose the race with the failing caption and never
	// happen; when it did happen the object must be gone.
	assert.NotContains(t, f.store.uploaded, testKey)
	if len(f.store.deleted) > 0 {
		assert.Equal(t, []string{testKey}, f.store.deleted)
	}
}

func TestCreatePost_CaptionTimeout(t *testing.T) {
	f := newPostFixture(t)
	f.captioner.block = true
	f.svc.captionTimeout = 20 * time.Millisecond

	_, err := f.svc.CreatePost(context.Background(), "u-1", jpeg())
	assert.ErrorIs(t, err, common.ErrorUpstream)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, f.posts.created)
	assert.NotContains(t, f.store.uploaded, testKey)
}

func TestCreatePost_InsertFailsDeletesUpload(t *testing.T) {
	f := newPostFixture(t)
	f.posts.createErr = errors.New("db down")

	_, err := f.svc.CreatePost(context.Background(), "u-1", jpeg())
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorUpstream)
	assert.Equal(t, []string{testKey}, f.store.deleted)
}

func TestCreatePost_CleanupFailureStillReportsOriginalError(t *testing.T) {
	f := newPostFixture(t)
	f.posts.createErr = errors.New("db down")
	f.store.deleteErr = errors.New("delete denied")

	_, err := f.svc.CreatePost(context.Background(), "u-1", jpeg())
	assert.ErrorContains(t, err, "db down")
	assert.NotContains(t, err.Error(), "delete denied")
}

func TestGenerateCaption(t *testing.T) {
	f := newPostFixture(t)

	c, err := f.svc.GenerateCaption(context.Background(), jpeg())
	require.NoError(t, err)
	assert.Equal(t, "Morning brew ☕ #coffee", c)

	assert.Empty(t, f.store.uploaded)
	assert.Empty(t, f.posts.created)
}

func TestGenerateCaption_Errors(t *testing.T) {
	f := newPostFixture(t)

	_, err := f.svc.GenerateCaption(context.Background(), &models.UploadedImage{})
	assert.ErrorIs(t, err, common.ErrorBadRequest)
	assert.Zero(t, f.captioner.calls)

	f.captioner.err = errors.New("API key not valid")
	_, err = f.svc.GenerateCaption(context.Background(), jpeg())
	assert.ErrorIs(t, err, common.ErrorUpstream)
	assert.ErrorContains(t, err, "API key not valid")
}
