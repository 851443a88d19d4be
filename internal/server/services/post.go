package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/captionly/internal/common"
	"github.com/dmitrijs2005/captionly/internal/logging"
	"github.com/dmitrijs2005/captionly/internal/server/config"
	"github.com/dmitrijs2005/captionly/internal/server/models"
	"github.com/dmitrijs2005/captionly/internal/server/providers/caption"
	"github.com/dmitrijs2005/captionly/internal/server/providers/media"
	"github.com/dmitrijs2005/captionly/internal/server/repositories/repomanager"
	"golang.org/x/sync/errgroup"
)

// newObjectKey is a seam for testing media.NewObjectKey.
var newObjectKey = media.NewObjectKey

// PostService creates captioned posts from uploaded images.
type PostService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	captioner      caption.Captioner
	store          media.Store
	captionTimeout time.Duration
	uploadTimeout  time.Duration
	log            logging.Logger
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager, captioner caption.Captioner,
	store media.Store, cfg *config.Config, log logging.Logger) *PostService {
	return &PostService{
		db:             db,
		repomanager:    m,
		captioner:      captioner,
		store:          store,
		captionTimeout: cfg.CaptionTimeout,
		uploadTimeout:  cfg.UploadTimeout,
		log:            log.With("module", "posts"),
	}
}

// CreatePost captions and uploads img concurrently and, when both succeed,
// stores a post for authorID. A failed request leaves no post row and, as
// far as the media store allows, no uploaded object.
func (s *PostService) CreatePost(ctx context.Context, authorID string, img *models.UploadedImage) (*models.Post, error) {
	if img.Empty() {
		return nil, fmt.Errorf("image is required: %w", common.ErrorBadRequest)
	}

	key := newObjectKey(media.ExtensionFor(img.ContentType))

	var text, url string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.caption(gctx, img)
		if err != nil {
			return err
		}
		text = c
		return nil
	})
	g.Go(func() error {
		uctx, cancel := context.WithTimeout(gctx, s.uploadTimeout)
		defer cancel()

		u, err := s.store.Upload(uctx, key, img.Bytes, img.ContentType)
		if err != nil {
			s.log.Error(ctx, "image upload failed", "key", key, "error", err)
			return fmt.Errorf("%w: %w", common.ErrorUpstream, err)
		}
		url = u
		return nil
	})

	if err := g.Wait(); err != nil {
		if url != "" {
			s.discard(ctx, key)
		}
		return nil, err
	}

	repo := s.repomanager.Posts(s.db)
	post, err := repo.Create(ctx, &models.Post{
		Caption:    text,
		ImageURL:   url,
		StorageKey: key,
		AuthorID:   authorID,
	})
	if err != nil {
		s.log.Error(ctx, "saving post failed", "author_id", authorID, "error", err)
		s.discard(ctx, key)
		return nil, fmt.Errorf("error saving post: %w", err)
	}

	s.log.Info(ctx, "post created", "post_id", post.ID, "author_id", authorID)
	return post, nil
}

// GenerateCaption returns a caption for img without storing anything.
func (s *PostService) GenerateCaption(ctx context.Context, img *models.UploadedImage) (string, error) {
	if img.Empty() {
		return "", fmt.Errorf("image is required: %w", common.ErrorBadRequest)
	}
	return s.caption(ctx, img)
}

func (s *PostService) caption(ctx context.Context, img *models.UploadedImage) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, s.captionTimeout)
	defer cancel()

	text, err := s.captioner.Caption(cctx, img.Bytes, img.ContentType)
	if err != nil {
		s.log.Error(ctx, "caption generation failed", "error", err)
		return "", fmt.Errorf("%w: %w", common.ErrorUpstream, err)
	}
	return text, nil
}

// discard removes an uploaded object that no post refers to. The request
// context may already be cancelled, so the delete gets its own deadline.
func (s *PostService) discard(ctx context.Context, key string) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.uploadTimeout)
	defer cancel()

	if err := s.store.Delete(dctx, key); err != nil {
		s.log.Warn(ctx, "orphaned object left in media store", "key", key, "error", err)
	}
}
