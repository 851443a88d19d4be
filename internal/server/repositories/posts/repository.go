package posts

import (
	"context"

	"github.com/dmitrijs2005/captionly/internal/server/models"
)

// Repository is the post store. Posts are immutable once created.
type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
}
