// Package posts persists captioned image posts in PostgreSQL.
package posts

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/captionly/internal/dbx"
	"github.com/dmitrijs2005/captionly/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create stores post and fills in the generated id and creation time.
func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query :=
		`INSERT INTO posts (caption, image_url, storage_key, author_id)
         VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		post.Caption, post.ImageURL, post.StorageKey, post.AuthorID).Scan(&post.ID, &post.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}
