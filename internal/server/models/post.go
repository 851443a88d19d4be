package models

import "time"

// Post links an author, an uploaded image and its generated caption.
type Post struct {
	ID       string `json:"id"`
	Caption  string `json:"caption"`
	ImageURL string `json:"image_url"`
	// StorageKey is the object key of the image in the media store.
	StorageKey string    `json:"-"`
	AuthorID   string    `json:"author_id"`
	CreatedAt  time.Time `json:"created_at"`
}
