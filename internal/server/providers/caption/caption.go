// Package caption obtains short social-media captions for images from a
// generative model.
package caption

import "context"

// Captioner returns a caption for the image bytes of the given MIME type.
type Captioner interface {
	Caption(ctx context.Context, image []byte, mimeType string) (string, error)
}
