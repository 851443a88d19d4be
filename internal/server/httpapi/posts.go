package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/captionly/internal/common"
	"github.com/dmitrijs2005/captionly/internal/server/models"
	"github.com/labstack/echo/v4"
)

const imageField = "image"

var errUnsupportedImage = errors.New("unsupported image type")

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

func (s *HTTPServer) createPost(c echo.Context) error {
	img, err := readImage(c)
	if err != nil {
		return s.uploadError(c, err)
	}

	userID, _ := c.Get(userIDKey).(string)

	post, err := s.posts.CreatePost(c.Request().Context(), userID, img)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorBadRequest):
			return messageJSON(c, http.StatusBadRequest, "image is required")
		default:
			return s.internalError(c, "failed to create post", err)
		}
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "post created successfully",
		"post":    post,
	})
}

func (s *HTTPServer) generateCaption(c echo.Context) error {
	img, err := readImage(c)
	if err != nil {
		return s.uploadError(c, err)
	}

	text, err := s.posts.GenerateCaption(c.Request().Context(), img)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorBadRequest):
			return messageJSON(c, http.StatusBadRequest, "image is required")
		case errors.Is(err, common.ErrorUpstream):
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"message": "Failed to generate caption",
				"error":   providerMessage(err),
			})
		default:
			return s.internalError(c, "Failed to generate caption", err)
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Caption generated successfully",
		"caption": text,
	})
}

// readImage loads the multipart "image" field into memory. A missing or
// generic content type is replaced by the sniffed one.
func readImage(c echo.Context) (*models.UploadedImage, error) {
	fh, err := c.FormFile(imageField)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return nil, he
		}
		return nil, common.ErrorBadRequest
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	img := &models.UploadedImage{Bytes: data, Size: int64(len(data))}
	if img.Empty() {
		return img, nil
	}

	ct := fh.Header.Get(echo.HeaderContentType)
	if ct == "" || ct == echo.MIMEOctetStream {
		ct = http.DetectContentType(data)
	}
	ct = strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]))
	if !allowedImageTypes[ct] {
		return nil, errUnsupportedImage
	}
	img.ContentType = ct
	return img, nil
}

func (s *HTTPServer) uploadError(c echo.Context, err error) error {
	var he *echo.HTTPError
	switch {
	case errors.Is(err, common.ErrorBadRequest):
		return messageJSON(c, http.StatusBadRequest, "image is required")
	case errors.Is(err, errUnsupportedImage):
		return messageJSON(c, http.StatusBadRequest, "unsupported image type")
	case errors.As(err, &he):
		return he
	default:
		return s.internalError(c, "failed to read upload", err)
	}
}

// providerMessage strips the sentinel prefix so only the provider's own
// message reaches the caller.
func providerMessage(err error) string {
	return strings.TrimPrefix(err.Error(), common.ErrorUpstream.Error()+": ")
}
