package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/captionly/internal/client/session"
)

// Caption prints a caption preview for the image at path.
func (a *App) Caption(ctx context.Context, path string) error {
	data, contentType, err := readImageFile(path)
	if err != nil {
		return err
	}
	res, err := a.api.GenerateCaption(ctx, filepath.Base(path), contentType, data)
	if err != nil {
		return err
	}
	a.printResult(res)
	return nil
}

// Post publishes the image at path as the logged-in user.
func (a *App) Post(ctx context.Context, path string) error {
	token, err := a.session.Load()
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return errors.New("not logged in, run 'login' first")
		}
		return err
	}

	data, contentType, err := readImageFile(path)
	if err != nil {
		return err
	}
	res, err := a.api.CreatePost(ctx, token, filepath.Base(path), contentType, data)
	if err != nil {
		return err
	}
	a.printResult(res)
	return nil
}

func readImageFile(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%s is empty", path)
	}
	return data, http.DetectContentType(data), nil
}
