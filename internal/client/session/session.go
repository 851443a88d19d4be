// Package session keeps the CLI's session token between invocations.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/captionly/internal/filex"
)

const fileName = "session"

// ErrNoSession is returned by Load when nobody is logged in.
var ErrNoSession = errors.New("not logged in")

// Store is a token file inside a private directory under the working
// directory.
type Store struct {
	dirName string
}

func NewStore(dirName string) *Store {
	return &Store{dirName: dirName}
}

func (s *Store) path() (string, error) {
	dir, err := filex.EnsureSubdDir(s.dirName)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

func (s *Store) Save(token string) error {
	p, err := s.path()
	if err != nil {
		return err
	}
	return filex.WritePrivateFile(p, []byte(token))
}

func (s *Store) Load() (string, error) {
	p, err := s.path()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNoSession
		}
		return "", fmt.Errorf("read session: %w", err)
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", ErrNoSession
	}
	return token, nil
}

// Clear forgets the stored token. Clearing an absent session is not an error.
func (s *Store) Clear() error {
	p, err := s.path()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
