package services

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrUnsafePath is returned when a folder or filename would resolve to a
// location outside the upload base directory.
var ErrUnsafePath = errors.New("image path escapes the upload directory")

// ImageStore persists uploaded images and hands back serveable URLs.
type ImageStore interface {
	Save(folder, filename string, data []byte) (string, error)
	Remove(url string) error
	Replace(oldURL, folder, filename string, data []byte) (string, error)
}

// LocalImageStore keeps images on the local filesystem under baseDir and
// serves them under baseURL.
type LocalImageStore struct {
	baseDir string
	baseURL string
	log     *zap.Logger
}

// NewLocalImageStore constructs a LocalImageStore.
func NewLocalImageStore(baseDir, baseURL string, log *zap.Logger) *LocalImageStore {
	return &LocalImageStore{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     log,
	}
}

// Save writes the image and returns its URL. Paths that resolve outside
// baseDir are rejected with ErrUnsafePath, so caller-derived folder names
// cannot write through the directory boundary.
func (s *LocalImageStore) Save(folder, filename string, data []byte) (string, error) {
	rel := path.Join(folder, filename)
	full, err := s.resolve(rel)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}

	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}

	return s.baseURL + "/" + rel, nil
}

// Remove deletes the image behind a URL previously returned by Save.
// Unknown URLs, URLs resolving outside baseDir and already-deleted files
// are not errors.
func (s *LocalImageStore) Remove(url string) error {
	if url == "" || !strings.HasPrefix(url, s.baseURL+"/") {
		return nil
	}

	rel := strings.TrimPrefix(url, s.baseURL+"/")
	full, err := s.resolve(rel)
	if err != nil {
		return nil
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

// resolve joins rel onto baseDir and verifies the cleaned result is still
// inside it.
func (s *LocalImageStore) resolve(rel string) (string, error) {
	full := filepath.Join(s.baseDir, filepath.FromSlash(rel))
	base := filepath.Clean(s.baseDir)
	if full == base || !strings.HasPrefix(full, base+string(os.PathSeparator)) {
		return "", ErrUnsafePath
	}
	return full, nil
}

// Replace stores the new image first and only then removes the old one, so
// a failed upload leaves the previous image intact and referenced. A failed
// cleanup of the old file is logged but does not fail the replacement.
func (s *LocalImageStore) Replace(oldURL, folder, filename string, data []byte) (string, error) {
	newURL, err := s.Save(folder, filename, data)
	if err != nil {
		return "", err
	}

	if oldURL != "" && oldURL != newURL {
		if err := s.Remove(oldURL); err != nil {
			s.log.Warn("failed to remove replaced image",
				zap.String("url", oldURL),
				zap.Error(err))
		}
	}

	return newURL, nil
}
