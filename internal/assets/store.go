package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

const imageBaseURL = "https://image.tmdb.org/t/p/w500"

// Store downloads and removes poster/backdrop image files. Callers treat
// it as best-effort: a failed download never rolls back catalog state.
type Store struct {
	dir    string
	client *http.Client
	logger *logrus.Logger
}

func NewStore(dir string, logger *logrus.Logger) *Store {
	return &Store{
		dir:    dir,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// DownloadImages fetches the poster and backdrop for the given provider
// image paths. Empty paths are skipped. The first failure is returned but
// does not prevent the other download from being attempted.
func (s *Store) DownloadImages(ctx context.Context, posterPath, backdropPath string) error {
	var firstErr error
	for _, p := range []string{posterPath, backdropPath} {
		if p == "" {
			continue
		}
		if err := s.download(ctx, p); err != nil {
			s.logger.WithError(err).WithField("path", p).Warn("image download failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// RemoveImages deletes the local files for the given image paths.
// Missing files are not an error.
func (s *Store) RemoveImages(posterPath, backdropPath string) error {
	var firstErr error
	for _, p := range []string{posterPath, backdropPath} {
		if p == "" {
			continue
		}
		if err := os.Remove(s.localPath(p)); err != nil && !os.IsNotExist(err) {
			s.logger.WithError(err).WithField("path", p).Warn("image removal failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *Store) localPath(imagePath string) string {
	return filepath.Join(s.dir, filepath.Base(imagePath))
}

func (s *Store) download(ctx context.Context, imagePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageBaseURL+imagePath, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image request returned %d", resp.StatusCode)
	}

	f, err := os.Create(s.localPath(imagePath))
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(f.Name())
		return err
	}
	return nil
}
