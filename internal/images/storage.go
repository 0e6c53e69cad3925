package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/promptpress/promptpress/internal/config"

	log "github.com/sirupsen/logrus"
)

// BaseURL is the logical prefix for materialized blog images. Paths under it
// are safe to serve and safe to delete.
const BaseURL = "/blog_images"

// safeTitleMaxLen caps the sanitized title portion of a filename.
const safeTitleMaxLen = 50

// Storage downloads generated images into a local directory and serves stable
// logical paths for them.
type Storage struct {
	dir        string
	httpClient *http.Client
	nowFn      func() time.Time
}

// NewStorage constructs a Storage and ensures its directory exists.
func NewStorage(cfg config.ImageConfig) (*Storage, error) {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return nil, fmt.Errorf("images: empty directory")
	}
	if errMkdir := os.MkdirAll(dir, 0o755); errMkdir != nil {
		return nil, fmt.Errorf("images: create directory: %w", errMkdir)
	}
	timeout := cfg.DownloadTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Storage{
		dir:        dir,
		httpClient: &http.Client{Timeout: timeout},
		nowFn:      time.Now,
	}, nil
}

// Dir returns the filesystem directory holding materialized images.
func (s *Storage) Dir() string { return s.dir }

// SaveGeneratedImage downloads a remote image and returns its logical path
// under /blog_images. Partial files are removed on failure.
func (s *Storage) SaveGeneratedImage(ctx context.Context, imageURL string, postID uint64, title string) (string, error) {
	filename := fmt.Sprintf("post_%d_%s_%d.jpg", postID, sanitizeTitle(title), s.nowFn().UnixMilli())
	filePath := filepath.Join(s.dir, filename)

	if errDownload := s.download(ctx, imageURL, filePath); errDownload != nil {
		return "", fmt.Errorf("images: download: %w", errDownload)
	}

	log.WithField("file", filename).Info("image downloaded")
	return path.Join(BaseURL, filename), nil
}

// download streams the remote resource to disk, cleaning up on any failure.
func (s *Storage) download(ctx context.Context, imageURL, filePath string) error {
	req, errReq := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if errReq != nil {
		return errReq
	}

	resp, errDo := s.httpClient.Do(req)
	if errDo != nil {
		return errDo
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	file, errCreate := os.Create(filePath)
	if errCreate != nil {
		return errCreate
	}

	if _, errCopy := io.Copy(file, resp.Body); errCopy != nil {
		_ = file.Close()
		_ = os.Remove(filePath)
		return errCopy
	}
	if errClose := file.Close(); errClose != nil {
		_ = os.Remove(filePath)
		return errClose
	}
	return nil
}

// DeleteImage removes a materialized image by its logical path. Paths outside
// the managed namespace are ignored; failures are logged, never returned.
func (s *Storage) DeleteImage(logicalPath string) {
	if s == nil || !strings.HasPrefix(logicalPath, BaseURL+"/") {
		return
	}
	filename := path.Base(logicalPath)
	if errRemove := os.Remove(filepath.Join(s.dir, filename)); errRemove != nil && !os.IsNotExist(errRemove) {
		log.WithError(errRemove).WithField("file", filename).Warn("failed to delete image")
	}
}

// sanitizeTitle reduces a post title to a filesystem-safe fragment.
func sanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
		if b.Len() >= safeTitleMaxLen {
			break
		}
	}
	return b.String()
}
