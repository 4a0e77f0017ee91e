// Package storage keeps course images on the local filesystem. Files are
// served by the HTTP layer under /media/.
package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/coursehub/marketplace/internal/core/domain"
	"github.com/coursehub/marketplace/internal/core/ports"
)

const defaultMaxBytes = 5 << 20

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// LocalImageStore writes images as <dir>/<uuid><ext>.
type LocalImageStore struct {
	dir      string
	baseURL  string
	maxBytes int64
}

func NewLocalImageStore(dir, baseURL string, maxBytes int64) (*LocalImageStore, error) {
	if dir == "" {
		return nil, errors.New("image store: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("image store: %w", err)
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &LocalImageStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/"), maxBytes: maxBytes}, nil
}

// Dir is the directory served as /media.
func (s *LocalImageStore) Dir() string { return s.dir }

// Save sniffs the content, rejects anything but png, jpeg or webp and writes
// the file. Oversized uploads are removed and reported as domain.ErrInvalidImage.
func (s *LocalImageStore) Save(_ context.Context, up ports.ImageUpload) (domain.Image, error) {
	br := bufio.NewReaderSize(up.Reader, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return domain.Image{}, fmt.Errorf("image store: read: %w", err)
	}
	ext, ok := extensions[http.DetectContentType(head)]
	if !ok {
		return domain.Image{}, fmt.Errorf("%w: content is not a png, jpeg or webp image", domain.ErrInvalidImage)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return domain.Image{}, fmt.Errorf("image store: create: %w", err)
	}

	n, copyErr := io.Copy(f, io.LimitReader(br, s.maxBytes+1))
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		return domain.Image{}, fmt.Errorf("image store: write: %w", copyErr)
	case closeErr != nil:
		_ = os.Remove(path)
		return domain.Image{}, fmt.Errorf("image store: close: %w", closeErr)
	case n > s.maxBytes:
		_ = os.Remove(path)
		return domain.Image{}, fmt.Errorf("%w: larger than %d bytes", domain.ErrInvalidImage, s.maxBytes)
	}

	return domain.Image{PublicID: name, URL: s.baseURL + "/media/" + name}, nil
}

// Delete removes the image. A missing file is not an error.
func (s *LocalImageStore) Delete(_ context.Context, publicID string) error {
	name := filepath.Base(publicID)
	if name != publicID || name == "." || name == ".." {
		return fmt.Errorf("image store: invalid public id %q", publicID)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("image store: delete: %w", err)
	}
	return nil
}
