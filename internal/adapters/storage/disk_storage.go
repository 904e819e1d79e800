package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kaayakalpa/healthfinder/internal/domain/providers"
)

// DiskStorage writes uploads into a local directory served under publicPrefix
type DiskStorage struct {
	dir          string
	publicPrefix string
}

var _ providers.FileStorage = (*DiskStorage)(nil)

// NewDiskStorage creates the upload directory if needed
func NewDiskStorage(dir, publicPrefix string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskStorage{
		dir:          dir,
		publicPrefix: "/" + strings.Trim(publicPrefix, "/"),
	}, nil
}

// Dir returns the directory uploads are written to
func (s *DiskStorage) Dir() string {
	return s.dir
}

// Save writes content as name and returns its public path.
// Any directory components in name are discarded.
func (s *DiskStorage) Save(ctx context.Context, name string, content io.Reader) (string, error) {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	target := filepath.Join(s.dir, base)
	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", base, err)
	}

	if _, err := io.Copy(file, content); err != nil {
		file.Close()
		os.Remove(target)
		return "", fmt.Errorf("failed to write %s: %w", base, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to write %s: %w", base, err)
	}

	log.Ctx(ctx).Debug().Str("file", base).Msg("stored upload")
	return path.Join(s.publicPrefix, base), nil
}
