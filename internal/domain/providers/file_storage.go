package providers

import (
	"context"
	"io"
)

// FileStorage persists uploaded documents and returns the public path they are served from
type FileStorage interface {
	Save(ctx context.Context, name string, content io.Reader) (string, error)
}
