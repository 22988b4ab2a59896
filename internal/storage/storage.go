package storage

import (
	"context"
	"io"
	"time"
)

// Service stores summary attachments in remote object storage.
type Service interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
	DeletePrefix(ctx context.Context, prefix string) error
}
