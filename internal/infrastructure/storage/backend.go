package storage

import (
	"context"
	"fmt"

	"github.com/talentgate/account-service/internal/infrastructure/config"
)

// New builds the Storage for the backend selected in config.
func New(ctx context.Context, cfg config.BlobConfig) (*Storage, error) {
	switch cfg.Backend {
	case "", "minio":
		backend, err := NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		return NewStorage(backend), nil
	case "gcs":
		backend, err := NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, fmt.Errorf("gcs: %w", err)
		}
		return NewStorage(backend), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}
