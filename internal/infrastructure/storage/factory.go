package storage

import (
	"fmt"

	"go.uber.org/zap"

	appintegration "github.com/erp/storesync/internal/application/integration"
	infraconfig "github.com/erp/storesync/internal/infrastructure/config"
)

// NewMediaResolver builds the resolver selected by storage.type
func NewMediaResolver(cfg *infraconfig.StorageConfig, logger *zap.Logger) (appintegration.MediaURLResolver, error) {
	switch cfg.Type {
	case "s3":
		return NewS3MediaStore(cfg, WithLogger(logger))
	case "static":
		return NewStaticMediaResolver(cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
