package resume

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/V4T54L/lead-intake/internal/domain"
	"github.com/V4T54L/lead-intake/internal/pkg/config"
)

// Open builds the ResumeStorage named by cfg.ResumeDriver.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.ResumeStorage, error) {
	switch cfg.ResumeDriver {
	case config.ResumeFS:
		return NewFSStorage(cfg.UploadDir, cfg.UploadURLPrefix, logger)
	case config.ResumeS3:
		return NewS3Storage(ctx, S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			PathStyle:       cfg.S3PathStyle,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown resume driver %q", cfg.ResumeDriver)
	}
}
