package repository

import (
	"context"

	"github.com/veranemoloko/mdk-downloader/internal/domain"
)

// ProgressRepo defines the interface for the durable progress snapshot.
type ProgressRepo interface {
	Load(ctx context.Context) (domain.ProgressRecord, error)
	Save(ctx context.Context, record domain.ProgressRecord) error
}
