package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/veranemoloko/mdk-downloader/internal/domain"
	errpkg "github.com/veranemoloko/mdk-downloader/internal/errors"
)

// ProgressStorage keeps the progress record as a single JSON file.
type ProgressStorage struct {
	file   string
	logger *slog.Logger
}

// NewProgressStorage creates a ProgressStorage backed by filePath.
func NewProgressStorage(filePath string, logger *slog.Logger) *ProgressStorage {
	return &ProgressStorage{
		file:   filepath.Clean(filePath),
		logger: logger,
	}
}

// Path returns the snapshot location.
func (r *ProgressStorage) Path() string {
	return r.file
}

// Load reads the snapshot. A missing, empty, unreadable or corrupt file
// yields an empty record and no error.
func (r *ProgressStorage) Load(ctx context.Context) (domain.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if isFileNotExist(r.file) {
		r.logger.Info("progress file does not exist, starting with empty state", "file_path", r.file)
		return domain.NewProgressRecord(), nil
	}

	data, err := os.ReadFile(r.file)
	if err != nil {
		r.logger.Warn("progress file unreadable, starting with empty state", "file_path", r.file, "error", err)
		return domain.NewProgressRecord(), nil
	}

	if len(data) == 0 {
		r.logger.Warn("progress file is empty", "file_path", r.file)
		return domain.NewProgressRecord(), nil
	}

	var record domain.ProgressRecord
	if err := json.Unmarshal(data, &record); err != nil {
		r.logger.Warn("progress file corrupt, starting with empty state", "file_path", r.file, "error", err)
		return domain.NewProgressRecord(), nil
	}
	if record == nil {
		record = domain.NewProgressRecord()
	}

	r.logger.Info("progress loaded from file",
		"entries", len(record),
		"completed", record.CompletedCount(),
		"file_path", r.file,
	)
	return record, nil
}

func isFileNotExist(filePath string) bool {
	_, err := os.Stat(filePath)
	return os.IsNotExist(err)
}

// Save atomically replaces the snapshot with record.
func (r *ProgressStorage) Save(ctx context.Context, record domain.ProgressRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal progress: %v", errpkg.ErrProgressSave, err)
	}

	tempFile := r.file + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("%w: write temporary file: %w", errpkg.ErrProgressSave, err)
	}

	if err := os.Rename(tempFile, r.file); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("%w: rename temporary file: %w", errpkg.ErrProgressSave, err)
	}

	r.logger.Debug("progress saved to file", "entries", len(record), "file_path", r.file)
	return nil
}
