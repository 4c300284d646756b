package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veranemoloko/mdk-downloader/internal/domain"
	errpkg "github.com/veranemoloko/mdk-downloader/internal/errors"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProgressStorage_SaveAndLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "progress.json")
	repo := NewProgressStorage(file, newTestLogger())

	record := domain.ProgressRecord{
		"1.20.1-47.2.0": domain.OutcomeCompleted,
		"1.20.1-47.1.0": domain.OutcomeFailed,
	}
	require.NoError(t, repo.Save(context.Background(), record))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, record, got)

	_, err = os.Stat(file + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file must not survive a save")
}

func TestProgressStorage_FileFormat(t *testing.T) {
	file := filepath.Join(t.TempDir(), "progress.json")
	repo := NewProgressStorage(file, newTestLogger())

	require.NoError(t, repo.Save(context.Background(), domain.ProgressRecord{
		"1.20.1-47.2.0": domain.OutcomeCompleted,
	}))

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"1.20.1-47.2.0\": \"completed\"\n}", string(data))
}

func TestProgressStorage_LoadMissing(t *testing.T) {
	repo := NewProgressStorage(filepath.Join(t.TempDir(), "nope.json"), newTestLogger())

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestProgressStorage_LoadCorruptIsSwallowed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty", content: ""},
		{name: "garbage", content: "{not json"},
		{name: "wrong shape", content: `["a","b"]`},
		{name: "null", content: "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "progress.json")
			require.NoError(t, os.WriteFile(file, []byte(tt.content), 0o644))

			got, err := NewProgressStorage(file, newTestLogger()).Load(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestProgressStorage_SaveFailureIsReported(t *testing.T) {
	file := filepath.Join(t.TempDir(), "missing-dir", "progress.json")
	repo := NewProgressStorage(file, newTestLogger())

	err := repo.Save(context.Background(), domain.ProgressRecord{"a-1.0.0": domain.OutcomeCompleted})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errpkg.ErrProgressSave))
}
