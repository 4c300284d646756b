package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	errpkg "github.com/veranemoloko/mdk-downloader/internal/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitSuccess},
		{"general", errors.New("boom"), ExitGeneralError},
		{"explicit", withCode(ExitInvalidArgs, errors.New("bad flag")), ExitInvalidArgs},
		{"progress store", fmt.Errorf("save progress: %w", errpkg.ErrProgressSave), ExitStorageError},
		{"interrupted", fmt.Errorf("run: %w", context.Canceled), ExitInterrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestRun_InvalidArgs(t *testing.T) {
	assert.Equal(t, ExitInvalidArgs, run([]string{"--no-such-flag"}, io.Discard))
	assert.Equal(t, ExitInvalidArgs, run([]string{"unexpected-positional"}, io.Discard))
	assert.Equal(t, ExitInvalidArgs, run([]string{"--workers", "0", "--env-file", "/nonexistent/.env"}, io.Discard))
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("MDK_DEST_ROOT", t.TempDir())
	assert.Equal(t, ExitInvalidArgs, run([]string{"--workers", "0"}, io.Discard))
	assert.Equal(t, ExitInvalidArgs, run([]string{"--versions", "1.20/../x"}, io.Discard))
}

func TestRootCommand_FlagsBecomeOptions(t *testing.T) {
	cmd := newRootCommand()
	assert.NoError(t, cmd.ParseFlags([]string{"--root", "/tmp/x", "--workers", "3", "--versions", "1.20.1,1.19.2"}))

	var f rootFlags
	f.root = "/tmp/x"
	f.workers = 3
	f.versions = []string{"1.20.1", "1.19.2"}
	opts := f.options(cmd)

	assert.Len(t, opts, 3)
}

func TestRun_ConfigErrorReportedOnce(t *testing.T) {
	var stderr bytes.Buffer
	missing := filepath.Join(t.TempDir(), "absent.env")

	code := run([]string{"--env-file", missing}, &stderr)

	assert.Equal(t, ExitInvalidArgs, code)
	assert.Equal(t, 1, strings.Count(stderr.String(), "configuration file not found"))
	assert.Equal(t, 1, strings.Count(stderr.String(), "\n"))
}
