package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/veranemoloko/mdk-downloader/internal/domain"
)

func TestDiscoveryLines(t *testing.T) {
	tests := []struct {
		name string
		in   domain.Discovery
		want string
	}{
		{"found", domain.Discovery{Coarse: "1.20.1", Fines: []string{"47.2.0", "47.1.0"}}, "Scanning MC 1.20.1... Found 2 versions"},
		{"none", domain.Discovery{Coarse: "1.0"}, "Scanning MC 1.0... None found"},
		{"failed", domain.Discovery{Coarse: "1.7", Err: errors.New("boom")}, "Scanning MC 1.7... failed: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewPrinter(&buf).Discovery(tt.in)
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestOutcomeLines(t *testing.T) {
	task := domain.Task{Coarse: "1.20.1", Fine: "47.2.0"}
	tests := []struct {
		name string
		in   domain.Outcome
		want string
	}{
		{"already completed", domain.Outcome{Task: task, Status: domain.FetchSkipped}, "⊙ SKIP: 1.20.1-47.2.0\n"},
		{"file exists", domain.Outcome{Task: task, Status: domain.FetchSkipped, Existing: true}, "⊙ EXISTS: 1.20.1-47.2.0\n"},
		{"downloaded", domain.Outcome{Task: task, Status: domain.FetchSuccess}, "✓ SUCCESS: 1.20.1-47.2.0\n"},
		{"failed", domain.Outcome{Task: task, Status: domain.FetchFailed, Err: errors.New("404")}, "✗ FAILED: 1.20.1-47.2.0 (404)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewPrinter(&buf).Outcome(tt.in)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestCheckpoint(t *testing.T) {
	var buf bytes.Buffer
	stats := domain.RunStats{Completed: 20, Total: 80}

	NewPrinter(&buf).Checkpoint(stats, 10*time.Second)

	assert.Equal(t, "[20/80] Rate: 2.0/s | ETA: 30s\n", buf.String())
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	stats := domain.RunStats{Downloaded: 3, Skipped: 5, Failed: 2, Completed: 10, Total: 10}

	NewPrinter(&buf).Summary(stats, 2*time.Minute, "/data/mdks")

	out := buf.String()
	assert.Contains(t, out, "FINAL SUMMARY")
	assert.Contains(t, out, "Downloaded")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "2.00 minutes")
	assert.Contains(t, out, "0.08 files/second")
	assert.Contains(t, out, "All MDKs saved to: /data/mdks")
}

func TestRateAndETA(t *testing.T) {
	assert.Equal(t, 0.0, Rate(10, 0))
	assert.InDelta(t, 2.5, Rate(10, 4*time.Second), 1e-9)

	assert.Equal(t, "calculating...", ETA(10, 0))
	assert.Equal(t, "0s", ETA(0, 1))
	assert.Equal(t, "1m 40s", ETA(100, 1))
	assert.Equal(t, "2h 0m", ETA(7200, 1))
}
