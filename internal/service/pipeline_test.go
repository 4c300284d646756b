package service

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veranemoloko/mdk-downloader/internal/discovery"
	"github.com/veranemoloko/mdk-downloader/internal/domain"
	"github.com/veranemoloko/mdk-downloader/internal/report"
	"github.com/veranemoloko/mdk-downloader/internal/repository"
	"github.com/veranemoloko/mdk-downloader/internal/storage"
	"github.com/veranemoloko/mdk-downloader/internal/worker"
)

const listing1201 = `<html><body><table>
<tr><td>47.2.0</td><td>2023-09-20</td></tr>
<tr><td>47.1.0</td><td>2023-07-01</td></tr>
</table></body></html>`

const listing1192 = `<html><body>
<a href="/maven/1.19.2-43.2.0/forge-1.19.2-43.2.0-mdk.zip">mdk</a>
</body></html>`

func newForgeHost(t *testing.T, artifactHits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/forge/index_1.20.1.html":
			_, _ = io.WriteString(w, listing1201)
		case r.URL.Path == "/forge/index_1.19.2.html":
			_, _ = io.WriteString(w, listing1192)
		case strings.HasPrefix(r.URL.Path, "/maven/"):
			artifactHits.Add(1)
			_, _ = io.WriteString(w, "zip:"+r.URL.Path)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

// snapshotTree maps every regular file below root to its content.
func snapshotTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

func runPipeline(t *testing.T, layout domain.Layout) domain.RunStats {
	t.Helper()
	logger := newTestLogger()
	o := NewOrchestrator(
		repository.NewProgressStorage(layout.ProgressPath(), logger),
		discovery.NewDiscoverer(layout, time.Second, "test-agent", logger),
		worker.NewDownloadWorker(storage.NewFileStorage(layout.Root), layout, time.Second, "test-agent", logger),
		report.NewPrinter(io.Discard),
		Options{
			Root:               layout.Root,
			Versions:           []string{"1.20.1", "1.19.2", "1.0"},
			Workers:            2,
			CheckpointInterval: 2,
		},
		logger,
	)
	stats, err := o.Run(context.Background())
	require.NoError(t, err)
	return stats
}

func TestPipeline_RerunIsIdempotent(t *testing.T) {
	var artifactHits atomic.Int32
	server := newForgeHost(t, &artifactHits)

	layout := domain.Layout{
		Root:           t.TempDir(),
		ProgressFile:   ".download_progress.json",
		ListingBaseURL: server.URL + "/forge",
		MavenBaseURL:   server.URL + "/maven",
		Product:        "forge",
		Suffix:         "mdk",
		DirPrefix:      "MC_",
	}

	first := runPipeline(t, layout)
	assert.Equal(t, domain.RunStats{Downloaded: 3, Completed: 3, Total: 3}, first)
	assert.Equal(t, int32(3), artifactHits.Load())

	afterFirst := snapshotTree(t, layout.Root)
	assert.Equal(t, "zip:/maven/1.20.1-47.2.0/forge-1.20.1-47.2.0-mdk.zip", afterFirst["MC_1.20.1/forge-1.20.1-47.2.0-mdk.zip"])
	assert.Contains(t, afterFirst, "MC_1.20.1/forge-1.20.1-47.1.0-mdk.zip")
	assert.Contains(t, afterFirst, "MC_1.19.2/forge-1.19.2-43.2.0-mdk.zip")
	assert.Contains(t, afterFirst, ".download_progress.json")
	assert.Len(t, afterFirst, 4)

	second := runPipeline(t, layout)
	assert.Equal(t, domain.RunStats{Skipped: 3, Completed: 3, Total: 3}, second)
	assert.Equal(t, int32(3), artifactHits.Load(), "second run must not transfer anything")

	assert.Equal(t, afterFirst, snapshotTree(t, layout.Root))
}
