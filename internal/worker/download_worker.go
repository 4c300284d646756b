package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/veranemoloko/mdk-downloader/internal/domain"
	errpkg "github.com/veranemoloko/mdk-downloader/internal/errors"
	"github.com/veranemoloko/mdk-downloader/internal/storage"
	"github.com/veranemoloko/mdk-downloader/internal/validation"
)

const chunkSize = 32 * 1024

// DownloadWorker fetches artifacts into FileStorage.
type DownloadWorker struct {
	fileStorage *storage.FileStorage
	layout      domain.Layout
	httpClient  *http.Client
	idleTimeout time.Duration
	userAgent   string
	logger      *slog.Logger
}

// NewDownloadWorker creates a DownloadWorker. timeout bounds connecting,
// waiting for response headers and every gap between body reads; a slow
// transfer that keeps making progress is never cut off.
func NewDownloadWorker(fileStorage *storage.FileStorage, layout domain.Layout, timeout time.Duration, userAgent string, logger *slog.Logger) *DownloadWorker {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout

	return &DownloadWorker{
		fileStorage: fileStorage,
		layout:      layout,
		httpClient:  &http.Client{Transport: transport},
		idleTimeout: timeout,
		userAgent:   userAgent,
		logger:      logger,
	}
}

// Execute runs one task. prior is the outcome recorded by earlier runs.
//
// A task already marked completed is skipped without any I/O. A destination
// file that is already present is skipped and marked completed. Otherwise the
// artifact is streamed to a staging file and renamed into place once the full
// body arrived; any failure marks the task failed and leaves no file behind.
func (w *DownloadWorker) Execute(ctx context.Context, task domain.Task, prior domain.TaskOutcome) domain.Outcome {
	out := domain.Outcome{Task: task}

	if prior == domain.OutcomeCompleted {
		out.Status = domain.FetchSkipped
		return out
	}

	dest := w.layout.Destination(task)
	out.Path = dest

	if err := w.fileStorage.EnsureDir(w.layout.Dir(task.Coarse)); err != nil {
		return w.fail(out, fmt.Errorf("create directory: %w", err))
	}

	if w.fileStorage.FileExists(dest) {
		out.Status = domain.FetchSkipped
		out.Mark = domain.OutcomeCompleted
		out.Existing = true
		if size, err := w.fileStorage.GetFileSize(dest); err == nil {
			w.logger.Debug("artifact already present", "task", task.Key(), "size", size)
		}
		return out
	}

	start := time.Now()
	n, err := w.download(ctx, w.layout.SourceURL(task), dest)
	out.Duration = time.Since(start)
	out.Bytes = n
	if err != nil {
		return w.fail(out, err)
	}

	out.Status = domain.FetchSuccess
	out.Mark = domain.OutcomeCompleted
	return out
}

func (w *DownloadWorker) fail(out domain.Outcome, err error) domain.Outcome {
	out.Status = domain.FetchFailed
	out.Mark = domain.OutcomeFailed
	out.Err = err
	w.logger.Debug("download failed", "task", out.Task.Key(), "error", err)
	return out
}

func (w *DownloadWorker) download(ctx context.Context, url, dest string) (int64, error) {
	if err := validation.ValidateDirectURL(url); err != nil {
		return 0, err
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	idle := time.AfterFunc(w.idleTimeout, func() { cancel(errpkg.ErrTransferStalled) })
	defer idle.Stop()

	n, err := w.transfer(ctx, idle, url, dest)
	if err != nil && errors.Is(context.Cause(ctx), errpkg.ErrTransferStalled) {
		err = fmt.Errorf("%w after %s: %w", errpkg.ErrTransferStalled, w.idleTimeout, err)
	}
	return n, err
}

func (w *DownloadWorker) transfer(ctx context.Context, idle *time.Timer, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if w.userAgent != "" {
		req.Header.Set("User-Agent", w.userAgent)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %s", errpkg.ErrDownloadStatus, resp.Status)
	}

	file, err := w.fileStorage.CreateStaging(dest)
	if err != nil {
		return 0, fmt.Errorf("create staging file: %w", err)
	}

	written, err := w.copyWithContext(ctx, idle, file, resp.Body)
	if err == nil && resp.ContentLength >= 0 && written != resp.ContentLength {
		err = fmt.Errorf("%w: got %d of %d bytes", errpkg.ErrIncompleteBody, written, resp.ContentLength)
	}
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close staging file: %w", closeErr)
	}
	if err != nil {
		if rmErr := w.fileStorage.Discard(dest); rmErr != nil {
			w.logger.Warn("failed to remove staging file", "path", storage.StagingPath(dest), "error", rmErr)
		}
		return written, fmt.Errorf("copy data: %w", err)
	}

	if err := w.fileStorage.Promote(dest); err != nil {
		_ = w.fileStorage.Discard(dest)
		return written, err
	}

	return written, nil
}

// copyWithContext streams src into dst, re-arming idle after every read.
func (w *DownloadWorker) copyWithContext(ctx context.Context, idle *time.Timer, dst *os.File, src io.Reader) (int64, error) {
	buf := make([]byte, chunkSize)
	var total int64

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
			nr, err := src.Read(buf)
			if nr > 0 {
				idle.Reset(w.idleTimeout)
				nw, err := dst.Write(buf[0:nr])
				if nw > 0 {
					total += int64(nw)
				}
				if err != nil {
					return total, err
				}
				if nr != nw {
					return total, io.ErrShortWrite
				}
			}
			if err != nil {
				if err == io.EOF {
					return total, nil
				}
				return total, err
			}
		}
	}
}
