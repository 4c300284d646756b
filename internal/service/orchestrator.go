package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/veranemoloko/mdk-downloader/internal/domain"
	"github.com/veranemoloko/mdk-downloader/internal/metrics"
	"github.com/veranemoloko/mdk-downloader/internal/report"
	repo "github.com/veranemoloko/mdk-downloader/internal/repository"
)

// Run phases exposed through Status.
const (
	PhaseLoading   = "loading"
	PhaseDiscovery = "discovery"
	PhaseFetching  = "fetching"
	PhaseDone      = "done"
)

const defaultCheckpointInterval = 10

// Discoverer finds the fine identifiers published for a coarse identifier.
type Discoverer interface {
	Discover(ctx context.Context, coarse string) domain.Discovery
}

// Fetcher executes a single task given the outcome recorded before this run.
type Fetcher interface {
	Execute(ctx context.Context, task domain.Task, prior domain.TaskOutcome) domain.Outcome
}

// Options controls a run.
type Options struct {
	Root               string
	Versions           []string
	Workers            int
	DiscoveryWorkers   int
	CheckpointInterval int
	DryRun             bool
}

// Orchestrator drives a run: load progress, discover, plan, fetch, persist.
//
// Workers never touch the progress record. Each finished task is sent as an
// Outcome to a single aggregator that owns the record and the run counters
// and writes checkpoints.
type Orchestrator struct {
	progress   repo.ProgressRepo
	discoverer Discoverer
	fetcher    Fetcher
	printer    *report.Printer
	opts       Options
	logger     *slog.Logger
	runID      uuid.UUID

	mu        sync.RWMutex
	phase     string
	stats     domain.RunStats
	startedAt time.Time
}

// NewOrchestrator wires the run components together.
func NewOrchestrator(
	progress repo.ProgressRepo,
	discoverer Discoverer,
	fetcher Fetcher,
	printer *report.Printer,
	opts Options,
	logger *slog.Logger,
) *Orchestrator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.DiscoveryWorkers < 1 {
		opts.DiscoveryWorkers = 1
	}
	if opts.CheckpointInterval < 1 {
		opts.CheckpointInterval = defaultCheckpointInterval
	}

	return &Orchestrator{
		progress:   progress,
		discoverer: discoverer,
		fetcher:    fetcher,
		printer:    printer,
		opts:       opts,
		logger:     logger,
		runID:      uuid.New(),
		phase:      PhaseLoading,
	}
}

// RunID identifies this run in logs and on the status endpoint.
func (o *Orchestrator) RunID() uuid.UUID {
	return o.runID
}

// Status returns a point-in-time view of the run.
func (o *Orchestrator) Status() domain.StatusResponse {
	o.mu.RLock()
	defer o.mu.RUnlock()

	resp := domain.StatusResponse{
		RunID:     o.runID,
		Phase:     o.phase,
		Stats:     o.stats,
		StartedAt: o.startedAt,
	}
	if !o.startedAt.IsZero() {
		resp.Elapsed = time.Since(o.startedAt).Round(time.Second).String()
	}
	return resp
}

func (o *Orchestrator) setPhase(phase string) {
	o.mu.Lock()
	o.phase = phase
	o.mu.Unlock()
	o.logger.Debug("run phase changed", "run_id", o.runID, "phase", phase)
}

// Run executes the whole pipeline and returns the final counters.
//
// A checkpoint that cannot be written aborts the run with an error wrapping
// errors.ErrProgressSave. Cancelling ctx stops dispatching new tasks; the
// record is still saved once and ctx.Err() is returned.
func (o *Orchestrator) Run(ctx context.Context) (domain.RunStats, error) {
	record, err := o.progress.Load(ctx)
	if err != nil {
		return domain.RunStats{}, fmt.Errorf("load progress: %w", err)
	}
	o.printer.Banner(o.opts.Root, record.CompletedCount())

	o.setPhase(PhaseDiscovery)
	discoveries := o.discover(ctx)
	if err := ctx.Err(); err != nil {
		o.setPhase(PhaseDone)
		return domain.RunStats{}, err
	}

	tasks := Plan(discoveries)
	o.mu.Lock()
	o.stats = domain.RunStats{Total: len(tasks)}
	o.mu.Unlock()
	o.printer.Queue(len(tasks), Pending(tasks, record), o.opts.Workers)

	if o.opts.DryRun {
		o.logger.Info("dry run, skipping downloads",
			"run_id", o.runID,
			"tasks", len(tasks),
			"pending", Pending(tasks, record),
		)
		o.setPhase(PhaseDone)
		return o.Status().Stats, nil
	}

	o.mu.Lock()
	o.phase = PhaseFetching
	o.startedAt = time.Now()
	o.mu.Unlock()

	saveErr := o.fetch(ctx, tasks, record)

	if saveErr == nil {
		if err := o.save(ctx, record); err != nil {
			saveErr = err
		}
	}

	o.setPhase(PhaseDone)
	status := o.Status()
	o.printer.Summary(status.Stats, time.Since(status.StartedAt), o.opts.Root)

	if saveErr != nil {
		return status.Stats, saveErr
	}
	if err := ctx.Err(); err != nil {
		return status.Stats, err
	}
	return status.Stats, nil
}

// discover scans every configured coarse identifier, at most
// DiscoveryWorkers at a time, and reports results in configured order.
func (o *Orchestrator) discover(ctx context.Context) []domain.Discovery {
	versions := o.opts.Versions
	results := make([]domain.Discovery, len(versions))
	ready := make([]chan struct{}, len(versions))
	for i := range ready {
		ready[i] = make(chan struct{})
	}

	var g errgroup.Group
	g.SetLimit(o.opts.DiscoveryWorkers)

	go func() {
		for i, coarse := range versions {
			i, coarse := i, coarse
			g.Go(func() error {
				defer close(ready[i])
				results[i] = o.discoverer.Discover(ctx, coarse)
				return nil
			})
		}
	}()

	for i := range versions {
		<-ready[i]
		d := results[i]
		o.printer.Discovery(d)
		if d.Failed() {
			o.logger.Warn("listing scan failed", "coarse", d.Coarse, "error", d.Err)
		}
	}
	_ = g.Wait()

	return results
}

// fetch dispatches tasks to a bounded pool and aggregates their outcomes.
// It returns the first checkpoint error, if any.
func (o *Orchestrator) fetch(ctx context.Context, tasks []domain.Task, record domain.ProgressRecord) error {
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	prior := record.Clone()
	outcomes := make(chan domain.Outcome, o.opts.Workers)
	aggDone := make(chan error, 1)

	go func() {
		aggDone <- o.aggregate(ctx, outcomes, record, cancel)
	}()

	var g errgroup.Group
	g.SetLimit(o.opts.Workers)

	for _, task := range tasks {
		task := task
		if fetchCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			// Tasks not started before cancellation stay absent from the record.
			if fetchCtx.Err() != nil {
				return nil
			}
			outcomes <- o.fetcher.Execute(fetchCtx, task, prior[task.Key()])
			return nil
		})
	}

	_ = g.Wait()
	close(outcomes)

	return <-aggDone
}

// aggregate is the only writer of record and the run counters.
func (o *Orchestrator) aggregate(ctx context.Context, outcomes <-chan domain.Outcome, record domain.ProgressRecord, abort context.CancelFunc) error {
	var saveErr error

	for out := range outcomes {
		if out.Mark != "" {
			record[out.Task.Key()] = out.Mark
		}
		stats := o.apply(out)
		o.printer.Outcome(out)

		if saveErr != nil || stats.Completed%o.opts.CheckpointInterval != 0 {
			continue
		}
		if err := o.save(ctx, record); err != nil {
			saveErr = err
			o.logger.Error("checkpoint failed, aborting run", "run_id", o.runID, "error", err)
			abort()
			continue
		}
		o.printer.Checkpoint(stats, time.Since(o.Status().StartedAt))
	}

	return saveErr
}

func (o *Orchestrator) apply(out domain.Outcome) domain.RunStats {
	o.mu.Lock()
	o.stats.Apply(out.Status)
	stats := o.stats
	o.mu.Unlock()

	switch out.Status {
	case domain.FetchSuccess:
		metrics.DownloadsSuccess.Inc()
		metrics.DownloadBytes.Add(float64(out.Bytes))
		metrics.DownloadDuration.Observe(out.Duration.Seconds())
		o.logger.Info("downloaded",
			"task", out.Task.Key(),
			"bytes", out.Bytes,
			"duration", out.Duration.Round(time.Millisecond),
		)
	case domain.FetchSkipped:
		metrics.DownloadsSkipped.Inc()
		o.logger.Debug("skipped", "task", out.Task.Key())
	case domain.FetchFailed:
		metrics.DownloadsFailed.Inc()
		o.logger.Warn("download failed", "task", out.Task.Key(), "error", out.Err)
	}

	return stats
}

// save persists record even after ctx was cancelled, so an interrupted run
// still leaves its progress behind.
func (o *Orchestrator) save(ctx context.Context, record domain.ProgressRecord) error {
	if err := o.progress.Save(context.WithoutCancel(ctx), record); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	metrics.CheckpointSaves.Inc()
	return nil
}
