package crawl

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"siteguard/internal/domain"
	"siteguard/internal/monitoring"
	"siteguard/internal/report"
	"siteguard/internal/storage"
)

// Task is one queued scan job. Force bypasses the recent-scan dedup check.
type Task struct {
	Job   domain.ScanJob
	Force bool
}

// RunnerOptions tunes the worker pool and the post-run pipeline.
type RunnerOptions struct {
	Workers          int
	ReportDir        string
	DedupTTL         time.Duration
	RunTimeout       time.Duration
	NarrativeTimeout time.Duration
	Narrator         report.Generator
}

func (o *RunnerOptions) withDefaults() {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.ReportDir == "" {
		o.ReportDir = "reports"
	}
	if o.DedupTTL <= 0 {
		o.DedupTTL = 48 * time.Hour
	}
	if o.RunTimeout <= 0 {
		o.RunTimeout = 30 * time.Minute
	}
	if o.NarrativeTimeout <= 0 {
		o.NarrativeTimeout = 20 * time.Second
	}
}

// Runner manages the worker pool that executes scan jobs and persists their
// results.
type Runner struct {
	orch      *Orchestrator
	pgStore   *storage.PostgresStore
	redis     *storage.RedisStore
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	opts      RunnerOptions
	taskQueue chan Task
	stopChan  chan struct{}
	wg        sync.WaitGroup

	mu      sync.RWMutex
	results map[string]*domain.RunResult
}

func NewRunner(orch *Orchestrator, ps *storage.PostgresStore, rs *storage.RedisStore, m *monitoring.Metrics, l *zap.Logger, opts RunnerOptions) *Runner {
	opts.withDefaults()
	return &Runner{
		orch:      orch,
		pgStore:   ps,
		redis:     rs,
		metrics:   m,
		logger:    l,
		opts:      opts,
		taskQueue: make(chan Task, opts.Workers*2),
		stopChan:  make(chan struct{}),
		results:   make(map[string]*domain.RunResult),
	}
}

func (r *Runner) Start() {
	for i := 0; i < r.opts.Workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
}

func (r *Runner) Stop() {
	close(r.stopChan)
	r.wg.Wait()
}

// Submit enqueues a task. It reports false once Stop has been called so a
// late HTTP request cannot race a closed pool.
func (r *Runner) Submit(task Task) bool {
	select {
	case <-r.stopChan:
		return false
	default:
	}
	select {
	case r.taskQueue <- task:
		return true
	case <-r.stopChan:
		return false
	}
}

// Result returns the in-memory result for a finished run, if this process
// executed it.
func (r *Runner) Result(runID string) (*domain.RunResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.results[runID]
	return res, ok
}

func (r *Runner) worker() {
	defer r.wg.Done()
	for {
		select {
		case task := <-r.taskQueue:
			r.processJob(task)
		case <-r.stopChan:
			return
		}
	}
}

func (r *Runner) processJob(task Task) {
	job := task.Job
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.RunTimeout)
	defer cancel()

	if !task.Force {
		isScanned, err := r.redis.IsRecentlyScanned(ctx, job.TargetURL)
		if err != nil {
			r.logger.Error("failed to check redis for scan status", zap.String("url", job.TargetURL), zap.Error(err))
		}
		if isScanned {
			r.logger.Info("skipping recently scanned target", zap.String("url", job.TargetURL))
			return
		}
	}

	if err := r.pgStore.CreateRun(ctx, job); err != nil {
		r.logger.Error("failed to register run", zap.String("run_id", job.RunID), zap.Error(err))
	}
	if err := r.pgStore.UpdateRunState(ctx, job.RunID, domain.StateRunning); err != nil {
		r.logger.Error("failed to mark run as running", zap.String("run_id", job.RunID), zap.Error(err))
	}

	progress := func(p domain.Progress) {
		if err := r.redis.SetProgress(ctx, job.RunID, p); err != nil {
			r.logger.Warn("failed to publish progress", zap.String("run_id", job.RunID), zap.Error(err))
		}
	}

	result, err := r.orch.Run(ctx, job, progress)
	if err != nil {
		r.logger.Error("run failed to start", zap.String("run_id", job.RunID), zap.Error(err))
		r.metrics.IncErrorsTotal("run_failed")
		if dbErr := r.pgStore.UpdateRunState(ctx, job.RunID, domain.StateFailed); dbErr != nil {
			r.logger.Error("failed to mark run as failed", zap.String("run_id", job.RunID), zap.Error(dbErr))
		}
		return
	}

	result.Narrative = report.BuildNarrative(ctx, r.opts.Narrator, result, r.opts.NarrativeTimeout, r.logger)
	r.writeReports(result)

	if err := r.pgStore.SaveRun(ctx, result); err != nil {
		r.logger.Error("error saving run", zap.String("run_id", job.RunID), zap.Error(err))
		r.metrics.IncErrorsTotal("db_save_failed")
	} else {
		r.logger.Info("scan finished and saved",
			zap.String("run_id", job.RunID),
			zap.String("state", string(result.State)),
			zap.Int("pages", result.Total))
		if err := r.redis.MarkAsScanned(ctx, job.TargetURL, r.opts.DedupTTL); err != nil {
			r.logger.Warn("failed to set dedup key", zap.String("url", job.TargetURL), zap.Error(err))
		}
	}

	r.mu.Lock()
	r.results[job.RunID] = result
	r.mu.Unlock()
}

// writeReports produces the file artifacts. Each writer failure is logged
// and skipped; file outputs never fail a run.
func (r *Runner) writeReports(result *domain.RunResult) {
	if path, err := report.WriteXLSX(result, r.opts.ReportDir); err != nil {
		r.logger.Error("xlsx report failed", zap.String("run_id", result.RunID), zap.Error(err))
		r.metrics.IncErrorsTotal("report_write_failed")
	} else {
		result.ReportFile = path
	}

	if path, err := report.WriteRaw(result, r.opts.ReportDir); err != nil {
		r.logger.Error("raw report failed", zap.String("run_id", result.RunID), zap.Error(err))
		r.metrics.IncErrorsTotal("report_write_failed")
	} else {
		result.RawFile = path
	}

	if path, err := report.WriteSummary(result, r.opts.ReportDir); err != nil {
		r.logger.Error("summary report failed", zap.String("run_id", result.RunID), zap.Error(err))
		r.metrics.IncErrorsTotal("report_write_failed")
	} else {
		result.SummaryFile = path
	}

	if path, err := report.WriteSiteHealth(result, r.opts.ReportDir); err != nil {
		r.logger.Error("site health report failed", zap.String("run_id", result.RunID), zap.Error(err))
		r.metrics.IncErrorsTotal("report_write_failed")
	} else if path != "" {
		result.SiteSummaryFile = path
	}
}
