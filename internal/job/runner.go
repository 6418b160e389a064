package job

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/selimozcann/infoprobe/internal/logger"
	"github.com/selimozcann/infoprobe/internal/metrics"
	"github.com/selimozcann/infoprobe/internal/model"
	"github.com/selimozcann/infoprobe/internal/output"
	"github.com/selimozcann/infoprobe/internal/runner"
)

// Scanner runs one scan. *scanner.Scanner satisfies it.
type Scanner interface {
	Run(ctx context.Context, cfg model.ScanConfig, progress runner.ProgressFunc) (*model.Report, error)
}

// Runner executes scans as background jobs and records their lifecycle in a
// Store. Each job moves pending -> running -> completed|error exactly once.
type Runner struct {
	store   Store
	scanner Scanner
	log     logger.Logger
	metrics *metrics.Metrics
	wg      sync.WaitGroup
	now     func() time.Time
}

// NewRunner creates a Runner. log and m may be nil.
func NewRunner(store Store, scanner Scanner, log logger.Logger, m *metrics.Metrics) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{
		store:   store,
		scanner: scanner,
		log:     log,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Submit stores a pending job and starts its scan in the background. The
// scan is detached from ctx and keeps running after the caller returns.
func (r *Runner) Submit(ctx context.Context, cfg model.ScanConfig) (string, error) {
	now := r.now()
	j := model.Job{
		ID:        uuid.NewString(),
		Status:    model.JobPending,
		Config:    cfg,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.store.Create(ctx, &j); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}

	r.wg.Add(1)
	go r.run(context.WithoutCancel(ctx), j)
	return j.ID, nil
}

// Status returns the stored job, or ErrNotFound.
func (r *Runner) Status(ctx context.Context, id string) (*model.Job, error) {
	return r.store.Get(ctx, id)
}

// Wait blocks until every submitted job has reached a terminal state.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, j model.Job) {
	defer r.wg.Done()
	log := r.log.With(logger.String("job_id", j.ID))

	j.Status = model.JobRunning
	r.save(ctx, log, &j)
	r.metrics.JobStarted()
	log.Info("Job started")

	running := j
	sink := newProgressSink(func(p model.Progress) {
		snapshot := running
		snapshot.Progress = p
		snapshot.UpdatedAt = r.now()
		r.save(ctx, log, &snapshot)
	})

	report, err := r.scan(ctx, j.Config, sink)
	// no progress write may land after the terminal one
	j.Progress = sink.Close()

	if err != nil {
		j.Status = model.JobError
		j.Output = err.Error()
		log.Error("Job failed", logger.Error(err))
	} else {
		j.Status = model.JobCompleted
		j.Output = output.RenderText(report)
		j.Verdict = report.Verdict()
		log.Info("Job completed", logger.String("verdict", string(j.Verdict)))
	}
	r.save(ctx, log, &j)
	r.metrics.JobFinished(j.Status)
}

// scan runs the scanner, turning a panic into an error so the job still
// reaches a terminal state.
func (r *Runner) scan(ctx context.Context, cfg model.ScanConfig, sink *progressSink) (report *model.Report, err error) {
	defer func() {
		if p := recover(); p != nil {
			report, err = nil, fmt.Errorf("scan panicked: %v", p)
		}
	}()
	return r.scanner.Run(ctx, cfg, sink.Report)
}

func (r *Runner) save(ctx context.Context, log logger.Logger, j *model.Job) {
	j.UpdatedAt = r.now()
	if err := r.store.Update(ctx, j); err != nil {
		log.Error("Failed to update job", logger.String("status", string(j.Status)), logger.Error(err))
	}
}

// progressSink hands progress to a single writer goroutine. Report never
// blocks; updates that arrive while a write is in flight are coalesced into
// the latest one.
type progressSink struct {
	mu     sync.Mutex
	latest model.Progress
	dirty  bool
	signal chan struct{}
	done   chan struct{}
	write  func(model.Progress)
}

func newProgressSink(write func(model.Progress)) *progressSink {
	s := &progressSink{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
		write:  write,
	}
	go s.loop()
	return s
}

func (s *progressSink) Report(p model.Progress) {
	s.mu.Lock()
	s.latest = p
	s.dirty = true
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *progressSink) loop() {
	defer close(s.done)
	for range s.signal {
		s.mu.Lock()
		p, dirty := s.latest, s.dirty
		s.dirty = false
		s.mu.Unlock()
		if dirty {
			s.write(p)
		}
	}
}

// Close waits for the writer to finish and returns the last progress seen.
// Report must not be called afterwards.
func (s *progressSink) Close() model.Progress {
	close(s.signal)
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}
