// Package schedule submits scan jobs on cron schedules.
package schedule

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/selimozcann/infoprobe/internal/logger"
	"github.com/selimozcann/infoprobe/internal/model"
)

// Submitter starts a scan job. *job.Runner satisfies it.
type Submitter interface {
	Submit(ctx context.Context, cfg model.ScanConfig) (string, error)
}

// Scheduler wraps a cron loop whose entries submit scans.
type Scheduler struct {
	cron      *cron.Cron
	parser    cron.Parser
	submitter Submitter
	log       logger.Logger

	mu      sync.Mutex
	entries map[cron.EntryID]string
}

// New creates a Scheduler using the standard 5-field parser. Descriptors
// such as @daily and @every 1h are accepted too.
func New(submitter Submitter, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewNop()
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cron:      cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		parser:    parser,
		submitter: submitter,
		log:       log,
		entries:   make(map[cron.EntryID]string),
	}
}

// Add registers a scan of cfg on expr. Invalid expressions are rejected
// before anything is registered.
func (s *Scheduler) Add(expr string, cfg model.ScanConfig) (cron.EntryID, error) {
	sched, err := s.parser.Parse(expr)
	if err != nil {
		return 0, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}

	id := s.cron.Schedule(sched, cron.FuncJob(func() {
		jobID, err := s.submitter.Submit(context.Background(), cfg)
		if err != nil {
			s.log.Error("Scheduled scan not submitted", logger.String("schedule", expr), logger.Error(err))
			return
		}
		s.log.Info("Scheduled scan submitted", logger.String("schedule", expr), logger.String("job_id", jobID))
	}))

	s.mu.Lock()
	s.entries[id] = expr
	s.mu.Unlock()
	s.log.Info("Scan scheduled", logger.String("schedule", expr))
	return id, nil
}

// Remove unregisters an entry.
func (s *Scheduler) Remove(id cron.EntryID) {
	s.cron.Remove(id)
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Expressions returns the registered expressions keyed by entry id.
func (s *Scheduler) Expressions() map[cron.EntryID]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[cron.EntryID]string, len(s.entries))
	for id, expr := range s.entries {
		out[id] = expr
	}
	return out
}

// Start runs the cron loop in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop and waits for running submissions.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
