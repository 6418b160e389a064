package runner

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/selimozcann/infoprobe/internal/model"
)

// Config holds settings for the runner.
type Config struct {
	Threads   int // 1 probes strictly in order
	RateLimit int // requests per second, 0 = unlimited
}

// Prober is the single-target operation fanned out by the runner.
type Prober interface {
	Probe(ctx context.Context, target string) model.Outcome
}

// ProgressFunc is told how many targets have completed. Calls are serialized
// and Checked never decreases.
type ProgressFunc func(model.Progress)

// Runner coordinates concurrent probes.
type Runner struct {
	cfg    Config
	prober Prober
}

// New creates a new Runner.
func New(cfg Config, prober Prober) *Runner {
	if cfg.Threads <= 0 {
		cfg.Threads = 1
	}
	return &Runner{cfg: cfg, prober: prober}
}

// Run probes every target and returns outcomes in target order. Each worker
// writes only its own slot, so no result is lost or reordered.
func (r *Runner) Run(ctx context.Context, targets []string, progress ProgressFunc) []model.Outcome {
	out := make([]model.Outcome, len(targets))
	if len(targets) == 0 {
		return out
	}

	var limiter *rate.Limiter
	if r.cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.cfg.RateLimit), 1)
	}

	var (
		mu      sync.Mutex
		checked int
	)
	done := func() {
		mu.Lock()
		defer mu.Unlock()
		checked++
		if progress != nil {
			progress(model.Progress{Checked: checked, Total: len(targets)})
		}
	}

	threads := r.cfg.Threads
	if threads > len(targets) {
		threads = len(targets)
	}

	jobs := make(chan int)
	wg := sync.WaitGroup{}
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						return
					}
				}
				out[idx] = r.prober.Probe(ctx, targets[idx])
				done()
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range targets {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()
	return out
}
