package runner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/selimozcann/infoprobe/internal/model"
)

type fakeProber struct {
	mu       sync.Mutex
	calls    []string
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeProber) Probe(ctx context.Context, target string) model.Outcome {
	n := f.inFlight.Add(1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	defer f.inFlight.Add(-1)

	f.mu.Lock()
	f.calls = append(f.calls, target)
	seq := len(f.calls)
	f.mu.Unlock()

	// uneven delays so completion order differs from input order
	time.Sleep(time.Duration(3-seq%3) * time.Millisecond)
	return model.Outcome{Kind: model.OutcomeFlagged, URL: target, StatusCode: 200}
}

func targets(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("https://d%d.example.com/info.php", i)
	}
	return out
}

func TestRunPreservesOrder(t *testing.T) {
	in := targets(40)
	r := New(Config{Threads: 8}, &fakeProber{})
	out := r.Run(context.Background(), in, nil)
	if len(out) != len(in) {
		t.Fatalf("expected %d outcomes, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i].URL != in[i] {
			t.Fatalf("outcome %d out of order: %s", i, out[i].URL)
		}
	}
}

func TestRunProgressMonotonic(t *testing.T) {
	in := targets(25)
	var seen []model.Progress
	r := New(Config{Threads: 6}, &fakeProber{})
	r.Run(context.Background(), in, func(p model.Progress) {
		seen = append(seen, p)
	})
	if len(seen) != len(in) {
		t.Fatalf("expected %d progress events, got %d", len(in), len(seen))
	}
	for i, p := range seen {
		if p.Checked != i+1 || p.Total != len(in) {
			t.Fatalf("progress %d: got %+v", i, p)
		}
	}
	if last := seen[len(seen)-1]; last.Fraction() != 1 || !last.Done() {
		t.Fatalf("expected final progress to be complete, got %+v", last)
	}
}

func TestRunSequential(t *testing.T) {
	in := targets(10)
	fp := &fakeProber{}
	New(Config{Threads: 1}, fp).Run(context.Background(), in, nil)
	if fp.peak.Load() != 1 {
		t.Fatalf("expected one probe at a time, peak was %d", fp.peak.Load())
	}
	for i := range in {
		if fp.calls[i] != in[i] {
			t.Fatalf("sequential call %d was %s", i, fp.calls[i])
		}
	}
}

func TestRunEmpty(t *testing.T) {
	called := false
	out := New(Config{Threads: 4}, &fakeProber{}).Run(context.Background(), nil, func(model.Progress) {
		called = true
	})
	if len(out) != 0 || called {
		t.Fatalf("empty run must not probe or report progress")
	}
}

func TestRunRateLimit(t *testing.T) {
	in := targets(4)
	start := time.Now()
	New(Config{Threads: 4, RateLimit: 20}, &fakeProber{}).Run(context.Background(), in, nil)
	// burst of one, then 50ms apart
	if elapsed := time.Since(start); elapsed < 140*time.Millisecond {
		t.Fatalf("rate limit not applied, finished in %s", elapsed)
	}
}
