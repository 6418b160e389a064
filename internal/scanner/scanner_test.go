package scanner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selimozcann/infoprobe/internal/logger"
	"github.com/selimozcann/infoprobe/internal/model"
)

type recordingNotifier struct {
	mu         sync.Mutex
	calls      int
	urgent     []model.Finding
	redirected []model.Finding
	err        error
}

func (r *recordingNotifier) Notify(_ context.Context, urgent, redirected []model.Finding, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.urgent = urgent
	r.redirected = redirected
	return r.err
}

func statusServer(t *testing.T, status int, delay time.Duration) string {
	t.Helper()
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/info.php" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if delay > 0 {
			time.Sleep(delay)
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func writeList(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func newScanner(n Notifier, timeout time.Duration) *Scanner {
	return New(Options{Timeout: timeout, Concurrency: 4}, n, logger.NewNop(), nil)
}

func TestRunUrgentFinding(t *testing.T) {
	a := statusServer(t, http.StatusNotFound, 0)
	b := statusServer(t, http.StatusOK, 0)
	dir := t.TempDir()
	list := writeList(t, dir, "domains.txt", a, "", b+"/")

	n := &recordingNotifier{}
	var progress []model.Progress
	report, err := newScanner(n, time.Second).Run(context.Background(), model.ScanConfig{
		DomainFile: list,
		IgnoreSSL:  true,
		WebhookURL: "https://hooks.example.com/x",
	}, func(p model.Progress) { progress = append(progress, p) })
	require.NoError(t, err)

	require.Len(t, report.Urgent, 1)
	assert.Equal(t, model.Finding{URL: b + "/info.php", StatusCode: 200, Bucket: model.BucketUrgent}, report.Urgent[0])
	assert.Empty(t, report.Failed)
	assert.Empty(t, report.Redirected)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, model.VerdictFindings, report.Verdict())

	assert.Equal(t, 1, n.calls)
	assert.True(t, report.Notification.Attempted)
	assert.True(t, report.Notification.Delivered)

	require.Len(t, progress, 2)
	assert.Equal(t, model.Progress{Checked: 2, Total: 2}, progress[1])
}

func TestRunBuckets(t *testing.T) {
	moved := statusServer(t, http.StatusMovedPermanently, 0)
	broken := statusServer(t, http.StatusInternalServerError, 0)
	forbidden := statusServer(t, http.StatusForbidden, 0)
	dir := t.TempDir()
	list := writeList(t, dir, "domains.txt", moved, broken, forbidden)

	n := &recordingNotifier{}
	report, err := newScanner(n, time.Second).Run(context.Background(), model.ScanConfig{
		DomainFile: list,
		IgnoreSSL:  true,
		WebhookURL: "https://hooks.example.com/x",
	}, nil)
	require.NoError(t, err)

	require.Len(t, report.Redirected, 1)
	require.Len(t, report.ServerErrors, 1)
	require.Len(t, report.Others, 1)
	assert.Equal(t, 301, report.Redirected[0].StatusCode)
	assert.Equal(t, 403, report.Others[0].StatusCode)
	assert.Zero(t, n.calls, "redirected-only findings must not notify")
	assert.False(t, report.Notification.Attempted)
}

func TestRunTimeoutIsFailure(t *testing.T) {
	slow := statusServer(t, http.StatusOK, 300*time.Millisecond)
	list := writeList(t, t.TempDir(), "domains.txt", slow)

	n := &recordingNotifier{}
	report, err := newScanner(n, 50*time.Millisecond).Run(context.Background(), model.ScanConfig{
		DomainFile: list,
		IgnoreSSL:  true,
		WebhookURL: "https://hooks.example.com/x",
	}, nil)
	require.NoError(t, err)

	require.Len(t, report.Failed, 1)
	assert.Equal(t, model.FailureTimeout, report.Failed[0].Kind)
	assert.Equal(t, slow+"/info.php", report.Failed[0].URL)
	assert.Zero(t, report.FlaggedCount())
	assert.Equal(t, model.VerdictErrors, report.Verdict())
	assert.Zero(t, n.calls)
}

func TestRunRedirectLoopIsFailure(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/info.php", http.StatusFound)
	}))
	t.Cleanup(srv.Close)
	list := writeList(t, t.TempDir(), "domains.txt", srv.URL)

	report, err := newScanner(nil, time.Second).Run(context.Background(), model.ScanConfig{
		DomainFile:      list,
		IgnoreSSL:       true,
		FollowRedirects: true,
	}, nil)
	require.NoError(t, err)

	assert.Empty(t, report.Redirected)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, model.FailureRedirect, report.Failed[0].Kind)
	assert.Equal(t, model.VerdictErrors, report.Verdict())
}

func TestRunReleasesConnections(t *testing.T) {
	domains := []string{
		statusServer(t, http.StatusNotFound, 0),
		statusServer(t, http.StatusNotFound, 0),
		statusServer(t, http.StatusNotFound, 0),
		statusServer(t, http.StatusNotFound, 0),
	}
	list := writeList(t, t.TempDir(), "domains.txt", domains...)
	s := newScanner(nil, time.Second)
	cfg := model.ScanConfig{DomainFile: list, IgnoreSSL: true}

	// warm up so lazily started runtime goroutines are counted in the baseline
	_, err := s.Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)
	before := runtime.NumGoroutine()

	for i := 0; i < 20; i++ {
		_, err := s.Run(context.Background(), cfg, nil)
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+4
	}, 3*time.Second, 20*time.Millisecond, "goroutines did not return to baseline %d", before)
}

func TestRunSubdomains(t *testing.T) {
	ok := statusServer(t, http.StatusNotFound, 0)
	exposed := statusServer(t, http.StatusOK, 0)

	t.Run("missing", func(t *testing.T) {
		dir := t.TempDir()
		list := writeList(t, dir, "domains.txt", ok)
		report, err := newScanner(nil, time.Second).Run(context.Background(), model.ScanConfig{
			DomainFile:      list,
			SubdomainFile:   filepath.Join(dir, "sub-domains.txt"),
			IgnoreSSL:       true,
			CheckSubdomains: true,
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Total)
		require.Len(t, report.Notes, 1)
		assert.Contains(t, report.Notes[0], "not found; skipping sub-domain checks")
		assert.Equal(t, model.VerdictClean, report.Verdict())
	})

	t.Run("present", func(t *testing.T) {
		dir := t.TempDir()
		list := writeList(t, dir, "domains.txt", ok)
		subs := writeList(t, dir, "sub-domains.txt", exposed)
		report, err := newScanner(nil, time.Second).Run(context.Background(), model.ScanConfig{
			DomainFile:      list,
			SubdomainFile:   subs,
			IgnoreSSL:       true,
			CheckSubdomains: true,
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Total)
		assert.Equal(t, []string{"Additionally, found 1 sub-domains to check."}, report.Notes)
		require.Len(t, report.Urgent, 1)
		assert.Equal(t, exposed+"/info.php", report.Urgent[0].URL)
	})

	t.Run("ignoredWhenDisabled", func(t *testing.T) {
		dir := t.TempDir()
		list := writeList(t, dir, "domains.txt", ok)
		subs := writeList(t, dir, "sub-domains.txt", exposed)
		report, err := newScanner(nil, time.Second).Run(context.Background(), model.ScanConfig{
			DomainFile:    list,
			SubdomainFile: subs,
			IgnoreSSL:     true,
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Total)
		assert.Empty(t, report.Notes)
	})
}

func TestRunMissingDomainList(t *testing.T) {
	_, err := newScanner(nil, time.Second).Run(context.Background(), model.ScanConfig{
		DomainFile: filepath.Join(t.TempDir(), "nope.txt"),
	}, nil)
	require.ErrorIs(t, err, ErrDomainList)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRunEmptyList(t *testing.T) {
	list := writeList(t, t.TempDir(), "domains.txt", "", "   ")
	called := false
	report, err := newScanner(nil, time.Second).Run(context.Background(), model.ScanConfig{DomainFile: list},
		func(model.Progress) { called = true })
	require.NoError(t, err)
	assert.Zero(t, report.Total)
	assert.Equal(t, model.VerdictClean, report.Verdict())
	assert.False(t, called)
}

func TestRunNotificationFailureKeepsReport(t *testing.T) {
	exposed := statusServer(t, http.StatusOK, 0)
	list := writeList(t, t.TempDir(), "domains.txt", exposed)

	n := &recordingNotifier{err: errors.New("webhook delivery failed: status 500")}
	report, err := newScanner(n, time.Second).Run(context.Background(), model.ScanConfig{
		DomainFile: list,
		IgnoreSSL:  true,
		WebhookURL: "https://hooks.example.com/x",
	}, nil)
	require.NoError(t, err)
	require.Len(t, report.Urgent, 1)
	assert.True(t, report.Notification.Attempted)
	assert.False(t, report.Notification.Delivered)
	assert.Contains(t, report.Notification.Error, "status 500")
}

func TestRunIsRepeatable(t *testing.T) {
	a := statusServer(t, http.StatusOK, 0)
	b := statusServer(t, http.StatusFound, 0)
	c := statusServer(t, http.StatusNotFound, 0)
	list := writeList(t, t.TempDir(), "domains.txt", a, b, c, a)

	s := newScanner(nil, time.Second)
	cfg := model.ScanConfig{DomainFile: list, IgnoreSSL: true}
	first, err := s.Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	second, err := s.Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Urgent, second.Urgent)
	assert.Equal(t, first.Redirected, second.Redirected)
	assert.Equal(t, first.Failed, second.Failed)
	assert.Len(t, first.Urgent, 2, "duplicates are probed twice and kept in order")
}

func TestLoadDomains(t *testing.T) {
	path := writeList(t, t.TempDir(), "domains.txt", "  a.example.com ", "", "b.example.com", "a.example.com")
	got, err := LoadDomains(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.example.com", "b.example.com", "a.example.com"}, got)
}
