package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/selimozcann/infoprobe/internal/classify"
	"github.com/selimozcann/infoprobe/internal/httpclient"
	"github.com/selimozcann/infoprobe/internal/logger"
	"github.com/selimozcann/infoprobe/internal/metrics"
	"github.com/selimozcann/infoprobe/internal/model"
	"github.com/selimozcann/infoprobe/internal/notify"
	"github.com/selimozcann/infoprobe/internal/probe"
	"github.com/selimozcann/infoprobe/internal/runner"
	"github.com/selimozcann/infoprobe/internal/util"
)

const (
	DefaultDomainFile    = "domains.txt"
	DefaultSubdomainFile = "sub-domains.txt"
	DefaultConcurrency   = 10
)

// Options are the engine settings shared by every scan.
type Options struct {
	Path        string
	Timeout     time.Duration
	Concurrency int
	RateLimit   int
	UserAgent   string
}

// Notifier delivers urgent findings after a scan.
type Notifier interface {
	Notify(ctx context.Context, urgent, redirected []model.Finding, webhookURL string) error
}

// Scanner drives the probe loop for a scan and assembles its report.
type Scanner struct {
	opts     Options
	notifier Notifier
	log      logger.Logger
	metrics  *metrics.Metrics
}

// New creates a Scanner. notifier and m may be nil.
func New(opts Options, notifier Notifier, log logger.Logger, m *metrics.Metrics) *Scanner {
	if opts.Path == "" {
		opts.Path = util.DefaultPath
	}
	if opts.Timeout <= 0 {
		opts.Timeout = httpclient.DefaultTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Scanner{opts: opts, notifier: notifier, log: log, metrics: m}
}

// Run executes one scan. Only a missing or unreadable primary domain list is
// returned as an error; per-domain failures end up in the report.
func (s *Scanner) Run(ctx context.Context, cfg model.ScanConfig, progress runner.ProgressFunc) (*model.Report, error) {
	if cfg.DomainFile == "" {
		cfg.DomainFile = DefaultDomainFile
	}
	if cfg.SubdomainFile == "" {
		cfg.SubdomainFile = DefaultSubdomainFile
	}

	domains, err := LoadDomains(cfg.DomainFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDomainList, err)
	}

	report := &model.Report{StartedAt: time.Now()}
	if cfg.CheckSubdomains {
		domains = append(domains, s.loadSubdomains(cfg.SubdomainFile, report)...)
	}
	report.Total = len(domains)

	log := s.log.With(
		logger.Int("total", report.Total),
		logger.Bool("ignore_ssl", cfg.IgnoreSSL),
		logger.Bool("follow_redirects", cfg.FollowRedirects))
	log.Info("Scan started")

	targets := make([]string, len(domains))
	for i, d := range domains {
		targets[i] = util.NormalizeTarget(d, s.opts.Path)
	}

	client := httpclient.New(httpclient.Config{
		Timeout:         s.opts.Timeout,
		UserAgent:       s.opts.UserAgent,
		Insecure:        cfg.IgnoreSSL,
		FollowRedirects: cfg.FollowRedirects,
		Logger:          s.log,
	})
	defer client.CloseIdleConnections()
	r := runner.New(runner.Config{Threads: s.opts.Concurrency, RateLimit: s.opts.RateLimit}, probe.New(client))
	outcomes := r.Run(ctx, targets, progress)

	for _, o := range outcomes {
		switch o.Kind {
		case model.OutcomeFlagged:
			f, _ := classify.Finding(o)
			report.Add(f)
			s.metrics.ObserveOutcome(o, f.Bucket)
		case model.OutcomeFailed:
			report.Failed = append(report.Failed, model.Failure{URL: o.URL, Error: o.Error, Kind: o.FailureKind})
			s.metrics.ObserveOutcome(o, "")
		case model.OutcomeSuppressed:
			s.metrics.ObserveOutcome(o, "")
		default:
			// never dispatched
			continue
		}
		report.Checked++
	}
	report.DurationMs = time.Since(report.StartedAt).Milliseconds()

	s.notify(ctx, cfg, report)

	log.Info("Scan finished",
		logger.Int("checked", report.Checked),
		logger.Int("flagged", report.FlaggedCount()),
		logger.Int("failed", len(report.Failed)),
		logger.String("verdict", string(report.Verdict())))
	return report, nil
}

func (s *Scanner) loadSubdomains(path string, report *model.Report) []string {
	subs, err := LoadDomains(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		report.Notes = append(report.Notes,
			fmt.Sprintf("Sub-domains file '%s' not found; skipping sub-domain checks.", path))
		return nil
	case err != nil:
		s.log.Warn("Sub-domains file unreadable", logger.String("path", path), logger.Error(err))
		report.Notes = append(report.Notes,
			fmt.Sprintf("Sub-domains file '%s' could not be read (%v); skipping sub-domain checks.", path, err))
		return nil
	}
	report.Notes = append(report.Notes, fmt.Sprintf("Additionally, found %d sub-domains to check.", len(subs)))
	return subs
}

// notify never fails the scan; the outcome is recorded on the report.
func (s *Scanner) notify(ctx context.Context, cfg model.ScanConfig, report *model.Report) {
	if s.notifier == nil || !notify.ShouldNotify(report, cfg.WebhookURL) {
		return
	}
	report.Notification.Attempted = true
	if err := s.notifier.Notify(ctx, report.Urgent, report.Redirected, cfg.WebhookURL); err != nil {
		s.log.Error("Webhook notification failed", logger.Error(err))
		report.Notification.Error = err.Error()
		s.metrics.Notification(false)
		return
	}
	report.Notification.Delivered = true
	s.metrics.Notification(true)
}
