package httpclient

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/selimozcann/infoprobe/internal/logger"
)

// DefaultTimeout bounds a single probe request.
const DefaultTimeout = 5 * time.Second

// MaxRedirects caps the hops followed when redirects are enabled.
const MaxRedirects = 10

// idleConnTimeout bounds how long a kept-alive connection may sit unused.
const idleConnTimeout = 30 * time.Second

// ErrTooManyRedirects is returned by the client when a followed redirect
// chain exceeds MaxRedirects.
var ErrTooManyRedirects = errors.New("too many redirects")

// Config holds settings for the HTTP client.
type Config struct {
	Timeout         time.Duration
	UserAgent       string
	Insecure        bool
	FollowRedirects bool
	// Logger receives the one-off warning about disabled TLS verification.
	Logger logger.Logger
}

var insecureWarning sync.Once

// headerRoundTripper wraps a base RoundTripper to set the User-Agent.
type headerRoundTripper struct {
	base      http.RoundTripper
	userAgent string
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if h.base == nil {
		h.base = http.DefaultTransport
	}
	if h.userAgent == "" {
		return h.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", h.userAgent)
	return h.base.RoundTrip(r)
}

// New returns an HTTP client that applies the TLS and redirect policy of a scan.
// Redirects are not followed unless cfg.FollowRedirects is set, so a 3xx is
// returned to the caller as-is. When following, a chain longer than
// MaxRedirects fails with ErrTooManyRedirects. Callers that build one client
// per scan should call CloseIdleConnections when done.
func New(cfg Config) *http.Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Insecure {
		warnInsecure(cfg.Logger)
	}

	transport := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.Insecure}, // #nosec G402 -- opt-in via --ignore-ssl
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: cfg.Timeout,
		ForceAttemptHTTP2:   true,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     idleConnTimeout,
	}

	return &http.Client{
		Transport: &headerRoundTripper{
			base:      transport,
			userAgent: cfg.UserAgent,
		},
		Timeout: cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if !cfg.FollowRedirects {
				return http.ErrUseLastResponse
			}
			if len(via) >= MaxRedirects {
				return fmt.Errorf("%w: stopped after %d redirects", ErrTooManyRedirects, MaxRedirects)
			}
			return nil
		},
	}
}

// warnInsecure logs once per process, however many clients are built.
func warnInsecure(log logger.Logger) {
	if log == nil {
		return
	}
	insecureWarning.Do(func() {
		log.Warn("TLS certificate verification disabled; certificate errors will not be reported")
	})
}
