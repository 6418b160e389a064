package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/selimozcann/infoprobe/internal/httpclient"
	"github.com/selimozcann/infoprobe/internal/model"
)

// drainLimit is how much of a body is read before closing, to allow reuse of
// the connection.
const drainLimit = 4 * 1024

// Prober issues one GET per target.
type Prober struct {
	Client *http.Client
}

// New creates a new Prober. The client carries the TLS and redirect policy.
func New(c *http.Client) *Prober { return &Prober{Client: c} }

// Probe requests target exactly once. 404 is suppressed, any other status is
// flagged and any transport error is reported as a failure.
func (p *Prober) Probe(ctx context.Context, target string) model.Outcome {
	start := time.Now()
	out := model.Outcome{URL: target}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		out.Kind = model.OutcomeFailed
		out.FailureKind = Kind(err)
		out.Error = Describe(err)
		out.DurationMs = time.Since(start).Milliseconds()
		return out
	}

	resp, err := p.Client.Do(req)
	out.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		out.Kind = model.OutcomeFailed
		out.FailureKind = Kind(err)
		out.Error = Describe(err)
		return out
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
	_ = resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		out.Kind = model.OutcomeSuppressed
		return out
	}
	out.Kind = model.OutcomeFlagged
	out.StatusCode = resp.StatusCode
	return out
}

// Kind maps a transport error to a failure kind.
func Kind(err error) model.FailureKind {
	var (
		dnsErr      *net.DNSError
		netErr      net.Error
		certErr     *tls.CertificateVerificationError
		unknownAuth x509.UnknownAuthorityError
		hostErr     x509.HostnameError
		invalidErr  x509.CertificateInvalidError
		recordErr   tls.RecordHeaderError
	)
	switch {
	case errors.Is(err, httpclient.ErrTooManyRedirects):
		return model.FailureRedirect
	case errors.Is(err, context.DeadlineExceeded):
		return model.FailureTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return model.FailureTimeout
	case errors.As(err, &dnsErr):
		return model.FailureDNS
	case errors.As(err, &certErr), errors.As(err, &unknownAuth), errors.As(err, &hostErr),
		errors.As(err, &invalidErr), errors.As(err, &recordErr):
		return model.FailureTLS
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return model.FailureConnection
	case strings.Contains(err.Error(), "tls:"):
		return model.FailureTLS
	default:
		return model.FailureOther
	}
}

// Describe renders err for the report, prefixed with its failure kind.
func Describe(err error) string {
	return string(Kind(err)) + ": " + err.Error()
}
