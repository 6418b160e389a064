package model

// OutcomeKind tells which variant an Outcome holds.
type OutcomeKind string

const (
	// OutcomeSuppressed is the expected 404; it never shows up in a report.
	OutcomeSuppressed OutcomeKind = "suppressed"
	// OutcomeFlagged is any non-404 response.
	OutcomeFlagged OutcomeKind = "flagged"
	// OutcomeFailed is a transport-level failure.
	OutcomeFailed OutcomeKind = "failed"
)

// FailureKind narrows down why a probe failed, for triage.
type FailureKind string

const (
	FailureTimeout    FailureKind = "timeout"
	FailureDNS        FailureKind = "dns"
	FailureConnection FailureKind = "connection"
	FailureTLS        FailureKind = "tls"
	FailureRedirect   FailureKind = "redirect"
	FailureOther      FailureKind = "other"
)

// Outcome is the result of probing a single target.
// A flagged outcome carries a status and no error; a failed one carries an
// error and no status.
type Outcome struct {
	Kind        OutcomeKind `json:"kind"`
	URL         string      `json:"url"`
	StatusCode  int         `json:"status_code,omitempty"`
	Error       string      `json:"error,omitempty"`
	FailureKind FailureKind `json:"failure_kind,omitempty"`
	DurationMs  int64       `json:"duration_ms"`
}

// Bucket is the severity assigned to a flagged outcome.
type Bucket string

const (
	BucketUrgent      Bucket = "urgent"
	BucketRedirected  Bucket = "redirected"
	BucketServerError Bucket = "server_error"
	BucketOther       Bucket = "other"
)

// Buckets lists every bucket in report order.
var Buckets = []Bucket{BucketUrgent, BucketRedirected, BucketServerError, BucketOther}

// Finding is a flagged outcome after classification.
type Finding struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	Bucket     Bucket `json:"bucket"`
}

// Failure is a failed outcome, reported apart from findings.
type Failure struct {
	URL   string      `json:"url"`
	Error string      `json:"error"`
	Kind  FailureKind `json:"kind"`
}

// ScanConfig holds the settings of one scan. It is passed by value and never
// changed once the scan starts.
type ScanConfig struct {
	DomainFile      string `json:"domain_file"`
	SubdomainFile   string `json:"subdomain_file"`
	IgnoreSSL       bool   `json:"ignore_ssl"`
	FollowRedirects bool   `json:"follow_redirects"`
	CheckSubdomains bool   `json:"check_subdomains"`
	WebhookURL      string `json:"webhook_url,omitempty"`
}

// Progress is the completion state of a running scan.
type Progress struct {
	Checked int `json:"checked"`
	Total   int `json:"total"`
}

// Fraction returns checked/total. An empty scan is complete.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Checked) / float64(p.Total)
}

// Done reports whether every domain has been checked.
func (p Progress) Done() bool {
	return p.Checked >= p.Total
}
