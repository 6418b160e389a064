package model

import "time"

// Verdict summarises a finished scan.
type Verdict string

const (
	// VerdictClean means nothing was flagged and every probe got through.
	VerdictClean Verdict = "clean"
	// VerdictErrors means nothing was flagged but some probes failed.
	VerdictErrors Verdict = "errors"
	// VerdictFindings means at least one domain needs manual follow-up.
	VerdictFindings Verdict = "findings"
)

// NotificationResult records what happened to the webhook after a scan.
type NotificationResult struct {
	Attempted bool   `json:"attempted"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

// Report is the aggregate result of a scan.
type Report struct {
	Urgent       []Finding          `json:"urgent"`
	Redirected   []Finding          `json:"redirected"`
	ServerErrors []Finding          `json:"server_errors"`
	Others       []Finding          `json:"others"`
	Failed       []Failure          `json:"failed"`
	Total        int                `json:"total"`
	Checked      int                `json:"checked"`
	Notes        []string           `json:"notes,omitempty"`
	StartedAt    time.Time          `json:"started_at"`
	DurationMs   int64              `json:"duration_ms"`
	Notification NotificationResult `json:"notification"`
}

// Add appends f to the list of its bucket.
func (r *Report) Add(f Finding) {
	switch f.Bucket {
	case BucketUrgent:
		r.Urgent = append(r.Urgent, f)
	case BucketRedirected:
		r.Redirected = append(r.Redirected, f)
	case BucketServerError:
		r.ServerErrors = append(r.ServerErrors, f)
	default:
		r.Others = append(r.Others, f)
	}
}

// Findings returns the list held for bucket b.
func (r *Report) Findings(b Bucket) []Finding {
	switch b {
	case BucketUrgent:
		return r.Urgent
	case BucketRedirected:
		return r.Redirected
	case BucketServerError:
		return r.ServerErrors
	default:
		return r.Others
	}
}

// FlaggedCount is the number of findings across all buckets.
func (r *Report) FlaggedCount() int {
	return len(r.Urgent) + len(r.Redirected) + len(r.ServerErrors) + len(r.Others)
}

// Verdict classifies the run.
func (r *Report) Verdict() Verdict {
	switch {
	case r.FlaggedCount() > 0:
		return VerdictFindings
	case len(r.Failed) > 0:
		return VerdictErrors
	default:
		return VerdictClean
	}
}
