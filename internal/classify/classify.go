// Package classify maps the status code of a flagged probe to its severity
// bucket. Every other package asks this one; nothing else holds the table.
package classify

import (
	"net/http"

	"github.com/selimozcann/infoprobe/internal/model"
)

// Bucket returns the severity bucket for a non-404 status code.
func Bucket(status int) model.Bucket {
	switch status {
	case http.StatusOK:
		return model.BucketUrgent
	case http.StatusMovedPermanently, http.StatusFound,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return model.BucketRedirected
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return model.BucketServerError
	default:
		return model.BucketOther
	}
}

// Finding classifies a flagged outcome. ok is false for any other kind.
func Finding(o model.Outcome) (f model.Finding, ok bool) {
	if o.Kind != model.OutcomeFlagged {
		return model.Finding{}, false
	}
	return model.Finding{URL: o.URL, StatusCode: o.StatusCode, Bucket: Bucket(o.StatusCode)}, true
}

// Label is the short human name of a bucket.
func Label(b model.Bucket) string {
	switch b {
	case model.BucketUrgent:
		return "Urgent"
	case model.BucketRedirected:
		return "Redirected"
	case model.BucketServerError:
		return "Server error"
	default:
		return "Other"
	}
}
