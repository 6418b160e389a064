package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/selimozcann/infoprobe/internal/model"
)

// Block headings, in the order they are printed.
const (
	HeadingUrgent      = "The following domain(s) responded with a HTTP 200 status code, so need checking urgently:"
	HeadingRedirected  = "The following domain(s) redirected and are probably fine:"
	HeadingServerError = "There may have been an issue with the following domain(s):"
	HeadingOther       = "The following domain(s) returned other status codes:"
	HeadingFailed      = "The script completed, but the following issues were found:"
)

// Heading returns the block heading for bucket b.
func Heading(b model.Bucket) string {
	switch b {
	case model.BucketUrgent:
		return HeadingUrgent
	case model.BucketRedirected:
		return HeadingRedirected
	case model.BucketServerError:
		return HeadingServerError
	default:
		return HeadingOther
	}
}

// FindingLine formats one finding the way its block lists it.
func FindingLine(f model.Finding) string {
	switch f.Bucket {
	case model.BucketUrgent:
		return f.URL
	case model.BucketRedirected:
		return fmt.Sprintf("%s returned status code %d", f.URL, f.StatusCode)
	default:
		return fmt.Sprintf("%s - returned HTTP %d", f.URL, f.StatusCode)
	}
}

// FailureLine formats one transport failure.
func FailureLine(f model.Failure) string {
	return fmt.Sprintf("%s: %s", f.URL, f.Error)
}

// VerdictLine is the closing sentence of a text report.
func VerdictLine(r *model.Report) string {
	switch r.Verdict() {
	case model.VerdictFindings:
		return fmt.Sprintf("Scan finished: %d of %d domain(s) did not return HTTP 404 and need manual follow-up.",
			r.FlaggedCount(), r.Total)
	case model.VerdictErrors:
		return fmt.Sprintf("Scan completed with errors: %d of %d domain(s) could not be checked.",
			len(r.Failed), r.Total)
	default:
		return "Success! No scanned domains had the info.php file present."
	}
}

// RenderText returns the plain text report. It is what the CLI prints and
// what a finished job stores as its output.
func RenderText(r *model.Report) string {
	var b strings.Builder
	_ = WriteText(&b, r)
	return b.String()
}

// WriteText writes the plain text report to w.
func WriteText(w io.Writer, r *model.Report) error {
	if r == nil {
		return nil
	}
	tw := &textWriter{w: w}

	for _, n := range r.Notes {
		tw.line(n)
	}
	for _, bucket := range model.Buckets {
		findings := r.Findings(bucket)
		if len(findings) == 0 {
			continue
		}
		tw.heading(Heading(bucket))
		for _, f := range findings {
			tw.line(FindingLine(f))
		}
	}
	if len(r.Failed) > 0 {
		tw.heading(HeadingFailed)
		for _, f := range r.Failed {
			tw.line(FailureLine(f))
		}
	}

	switch {
	case r.Notification.Delivered:
		tw.line("\nWebhook notification sent.")
	case r.Notification.Attempted:
		tw.line("\nWebhook notification failed: " + r.Notification.Error)
	}

	tw.line("\n" + VerdictLine(r))
	return tw.err
}

type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) heading(s string) {
	t.line("\n" + s + "\n")
}

func (t *textWriter) line(s string) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintln(t.w, s)
}
