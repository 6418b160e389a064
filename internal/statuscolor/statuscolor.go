package statuscolor

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/selimozcann/infoprobe/internal/model"
	"github.com/selimozcann/infoprobe/internal/output"
)

var (
	red    = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow)
	green  = color.New(color.FgGreen)
	cyan   = color.New(color.FgCyan)
	gray   = color.New(color.FgHiBlack)
)

// ForBucket returns the color used for a bucket.
func ForBucket(b model.Bucket) *color.Color {
	switch b {
	case model.BucketUrgent:
		return red
	case model.BucketRedirected:
		return green
	case model.BucketServerError:
		return yellow
	default:
		return cyan
	}
}

// Gray wraps the provided text with a gray ANSI color.
func Gray(text string) string {
	return gray.Sprint(text)
}

// PrintReport writes the text report with bucket-colored blocks.
func PrintReport(w io.Writer, r *model.Report) {
	for _, n := range r.Notes {
		fmt.Fprintln(w, Gray(n))
	}
	for _, b := range model.Buckets {
		findings := r.Findings(b)
		if len(findings) == 0 {
			continue
		}
		c := ForBucket(b)
		fmt.Fprintf(w, "\n%s\n\n", c.Sprint(output.Heading(b)))
		for _, f := range findings {
			fmt.Fprintln(w, c.Sprint(output.FindingLine(f)))
		}
	}
	if len(r.Failed) > 0 {
		fmt.Fprintf(w, "\n%s\n\n", yellow.Sprint(output.HeadingFailed))
		for _, f := range r.Failed {
			fmt.Fprintln(w, Gray(output.FailureLine(f)))
		}
	}

	switch {
	case r.Notification.Delivered:
		fmt.Fprintf(w, "\n%s\n", green.Sprint("Webhook notification sent."))
	case r.Notification.Attempted:
		fmt.Fprintf(w, "\n%s\n", red.Sprint("Webhook notification failed: "+r.Notification.Error))
	}

	verdict := output.VerdictLine(r)
	switch r.Verdict() {
	case model.VerdictFindings:
		fmt.Fprintf(w, "\n%s\n", red.Sprint(verdict))
	case model.VerdictErrors:
		fmt.Fprintf(w, "\n%s\n", yellow.Sprint(verdict))
	default:
		fmt.Fprintf(w, "\n%s\n", green.Sprint(verdict))
	}
}

// PrintProgress rewrites a single progress line on w.
func PrintProgress(w io.Writer, p model.Progress) {
	fmt.Fprintf(w, "\r%s %d/%d (%3.0f%%)", cyan.Sprint("[*] Checked"), p.Checked, p.Total, p.Fraction()*100)
	if p.Done() {
		fmt.Fprintln(w)
	}
}
