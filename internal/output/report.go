package output

import (
	"bufio"
	"encoding/json"
	"html/template"
	"io"
	"time"

	"github.com/selimozcann/infoprobe/internal/classify"
	"github.com/selimozcann/infoprobe/internal/model"
)

// RecordType tells findings and transport failures apart in JSONL output.
type RecordType string

const (
	RecordTypeFinding RecordType = "finding"
	RecordTypeFailure RecordType = "failure"
)

// Record represents one line in the JSONL report.
type Record struct {
	Timestamp   string            `json:"timestamp"`
	URL         string            `json:"url"`
	Type        RecordType        `json:"type"`
	Bucket      model.Bucket      `json:"bucket,omitempty"`
	StatusCode  int               `json:"status_code,omitempty"`
	Error       string            `json:"error,omitempty"`
	FailureKind model.FailureKind `json:"failure_kind,omitempty"`
}

// BuildRecords flattens a report into JSONL records: findings bucket by
// bucket, then failures.
func BuildRecords(r *model.Report) []Record {
	ts := r.StartedAt.UTC().Format(time.RFC3339)
	records := make([]Record, 0, r.FlaggedCount()+len(r.Failed))
	for _, b := range model.Buckets {
		for _, f := range r.Findings(b) {
			records = append(records, Record{
				Timestamp:  ts,
				URL:        f.URL,
				Type:       RecordTypeFinding,
				Bucket:     f.Bucket,
				StatusCode: f.StatusCode,
			})
		}
	}
	for _, f := range r.Failed {
		records = append(records, Record{
			Timestamp:   ts,
			URL:         f.URL,
			Type:        RecordTypeFailure,
			Error:       f.Error,
			FailureKind: f.Kind,
		})
	}
	return records
}

// WriteJSONL writes each record as a JSON line to w.
func WriteJSONL(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Section is one bucket block of the HTML report.
type Section struct {
	ID       string
	Label    string
	Heading  string
	Findings []model.Finding
}

// PageData provides the full context for the HTML report.
type PageData struct {
	Title       string
	GeneratedAt time.Time
	Report      *model.Report
	Sections    []Section
	Verdict     string
}

// BuildPageData prepares a report for the HTML template.
func BuildPageData(title string, r *model.Report, now time.Time) PageData {
	data := PageData{Title: title, GeneratedAt: now, Report: r, Verdict: VerdictLine(r)}
	for _, b := range model.Buckets {
		data.Sections = append(data.Sections, Section{
			ID:       string(b),
			Label:    classify.Label(b),
			Heading:  Heading(b),
			Findings: r.Findings(b),
		})
	}
	return data
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"formatTime": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
}).Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
:root { color-scheme: light dark; }
body { font-family: system-ui, -apple-system, Segoe UI, Roboto, sans-serif; margin: 24px; background:#fafafa; color:#111; }
h1 { font-size: 26px; margin: 0 0 8px; }
h2 { font-size:20px; margin:0 0 12px; }
.section { border:1px solid #e5e7eb; border-radius:16px; padding:16px 20px; margin-bottom:18px; background:#fff; }
.summary-grid { display:grid; gap:12px; grid-template-columns: repeat(auto-fit,minmax(160px,1fr)); }
.summary-card { padding:12px; border-radius:12px; border:1px solid #cbd5f5; text-decoration:none; color:inherit; }
.summary-card .badge { float:right; padding:2px 10px; border-radius:999px; background:#4f46e5; color:#fff; font-size:12px; }
.summary-card.urgent .badge { background:#dc2626; }
.meta { color:#6b7280; font-size:12px; }
.table { width:100%; border-collapse:collapse; font-size:14px; }
.table th, .table td { border-bottom:1px solid #e5e7eb; padding:6px 8px; text-align:left; }
.url { font-family: ui-monospace, SFMono-Regular, Menlo, Consolas, monospace; font-size:13px; }
.verdict { font-weight:600; }
@media (prefers-color-scheme: dark) {
        body { background:#0f172a; color:#e2e8f0; }
        .section { background:#1e293b; border-color:#334155; }
        .meta { color:#94a3b8; }
}
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <p class="meta">Generated at {{formatTime .GeneratedAt}} &bull; {{.Report.Checked}} of {{.Report.Total}} domains checked in {{.Report.DurationMs}}ms</p>
  <p class="verdict">{{.Verdict}}</p>
</header>
<section id="summary" class="section">
  <h2>Summary</h2>
  <div class="summary-grid">
  {{- range .Sections }}
    <a class="summary-card {{.ID}}" href="#{{.ID}}"><strong>{{.Label}}</strong><span class="badge">{{len .Findings}}</span></a>
  {{- end }}
    <a class="summary-card" href="#failed"><strong>Failed</strong><span class="badge">{{len .Report.Failed}}</span></a>
  </div>
  {{- range .Report.Notes }}
  <p class="meta">{{.}}</p>
  {{- end }}
</section>
{{- range .Sections }}
{{- if .Findings }}
<section id="{{.ID}}" class="section">
  <h2>{{.Heading}}</h2>
  <table class="table">
    <thead><tr><th>URL</th><th>Status</th></tr></thead>
    <tbody>
    {{- range .Findings }}
      <tr><td class="url">{{.URL}}</td><td>{{.StatusCode}}</td></tr>
    {{- end }}
    </tbody>
  </table>
</section>
{{- end }}
{{- end }}
{{- if .Report.Failed }}
<section id="failed" class="section">
  <h2>The script completed, but the following issues were found:</h2>
  <table class="table">
    <thead><tr><th>URL</th><th>Kind</th><th>Error</th></tr></thead>
    <tbody>
    {{- range .Report.Failed }}
      <tr><td class="url">{{.URL}}</td><td>{{.Kind}}</td><td>{{.Error}}</td></tr>
    {{- end }}
    </tbody>
  </table>
</section>
{{- end }}
</body>
</html>
`))

// RenderHTML renders the HTML report using the provided data.
func RenderHTML(w io.Writer, data PageData) error {
	return htmlTemplate.Execute(w, data)
}
