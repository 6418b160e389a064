package output

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/selimozcann/infoprobe/internal/classify"
	"github.com/selimozcann/infoprobe/internal/model"
)

// RenderSummaryTable writes a count per bucket, plus failures and totals.
func RenderSummaryTable(w io.Writer, r *model.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Scan summary")

	t.AppendHeader(table.Row{"Result", "Domains"})
	for _, b := range model.Buckets {
		t.AppendRow(table.Row{classify.Label(b), len(r.Findings(b))})
	}
	t.AppendRow(table.Row{"Failed", len(r.Failed)})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Checked", r.Checked})
	t.AppendRow(table.Row{"Verdict", string(r.Verdict())})
	t.Render()
}
