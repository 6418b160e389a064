package banner

import (
	"io"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
)

// PrintBanner writes the startup banner to w.
func PrintBanner(w io.Writer, version string) {
	myFigure := figure.NewFigure("INFOPROBE", "doom", true)
	_, _ = color.New(color.FgRed).Fprint(w, myFigure.String())

	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)

	_, _ = cyan.Fprintln(w, "════════════════════════════════════════════════")
	_, _ = green.Fprintf(w, "    info.php exposure scanner | %s\n", version)
	_, _ = cyan.Fprintln(w, "════════════════════════════════════════════════")
}
