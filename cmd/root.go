// Package cmd implements the infoprobe command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/selimozcann/infoprobe/internal/banner"
	"github.com/selimozcann/infoprobe/internal/config"
	"github.com/selimozcann/infoprobe/internal/httpclient"
	"github.com/selimozcann/infoprobe/internal/logger"
	"github.com/selimozcann/infoprobe/internal/metrics"
	"github.com/selimozcann/infoprobe/internal/model"
	"github.com/selimozcann/infoprobe/internal/notify"
	"github.com/selimozcann/infoprobe/internal/output"
	"github.com/selimozcann/infoprobe/internal/scanner"
	"github.com/selimozcann/infoprobe/internal/statuscolor"
)

var (
	cfgFile string
	debug   bool

	outputJSONL string
	outputHTML  string
	noProgress  bool
	noBanner    bool
	summary     bool

	v      = config.New()
	appCfg *config.Config
	log    logger.Logger = logger.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "infoprobe",
	Short: "Check domains for an exposed info.php",
	Long: `infoprobe requests https://<domain>/info.php for every domain in a list and
reports each one that does not answer 404, grouped by status code.

Examples:
  infoprobe -f domains.txt
  infoprobe --ignore-ssl --check-subdomains --webhook-url https://example.webhook.office.com/...
  infoprobe serve --schedule "0 3 * * *"`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runScan,
	PersistentPostRun: func(*cobra.Command, []string) { _ = log.Sync() },
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "[-] Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./infoprobe.yaml or ./config/infoprobe.yaml)")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")

	f := rootCmd.Flags()
	f.StringP("file", "f", "domains.txt", "Path to the file containing domains (one per line)")
	f.String("subdomains-file", "sub-domains.txt", "Path to the optional sub-domains file")
	f.Bool("ignore-ssl", false, "Disable SSL certificate verification")
	f.Bool("follow-redirects", false, "Follow redirects instead of reporting the 3xx response")
	f.Bool("check-subdomains", false, "Also check the domains listed in the sub-domains file")
	f.String("webhook-url", "", "Webhook URL notified when urgent findings exist")
	f.String("path", "/info.php", "Path probed on every domain")
	f.IntP("concurrency", "t", 10, "Number of domains probed in parallel (1 = sequential)")
	f.Int("rate-limit", 0, "Global rate limit in requests per second (0 = unlimited)")
	f.Duration("timeout", httpclient.DefaultTimeout, "Per-request timeout")
	f.StringVarP(&outputJSONL, "output", "o", "", "JSONL output file")
	f.StringVar(&outputHTML, "html", "", "HTML report output file")
	f.BoolVar(&noProgress, "no-progress", false, "Do not print the progress line")
	f.BoolVar(&noBanner, "no-banner", false, "Do not print the startup banner")
	f.BoolVar(&summary, "summary", false, "Print a summary table after the report")

	mustBind(v, f, map[string]string{
		"scan.file":             "file",
		"scan.subdomains_file":  "subdomains-file",
		"scan.ignore_ssl":       "ignore-ssl",
		"scan.follow_redirects": "follow-redirects",
		"scan.check_subdomains": "check-subdomains",
		"scan.webhook_url":      "webhook-url",
		"probe.path":            "path",
		"probe.concurrency":     "concurrency",
		"probe.rate_limit":      "rate-limit",
		"probe.timeout":         "timeout",
	})
	mustBind(v, pf, map[string]string{"logger.development": "debug"})

	rootCmd.AddCommand(serveCommand(), versionCommand())
}

func mustBind(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

// setup loads configuration and builds the logger before any command runs.
func setup(*cobra.Command, []string) error {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	if debug {
		cfg.Logger.Level = "debug"
	}
	l, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	appCfg, log = cfg, l
	return nil
}

func newScanner(cfg *config.Config, m *metrics.Metrics) *scanner.Scanner {
	return scanner.New(scanner.Options{
		Path:        cfg.Probe.Path,
		Timeout:     cfg.Probe.Timeout,
		Concurrency: cfg.Probe.Concurrency,
		RateLimit:   cfg.Probe.RateLimit,
		UserAgent:   cfg.Probe.UserAgent,
	}, notify.New(cfg.Webhook.Timeout, log), log, m)
}

func runScan(cmd *cobra.Command, _ []string) error {
	stderr := cmd.ErrOrStderr()
	if !noBanner {
		banner.PrintBanner(stderr, Version)
	}

	var progress func(model.Progress)
	if !noProgress {
		progress = func(p model.Progress) { statuscolor.PrintProgress(stderr, p) }
	}

	report, err := newScanner(appCfg, nil).Run(cmd.Context(), appCfg.ScanConfig(), progress)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	statuscolor.PrintReport(out, report)
	if summary {
		fmt.Fprintln(out)
		output.RenderSummaryTable(out, report)
	}

	if outputJSONL != "" {
		if err := writeJSONLFile(outputJSONL, output.BuildRecords(report)); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "[write] JSONL report -> %s\n", outputJSONL)
	}
	if outputHTML != "" {
		if err := writeHTMLFile(outputHTML, report); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "[write] HTML report -> %s\n", outputHTML)
	}
	return nil
}
