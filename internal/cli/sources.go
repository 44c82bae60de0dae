package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/nounclass/internal/logging"
	"github.com/ppiankov/nounclass/internal/model"
	"github.com/ppiankov/nounclass/internal/validate"
)

var sourcesCheck bool

// sourcesCmd represents the sources command
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured corpus sources",
	Long: `List the corpus sources the classify command will fetch, with their
encoding and cleanup settings.

With --check, each source is probed with a HEAD request (and robots.txt
when http.respect_robots is set) without downloading the texts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		if len(cfg.Sources) == 0 {
			return errors.New("no sources configured")
		}
		if !sourcesCheck {
			return printSources(os.Stdout, cfg.Sources)
		}
		return checkSources(cmd.Context(), cfg)
	},
}

func init() {
	sourcesCmd.Flags().BoolVar(&sourcesCheck, "check", false, "probe each source for reachability")
	rootCmd.AddCommand(sourcesCmd)
}

func printSources(out io.Writer, sources []model.Source) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tENCODING\tVERSES\tBOILERPLATE\tURL")
	for _, src := range sources {
		encoding := src.Encoding
		if encoding == "" {
			encoding = "utf-8"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			src.Name, encoding, flagMark(src.StripVerseNumbers), flagMark(src.StripBoilerplate), src.URL)
	}
	return w.Flush()
}

func checkSources(ctx context.Context, cfg *model.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.New(verbosity, logJSON)
	defer func() { _ = logger.Sync() }()

	checker, err := validate.NewChecker(cfg.HTTP, cfg.Concurrency.Workers, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Checking %d sources...\n", len(cfg.Sources))
	results := checker.Check(ctx, cfg.Sources)
	if err := printChecks(os.Stdout, results); err != nil {
		return err
	}

	var unusable int
	for _, r := range results {
		if !r.Usable() {
			unusable++
		}
	}
	if unusable > 0 {
		return errors.WithHint(
			errors.Newf("%d of %d sources are not usable", unusable, len(results)),
			"fix or remove them in the config file, or pass --no-robots if robots.txt is the only obstacle")
	}
	fmt.Fprintln(os.Stderr, "✓ All sources reachable")
	return nil
}

func printChecks(out io.Writer, results []model.SourceCheck) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS\tSIZE\tROBOTS\tMODIFIED\tNOTE")
	for _, r := range results {
		status := "-"
		if r.StatusCode > 0 {
			status = strconv.Itoa(r.StatusCode)
		}
		modified := "-"
		if r.LastModified != nil {
			modified = r.LastModified.Format(time.DateOnly)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Name, status, sizeLabel(r.ContentLength), robotsLabel(r), modified, checkNote(r))
	}
	return w.Flush()
}

func sizeLabel(n int64) string {
	switch {
	case n < 0:
		return "?"
	case n >= 1<<20:
		return fmt.Sprintf("%.1fM", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fK", float64(n)/(1<<10))
	default:
		return strconv.FormatInt(n, 10)
	}
}

func robotsLabel(r model.SourceCheck) string {
	if !r.RobotsAllowed {
		return "disallowed"
	}
	if r.CrawlDelay > 0 {
		return "delay " + r.CrawlDelay.String()
	}
	return "ok"
}

func checkNote(r model.SourceCheck) string {
	switch {
	case r.Error != "":
		return r.Error
	case r.TooLarge:
		return "exceeds http.max_body_bytes"
	case r.IsDead:
		return "dead"
	case r.RedirectURL != "":
		return "→ " + r.RedirectURL
	case !r.IsAccessible:
		return "unreachable"
	default:
		return ""
	}
}

func flagMark(b bool) string {
	if b {
		return "strip"
	}
	return "-"
}
