package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/nounclass/internal/logging"
	"github.com/ppiankov/nounclass/internal/model"
	"github.com/ppiankov/nounclass/internal/pipeline"
	"github.com/ppiankov/nounclass/internal/worker"
)

var (
	runTimeout  time.Duration
	sourcesFile string
	noCache     bool
	noRobots    bool
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Fetch the corpus, tag it and print the five noun classes",
	Long: `Classify runs the whole corpus pass:
- Fetch every configured source (cached, rate-limited, robots.txt aware)
- Decode and clean each text (verse numbers, optional Gutenberg boilerplate)
- Tag each text with the selected part-of-speech tagger
- Run the three patterns over every noun in document order
- Print the five classes, and optionally write JSON and Markdown reports

Example:
  nounclass classify
  nounclass classify --json report.json --md report.md
  nounclass classify --sources-file sources.txt --tagger udpipe -v`,
	Args: cobra.NoArgs,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	flags := classifyCmd.Flags()

	// Output flags
	flags.String("json", "", "output JSON path (optional)")
	flags.String("md", "", "output Markdown path (optional)")

	// Corpus flags
	flags.StringVar(&sourcesFile, "sources-file", "", "read sources from a file (URL [NAME [ENCODING]] per line) instead of the config")
	flags.String("tagger", model.TaggerProse, "tagger backend (prose, udpipe)")
	flags.Int("workers", 3, "number of sources fetched and tagged concurrently")

	// HTTP flags
	flags.DurationVar(&runTimeout, "timeout", 30*time.Minute, "overall timeout for the run")
	flags.String("ua", "", "HTTP User-Agent")
	flags.Int64("max-bytes", 0, "max response bytes to read per source")
	flags.BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	flags.BoolVar(&noRobots, "no-robots", false, "do not consult robots.txt")
	flags.Bool("insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	flags.String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	flags.String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// Bind flags to viper; unchanged flags leave config and env values alone
	for key, flag := range map[string]string{
		"output.json":         "json",
		"output.markdown":     "md",
		"tagger.backend":      "tagger",
		"concurrency.workers": "workers",
		"http.user_agent":     "ua",
		"http.max_body_bytes": "max-bytes",
		"http.insecure_tls":   "insecure",
		"http.http_proxy":     "http-proxy",
		"http.https_proxy":    "https-proxy",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := classifyConfig(viper.GetViper())
	if err != nil {
		return err
	}
	verbose := cfg.Output.Verbose

	logger := logging.New(verbosity, logJSON)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Sources:  %d\n", len(cfg.Sources))
		fmt.Fprintf(os.Stderr, "Tagger:   %s\n", cfg.Tagger.Backend)
		fmt.Fprintf(os.Stderr, "Workers:  %d\n", cfg.Concurrency.Workers)
		fmt.Fprintf(os.Stderr, "Cache:    %v\n", cfg.Cache.Enabled)
		fmt.Fprintf(os.Stderr, "Timeout:  %v\n", runTimeout)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintf(os.Stderr, "⚙️  Fetching and tagging sources...\n")
	}

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return errors.Wrap(err, "create pipeline")
	}

	report, err := p.Run(ctx)
	if err != nil {
		if errors.HasAssertionFailure(err) {
			return errors.Wrap(err, "classification aborted")
		}
		return errors.Wrap(err, "classify failed")
	}

	if verbose {
		p.Renderer().RenderSummary(os.Stderr, report)
		fmt.Fprintln(os.Stderr)
	}

	if err := p.Renderer().RenderText(os.Stdout, report); err != nil {
		return err
	}

	if err := p.RenderReport(report, cfg.Output.JSONPath, cfg.Output.MarkdownPath, verbose); err != nil {
		return errors.Wrap(err, "render failed")
	}

	return nil
}

// classifyConfig loads the configuration and applies the flags that do not
// map onto a config key
func classifyConfig(v *viper.Viper) (*model.Config, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}

	if noCache {
		cfg.Cache.Enabled = false
	}
	if noRobots {
		cfg.HTTP.RespectRobots = false
	}
	if sourcesFile != "" {
		sources, err := worker.ReadSourcesFromFile(sourcesFile)
		if err != nil {
			return nil, errors.Wrap(err, "read sources file")
		}
		cfg.Sources = sources
	}
	cfg.Output.Verbose = verbosity > 0

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}
