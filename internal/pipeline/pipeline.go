package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ppiankov/nounclass/internal/cache"
	"github.com/ppiankov/nounclass/internal/classify"
	"github.com/ppiankov/nounclass/internal/corpus"
	"github.com/ppiankov/nounclass/internal/logging"
	"github.com/ppiankov/nounclass/internal/model"
	"github.com/ppiankov/nounclass/internal/tagger"
	"github.com/ppiankov/nounclass/internal/util"
	"github.com/ppiankov/nounclass/internal/worker"
)

// Pipeline fetches and tags every configured source, then runs the
// sequential classification pass over the resulting documents
type Pipeline struct {
	config   *model.Config
	fetcher  *Fetcher
	tagger   tagger.Tagger
	batch    *worker.BatchProcessor
	renderer *Renderer
	logger   *zap.Logger
}

// NewPipeline wires the fetcher, cache, robots checker and tagger described by cfg
func NewPipeline(cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	logger = logging.OrNop(logger)

	fetcher, err := NewFetcher(cfg.HTTP, logger)
	if err != nil {
		return nil, errors.Wrap(err, "create fetcher")
	}

	tg, err := tagger.New(cfg.Tagger, fetcher.Client(), logger)
	if err != nil {
		return nil, errors.Wrap(err, "create tagger")
	}

	p := NewPipelineWith(cfg, fetcher, tg, logger)

	fetcher.WithCache(cache.New(cfg.Cache, logger), cfg.Cache.MemoryTTL)
	if cfg.HTTP.RespectRobots {
		robots := util.NewRobotsChecker(cfg.HTTP.UserAgent, fetcher.Client(), logger)
		fetcher.WithRobots(robots, p.batch.Limiter())
	}

	return p, nil
}

// NewPipelineWith builds a pipeline around an existing fetcher and tagger
func NewPipelineWith(cfg *model.Config, fetcher *Fetcher, tg tagger.Tagger, logger *zap.Logger) *Pipeline {
	logger = logging.OrNop(logger)
	p := &Pipeline{
		config:   cfg,
		fetcher:  fetcher,
		tagger:   tg,
		renderer: NewRenderer(cfg.Output.IncludeCounts),
		logger:   logger,
	}
	p.batch = worker.NewBatchProcessor(p, cfg.Concurrency.Workers,
		cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize).WithLogger(logger)
	return p
}

// LoadDocument fetches, decodes, cleans and tags one source
func (p *Pipeline) LoadDocument(ctx context.Context, src model.Source) (*model.LoadedDocument, error) {
	if src.Name == "" {
		src.Name = model.SourceNameFromURL(src.URL)
	}
	start := time.Now()

	fetched, err := p.fetcher.FetchWithRetry(ctx, src.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", src.Name)
	}

	text, err := corpus.Prepare(src, fetched.Body, fetched.Meta.ContentType)
	if err != nil {
		return nil, errors.Wrapf(err, "prepare %s", src.Name)
	}

	doc, err := p.tagger.Tag(ctx, src.Name, text)
	if err != nil {
		return nil, errors.Wrapf(err, "tag %s", src.Name)
	}

	p.logger.Debug("source tagged",
		zap.String(logging.FieldSource, src.Name),
		zap.String(logging.FieldBackend, p.tagger.Name()),
		zap.Int(logging.FieldBytes, len(fetched.Body)),
		zap.Int(logging.FieldTokens, doc.Len()),
		zap.Bool("from_cache", fetched.FromCache),
		zap.Int64(logging.FieldDuration, time.Since(start).Milliseconds()))

	return &model.LoadedDocument{
		Summary: model.SourceSummary{
			Name:      src.Name,
			URL:       src.URL,
			FinalURL:  fetched.FinalURL,
			Bytes:     len(fetched.Body),
			Tokens:    doc.Len(),
			FromCache: fetched.FromCache,
			FetchMeta: fetched.Meta,
		},
		Document: doc,
	}, nil
}

// Run loads every configured source and classifies the corpus. Any source
// failure fails the run; the errors of all failed sources are combined.
func (p *Pipeline) Run(ctx context.Context) (*model.Report, error) {
	results := p.batch.ProcessSources(ctx, p.config.Sources)

	var errs error
	loaded := make([]*model.LoadedDocument, 0, len(results))
	for _, r := range results {
		if r.Error != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(r.Error, "source %q", r.Source.Name))
			continue
		}
		loaded = append(loaded, r.Loaded)
	}
	if errs != nil {
		return nil, errs
	}

	return BuildReport(loaded, p.tagger.Name(), p.config.Output.IncludeCounts)
}

// BuildReport runs the detectors over the documents in order and buckets
// the tallies. An untyped tally is returned as an assertion failure.
func BuildReport(loaded []*model.LoadedDocument, taggerName string, includeCounts bool) (*model.Report, error) {
	agg := classify.NewAggregator()
	summaries := make([]model.SourceSummary, 0, len(loaded))
	for _, l := range loaded {
		agg.Observe(l.Document)
		summaries = append(summaries, l.Summary)
	}

	tallies := agg.Tallies()
	buckets, err := classify.Bucketize(tallies)
	if err != nil {
		return nil, err
	}

	var counts []model.NounCount
	if includeCounts {
		counts, err = classify.Counts(tallies)
		if err != nil {
			return nil, err
		}
	}

	return &model.Report{
		GeneratedAt: time.Now().UTC(),
		Tagger:      taggerName,
		Sources:     summaries,
		Buckets:     buckets,
		Nouns:       counts,
		Stats:       agg.Stats(),
	}, nil
}

// Renderer returns the pipeline's report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// RenderReport writes the report to the requested files
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return errors.Wrap(err, "render JSON")
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return errors.Wrap(err, "render markdown")
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	return nil
}
