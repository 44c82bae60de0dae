package worker

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ppiankov/nounclass/internal/logging"
	"github.com/ppiankov/nounclass/internal/model"
)

// Loader fetches and tags one corpus source
type Loader interface {
	LoadDocument(ctx context.Context, src model.Source) (*model.LoadedDocument, error)
}

// LoadJob loads one source after waiting on the per-host limiter
type LoadJob struct {
	Source  model.Source
	Loader  Loader
	Limiter *Limiter
}

// Execute runs the job
func (j *LoadJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Source.URL); err != nil {
			return &LoadResult{Source: j.Source, Error: errors.Wrapf(err, "rate limit %s", j.Source.Name)}
		}
	}

	loaded, err := j.Loader.LoadDocument(ctx, j.Source)
	if err != nil {
		return &LoadResult{Source: j.Source, Error: err}
	}
	return &LoadResult{Source: j.Source, Loaded: loaded}
}

// LoadResult is the outcome of a LoadJob
type LoadResult struct {
	Source model.Source
	Loaded *model.LoadedDocument
	Error  error
}

// GetError returns the load error, if any
func (r *LoadResult) GetError() error {
	return r.Error
}

// BatchProcessor loads several sources concurrently
type BatchProcessor struct {
	loader      Loader
	concurrency int
	limiter     *Limiter
	logger      *zap.Logger
}

// NewBatchProcessor creates a batch processor. A non-positive rps disables
// rate limiting.
func NewBatchProcessor(loader Loader, concurrency int, rps float64, burst int) *BatchProcessor {
	return &BatchProcessor{
		loader:      loader,
		concurrency: concurrency,
		limiter:     NewLimiter(rps, burst),
		logger:      zap.NewNop(),
	}
}

// WithLogger sets the logger used for per-source progress
func (b *BatchProcessor) WithLogger(logger *zap.Logger) *BatchProcessor {
	b.logger = logging.OrNop(logger)
	return b
}

// Limiter exposes the per-host limiter, e.g. to apply robots.txt crawl delays
func (b *BatchProcessor) Limiter() *Limiter {
	return b.limiter
}

// ProcessSources loads every source. Results are in input order, one per source.
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []model.Source) []*LoadResult {
	if len(sources) == 0 {
		return []*LoadResult{}
	}

	pool := NewPoolContext(ctx, b.concurrency)
	pool.Start()

	for _, src := range sources {
		pool.Submit(&LoadJob{
			Source:  src,
			Loader:  b.loader,
			Limiter: b.limiter,
		})
	}

	results := pool.Wait()

	out := make([]*LoadResult, len(sources))
	for i, result := range results {
		if result == nil {
			out[i] = &LoadResult{Source: sources[i], Error: droppedError(ctx)}
			continue
		}
		out[i] = result.(*LoadResult)
	}

	for _, r := range out {
		if r.Error != nil {
			b.logger.Warn("source failed", zap.String(logging.FieldSource, r.Source.Name), zap.Error(r.Error))
			continue
		}
		b.logger.Info("source loaded",
			zap.String(logging.FieldSource, r.Source.Name),
			zap.Int(logging.FieldTokens, r.Loaded.Document.Len()))
	}

	return out
}

func droppedError(ctx context.Context) error {
	if cause := context.Cause(ctx); cause != nil {
		return errors.Wrap(cause, "cancelled before load")
	}
	return errors.New("job dropped before load")
}

// ProcessFile reads sources from a file and loads them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*LoadResult, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "read sources")
	}

	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads one source per line in the form
//
//	URL [NAME [ENCODING]]
//
// Blank lines and lines starting with '#' are skipped. Repeated URLs are
// kept once. A missing name is derived from the URL, a missing encoding
// means UTF-8.
func ReadSourcesFromFile(filePath string) ([]model.Source, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}
	defer func() { _ = file.Close() }()

	var sources []model.Source
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		src := model.Source{URL: fields[0], Encoding: "utf-8"}
		if seen[src.URL] {
			continue
		}
		seen[src.URL] = true

		if len(fields) > 1 {
			src.Name = fields[1]
		} else {
			src.Name = model.SourceNameFromURL(src.URL)
		}
		if len(fields) > 2 {
			src.Encoding = strings.ToLower(fields[2])
		}
		sources = append(sources, src)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan file")
	}

	return sources, nil
}
