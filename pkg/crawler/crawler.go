package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/amosWeiskopf/crawlscribe/internal/models"
	"github.com/amosWeiskopf/crawlscribe/pkg/metrics"
)

// DefaultMaxPagesLimit is the largest max_pages accepted unless overridden
const DefaultMaxPagesLimit = 20

var (
	// ErrInvalidSeed is returned when the seed URL fails validation
	ErrInvalidSeed = errors.New("invalid seed URL")
	// ErrInvalidMaxPages is returned when max_pages is outside [1, limit]
	ErrInvalidMaxPages = errors.New("invalid max pages")
	// ErrNoTransformer is returned by Run when no transformer is configured
	ErrNoTransformer = errors.New("no content transformer configured")
)

// Crawler discovers the pages linked from a seed and turns each into a report section.
// A Crawler holds no per-run state; every Run owns its visited set and report.
type Crawler struct {
	fetcher       PageFetcher
	validator     *Validator
	extractor     TextExtractor
	transformer   Transformer
	logger        *zap.Logger
	metrics       *metrics.Metrics
	maxPagesLimit int
	progress      func(Progress)
}

// New creates a Crawler from its collaborators
func New(fetcher PageFetcher, validator *Validator, extractor TextExtractor, opts ...Option) (*Crawler, error) {
	if fetcher == nil || validator == nil || extractor == nil {
		return nil, fmt.Errorf("crawler requires a fetcher, a validator and an extractor")
	}

	c := &Crawler{
		fetcher:       fetcher,
		validator:     validator,
		extractor:     extractor,
		logger:        zap.NewNop(),
		maxPagesLimit: DefaultMaxPagesLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Frontier validates the seed, discovers its links and returns the ordered
// list of pages a run would visit: the seed first, then discovered links,
// truncated to maxPages.
func (c *Crawler) Frontier(ctx context.Context, seed string, maxPages int) ([]string, error) {
	if !c.validator.IsValid(seed) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeed, seed)
	}
	if maxPages < 1 || maxPages > c.maxPagesLimit {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidMaxPages, maxPages, c.maxPagesLimit)
	}

	links := c.DiscoverLinks(ctx, seed)

	frontier := make([]string, 0, len(links)+1)
	frontier = append(frontier, seed)
	frontier = append(frontier, links...)
	if len(frontier) > maxPages {
		frontier = frontier[:maxPages]
	}
	return frontier, nil
}

// Run crawls the seed and its same-host links, at most maxPages entries,
// one at a time and in frontier order. Page-level failures only degrade the
// page's section; the run fails for an invalid seed or bound, a missing
// transformer, rejected transform credentials, or a cancelled context.
func (c *Crawler) Run(ctx context.Context, seed string, maxPages int) (*models.Report, error) {
	if c.transformer == nil {
		return nil, ErrNoTransformer
	}

	runID := uuid.NewString()
	logger := c.logger.With(zap.String("run_id", runID))

	frontier, err := c.Frontier(ctx, seed, maxPages)
	if err != nil {
		return nil, err
	}
	logger.Info("Crawl started", zap.String("seed", seed), zap.Int("frontier", len(frontier)))

	seedURL, _ := url.Parse(seed)
	report := &models.Report{
		RunID:       runID,
		Seed:        seed,
		Domain:      seedURL.Host,
		GeneratedAt: time.Now().UTC(),
		Frontier:    frontier,
	}

	visited := make(map[string]bool, len(frontier))
	for i, pageURL := range frontier {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("crawl interrupted: %w", err)
		}
		if visited[pageURL] {
			logger.Debug("Skipped already visited page", zap.String("url", pageURL))
			continue
		}
		visited[pageURL] = true

		if c.progress != nil {
			c.progress(Progress{Index: i + 1, Total: len(frontier), URL: pageURL})
		}

		section, err := c.processPage(ctx, logger, pageURL)
		if err != nil {
			return nil, err
		}
		report.Sections = append(report.Sections, section)
		c.metrics.PageProcessed(string(section.Status))
	}

	logger.Info("Crawl finished",
		zap.Int("sections", len(report.Sections)),
		zap.Int("processed", report.Processed()))
	return report, nil
}

func (c *Crawler) processPage(ctx context.Context, logger *zap.Logger, pageURL string) (models.Section, error) {
	page := models.Page{URL: pageURL, Text: c.ExtractText(ctx, pageURL)}
	if page.Text == "" {
		logger.Warn("Could not extract text", zap.String("url", pageURL))
		return models.Section{
			URL:     pageURL,
			Status:  models.SectionNoContent,
			Content: fmt.Sprintf("Could not extract text from %s.", pageURL),
		}, nil
	}

	transformed, err := c.transformer.Transform(ctx, page.Text, page.URL)
	if err != nil {
		var fatal fatalError
		if errors.As(err, &fatal) && fatal.Fatal() {
			return models.Section{}, fmt.Errorf("transform %s: %w", pageURL, err)
		}
		if ctx.Err() != nil {
			return models.Section{}, fmt.Errorf("crawl interrupted: %w", ctx.Err())
		}
		logger.Warn("Could not process content", zap.String("url", pageURL), zap.Error(err))
		c.metrics.TransformFailed()
		return models.Section{
			URL:     pageURL,
			Status:  models.SectionTransformFailed,
			Content: fmt.Sprintf("Content could not be processed for %s.", pageURL),
		}, nil
	}
	page.Transformed = transformed

	logger.Info("Structured content", zap.String("url", pageURL), zap.Int("chars", len(page.Text)))
	return models.Section{URL: page.URL, Status: models.SectionOK, Content: page.Transformed}, nil
}

// ExtractText fetches pageURL and returns its visible text. Any failure is
// logged and yields an empty string.
func (c *Crawler) ExtractText(ctx context.Context, pageURL string) string {
	body, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		c.logger.Warn("Could not fetch page for extraction", zap.String("url", pageURL), zap.Error(err))
		return ""
	}

	text, err := c.extractor.ExtractText(string(body))
	if err != nil {
		c.logger.Warn("Could not extract text from page", zap.String("url", pageURL), zap.Error(err))
		return ""
	}
	return text
}
