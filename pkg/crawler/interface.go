package crawler

import (
	"context"

	"go.uber.org/zap"

	"github.com/amosWeiskopf/crawlscribe/pkg/metrics"
)

// PageFetcher downloads the raw HTML of a page
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// TextExtractor turns HTML into a flat text blob
type TextExtractor interface {
	ExtractText(htmlContent string) (string, error)
}

// Transformer restructures extracted page text into Markdown
type Transformer interface {
	Transform(ctx context.Context, text, sourceURL string) (string, error)
}

// fatalError is implemented by transform errors that must abort the run,
// such as rejected credentials.
type fatalError interface {
	Fatal() bool
}

// Progress describes the frontier entry about to be processed
type Progress struct {
	Index int // 1-based
	Total int
	URL   string
}

// Option configures a Crawler
type Option func(*Crawler)

// WithLogger sets the logger used for warnings and progress
func WithLogger(logger *zap.Logger) Option {
	return func(c *Crawler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records per-page outcomes in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Crawler) {
		c.metrics = m
	}
}

// WithMaxPagesLimit sets the largest max_pages a run accepts
func WithMaxPagesLimit(limit int) Option {
	return func(c *Crawler) {
		if limit > 0 {
			c.maxPagesLimit = limit
		}
	}
}

// WithTransformer sets the content transform service used by Run
func WithTransformer(t Transformer) Option {
	return func(c *Crawler) {
		c.transformer = t
	}
}

// WithProgress registers a callback invoked before each frontier entry is processed
func WithProgress(fn func(Progress)) Option {
	return func(c *Crawler) {
		c.progress = fn
	}
}
