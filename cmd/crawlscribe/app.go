package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amosWeiskopf/crawlscribe/internal/config"
	"github.com/amosWeiskopf/crawlscribe/internal/logging"
	"github.com/amosWeiskopf/crawlscribe/pkg/crawler"
	"github.com/amosWeiskopf/crawlscribe/pkg/extractor"
	"github.com/amosWeiskopf/crawlscribe/pkg/metrics"
	"github.com/amosWeiskopf/crawlscribe/pkg/transform"
)

// app holds the collaborators built once per process
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	metrics   *metrics.Metrics
	crawler   *crawler.Crawler
	transform *transform.Service
}

// newApp loads configuration and wires the crawler. When withTransform is set
// the content transform service is built too, so a missing credential fails
// before anything is fetched.
func newApp(cmd *cobra.Command, withTransform bool) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Logging.Level = "debug"
	}
	if cmd.Flags().Lookup("mode") != nil {
		if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
			cfg.Transform.Mode = mode
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, metrics: metrics.New()}

	fetcher, err := crawler.NewFetcher(crawler.FetchOptions{
		UserAgent:         cfg.Crawler.UserAgent,
		Timeout:           cfg.Crawler.Timeout,
		MaxBodyBytes:      cfg.Crawler.MaxBodyBytes,
		Retries:           cfg.Crawler.Retries,
		RetryBackoff:      cfg.Crawler.RetryBackoff,
		RequestsPerSecond: cfg.Crawler.RequestsPerSecond,
		Logger:            logger,
		Metrics:           a.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}

	opts := []crawler.Option{
		crawler.WithLogger(logger),
		crawler.WithMetrics(a.metrics),
		crawler.WithMaxPagesLimit(cfg.Crawler.MaxPagesLimit),
		crawler.WithProgress(func(p crawler.Progress) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Analyzing page %d/%d: %s\n", p.Index, p.Total, p.URL)
		}),
	}

	if withTransform {
		gemini, err := transform.NewGeminiClient(transform.GeminiOptions{
			APIKey:      cfg.APIs.Gemini.APIKey,
			Model:       cfg.APIs.Gemini.Model,
			Endpoint:    cfg.APIs.Gemini.Endpoint,
			Temperature: cfg.APIs.Gemini.Temperature,
			Timeout:     cfg.APIs.Gemini.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to configure the language model (set GOOGLE_API_KEY): %w", err)
		}
		a.transform, err = transform.NewService(gemini, transform.Options{
			Mode:              transform.Mode(cfg.Transform.Mode),
			SummaryParagraphs: cfg.Transform.SummaryParagraphs,
			MaxInputChars:     cfg.Transform.MaxInputChars,
			Retries:           cfg.Transform.Retries,
			RetryBackoff:      cfg.Transform.RetryBackoff,
			Logger:            logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create transform service: %w", err)
		}
		opts = append(opts, crawler.WithTransformer(a.transform))
	}

	validator := crawler.NewValidator(cfg.Crawler.ExcludedExtensions)
	a.crawler, err = crawler.New(fetcher, validator, extractor.New(extractor.Mode(cfg.Crawler.Extraction)), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create crawler: %w", err)
	}

	return a, nil
}

// maxPages returns the --max-pages flag, falling back to the configured default
func (a *app) maxPages(cmd *cobra.Command) int {
	if n, _ := cmd.Flags().GetInt("max-pages"); n != 0 {
		return n
	}
	return a.cfg.Crawler.MaxPages
}

// loadGuide reads the persona guide from --guide or transform.guide_path
func (a *app) loadGuide(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("guide")
	if path == "" {
		path = a.cfg.Transform.GuidePath
	}
	guide, err := transform.LoadGuide(path)
	if err != nil {
		return "", fmt.Errorf("failed to load guide template: %w", err)
	}
	return guide, nil
}

// close flushes metrics and logs
func (a *app) close() {
	if a.cfg.Metrics.Textfile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			a.logger.Warn("Could not write metrics", zap.String("path", a.cfg.Metrics.Textfile), zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved to %s\n", path)
	return nil
}
