// Package transform turns extracted page text into Markdown by prompting a
// generative language model, and builds persona prompts from a crawl report.
package transform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/amosWeiskopf/crawlscribe/pkg/utils"
)

// NoContentMessage is returned, without calling the model, for empty input
const NoContentMessage = "No textual content was found to analyze."

// Mode selects the prompt used for page text
type Mode string

const (
	// ModeStructure restructures the whole page without summarizing it
	ModeStructure Mode = "structure"
	// ModeSummarize condenses the page into paragraphs and key points
	ModeSummarize Mode = "summarize"
)

// Generator sends a prompt to a language model and returns its reply
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options configures a Service
type Options struct {
	Mode              Mode
	SummaryParagraphs int
	MaxInputChars     int
	Retries           int
	RetryBackoff      time.Duration
	Logger            *zap.Logger
}

// Service is the content transform service used by the crawler
type Service struct {
	gen     Generator
	page    *template.Template
	persona *template.Template
	opts    Options
	logger  *zap.Logger
}

// NewService creates a Service prompting gen
func NewService(gen Generator, opts Options) (*Service, error) {
	if gen == nil {
		return nil, errors.New("transform service requires a generator")
	}
	if opts.Mode == "" {
		opts.Mode = ModeStructure
	}
	if opts.SummaryParagraphs <= 0 {
		opts.SummaryParagraphs = 3
	}
	if opts.MaxInputChars <= 0 {
		opts.MaxInputChars = 30000
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 2 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	var pageTmpl string
	switch opts.Mode {
	case ModeStructure:
		pageTmpl = structurePrompt
	case ModeSummarize:
		pageTmpl = summarizePrompt
	default:
		return nil, fmt.Errorf("unknown transform mode %q", opts.Mode)
	}

	return &Service{
		gen:     gen,
		page:    template.Must(template.New(string(opts.Mode)).Parse(pageTmpl)),
		persona: template.Must(template.New("persona").Parse(personaPrompt)),
		opts:    opts,
		logger:  opts.Logger,
	}, nil
}

type pageData struct {
	URL        string
	Text       string
	Paragraphs int
}

// Transform returns Markdown for the text extracted from sourceURL. Text
// beyond the input budget is dropped before the call.
func (s *Service) Transform(ctx context.Context, text, sourceURL string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return NoContentMessage, nil
	}

	text = s.truncate(text, sourceURL)
	prompt, err := render(s.page, pageData{URL: sourceURL, Text: text, Paragraphs: s.opts.SummaryParagraphs})
	if err != nil {
		return "", err
	}
	return s.generate(ctx, prompt)
}

func (s *Service) truncate(text, source string) string {
	limited, truncated := utils.TruncateRunes(text, s.opts.MaxInputChars)
	if truncated {
		s.logger.Debug("Input truncated",
			zap.String("source", source),
			zap.Int("limit", s.opts.MaxInputChars))
	}
	return limited
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= s.opts.Retries; attempt++ {
		if attempt > 0 {
			delay := s.opts.RetryBackoff * time.Duration(1<<(attempt-1))
			s.logger.Debug("Retrying model call", zap.Int("attempt", attempt+1), zap.Duration("delay", delay), zap.Error(lastErr))
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", ctx.Err()
			case <-timer.C:
			}
		}

		out, err := s.gen.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !temporary(ctx, err) {
			break
		}
	}
	return "", lastErr
}

func temporary(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

// LoadGuide reads the persona guide template. A missing or unreadable file is
// a configuration error.
func LoadGuide(path string) (string, error) {
	if path == "" {
		return "", errors.New("guide template path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read guide template: %w", err)
	}
	guide := strings.TrimSpace(string(data))
	if guide == "" {
		return "", fmt.Errorf("guide template %s is empty", path)
	}
	return guide, nil
}

const structurePrompt = `You are an AI assistant that documents web content exhaustively.
Process the text extracted from the URL '{{.URL}}' and present it complete and well organized. **Do not summarize, shorten or omit relevant information.**

With the provided text:
1. Write a descriptive title reflecting the main content of the page.
2. Identify the different sections, topics or parts of the text.
3. For each section, extract and present ALL of its information. Use Markdown subheadings (e.g. ## Section Title) to separate each topic.
4. The result must be a faithful, structured transcription of the original content, suitable for saving as a document.

Page content:
---
{{.Text}}
---

Present the complete, structured result.
`

const summarizePrompt = `You are an AI assistant that summarizes web content.
Summarize the text extracted from the URL '{{.URL}}' in {{.Paragraphs}} concise paragraphs, then list the key points as Markdown bullets.
Start with a descriptive title as a Markdown heading.

Page content:
---
{{.Text}}
---
`
