package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"github.com/amosWeiskopf/crawlscribe/pkg/utils"
)

// Mode selects how page text is extracted
type Mode string

const (
	// ModeFull keeps every visible text node of the document
	ModeFull Mode = "full"
	// ModeReadable keeps only the main content as detected by trafilatura
	ModeReadable Mode = "readable"
)

// stripped lists elements whose text must never reach the output
const stripped = "script, style, noscript"

// Extractor handles content extraction from HTML
type Extractor struct {
	mode Mode
}

// New creates a new Extractor instance
func New(mode Mode) *Extractor {
	if mode == "" {
		mode = ModeFull
	}
	return &Extractor{mode: mode}
}

// ExtractText returns the page's text as a single space-joined string
func (e *Extractor) ExtractText(htmlContent string) (string, error) {
	if e.mode == ModeReadable {
		if text := readableText(htmlContent); text != "" {
			return text, nil
		}
	}
	return fullText(htmlContent)
}

// fullText drops script, style and noscript subtrees, then joins every remaining
// text node, trimmed, with a single space.
func fullText(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find(stripped).Remove()

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	return strings.Join(parts, " "), nil
}

func readableText(htmlContent string) string {
	result, err := trafilatura.Extract(strings.NewReader(htmlContent), trafilatura.Options{})
	if err != nil || result == nil {
		return ""
	}
	return utils.CleanText(result.ContentText)
}
