package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"

	"github.com/amosWeiskopf/crawlscribe/internal/models"
)

// Reporter handles report generation in various formats
type Reporter struct {
	markdown goldmark.Markdown
}

// New creates a new Reporter instance
func New() *Reporter {
	return &Reporter{markdown: goldmark.New()}
}

// Render creates a report in the specified format
func (r *Reporter) Render(report *models.Report, format string) (string, error) {
	if report == nil {
		return "", fmt.Errorf("no report to render")
	}

	switch format {
	case "markdown", "md", "":
		return r.generateMarkdown(report), nil
	case "json":
		return r.generateJSON(report)
	case "html":
		return r.generateHTML(report)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// generateMarkdown lays out a header and one section per processed page
func (r *Reporter) generateMarkdown(report *models.Report) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Web Content Report: %s\n\n", report.Domain)
	for _, section := range report.Sections {
		fmt.Fprintf(&buf, "## Page analyzed: %s\n\n", section.URL)
		fmt.Fprintf(&buf, "%s\n\n", section.Content)
		fmt.Fprintf(&buf, "---\n\n")
	}

	return buf.String()
}

// generateJSON creates a JSON formatted report
func (r *Reporter) generateJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Web Content Report - {{.Domain}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 960px;
            margin: 0 auto;
            padding: 20px;
        }
        hr { border: 0; border-top: 1px solid #ddd; margin: 2rem 0; }
        .meta { color: #666; font-size: 0.9rem; }
    </style>
</head>
<body>
    <p class="meta">Generated on {{.GeneratedAt.Format "January 2, 2006"}} · run {{.RunID}}</p>
    {{.Body}}
</body>
</html>
`

var htmlTemplate = template.Must(template.New("report").Parse(htmlPage))

// generateHTML converts the Markdown report to HTML and wraps it in a page
func (r *Reporter) generateHTML(report *models.Report) (string, error) {
	var body bytes.Buffer
	if err := r.markdown.Convert([]byte(r.generateMarkdown(report)), &body); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}

	var buf bytes.Buffer
	err := htmlTemplate.Execute(&buf, struct {
		*models.Report
		Body template.HTML
	}{report, template.HTML(body.String())})
	if err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
