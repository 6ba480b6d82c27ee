package models

import "time"

// SectionStatus describes how a frontier entry contributed to the report
type SectionStatus string

const (
	// SectionOK means the page text was transformed successfully
	SectionOK SectionStatus = "ok"
	// SectionNoContent means no text could be extracted from the page
	SectionNoContent SectionStatus = "no_content"
	// SectionTransformFailed means the content transform call failed
	SectionTransformFailed SectionStatus = "transform_failed"
)

// Page is the transient record of one frontier entry while it is processed.
// Text never leaves the run.
type Page struct {
	URL         string `json:"url"`
	Text        string `json:"-"`
	Transformed string `json:"transformed,omitempty"`
}

// Section is one page's contribution to the aggregate report
type Section struct {
	URL     string        `json:"url"`
	Status  SectionStatus `json:"status"`
	Content string        `json:"content"`
}

// Report is the aggregate output of a single crawl run
type Report struct {
	RunID       string    `json:"run_id"`
	Seed        string    `json:"seed"`
	Domain      string    `json:"domain"`
	GeneratedAt time.Time `json:"generated_at"`
	Frontier    []string  `json:"frontier"`
	Sections    []Section `json:"sections"`
}

// Processed returns the number of sections whose content was transformed
func (r *Report) Processed() int {
	n := 0
	for _, s := range r.Sections {
		if s.Status == SectionOK {
			n++
		}
	}
	return n
}
