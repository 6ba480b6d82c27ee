package crawler

import (
	"net/url"
	"strings"
)

// Validator decides whether a URL is worth crawling. The excluded extension
// list lives here and nowhere else.
type Validator struct {
	excluded []string
}

// NewValidator creates a Validator rejecting paths that end in any of the given extensions
func NewValidator(excludedExtensions []string) *Validator {
	excluded := make([]string, 0, len(excludedExtensions))
	for _, ext := range excludedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		excluded = append(excluded, ext)
	}
	return &Validator{excluded: excluded}
}

// IsValid reports whether rawURL has a scheme, a host, and a path that does
// not end with an excluded extension (case-insensitive).
func (v *Validator) IsValid(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	path := strings.ToLower(u.Path)
	for _, ext := range v.excluded {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}
	return true
}
