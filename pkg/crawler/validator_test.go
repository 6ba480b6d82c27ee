package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var defaultExtensions = []string{".pdf", ".jpg", ".png", ".zip", ".docx", ".gif", ".mp3", ".mp4"}

func TestValidatorIsValid(t *testing.T) {
	v := NewValidator(defaultExtensions)

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{name: "plain page", url: "https://example.com/page", want: true},
		{name: "root", url: "https://example.com", want: true},
		{name: "uppercase pdf", url: "https://example.com/doc.PDF", want: false},
		{name: "image", url: "http://example.com/img/logo.png", want: false},
		{name: "extension in query only", url: "https://example.com/view?file=a.pdf", want: true},
		{name: "extension mid path", url: "https://example.com/files.zip/index", want: true},
		{name: "not a url", url: "not a url", want: false},
		{name: "empty", url: "", want: false},
		{name: "no scheme", url: "//example.com/page", want: false},
		{name: "no host", url: "mailto:someone@example.com", want: false},
		{name: "relative path", url: "/about", want: false},
		{name: "bad escape", url: "https://example.com/%zz", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.IsValid(tt.url))
		})
	}
}

func TestValidatorNormalizesExtensions(t *testing.T) {
	v := NewValidator([]string{"SVG", " .Webp ", ""})

	assert.False(t, v.IsValid("https://example.com/icon.svg"))
	assert.False(t, v.IsValid("https://example.com/photo.WEBP"))
	assert.True(t, v.IsValid("https://example.com/report.pdf"))
}

func TestValidatorEmptyList(t *testing.T) {
	v := NewValidator(nil)
	assert.True(t, v.IsValid("https://example.com/doc.pdf"))
}
