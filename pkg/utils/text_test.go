package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a\n\n b \t c  "))
	assert.Equal(t, "", CleanText(" \n\t "))
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		max       int
		want      string
		truncated bool
	}{
		{name: "short text", text: "hello", max: 10, want: "hello"},
		{name: "exact length", text: "hello", max: 5, want: "hello"},
		{name: "ascii cut", text: "hello world", max: 5, want: "hello", truncated: true},
		{name: "multibyte cut", text: "ñandú azul", max: 5, want: "ñandú", truncated: true},
		{name: "disabled", text: "hello", max: 0, want: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := TruncateRunes(tt.text, tt.max)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.truncated, truncated)
		})
	}
}

func TestGetDomainFromURL(t *testing.T) {
	assert.Equal(t, "example.com", GetDomainFromURL("https://Example.com:8443/path"))
	assert.Equal(t, "", GetDomainFromURL("::bad"))
}

func TestOrigin(t *testing.T) {
	u, err := url.Parse("http://127.0.0.1:8080/a/b?q=1#frag")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080", Origin(u).String())
}
