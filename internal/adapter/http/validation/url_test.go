package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsVideoURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"standard watch link", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", true},
		{"mobile link", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"embed link", "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ", true},
		{"other site", "https://vimeo.com/12345", false},
		{"plain text", "not a url", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsVideoURL(tt.url))
		})
	}
}

func TestCanonicalURL(t *testing.T) {
	const canonical = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"already canonical", canonical, canonical},
		{"playlist parameters stripped", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PLx&index=3", canonical},
		{"short link", "https://youtu.be/dQw4w9WgXcQ?t=42", canonical},
		{"embed link", "https://www.youtube.com/embed/dQw4w9WgXcQ", canonical},
		{"mobile link", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", canonical},
		{"no extractable id", "https://www.youtube.com/playlist?list=PLx", "https://www.youtube.com/playlist?list=PLx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalURL(tt.url))
		})
	}
}
