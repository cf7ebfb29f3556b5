package markdown_test

import (
	"testing"

	"github.com/lokalku/lokalku"
	"github.com/lokalku/lokalku/markdown"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Warung Bu Sri buka 24 jam", "Warung Bu Sri buka 24 jam"},
		{"csi color", "\x1b[31mmerah\x1b[0m", "merah"},
		{"osc title", "\x1b]0;pwned\x07halo", "halo"},
		{"control bytes", "a\x00b\x07c\x7fd", "abcd"},
		{"keeps tabs and newlines", "a\tb\nc", "a\tb\nc"},
		{"crlf", "satu\r\ndua", "satu\ndua"},
		{"carriage return overwrites", "10%\r99%", "99%"},
		{"shorter overwrite keeps tail", "abcdef\rXY", "XYcdef"},
		{"emoji survive", "Kopi ☕ enak", "Kopi ☕ enak"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, markdown.Sanitize(tt.in))
		})
	}
}

func TestRender_StripsEscapes(t *testing.T) {
	t.Parallel()
	out := plain(markdown.Render("Halo \x1b]8;;http://evil\x07dunia\x1b]8;;\x07", 40, lokalku.DefaultTheme()))
	assert.Equal(t, "Halo dunia", out)
}
