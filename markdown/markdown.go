// Package markdown renders assistant replies, which are Markdown, to
// ANSI-styled terminal text. Parsing is done by goldmark with the
// Linkify and Strikethrough extensions; styling by lipgloss.
package markdown

import (
	"bytes"
	"strings"

	"github.com/lokalku/lokalku"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// MinWidth is the narrowest width text is wrapped to.
const MinWidth = 20

// Renderer converts Markdown to styled terminal output. A Renderer is
// immutable and safe for concurrent use.
type Renderer struct {
	parser parser.Parser
	styles styles
}

// NewRenderer builds a Renderer using the colors of theme.
func NewRenderer(theme lokalku.Theme) *Renderer {
	md := goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))
	return &Renderer{parser: md.Parser(), styles: newStyles(theme)}
}

// Render returns source as styled text wrapped to width. Code blocks are
// never reflowed. Escape sequences in source are stripped first.
func (r *Renderer) Render(source string, width int) string {
	source = Sanitize(source)
	if strings.TrimSpace(source) == "" {
		return ""
	}
	width = max(width, MinWidth)
	src := []byte(source)
	doc := r.parser.Parse(text.NewReader(src))

	w := &writer{styles: r.styles, source: src}
	var buf bytes.Buffer
	w.blocks(doc, width, &buf)
	return strings.TrimRight(buf.String(), "\n")
}

// Render is a convenience for NewRenderer(theme).Render(source, width).
func Render(source string, width int, theme lokalku.Theme) string {
	return NewRenderer(theme).Render(source, width)
}
