package markdown

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lokalku/lokalku"
	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

type styles struct {
	heading lipgloss.Style
	strong  lipgloss.Style
	em      lipgloss.Style
	strike  lipgloss.Style
	code    lipgloss.Style
	link    lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(theme lokalku.Theme) styles {
	return styles{
		heading: lipgloss.NewStyle().Foreground(color(theme.Accent)).Bold(true),
		strong:  lipgloss.NewStyle().Bold(true),
		em:      lipgloss.NewStyle().Italic(true),
		strike:  lipgloss.NewStyle().Strikethrough(true),
		code:    lipgloss.NewStyle().Foreground(color(theme.Assistant)).Bold(true),
		link:    lipgloss.NewStyle().Foreground(color(theme.Accent)).Underline(true),
		muted:   lipgloss.NewStyle().Foreground(color(theme.Muted)).Faint(true),
	}
}

func color(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

type writer struct {
	styles styles
	source []byte
}

func (w *writer) blocks(parent ast.Node, width int, buf *bytes.Buffer) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		w.block(n, width, buf)
		if n.NextSibling() != nil {
			buf.WriteByte('\n')
		}
	}
}

func (w *writer) block(node ast.Node, width int, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		buf.WriteString(wrap(w.inline(n), width))
		buf.WriteByte('\n')

	case *ast.Heading:
		buf.WriteString(wrap(w.styles.heading.Render(w.inline(n)), width))
		buf.WriteByte('\n')

	case *ast.FencedCodeBlock:
		if lang := string(n.Language(w.source)); lang != "" {
			buf.WriteString(w.styles.muted.Render(lang))
			buf.WriteByte('\n')
		}
		w.codeLines(n, buf)

	case *ast.CodeBlock:
		w.codeLines(n, buf)

	case *ast.List:
		w.list(n, width, 0, buf)

	case *ast.Blockquote:
		var inner bytes.Buffer
		w.blocks(n, width-2, &inner)
		bar := w.styles.muted.Render("┃") + " "
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			buf.WriteString(bar + line + "\n")
		}

	case *ast.ThematicBreak:
		buf.WriteString(w.styles.muted.Render(strings.Repeat("─", width)))
		buf.WriteByte('\n')

	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(w.source))
		}

	default:
		w.blocks(node, width, buf)
	}
}

func (w *writer) codeLines(n ast.Node, buf *bytes.Buffer) {
	gutter := w.styles.muted.Render("│") + " "
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.WriteString(gutter)
		buf.WriteString(strings.TrimRight(string(seg.Value(w.source)), "\n"))
		buf.WriteByte('\n')
	}
}

func (w *writer) list(l *ast.List, width, depth int, buf *bytes.Buffer) {
	indent := strings.Repeat("  ", depth)
	num := l.Start
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "• "
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		prefix := indent + marker
		hang := strings.Repeat(" ", runewidth.StringWidth(prefix))
		first := true
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				w.list(sub, width, depth+1, buf)
				continue
			}
			var inner bytes.Buffer
			w.block(c, max(width-len(hang), MinWidth/2), &inner)
			for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
				if first {
					buf.WriteString(prefix + line + "\n")
					first = false
					continue
				}
				buf.WriteString(hang + line + "\n")
			}
		}
	}
}

func (w *writer) inline(parent ast.Node) string {
	var buf bytes.Buffer
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		w.span(n, &buf)
	}
	return buf.String()
}

func (w *writer) span(node ast.Node, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(w.source))
		switch {
		case n.HardLineBreak():
			buf.WriteByte('\n')
		case n.SoftLineBreak():
			buf.WriteByte(' ')
		}

	case *ast.String:
		buf.Write(n.Value)

	case *ast.Emphasis:
		if n.Level == 1 {
			buf.WriteString(w.styles.em.Render(w.inline(n)))
		} else {
			buf.WriteString(w.styles.strong.Render(w.inline(n)))
		}

	case *east.Strikethrough:
		buf.WriteString(w.styles.strike.Render(w.inline(n)))

	case *ast.CodeSpan:
		buf.WriteString(w.styles.code.Render(w.inline(n)))

	case *ast.Link:
		label := w.inline(n)
		dest := string(n.Destination)
		buf.WriteString(w.styles.link.Render(label))
		if label != dest {
			buf.WriteString(" " + w.styles.muted.Render("<"+dest+">"))
		}

	case *ast.AutoLink:
		buf.WriteString(w.styles.link.Render(string(n.URL(w.source))))

	case *ast.Image:
		buf.WriteString(w.styles.muted.Render("[gambar: " + w.inline(n) + "]"))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(w.source))
		}

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			w.span(c, buf)
		}
	}
}

func wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}
