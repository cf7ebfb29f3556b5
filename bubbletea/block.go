package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lokalku/lokalku"
	"github.com/lokalku/lokalku/markdown"
)

// blockCache memoizes rendered messages by ID and width. Messages are
// immutable once stored, so an entry never goes stale.
type blockCache map[blockKey]string

type blockKey struct {
	id    string
	width int
}

// renderMessage renders one message as a labelled block. User text is shown
// verbatim; assistant text is Markdown.
func renderMessage(msg lokalku.Message, width int, styles Styles, md *markdown.Renderer) string {
	switch msg.Role {
	case lokalku.RoleAssistant:
		label := styles.AssistantLabel.Render(msg.Role.Label())
		body := md.Render(msg.Content, width-2)
		return label + "\n" + indent(body, "  ")
	default:
		label := styles.UserLabel.Render(msg.Role.Label())
		body := lipgloss.NewStyle().Width(max(width-2, 1)).Render(markdown.Sanitize(msg.Content))
		return label + "\n" + indent(body, "  ")
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
