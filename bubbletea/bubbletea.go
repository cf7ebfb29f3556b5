// Package bubbletea provides the LokalKu chat panel as a Bubble Tea
// program.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lokalku/lokalku"
)

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits. Cancelling ctx quits the program.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// ReplyMsg carries the result of one Conversation.Ask.
type ReplyMsg struct {
	Message lokalku.Message
	Err     error
}
