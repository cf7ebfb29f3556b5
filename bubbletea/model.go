package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lokalku/lokalku"
	"github.com/lokalku/lokalku/markdown"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// MaxInputLength caps a message, counted in grapheme clusters
// (user-perceived characters), so "👍🏽" or "é" as e plus an accent each
// count once. Both the clamp and the status counter use this measure.
const MaxInputLength = 500

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the chat panel. While the session is
// closed only a launcher line is shown.
type Model struct {
	// Input is the message input. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable transcript. Exported for test access.
	Viewport viewport.Model

	conv     *lokalku.Conversation
	store    *lokalku.Store
	client   *lokalku.Client
	location *lokalku.Location

	styles  Styles
	md      *markdown.Renderer
	cache   blockCache
	spinner spinner.Model

	follow  *atomic.Bool // set by the store when the session opens
	shown   int          // messages rendered into the viewport
	width   int
	running bool
	cancel  context.CancelFunc
	ready   bool
}

// Option configures a [Model].
type Option func(*Model)

// WithLocation attaches the user's coordinates to every question.
func WithLocation(loc lokalku.Location) Option {
	return func(m *Model) { m.location = &loc }
}

// New creates a chat panel driving conv.
func New(conv *lokalku.Conversation, theme lokalku.Theme, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Tanya tentang tempat di sekitarmu..."
	ti.Prompt = "› "
	ti.CharLimit = 0 // clamped by clampInput in graphemes
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	follow := new(atomic.Bool)
	conv.Store().OnOpen(func() { follow.Store(true) })

	m := Model{
		Input:   ti,
		follow:  follow,
		conv:    conv,
		store:   conv.Store(),
		client:  conv.Client(),
		styles:  NewStyles(theme),
		md:      markdown.NewRenderer(theme),
		cache:   make(blockCache),
		spinner: sp,
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

// Running reports whether a question is awaiting its reply.
func (m Model) Running() bool { return m.running }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReplyMsg:
		m.running = false
		m.cancel = nil
		if errCanceled(msg.Err) {
			m.client.ClearError()
		}
		m = m.refresh(true)
		cmd := m.Input.Focus()
		return m, cmd

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		// The user turn is appended from the Ask goroutine.
		if len(m.store.Messages()) != m.shown {
			m = m.refresh(true)
		}
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
		m.Input = clampInput(m.Input)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Memuat..."
	}
	if !m.store.State().IsOpen {
		return m.launcher()
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	const chrome = 3 // header, status and input lines
	vpHeight := max(msg.Height-chrome-1, 1)
	m.width = msg.Width

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Input.Width = max(msg.Width-runewidth.StringWidth(m.Input.Prompt)-1, 1)
	return m.refresh(true)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyCtrlO:
		m.store.Toggle()
		if m.store.State().IsOpen {
			m = m.refresh(false)
			cmd := m.Input.Focus()
			return m, cmd
		}
		m.Input.Blur()
		return m, nil
	}

	if !m.store.State().IsOpen {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.client.ClearError()
		return m, nil

	case tea.KeyCtrlL:
		if m.running {
			return m, nil
		}
		m.store.Clear(context.Background())
		m.client.ClearError()
		clear(m.cache)
		return m.refresh(true), nil

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" || !m.store.CanSend() {
			return m, nil
		}
		return m.submit(text)
	}

	if m.running {
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	m.Input = clampInput(m.Input)
	return m, tea.Batch(cmds...)
}

// clampInput cuts the input to MaxInputLength grapheme clusters.
func clampInput(in textinput.Model) textinput.Model {
	v := in.Value()
	if uniseg.GraphemeClusterCount(v) <= MaxInputLength {
		return in
	}
	g := uniseg.NewGraphemes(v)
	end := 0
	for n := 0; n < MaxInputLength && g.Next(); n++ {
		_, end = g.Positions()
	}
	in.SetValue(v[:end])
	return in
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.Input.Blur()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.running = true

	var opts []lokalku.AskOption
	if m.location != nil {
		opts = append(opts, lokalku.WithLocation(*m.location))
	}
	conv := m.conv
	ask := func() tea.Msg {
		defer cancel()
		reply, err := conv.Ask(ctx, text, opts...)
		return ReplyMsg{Message: reply, Err: err}
	}
	return m, tea.Batch(ask, m.spinner.Tick)
}

// refresh re-renders the transcript from the store. It scrolls to the
// latest message when bottom is set or the session has opened since the
// last refresh.
func (m Model) refresh(bottom bool) Model {
	if !m.ready {
		return m
	}
	if m.follow.Swap(false) {
		bottom = true
	}
	msgs := m.store.Messages()
	m.shown = len(msgs)
	m.Viewport.SetContent(m.renderTranscript(msgs))
	if bottom {
		m.Viewport.GotoBottom()
	}
	return m
}

func (m Model) renderTranscript(msgs []lokalku.Message) string {
	if len(msgs) == 0 {
		return m.styles.Muted.Render("Halo! Tanyakan tempat makan, bengkel, apotek, atau layanan lain di dekatmu.")
	}
	width := max(m.Viewport.Width, 1)
	parts := make([]string, len(msgs))
	for i, msg := range msgs {
		key := blockKey{id: msg.ID, width: width}
		out, ok := m.cache[key]
		if !ok {
			out = renderMessage(msg, width, m.styles, m.md)
			m.cache[key] = out
		}
		parts[i] = out
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) header() string {
	const title = "LokalKu Chat"
	count := fmt.Sprintf(" %d/%d pesan", m.store.State().MessageCount, lokalku.SendLimit)
	line := runewidth.Truncate(title+count, max(m.width, 1), "…")
	if rest, ok := strings.CutPrefix(line, title); ok {
		return m.styles.Accent.Render(title) + m.styles.Muted.Render(rest)
	}
	return m.styles.Accent.Render(line)
}

func (m Model) launcher() string {
	return m.styles.Launcher.Render("💬 LokalKu Chat · Ctrl+O untuk membuka")
}

// StatusText returns the unstyled status line, in priority order: error,
// typing, send limit, near limit, then key help.
func (m Model) StatusText() string {
	if e := m.client.Err(); e != "" {
		return "⚠ " + e + " (Esc untuk tutup)"
	}
	if m.running || m.store.State().IsTyping {
		return "Asisten sedang mengetik..."
	}
	if !m.store.CanSend() {
		return fmt.Sprintf("Batas %d pesan tercapai. Ctrl+L untuk memulai percakapan baru.", lokalku.SendLimit)
	}
	if m.store.IsNearLimit() {
		return fmt.Sprintf("Sisa %d pesan lagi.", m.store.RemainingSends())
	}
	if n := uniseg.GraphemeClusterCount(m.Input.Value()); n > 0 {
		return fmt.Sprintf("%d/%d karakter · Enter kirim", n, MaxInputLength)
	}
	return "Enter kirim · Ctrl+O tutup · Ctrl+L hapus · Ctrl+C keluar"
}

func (m Model) statusLine() string {
	text := runewidth.Truncate(m.StatusText(), max(m.width, 1), "…")
	switch {
	case m.client.Err() != "":
		return m.styles.Error.Render(text)
	case m.running || m.store.State().IsTyping:
		return m.spinner.View() + " " + m.styles.Muted.Render(text)
	case !m.store.CanSend() || m.store.IsNearLimit():
		return m.styles.Warning.Render(text)
	default:
		return m.styles.Muted.Render(text)
	}
}

// errCanceled reports whether err came from the user aborting with Ctrl+C.
func errCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
