package bubbletea

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/gemchat"
	"github.com/fwojciec/gemchat/goldmark"
)

var _ tea.Model = Model{}

// errCancelled is shown when the user aborts an exchange with Ctrl+C.
var errCancelled = errors.New("request cancelled")

// Model is the Bubble Tea model for the chat TUI.
type Model struct {
	// Input is the single-line prompt. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable conversation area. Exported for test access.
	Viewport viewport.Model

	advance    ExchangeFunc
	transcript gemchat.Transcript
	styles     Styles
	renderer   *goldmark.Renderer
	timeout    time.Duration

	blocks []MessageBlock

	running bool
	cancel  context.CancelFunc
	err     error
	ready   bool
}

// Option configures a Model.
type Option func(*Model)

// WithTimeout bounds each exchange. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(m *Model) { m.timeout = d }
}

// New creates a TUI Model that runs exchanges through advance, starting
// from transcript.
func New(advance ExchangeFunc, transcript gemchat.Transcript, theme gemchat.Theme, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = "You: "
	ti.Focus()
	ti.CharLimit = 0

	m := Model{
		Input:      ti,
		advance:    advance,
		transcript: transcript,
		styles:     NewStyles(theme),
		renderer:   goldmark.New(theme),
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

// Running reports whether an exchange is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the error of the last exchange, if it failed.
func (m Model) Err() error { return m.err }

// Transcript returns the accepted conversation so far.
func (m Model) Transcript() gemchat.Transcript { return m.transcript }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ExchangeDoneMsg:
		return m.handleDone(msg)
	}

	// Viewport always receives messages for scrolling (keyboard and mouse).
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := max(msg.Height-inputH-statusHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m = m.renderTranscript()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	m.Input.Width = msg.Width
	return m
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

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		if gemchat.IsExitCommand(text) {
			return m, tea.Quit
		}
		return m.submit(text)
	}

	// Only forward non-character keys to the viewport so that letters used
	// for scrolling still reach the input.
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil

	m.blocks = append(m.blocks, NewUserMessageBlock(text, m.styles))
	m = m.refresh()

	var ctx context.Context
	var cancel context.CancelFunc
	if m.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), m.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	m.cancel = cancel
	m.running = true
	m.Input.Blur()

	return m, startExchange(ctx, m.advance, m.transcript, text)
}

func (m Model) handleDone(msg ExchangeDoneMsg) (tea.Model, tea.Cmd) {
	m.running = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	switch {
	case errors.Is(msg.Err, context.Canceled):
		m.blocks = append(m.blocks, NewErrorBlock(errCancelled, m.styles))
	case msg.Err != nil:
		m.err = msg.Err
		m.blocks = append(m.blocks, NewErrorBlock(msg.Err, m.styles))
	default:
		m.transcript = msg.Transcript
		m.blocks = append(m.blocks, NewAssistantTextBlock(msg.Reply, m.renderer))
	}
	m = m.refresh()

	return m, m.Input.Focus()
}

// renderTranscript creates blocks for turns that predate the TUI, such as
// a seed transcript.
func (m Model) renderTranscript() Model {
	for _, turn := range m.transcript {
		switch turn.Role {
		case gemchat.RoleUser:
			m.blocks = append(m.blocks, NewUserMessageBlock(turn.Text, m.styles))
		case gemchat.RoleModel:
			m.blocks = append(m.blocks, NewAssistantTextBlock(turn.Text, m.renderer))
		}
	}
	return m
}

func (m Model) refresh() Model {
	if m.ready {
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
	}
	return m
}

func (m Model) renderContent() string {
	if len(m.blocks) == 0 {
		return ""
	}
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

func (m Model) statusLine() string {
	if m.running {
		return m.styles.ModelMsg.Render("Waiting for reply... (Ctrl+C to cancel)")
	}
	if m.err != nil {
		return m.styles.Error.Render("Error: " + gemchat.SanitizeReply(m.err.Error()))
	}
	return m.styles.Muted.Render("Enter to send, quit or Ctrl+C to exit")
}

// startExchange runs advance off the UI goroutine and reports the outcome.
func startExchange(ctx context.Context, advance ExchangeFunc, transcript gemchat.Transcript, text string) tea.Cmd {
	return func() tea.Msg {
		next, reply, err := advance(ctx, transcript, text)
		return ExchangeDoneMsg{Transcript: next, Reply: reply, Err: err}
	}
}
