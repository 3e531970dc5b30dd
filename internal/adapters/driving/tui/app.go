package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chatlore/chatlore/internal/adapters/driving/tui/keymap"
	"github.com/chatlore/chatlore/internal/adapters/driving/tui/messages"
	"github.com/chatlore/chatlore/internal/adapters/driving/tui/styles"
	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driving"
)

// maxHistoryTurns bounds the session history sent with each question.
// Older turns fall off the front; the transcript on screen keeps them.
const maxHistoryTurns = 20

// entry is one question/answer pair in the visible transcript.
type entry struct {
	question string
	answer   *domain.Answer
	err      error
}

// App is the chat TUI following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	// history is the turn history replayed to the ask service.
	history []domain.ChatTurn

	// transcript is everything shown on screen, including failures.
	transcript []entry

	showSources bool
	waiting     bool
	status      string

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new chat TUI with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()

	input := textinput.New()
	input.Placeholder = "Ask about your conversations..."
	input.Focus()
	input.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &App{
		ports:   ports,
		ctx:     context.Background(),
		styles:  s,
		keys:    keymap.DefaultKeyMap(),
		input:   input,
		spinner: sp,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.SetWindowTitle("chatlore"),
		a.loadStatsCmd(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.AnswerCompleted:
		a.waiting = false
		a.transcript = append(a.transcript, entry{
			question: msg.Question,
			answer:   msg.Answer,
			err:      msg.Err,
		})
		if msg.Err == nil && msg.Answer != nil {
			a.history = append(a.history,
				domain.ChatTurn{Role: "user", Content: msg.Question},
				domain.ChatTurn{Role: "assistant", Content: msg.Answer.Text},
			)
			if len(a.history) > maxHistoryTurns {
				a.history = a.history[len(a.history)-maxHistoryTurns:]
			}
		}
		a.refreshTranscript()
		return a, nil

	case messages.StatsLoaded:
		if msg.Err == nil {
			a.status = fmt.Sprintf("%d conversations, %d messages", msg.Conversations, msg.Messages)
		}
		return a, nil

	case spinner.TickMsg:
		if !a.waiting {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}
	keyStr := keyMsg.String()

	switch {
	case keymap.Matches(keyStr, a.keys.Quit):
		return a, tea.Quit

	case keymap.Matches(keyStr, a.keys.Clear):
		a.history = nil
		a.transcript = nil
		a.refreshTranscript()
		return a, func() tea.Msg { return messages.SessionCleared{} }

	case keymap.Matches(keyStr, a.keys.ToggleSources):
		a.showSources = !a.showSources
		a.refreshTranscript()
		return a, nil

	case keymap.Matches(keyStr, a.keys.ScrollUp):
		a.viewport.ScrollUp(3)
		return a, nil

	case keymap.Matches(keyStr, a.keys.ScrollDown):
		a.viewport.ScrollDown(3)
		return a, nil

	case keymap.Matches(keyStr, a.keys.Submit):
		question := strings.TrimSpace(a.input.Value())
		if question == "" || a.waiting {
			return a, nil
		}
		a.input.Reset()
		a.waiting = true
		return a, tea.Batch(a.spinner.Tick, a.askCmd(question))
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// askCmd runs one ask call off the update loop.
func (a *App) askCmd(question string) tea.Cmd {
	history := make([]domain.ChatTurn, len(a.history))
	copy(history, a.history)

	return func() tea.Msg {
		answer, err := a.ports.Ask.Ask(a.ctx, question, driving.AskOptions{History: history})
		return messages.AnswerCompleted{Question: question, Answer: answer, Err: err}
	}
}

// loadStatsCmd fetches the archive summary for the status bar.
func (a *App) loadStatsCmd() tea.Cmd {
	if a.ports.Document == nil {
		return nil
	}
	return func() tea.Msg {
		stats, err := a.ports.Document.Stats(a.ctx)
		if err != nil {
			return messages.StatsLoaded{Err: err}
		}
		return messages.StatsLoaded{
			Conversations: stats.Documents,
			Messages:      stats.Messages,
		}
	}
}

// layout sizes the viewport and input to the terminal.
func (a *App) layout() {
	inputHeight := 3
	statusHeight := 2
	a.viewport = viewport.New(a.width, max(a.height-inputHeight-statusHeight, 1))
	a.input.Width = max(a.width-6, 10)
	a.refreshTranscript()
}

// refreshTranscript re-renders the conversation into the viewport.
func (a *App) refreshTranscript() {
	a.viewport.SetContent(a.renderTranscript())
	a.viewport.GotoBottom()
}

func (a *App) renderTranscript() string {
	if len(a.transcript) == 0 {
		return a.styles.Muted.Render("Ask a question to get started.")
	}

	var b strings.Builder
	for i, e := range a.transcript {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(a.styles.UserLabel.Render("You: "))
		b.WriteString(a.styles.Normal.Render(e.question))
		b.WriteString("\n")

		switch {
		case e.err != nil:
			b.WriteString(a.styles.Error.Render(fmt.Sprintf("Error: %v", e.err)))
		case e.answer != nil:
			b.WriteString(a.styles.AssistantLabel.Render("Chatlore: "))
			b.WriteString(a.styles.Normal.Render(e.answer.Text))
			if a.showSources && len(e.answer.Sources) > 0 {
				b.WriteString("\n")
				for j, src := range e.answer.Sources {
					b.WriteString(a.styles.SourceTag.Render(
						fmt.Sprintf("  [%d] %s (%.3f)", j+1, src.Document.Name, src.Score)))
					if j < len(e.answer.Sources)-1 {
						b.WriteString("\n")
					}
				}
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Starting chatlore..."
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("chatlore chat"))
	b.WriteString("\n")
	b.WriteString(a.viewport.View())
	b.WriteString("\n")

	if a.waiting {
		b.WriteString(a.styles.InputField.Render(a.spinner.View() + " thinking..."))
	} else {
		b.WriteString(a.styles.InputField.Render(a.input.View()))
	}
	b.WriteString("\n")

	status := a.status
	if status == "" {
		status = "archive"
	}
	help := "enter ask · ctrl+l new session · ctrl+s sources · esc quit"
	b.WriteString(a.styles.StatusBar.Render(status + "  " + a.styles.Help.Render(help)))
	return b.String()
}
