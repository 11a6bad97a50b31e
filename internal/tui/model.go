// Package tui is the interactive terminal front end for the assistant.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"meeple-cli/internal/agent"
	"meeple-cli/internal/engine"
	"meeple-cli/internal/history"
)

// RunnerFactory builds a single-use agent loop wired to a progress callback.
type RunnerFactory func(onProgress engine.ProgressFunc) *engine.Runner

type Options struct {
	NewRunner RunnerFactory
	History   *history.Log
	Schema    string
}

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	toolStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	answerPanel   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusBarText = dimStyle.Render("enter: ask | ctrl+y: copy answer | /help: commands | /quit: exit")
)

type step struct {
	event  engine.Event
	tool   string
	detail string
}

type progressMsg step

type answerMsg struct {
	question string
	answer   string
	err      error
}

type Model struct {
	opts  Options
	input textinput.Model
	spin  spinner.Model

	transcript []string
	steps      []step
	lastAnswer string
	pending    bool
	width      int

	events chan tea.Msg
	cancel context.CancelFunc
	quit   bool
}

func New(opts Options) *Model {
	input := textinput.New()
	input.Placeholder = "Ask about games, sales, rentals..."
	input.Prompt = "> "
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &Model{
		opts:       opts,
		input:      input,
		spin:       spin,
		transcript: []string{welcomeText},
		width:      80,
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.interrupt()
			m.quit = true
			return m, tea.Quit
		case tea.KeyCtrlY:
			if m.lastAnswer != "" {
				if err := clipboard.WriteAll(m.lastAnswer); err == nil {
					m.transcript = append(m.transcript, dimStyle.Render("Answer copied to clipboard."))
				}
			}
			return m, nil
		case tea.KeyEnter:
			if m.pending {
				return m, nil
			}
			return m.submit()
		}

	case progressMsg:
		m.steps = append(m.steps, step(msg))
		return m, m.waitForEvent()

	case answerMsg:
		m.pending = false
		m.steps = nil
		if msg.err != nil {
			m.transcript = append(m.transcript, errorStyle.Render("Error: "+msg.err.Error()))
			return m, nil
		}
		m.lastAnswer = msg.answer
		if m.opts.History != nil {
			m.opts.History.AddPair(msg.question, msg.answer)
		}
		m.transcript = append(m.transcript, answerPanel.Render(answerStyle.Render(msg.answer)))
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.pending {
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if text == "" {
		return m, nil
	}
	if strings.HasPrefix(text, "/") {
		return m.runCommand(text)
	}

	m.transcript = append(m.transcript, promptStyle.Render("You: ")+text)
	m.pending = true
	m.steps = nil

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.events = make(chan tea.Msg, 64)

	events := m.events
	runner := m.opts.NewRunner(func(event engine.Event, tool, detail string) {
		events <- progressMsg{event: event, tool: tool, detail: detail}
	})
	hist := m.opts.History
	go func() {
		answer, err := runner.Run(ctx, text, historyMessages(hist))
		events <- answerMsg{question: text, answer: answer, err: err}
	}()

	return m, tea.Batch(m.spin.Tick, m.waitForEvent())
}

func (m *Model) runCommand(cmd string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(cmd) {
	case "/help":
		m.transcript = append(m.transcript, helpText)
	case "/tables":
		m.transcript = append(m.transcript, m.opts.Schema)
	case "/sample":
		var b strings.Builder
		b.WriteString("Sample questions you can ask:\n")
		for i, q := range sampleQuestions {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, q)
		}
		m.transcript = append(m.transcript, strings.TrimRight(b.String(), "\n"))
	case "/clear":
		m.transcript = nil
	case "/history":
		if m.opts.History != nil {
			m.opts.History.Clear()
		}
		m.transcript = append(m.transcript, dimStyle.Render("Conversation history cleared."))
	case "/quit", "/exit":
		m.quit = true
		return m, tea.Quit
	default:
		m.transcript = append(m.transcript, dimStyle.Render("Unknown command. Type /help for commands."))
	}
	return m, nil
}

func (m *Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return <-events
	}
}

func (m *Model) interrupt() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) View() string {
	var b strings.Builder
	for _, entry := range m.transcript {
		b.WriteString(entry)
		b.WriteString("\n\n")
	}

	if m.pending {
		for i, s := range m.steps {
			last := i == len(m.steps)-1
			b.WriteString(m.renderStep(s, last))
			b.WriteString("\n")
		}
		b.WriteString("  " + m.spin.View() + dimStyle.Render(" working..."))
		b.WriteString("\n\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(statusBarText)
	return b.String()
}

func (m *Model) renderStep(s step, last bool) string {
	limit := m.width - 6
	if limit < 20 {
		limit = 20
	}
	detail := runewidth.Truncate(s.detail, limit, "...")

	switch s.event {
	case engine.EventThinking:
		if last {
			return "  > " + toolStyle.Render("Thinking") + dimStyle.Render("...")
		}
		return dimStyle.Render("  > Thinking")
	case engine.EventToolCall:
		label := map[string]string{
			"query":     "SQL Query: ",
			"calculate": "Calculate: ",
			"search":    "Search: ",
			"whatif":    "What-If: ",
		}[s.tool]
		if label == "" {
			label = s.tool + ": "
		}
		return "  > " + toolStyle.Render(label) + dimStyle.Render(detail)
	case engine.EventResult:
		return "  < " + answerStyle.Render("Result: ") + dimStyle.Render(detail)
	case engine.EventError:
		return "  X " + errorStyle.Render("Error: "+detail) + dimStyle.Render(" (retrying...)")
	case engine.EventRetry:
		return "  ! " + dimStyle.Render(detail)
	case engine.EventAnswer:
		return "  > " + answerStyle.Render("Composing answer...")
	}
	return "  > " + dimStyle.Render(detail)
}

func historyMessages(l *history.Log) []agent.Message {
	if l == nil {
		return nil
	}
	return l.Messages()
}
