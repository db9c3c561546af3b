package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/glproxy/config"
	"github.com/wippyai/glproxy/webgl"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	commandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	liveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err     error
	cfg     *config.Config
	session *session
	input   textinput.Model
	output  viewport.Model
	log     []string
	history []string
	histIdx int
}

type sessionMsg struct {
	err     error
	session *session
}

func newInteractiveModel(cfg *config.Config) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "help"
	ti.Prompt = "gl> "
	ti.Focus()
	return &interactiveModel{
		cfg:    cfg,
		input:  ti,
		output: viewport.New(80, 20),
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.openSession)
}

func (m *interactiveModel) openSession() tea.Msg {
	s, err := newSession(m.cfg.ContextOptions())
	return sessionMsg{session: s, err: err}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			if m.session != nil {
				_ = m.session.close()
			}
			return m, tea.Quit

		case "enter":
			if m.session == nil {
				return m, nil
			}
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "" {
				return m, nil
			}
			if line == "quit" || line == "exit" {
				_ = m.session.close()
				return m, tea.Quit
			}
			m.history = append(m.history, line)
			m.histIdx = len(m.history)
			m.run(line)
			return m, nil

		case "up":
			if m.histIdx > 0 {
				m.histIdx--
				m.input.SetValue(m.history[m.histIdx])
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.histIdx < len(m.history)-1 {
				m.histIdx++
				m.input.SetValue(m.history[m.histIdx])
				m.input.CursorEnd()
			} else {
				m.histIdx = len(m.history)
				m.input.SetValue("")
			}
			return m, nil

		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.output, cmd = m.output.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.output.Width = msg.Width
		m.output.Height = max(msg.Height-5, 3)
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 10)
		m.refresh()

	case sessionMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.session = msg.session
		m.appendLog(noteStyle.Render(fmt.Sprintf("context %s ready (%s executor)", m.session.ctx.ID(), m.cfg.Executor.Mode)))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) run(line string) {
	m.appendLog(commandStyle.Render("gl> " + line))
	lines, err := m.session.exec(line)
	for _, l := range lines {
		if strings.HasPrefix(l, "WebGL") || strings.HasPrefix(l, "event:") || strings.HasPrefix(l, "frame ") {
			l = noteStyle.Render(l)
		}
		m.appendLog(l)
	}
	if err != nil {
		m.appendLog(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
	}
}

func (m *interactiveModel) appendLog(s string) {
	m.log = append(m.log, s)
	m.refresh()
}

func (m *interactiveModel) refresh() {
	m.output.SetContent(strings.Join(m.log, "\n"))
	m.output.GotoBottom()
}

func (m *interactiveModel) statusLine() string {
	if m.session == nil {
		return "connecting..."
	}
	st := m.session.ctx.Status()
	label := st.String()
	if st == webgl.StatusLive {
		label = liveStyle.Render(label)
	} else {
		label = errorStyle.Render(label)
	}
	return fmt.Sprintf("%s  turn %d  objects %d  frames %d",
		label, m.session.ctx.Queue().Turn(), len(m.session.objects), m.session.frames)
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress ctrl+c to quit.", m.err))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("GL Console"))
	b.WriteString(" ")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.output.View())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter run • ↑/↓ history • pgup/pgdown scroll • ctrl+c quit"))
	return b.String()
}

func runInteractive(cfg *config.Config) error {
	p := tea.NewProgram(newInteractiveModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
