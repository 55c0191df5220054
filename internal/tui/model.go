// Package tui steps through a circuit one gate at a time in the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/qtermcirq/paulideck/render"
)

// Model is the stepper state. Frames are rendered up front, so moving the
// cursor never simulates.
type Model struct {
	title   string
	frames  []render.Frame
	cursor  int
	summary string // shown under the last frame
	width   int
	height  int
	keys    keyMap
	help    help.Model
}

// New builds a stepper over frames, starting on the initial frame. summary
// is shown once the last gate has been applied.
func New(title string, frames []render.Frame, summary string) Model {
	return Model{
		title:   title,
		frames:  frames,
		summary: summary,
		keys:    defaultKeys(),
		help:    help.New(),
	}
}

// Run starts the stepper on the alternate screen and blocks until the user
// quits.
func Run(title string, frames []render.Frame, summary string) error {
	if len(frames) == 0 {
		return fmt.Errorf("tui: no frames to show")
	}
	_, err := tea.NewProgram(New(title, frames, summary), tea.WithAltScreen()).Run()
	return err
}

// Cursor returns the index of the frame on screen.
func (m Model) Cursor() int { return m.cursor }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			if m.cursor < len(m.frames)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Prev):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.First):
			m.cursor = 0
		case key.Matches(msg, m.keys.Last):
			m.cursor = len(m.frames) - 1
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}
	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	if len(m.frames) == 0 {
		return "No frames.\n"
	}
	f := m.frames[m.cursor]

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n\n")
	sb.WriteString(f.Text)
	sb.WriteString("\n")
	sb.WriteString(m.status(f))

	panel := panelStyle
	if m.width > 4 {
		panel = panel.MaxWidth(m.width)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		panel.Render(sb.String()),
		m.help.View(m.keys),
	)
}

func (m Model) status(f render.Frame) string {
	pos := fmt.Sprintf("step %d/%d", f.Step, len(m.frames)-1)
	var line string
	switch {
	case f.Gate < 0:
		line = pos + "  initial state"
	case f.GateFired():
		line = pos + "  " + firedStyle.Render(fmt.Sprintf("gate %d fired", f.Gate))
	default:
		line = pos + "  " + skippedStyle.Render(fmt.Sprintf("gate %d did not fire", f.Gate))
	}
	if m.cursor == len(m.frames)-1 && m.summary != "" {
		line += "\n\n" + errorStyle.Render(m.summary)
	}
	return line
}
