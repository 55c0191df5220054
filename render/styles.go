package render

import "github.com/charmbracelet/lipgloss"

// Layout constants
const (
	cellW     = 9 // width of each column in characters
	gateNameW = 3 // width of gate name inside box
	gateBoxW  = 5 // ┤ + gateNameW + ├
)

// Colors used by the built-in color rules.
const (
	ValueMismatchColor = lipgloss.Color("#f7768e")
	PhaseMismatchColor = lipgloss.Color("#bb9af7")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	cursorBoxStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff9e64")).
			Bold(true)

	qubitLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff"))

	// gates that fired
	gateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#73daca"))

	// gates not reached yet
	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0caf5"))

	// gates that were reached but did not fire
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))

	valueMismatchStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ValueMismatchColor)

	phaseMismatchStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(PhaseMismatchColor)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68"))
)
