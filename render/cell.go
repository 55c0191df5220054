package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// padCenter centres s within width visible columns.
func padCenter(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return ansi.Truncate(s, width, "")
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}

// padRight pads s with spaces to width visible columns.
func padRight(s string, width int) string {
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// pen holds the styles one cell is drawn with.
type pen struct {
	wire   lipgloss.Style
	gate   lipgloss.Style
	cursor bool
}

func (p pen) dashes(n int) string {
	return p.wire.Render(strings.Repeat("─", n))
}

// boxEdge draws the top or bottom edge of a gate box, joined to the
// connector when the gate spans further in that direction.
func boxEdge(left, right, join string, joined bool) string {
	inner := strings.Repeat("─", gateNameW)
	if joined {
		h := gateNameW / 2
		inner = strings.Repeat("─", h) + join + strings.Repeat("─", gateNameW-h-1)
	}
	return left + inner + right
}

// renderCell returns 3 lines (top, mid, bot) for a single cell.
// Each line is exactly cellW visual characters wide.
func renderCell(info cellInfo, p pen) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + p.gate.Render("│") + strings.Repeat(" ", cellW-halfW-1)

	if p.cursor && info.gate >= 0 {
		innerW := cellW - 2
		dashL := (innerW - 1) / 2
		dashR := innerW - dashL - 1
		edge := cursorBoxStyle.Render("║")

		top = cursorBoxStyle.Render("╔" + strings.Repeat("═", innerW) + "╗")
		bot = cursorBoxStyle.Render("╚" + strings.Repeat("═", innerW) + "╝")
		if info.role == roleBox {
			mid = edge + p.dashes(1) + p.gate.Render("┤"+padCenter(info.name, gateNameW)+"├") + p.dashes(1) + edge
		} else {
			mid = edge + p.dashes(dashL) + p.gate.Render(info.symbol()) + p.dashes(dashR) + edge
		}
		return
	}

	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1

	top, bot = emptyRow, emptyRow
	if info.vertAbove {
		top = vertRow
	}
	if info.vertBelow {
		bot = vertRow
	}

	switch {
	case info.gate < 0:
		mid = p.dashes(cellW)

	case info.role == roleBox:
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		top = strings.Repeat(" ", margin) + p.gate.Render(boxEdge("┌", "┐", "┴", info.vertAbove)) + strings.Repeat(" ", rightMargin)
		mid = p.dashes(margin) + p.gate.Render("┤"+padCenter(info.name, gateNameW)+"├") + p.dashes(rightMargin)
		bot = strings.Repeat(" ", margin) + p.gate.Render(boxEdge("└", "┘", "┬", info.vertBelow)) + strings.Repeat(" ", rightMargin)

	default:
		mid = p.dashes(dashL) + p.gate.Render(info.symbol()) + p.dashes(dashR)
	}
	return
}
