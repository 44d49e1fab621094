package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/sidosera/ttl/internal/pane"
)

var (
	borderColor  = lipgloss.Color("#6c7086")
	focusColor   = lipgloss.Color("#a6e3a1")
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#cdd6f4")).Bold(true)
	contentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#cdd6f4"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af"))
)

// paneBox draws one leaf as a rounded box titled with its id.
type paneBox struct {
	node *pane.Node
}

func (p paneBox) title() string {
	t := "Pane: " + p.node.Pane.ID
	if p.node.Focused {
		t += " (focused)"
	}
	return t
}

func (p paneBox) content() []string {
	lines := []string{"Type: " + p.node.Pane.Type}
	if w := p.node.Pane.WidgetType; w != nil && *w != "" {
		lines = append(lines, "Widget: "+*w)
	}
	return lines
}

func (p paneBox) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if width < 5 || height < 3 {
		return fit(p.title(), width, height)
	}

	border := borderColor
	if p.node.Focused {
		border = focusColor
	}
	borderStyle := lipgloss.NewStyle().Foreground(border)

	innerWidth := width - 2
	contentWidth := max(1, innerWidth-2)

	titleText := " " + ansi.Truncate(p.title(), max(1, innerWidth-2), "") + " "
	dashes := max(0, innerWidth-ansi.StringWidth(titleText))
	leftDash := min(1, dashes)

	rows := make([]string, 0, height)
	rows = append(rows, borderStyle.Render("╭")+
		borderStyle.Render(strings.Repeat("─", leftDash))+
		titleStyle.Render(titleText)+
		borderStyle.Render(strings.Repeat("─", dashes-leftDash))+
		borderStyle.Render("╮"))

	v := borderStyle.Render("│")
	content := p.content()
	for i := 0; i < height-2; i++ {
		line := ""
		if i < len(content) {
			line = contentStyle.Render(ansi.Truncate(content[i], contentWidth, ""))
		}
		rows = append(rows, v+" "+padRight(line, contentWidth)+" "+v)
	}
	rows = append(rows, borderStyle.Render("╰"+strings.Repeat("─", innerWidth)+"╯"))
	return strings.Join(rows, "\n")
}

// layoutWidget turns a render tree into nested stacks of pane boxes.
func layoutWidget(n *pane.Node) Widget {
	if n.Leaf() {
		return paneBox{node: n}
	}
	s := Stack{Axis: n.Axis, Widgets: make([]Widget, 0, len(n.Children))}
	ratios := make([]float64, 0, len(n.Children))
	for _, c := range n.Children {
		s.Widgets = append(s.Widgets, layoutWidget(c))
		if c.Pane.Size != nil {
			ratios = append(ratios, *c.Pane.Size)
		}
	}
	if len(ratios) == len(n.Children) {
		s.Ratios = ratios
	}
	return s
}
