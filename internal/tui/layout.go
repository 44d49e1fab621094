package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/sidosera/ttl/internal/pane"
)

// Widget draws itself into a width x height cell block.
type Widget interface {
	Render(width, height int) string
}

// Stack lays widgets out along one axis: Row splits the width, Column
// splits the height. Ratios apply only when there is one per widget.
type Stack struct {
	Axis    pane.Axis
	Widgets []Widget
	Ratios  []float64
}

func (s Stack) Render(width, height int) string {
	if len(s.Widgets) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	if s.Axis == pane.Column {
		return s.renderColumn(width, height)
	}
	return s.renderRow(width, height)
}

func (s Stack) renderColumn(width, height int) string {
	heights := splitSizes(height, len(s.Widgets), s.Ratios)
	blocks := make([]string, 0, len(s.Widgets))
	for i, w := range s.Widgets {
		if heights[i] <= 0 {
			continue
		}
		blocks = append(blocks, fit(w.Render(width, heights[i]), width, heights[i]))
	}
	return strings.Join(blocks, "\n")
}

func (s Stack) renderRow(width, height int) string {
	widths := splitSizes(width, len(s.Widgets), s.Ratios)
	cols := make([][]string, 0, len(s.Widgets))
	used := make([]int, 0, len(s.Widgets))
	for i, w := range s.Widgets {
		if widths[i] <= 0 {
			continue
		}
		cols = append(cols, strings.Split(fit(w.Render(widths[i], height), widths[i], height), "\n"))
		used = append(used, widths[i])
	}
	out := make([]string, height)
	for line := range out {
		var b strings.Builder
		for i, col := range cols {
			if line < len(col) {
				b.WriteString(padRight(col[line], used[i]))
			} else {
				b.WriteString(strings.Repeat(" ", used[i]))
			}
		}
		out[line] = b.String()
	}
	return strings.Join(out, "\n")
}

// splitSizes divides total cells between n parts, proportionally to ratios
// when there is one per part, evenly otherwise. Leftover cells go to the
// leading parts.
func splitSizes(total, n int, ratios []float64) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	if total <= 0 {
		return out
	}
	if len(ratios) != n {
		for i := range out {
			out[i] = total / n
		}
		for i := 0; i < total%n; i++ {
			out[i]++
		}
		return out
	}
	weights := make([]float64, n)
	sum := 0.0
	for i, r := range ratios {
		if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			r = 1
		}
		weights[i] = r
		sum += r
	}
	used := 0
	for i := range out {
		out[i] = int(math.Floor(weights[i] / sum * float64(total)))
		used += out[i]
	}
	for i := 0; used < total; i = (i + 1) % n {
		out[i]++
		used++
	}
	return out
}

// fit pads or cuts s to exactly height lines of width cells.
func fit(s string, width, height int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, l := range lines {
		lines[i] = padRight(l, width)
	}
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = ansi.Truncate(s, width, "")
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
