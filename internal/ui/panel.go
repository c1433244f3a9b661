package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-runewidth"
)

// DefaultWidth is used when the terminal size is unknown.
const DefaultWidth = 100

// Width returns the column count of the terminal behind w.
func Width(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(f.Fd()); err == nil && cols > 0 {
			return cols
		}
	}
	return DefaultWidth
}

// Truncate shortens s to at most n cells, ending with the theme ellipsis.
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if runewidth.StringWidth(s) <= n {
		return s
	}
	return runewidth.Truncate(s, n, current.Ellipsis)
}

func pad(s string, width int) string {
	if vis := ansi.StringWidth(s); vis < width {
		return s + strings.Repeat(" ", width-vis)
	}
	return s
}

// Panel draws a framed box using the current theme. An empty line
// between content becomes a separator rule.
func Panel(w io.Writer, lines []string) {
	t := Current()
	maxw := 0
	for _, ln := range lines {
		if vis := ansi.StringWidth(ln); vis > maxw {
			maxw = vis
		}
	}
	rule := strings.Repeat(t.H, maxw+2)
	fmt.Fprintln(w, t.CornerTL+rule+t.CornerTR)
	for i, ln := range lines {
		if ln == "" && i > 0 && i < len(lines)-1 {
			fmt.Fprintln(w, t.TeeL+rule+t.TeeR)
			continue
		}
		fmt.Fprintln(w, t.V+" "+pad(ln, maxw)+" "+t.V)
	}
	fmt.Fprintln(w, t.CornerBL+rule+t.CornerBR)
}

// Table lays out rows under headers with columns separated by two spaces.
// When the result is wider than maxWidth the widest column is cut down,
// repeatedly, to no less than minCol cells.
func Table(w io.Writer, headers []string, rows [][]string, maxWidth int) []string {
	const minCol = 8
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, cell := range r {
			cell = strings.Join(strings.Fields(cell), " ")
			if cw := runewidth.StringWidth(cell); i < len(widths) && cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	total := func() int {
		n := 2 * (len(widths) - 1)
		for _, cw := range widths {
			n += cw
		}
		return n
	}
	for total() > maxWidth {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minCol {
			break
		}
		widths[widest]--
	}

	line := func(cells []string, color string) string {
		parts := make([]string, len(widths))
		for i := range widths {
			var c string
			if i < len(cells) {
				c = Truncate(cells[i], widths[i])
			}
			parts[i] = pad(Cw(w, color, c), widths[i])
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	out := []string{line(headers, current.Title)}
	for _, r := range rows {
		out = append(out, line(r, ""))
	}
	return out
}
