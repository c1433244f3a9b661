package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// overlayCenter draws fg over the middle of bg, both w cells wide and
// bg clipped or padded to h lines.
func overlayCenter(bg, fg string, w, h int) string {
	bgLines := splitLinesN(bg, h)
	fgLines := strings.Split(fg, "\n")
	fgH := len(fgLines)
	fgW := 0
	for _, ln := range fgLines {
		if n := xansi.StringWidth(ln); n > fgW {
			fgW = n
		}
	}
	if fgW == 0 {
		return strings.Join(bgLines, "\n")
	}
	fgW = min(fgW, w)
	fgH = min(fgH, h)

	x := max((w-fgW)/2, 0)
	y := max((h-fgH)/2, 0)
	overlayAt(bgLines, fgLines[:fgH], w, x, y, fgW)
	return strings.Join(bgLines, "\n")
}

func overlayAt(bgLines, fgLines []string, w, x, y, fgW int) {
	for i := 0; i < len(fgLines) && y+i < len(bgLines); i++ {
		bgLine := bgLines[y+i]
		if n := xansi.StringWidth(bgLine); n < w {
			bgLine += strings.Repeat(" ", w-n)
		}
		left := xansi.Cut(bgLine, 0, x)
		right := xansi.Cut(bgLine, x+fgW, w)

		fgLine := fgLines[i]
		if n := xansi.StringWidth(fgLine); n < fgW {
			fgLine += strings.Repeat(" ", fgW-n)
		} else if n > fgW {
			fgLine = xansi.Cut(fgLine, 0, fgW)
		}
		bgLines[y+i] = left + fgLine + right
	}
}

func dimBackground(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Faint(true).Render(xansi.Strip(s))
}

// renderModalBox frames title and body for a screen screenWidth wide.
func renderModalBox(screenWidth int, title, body string) string {
	w := min(max(screenWidth-12, 30), 72)
	if w > screenWidth-4 {
		w = max(screenWidth-4, 10)
	}
	content := titleStyle.Render(title) + "\n\n" + body
	return lipgloss.NewStyle().
		Width(w).
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(modalBorder).
		Render(content)
}

func splitLinesN(s string, n int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) >= n {
		return lines[:n]
	}
	for len(lines) < n {
		lines = append(lines, "")
	}
	return lines
}
