package ui

import "strings"

// Theme bundles palette, symbols and box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Name                                   string
	Title, Muted, Accent, Success, Error   string
	Warn                                   string
	CornerTL, CornerTR, CornerBL, CornerBR string
	TeeL, TeeR                             string
	H, V                                   string
	SymOK, SymFail, Ellipsis               string
}

var current = themes["classic"]

var themes = map[string]Theme{
	"classic": {
		Name:  "classic",
		Title: bold, Muted: fgGray, Accent: fgBlue,
		Success: fgGreen, Error: fgRed, Warn: fgYellow,
		CornerTL: "┌", CornerTR: "┐", CornerBL: "└", CornerBR: "┘",
		TeeL: "├", TeeR: "┤",
		H: "─", V: "│",
		SymOK: "✔", SymFail: "✖", Ellipsis: "…",
	},
	"neon": {
		Name:  "neon",
		Title: "\033[95m", // bright magenta
		Muted: fgGray, Accent: "\033[96m",
		Success: "\033[92m", Error: "\033[91m", Warn: "\033[93m",
		CornerTL: "╭", CornerTR: "╮", CornerBL: "╰", CornerBR: "╯",
		TeeL: "├", TeeR: "┤",
		H: "─", V: "│",
		SymOK: "✔", SymFail: "✖", Ellipsis: "…",
	},
	"mono": {
		Name:     "mono",
		CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
		TeeL: "+", TeeR: "+",
		H: "-", V: "|",
		SymOK: "ok:", SymFail: "error:", Ellipsis: "...",
	},
}

// ThemeNames lists the accepted names for SetTheme.
func ThemeNames() []string { return []string{"classic", "neon", "mono"} }

// ValidTheme reports whether name is a known theme. Empty means classic.
func ValidTheme(name string) bool {
	if name == "" {
		return true
	}
	_, ok := themes[strings.ToLower(name)]
	return ok
}

// SetTheme switches the current theme; unknown names fall back to classic.
// mono also turns colors off.
func SetTheme(name string) {
	t, ok := themes[strings.ToLower(name)]
	if !ok {
		t = themes["classic"]
	}
	current = t
	if t.Name == "mono" {
		disableColor = true
	}
}

// Current exposes what renderers need.
func Current() Theme { return current }
