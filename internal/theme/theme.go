package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the color scheme of the reader.
type Theme struct {
	Name string

	Text    lipgloss.Color // verse lines
	Heading lipgloss.Color // book headers
	Accent  lipgloss.Color // title bar, selected menu entry
	Muted   lipgloss.Color // help, status
	Error   lipgloss.Color
	Border  lipgloss.Color
}

const DefaultName = "catppuccin-mocha"

var themes = map[string]Theme{
	"catppuccin-mocha": {
		Name:    "Catppuccin Mocha",
		Text:    lipgloss.Color("#cdd6f4"),
		Heading: lipgloss.Color("#f5c2e7"),
		Accent:  lipgloss.Color("#89b4fa"),
		Muted:   lipgloss.Color("#6c7086"),
		Error:   lipgloss.Color("#f38ba8"),
		Border:  lipgloss.Color("#45475a"),
	},
	"catppuccin-latte": {
		Name:    "Catppuccin Latte",
		Text:    lipgloss.Color("#4c4f69"),
		Heading: lipgloss.Color("#ea76cb"),
		Accent:  lipgloss.Color("#1e66f5"),
		Muted:   lipgloss.Color("#9ca0b0"),
		Error:   lipgloss.Color("#d20f39"),
		Border:  lipgloss.Color("#dce0e8"),
	},
	"dracula": {
		Name:    "Dracula",
		Text:    lipgloss.Color("#f8f8f2"),
		Heading: lipgloss.Color("#ff79c6"),
		Accent:  lipgloss.Color("#bd93f9"),
		Muted:   lipgloss.Color("#6272a4"),
		Error:   lipgloss.Color("#ff5555"),
		Border:  lipgloss.Color("#44475a"),
	},
	"rosepine-moon": {
		Name:    "Rosé Pine Moon",
		Text:    lipgloss.Color("#e0def4"),
		Heading: lipgloss.Color("#ebbcba"),
		Accent:  lipgloss.Color("#c4a7e7"),
		Muted:   lipgloss.Color("#6e6a86"),
		Error:   lipgloss.Color("#eb6f92"),
		Border:  lipgloss.Color("#403d52"),
	},
	"solarized-dark": {
		Name:    "Solarized Dark",
		Text:    lipgloss.Color("#839496"),
		Heading: lipgloss.Color("#d33682"),
		Accent:  lipgloss.Color("#268bd2"),
		Muted:   lipgloss.Color("#586e75"),
		Error:   lipgloss.Color("#dc322f"),
		Border:  lipgloss.Color("#073642"),
	},
	"solarized-light": {
		Name:    "Solarized Light",
		Text:    lipgloss.Color("#657b83"),
		Heading: lipgloss.Color("#d33682"),
		Accent:  lipgloss.Color("#268bd2"),
		Muted:   lipgloss.Color("#93a1a1"),
		Error:   lipgloss.Color("#dc322f"),
		Border:  lipgloss.Color("#eee8d5"),
	},
}

// Lookup returns the theme registered under key.
func Lookup(key string) (Theme, bool) {
	t, ok := themes[key]
	return t, ok
}

// Get returns a theme by key, falling back to the default.
func Get(key string) Theme {
	if t, ok := themes[key]; ok {
		return t
	}
	return themes[DefaultName]
}

// Keys returns the registered theme keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(themes))
	for k := range themes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Header lipgloss.Style
	Line   lipgloss.Style
	Title  lipgloss.Style
	Bar    lipgloss.Style
	Help   lipgloss.Style
	Error  lipgloss.Style
	Status lipgloss.Style
}

func (t Theme) Styles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(t.Heading),
		Line:   lipgloss.NewStyle().Foreground(t.Text),
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Bar: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Border),
		Help:   lipgloss.NewStyle().Foreground(t.Muted),
		Error:  lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		Status: lipgloss.NewStyle().Foreground(t.Muted),
	}
}
