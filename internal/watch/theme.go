package watch

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors used by the watch TUI.
type Theme struct {
	Primary   lipgloss.Color // title, cursor
	Secondary lipgloss.Color // selected row text
	Error     lipgloss.Color // failed steps
	Warning   lipgloss.Color // pending changes
	Success   lipgloss.Color // applied status, active pane marker
	Text      lipgloss.Color // primary text
	TextMuted lipgloss.Color // hints, dimmed columns
	Highlight lipgloss.Color // selected row background
	Border    lipgloss.Color // separators
}

// DarkTheme returns the default dark theme.
func DarkTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#fab283"),
		Secondary: lipgloss.Color("#5c9cf5"),
		Error:     lipgloss.Color("#e06c75"),
		Warning:   lipgloss.Color("#f5a742"),
		Success:   lipgloss.Color("#7fd88f"),
		Text:      lipgloss.Color("#eeeeee"),
		TextMuted: lipgloss.Color("#808080"),
		Highlight: lipgloss.Color("#1e1e1e"),
		Border:    lipgloss.Color("#484848"),
	}
}

// LightTheme returns a light theme for bright terminal backgrounds.
func LightTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#b35c00"),
		Secondary: lipgloss.Color("#0550ae"),
		Error:     lipgloss.Color("#cf222e"),
		Warning:   lipgloss.Color("#bf8700"),
		Success:   lipgloss.Color("#116329"),
		Text:      lipgloss.Color("#1f2328"),
		TextMuted: lipgloss.Color("#656d76"),
		Highlight: lipgloss.Color("#f6f8fa"),
		Border:    lipgloss.Color("#d0d7de"),
	}
}

// ThemeByName returns a theme by name. Defaults to dark.
func ThemeByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	default:
		return DarkTheme()
	}
}

// styles holds the lipgloss styles derived from a Theme.
type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	selected lipgloss.Style
	warn     lipgloss.Style
	good     lipgloss.Style
	bad      lipgloss.Style
	dim      lipgloss.Style
	text     lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		header:   lipgloss.NewStyle().Foreground(t.Border),
		selected: lipgloss.NewStyle().Bold(true).Foreground(t.Secondary).Background(t.Highlight),
		warn:     lipgloss.NewStyle().Foreground(t.Warning),
		good:     lipgloss.NewStyle().Foreground(t.Success),
		bad:      lipgloss.NewStyle().Foreground(t.Error),
		dim:      lipgloss.NewStyle().Foreground(t.TextMuted),
		text:     lipgloss.NewStyle().Foreground(t.Text),
	}
}
