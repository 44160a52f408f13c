package cli

import "github.com/charmbracelet/lipgloss"

type tuiTheme struct {
	canvas      lipgloss.Style
	panel       lipgloss.Style
	title       lipgloss.Style
	subtitle    lipgloss.Style
	text        lipgloss.Style
	muted       lipgloss.Style
	ok          lipgloss.Style
	warn        lipgloss.Style
	danger      lipgloss.Style
	info        lipgloss.Style
	highlight   lipgloss.Style
	help        lipgloss.Style
	railDone    lipgloss.Style
	railCurrent lipgloss.Style
	railPending lipgloss.Style

	userLabel      lipgloss.Style
	assistantLabel lipgloss.Style
	citation       lipgloss.Style
	bannerInfo     lipgloss.Style
	bannerError    lipgloss.Style
}

func newTUITheme() tuiTheme {
	return tuiTheme{
		canvas: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D9DCE3")).
			Background(lipgloss.Color("#11131A")),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#414B5C")).
			Padding(0, 1),
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#C4B5FD")),
		subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#C2C9D6")),
		text: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D9DCE3")),
		muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7684")),
		ok: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5FC98D")),
		warn: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5B35C")),
		danger: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E26D76")),
		info: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6FB3FF")),
		highlight: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#11131A")).
			Background(lipgloss.Color("#A78BFA")),
		help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8C9AAE")),
		railDone: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5FC98D")),
		railCurrent: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A78BFA")),
		railPending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7684")),

		userLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A78BFA")),
		assistantLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#6FB3FF")),
		citation: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8C9AAE")),
		bannerInfo: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5FC98D")),
		bannerError: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E26D76")),
	}
}
