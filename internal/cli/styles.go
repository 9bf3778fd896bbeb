package cli

import "github.com/charmbracelet/lipgloss"

// One Dark color palette
var (
	colorFgMuted = lipgloss.Color("#636B78")
	colorRed     = lipgloss.Color("#E06C75")
	colorGreen   = lipgloss.Color("#98C379")
	colorYellow  = lipgloss.Color("#E5C07B")
	colorBlue    = lipgloss.Color("#61AFEF")
	colorMagenta = lipgloss.Color("#C678DD")
	colorCyan    = lipgloss.Color("#56B6C2")
)

// styles carries the command output styles. The zero value renders plain
// text, which is what --no-color uses.
type styles struct {
	header lipgloss.Style
	id     lipgloss.Style
	status lipgloss.Style
	label  lipgloss.Style
	dim    lipgloss.Style
	ok     lipgloss.Style
	warn   lipgloss.Style
	fail   lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		return styles{}
	}
	return styles{
		header: lipgloss.NewStyle().Foreground(colorMagenta).Bold(true),
		id:     lipgloss.NewStyle().Foreground(colorCyan),
		status: lipgloss.NewStyle().Foreground(colorBlue).Bold(true),
		label:  lipgloss.NewStyle().Foreground(colorYellow),
		dim:    lipgloss.NewStyle().Foreground(colorFgMuted),
		ok:     lipgloss.NewStyle().Foreground(colorGreen),
		warn:   lipgloss.NewStyle().Foreground(colorYellow),
		fail:   lipgloss.NewStyle().Foreground(colorRed),
	}
}
