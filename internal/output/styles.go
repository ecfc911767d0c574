package output

import (
	"strings"

	"github.com/aleister1102/ayumi/internal/models"
	"github.com/charmbracelet/lipgloss"
)

// Severity colours follow the usual nuclei palette
var (
	colorHigh   = lipgloss.Color("#FF6B6B")
	colorMedium = lipgloss.Color("#FFD93D")
	colorLow    = lipgloss.Color("#6BCB77")
	colorInfo   = lipgloss.Color("#4D96FF")
	colorMuted  = lipgloss.Color("#6B7280")
	colorOK     = lipgloss.Color("#00D26A")
	colorFail   = lipgloss.Color("#FF3838")
	colorWarn   = lipgloss.Color("#FFB800")
	colorTitle  = lipgloss.Color("#7D56F4")
)

type styles struct {
	noColor bool
	title   lipgloss.Style
	section lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			noColor: true,
			title:   plain,
			section: plain,
			label:   plain,
			value:   plain,
			muted:   plain,
		}
	}
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(colorTitle).
			Padding(0, 1),
		section: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")),
		label: lipgloss.NewStyle().
			Foreground(colorMuted),
		value: lipgloss.NewStyle().
			Bold(true),
		muted: lipgloss.NewStyle().
			Foreground(colorMuted),
	}
}

func (s styles) severity(sev models.Severity) lipgloss.Style {
	if s.noColor {
		return lipgloss.NewStyle()
	}
	st := lipgloss.NewStyle().Bold(true)
	switch sev {
	case models.SeverityHigh:
		return st.Foreground(colorHigh)
	case models.SeverityMedium:
		return st.Foreground(colorMedium)
	case models.SeverityLow:
		return st.Foreground(colorLow)
	case models.SeverityInfo:
		return st.Foreground(colorInfo)
	default:
		return st.Foreground(colorMuted)
	}
}

func (s styles) status(status models.RunStatus) lipgloss.Style {
	if s.noColor {
		return lipgloss.NewStyle()
	}
	st := lipgloss.NewStyle().Bold(true)
	switch status {
	case models.RunStatusCompleted:
		return st.Foreground(colorOK)
	case models.RunStatusFailed:
		return st.Foreground(colorFail)
	case models.RunStatusCompletedWithIssues, models.RunStatusInterrupted:
		return st.Foreground(colorWarn)
	default:
		return st.Foreground(colorMuted)
	}
}

// padRight pads s to width visible cells, ignoring ANSI sequences
func padRight(s string, width int) string {
	if pad := width - lipgloss.Width(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
