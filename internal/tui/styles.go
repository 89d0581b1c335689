// Package tui provides the operator console for relocating warehouse stock.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tuanano/wms-web/internal/config"
	"github.com/tuanano/wms-web/internal/models"
	relviews "github.com/tuanano/wms-web/internal/tui/views/relocation"
)

// palette is the set of colors a console scheme is built from.
type palette struct {
	text      lipgloss.Color
	dim       lipgloss.Color
	highlight lipgloss.Color
	faint     lipgloss.Color
	screen    lipgloss.Color

	good    lipgloss.Color
	caution lipgloss.Color
	bad     lipgloss.Color
}

var palettes = map[config.ColorScheme]palette{
	config.ColorSchemeGreenPhosphor: {
		text: "#00FF00", dim: "#00AA00", highlight: "#66FF66", faint: "#006600", screen: "#000000",
		good: "#00FF00", caution: "#FFAA00", bad: "#FF4444",
	},
	config.ColorSchemeAmber: {
		text: "#FFAA00", dim: "#AA7700", highlight: "#FFCC66", faint: "#664400", screen: "#000000",
		good: "#FFAA00", caution: "#FFFF00", bad: "#FF4444",
	},
	config.ColorSchemeWhite: {
		text: "#FFFFFF", dim: "#AAAAAA", highlight: "#FFFFFF", faint: "#666666", screen: "#000000",
		good: "#00FF00", caution: "#FFAA00", bad: "#FF4444",
	},
}

// Theme holds the console styles, grouped by where they show up.
type Theme struct {
	// Screen chrome
	Header    lipgloss.Style
	Footer    lipgloss.Style
	Rule      lipgloss.Style
	HeavyRule lipgloss.Style
	Clock     lipgloss.Style
	Divider   lipgloss.Style
	UndoOffer lipgloss.Style

	// Alert bar
	Notice   lipgloss.Style
	Caution  lipgloss.Style
	Critical lipgloss.Style
	Busy     lipgloss.Style
	Idle     lipgloss.Style

	// Line tables
	LineHeader  lipgloss.Style
	LineRow     lipgloss.Style
	LineRowAlt  lipgloss.Style
	LineFocused lipgloss.Style
	LineMarked  lipgloss.Style
	LineRule    lipgloss.Style

	// Validation outcomes and slot fill
	Ok      lipgloss.Style
	Warn    lipgloss.Style
	Blocked lipgloss.Style

	// Side panels, dialogs and help
	Panel      lipgloss.Style
	PanelTitle lipgloss.Style
	Dialog     lipgloss.Style
	Title      lipgloss.Style
	Section    lipgloss.Style
	Text       lipgloss.Style
	Label      lipgloss.Style
	Key        lipgloss.Style
	Hint       lipgloss.Style
}

// NewTheme builds the theme for a color scheme. Unknown schemes get green
// phosphor.
func NewTheme(scheme config.ColorScheme) *Theme {
	p, ok := palettes[scheme]
	if !ok {
		p = palettes[config.ColorSchemeGreenPhosphor]
	}

	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return &Theme{
		Header:    fg(p.text).Bold(true).Padding(0, 1),
		Footer:    fg(p.dim).Padding(0, 1),
		Rule:      fg(p.dim),
		HeavyRule: fg(p.text),
		Clock:     fg(p.text),
		Divider:   fg(p.faint).SetString(" │ "),
		UndoOffer: fg(p.highlight).Bold(true),

		Notice:   fg(p.text).Bold(true),
		Caution:  fg(p.caution).Bold(true),
		Critical: fg(p.bad).Bold(true).Blink(true),
		Busy:     fg(p.caution).Bold(true),
		Idle:     fg(p.faint),

		// Rows are styled whole, so no padding or borders here
		LineHeader:  fg(p.highlight).Bold(true),
		LineRow:     fg(p.text),
		LineRowAlt:  fg(p.dim),
		LineFocused: fg(p.screen).Background(p.text).Bold(true),
		LineMarked:  fg(p.caution),
		LineRule:    fg(p.dim),

		Ok:      fg(p.good),
		Warn:    fg(p.caution),
		Blocked: fg(p.bad),

		Panel:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.dim).Padding(0, 1),
		PanelTitle: fg(p.highlight).Bold(true),
		Dialog:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.dim).Padding(0, 1),
		Title:      fg(p.highlight).Bold(true).Padding(0, 1),
		Section:    fg(p.text).Padding(0, 1),
		Text:       fg(p.text),
		Label:      fg(p.dim),
		Key:        fg(p.highlight),
		Hint:       fg(p.faint),
	}
}

// Severity returns the style for a validation severity.
func (t *Theme) Severity(s models.Severity) lipgloss.Style {
	switch s {
	case models.SeverityError:
		return t.Blocked
	case models.SeverityWarning:
		return t.Warn
	default:
		return t.Ok
	}
}

// AlertText renders an alert for the alert bar, prefixed by its level.
func (t *Theme) AlertText(a Alert, width int) string {
	msg := clip(a.Message, width)
	switch a.Level {
	case AlertCritical:
		return t.Critical.Render("ERROR: " + msg)
	case AlertWarning:
		return t.Caution.Render("WARNING: " + msg)
	default:
		return t.Notice.Render(msg)
	}
}

// StyleLines applies the line table styles to an editor.
func (t *Theme) StyleLines(e *relviews.LineEditor) {
	e.SetTableStyles(t.LineHeader, t.LineRow, t.LineRowAlt, t.LineFocused, t.LineMarked, t.LineRule)
}

// Separator draws the thin rule above the footer.
func (t *Theme) Separator(width int) string {
	return t.Rule.Render(strings.Repeat("─", max(width, 0)))
}

// HeaderRule draws the double rule under the header.
func (t *Theme) HeaderRule(width int) string {
	return t.HeavyRule.Render(strings.Repeat("═", max(width, 0)))
}
