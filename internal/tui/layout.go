package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/shopspring/decimal"
	"github.com/tuanano/wms-web/internal/models"
	relviews "github.com/tuanano/wms-web/internal/tui/views/relocation"
)

// Console geometry.
const (
	// handheldWidth is the widest scanner terminal; below it the side panel
	// and optional line columns go away.
	handheldWidth = 60

	minContentWidth = 40
	sidePanelWidth  = 34
	panelGap        = 2

	// columnGap is the " | " between line table cells, rowMargin the space
	// either side of a row.
	columnGap = 3
	rowMargin = 2
)

// Slot fill levels where the gauge turns amber, then red.
var (
	fillCaution = decimal.New(7, -1)
	fillFull    = decimal.New(9, -1)
)

// handheld reports whether width is a scanner-sized terminal.
func handheld(width int) bool {
	return width < handheldWidth
}

// lineColumn sizes one column of the relocation line tables.
type lineColumn struct {
	width int // fixed width, or the minimum of a growing column
	grow  int // share of the spare width; 0 keeps the column fixed
	drop  int // order in which tight screens give the column up; 0 keeps it
}

var lineColumns = []lineColumn{
	relviews.ColSelected:    {width: 3, drop: 3},
	relviews.ColProduct:     {width: 12},
	relviews.ColName:        {width: 8, grow: 5, drop: 2},
	relviews.ColQuantity:    {width: 5, drop: 4},
	relviews.ColSources:     {width: 6, grow: 3, drop: 1},
	relviews.ColDestination: {width: 16},
	relviews.ColStatus:      {width: 10, grow: 5},
}

// LineColumnWidths sizes the line table for a table width. Optional columns
// are given up in drop order until the rest fits; a dropped column gets 0.
// Product, destination and status always stay.
func LineColumnWidths(width int) []int {
	shown := make([]bool, len(lineColumns))
	for i := range shown {
		shown[i] = true
	}

	spare := func() int {
		n, used := 0, rowMargin
		for i, c := range lineColumns {
			if shown[i] {
				n++
				used += c.width
			}
		}
		return width - used - columnGap*(n-1)
	}

	for step := 1; spare() < 0; step++ {
		i := slices.IndexFunc(lineColumns, func(c lineColumn) bool { return c.drop == step })
		if i < 0 {
			break
		}
		shown[i] = false
	}

	extra, parts := max(spare(), 0), 0
	for i, c := range lineColumns {
		if shown[i] {
			parts += c.grow
		}
	}

	widths := make([]int, len(lineColumns))
	for i, c := range lineColumns {
		if !shown[i] {
			continue
		}
		widths[i] = c.width
		if parts > 0 {
			widths[i] += extra * c.grow / parts
		}
	}
	return widths
}

// fillStyle colors a slot by how full it is.
func (t *Theme) fillStyle(u decimal.Decimal) lipgloss.Style {
	switch {
	case u.GreaterThan(fillFull):
		return t.Blocked
	case u.GreaterThan(fillCaution):
		return t.Warn
	default:
		return t.Ok
	}
}

// FillGauge draws the slot's load as a bar of width cells including the
// brackets.
func (t *Theme) FillGauge(loc *models.Location, width int) string {
	cells := max(width-2, 4)
	u := decimal.Min(loc.Utilization(), decimal.NewFromInt(1))
	filled := int(u.Mul(decimal.NewFromInt(int64(cells))).IntPart())

	bar := "[" + strings.Repeat("█", filled) + strings.Repeat("░", cells-filled) + "]"
	return t.fillStyle(u).Render(bar)
}

// panel frames body in a side panel headed by title.
func (t *Theme) panel(title, body string) string {
	return t.Panel.Width(sidePanelWidth - 2).Render(t.PanelTitle.Render(title) + "\n" + body)
}

// SlotPanel shows the loaded location's fill.
func (t *Theme) SlotPanel(loc *models.Location) string {
	body := t.FillGauge(loc, sidePanelWidth-6) + "\n" +
		t.Label.Render(fmt.Sprintf("%d/%d units, %d free", loc.CurrentLoad, loc.Capacity, loc.FreeCapacity()))
	return t.panel("SLOT "+loc.ID, body)
}

// DestinationsPanel frames the rendered suggestions for the focused line.
func (t *Theme) DestinationsPanel(suggestions string) string {
	return t.panel("DESTINATIONS", suggestions)
}

// besidePanels puts the side panels right of main, or under it when both
// do not fit in width.
func besidePanels(main string, panels []string, width int) string {
	if len(panels) == 0 {
		return main
	}
	side := lipgloss.JoinVertical(lipgloss.Left, panels...)
	if lipgloss.Width(main)+panelGap+lipgloss.Width(side) > width {
		return lipgloss.JoinVertical(lipgloss.Left, main, "", side)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, main, strings.Repeat(" ", panelGap), side)
}

// clip shortens s to width cells with an ellipsis.
func clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}
