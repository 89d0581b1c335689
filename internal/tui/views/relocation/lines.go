// Package relocation provides the console views for moving stock: by source
// location and by scanned item.
package relocation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tuanano/wms-web/internal/models"
	"github.com/tuanano/wms-web/internal/services/relocation"
	"github.com/tuanano/wms-web/internal/tui/components"
)

// Line table columns, in render order.
const (
	ColSelected = iota
	ColProduct
	ColName
	ColQuantity
	ColSources
	ColDestination
	ColStatus
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#006600"))
)

// LineEditor holds product lines and the operator's draft destinations for
// them. Drafts are keyed by product code and never written to the units.
type LineEditor struct {
	svc   *relocation.Service
	table *components.Table
	dest  *components.Input

	lines    []relocation.ProductLine
	drafts   relocation.Drafts
	outcomes map[string]models.ValidationOutcome

	suggestionLimit int
	suggestions     []relocation.Suggestion
	suggestFor      string
	notice          string
}

// NewLineEditor creates an empty editor.
func NewLineEditor(svc *relocation.Service, suggestionLimit int) *LineEditor {
	table := components.NewTable([]components.Column{
		{Title: "Sel", Width: 3, Align: lipgloss.Center},
		{Title: "Product", Width: 12},
		{Title: "Name", Width: 24},
		{Title: "Qty", Width: 5, Align: lipgloss.Right},
		{Title: "From", Width: 14},
		{Title: "Destination", Width: 16},
		{Title: "Status", Width: 22},
	})
	table.SetVisibleRows(12)

	return &LineEditor{
		svc:             svc,
		table:           table,
		dest:            components.NewInput("Destination").SetUppercase(true).SetMaxLength(32).SetLabelWidth(14),
		drafts:          relocation.Drafts{},
		outcomes:        map[string]models.ValidationOutcome{},
		suggestionLimit: suggestionLimit,
	}
}

// SetLines replaces the lines. Drafts of lines that are gone are dropped and
// every remaining draft is validated again.
func (e *LineEditor) SetLines(lines []relocation.ProductLine) {
	e.lines = lines
	e.drafts.Prune(lines)
	e.suggestions = nil
	e.suggestFor = ""
	e.Revalidate()
}

// Reset drops all lines and drafts.
func (e *LineEditor) Reset() {
	e.drafts = relocation.Drafts{}
	e.table.GoToTop()
	e.SetLines(nil)
}

// Lines returns the current lines.
func (e *LineEditor) Lines() []relocation.ProductLine {
	return e.lines
}

// Drafts returns the pending destinations.
func (e *LineEditor) Drafts() relocation.Drafts {
	return e.drafts
}

// Outcome returns the last verdict for a line's draft destination.
func (e *LineEditor) Outcome(productCode string) (models.ValidationOutcome, bool) {
	o, ok := e.outcomes[productCode]
	return o, ok
}

// FocusedLine returns the line under the cursor.
func (e *LineEditor) FocusedLine() (relocation.ProductLine, bool) {
	idx := e.table.Selected()
	if idx >= 0 && idx < len(e.lines) {
		return e.lines[idx], true
	}
	return relocation.ProductLine{}, false
}

// Focus toggles keyboard focus on the line table.
func (e *LineEditor) Focus(focused bool) {
	e.table.Focus(focused)
	e.dest.Focus(focused)
}

// SetColumnWidths resizes the line table.
func (e *LineEditor) SetColumnWidths(widths []int) {
	e.table.SetColumnWidths(widths)
}

// SetVisibleRows sets how many lines are shown at once.
func (e *LineEditor) SetVisibleRows(n int) {
	e.table.SetVisibleRows(n)
}

// Notice returns and clears the last editor message.
func (e *LineEditor) Notice() string {
	n := e.notice
	e.notice = ""
	return n
}

// HandleKey edits the focused line. It reports whether the key was used.
func (e *LineEditor) HandleKey(key string) bool {
	switch key {
	case "up":
		e.table.MoveUp()
		e.syncDest()
	case "down":
		e.table.MoveDown()
		e.syncDest()
	case "pgup":
		e.table.PageUp()
		e.syncDest()
	case "pgdown":
		e.table.PageDown()
		e.syncDest()
	case " ":
		line, ok := e.FocusedLine()
		if !ok {
			return false
		}
		e.drafts.ToggleSelected(line.ProductCode)
		e.refresh()
	case "ctrl+b":
		e.assignSelected()
	case "ctrl+g":
		e.toggleSuggestions()
	default:
		line, ok := e.FocusedLine()
		if !ok || !e.dest.HandleKey(key) {
			return false
		}
		e.drafts.SetDestination(line.ProductCode, e.dest.Value())
		e.validate(line)
		if e.suggestFor == line.ProductCode {
			e.suggestFor = ""
			e.suggestions = nil
		}
		e.refresh()
	}
	return true
}

// SetDestination drafts a destination for a line, as if typed.
func (e *LineEditor) SetDestination(productCode, destination string) {
	e.drafts.SetDestination(productCode, destination)
	if line, ok := relocation.FindLine(e.lines, productCode); ok {
		e.validate(line)
	}
	e.refresh()
	e.syncDest()
}

// assignSelected copies the focused line's destination to every selected line.
func (e *LineEditor) assignSelected() {
	line, ok := e.FocusedLine()
	if !ok {
		return
	}
	dest := e.drafts.Destination(line.ProductCode)
	if dest == "" {
		e.notice = "Type a destination on the focused line first"
		return
	}
	n := e.drafts.AssignSelected(e.lines, dest)
	if n == 0 {
		e.notice = "No lines selected"
		return
	}
	e.Revalidate()
	e.notice = fmt.Sprintf("Assigned %s to %d lines", dest, n)
}

func (e *LineEditor) toggleSuggestions() {
	line, ok := e.FocusedLine()
	if !ok {
		return
	}
	if e.suggestFor == line.ProductCode {
		e.suggestFor = ""
		e.suggestions = nil
		return
	}
	e.suggestFor = line.ProductCode
	e.suggestions = e.svc.Suggest(line.Subject(), line.SourceLocations, e.suggestionLimit)
}

// Suggestions returns the proposals shown for the focused line, if any.
func (e *LineEditor) Suggestions() []relocation.Suggestion {
	return e.suggestions
}

// Revalidate checks every drafted destination against current stock.
func (e *LineEditor) Revalidate() {
	e.outcomes = map[string]models.ValidationOutcome{}
	for _, line := range e.lines {
		e.validate(line)
	}
	e.refresh()
	e.syncDest()
}

func (e *LineEditor) validate(line relocation.ProductLine) {
	dest := e.drafts.Destination(line.ProductCode)
	if dest == "" {
		delete(e.outcomes, line.ProductCode)
		return
	}
	e.outcomes[line.ProductCode] = e.svc.ValidateLine(line, dest)
}

// syncDest loads the focused line's draft into the destination input.
func (e *LineEditor) syncDest() {
	line, ok := e.FocusedLine()
	if !ok {
		e.dest.Clear()
		return
	}
	e.dest.SetValue(e.drafts.Destination(line.ProductCode))
}

func (e *LineEditor) refresh() {
	rows := make([][]string, len(e.lines))
	marked := map[int]bool{}
	for i, line := range e.lines {
		sel := "[ ]"
		if e.drafts[line.ProductCode].Selected {
			sel = "[x]"
			marked[i] = true
		}
		dest := e.drafts.Destination(line.ProductCode)
		if dest == "" {
			dest = "-"
		}
		rows[i] = []string{
			sel,
			line.ProductCode,
			line.ProductName,
			strconv.Itoa(line.TotalQuantity),
			strings.Join(line.SourceLocations, ","),
			dest,
			statusText(e.outcomes, line.ProductCode),
		}
	}
	selected := e.table.Selected()
	e.table.SetRows(rows)
	e.table.SetSelected(selected)
	e.table.SetMarked(marked)
	e.table.SetFooter(fmt.Sprintf("%d lines | %d units", len(e.lines), relocation.TotalUnits(e.lines)))
}

func statusText(outcomes map[string]models.ValidationOutcome, productCode string) string {
	o, ok := outcomes[productCode]
	if !ok {
		return "-"
	}
	switch o.Severity {
	case models.SeverityError:
		return "ERR " + o.ShortMessage
	case models.SeverityWarning:
		return "WARN " + o.ShortMessage
	default:
		if o.Reason == models.ReasonOK {
			return "OK"
		}
		return "INFO " + o.ShortMessage
	}
}

// Empty reports whether there are no lines.
func (e *LineEditor) Empty() bool {
	return len(e.lines) == 0
}

// Render renders the line table and the destination prompt.
func (e *LineEditor) Render() string {
	var b strings.Builder
	b.WriteString(e.table.Render())
	b.WriteString("\n\n")

	line, ok := e.FocusedLine()
	if !ok {
		return b.String()
	}

	b.WriteString(e.dest.Render())
	b.WriteString(" ")
	b.WriteString(mutedStyle.Render(line.ProductCode))
	b.WriteString("\n")
	if o, ok := e.outcomes[line.ProductCode]; ok {
		b.WriteString(SeverityStyle(o.Severity).Render(o.Message))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderSuggestions lists destination proposals for the focused line.
func (e *LineEditor) RenderSuggestions() string {
	if e.suggestFor == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("SUGGESTIONS " + e.suggestFor))
	b.WriteString("\n")
	if len(e.suggestions) == 0 {
		b.WriteString(labelStyle.Render("No location can take this line."))
		return b.String()
	}
	for i, s := range e.suggestions {
		b.WriteString(valueStyle.Render(fmt.Sprintf("%d. %-12s", i+1, s.LocationID)))
		b.WriteString(" ")
		b.WriteString(SeverityStyle(s.Outcome.Severity).Render(s.Reason))
		b.WriteString("\n")
	}
	return b.String()
}

// SeverityStyle colors text by outcome severity.
func SeverityStyle(s models.Severity) lipgloss.Style {
	switch s {
	case models.SeverityError:
		return errStyle
	case models.SeverityWarning:
		return warnStyle
	default:
		return valueStyle
	}
}

// SetTableStyles applies a color theme to the line table.
func (e *LineEditor) SetTableStyles(header, row, rowAlt, selected, marked, border lipgloss.Style) {
	e.table.SetStyles(header, row, rowAlt, selected, marked, border)
}
