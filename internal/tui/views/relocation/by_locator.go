package relocation

import (
	"fmt"
	"strings"

	"github.com/tuanano/wms-web/internal/models"
	"github.com/tuanano/wms-web/internal/services/relocation"
	"github.com/tuanano/wms-web/internal/tui/components"
)

// Action is a request from a view that the app must carry out.
type Action int

const (
	ActionNone Action = iota
	// ActionLoad asks for the units at Query().
	ActionLoad
	// ActionResolve asks to resolve Query() as a scanned identifier.
	ActionResolve
)

// ByLocatorView moves stock out of one source location. The operator loads
// a location, then drafts a destination per product line.
type ByLocatorView struct {
	svc    *relocation.Service
	input  *components.Input
	editor *LineEditor

	location     *models.Location
	linesFocused bool
	loading      bool
	err          error
}

// NewByLocatorView creates the view.
func NewByLocatorView(svc *relocation.Service, suggestionLimit int) *ByLocatorView {
	input := components.NewInput("Source location").
		SetUppercase(true).
		SetMaxLength(32).
		SetLabelWidth(18).
		SetPlaceholder("e.g. A1-01")
	input.Focus(true)

	return &ByLocatorView{
		svc:    svc,
		input:  input,
		editor: NewLineEditor(svc, suggestionLimit),
	}
}

// Editor returns the line editor.
func (v *ByLocatorView) Editor() *LineEditor {
	return v.editor
}

// Query returns the location id typed by the operator.
func (v *ByLocatorView) Query() string {
	return models.NormalizeID(v.input.Value())
}

// Location returns the loaded location, if any.
func (v *ByLocatorView) Location() *models.Location {
	return v.location
}

// LinesFocused reports whether keys go to the line table.
func (v *ByLocatorView) LinesFocused() bool {
	return v.linesFocused
}

// HandleKey processes a key press.
func (v *ByLocatorView) HandleKey(key string) Action {
	switch key {
	case "tab", "shift+tab":
		v.setLinesFocus(!v.linesFocused && !v.editor.Empty())
		return ActionNone
	}

	if v.linesFocused {
		if key == "esc" {
			v.setLinesFocus(false)
			return ActionNone
		}
		v.editor.HandleKey(key)
		return ActionNone
	}

	if key == "enter" {
		if v.Query() == "" {
			v.input.SetError("Required")
			return ActionNone
		}
		v.input.SetError("")
		v.loading = true
		return ActionLoad
	}
	v.input.HandleKey(key)
	return ActionNone
}

func (v *ByLocatorView) setLinesFocus(focused bool) {
	v.linesFocused = focused
	v.input.Focus(!focused)
	v.editor.Focus(focused)
}

// SetUnits shows the units fetched for locationID. Loading a different
// location discards the drafts of the previous one.
func (v *ByLocatorView) SetUnits(locationID string, units []*models.InventoryUnit, err error) {
	v.loading = false
	v.err = err

	if err != nil {
		v.location = nil
		v.editor.Reset()
		v.setLinesFocus(false)
		return
	}

	loc, _ := v.svc.GetLocation(locationID)
	if v.location == nil || loc == nil || !strings.EqualFold(v.location.ID, loc.ID) {
		v.editor.Reset()
	}
	v.location = loc
	v.editor.SetLines(relocation.Aggregate(units))
	v.setLinesFocus(!v.editor.Empty())
}

// Render renders the view.
func (v *ByLocatorView) Render(width, height int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("=== RELOCATE BY LOCATION ==="))
	b.WriteString("\n\n")
	b.WriteString(v.input.Render())
	b.WriteString("\n")

	if v.location != nil {
		loc := v.location
		mixing := "mixing allowed"
		if !loc.AllowsMixing {
			mixing = "single product"
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("Zone %s | Load %d/%d (%s) | %s",
			loc.Zone, loc.CurrentLoad, loc.Capacity, loc.UtilizationPercent(), mixing)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case v.err != nil:
		b.WriteString(errStyle.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case v.loading:
		b.WriteString(labelStyle.Render("Loading..."))
		b.WriteString("\n")
	case v.location == nil:
		b.WriteString(labelStyle.Render("Enter a location to list its stock."))
		b.WriteString("\n")
	case v.editor.Empty():
		b.WriteString(labelStyle.Render("No stock at " + v.location.ID + "."))
		b.WriteString("\n")
	default:
		b.WriteString(v.editor.Render())
	}

	b.WriteString("\n")
	if width < 100 {
		b.WriteString(labelStyle.Render("Enter:Load Tab:Lines Spc:Sel ^B:Assign ^G:Suggest ^S:Move"))
	} else {
		b.WriteString(labelStyle.Render("Enter:Load  Tab:Lines  Space:Select  Ctrl+B:Assign selected  Ctrl+G:Suggest  Ctrl+S:Move  Ctrl+Z:Undo"))
	}

	return b.String()
}
