package relocation

import (
	"fmt"
	"strings"

	"github.com/tuanano/wms-web/internal/models"
	"github.com/tuanano/wms-web/internal/services/relocation"
	"github.com/tuanano/wms-web/internal/tui/components"
)

// ByItemView builds a move list from scanned identifiers: pallets, serials,
// lots and product codes, wherever the stock is.
type ByItemView struct {
	svc    *relocation.Service
	input  *components.Input
	editor *LineEditor
	prompt *QuantityPrompt

	linesFocused bool
	notice       string
	err          error
}

// NewByItemView creates the view.
func NewByItemView(svc *relocation.Service, suggestionLimit int) *ByItemView {
	input := components.NewInput("Scan").
		SetUppercase(true).
		SetMaxLength(48).
		SetLabelWidth(18).
		SetPlaceholder("serial, lot, pallet or product")
	input.Focus(true)

	return &ByItemView{
		svc:    svc,
		input:  input,
		editor: NewLineEditor(svc, suggestionLimit),
	}
}

// Editor returns the line editor.
func (v *ByItemView) Editor() *LineEditor {
	return v.editor
}

// Query returns the identifier typed or scanned by the operator.
func (v *ByItemView) Query() string {
	return models.NormalizeID(v.input.Value())
}

// Prompting reports whether the quantity prompt is open.
func (v *ByItemView) Prompting() bool {
	return v.prompt != nil
}

// LinesFocused reports whether keys go to the line table.
func (v *ByItemView) LinesFocused() bool {
	return v.linesFocused
}

// HandleKey processes a key press.
func (v *ByItemView) HandleKey(key string) Action {
	if v.prompt != nil {
		if v.prompt.HandleKey(key) {
			if !v.prompt.Cancelled() {
				v.AddUnits(v.prompt.Picked())
				v.input.Clear()
			}
			v.prompt = nil
		}
		return ActionNone
	}

	switch key {
	case "tab", "shift+tab":
		v.setLinesFocus(!v.linesFocused && !v.editor.Empty())
		return ActionNone
	}

	if v.linesFocused {
		switch key {
		case "esc":
			v.setLinesFocus(false)
		case "ctrl+x":
			v.removeLastUnit()
		case "ctrl+k":
			v.removeLine()
		default:
			v.editor.HandleKey(key)
		}
		return ActionNone
	}

	if key == "enter" {
		if v.Query() == "" {
			return ActionNone
		}
		v.err = nil
		v.notice = ""
		return ActionResolve
	}
	v.input.HandleKey(key)
	return ActionNone
}

func (v *ByItemView) setLinesFocus(focused bool) {
	v.linesFocused = focused
	v.input.Focus(!focused)
	v.editor.Focus(focused)
}

// SetResolution acts on a resolved scan: found units are added, lot
// candidates open the quantity prompt.
func (v *ByItemView) SetResolution(res relocation.Resolution, err error) {
	if err != nil {
		v.err = err
		return
	}

	switch res.Kind {
	case relocation.ResolvedItems:
		v.AddUnits(res.Units)
		v.input.Clear()
	case relocation.NeedsQuantity:
		v.prompt = NewQuantityPrompt(res)
	default:
		v.notice = fmt.Sprintf("Nothing matches %s", res.Identifier)
		v.input.Clear()
	}
}

// AddUnits merges units into the lines. Units already listed are ignored and
// repeated picks of one lot add up to at most its stock.
func (v *ByItemView) AddUnits(units []*models.InventoryUnit) {
	before := relocation.TotalUnits(v.editor.Lines())
	v.editor.SetLines(v.svc.AddUnits(v.editor.Lines(), units))
	added := relocation.TotalUnits(v.editor.Lines()) - before
	if added == 0 {
		v.notice = "Already in the list"
		return
	}
	v.notice = fmt.Sprintf("Added %d units", added)
}

func (v *ByItemView) removeLastUnit() {
	line, ok := v.editor.FocusedLine()
	if !ok {
		return
	}
	last := line.Units[len(line.Units)-1]
	v.editor.SetLines(relocation.RemoveUnit(v.editor.Lines(), line.ProductCode, last.ID))
	v.notice = "Removed " + last.ID
	if v.editor.Empty() {
		v.setLinesFocus(false)
	}
}

func (v *ByItemView) removeLine() {
	line, ok := v.editor.FocusedLine()
	if !ok {
		return
	}
	v.editor.SetLines(relocation.RemoveLine(v.editor.Lines(), line.ProductCode))
	v.notice = "Removed " + line.ProductCode
	if v.editor.Empty() {
		v.setLinesFocus(false)
	}
}

// Applied drops the lines a batch moved.
func (v *ByItemView) Applied(b *relocation.Batch) {
	lines := v.editor.Lines()
	for _, bl := range b.Lines {
		lines = relocation.RemoveLine(lines, bl.Line.ProductCode)
	}
	v.editor.SetLines(lines)
	if v.editor.Empty() {
		v.setLinesFocus(false)
	}
}

// Render renders the view.
func (v *ByItemView) Render(width, height int) string {
	if v.prompt != nil {
		return v.prompt.Render()
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("=== RELOCATE BY ITEM ==="))
	b.WriteString("\n\n")
	b.WriteString(v.input.Render())
	b.WriteString("\n")
	if v.notice != "" {
		b.WriteString(labelStyle.Render(v.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case v.err != nil:
		b.WriteString(errStyle.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case v.editor.Empty():
		b.WriteString(labelStyle.Render("Scan items to build a move list."))
		b.WriteString("\n")
	default:
		b.WriteString(v.editor.Render())
	}

	b.WriteString("\n")
	if width < 100 {
		b.WriteString(labelStyle.Render("Enter:Scan Tab:Lines ^X:Unit ^K:Line ^B:Assign ^S:Move"))
	} else {
		b.WriteString(labelStyle.Render("Enter:Scan  Tab:Lines  Ctrl+X:Remove unit  Ctrl+K:Remove line  Ctrl+B:Assign selected  Ctrl+G:Suggest  Ctrl+S:Move"))
	}

	return b.String()
}
