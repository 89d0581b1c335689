package relocation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tuanano/wms-web/internal/models"
	"github.com/tuanano/wms-web/internal/services/relocation"
	"github.com/tuanano/wms-web/internal/tui/components"
)

// QuantityPrompt asks how much to take from each lot candidate of a scan.
type QuantityPrompt struct {
	form       *components.Form
	candidates []*models.InventoryUnit
	picked     []*models.InventoryUnit
}

// NewQuantityPrompt builds a prompt with one field per candidate unit.
func NewQuantityPrompt(res relocation.Resolution) *QuantityPrompt {
	form := components.NewForm("QUANTITY FOR " + res.Identifier).
		SetHelp("Enter:Next/Submit  Tab:Next  Ctrl+S:Submit  Esc:Cancel")

	for _, c := range res.Units {
		label := fmt.Sprintf("%s @ %s (max %d)", c.ID, c.CurrentLocationID, c.Quantity)
		form.AddField(components.NewInput(label).
			SetNumeric(true).
			SetMaxLength(6).
			SetWidth(8).
			SetLabelWidth(34).
			SetPlaceholder("0"))
	}

	return &QuantityPrompt{form: form, candidates: res.Units}
}

// HandleKey feeds a key to the prompt. It reports true once the prompt is
// finished: either Picked holds the units to add, or it was cancelled.
func (p *QuantityPrompt) HandleKey(key string) bool {
	p.form.HandleKey(key)

	if p.form.IsCancelled() {
		return true
	}
	if !p.form.IsSubmitted() {
		return false
	}

	picks := make(map[string]int, len(p.candidates))
	for i, field := range p.form.Fields() {
		raw := strings.TrimSpace(field.Value())
		if raw == "" {
			continue
		}
		qty, err := strconv.Atoi(raw)
		if err != nil {
			p.form.Reject(fmt.Sprintf("%s: %v", p.candidates[i].ID, relocation.ErrInvalidQuantity))
			return false
		}
		picks[p.candidates[i].ID] = qty
	}

	units, err := relocation.PickQuantities(p.candidates, picks)
	if err != nil {
		p.form.Reject(err.Error())
		return false
	}
	if len(units) == 0 {
		p.form.Reject("Enter a quantity for at least one unit")
		return false
	}
	p.picked = units
	return true
}

// Cancelled reports whether the operator backed out.
func (p *QuantityPrompt) Cancelled() bool {
	return p.form.IsCancelled()
}

// Picked returns the units chosen on submit.
func (p *QuantityPrompt) Picked() []*models.InventoryUnit {
	return p.picked
}

// Render renders the prompt.
func (p *QuantityPrompt) Render() string {
	return p.form.Render()
}
