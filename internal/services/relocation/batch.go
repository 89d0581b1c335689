package relocation

import (
	"strings"

	"github.com/tuanano/wms-web/internal/models"
)

// LineDraft is the operator's pending edit for one product line. Drafts live
// beside the lines, never on them.
type LineDraft struct {
	Destination string
	Selected    bool
}

// Drafts maps product codes to pending edits.
type Drafts map[string]LineDraft

// SetDestination records a destination for a line.
func (d Drafts) SetDestination(productCode, destination string) {
	draft := d[productCode]
	draft.Destination = strings.TrimSpace(destination)
	d[productCode] = draft
}

// Destination returns the pending destination for a line.
func (d Drafts) Destination(productCode string) string {
	return d[productCode].Destination
}

// ToggleSelected flips a line's selection and returns the new state.
func (d Drafts) ToggleSelected(productCode string) bool {
	draft := d[productCode]
	draft.Selected = !draft.Selected
	d[productCode] = draft
	return draft.Selected
}

// AssignSelected sets destination on every selected line among lines and
// returns how many lines changed.
func (d Drafts) AssignSelected(lines []ProductLine, destination string) int {
	n := 0
	for _, l := range lines {
		if d[l.ProductCode].Selected {
			d.SetDestination(l.ProductCode, destination)
			n++
		}
	}
	return n
}

// Prune drops drafts for lines that no longer exist.
func (d Drafts) Prune(lines []ProductLine) {
	keep := make(map[string]bool, len(lines))
	for _, l := range lines {
		keep[l.ProductCode] = true
	}
	for code := range d {
		if !keep[code] {
			delete(d, code)
		}
	}
}

// BatchLine is a line with its destination and verdict at build time.
type BatchLine struct {
	Line        ProductLine
	Destination string
	Outcome     models.ValidationOutcome
}

// Batch is a set of validated lines ready to apply. Requests capture every
// unit's location before the apply, which is the history undo replays.
type Batch struct {
	Lines    []BatchLine
	Rejected []BatchLine
	Requests []models.MoveRequest

	confirmed bool
}

// BuildBatch validates every line that has a draft destination. Lines with
// errors are rejected; the rest become per-unit move requests. Partial picks
// are bounded by current stock first.
func BuildBatch(d *Directory, lines []ProductLine, drafts Drafts) *Batch {
	b := &Batch{}
	for _, line := range CapPicks(d, lines) {
		dest := drafts.Destination(line.ProductCode)
		if dest == "" {
			continue
		}

		bl := BatchLine{Line: line, Destination: dest, Outcome: ValidateLine(d, line, dest)}
		if bl.Outcome.Blocks() {
			b.Rejected = append(b.Rejected, bl)
			continue
		}
		b.Lines = append(b.Lines, bl)

		to := d.ParseLocator(dest)
		for _, u := range line.Units {
			b.Requests = append(b.Requests, requestFor(d, u, to))
		}
	}
	return b
}

// requestFor builds the move request for a line unit. A partial pick is not
// in the directory and moves its quantity out of the source unit.
func requestFor(d *Directory, u *models.InventoryUnit, to models.Locator) models.MoveRequest {
	if d.unit(u.ID) == nil && u.SourceUnitID != "" {
		return models.MoveRequest{
			UnitID:   u.SourceUnitID,
			From:     u.Locator(),
			To:       to,
			Quantity: u.Quantity,
		}
	}
	return models.MoveRequest{UnitID: u.ID, From: u.Locator(), To: to}
}

// IsEmpty reports whether no line can be applied.
func (b *Batch) IsEmpty() bool {
	return len(b.Requests) == 0
}

// NeedsConfirmation reports whether any included line carries a warning.
func (b *Batch) NeedsConfirmation() bool {
	for _, l := range b.Lines {
		if l.Outcome.NeedsConfirmation() {
			return true
		}
	}
	return false
}

// WarningDestinations lists the distinct destinations with warnings, in
// line order, as the operator should see them in the second prompt.
func (b *Batch) WarningDestinations() []string {
	var out []string
	seen := make(map[string]bool)
	for _, l := range b.Lines {
		if !l.Outcome.NeedsConfirmation() {
			continue
		}
		dest := l.Outcome.Target.String()
		if seen[dest] {
			continue
		}
		seen[dest] = true
		out = append(out, dest)
	}
	return out
}

// Confirm records the operator's second confirmation.
func (b *Batch) Confirm() {
	b.confirmed = true
}

// Confirmed reports whether the batch may be applied.
func (b *Batch) Confirmed() bool {
	return b.confirmed || !b.NeedsConfirmation()
}

// UnitCount sums the quantity of all included lines.
func (b *Batch) UnitCount() int {
	n := 0
	for _, l := range b.Lines {
		n += l.Line.TotalQuantity
	}
	return n
}
