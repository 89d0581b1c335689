package relocation

import "github.com/tuanano/wms-web/internal/models"

// ProductLine groups units of one product for bulk editing. It is derived
// from its units and never edited directly.
type ProductLine struct {
	ProductCode     string
	ProductName     string
	TotalQuantity   int
	SourceLocations []string
	Units           []*models.InventoryUnit
}

// Subject returns the line as a validation subject.
func (l ProductLine) Subject() MoveSubject {
	return MoveSubject{Quantity: l.TotalQuantity, ProductCode: l.ProductCode}
}

// UnitIDs returns the ids of the line's units in order.
func (l ProductLine) UnitIDs() []string {
	ids := make([]string, len(l.Units))
	for i, u := range l.Units {
		ids[i] = u.ID
	}
	return ids
}

// Aggregate groups units into product lines. Lines appear in order of first
// discovery and units keep their input order within a line.
func Aggregate(units []*models.InventoryUnit) []ProductLine {
	return AddUnits(nil, units)
}

// AddUnits merges newUnits into lines. A unit already present in any line
// (by id) is ignored. Picks of the same source unit fold together: a whole
// unit absorbs its partial picks, and two partial picks become one whose
// quantity is their sum. lines is not modified.
func AddUnits(lines []ProductLine, newUnits []*models.InventoryUnit) []ProductLine {
	out := copyLines(lines)

	type slot struct{ line, unit int }
	present := make(map[string]slot)
	index := make(map[string]int, len(out))
	for i, l := range out {
		index[l.ProductCode] = i
		for j, u := range l.Units {
			present[pickSource(u)] = slot{i, j}
		}
	}

	changed := make(map[int]bool)
	for _, u := range newUnits {
		src := pickSource(u)
		if at, ok := present[src]; ok {
			held := out[at.line].Units[at.unit]
			switch {
			case held.ID == src:
				continue
			case u.ID == src:
				out[at.line].Units[at.unit] = u
			default:
				merged := held.Clone()
				merged.Quantity += u.Quantity
				merged.ID = PickID(src, merged.Quantity)
				out[at.line].Units[at.unit] = merged
			}
			changed[at.line] = true
			continue
		}

		i, ok := index[u.ProductCode]
		if !ok {
			out = append(out, ProductLine{ProductCode: u.ProductCode, ProductName: u.ProductName})
			i = len(out) - 1
			index[u.ProductCode] = i
		}
		out[i].Units = append(out[i].Units, u)
		present[src] = slot{i, len(out[i].Units) - 1}
		changed[i] = true
	}

	for i := range changed {
		out[i] = recompute(out[i])
	}
	return out
}

// pickSource returns the stock unit a line unit draws from.
func pickSource(u *models.InventoryUnit) string {
	if IsPick(u) {
		return u.SourceUnitID
	}
	return u.ID
}

// RemoveUnit drops a unit from the line for productCode. The line is
// recomputed, or removed when it becomes empty. lines is not modified.
func RemoveUnit(lines []ProductLine, productCode, unitID string) []ProductLine {
	out := make([]ProductLine, 0, len(lines))
	for _, l := range lines {
		if l.ProductCode != productCode {
			out = append(out, copyLine(l))
			continue
		}

		kept := make([]*models.InventoryUnit, 0, len(l.Units))
		for _, u := range l.Units {
			if u.ID != unitID {
				kept = append(kept, u)
			}
		}
		if len(kept) == 0 {
			continue
		}
		l.Units = kept
		out = append(out, recompute(l))
	}
	return out
}

// RemoveLine drops a whole product line.
func RemoveLine(lines []ProductLine, productCode string) []ProductLine {
	out := make([]ProductLine, 0, len(lines))
	for _, l := range lines {
		if l.ProductCode != productCode {
			out = append(out, copyLine(l))
		}
	}
	return out
}

// FindLine returns the line for productCode.
func FindLine(lines []ProductLine, productCode string) (ProductLine, bool) {
	for _, l := range lines {
		if l.ProductCode == productCode {
			return l, true
		}
	}
	return ProductLine{}, false
}

// TotalUnits sums the quantities across lines.
func TotalUnits(lines []ProductLine) int {
	total := 0
	for _, l := range lines {
		total += l.TotalQuantity
	}
	return total
}

func recompute(l ProductLine) ProductLine {
	l.TotalQuantity = 0
	l.SourceLocations = nil
	seen := make(map[string]bool)
	for _, u := range l.Units {
		l.TotalQuantity += u.Quantity
		if !seen[u.CurrentLocationID] {
			seen[u.CurrentLocationID] = true
			l.SourceLocations = append(l.SourceLocations, u.CurrentLocationID)
		}
	}
	if l.ProductName == "" && len(l.Units) > 0 {
		l.ProductName = l.Units[0].ProductName
	}
	return l
}

func copyLine(l ProductLine) ProductLine {
	l.Units = append([]*models.InventoryUnit(nil), l.Units...)
	l.SourceLocations = append([]string(nil), l.SourceLocations...)
	return l
}

func copyLines(lines []ProductLine) []ProductLine {
	out := make([]ProductLine, len(lines))
	for i, l := range lines {
		out[i] = copyLine(l)
	}
	return out
}
