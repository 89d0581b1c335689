package relocation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tuanano/wms-web/internal/models"
)

// Suggestion is a ranked destination proposal.
type Suggestion struct {
	LocationID   string
	Zone         string
	FreeCapacity int
	Reason       string
	Outcome      models.ValidationOutcome
}

// Suggest ranks locations that can take subject without an error. Empty
// slots come first, then slots already holding only the same product, then
// the rest; ties go to the slot left least full. Locations in exclude (the
// stock's own source locations) are skipped.
func Suggest(d *Directory, subject MoveSubject, exclude []string, limit int) []Suggestion {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[models.NormalizeID(id)] = true
	}

	type ranked struct {
		s    Suggestion
		rank int
		loc  *models.Location
	}
	var candidates []ranked

	for _, loc := range d.locations {
		if skip[models.NormalizeID(loc.ID)] {
			continue
		}
		o := ValidateMove(d, subject, loc.ID)
		if o.Blocks() {
			continue
		}

		free := loc.FreeCapacity()
		r := ranked{loc: loc, s: Suggestion{LocationID: loc.ID, Zone: loc.Zone, FreeCapacity: free, Outcome: o}}
		switch {
		case loc.IsEmpty():
			r.rank = 0
			r.s.Reason = fmt.Sprintf("Empty slot, %d free", free)
		case d.holdsOnly(loc.ID, subject.ProductCode):
			r.rank = 1
			r.s.Reason = fmt.Sprintf("Same product stored, %d free", free)
		case o.Reason == models.ReasonMixingForbidden:
			r.rank = 3
			r.s.Reason = fmt.Sprintf("Mixing forbidden, %d free", free)
		default:
			r.rank = 2
			r.s.Reason = fmt.Sprintf("Shared slot, %d free", free)
		}
		candidates = append(candidates, r)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		ua := a.loc.UtilizationAfter(subject.Quantity)
		ub := b.loc.UtilizationAfter(subject.Quantity)
		if !ua.Equal(ub) {
			return ua.LessThan(ub)
		}
		return strings.Compare(a.loc.ID, b.loc.ID) < 0
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]Suggestion, len(candidates))
	for i, c := range candidates {
		out[i] = c.s
	}
	return out
}
