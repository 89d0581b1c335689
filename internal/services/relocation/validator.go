package relocation

import (
	"fmt"

	"github.com/tuanano/wms-web/internal/models"
)

// MoveSubject is what a destination is validated against.
type MoveSubject struct {
	Quantity    int
	ProductCode string
}

// ValidateMove checks whether subject can go to destination. The checks run
// in order and the first failing one decides: pallet resolution, location
// lookup, capacity, mixing policy, occupancy.
func ValidateMove(d *Directory, subject MoveSubject, destination string) models.ValidationOutcome {
	target := d.ParseLocator(destination)
	if target.IsZero() {
		return models.ValidationOutcome{
			Severity:     models.SeverityError,
			Reason:       models.ReasonNoDestination,
			Message:      "Enter a destination location or pallet",
			ShortMessage: "No destination",
		}
	}

	locationID := target.LocationID
	if target.IsPallet() {
		resolved, ok := d.ResolvePalletLocation(target.PalletID)
		if !ok {
			return models.ValidationOutcome{
				Severity:     models.SeverityError,
				Reason:       models.ReasonPalletNotFound,
				Message:      fmt.Sprintf("Pallet %s not found or has no location", target.PalletID),
				ShortMessage: "Pallet not found",
				Target:       target,
			}
		}
		locationID = resolved
	}

	loc := d.location(locationID)
	if loc == nil {
		return models.ValidationOutcome{
			Severity:     models.SeverityError,
			Reason:       models.ReasonLocationNotFound,
			Message:      fmt.Sprintf("Location %s not found", locationID),
			ShortMessage: "Location not found",
			Target:       target,
		}
	}
	target.LocationID = loc.ID

	if free := loc.Capacity - loc.CurrentLoad; free < subject.Quantity {
		return insufficientCapacity(loc, subject.Quantity, target)
	}

	if !loc.AllowsMixing && d.holdsOtherProduct(loc.ID, subject.ProductCode) {
		msg := fmt.Sprintf("%s does not allow mixing and holds other products", loc.ID)
		if target.IsPallet() {
			msg += fmt.Sprintf("; units will be consolidated onto pallet %s", target.PalletID)
		}
		return models.ValidationOutcome{
			IsValid:      true,
			Severity:     models.SeverityWarning,
			Reason:       models.ReasonMixingForbidden,
			Message:      msg,
			ShortMessage: "Mixing forbidden",
			Target:       target,
		}
	}

	if loc.CurrentLoad > 0 {
		msg := fmt.Sprintf("%s already holds %d/%d units; confirm to proceed", loc.ID, loc.CurrentLoad, loc.Capacity)
		if target.IsPallet() {
			msg = fmt.Sprintf("Pallet %s is at occupied location %s (%d/%d); confirm to proceed",
				target.PalletID, loc.ID, loc.CurrentLoad, loc.Capacity)
		}
		return models.ValidationOutcome{
			IsValid:      true,
			Severity:     models.SeverityWarning,
			Reason:       models.ReasonOccupied,
			Message:      msg,
			ShortMessage: "Occupied",
			Target:       target,
		}
	}

	if target.IsPallet() {
		return models.ValidationOutcome{
			IsValid:      true,
			Severity:     models.SeverityInfo,
			Reason:       models.ReasonPalletConsolidation,
			Message:      fmt.Sprintf("Valid; will consolidate onto pallet %s at %s", target.PalletID, loc.ID),
			ShortMessage: "To pallet",
			Target:       target,
		}
	}

	return models.ValidationOutcome{
		IsValid:      true,
		Severity:     models.SeverityInfo,
		Reason:       models.ReasonOK,
		Message:      fmt.Sprintf("Valid; %d free at %s", loc.Capacity-loc.CurrentLoad, loc.ID),
		ShortMessage: "Valid",
		Target:       target,
	}
}

// ValidateLine validates every unit of the line against one destination,
// worst result wins and the first error stops the scan. A line whose units
// pass one by one still fails when its total does not fit.
func ValidateLine(d *Directory, line ProductLine, destination string) models.ValidationOutcome {
	if len(line.Units) == 0 {
		return ValidateMove(d, line.Subject(), destination)
	}

	outcomes := make([]models.ValidationOutcome, 0, len(line.Units))
	for _, u := range line.Units {
		o := ValidateMove(d, MoveSubject{Quantity: u.Quantity, ProductCode: line.ProductCode}, destination)
		if o.Blocks() {
			return o
		}
		outcomes = append(outcomes, o)
	}
	combined := CombineOutcomes(outcomes)

	if loc := d.location(combined.Target.LocationID); loc != nil {
		if loc.Capacity-loc.CurrentLoad < line.TotalQuantity {
			return insufficientCapacity(loc, line.TotalQuantity, combined.Target)
		}
	}
	return combined
}

// CombineOutcomes folds outcomes for one destination: the first ERROR is
// returned as is, otherwise the first outcome of the highest severity.
func CombineOutcomes(outcomes []models.ValidationOutcome) models.ValidationOutcome {
	var worst models.ValidationOutcome
	for i, o := range outcomes {
		if o.Severity == models.SeverityError {
			return o
		}
		if i == 0 || o.Severity > worst.Severity {
			worst = o
		}
	}
	return worst
}

func insufficientCapacity(loc *models.Location, required int, target models.Locator) models.ValidationOutcome {
	available := loc.Capacity - loc.CurrentLoad
	if available < 0 {
		available = 0
	}
	return models.ValidationOutcome{
		Severity:     models.SeverityError,
		Reason:       models.ReasonInsufficientCapacity,
		Message:      fmt.Sprintf("Insufficient capacity at %s: %d required, %d available", loc.ID, required, available),
		ShortMessage: "Over capacity",
		Target:       target,
	}
}
