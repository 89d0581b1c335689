package models

// Severity classifies a validation outcome. Higher values are worse.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Reason is the machine-readable cause behind an outcome.
type Reason string

const (
	ReasonOK                   Reason = "ok"
	ReasonPalletConsolidation  Reason = "pallet_consolidation"
	ReasonOccupied             Reason = "occupied"
	ReasonMixingForbidden      Reason = "mixing_forbidden"
	ReasonInsufficientCapacity Reason = "insufficient_capacity"
	ReasonLocationNotFound     Reason = "location_not_found"
	ReasonPalletNotFound       Reason = "pallet_not_found"
	ReasonNoDestination        Reason = "no_destination"
	ReasonUnavailable          Reason = "unavailable"
)

// ValidationOutcome is the advisory verdict on a proposed destination.
type ValidationOutcome struct {
	IsValid      bool
	Severity     Severity
	Reason       Reason
	Message      string
	ShortMessage string

	// Target is the destination with any pallet resolved to its location.
	Target Locator
}

// NeedsConfirmation reports whether the move may proceed only after the
// operator confirms it a second time.
func (o ValidationOutcome) NeedsConfirmation() bool {
	return o.Severity == SeverityWarning
}

// Blocks reports whether the outcome forbids the move.
func (o ValidationOutcome) Blocks() bool {
	return o.Severity == SeverityError
}
