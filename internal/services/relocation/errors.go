package relocation

import "errors"

var (
	// ErrNotLoaded is returned before Service.Load has succeeded.
	ErrNotLoaded = errors.New("inventory not loaded")

	// ErrApplyInProgress is returned when an apply is issued while another is running.
	ErrApplyInProgress = errors.New("a relocation batch is already being applied")

	// ErrNothingToApply is returned for a batch without any valid line.
	ErrNothingToApply = errors.New("no valid lines to relocate")

	// ErrConfirmationRequired is returned for a batch with warnings that was not confirmed.
	ErrConfirmationRequired = errors.New("batch has warnings and must be confirmed")
)

// Per-payload skip reasons reported in ApplyResult.Skipped.
var (
	ErrUnitNotFound         = errors.New("unit not found")
	ErrDuplicateUnit        = errors.New("unit already moved in this batch")
	ErrTargetUnresolved     = errors.New("destination cannot be resolved")
	ErrPalletNotFound       = errors.New("pallet not found or has no location")
	ErrLocationNotFound     = errors.New("location not found")
	ErrInsufficientCapacity = errors.New("insufficient capacity")
)

// Quantity errors shared by picks and the applier.
var (
	ErrInvalidQuantity      = errors.New("quantity must be a positive whole number")
	ErrQuantityExceedsStock = errors.New("quantity exceeds stock")
)
