package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/tuanano/wms-web/internal/models"
)

var validate = validator.New()

// FieldError describes one struct-tag violation in a snapshot record.
type FieldError struct {
	Record string
	Field  string
	Tag    string
	Param  string
}

func (e *FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: field %s failed %s=%s", e.Record, e.Field, e.Tag, e.Param)
	}
	return fmt.Sprintf("%s: field %s failed %s", e.Record, e.Field, e.Tag)
}

// LoadSnapshotFile reads and validates a TOML inventory snapshot.
func LoadSnapshotFile(path string) (*models.Snapshot, error) {
	var snap models.Snapshot
	md, err := toml.DecodeFile(path, &snap)
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parsing snapshot %s: unknown keys %v", path, undecoded)
	}

	for _, u := range snap.Units {
		u.TrackingType = models.TrackingType(strings.ToUpper(string(u.TrackingType)))
	}

	if err := ValidateSnapshot(&snap); err != nil {
		return nil, fmt.Errorf("validating snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// SaveSnapshotFile writes snap as TOML, creating parent directories.
func SaveSnapshotFile(snap *models.Snapshot, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		return fmt.Errorf("opening snapshot file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// ValidateSnapshot checks every record and the relations between them:
// unique ids, known locations, serial quantities, pallets kept at a single
// location, and location loads matching the units they hold.
func ValidateSnapshot(snap *models.Snapshot) error {
	var errs []error

	locations := make(map[string]*models.Location, len(snap.Locations))
	for i, l := range snap.Locations {
		errs = append(errs, structErrors(fmt.Sprintf("locations[%d]", i), l)...)
		key := models.NormalizeID(l.ID)
		if _, dup := locations[key]; dup {
			errs = append(errs, fmt.Errorf("duplicate location %s", l.ID))
			continue
		}
		locations[key] = l
	}

	seen := make(map[string]bool, len(snap.Units))
	palletHome := make(map[string]string)
	loads := make(map[string]int)

	for i, u := range snap.Units {
		record := fmt.Sprintf("units[%d]", i)
		errs = append(errs, structErrors(record, u)...)

		if seen[u.ID] {
			errs = append(errs, fmt.Errorf("duplicate unit %s", u.ID))
		}
		seen[u.ID] = true

		if u.TrackingType == models.TrackingSerial && u.Quantity != 1 {
			errs = append(errs, fmt.Errorf("unit %s: serial quantity must be 1, got %d", u.ID, u.Quantity))
		}

		loc := models.NormalizeID(u.CurrentLocationID)
		if _, ok := locations[loc]; !ok {
			errs = append(errs, fmt.Errorf("unit %s: unknown location %s", u.ID, u.CurrentLocationID))
			continue
		}
		loads[loc] += u.Quantity

		if u.PalletID == "" {
			continue
		}
		pallet := models.NormalizeID(u.PalletID)
		if home, ok := palletHome[pallet]; ok && home != loc {
			errs = append(errs, fmt.Errorf("pallet %s split across %s and %s", u.PalletID, home, loc))
			continue
		}
		palletHome[pallet] = loc
	}

	for _, l := range snap.Locations {
		key := models.NormalizeID(l.ID)
		if locations[key] != l {
			continue
		}
		if got := loads[key]; got != l.CurrentLoad {
			errs = append(errs, fmt.Errorf("location %s: load %d does not match unit total %d", l.ID, l.CurrentLoad, got))
		}
	}

	return errors.Join(errs...)
}

func structErrors(record string, v any) []error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{fmt.Errorf("%s: %w", record, err)}
	}

	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &FieldError{
			Record: record,
			Field:  fe.Field(),
			Tag:    fe.Tag(),
			Param:  fe.Param(),
		})
	}
	return out
}
