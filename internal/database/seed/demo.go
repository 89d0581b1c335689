// Package seed provides inventory data sets: the demo ICT warehouse and a
// deterministic generator for larger synthetic warehouses.
package seed

import (
	"fmt"

	"github.com/tuanano/wms-web/internal/models"
)

// Demo returns the demo ICT distribution-center inventory. Every call
// returns a fresh copy.
func Demo() *models.Snapshot {
	snap := &models.Snapshot{
		Locations: []*models.Location{
			loc("A1-01", "A", 100, 57, true),
			loc("A1-02", "A", 100, 48, true),
			loc("A1-03", "A", 40, 3, false),
			loc("B2-03", "B", 120, 0, false),
			loc("B2-04", "B", 150, 102, true),
			loc("C1-05", "C", 40, 30, true),
			loc("C1-06", "C", 100, 50, true),
			loc("C1-07", "C", 50, 0, true),
			loc("C1-08", "C", 30, 0, true),
			loc("D2-PICK-01", "PICK", 20, 10, false),
			loc("D2-PICK-02", "PICK", 20, 8, false),
			loc("D2-PICK-03", "PICK", 20, 12, false),
			loc("QC-01", "QC", 100, 3, true),
			loc("RETURN-01", "RETURN", 50, 1, true),
			loc("E1-01", "E", 200, 0, true),
			loc("E1-02", "E", 200, 0, true),
		},
	}

	add := func(units ...*models.InventoryUnit) {
		snap.Units = append(snap.Units, units...)
	}

	// iPhones, five on PAL-001 and two loose
	for i := 1; i <= 7; i++ {
		pallet := "PAL-001"
		if i > 5 {
			pallet = ""
		}
		add(serial(fmt.Sprintf("S%03d", i), "IP15PM", fmt.Sprintf("IMEI-358A%d", 10+i), "A1-01", pallet))
	}
	for i := 1; i <= 8; i++ {
		add(serial(fmt.Sprintf("S%03d", 20+i), "GS24U", fmt.Sprintf("IMEI-356B%02d", i), "A1-02", "PAL-002"))
	}
	for i := 1; i <= 3; i++ {
		add(serial(fmt.Sprintf("S%03d", 40+i), "DELL-XPS15", fmt.Sprintf("SN-DXPS15-%03d", i), "A1-03", "PAL-003"))
	}
	add(
		serial("S051", "MS-SURF", "SN-MSSURF-0A1", "B2-04", ""),
		serial("S052", "MS-SURF", "SN-MSSURF-0A2", "B2-04", ""),

		batch("B001", "AIRPODSPRO", "BATCH-AP2-24Q3", 50, "A1-01"),
		batch("B002", "AIRPODSPRO", "BATCH-AP2-24Q3", 10, "D2-PICK-01"),
		batch("B003", "AIRPODSPRO", "BATCH-AP2-24Q4", 40, "A1-02"),
		batch("B011", "LOGI-MX3", "BATCH-LMX-1123", 30, "C1-05"),
		batch("B012", "LOGI-MX3", "BATCH-LMX-1123", 8, "D2-PICK-02"),
		batch("B021", "SS-EVO-1T", "BATCH-SSEVO-970A", 25, "C1-06"),
		batch("B022", "SS-EVO-1T", "BATCH-SSEVO-970A", 12, "D2-PICK-03"),
		batch("B023", "SS-EVO-1T", "BATCH-SSEVO-970B", 25, "C1-06"),
		batch("B031", "ANKER-USBC", "BATCH-ANK-C2-001", 100, "B2-04"),

		serial("S098", "IP15PM", "IMEI-358QC1", "QC-01", ""),
		batch("B098", "LOGI-MX3", "BATCH-LMX-QC", 2, "QC-01"),
		serial("S099", "GS24U", "IMEI-356RET", "RETURN-01", ""),
	)

	return snap
}

// ProductNames maps the demo product codes to display names.
var ProductNames = map[string]string{
	"IP15PM":     "iPhone 15 Pro Max 256GB",
	"GS24U":      "Galaxy S24 Ultra 512GB",
	"DELL-XPS15": "Dell XPS 15 Laptop",
	"MS-SURF":    "Microsoft Surface Pro 9",
	"AIRPODSPRO": "Apple Airpods Pro 2",
	"LOGI-MX3":   "Logitech MX Master 3S",
	"SS-EVO-1T":  "Samsung 970 EVO 1TB SSD",
	"ANKER-USBC": "Anker USB-C Cable 2m",
}

func loc(id, zone string, capacity, load int, mixing bool) *models.Location {
	return &models.Location{
		ID:           id,
		Zone:         zone,
		Capacity:     capacity,
		CurrentLoad:  load,
		AllowsMixing: mixing,
	}
}

func serial(id, product, imei, location, pallet string) *models.InventoryUnit {
	return &models.InventoryUnit{
		ID:                id,
		TrackingType:      models.TrackingSerial,
		ProductCode:       product,
		ProductName:       ProductNames[product],
		Quantity:          1,
		TrackingValue:     imei,
		CurrentLocationID: location,
		PalletID:          pallet,
	}
}

func batch(id, product, lot string, qty int, location string) *models.InventoryUnit {
	return &models.InventoryUnit{
		ID:                id,
		TrackingType:      models.TrackingBatch,
		ProductCode:       product,
		ProductName:       ProductNames[product],
		Quantity:          qty,
		TrackingValue:     lot,
		CurrentLocationID: location,
	}
}
