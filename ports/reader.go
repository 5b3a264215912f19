package ports

import (
	"r0fit/domain/surveillance"
)

// ObservationReader ingests per-observation surveillance records from a file
// and returns a validated table.
type ObservationReader interface {
	ReadObservations(path string) (*surveillance.Table, error)
}

// ClimateReader ingests per-department R0/climate records for the ANOVA
// model.
type ClimateReader interface {
	ReadClimate(path string) ([]surveillance.ClimateRecord, error)
}
