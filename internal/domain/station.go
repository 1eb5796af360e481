package domain

import "context"

// Charging power thresholds in kW.
const (
	FastChargingKW  = 50.0
	UltraChargingKW = 150.0
)

// ChargingCategory classifies a station by its power rating.
type ChargingCategory string

const (
	ChargingNormal ChargingCategory = "NORMAL"
	ChargingFast   ChargingCategory = "FAST"
	ChargingUltra  ChargingCategory = "ULTRA"
)

// Station is a public charging station as reported by the station registry.
type Station struct {
	ID        string  `json:"id"`
	AreaID    AreaID  `json:"area_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	PowerKW   float64 `json:"power_kw"`
}

// IsFastCharger reports whether the station delivers at least 50 kW.
func (s Station) IsFastCharger() bool {
	return s.PowerKW >= FastChargingKW
}

// Category returns NORMAL, FAST or ULTRA.
func (s Station) Category() ChargingCategory {
	switch {
	case s.PowerKW >= UltraChargingKW:
		return ChargingUltra
	case s.PowerKW >= FastChargingKW:
		return ChargingFast
	default:
		return ChargingNormal
	}
}

// PopulationLookup resolves the number of registered residents in an area.
type PopulationLookup interface {
	ResidentsCount(ctx context.Context, area AreaID) (int, error)
}

// StationLookup lists the charging stations located in an area.
type StationLookup interface {
	FindStationsByArea(ctx context.Context, area AreaID) ([]Station, error)
}
