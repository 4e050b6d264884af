// Package refdata loads the relay's immutable geometry and reference
// tables at boot: area centroids, station centroids, observation-station
// pixel coordinates, the sub-region→position map, and the P/S-wave
// travel-time table. Every loader runs once; the resulting Tables value is
// read-only thereafter and shared by every component, per spec §3
// "Lifecycle & ownership".
package refdata

import (
	"github.com/shindosokuho/relay/internal/domain"
)

// LatLng is a plain coordinate pair.
type LatLng struct {
	Latitude  float64
	Longitude float64
}

// StationLatLng adds the region grouping carried by the intensity-station
// table.
type StationLatLng struct {
	LatLng
	RegionCode string
	RegionName string
}

// ObsStationPoint is the pixel coordinate of an observation station within
// the EEW intensity image, spec §4.6.
type ObsStationPoint struct {
	X int
	Y int
}

// ObservationStation is one row of the observation-station table used by
// the image decoder, grounded on original_source's ObsStationsCentroidModel.
// Stations with no Point or with IsSuspended set are filtered out at load
// time, spec §10 item 6.
type ObservationStation struct {
	Type          string
	Name          string
	Region        string
	SubRegionCode string
	RegionCode    string
	Location      LatLng
	Point         ObsStationPoint
}

// AreaPosition maps a sub-region code to the named area and its polygon
// position list used for tsunami-area rendering support data.
type AreaPosition struct {
	Name     string
	Position []string
}

// Tables bundles every reference table the relay loads once at boot.
type Tables struct {
	AreaCentroid       map[string]LatLng
	StationCentroid    map[string]StationLatLng
	ObservationStations []ObservationStation
	AreaPositions      map[string]AreaPosition
	TravelTime         []domain.TravelTimeRow
}

// AreaPositionFor looks up the area position entry for a sub-region code,
// spec §4.6 "area intensities are built by looking up each sub-region code
// in the area-position table".
func (t Tables) AreaPositionFor(subRegionCode string) (AreaPosition, bool) {
	p, ok := t.AreaPositions[subRegionCode]
	return p, ok
}
