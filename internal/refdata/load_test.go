package refdata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadFiltersSuspendedAndPointlessStations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "centroid/jma_area_centroid.csv", "1,東京,35.6,139.7\n")
	writeFile(t, dir, "centroid/intensity_stations.csv", "東京,130,関東,35.6,139.7\n")

	stations := []map[string]any{
		{
			"Type": "K", "Name": "A", "Region": "Kanto", "SubRegionCode": "130000",
			"RegionCode": "130", "IsSuspended": false,
			"Location": map[string]string{"Latitude": "35.6", "Longitude": "139.7"},
			"Point":    map[string]string{"X": "100", "Y": "200"},
		},
		{
			"Type": "K", "Name": "B-suspended", "Region": "Kanto", "SubRegionCode": "130000",
			"RegionCode": "130", "IsSuspended": true,
			"Location": map[string]string{"Latitude": "35.6", "Longitude": "139.7"},
			"Point":    map[string]string{"X": "101", "Y": "201"},
		},
		{
			"Type": "K", "Name": "C-no-point", "Region": "Kanto", "SubRegionCode": "130000",
			"RegionCode": "130", "IsSuspended": false,
			"Location": map[string]string{"Latitude": "35.6", "Longitude": "139.7"},
			"Point":    nil,
		},
	}
	raw, err := json.Marshal(stations)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	writeFile(t, dir, "centroid/observation_points.json", string(raw))
	writeFile(t, dir, "centroid/area_position.json", `{"130000":{"name":"東京","position":["1","2"]}}`)
	writeFile(t, dir, "pswave/tjma2001", "  10   5.0   1.5   2.7   0  \nnot a valid line\n10 6.0 1.8 3.0 0 extra\n20 7.0 2.0 3.5 0\n")

	tables, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(tables.ObservationStations) != 1 {
		t.Fatalf("expected exactly 1 station to survive the suspended/no-point filter, got %d", len(tables.ObservationStations))
	}
	if tables.ObservationStations[0].Name != "A" {
		t.Fatalf("expected surviving station to be A, got %q", tables.ObservationStations[0].Name)
	}

	if len(tables.TravelTime) != 2 {
		t.Fatalf("expected 2 valid travel-time rows (malformed lines skipped), got %d", len(tables.TravelTime))
	}

	pos, ok := tables.AreaPositionFor("130000")
	if !ok || pos.Name != "東京" {
		t.Fatalf("expected area position lookup to resolve, got %+v, ok=%v", pos, ok)
	}

	if _, ok := tables.AreaCentroid["東京"]; !ok {
		t.Fatalf("expected area centroid to be loaded")
	}
	if _, ok := tables.StationCentroid["東京"]; !ok {
		t.Fatalf("expected station centroid to be loaded")
	}
}

func TestLoadTravelTimeRejectsWhenNoValidRows(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "centroid/jma_area_centroid.csv", "1,東京,35.6,139.7\n")
	writeFile(t, dir, "centroid/intensity_stations.csv", "東京,130,関東,35.6,139.7\n")
	writeFile(t, dir, "centroid/observation_points.json", `[]`)
	writeFile(t, dir, "centroid/area_position.json", `{}`)
	writeFile(t, dir, "pswave/tjma2001", "garbage\nmore garbage\n")

	if _, err := Load(dir); err == nil {
		t.Fatalf("expected an error when the travel-time table has no valid rows")
	}
}
