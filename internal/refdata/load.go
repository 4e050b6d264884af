package refdata

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shindosokuho/relay/internal/domain"
	"github.com/shindosokuho/relay/internal/relayerr"
)

// obsStationJSON mirrors the upstream observation_points.json shape
// (original_source model.centroid.ObsStationsCentroidModel), PascalCase
// keys carried verbatim from the vendor JSON.
type obsStationJSON struct {
	Type          string `json:"Type"`
	Name          string `json:"Name"`
	Region        string `json:"Region"`
	SubRegionCode string `json:"SubRegionCode"`
	RegionCode    string `json:"RegionCode"`
	IsSuspended   bool   `json:"IsSuspended"`
	Location      struct {
		Latitude  string `json:"Latitude"`
		Longitude string `json:"Longitude"`
	} `json:"Location"`
	Point *struct {
		X string `json:"X"`
		Y string `json:"Y"`
	} `json:"Point"`
}

type areaPositionJSON struct {
	Name     string   `json:"name"`
	Position []string `json:"position"`
}

// Load reads every reference table from dir, which mirrors the upstream
// "assets/centroid" and "assets/pswave" layout.
func Load(dir string) (Tables, error) {
	areaCentroid, err := loadAreaCentroid(filepath.Join(dir, "centroid", "jma_area_centroid.csv"))
	if err != nil {
		return Tables{}, err
	}

	stationCentroid, err := loadStationCentroid(filepath.Join(dir, "centroid", "intensity_stations.csv"))
	if err != nil {
		return Tables{}, err
	}

	obsStations, err := loadObservationStations(filepath.Join(dir, "centroid", "observation_points.json"))
	if err != nil {
		return Tables{}, err
	}

	areaPositions, err := loadAreaPositions(filepath.Join(dir, "centroid", "area_position.json"))
	if err != nil {
		return Tables{}, err
	}

	travelTime, err := loadTravelTime(filepath.Join(dir, "pswave", "tjma2001"))
	if err != nil {
		return Tables{}, err
	}

	return Tables{
		AreaCentroid:        areaCentroid,
		StationCentroid:     stationCentroid,
		ObservationStations: obsStations,
		AreaPositions:       areaPositions,
		TravelTime:          travelTime,
	}, nil
}

func loadAreaCentroid(path string) (map[string]LatLng, error) {
	rows, err := readCSV(path, 4)
	if err != nil {
		return nil, err
	}
	out := make(map[string]LatLng, len(rows))
	for _, row := range rows {
		lat, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			continue
		}
		lng, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			continue
		}
		out[row[1]] = LatLng{Latitude: lat, Longitude: lng}
	}
	return out, nil
}

func loadStationCentroid(path string) (map[string]StationLatLng, error) {
	rows, err := readCSV(path, 5)
	if err != nil {
		return nil, err
	}
	out := make(map[string]StationLatLng, len(rows))
	for _, row := range rows {
		lat, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			continue
		}
		lng, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			continue
		}
		out[row[0]] = StationLatLng{
			LatLng:     LatLng{Latitude: lat, Longitude: lng},
			RegionCode: row[1],
			RegionName: row[2],
		}
	}
	return out, nil
}

func readCSV(path string, wantFields int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, relayerr.New("refdata.load_csv", relayerr.KindConfig, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, relayerr.New("refdata.load_csv", relayerr.KindConfig, err)
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		if len(rec) != wantFields {
			continue
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// loadObservationStations filters out any station with no Point or with
// IsSuspended set, spec §10 item 6 / original_source
// _init_earthquake_station_centroid.
func loadObservationStations(path string) ([]ObservationStation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, relayerr.New("refdata.load_observation_stations", relayerr.KindConfig, err)
	}

	var raw []obsStationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, relayerr.New("refdata.load_observation_stations", relayerr.KindConfig, err)
	}

	out := make([]ObservationStation, 0, len(raw))
	for _, r := range raw {
		if r.Point == nil || r.IsSuspended {
			continue
		}
		x, err := strconv.Atoi(r.Point.X)
		if err != nil {
			continue
		}
		y, err := strconv.Atoi(r.Point.Y)
		if err != nil {
			continue
		}
		lat, _ := strconv.ParseFloat(r.Location.Latitude, 64)
		lng, _ := strconv.ParseFloat(r.Location.Longitude, 64)

		out = append(out, ObservationStation{
			Type:          r.Type,
			Name:          r.Name,
			Region:        r.Region,
			SubRegionCode: r.SubRegionCode,
			RegionCode:    r.RegionCode,
			Location:      LatLng{Latitude: lat, Longitude: lng},
			Point:         ObsStationPoint{X: x, Y: y},
		})
	}
	return out, nil
}

func loadAreaPositions(path string) (map[string]AreaPosition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, relayerr.New("refdata.load_area_positions", relayerr.KindConfig, err)
	}

	var raw map[string]areaPositionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, relayerr.New("refdata.load_area_positions", relayerr.KindConfig, err)
	}

	out := make(map[string]AreaPosition, len(raw))
	for code, v := range raw {
		out[code] = AreaPosition{Name: v.Name, Position: v.Position}
	}
	return out, nil
}

// loadTravelTime parses the tjma2001-format travel-time table: runs of
// whitespace collapsed, lines split on whitespace, any line not splitting
// into exactly 5 fields skipped. Grounded on
// original_source/internal/pswave.py _init_pswave.
func loadTravelTime(path string) ([]domain.TravelTimeRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, relayerr.New("refdata.load_travel_time", relayerr.KindConfig, err)
	}

	var rows []domain.TravelTimeRow
	for _, line := range splitLines(string(data)) {
		fields := collapseAndSplit(line)
		if len(fields) != 5 {
			continue
		}
		depth, err1 := strconv.Atoi(fields[0])
		dist, err2 := strconv.ParseFloat(fields[1], 64)
		pTime, err3 := strconv.ParseFloat(fields[2], 64)
		sTime, err4 := strconv.ParseFloat(fields[3], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		rows = append(rows, domain.TravelTimeRow{
			DepthKM:    depth,
			DistanceKM: dist,
			PTimeS:     pTime,
			STimeS:     sTime,
		})
	}
	if len(rows) == 0 {
		return nil, relayerr.New("refdata.load_travel_time", relayerr.KindConfig,
			fmt.Errorf("no valid rows parsed from %s", path))
	}
	return rows, nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

// collapseAndSplit collapses runs of whitespace and splits on it,
// tolerating leading/trailing whitespace, matching the Python tokenizer's
// "collapse runs of spaces, split on space" behavior.
func collapseAndSplit(line string) []string {
	var fields []string
	var cur []byte
	flush := func() {
		if len(cur) > 0 {
			fields = append(fields, string(cur))
			cur = cur[:0]
		}
	}
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == ' ' || c == '\t' || c == '\r' {
			flush()
			continue
		}
		cur = append(cur, c)
	}
	flush()
	return fields
}
