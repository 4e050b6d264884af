package telegram

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/shindosokuho/relay/internal/domain"
)

// eewEnvelope is the subset of the VXSE43/44 telegram body this parser
// needs. Field names mirror the JMA schema's own element names.
type eewEnvelope struct {
	XMLName xml.Name `xml:"Report"`
	Head    Head     `xml:"Head"`
	Control Control  `xml:"Control"`
	Body    struct {
		Earthquake struct {
			OriginTime  string `xml:"OriginTime"`
			ArrivalTime string `xml:"ArrivalTime"`
			Condition   string `xml:"Condition"`
			Hypocenter  struct {
				Area struct {
					Name       string `xml:"Name"`
					Code       string `xml:"Code"`
					Coordinate string `xml:"Coordinate"`
				} `xml:"Area"`
			} `xml:"Hypocenter"`
			Magnitude string `xml:"Magnitude"`
		} `xml:"Earthquake"`
		Intensity struct {
			Forecast struct {
				CodeDefine struct {
					Type string `xml:"Type"`
				} `xml:"CodeDefine"`
				ForecastInt struct {
					From string `xml:"From"`
					To   string `xml:"To"`
				} `xml:"ForecastInt"`
				ForecastLgInt struct {
					From string `xml:"From"`
					To   string `xml:"To"`
				} `xml:"ForecastLgInt"`
				Areas []struct {
					Name          string `xml:"Name"`
					Code          string `xml:"Code"`
					ForecastKindCode string `xml:"Kind>Code"`
					ForecastInt   struct {
						From string `xml:"From"`
						To   string `xml:"To"`
					} `xml:"ForecastInt"`
					ForecastLgInt struct {
						From string `xml:"From"`
						To   string `xml:"To"`
					} `xml:"ForecastLgInt"`
					Arrival struct {
						Condition string `xml:"Condition"`
						Time      string `xml:"ArrivalTime"`
					} `xml:"Arrival"`
				} `xml:"Area"`
			} `xml:"Forecast"`
		} `xml:"Intensity"`
		Comments struct {
			WarningComment struct {
				Code string `xml:"Code"`
			} `xml:"WarningComment"`
		} `xml:"Comments"`
		NextAdvisory string `xml:"NextAdvisory"`
	} `xml:"Body"`
}

// ParseEEW parses a VXSE43 (warning) or VXSE44 (forecast) telegram body
// into an EEWEvent. isWarningType is true for VXSE43.
func ParseEEW(raw []byte, isWarningType bool) (domain.EEWEvent, error) {
	var env eewEnvelope
	if err := decodeEnvelope(raw, &env); err != nil {
		return domain.EEWEvent{}, err
	}

	lifecycle := controlStatusToEEWLifecycle(ControlStatus(env.Control.Status))

	if !env.Head.IsIssued() {
		ev := domain.BlankCancelled(env.Head.EventID)
		ev.Lifecycle = domain.EEWCancelled
		return ev, nil
	}

	serial := parseSerial(env.Head.Serial)

	originRaw := env.Body.Earthquake.OriginTime
	if originRaw == "" {
		originRaw = env.Body.Earthquake.ArrivalTime
	}

	lat, lon, depth, hypOK := parseHypocenterCoordinate(
		env.Body.Earthquake.Hypocenter.Area.Coordinate,
		env.Body.Earthquake.Hypocenter.Area.Coordinate,
	)
	if !hypOK {
		lat, lon, depth = 0, 0, domain.UnknownDepth()
	}

	hypocenter := domain.Hypocenter{
		Name:       env.Body.Earthquake.Hypocenter.Area.Name,
		RegionCode: env.Body.Earthquake.Hypocenter.Area.Code,
		Latitude:   lat,
		Longitude:  lon,
		Depth:      depth,
		Magnitude:  parseMagnitude(env.Body.Earthquake.Magnitude),
	}

	isWarn := isWarningType || env.Body.Comments.WarningComment.Code == "0201"

	areas := make([]domain.EEWAreaForecast, 0, len(env.Body.Intensity.Forecast.Areas))
	for _, a := range env.Body.Intensity.Forecast.Areas {
		forecast := domain.EEWAreaForecast{
			AreaCode:  a.Code,
			AreaName:  a.Name,
			Intensity: intensityIntervalFromCodes(a.ForecastInt.From, a.ForecastInt.To),
			IsWarning: isWarn,
		}
		if a.ForecastLgInt.From != "" {
			forecast.HasLongPeriod = true
			forecast.LongPeriod = longPeriodIntervalFromCodes(a.ForecastLgInt.From, a.ForecastLgInt.To)
		}

		isPlumArea := len(a.ForecastKindCode) >= 2 && a.ForecastKindCode[1:2] == "9"
		if isPlumArea {
			forecast.Arrival = domain.ArrivalPredicate{Flag: true, Condition: "PLUM", Time: "Unknown"}
		} else {
			condition := a.Arrival.Condition
			if condition == "" {
				condition = "未到達と推測"
			}
			arrivalTime := a.Arrival.Time
			if arrivalTime == "" {
				arrivalTime = "00:00:00"
			}
			forecast.Arrival = domain.ArrivalPredicate{Flag: a.Arrival.Condition != "", Condition: condition, Time: arrivalTime}
		}

		areas = append(areas, forecast)
	}

	maxIntensity := intensityIntervalFromCodes(env.Body.Intensity.Forecast.ForecastInt.From, env.Body.Intensity.Forecast.ForecastInt.To)
	longPeriod := longPeriodIntervalFromCodes(env.Body.Intensity.Forecast.ForecastLgInt.From, env.Body.Intensity.Forecast.ForecastLgInt.To)

	return domain.EEWEvent{
		ParseOK:      true,
		Lifecycle:    lifecycle,
		EventID:      env.Head.EventID,
		Serial:       serial,
		Announced:    parseEpoch(env.Head.ReportDateTime),
		Origin:       parseEpoch(originRaw),
		Hypocenter:   hypocenter,
		MaxIntensity: maxIntensity,
		LongPeriod:   longPeriod,
		IsFinal:      env.Body.NextAdvisory == "",
		IsWarn:       isWarn,
		IsPlum:       env.Body.Earthquake.Condition != "",
		Areas:        areas,
	}, nil
}

func controlStatusToEEWLifecycle(status string) domain.EEWLifecycle {
	switch status {
	case "test":
		return domain.EEWTest
	case "training":
		return domain.EEWTraining
	default:
		return domain.EEWNormal
	}
}

func parseSerial(raw string) int {
	n := 0
	for _, c := range raw {
		if c < '0' || c > '9' {
			return n
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// parseEpoch parses a JMA ISO-8601-ish datetime (e.g.
// "2024-01-01T00:00:00+09:00") into an EpochTime, preserving the original
// string for display.
func parseEpoch(raw string) domain.EpochTime {
	if raw == "" {
		return domain.EpochTime{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return domain.EpochTime{Formatted: raw}
	}
	return domain.EpochTime{Time: t, Formatted: raw}
}

// intensityFromCode maps the JMA forecast-intensity code digits to the
// Intensity scale. The open upper bound of an interval ("over" or "99") is
// handled by intensityIntervalFromCodes, not here.
func intensityFromCode(code string) (domain.Intensity, bool) {
	switch strings.TrimSpace(code) {
	case "00":
		return domain.IntensityNone, true
	case "01":
		return domain.Intensity1, true
	case "02":
		return domain.Intensity2, true
	case "03":
		return domain.Intensity3, true
	case "04":
		return domain.Intensity4, true
	case "45":
		return domain.Intensity5Lower, true
	case "46":
		return domain.Intensity5Upper, true
	case "50":
		return domain.Intensity5Upper, true
	case "55":
		return domain.Intensity6Lower, true
	case "56":
		return domain.Intensity6Upper, true
	case "60":
		return domain.Intensity6Upper, true
	case "66":
		return domain.Intensity7, true
	case "70":
		return domain.Intensity7, true
	default:
		return domain.IntensityNone, false
	}
}

func intensityIntervalFromCodes(from, to string) domain.IntensityInterval {
	lowest, ok := intensityFromCode(from)
	if !ok {
		lowest = domain.IntensityNone
	}
	if to == "" || to == from {
		return domain.IntensityInterval{Lowest: lowest}
	}
	if strings.Contains(to, "over") || to == "99" {
		return domain.IntensityInterval{Lowest: lowest, AboveOpen: true}
	}
	highest, ok := intensityFromCode(to)
	if !ok {
		return domain.IntensityInterval{Lowest: lowest}
	}
	return domain.IntensityInterval{Lowest: lowest, Highest: highest, HasUpper: true}
}

func longPeriodFromCode(code string) (domain.LongPeriodIntensity, bool) {
	switch strings.TrimSpace(code) {
	case "00":
		return domain.LongPeriodNone, true
	case "05":
		return domain.LongPeriodBelow1, true
	case "10":
		return domain.LongPeriod1, true
	case "20":
		return domain.LongPeriod2, true
	case "30":
		return domain.LongPeriod3, true
	case "40":
		return domain.LongPeriod4, true
	default:
		return domain.LongPeriodNone, false
	}
}

func longPeriodIntervalFromCodes(from, to string) domain.LongPeriodInterval {
	lowest, ok := longPeriodFromCode(from)
	if !ok {
		lowest = domain.LongPeriodNone
	}
	if to == "" || to == from {
		return domain.LongPeriodInterval{Lowest: lowest}
	}
	highest, ok := longPeriodFromCode(to)
	if !ok {
		return domain.LongPeriodInterval{Lowest: lowest}
	}
	return domain.LongPeriodInterval{Lowest: lowest, Highest: highest, HasUpper: true}
}
