package telegram

import (
	"encoding/xml"
	"strings"

	"github.com/shindosokuho/relay/internal/domain"
)

// earthquakeEnvelope is the subset of VXSE51/52/53/61 (earthquake report)
// telegram bodies this parser needs.
type earthquakeEnvelope struct {
	XMLName xml.Name `xml:"Report"`
	Head    Head     `xml:"Head"`
	Control Control  `xml:"Control"`
	Body    struct {
		Earthquake struct {
			OriginTime string `xml:"OriginTime"`
			Hypocenter struct {
				Area struct {
					Name       string `xml:"Name"`
					Code       string `xml:"Code"`
					Coordinate string `xml:"Coordinate"`
				} `xml:"Area"`
			} `xml:"Hypocenter"`
			Magnitude string `xml:"Magnitude"`
		} `xml:"Earthquake"`
		Intensity struct {
			Observation struct {
				MaxInt string `xml:"MaxInt"`
				Prefs  []struct {
					Areas []struct {
						Name string `xml:"Name"`
						Code string `xml:"Code"`
					} `xml:"Area"`
				} `xml:"Pref"`
				Cities []struct {
					Name    string `xml:"Name"`
					MaxInt  string `xml:"MaxInt"`
					Stations []struct {
						Name       string `xml:"Name"`
						RegionCode string `xml:"Code"`
						MaxInt     string `xml:"MaxInt"`
					} `xml:"IntensityStation"`
				} `xml:"City"`
			} `xml:"Observation"`
		} `xml:"Intensity"`
		Comments struct {
			ForecastComment struct {
				Code string `xml:"Code"`
				Text string `xml:"Text"`
			} `xml:"ForecastComment"`
		} `xml:"Comments"`
	} `xml:"Body"`
}

// ParseEarthquake parses an earthquake-report telegram body, classifying it
// into the issue type the caller already determined from head.type
// (ScalePrompt for VXSE51, Destination for VXSE52, DetailScale for VXSE53,
// Foreign for VXSE61). DestinationChange has no telegram type code in
// Dispatch's table, so Dispatch never produces it.
func ParseEarthquake(raw []byte, issueType domain.IssueType) (domain.EarthquakeReport, error) {
	var env earthquakeEnvelope
	if err := decodeEnvelope(raw, &env); err != nil {
		return domain.EarthquakeReport{}, err
	}

	if !env.Head.IsIssued() {
		return domain.Cancel(env.Head.EventID), nil
	}

	maxIntensity, warnFlag := maxIntensityFromObservation(env.Body.Intensity.Observation.MaxInt)

	hyp := domain.Hypocenter{}
	if env.Body.Earthquake.Hypocenter.Area.Coordinate != "" {
		lat, lon, depth, ok := parseHypocenterCoordinate(
			env.Body.Earthquake.Hypocenter.Area.Coordinate,
			env.Body.Earthquake.Hypocenter.Area.Coordinate,
		)
		if ok {
			hyp = domain.Hypocenter{
				Name:       env.Body.Earthquake.Hypocenter.Area.Name,
				RegionCode: env.Body.Earthquake.Hypocenter.Area.Code,
				Latitude:   lat,
				Longitude:  lon,
				Depth:      depth,
				Magnitude:  parseMagnitude(env.Body.Earthquake.Magnitude),
			}
		}
	}

	domestic, foreign := classifyTsunamiComment(env.Body.Comments.ForecastComment.Code, env.Body.Comments.ForecastComment.Text, issueType == domain.IssueForeign)

	var areas []domain.AreaIntensity
	switch issueType {
	case domain.IssueScalePrompt:
		areas = rollupPrefOnly(env.Body.Intensity.Observation.Prefs)
	case domain.IssueDetailScale:
		areas = rollupStations(env.Body.Intensity.Observation.Cities)
	default:
		areas = rollupStations(env.Body.Intensity.Observation.Cities)
	}

	return domain.EarthquakeReport{
		ParseOK:          true,
		EventID:          env.Head.EventID,
		IssueType:        issueType,
		OccurrenceTime:   parseEpoch(env.Body.Earthquake.OriginTime),
		ReceiveTime:      parseEpoch(env.Head.ReportDateTime),
		MagnitudeRaw:     env.Body.Earthquake.Magnitude,
		MaxIntensity:     maxIntensity,
		MaxIntensityWarn: warnFlag,
		DomesticTsunami:  domestic,
		ForeignTsunami:   foreign,
		Hypocenter:       hyp,
		Areas:            areas,
	}, nil
}

// ParseDestinationChange acknowledges a recognized but inert telegram
// family, spec §9/§10 item 3: the upstream source's eq_destination_change
// handler is a no-op returning None. We preserve that rather than guess a
// semantic. Dispatch does not call it: no type code routes here, so such a
// telegram gets Dispatch's unsupported-type error and is logged and dropped.
// TODO: if a real destination-change payload is ever observed in
// production, revisit whether this should mutate earthquake module state.
func ParseDestinationChange(raw []byte) (domain.EarthquakeReport, error) {
	return domain.EarthquakeReport{IssueType: domain.IssueDestinationChange}, nil
}

// maxIntensityFromObservation maps the vendor's MaxInt code to an
// Intensity, flagging the explicit warning case for unknown/"bigger than
// five lower" observations, spec §4.4.
func maxIntensityFromObservation(raw string) (domain.Intensity, bool) {
	switch strings.TrimSpace(raw) {
	case "", "不明":
		return domain.IntensityNone, true
	case "５弱以上未入電":
		return domain.Intensity5Lower, true
	default:
		if v, ok := intensityFromCode(raw); ok {
			return v, false
		}
		return domain.IntensityNone, true
	}
}

func rollupPrefOnly(prefs []struct {
	Areas []struct {
		Name string `xml:"Name"`
		Code string `xml:"Code"`
	} `xml:"Area"`
}) []domain.AreaIntensity {
	var out []domain.AreaIntensity
	for _, p := range prefs {
		for _, a := range p.Areas {
			out = append(out, domain.AreaIntensity{AreaCode: a.Code, AreaName: a.Name})
		}
	}
	return out
}

func rollupStations(cities []struct {
	Name    string `xml:"Name"`
	MaxInt  string `xml:"MaxInt"`
	Stations []struct {
		Name       string `xml:"Name"`
		RegionCode string `xml:"Code"`
		MaxInt     string `xml:"MaxInt"`
	} `xml:"IntensityStation"`
}) []domain.AreaIntensity {
	maxByRegion := make(map[string]domain.AreaIntensity)

	for _, city := range cities {
		for _, st := range city.Stations {
			intensity, _ := maxIntensityFromObservation(st.MaxInt)
			name := strings.TrimPrefix(strings.ReplaceAll(st.Name, "＊", ""), " ")
			existing, ok := maxByRegion[st.RegionCode]
			if !ok || intensity > existing.MaxIntensity {
				maxByRegion[st.RegionCode] = domain.AreaIntensity{
					AreaCode:      st.RegionCode,
					AreaName:      name,
					MaxIntensity:  intensity,
					RecommendArea: domain.AreaMaxIntensity(intensity),
				}
			}
		}
	}

	out := make([]domain.AreaIntensity, 0, len(maxByRegion))
	for _, a := range maxByRegion {
		out = append(out, a)
	}
	return out
}

// classifyTsunamiComment implements the forecast-comment-code ladders, spec
// §4.4 and §10 item 5, falling back to substring matching on the freeform
// text when no code matches.
func classifyTsunamiComment(code, text string, foreign bool) (domain.DomesticTsunamiComment, domain.ForeignTsunamiComment) {
	if foreign {
		switch code {
		case "0215":
			return domain.DomesticTsunamiNone, domain.ForeignTsunamiNone
		case "0221":
			return domain.DomesticTsunamiNone, domain.ForeignTsunamiWarningPacificWide
		case "0222":
			return domain.DomesticTsunamiNone, domain.ForeignTsunamiWarningPacific
		case "0223":
			return domain.DomesticTsunamiNone, domain.ForeignTsunamiWarningNorthwestPacific
		case "0224":
			return domain.DomesticTsunamiNone, domain.ForeignTsunamiWarningIndianWide
		case "0225":
			return domain.DomesticTsunamiNone, domain.ForeignTsunamiWarningIndian
		case "0226":
			return domain.DomesticTsunamiNone, domain.ForeignTsunamiWarningNearby
		case "0227":
			return domain.DomesticTsunamiNone, domain.ForeignTsunamiNonEffectiveNearby
		case "0228":
			return domain.DomesticTsunamiNone, domain.ForeignTsunamiPotential
		}
		return domain.DomesticTsunamiNone, foreignTsunamiFromText(text)
	}

	switch code {
	case "0215", "0230":
		return domain.DomesticTsunamiNone, domain.ForeignTsunamiNone
	case "0212", "0213", "0214":
		return domain.DomesticTsunamiNonEffective, domain.ForeignTsunamiNone
	case "0211":
		return domain.DomesticTsunamiWarning, domain.ForeignTsunamiNone
	case "0217", "0229":
		return domain.DomesticTsunamiChecking, domain.ForeignTsunamiNone
	}
	return domesticTsunamiFromText(text), domain.ForeignTsunamiNone
}

func domesticTsunamiFromText(text string) domain.DomesticTsunamiComment {
	switch {
	case strings.Contains(text, "津波の心配はありません"):
		return domain.DomesticTsunamiNone
	case strings.Contains(text, "若干の海面変動"):
		return domain.DomesticTsunamiNonEffective
	case strings.Contains(text, "津波警報"):
		return domain.DomesticTsunamiWarning
	case strings.Contains(text, "調査中"):
		return domain.DomesticTsunamiChecking
	default:
		return domain.DomesticTsunamiUnknown
	}
}

func foreignTsunamiFromText(text string) domain.ForeignTsunamiComment {
	switch {
	case strings.Contains(text, "津波の心配はありません"):
		return domain.ForeignTsunamiNone
	case strings.Contains(text, "若干の海面変動"):
		return domain.ForeignTsunamiNonEffectiveNearby
	case strings.Contains(text, "津波警報"):
		return domain.ForeignTsunamiWarningNearby
	default:
		return domain.ForeignTsunamiUnknown
	}
}
