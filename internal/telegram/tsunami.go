package telegram

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/shindosokuho/relay/internal/domain"
	"github.com/shindosokuho/relay/internal/relayerr"
)

// tsunamiExpectationEnvelope is the subset of a VTSE41 body this parser
// needs.
type tsunamiExpectationEnvelope struct {
	XMLName xml.Name `xml:"Report"`
	Head    Head     `xml:"Head"`
	Body    struct {
		Tsunami struct {
			Forecast struct {
				Items []struct {
					Area struct {
						Name string `xml:"Name"`
						Code string `xml:"Code"`
					} `xml:"Area"`
					Category struct {
						Kind struct {
							Name string `xml:"Name"`
						} `xml:"Kind"`
					} `xml:"Category"`
					FirstHeight struct {
						Condition string `xml:"Condition"`
						Time      string `xml:"ArrivalTime"`
					} `xml:"FirstHeight"`
					MaxHeight struct {
						Description string `xml:"TsunamiHeight>Description"`
					} `xml:"MaxHeight"`
				} `xml:"Item"`
			} `xml:"Forecast"`
		} `xml:"Tsunami"`
	} `xml:"Body"`
}

// ParseTsunamiExpectation parses a VTSE41 telegram body into a
// TsunamiExpectation, spec §4.5. Grade derives from substring matching on
// the Japanese category name; areas tagged 津波予報（若干の海面変動） go to
// ForecastAreas, everything else to Areas.
func ParseTsunamiExpectation(raw []byte) (domain.TsunamiExpectation, error) {
	var env tsunamiExpectationEnvelope
	if err := decodeEnvelope(raw, &env); err != nil {
		return domain.TsunamiExpectation{}, err
	}

	var areas, forecastAreas []domain.TsunamiArea
	for _, item := range env.Body.Tsunami.Forecast.Items {
		if isTsunamiCancellationCategory(item.Category.Kind.Name) {
			continue
		}
		grade := tsunamiGradeFromCategoryName(item.Category.Kind.Name)
		area := domain.TsunamiArea{
			Name:   item.Area.Name,
			Grade:  grade,
			Height: tsunamiHeightFromDescription(item.MaxHeight.Description),
			Time:   tsunamiTimeFromCondition(item.FirstHeight.Condition, item.FirstHeight.Time),
		}

		if grade == domain.TsunamiGradeForecast {
			forecastAreas = append(forecastAreas, area)
		} else {
			areas = append(areas, area)
		}
	}

	return domain.TsunamiExpectation{
		ParseOK:         true,
		EventID:         env.Head.EventID,
		Areas:           areas,
		ForecastAreas:   forecastAreas,
		WarningInEffect: len(areas) > 0,
		WatchInEffect:   len(forecastAreas) > 0,
	}, nil
}

// isTsunamiCancellationCategory reports whether name is an advisory- or
// warning-cancellation entry ("津波注意報解除"/"警報解除"), which is
// dropped before grade classification rather than miscategorized — the
// substring "津波注意報" would otherwise match a lifted watch as an active
// TsunamiGradeWatch.
func isTsunamiCancellationCategory(name string) bool {
	return strings.Contains(name, "津波注意報解除") || strings.Contains(name, "警報解除")
}

func tsunamiGradeFromCategoryName(name string) domain.TsunamiGrade {
	switch {
	case strings.Contains(name, "大津波警報"):
		return domain.TsunamiGradeMajorWarning
	case strings.Contains(name, "津波予報（若干の海面変動）"):
		return domain.TsunamiGradeForecast
	case strings.Contains(name, "津波警報"):
		return domain.TsunamiGradeWarning
	case strings.Contains(name, "津波注意報"):
		return domain.TsunamiGradeWatch
	default:
		return domain.TsunamiGradeUnknown
	}
}

func tsunamiHeightFromDescription(desc string) domain.TsunamiHeight {
	switch {
	case strings.Contains(desc, "10m超"):
		return domain.TsunamiHeight10m
	case strings.Contains(desc, "10m"):
		return domain.TsunamiHeight10mLow
	case strings.Contains(desc, "5m"):
		return domain.TsunamiHeight5m
	case strings.Contains(desc, "3m"):
		return domain.TsunamiHeight3m
	case strings.Contains(desc, "1m"):
		return domain.TsunamiHeight1m
	case strings.Contains(desc, "0.2m"):
		return domain.TsunamiHeight0_2m
	default:
		return domain.TsunamiHeightUnknown
	}
}

// tsunamiTimeFromCondition resolves the first-wave time to one of
// {Arriving Now, Arrival Expected, Arrived, concrete time, Unknown} per
// FirstHeight.Condition, spec §4.5.
func tsunamiTimeFromCondition(condition, rawTime string) domain.TsunamiTime {
	switch condition {
	case "ただちに津波来襲と予測":
		return domain.TsunamiTime{Status: domain.TsunamiTimeArrivingNow}
	case "津波到達中と推測":
		return domain.TsunamiTime{Status: domain.TsunamiTimeArrived}
	case "第1波の到達を確認":
		return domain.TsunamiTime{Status: domain.TsunamiTimeArrived}
	case "津波到達予想時刻":
		if rawTime == "" {
			return domain.TsunamiTime{Status: domain.TsunamiTimeUnknown}
		}
		return domain.TsunamiTime{Status: domain.TsunamiTimeConcrete, Epoch: parseEpoch(rawTime)}
	default:
		if rawTime != "" {
			return domain.TsunamiTime{Status: domain.TsunamiTimeConcrete, Epoch: parseEpoch(rawTime)}
		}
		return domain.TsunamiTime{Status: domain.TsunamiTimeArrivalExpected}
	}
}

// tsunamiObservationEnvelope is the subset of a VTSE51 body this parser
// needs.
type tsunamiObservationEnvelope struct {
	XMLName xml.Name `xml:"Report"`
	Head    Head     `xml:"Head"`
	Control Control  `xml:"Control"`
	Body    struct {
		Tsunami struct {
			Observation struct {
				Items []struct {
					Station struct {
						Name string `xml:"Name"`
					} `xml:"Station"`
					MaxHeight struct {
						Condition   string `xml:"Condition"`
						Description string `xml:"TsunamiHeight>Description"`
						DataTime    string `xml:"TsunamiHeight>DataTime"`
						Revise      string `xml:"Revise"`
					} `xml:"MaxHeight"`
				} `xml:"Item"`
			} `xml:"Observation"`
		} `xml:"Tsunami"`
	} `xml:"Body"`
}

const tsunamiObservationTitle = "津波観測に関する情報"

// ParseTsunamiObservation parses a VTSE51 telegram body into a
// TsunamiObservation, spec §4.5: the telegram is only published when its
// title is the expected observation title, its info-status is issued
// (not cancelled), and its control status is normal (not test/training);
// anything else is dropped with a decode error, matching the dispatcher's
// "other types are logged and dropped" handling for unrecognized types.
func ParseTsunamiObservation(raw []byte) (domain.TsunamiObservation, error) {
	var env tsunamiObservationEnvelope
	if err := decodeEnvelope(raw, &env); err != nil {
		return domain.TsunamiObservation{}, err
	}

	if !ObservationTitleMatches(env.Head.Title) {
		return domain.TsunamiObservation{}, relayerr.New("telegram.parse_tsunami_observation", relayerr.KindDecode,
			fmt.Errorf("unexpected title %q", env.Head.Title))
	}
	if !env.Head.IsIssued() {
		return domain.TsunamiObservation{}, relayerr.New("telegram.parse_tsunami_observation", relayerr.KindDecode,
			fmt.Errorf("info-status is not issued"))
	}
	if ControlStatus(env.Control.Status) != "normal" {
		return domain.TsunamiObservation{}, relayerr.New("telegram.parse_tsunami_observation", relayerr.KindDecode,
			fmt.Errorf("control status %q is not normal", env.Control.Status))
	}

	stations := make([]domain.TsunamiStation, 0, len(env.Body.Tsunami.Observation.Items))
	for _, item := range env.Body.Tsunami.Observation.Items {
		cond := item.MaxHeight.Condition
		station := domain.TsunamiStation{
			Name: item.Station.Name,
			Time: parseEpoch(item.MaxHeight.DataTime),
		}

		switch {
		case strings.Contains(cond, "弱い"):
			station.Condition = domain.TsunamiObsWeak
		case strings.Contains(cond, "観測中"):
			station.Condition = domain.TsunamiObsObserving
		default:
			station.Condition = domain.TsunamiObsNone
		}

		if station.Condition != domain.TsunamiObsNone {
			// Weak/observing conditions short-circuit to a row with no
			// numeric height, spec §4.5.
			stations = append(stations, station)
			continue
		}

		station.HasHeight = true
		station.Height = tsunamiHeightFromDescription(item.MaxHeight.Description)
		station.HeightIsMax = strings.Contains(item.MaxHeight.Description, "以上")
		if item.MaxHeight.Revise == "上昇中" {
			station.HeightCondition = domain.TsunamiHeightCondRising
		} else {
			station.HeightCondition = domain.TsunamiHeightCondNone
		}

		stations = append(stations, station)
	}

	return domain.TsunamiObservation{
		ParseOK:  true,
		EventID:  env.Head.EventID,
		Stations: stations,
	}, nil
}

// ObservationTitleMatches reports whether head.Title matches the required
// tsunami-observation title gate, spec §4.5.
func ObservationTitleMatches(title string) bool {
	return title == tsunamiObservationTitle
}
