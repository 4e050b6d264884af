package telegram

import (
	"fmt"

	"github.com/shindosokuho/relay/internal/domain"
	"github.com/shindosokuho/relay/internal/relayerr"
)

// Dispatch performs the head.type case analysis spec §4.1's "Dispatch
// table" describes, turning a decoded XML telegram body into the
// TelegramEvent union. Unrecognized types return a DecodeError so the
// caller can log-and-drop per spec §4.1 "Other types are logged and
// dropped."
func Dispatch(raw []byte) (domain.TelegramEvent, error) {
	headType, err := PeekHeadType(raw)
	if err != nil {
		return nil, err
	}

	switch headType {
	case "VXSE44":
		ev, err := ParseEEW(raw, false)
		if err != nil {
			return nil, err
		}
		return domain.EEWForecastEvent{EEWEvent: ev}, nil
	case "VXSE43":
		ev, err := ParseEEW(raw, true)
		if err != nil {
			return nil, err
		}
		return domain.EEWWarningEvent{EEWEvent: ev}, nil
	case "VXSE51":
		ev, err := ParseEarthquake(raw, domain.IssueScalePrompt)
		if err != nil {
			return nil, err
		}
		return domain.IntensityReportEvent{EarthquakeReport: ev}, nil
	case "VXSE52":
		ev, err := ParseEarthquake(raw, domain.IssueDestination)
		if err != nil {
			return nil, err
		}
		return domain.DestinationEvent{EarthquakeReport: ev}, nil
	case "VXSE53":
		ev, err := ParseEarthquake(raw, domain.IssueDetailScale)
		if err != nil {
			return nil, err
		}
		return domain.DetailScaleEvent{EarthquakeReport: ev}, nil
	case "VXSE61":
		ev, err := ParseEarthquake(raw, domain.IssueForeign)
		if err != nil {
			return nil, err
		}
		return domain.ForeignEvent{EarthquakeReport: ev}, nil
	case "VTSE41":
		ev, err := ParseTsunamiExpectation(raw)
		if err != nil {
			return nil, err
		}
		return domain.TsunamiExpectationEvent{TsunamiExpectation: ev}, nil
	case "VTSE51":
		ev, err := ParseTsunamiObservation(raw)
		if err != nil {
			return nil, err
		}
		return domain.TsunamiObservationEvent{TsunamiObservation: ev}, nil
	default:
		return nil, relayerr.New("telegram.dispatch", relayerr.KindDecode,
			fmt.Errorf("unsupported head type %q", headType))
	}
}
