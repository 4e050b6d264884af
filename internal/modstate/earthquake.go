package modstate

import (
	"sync"

	"github.com/shindosokuho/relay/internal/domain"
	"github.com/shindosokuho/relay/internal/relayerr"
)

// EarthquakeLog is the earthquake module's owned state: an append-only
// log of reports plus the last ScalePrompt seen per event id, kept
// around so a later Destination report can recover the pairing even
// when something else was appended in between (spec §4.4, original_source
// §10 items 2/2a).
type EarthquakeLog struct {
	mu       sync.Mutex
	entries  []domain.EarthquakeReport
	previous map[string]domain.EarthquakeReport
}

// NewEarthquakeLog returns an empty log ready for appends.
func NewEarthquakeLog() *EarthquakeLog {
	return &EarthquakeLog{previous: make(map[string]domain.EarthquakeReport)}
}

// Append applies the spec §4.4 ordering rule and records rep. A
// Destination report whose pairing cannot be recovered — neither the
// log's tail nor the saved ScalePrompt match its event id — is a fatal
// consistency violation and is reported as a ParseError without
// mutating the log, per spec §7/§4.4.
func (l *EarthquakeLog) Append(rep domain.EarthquakeReport) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch rep.IssueType {
	case domain.IssueScalePrompt:
		l.entries = append(l.entries, rep)
		l.previous[rep.EventID] = rep

	case domain.IssueDestination:
		if n := len(l.entries); n > 0 && l.entries[n-1].IssueType == domain.IssueScalePrompt && l.entries[n-1].EventID == rep.EventID {
			l.entries = append(l.entries, rep)
			break
		}
		saved, ok := l.previous[rep.EventID]
		if !ok || saved.EventID != rep.EventID {
			return relayerr.New("modstate.earthquake.append", relayerr.KindParse,
				errDestinationWithoutScalePrompt{eventID: rep.EventID})
		}
		l.entries = append(l.entries, saved, rep)

	case domain.IssueDetailScale:
		l.entries = append(l.entries, rep)
		delete(l.previous, rep.EventID)

	default:
		l.entries = append(l.entries, rep)
	}

	return nil
}

// Entries returns a shallow copy of the full log.
func (l *EarthquakeLog) Entries() []domain.EarthquakeReport {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.EarthquakeReport, len(l.entries))
	copy(out, l.entries)
	return out
}

// Latest returns the most recent entry, if any.
func (l *EarthquakeLog) Latest() (domain.EarthquakeReport, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return domain.EarthquakeReport{}, false
	}
	return l.entries[len(l.entries)-1], true
}

type errDestinationWithoutScalePrompt struct {
	eventID string
}

func (e errDestinationWithoutScalePrompt) Error() string {
	return "destination report " + e.eventID + " has no matching scale prompt, live or saved"
}
