package domain

import "time"

// EEWLifecycle classifies an early-warning event's production status.
type EEWLifecycle string

const (
	EEWNormal    EEWLifecycle = "normal"
	EEWCancelled EEWLifecycle = "cancelled"
	EEWTraining  EEWLifecycle = "training"
	EEWTest      EEWLifecycle = "test"
)

// EEWSource distinguishes the arbitrator's two independent inputs.
type EEWSource string

const (
	EEWSourceNone  EEWSource = ""
	EEWSourceSVIR  EEWSource = "svir"
	EEWSourceKmoni EEWSource = "kmoni"
)

// EpochTime carries both the epoch seconds and a vendor-formatted string, so
// downstream consumers that expect the original textual representation do
// not need to re-derive it from the parsed time.
type EpochTime struct {
	Time      time.Time
	Formatted string
}

// ArrivalPredicate is the per-area "has it arrived" forecast triple.
type ArrivalPredicate struct {
	Flag      bool
	Condition string
	Time      string
}

// EEWAreaForecast is one area's line within an EEW event.
type EEWAreaForecast struct {
	AreaCode   string
	AreaName   string
	Intensity  IntensityInterval
	LongPeriod LongPeriodInterval
	HasLongPeriod bool
	Arrival    ArrivalPredicate
	IsWarning  bool // true when this area line came from a warning-type forecast
}

// EEWEvent is the unified early-warning model, spec §3 "EEW event".
type EEWEvent struct {
	ParseOK        bool
	Lifecycle      EEWLifecycle
	EventID        string
	Serial         int
	Announced      EpochTime
	Origin         EpochTime
	Hypocenter     Hypocenter
	MaxIntensity   IntensityInterval
	LongPeriod     LongPeriodInterval
	IsFinal        bool
	IsWarn         bool
	IsPlum         bool
	RecommendAreas bool
	Areas          []EEWAreaForecast
	Source         EEWSource
}

// IsCancel reports whether this event represents a cancellation, the
// "fully blank event with event_type=cancel" case from the parser spec.
func (e EEWEvent) IsCancel() bool { return e.Lifecycle == EEWCancelled }

// BlankCancelled returns the sentinel cancelled event for a given event id,
// matching the parser rule: info_status != issued yields a fully blank
// event tagged event_type=cancel, nothing else populated.
func BlankCancelled(eventID string) EEWEvent {
	return EEWEvent{
		ParseOK:   true,
		Lifecycle: EEWCancelled,
		EventID:   eventID,
	}
}
