// Package domain models the relay's normalized view of earthquake and
// tsunami telemetry: the shapes every telegram family's parser emits, and
// the shared vocabulary (intensity scale, hypocenter) those events carry.
// This package has no teacher analog; it is pure data modeling from the
// domain rather than adapted machinery, and it is the sealed-interface home
// for the TelegramEvent discriminated union.
package domain

// Intensity is the JMA seismic intensity scale: none, 1..4, 5-, 5+, 6-, 6+, 7.
type Intensity int

const (
	IntensityNone Intensity = iota
	Intensity1
	Intensity2
	Intensity3
	Intensity4
	Intensity5Lower
	Intensity5Upper
	Intensity6Lower
	Intensity6Upper
	Intensity7
)

func (i Intensity) String() string {
	switch i {
	case IntensityNone:
		return "none"
	case Intensity1:
		return "1"
	case Intensity2:
		return "2"
	case Intensity3:
		return "3"
	case Intensity4:
		return "4"
	case Intensity5Lower:
		return "5-"
	case Intensity5Upper:
		return "5+"
	case Intensity6Lower:
		return "6-"
	case Intensity6Upper:
		return "6+"
	case Intensity7:
		return "7"
	default:
		return "none"
	}
}

// LongPeriodIntensity is the long-period ground motion class scale:
// none, <1, 1, 2, 3, 4.
type LongPeriodIntensity int

const (
	LongPeriodNone LongPeriodIntensity = iota
	LongPeriodBelow1
	LongPeriod1
	LongPeriod2
	LongPeriod3
	LongPeriod4
)

func (l LongPeriodIntensity) String() string {
	switch l {
	case LongPeriodNone:
		return "none"
	case LongPeriodBelow1:
		return "<1"
	case LongPeriod1:
		return "1"
	case LongPeriod2:
		return "2"
	case LongPeriod3:
		return "3"
	case LongPeriod4:
		return "4"
	default:
		return "none"
	}
}

// IntensityInterval carries a lower bound and an optional upper bound for an
// "at least lowest, up to highest" forecast range. AboveOpen means the upper
// bound is the "above" sentinel (at least Lowest, unbounded above); in that
// case Highest is meaningless and callers that need a single display value
// should collapse to Lowest, per the EEW parser's display rule.
type IntensityInterval struct {
	Lowest   Intensity
	Highest  Intensity
	HasUpper bool
	AboveOpen bool
}

// Display collapses an open-above interval to its lower bound, matching the
// EEW parser's rule: "when highest == above sentinel, set highest to
// lowest (collapse the open interval for display)".
func (iv IntensityInterval) Display() Intensity {
	if iv.AboveOpen {
		return iv.Lowest
	}
	if iv.HasUpper {
		return iv.Highest
	}
	return iv.Lowest
}

// LongPeriodInterval mirrors IntensityInterval for the long-period scale.
type LongPeriodInterval struct {
	Lowest    LongPeriodIntensity
	Highest   LongPeriodIntensity
	HasUpper  bool
	AboveOpen bool
}
