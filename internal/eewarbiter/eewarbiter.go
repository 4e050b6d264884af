// Package eewarbiter implements the EEW arbitration middleware from
// spec §4.3: merging the streamed (SVIR) and polled (kmoni) early-warning
// views into the single best event the HTTP layer reads, grounded on
// original_source/modules/eew_info/middleware.py.
package eewarbiter

import (
	"time"

	"github.com/shindosokuho/relay/internal/domain"
)

// Config tunes the arbitration rules, spec §9 "keep this as a
// configurable offset rather than a constant" and original_source §10
// item 4's debug override.
type Config struct {
	// OnlyDMData selects rule 1: prefer SVIR exclusively, folding kmoni's
	// area intensities in only as a supplement for the same event.
	OnlyDMData bool
	// KmoniClockOffset aligns the kmoni feed's wall clock to the vendor's,
	// OQ1 decision: defaults to 1h (the original's +3600s).
	KmoniClockOffset time.Duration
	// IgnoreOutdatedSVIR treats SVIR as always-recent regardless of the
	// recency window, for replaying recorded telegrams in tests/fixtures.
	IgnoreOutdatedSVIR bool
}

// DefaultConfig mirrors spec §4.2/§9's defaults.
func DefaultConfig() Config {
	return Config{KmoniClockOffset: 1 * time.Hour}
}

// recentLow/recentHigh bound the "SVIR is recent" window from spec §4.3:
// |now - report_timestamp| in (-12, +180) seconds after the clock offset.
const (
	recentLow  = -12 * time.Second
	recentHigh = 180 * time.Second
)

// Input bundles the arbitrator's two possibly-absent views.
type Input struct {
	SVIR     domain.EEWEvent
	HasSVIR  bool
	Kmoni    domain.EEWEvent
	HasKmoni bool
}

// Arbitrate runs the spec §4.3 selection rules against a wall clock now,
// returning the merged event and which source(s) contributed.
func Arbitrate(in Input, cfg Config, now time.Time) domain.EEWEvent {
	svirAvailable := in.HasSVIR && (in.SVIR.IsCancel() || cfg.IgnoreOutdatedSVIR || isRecent(in.SVIR, cfg, now))

	if cfg.OnlyDMData {
		if !svirAvailable {
			return domain.EEWEvent{}
		}
		out := in.SVIR
		out.Source = domain.EEWSourceSVIR
		if in.HasKmoni && in.Kmoni.EventID == in.SVIR.EventID {
			if !out.IsWarn {
				out.Areas = mergeAreas(out.Areas, in.Kmoni.Areas)
				out.RecommendAreas = in.Kmoni.RecommendAreas
			}
		}
		return out
	}

	switch {
	case !svirAvailable && !in.HasKmoni:
		return domain.EEWEvent{}
	case !svirAvailable:
		out := in.Kmoni
		out.Source = domain.EEWSourceKmoni
		return out
	case !in.HasKmoni:
		out := in.SVIR
		out.Source = domain.EEWSourceSVIR
		return out
	default:
		return arbitrateBoth(in, now)
	}
}

func arbitrateBoth(in Input, now time.Time) domain.EEWEvent {
	svir := in.SVIR
	switch {
	case svir.IsPlum:
		svir.Source = domain.EEWSourceSVIR
		return svir
	case svir.Hypocenter.Depth.Kind == domain.DepthKnown && svir.Hypocenter.Depth.KM >= 150:
		svir.Source = domain.EEWSourceSVIR
		return svir
	case svir.IsWarn:
		if svir.EventID == in.Kmoni.EventID && svir.Serial == in.Kmoni.Serial {
			svir.Areas = mergeAreas(svir.Areas, in.Kmoni.Areas)
		}
		svir.Source = domain.EEWSourceSVIR
		return svir
	default:
		kmoni := in.Kmoni
		kmoni.Source = domain.EEWSourceKmoni
		return kmoni
	}
}

func isRecent(ev domain.EEWEvent, cfg Config, now time.Time) bool {
	adjustedNow := now.Add(-cfg.KmoniClockOffset)
	delta := adjustedNow.Sub(ev.Origin.Time)
	return delta > recentLow && delta < recentHigh
}

// mergeAreas implements the "start from SVIR's area map; add kmoni
// entries for keys not already present" rule from spec §4.3. Callers
// are responsible for the event_id/serial agreement check beforehand —
// this function always merges.
func mergeAreas(svirAreas, kmoniAreas []domain.EEWAreaForecast) []domain.EEWAreaForecast {
	seen := make(map[string]struct{}, len(svirAreas))
	out := make([]domain.EEWAreaForecast, len(svirAreas))
	copy(out, svirAreas)
	for _, a := range svirAreas {
		seen[a.AreaCode] = struct{}{}
	}
	for _, a := range kmoniAreas {
		if _, ok := seen[a.AreaCode]; ok {
			continue
		}
		out = append(out, a)
		seen[a.AreaCode] = struct{}{}
	}
	return out
}
