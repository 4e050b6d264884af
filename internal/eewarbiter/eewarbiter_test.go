package eewarbiter

import (
	"reflect"
	"testing"
	"time"

	"github.com/shindosokuho/relay/internal/domain"
)

var fixedNow = time.Date(2024, 1, 1, 0, 1, 30, 0, time.UTC)

func TestArbitrateNeitherAvailableReturnsEmpty(t *testing.T) {
	got := Arbitrate(Input{}, DefaultConfig(), fixedNow)
	if !reflect.DeepEqual(got, domain.EEWEvent{}) {
		t.Fatalf("expected an empty event, got %+v", got)
	}
}

func TestArbitrateOnlyKmoni(t *testing.T) {
	kmoni := domain.EEWEvent{EventID: "E1", Serial: 1}
	got := Arbitrate(Input{Kmoni: kmoni, HasKmoni: true}, DefaultConfig(), fixedNow)
	if got.Source != domain.EEWSourceKmoni {
		t.Fatalf("expected kmoni to win when SVIR is absent, got source %v", got.Source)
	}
}

func TestArbitrateOnlySVIR(t *testing.T) {
	svir := domain.EEWEvent{EventID: "E1", Serial: 1, Origin: domain.EpochTime{Time: fixedNow.Add(-1 * time.Hour)}}
	got := Arbitrate(Input{SVIR: svir, HasSVIR: true}, DefaultConfig(), fixedNow)
	if got.Source != domain.EEWSourceSVIR {
		t.Fatalf("expected SVIR to win when kmoni is absent, got source %v", got.Source)
	}
}

func TestArbitrateSVIROutdatedFallsBackToKmoni(t *testing.T) {
	svir := domain.EEWEvent{EventID: "E1", Serial: 1, Origin: domain.EpochTime{Time: fixedNow.Add(-10 * time.Hour)}}
	kmoni := domain.EEWEvent{EventID: "E1", Serial: 1}
	got := Arbitrate(Input{SVIR: svir, HasSVIR: true, Kmoni: kmoni, HasKmoni: true}, DefaultConfig(), fixedNow)
	if got.Source != domain.EEWSourceKmoni {
		t.Fatalf("expected an outdated SVIR to be treated as unavailable, got source %v", got.Source)
	}
}

func TestArbitrateBothPlumPrefersSVIR(t *testing.T) {
	svir := domain.EEWEvent{
		EventID: "E1", Serial: 1, IsPlum: true,
		Origin: domain.EpochTime{Time: fixedNow.Add(-1 * time.Hour)},
	}
	kmoni := domain.EEWEvent{EventID: "E1", Serial: 1}
	got := Arbitrate(Input{SVIR: svir, HasSVIR: true, Kmoni: kmoni, HasKmoni: true}, DefaultConfig(), fixedNow)
	if got.Source != domain.EEWSourceSVIR {
		t.Fatalf("expected a PLUM SVIR event to win outright, got source %v", got.Source)
	}
}

func TestArbitrateBothDeepHypocenterPrefersSVIR(t *testing.T) {
	svir := domain.EEWEvent{
		EventID: "E1", Serial: 1,
		Hypocenter: domain.Hypocenter{Depth: domain.KnownDepthKM(150)},
		Origin:     domain.EpochTime{Time: fixedNow.Add(-1 * time.Hour)},
	}
	kmoni := domain.EEWEvent{EventID: "E1", Serial: 1}
	got := Arbitrate(Input{SVIR: svir, HasSVIR: true, Kmoni: kmoni, HasKmoni: true}, DefaultConfig(), fixedNow)
	if got.Source != domain.EEWSourceSVIR {
		t.Fatalf("expected depth>=150km to prefer SVIR outright, got source %v", got.Source)
	}
}

func TestArbitrateBothWarningMergesAreas(t *testing.T) {
	svir := domain.EEWEvent{
		EventID: "E1", Serial: 1, IsWarn: true,
		Areas:  []domain.EEWAreaForecast{{AreaCode: "100"}},
		Origin: domain.EpochTime{Time: fixedNow.Add(-1 * time.Hour)},
	}
	kmoni := domain.EEWEvent{
		EventID: "E1", Serial: 1,
		Areas: []domain.EEWAreaForecast{{AreaCode: "100"}, {AreaCode: "200"}},
	}
	got := Arbitrate(Input{SVIR: svir, HasSVIR: true, Kmoni: kmoni, HasKmoni: true}, DefaultConfig(), fixedNow)
	if got.Source != domain.EEWSourceSVIR {
		t.Fatalf("expected a warning SVIR to win with areas merged, got source %v", got.Source)
	}
	if len(got.Areas) != 2 {
		t.Fatalf("expected the kmoni-only area to be merged in, got %+v", got.Areas)
	}
}

func TestArbitrateBothNeitherConditionPrefersKmoni(t *testing.T) {
	svir := domain.EEWEvent{
		EventID: "E1", Serial: 1,
		Origin: domain.EpochTime{Time: fixedNow.Add(-1 * time.Hour)},
	}
	kmoni := domain.EEWEvent{EventID: "E1", Serial: 1}
	got := Arbitrate(Input{SVIR: svir, HasSVIR: true, Kmoni: kmoni, HasKmoni: true}, DefaultConfig(), fixedNow)
	if got.Source != domain.EEWSourceKmoni {
		t.Fatalf("expected kmoni to win the default case, got source %v", got.Source)
	}
}

func TestArbitrateOnlyDMDataIgnoresKmoniUnlessSameEvent(t *testing.T) {
	svir := domain.EEWEvent{
		EventID: "E1", Serial: 1,
		Areas:  []domain.EEWAreaForecast{{AreaCode: "100"}},
		Origin: domain.EpochTime{Time: fixedNow.Add(-1 * time.Hour)},
	}
	kmoni := domain.EEWEvent{EventID: "E2", Areas: []domain.EEWAreaForecast{{AreaCode: "200"}}}
	cfg := DefaultConfig()
	cfg.OnlyDMData = true

	got := Arbitrate(Input{SVIR: svir, HasSVIR: true, Kmoni: kmoni, HasKmoni: true}, cfg, fixedNow)
	if len(got.Areas) != 1 {
		t.Fatalf("expected no merge across different event ids, got %+v", got.Areas)
	}
}

func TestArbitrateOnlyDMDataMergesAreasAndRecommendedAreasWhenNotWarning(t *testing.T) {
	svir := domain.EEWEvent{
		EventID: "E1", Serial: 1,
		Areas:  []domain.EEWAreaForecast{{AreaCode: "100"}},
		Origin: domain.EpochTime{Time: fixedNow.Add(-1 * time.Hour)},
	}
	kmoni := domain.EEWEvent{EventID: "E1", Areas: []domain.EEWAreaForecast{{AreaCode: "200"}}, RecommendAreas: true}
	cfg := DefaultConfig()
	cfg.OnlyDMData = true

	got := Arbitrate(Input{SVIR: svir, HasSVIR: true, Kmoni: kmoni, HasKmoni: true}, cfg, fixedNow)
	if len(got.Areas) != 2 {
		t.Fatalf("expected area merge for a non-warning SVIR event, got %+v", got.Areas)
	}
	if !got.RecommendAreas {
		t.Fatalf("expected kmoni's recommended_areas to be adopted")
	}
}

func TestArbitrateOnlyDMDataSkipsAreaMergeWhenSVIRIsWarning(t *testing.T) {
	svir := domain.EEWEvent{
		EventID: "E1", Serial: 1, IsWarn: true,
		Areas:  []domain.EEWAreaForecast{{AreaCode: "100"}},
		Origin: domain.EpochTime{Time: fixedNow.Add(-1 * time.Hour)},
	}
	kmoni := domain.EEWEvent{EventID: "E1", Areas: []domain.EEWAreaForecast{{AreaCode: "200"}}, RecommendAreas: true}
	cfg := DefaultConfig()
	cfg.OnlyDMData = true

	got := Arbitrate(Input{SVIR: svir, HasSVIR: true, Kmoni: kmoni, HasKmoni: true}, cfg, fixedNow)
	if len(got.Areas) != 1 {
		t.Fatalf("expected no area merge when SVIR is a warning, got %+v", got.Areas)
	}
	if got.RecommendAreas {
		t.Fatalf("expected recommended_areas not to be adopted when SVIR is a warning")
	}
}

func TestArbitrateOnlyDMDataUnavailableReturnsEmpty(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OnlyDMData = true
	got := Arbitrate(Input{}, cfg, fixedNow)
	if !reflect.DeepEqual(got, domain.EEWEvent{}) {
		t.Fatalf("expected empty result when SVIR is unavailable under only_dmdata, got %+v", got)
	}
}

func TestArbitrateCancelledSVIRIsAlwaysAvailable(t *testing.T) {
	svir := domain.BlankCancelled("E1")
	got := Arbitrate(Input{SVIR: svir, HasSVIR: true}, DefaultConfig(), fixedNow)
	if got.Source != domain.EEWSourceSVIR {
		t.Fatalf("expected a cancelled SVIR event to count as available regardless of timestamp, got %+v", got)
	}
}
