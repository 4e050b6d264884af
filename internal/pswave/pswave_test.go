package pswave

import (
	"math"
	"testing"

	"github.com/shindosokuho/relay/internal/domain"
)

func sampleTable() []domain.TravelTimeRow {
	return []domain.TravelTimeRow{
		{DepthKM: 10, DistanceKM: 0, PTimeS: 0, STimeS: 0},
		{DepthKM: 10, DistanceKM: 50, PTimeS: 10, STimeS: 18},
		{DepthKM: 10, DistanceKM: 100, PTimeS: 20, STimeS: 36},
		{DepthKM: 20, DistanceKM: 0, PTimeS: 0, STimeS: 0},
		{DepthKM: 20, DistanceKM: 100, PTimeS: 15, STimeS: 27},
	}
}

func TestEstimateInterpolatesMidpoint(t *testing.T) {
	d := Estimate(sampleTable(), 10, 15)

	if !d.HasPDistance || !d.HasSDistance {
		t.Fatalf("expected both distances present, got %+v", d)
	}
	if d.PDistanceKM != 75 {
		t.Fatalf("expected P distance 75, got %v", d.PDistanceKM)
	}
	// S rows (0s, 0km) and (18s, 50km) bracket 15s: 15/18 of the way to 50km.
	if wantS := 15.0 / 18.0 * 50; math.Abs(d.SDistanceKM-wantS) > 1e-9 {
		t.Fatalf("expected S distance %v, got %v", wantS, d.SDistanceKM)
	}
}

func TestEstimateExactRowMatch(t *testing.T) {
	d := Estimate(sampleTable(), 20, 15)
	if !d.HasPDistance || d.PDistanceKM != 100 {
		t.Fatalf("expected exact-match P distance 100, got %+v", d)
	}
}

func TestEstimateRejectsExcessiveDepthOrElapsed(t *testing.T) {
	if d := Estimate(sampleTable(), 701, 10); d.HasPDistance || d.HasSDistance {
		t.Fatalf("expected no distances for depth > 700km, got %+v", d)
	}
	if d := Estimate(sampleTable(), 10, 2001); d.HasPDistance || d.HasSDistance {
		t.Fatalf("expected no distances for elapsed > 2000s, got %+v", d)
	}
}

func TestEstimateMissingBracketReturnsAbsent(t *testing.T) {
	d := Estimate(sampleTable(), 10, 25) // beyond the max P time (20s) for depth=10, inside the S range (0-36s)
	if d.HasPDistance {
		t.Fatalf("expected absent P distance when elapsed exceeds the P bracket, got %+v", d)
	}
	if !d.HasSDistance {
		t.Fatalf("expected S distance present since S rows at 18s and 36s bracket 25s, got %+v", d)
	}
}

func TestEstimateUnknownDepthReturnsAbsent(t *testing.T) {
	d := Estimate(sampleTable(), 999999, 10)
	if d.HasPDistance || d.HasSDistance {
		t.Fatalf("expected absent distances for a depth with no table rows, got %+v", d)
	}
}

func TestEstimateMonotoneInElapsed(t *testing.T) {
	d1 := Estimate(sampleTable(), 10, 5)
	d2 := Estimate(sampleTable(), 10, 15)
	if !(d1.PDistanceKM <= d2.PDistanceKM) {
		t.Fatalf("expected P distance to be monotone non-decreasing in elapsed time: %v then %v", d1.PDistanceKM, d2.PDistanceKM)
	}
}
