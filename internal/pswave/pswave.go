// Package pswave implements the P/S-wave travel-time estimator: a table
// lookup plus linear interpolation over depth and elapsed time, spec §4.7.
// Grounded on original_source/internal/pswave.py parse_pswave_time,
// translated almost 1:1 as a pure function over internal/refdata's table.
package pswave

import (
	"github.com/shindosokuho/relay/internal/domain"
)

const (
	maxDepthKM    = 700
	maxElapsedSec = 2000
)

// Distances is the estimator's result: either wave's distance is absent
// when the elapsed time falls outside the table's bracket for that wave.
type Distances struct {
	PDistanceKM   float64
	HasPDistance  bool
	SDistanceKM   float64
	HasSDistance  bool
}

// Estimate returns the estimated P-wave and S-wave distances for an
// earthquake at depthKM, elapsedSec seconds after origin, by bracketing
// rows of table at the matching depth and linearly interpolating between
// the nearest rows below and above elapsedSec.
func Estimate(table []domain.TravelTimeRow, depthKM int, elapsedSec float64) Distances {
	if depthKM > maxDepthKM || elapsedSec > maxElapsedSec {
		return Distances{}
	}

	var matching []domain.TravelTimeRow
	for _, r := range table {
		if r.DepthKM == depthKM {
			matching = append(matching, r)
		}
	}

	var d Distances
	if dist, ok := interpolate(matching, elapsedSec, func(r domain.TravelTimeRow) float64 { return r.PTimeS }); ok {
		d.PDistanceKM, d.HasPDistance = dist, true
	}
	if dist, ok := interpolate(matching, elapsedSec, func(r domain.TravelTimeRow) float64 { return r.STimeS }); ok {
		d.SDistanceKM, d.HasSDistance = dist, true
	}
	return d
}

// interpolate finds last = max{r : timeOf(r) <= elapsed} and
// first = min{r : timeOf(r) >= elapsed} among rows, then linearly
// interpolates distance between them. Returns ok=false if either bracket
// row is missing.
func interpolate(rows []domain.TravelTimeRow, elapsed float64, timeOf func(domain.TravelTimeRow) float64) (float64, bool) {
	var (
		last     domain.TravelTimeRow
		haveLast bool
		first    domain.TravelTimeRow
		haveFirst bool
	)

	for _, r := range rows {
		t := timeOf(r)
		if t <= elapsed && (!haveLast || t > timeOf(last)) {
			last, haveLast = r, true
		}
		if t >= elapsed && (!haveFirst || t < timeOf(first)) {
			first, haveFirst = r, true
		}
	}

	if !haveLast || !haveFirst {
		return 0, false
	}

	lastT, firstT := timeOf(last), timeOf(first)
	if firstT == lastT {
		return last.DistanceKM, true
	}

	frac := (elapsed - lastT) / (firstT - lastT)
	dist := frac*(first.DistanceKM-last.DistanceKM) + last.DistanceKM
	return dist, true
}
