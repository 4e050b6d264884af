// Package intensitymap decodes the vendor's expected-intensity GIF into
// per-station and per-area intensity classes: HSV pixel sampling at fixed
// station coordinates, a piecewise polynomial mapping, bucketing into
// named intensity classes, and per-sub-region aggregation. Grounded on
// original_source/internal/intensity2color.py, math carried over verbatim
// since it is the vendor's own fixed calibration curve, not something to
// re-derive.
package intensitymap

import (
	"image"
	"math"

	"github.com/shindosokuho/relay/internal/domain"
	"github.com/shindosokuho/relay/internal/refdata"
)

// StationIntensity is one station's decoded reading.
type StationIntensity struct {
	Station   refdata.ObservationStation
	Intensity domain.Intensity
}

// AreaIntensity is one sub-region's rolled-up maximum reading.
type AreaIntensity struct {
	SubRegionCode string
	AreaName      string
	Intensity     domain.Intensity
}

// Result is the decoder's output, spec §4.6: "{station_intensities,
// area_intensities, recommend_areas}".
type Result struct {
	StationIntensities []StationIntensity
	AreaIntensities    []AreaIntensity
	RecommendAreas     bool
}

// Decode samples img at each station's pixel coordinate, maps the sampled
// HSV to an intensity class, and rolls the per-station readings up to
// per-sub-region maxima.
func Decode(img image.Image, stations []refdata.ObservationStation, areaPositions map[string]refdata.AreaPosition) Result {
	bounds := img.Bounds()

	var stationResults []StationIntensity
	areaMax := make(map[string]domain.Intensity)

	for _, st := range stations {
		pt := image.Pt(st.Point.X, st.Point.Y)
		if !pt.In(bounds) {
			continue
		}

		h, s, v := sampleHSV(img, pt)
		p := colorToScalar(h, s, v)
		intensity, ok := bucket(p)
		if !ok {
			continue
		}

		stationResults = append(stationResults, StationIntensity{Station: st, Intensity: intensity})

		if cur, exists := areaMax[st.SubRegionCode]; !exists || intensity > cur {
			areaMax[st.SubRegionCode] = intensity
		}
	}

	var areaResults []AreaIntensity
	recommend := false
	for code, intensity := range areaMax {
		name := code
		if pos, ok := areaPositions[code]; ok {
			name = pos.Name
		}
		areaResults = append(areaResults, AreaIntensity{SubRegionCode: code, AreaName: name, Intensity: intensity})
		if domain.AreaMaxIntensity(intensity) {
			recommend = true
		}
	}

	return Result{
		StationIntensities: stationResults,
		AreaIntensities:    areaResults,
		RecommendAreas:     recommend,
	}
}

// sampleHSV reads the pixel at pt and converts it to normalized (0..1) HSV.
func sampleHSV(img image.Image, pt image.Point) (h, s, v float64) {
	r, g, b, _ := img.At(pt.X, pt.Y).RGBA()
	// RGBA() returns 16-bit-scaled components; reduce to 8-bit 0..255.
	rf, gf, bf := float64(r>>8)/255, float64(g>>8)/255, float64(b>>8)/255
	return rgbToHSV(rf, gf, bf)
}

func rgbToHSV(r, g, b float64) (h, s, v float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	v = max
	d := max - min

	if max == 0 {
		s = 0
	} else {
		s = d / max
	}

	if d == 0 {
		h = 0
	} else {
		switch max {
		case r:
			h = math.Mod((g-b)/d, 6)
		case g:
			h = (b-r)/d + 2
		default:
			h = (r-g)/d + 4
		}
		h /= 6
		if h < 0 {
			h += 1
		}
	}
	return h, s, v
}

// colorToScalar maps normalized HSV to the vendor's fixed piecewise
// polynomial scalar, spec §4.6 step 2.
func colorToScalar(h, s, v float64) float64 {
	var p float64
	if v > 0.1 && s > 0.75 {
		switch {
		case h > 0.1476:
			p = 280.31*pow(h, 6) - 916.05*pow(h, 5) + 1142.6*pow(h, 4) - 709.95*pow(h, 3) + 234.65*pow(h, 2) - 40.27*h + 3.2217
		case h > 0.001:
			p = 151.4*pow(h, 4) - 49.32*pow(h, 3) + 6.753*pow(h, 2) - 2.481*h + 0.9033
		default:
			p = -0.005171*pow(v, 2) - 0.3282*v + 1.2236
		}
	}
	if p < 0 {
		p = 0
	}
	return p
}

func pow(x float64, n int) float64 { return math.Pow(x, float64(n)) }

// bucket converts a raw polynomial scalar to an intensity class, spec §4.6
// step 3. Returns ok=false for values below the lowest bucket (dropped).
func bucket(p float64) (domain.Intensity, bool) {
	scalar := roundTo(p*10-3, 2)
	switch {
	case scalar < 0.5:
		return domain.IntensityNone, false
	case scalar < 1.5:
		return domain.Intensity1, true
	case scalar < 2.5:
		return domain.Intensity2, true
	case scalar < 3.5:
		return domain.Intensity3, true
	case scalar < 4.5:
		return domain.Intensity4, true
	case scalar < 5.0:
		return domain.Intensity5Lower, true
	case scalar < 5.5:
		return domain.Intensity5Upper, true
	case scalar < 6.0:
		return domain.Intensity6Lower, true
	case scalar < 6.5:
		return domain.Intensity6Upper, true
	default:
		return domain.Intensity7, true
	}
}

func roundTo(v float64, places int) float64 {
	mult := math.Pow(10, float64(places))
	return math.Round(v*mult) / mult
}
