package telegram

import (
	"bytes"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/shindosokuho/relay/internal/domain"
)

func newByteReader(b []byte) io.Reader { return bytes.NewReader(b) }

// coordinatePattern matches the upstream hypocenter coordinate encoding
// "([+-]lat)([+-]lon)([+-]depth_meters)", spec §3/§4.3.
var coordinatePattern = regexp.MustCompile(`([+-][0-9.]+)([+-][0-9.]+)(?:([+-][0-9.]+))?`)

// parseHypocenterCoordinate parses the JMA coordinate string into a
// Hypocenter's lat/lon/depth. "震源要素不明" ("hypocenter elements unknown")
// means the sentinels should be kept, spec §4.3.
func parseHypocenterCoordinate(coord, description string) (lat, lon float64, depth domain.Depth, ok bool) {
	if strings.Contains(description, "震源要素不明") {
		return 0, 0, domain.UnknownDepth(), false
	}

	m := coordinatePattern.FindStringSubmatch(coord)
	if m == nil {
		return 0, 0, domain.UnknownDepth(), false
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, 0, domain.UnknownDepth(), false
	}
	lon, err = strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, 0, domain.UnknownDepth(), false
	}

	if m[3] == "" {
		return lat, lon, domain.UnknownDepth(), true
	}

	depthMeters, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return lat, lon, domain.UnknownDepth(), true
	}
	depthKM := int(-depthMeters / 1000)
	return lat, lon, classifyDepthKM(depthKM), true
}

// classifyDepthKM maps a signed depth-in-km reading to the Depth sentinel
// set, spec §3: "depth sentinels (0->Shallow, -1->Unknown, 700->Over
// 700km)".
func classifyDepthKM(km int) domain.Depth {
	switch km {
	case 0:
		return domain.ShallowDepth()
	case -1:
		return domain.UnknownDepth()
	case 700:
		return domain.Over700Depth()
	default:
		return domain.KnownDepthKM(km)
	}
}

// parseMagnitude parses a raw magnitude string, treating "NaN" and "1.0" as
// the unknown sentinel per spec §4.3.
func parseMagnitude(raw string) domain.Magnitude {
	if raw == "NaN" || raw == "1.0" {
		return domain.UnknownMagnitude()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return domain.UnknownMagnitude()
	}
	return domain.KnownMagnitude(v)
}
