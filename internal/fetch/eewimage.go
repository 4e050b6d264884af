package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	_ "image/gif"
	"time"

	"github.com/shindosokuho/relay/internal/domain"
	"github.com/shindosokuho/relay/internal/intensitymap"
	"github.com/shindosokuho/relay/internal/refdata"
	"github.com/shindosokuho/relay/internal/relayerr"
)

// eewImageMetaJSON is the subset of the legacy EEW JSON sidecar this
// fetcher needs: the hypocenter and timing detail the pixel image can't
// carry on its own.
type eewImageMetaJSON struct {
	EventID   string  `json:"report_id"`
	Name      string  `json:"place"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	DepthKM   int     `json:"depth"`
	Magnitude float64 `json:"magnitude"`
	IsPlum    bool    `json:"is_plum"`
	IsWarn    bool    `json:"is_warning"`
	OriginUnixMs int64 `json:"origin_time"`
	ReportNumber int  `json:"report_number"`
}

// FetchEEWImage polls the legacy image-encoded EEW endpoint: a GIF of
// per-station expected intensity plus a JSON sidecar of hypocenter
// detail, combined into the kmoni side of the arbitrator's Input, spec
// §4.6/§4.3.
func FetchEEWImage(ctx context.Context, c *Client, imageURL, jsonURL string, tables refdata.Tables) (domain.EEWEvent, error) {
	imgBody, err := c.Get(ctx, "eew_image", imageURL)
	if err != nil {
		return domain.EEWEvent{}, err
	}
	metaBody, err := c.Get(ctx, "eew_json", jsonURL)
	if err != nil {
		return domain.EEWEvent{}, err
	}

	img, _, err := image.Decode(bytes.NewReader(imgBody))
	if err != nil {
		return domain.EEWEvent{}, relayerr.New("fetch.eew_image.decode", relayerr.KindDecode, err)
	}

	var meta eewImageMetaJSON
	if err := json.Unmarshal(metaBody, &meta); err != nil {
		return domain.EEWEvent{}, relayerr.New("fetch.eew_json.decode", relayerr.KindDecode, err)
	}

	result := intensitymap.Decode(img, tables.ObservationStations, tables.AreaPositions)

	areas := make([]domain.EEWAreaForecast, 0, len(result.AreaIntensities))
	for _, a := range result.AreaIntensities {
		areas = append(areas, domain.EEWAreaForecast{
			AreaCode: a.SubRegionCode,
			AreaName: a.AreaName,
			Intensity: domain.IntensityInterval{Lowest: a.Intensity, Highest: a.Intensity, HasUpper: true},
		})
	}

	return domain.EEWEvent{
		ParseOK:   true,
		Lifecycle: domain.EEWNormal,
		EventID:   meta.EventID,
		Serial:    meta.ReportNumber,
		Hypocenter: domain.Hypocenter{
			Name:      meta.Name,
			Latitude:  meta.Latitude,
			Longitude: meta.Longitude,
			Depth:     classifyP2PDepth(meta.DepthKM),
			Magnitude: domain.KnownMagnitude(meta.Magnitude),
		},
		IsPlum:         meta.IsPlum,
		IsWarn:         meta.IsWarn,
		RecommendAreas: result.RecommendAreas,
		Areas:          areas,
		Origin:         domain.EpochTime{Time: time.UnixMilli(meta.OriginUnixMs).UTC()},
		Source:         domain.EEWSourceKmoni,
	}, nil
}
