package fetch

import (
	"context"
	"encoding/json"

	"github.com/shindosokuho/relay/internal/domain"
	"github.com/shindosokuho/relay/internal/relayerr"
)

// ShakeStation is one station's current shake-level reading.
type ShakeStation struct {
	Code      string
	Name      string
	Intensity domain.Intensity
}

// ShakeLevel is a snapshot of the shake-level gauge feed, spec §6
// "shake-level snapshot".
type ShakeLevel struct {
	Stations []ShakeStation
}

type shakeLevelRecordJSON struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Scale int    `json:"scale"`
}

// FetchShakeLevel polls the shake-level gauge JSON endpoint.
func FetchShakeLevel(ctx context.Context, c *Client, url string) (ShakeLevel, error) {
	body, err := c.Get(ctx, "shakelevel", url)
	if err != nil {
		return ShakeLevel{}, err
	}

	var records []shakeLevelRecordJSON
	if err := json.Unmarshal(body, &records); err != nil {
		return ShakeLevel{}, relayerr.New("fetch.shakelevel.decode", relayerr.KindDecode, err)
	}

	stations := make([]ShakeStation, 0, len(records))
	for _, rec := range records {
		stations = append(stations, ShakeStation{
			Code:      rec.Code,
			Name:      rec.Name,
			Intensity: p2pScaleToIntensity(rec.Scale),
		})
	}
	return ShakeLevel{Stations: stations}, nil
}
