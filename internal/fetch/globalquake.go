package fetch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shindosokuho/relay/internal/domain"
	"github.com/shindosokuho/relay/internal/relayerr"
)

// GlobalQuakeEntry is one record from the global seismicity feed, spec
// §6 "global-seismicity list". This feed has no Japan-specific intensity
// concept, so it carries only magnitude.
type GlobalQuakeEntry struct {
	Place     string
	Magnitude domain.Magnitude
	Latitude  float64
	Longitude float64
	OccurredAt time.Time
}

type globalQuakeRecordJSON struct {
	Place     string  `json:"place"`
	Magnitude float64 `json:"magnitude"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	TimeUnixMs int64  `json:"time"`
}

// FetchGlobalQuake polls the global seismicity JSON endpoint.
func FetchGlobalQuake(ctx context.Context, c *Client, url string) ([]GlobalQuakeEntry, error) {
	body, err := c.Get(ctx, "globalquake", url)
	if err != nil {
		return nil, err
	}

	var records []globalQuakeRecordJSON
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, relayerr.New("fetch.globalquake.decode", relayerr.KindDecode, err)
	}

	out := make([]GlobalQuakeEntry, 0, len(records))
	for _, rec := range records {
		out = append(out, GlobalQuakeEntry{
			Place:      rec.Place,
			Magnitude:  domain.KnownMagnitude(rec.Magnitude),
			Latitude:   rec.Latitude,
			Longitude:  rec.Longitude,
			OccurredAt: time.UnixMilli(rec.TimeUnixMs).UTC(),
		})
	}
	return out, nil
}
