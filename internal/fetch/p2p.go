package fetch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shindosokuho/relay/internal/domain"
	"github.com/shindosokuho/relay/internal/relayerr"
)

// P2PQuake is one normalized entry from the community P2P earthquake
// summary feed. It is a thin, independent view from the telegram-fed
// earthquake module — spec §6's "current P2P info" is its own egress
// route, not the telegram-derived earthquake log.
type P2PQuake struct {
	ID           string
	OccurredAt   time.Time
	Hypocenter   domain.Hypocenter
	MaxIntensity domain.Intensity
}

type p2pRecordJSON struct {
	ID   string `json:"id"`
	Time string `json:"time"`
	Code int    `json:"code"`
	Earthquake struct {
		Hypocenter struct {
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Depth     int     `json:"depth"`
			Magnitude float64 `json:"magnitude"`
		} `json:"hypocenter"`
		MaxScale int `json:"maxScale"`
	} `json:"earthquake"`
}

// FetchP2P polls the P2P earthquake history endpoint and returns the
// most recent records, newest first, as delivered by the upstream.
func FetchP2P(ctx context.Context, c *Client, url string) ([]P2PQuake, error) {
	body, err := c.Get(ctx, "p2p", url)
	if err != nil {
		return nil, err
	}

	var records []p2pRecordJSON
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, relayerr.New("fetch.p2p.decode", relayerr.KindDecode, err)
	}

	out := make([]P2PQuake, 0, len(records))
	for _, rec := range records {
		if rec.Code != 551 {
			// Only earthquake-information records (code 551) carry a
			// hypocenter; other P2P record types are not part of this
			// feed's scope.
			continue
		}
		out = append(out, P2PQuake{
			ID:         rec.ID,
			OccurredAt: parseP2PTime(rec.Time),
			Hypocenter: domain.Hypocenter{
				Name:      rec.Earthquake.Hypocenter.Name,
				Latitude:  rec.Earthquake.Hypocenter.Latitude,
				Longitude: rec.Earthquake.Hypocenter.Longitude,
				Depth:     classifyP2PDepth(rec.Earthquake.Hypocenter.Depth),
				Magnitude: domain.KnownMagnitude(rec.Earthquake.Hypocenter.Magnitude),
			},
			MaxIntensity: p2pScaleToIntensity(rec.Earthquake.MaxScale),
		})
	}
	return out, nil
}

func parseP2PTime(raw string) time.Time {
	t, err := time.Parse("2006/01/02 15:04:05", raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func classifyP2PDepth(km int) domain.Depth {
	switch km {
	case 0:
		return domain.ShallowDepth()
	case -1:
		return domain.UnknownDepth()
	default:
		if km >= 700 {
			return domain.Over700Depth()
		}
		return domain.KnownDepthKM(km)
	}
}

// p2pScaleToIntensity maps P2P's tenths-of-intensity maxScale field
// (e.g. 45 == intensity 5-) onto the shared intensity enum.
func p2pScaleToIntensity(scale int) domain.Intensity {
	switch {
	case scale <= 0:
		return domain.IntensityNone
	case scale < 10:
		return domain.Intensity1
	case scale < 20:
		return domain.Intensity2
	case scale < 30:
		return domain.Intensity3
	case scale < 40:
		return domain.Intensity4
	case scale < 45:
		return domain.Intensity5Lower
	case scale < 50:
		return domain.Intensity5Upper
	case scale < 55:
		return domain.Intensity6Lower
	case scale < 60:
		return domain.Intensity6Upper
	default:
		return domain.Intensity7
	}
}
