package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shindosokuho/relay/internal/domain"
	"github.com/shindosokuho/relay/internal/metrics"
)

const p2pFixture = `[
  {"id":"1","time":"2024/01/01 00:00:00","code":551,
   "earthquake":{"hypocenter":{"name":"能登半島沖","latitude":37.5,"longitude":137.3,"depth":10,"magnitude":6.5},"maxScale":46}},
  {"id":"2","time":"2024/01/01 00:00:00","code":552,
   "earthquake":{"hypocenter":{"name":"ignored"},"maxScale":0}}
]`

func TestFetchP2PFiltersToEarthquakeRecordsAndMapsScale(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(p2pFixture))
	}))
	defer srv.Close()

	c := New(Config{Timeout: time.Second, MaxRetries: 0}, metrics.NewRegistry(), nil)
	quakes, err := FetchP2P(context.Background(), c, srv.URL)
	if err != nil {
		t.Fatalf("FetchP2P: %v", err)
	}
	if len(quakes) != 1 {
		t.Fatalf("expected only the code=551 record to survive, got %d", len(quakes))
	}
	if quakes[0].MaxIntensity != domain.Intensity5Upper {
		t.Fatalf("expected maxScale=46 to map to Intensity5Upper, got %v", quakes[0].MaxIntensity)
	}
	if quakes[0].Hypocenter.Depth.Kind != domain.DepthKnown || quakes[0].Hypocenter.Depth.KM != 10 {
		t.Fatalf("expected depth=10km, got %+v", quakes[0].Hypocenter.Depth)
	}
}
