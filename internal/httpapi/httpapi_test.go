package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shindosokuho/relay/internal/domain"
	"github.com/shindosokuho/relay/internal/fetch"
	"github.com/shindosokuho/relay/internal/modstate"
)

func newTestServer() (*Server, *httptest.Server) {
	s := NewServer(modstate.NewEEWStore(), modstate.NewTsunamiStore(), modstate.NewEarthquakeLog(), nil, nil)
	return s, httptest.NewServer(s.Handler())
}

func TestP2PReturnsNotReadyBeforeFirstSet(t *testing.T) {
	_, srv := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/p2p")
	if err != nil {
		t.Fatalf("GET /p2p: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before any snapshot, got %d", resp.StatusCode)
	}
}

func TestP2PReturnsSnapshotAfterSet(t *testing.T) {
	s, srv := newTestServer()
	defer srv.Close()

	s.P2P.Set([]fetch.P2PQuake{{ID: "1"}})

	resp, err := http.Get(srv.URL + "/p2p")
	if err != nil {
		t.Fatalf("GET /p2p: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var got []fetch.P2PQuake
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestEEWReturnsNotReadyBeforeArbitration(t *testing.T) {
	_, srv := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/eew")
	if err != nil {
		t.Fatalf("GET /eew: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestEEWReturnsCurrentAfterSet(t *testing.T) {
	s, srv := newTestServer()
	defer srv.Close()

	s.EEW.SetCurrent(domain.EEWEvent{EventID: "e1"})

	resp, err := http.Get(srv.URL + "/eew")
	if err != nil {
		t.Fatalf("GET /eew: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestEEWIncludesWaveFrontWhenTravelTimeTableIsWired(t *testing.T) {
	s, srv := newTestServer()
	defer srv.Close()

	s.TravelTime = []domain.TravelTimeRow{
		{DepthKM: 10, PTimeS: 0, STimeS: 0, DistanceKM: 0},
		{DepthKM: 10, PTimeS: 10, STimeS: 20, DistanceKM: 100},
	}
	s.EEW.SetCurrent(domain.EEWEvent{
		EventID:    "e2",
		Origin:     domain.EpochTime{Time: time.Now().Add(-5 * time.Second)},
		Hypocenter: domain.Hypocenter{Depth: domain.KnownDepthKM(10)},
	})

	resp, err := http.Get(srv.URL + "/eew")
	if err != nil {
		t.Fatalf("GET /eew: %v", err)
	}
	defer resp.Body.Close()

	var got struct {
		WaveFront *struct {
			HasPDistance bool `json:"HasPDistance"`
		} `json:"wave_front"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.WaveFront == nil {
		t.Fatalf("expected a wave_front estimate once the travel-time table is wired")
	}
}

func TestTsunamiReadyWhenEitherExpectationOrObservationSet(t *testing.T) {
	s, srv := newTestServer()
	defer srv.Close()

	s.Tsunami.SetExpectation(domain.TsunamiExpectation{})

	resp, err := http.Get(srv.URL + "/tsunami")
	if err != nil {
		t.Fatalf("GET /tsunami: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 once expectation alone is set, got %d", resp.StatusCode)
	}
}

func TestDMDataStatusNotReadyWhenClientNil(t *testing.T) {
	_, srv := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/dmdata/status")
	if err != nil {
		t.Fatalf("GET /dmdata/status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 when no dmdata client is wired, got %d", resp.StatusCode)
	}
}

func TestTimeSyncComputesDifference(t *testing.T) {
	_, srv := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/time-sync?t=1000")
	if err != nil {
		t.Fatalf("GET /time-sync: %v", err)
	}
	defer resp.Body.Close()

	var body timeSyncResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ServerTimestamp == 0 {
		t.Fatalf("expected a non-zero server timestamp")
	}
	if body.Difference <= 0 {
		t.Fatalf("expected a positive difference against a timestamp far in the past, got %d", body.Difference)
	}
}
