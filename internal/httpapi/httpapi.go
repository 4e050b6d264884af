// Package httpapi exposes the thin, read-only HTTP accessors over
// module state from spec §6 Egress: current P2P info and arbitrated
// EEW, shake-level snapshot, tsunami totals, global-seismicity list,
// DMData heartbeat, and a time-sync endpoint, plus a Prometheus
// /metrics route. Every accessor returns 404 NotReady when the backing
// module state has never been populated, per spec §7's propagation
// policy.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shindosokuho/relay/internal/dmdata"
	"github.com/shindosokuho/relay/internal/domain"
	"github.com/shindosokuho/relay/internal/fetch"
	"github.com/shindosokuho/relay/internal/metrics"
	"github.com/shindosokuho/relay/internal/modstate"
	"github.com/shindosokuho/relay/internal/pswave"
)

// Server wires module-owned state into a small http.Handler. It holds
// no business logic, only read accessors and the notReady check.
type Server struct {
	EEW        *modstate.EEWStore
	Tsunami    *modstate.TsunamiStore
	Earthquake *modstate.EarthquakeLog
	DMData     *dmdata.Client
	Metrics    *metrics.Registry

	// TravelTime backs the /eew wavefront estimate; nil disables it.
	TravelTime []domain.TravelTimeRow

	P2P          modstate.Snapshot[[]fetch.P2PQuake]
	ShakeLevel   modstate.Snapshot[fetch.ShakeLevel]
	GlobalQuakes modstate.Snapshot[[]fetch.GlobalQuakeEntry]
}

// NewServer returns a Server wired to the given module stores.
func NewServer(eew *modstate.EEWStore, tsunami *modstate.TsunamiStore, eq *modstate.EarthquakeLog, dm *dmdata.Client, reg *metrics.Registry) *Server {
	return &Server{EEW: eew, Tsunami: tsunami, Earthquake: eq, DMData: dm, Metrics: reg}
}

// Handler builds the routed http.Handler. Call once at boot.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/p2p", s.handleP2P)
	mux.HandleFunc("/eew", s.handleEEW)
	mux.HandleFunc("/shake-level", s.handleShakeLevel)
	mux.HandleFunc("/tsunami", s.handleTsunami)
	mux.HandleFunc("/global-quakes", s.handleGlobalQuakes)
	mux.HandleFunc("/dmdata/status", s.handleDMDataStatus)
	mux.HandleFunc("/time-sync", s.handleTimeSync)
	if s.Metrics != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.Metrics.Gatherer(), promhttp.HandlerOpts{}))
	}
	return mux
}

type notReadyResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeNotReady(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, notReadyResponse{Error: "not ready"})
}

func (s *Server) handleP2P(w http.ResponseWriter, r *http.Request) {
	quakes, ok := s.P2P.Get()
	if !ok {
		writeNotReady(w)
		return
	}
	writeJSON(w, http.StatusOK, quakes)
}

type eewResponse struct {
	domain.EEWEvent
	WaveFront *pswave.Distances `json:"wave_front,omitempty"`
}

// handleEEW serves the arbitrated EEW event, plus a best-effort
// P/S-wave wavefront distance estimate computed at request time from
// the event's depth and elapsed origin time.
func (s *Server) handleEEW(w http.ResponseWriter, r *http.Request) {
	ev, ok := s.EEW.Current()
	if !ok {
		writeNotReady(w)
		return
	}

	resp := eewResponse{EEWEvent: ev}
	if s.TravelTime != nil && !ev.IsCancel() && ev.Hypocenter.Depth.Kind == domain.DepthKnown {
		elapsed := time.Since(ev.Origin.Time).Seconds()
		if elapsed >= 0 {
			dist := pswave.Estimate(s.TravelTime, ev.Hypocenter.Depth.KM, elapsed)
			resp.WaveFront = &dist
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleShakeLevel(w http.ResponseWriter, r *http.Request) {
	sl, ok := s.ShakeLevel.Get()
	if !ok {
		writeNotReady(w)
		return
	}
	writeJSON(w, http.StatusOK, sl)
}

type tsunamiTotals struct {
	Expectation domain.TsunamiExpectation `json:"expectation"`
	Observation domain.TsunamiObservation `json:"observation"`
}

func (s *Server) handleTsunami(w http.ResponseWriter, r *http.Request) {
	expectation, hasExpectation := s.Tsunami.Expectation()
	observation, hasObservation := s.Tsunami.Observation()
	if !hasExpectation && !hasObservation {
		writeNotReady(w)
		return
	}
	writeJSON(w, http.StatusOK, tsunamiTotals{Expectation: expectation, Observation: observation})
}

func (s *Server) handleGlobalQuakes(w http.ResponseWriter, r *http.Request) {
	entries, ok := s.GlobalQuakes.Get()
	if !ok {
		writeNotReady(w)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleDMDataStatus(w http.ResponseWriter, r *http.Request) {
	if s.DMData == nil {
		writeNotReady(w)
		return
	}
	writeJSON(w, http.StatusOK, s.DMData.Status())
}

type timeSyncResponse struct {
	ServerTimestamp int64 `json:"server_timestamp"`
	Difference      int64 `json:"difference"`
}

// handleTimeSync implements spec §6's time-sync accessor: the caller
// may pass its own timestamp (milliseconds since epoch) as the "t"
// query parameter to measure clock skew; difference is zero when
// absent or unparsable.
func (s *Server) handleTimeSync(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UnixMilli()
	resp := timeSyncResponse{ServerTimestamp: now}
	if raw := r.URL.Query().Get("t"); raw != "" {
		var clientTS int64
		if _, err := fmt.Sscan(raw, &clientTS); err == nil {
			resp.Difference = now - clientTS
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
