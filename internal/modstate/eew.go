package modstate

import "github.com/shindosokuho/relay/internal/domain"

// EEWStore holds the three EEW views the arbitrator reasons over: the
// last streamed (SVIR) event, the last polled (kmoni) event, and the
// arbitrated merge the HTTP layer actually reads. Each is a separate
// Snapshot so the arbitrator can read both inputs and publish the
// output without taking out a log-wide lock (spec §3 "module state
// structs are owned by their module").
type EEWStore struct {
	svir    Snapshot[domain.EEWEvent]
	kmoni   Snapshot[domain.EEWEvent]
	current Snapshot[domain.EEWEvent]
}

// NewEEWStore returns an empty store.
func NewEEWStore() *EEWStore {
	return &EEWStore{}
}

func (s *EEWStore) SetSVIR(ev domain.EEWEvent)    { s.svir.Set(ev) }
func (s *EEWStore) SetKmoni(ev domain.EEWEvent)   { s.kmoni.Set(ev) }
func (s *EEWStore) SetCurrent(ev domain.EEWEvent) { s.current.Set(ev) }

func (s *EEWStore) SVIR() (domain.EEWEvent, bool)    { return s.svir.Get() }
func (s *EEWStore) Kmoni() (domain.EEWEvent, bool)   { return s.kmoni.Get() }
func (s *EEWStore) Current() (domain.EEWEvent, bool) { return s.current.Get() }
