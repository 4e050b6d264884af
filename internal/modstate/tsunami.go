package modstate

import "github.com/shindosokuho/relay/internal/domain"

// TsunamiStore holds the module's two owned views: the latest
// expectation telegram/poll result and the latest observation telegram,
// read independently by the HTTP layer's tsunami-totals route.
type TsunamiStore struct {
	expectation Snapshot[domain.TsunamiExpectation]
	observation Snapshot[domain.TsunamiObservation]
}

// NewTsunamiStore returns an empty store.
func NewTsunamiStore() *TsunamiStore {
	return &TsunamiStore{}
}

func (s *TsunamiStore) SetExpectation(e domain.TsunamiExpectation) { s.expectation.Set(e) }
func (s *TsunamiStore) SetObservation(o domain.TsunamiObservation) { s.observation.Set(o) }

func (s *TsunamiStore) Expectation() (domain.TsunamiExpectation, bool) { return s.expectation.Get() }
func (s *TsunamiStore) Observation() (domain.TsunamiObservation, bool) { return s.observation.Get() }
