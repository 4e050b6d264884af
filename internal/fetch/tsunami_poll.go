package fetch

import (
	"context"
	"encoding/xml"
	"strings"
	"sync"

	"github.com/shindosokuho/relay/internal/domain"
	"github.com/shindosokuho/relay/internal/relayerr"
	"github.com/shindosokuho/relay/internal/telegram"
)

// TsunamiPoller is the JMA Atom-feed tsunami fallback poller, added per
// SPEC_FULL §10 item 1 (original_source modules/tsunami/main.py
// get_info/parse_jma_list): used only when the dmdata module is
// disabled. It keeps a previous-feed snapshot so an unchanged poll is a
// no-op, and always parses the latest expectation entry before any
// watch entries, since watches carry revisions that must apply on top.
type TsunamiPoller struct {
	mu       sync.Mutex
	seenIDs  map[string]bool
}

// NewTsunamiPoller returns a poller with an empty dedupe set.
func NewTsunamiPoller() *TsunamiPoller {
	return &TsunamiPoller{seenIDs: make(map[string]bool)}
}

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID    string `xml:"id"`
	Title string `xml:"title"`
	Link  struct {
		Href string `xml:"href,attr"`
	} `xml:"link"`
}

// TsunamiPollResult carries whatever new expectation/observation events
// the poll turned up, expectation always populated before observation.
type TsunamiPollResult struct {
	Expectation    domain.TsunamiExpectation
	HasExpectation bool
	Observation    domain.TsunamiObservation
	HasObservation bool
}

// Poll fetches the Atom feed, skips entries already seen, and parses
// the underlying telegram XML for any new tsunami entries it finds.
func (p *TsunamiPoller) Poll(ctx context.Context, c *Client, feedURL string) (TsunamiPollResult, error) {
	body, err := c.Get(ctx, "tsunami_atom", feedURL)
	if err != nil {
		return TsunamiPollResult{}, err
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return TsunamiPollResult{}, relayerr.New("fetch.tsunami_atom.decode", relayerr.KindDecode, err)
	}

	p.mu.Lock()
	var expectationEntries, watchEntries []atomEntry
	for _, e := range feed.Entries {
		if p.seenIDs[e.ID] {
			continue
		}
		switch {
		case strings.Contains(e.ID, "VTSE41"):
			expectationEntries = append(expectationEntries, e)
		case strings.Contains(e.ID, "VTSE51"):
			watchEntries = append(watchEntries, e)
		}
	}
	p.mu.Unlock()

	var result TsunamiPollResult

	for _, e := range expectationEntries {
		telegramBody, err := c.Get(ctx, "tsunami_atom_entry", e.Link.Href)
		if err != nil {
			continue
		}
		exp, err := telegram.ParseTsunamiExpectation(telegramBody)
		if err != nil {
			continue
		}
		result.Expectation = exp
		result.HasExpectation = true
		p.markSeen(e.ID)
	}

	for _, e := range watchEntries {
		telegramBody, err := c.Get(ctx, "tsunami_atom_entry", e.Link.Href)
		if err != nil {
			continue
		}
		if !telegram.ObservationTitleMatches(e.Title) {
			p.markSeen(e.ID)
			continue
		}
		obs, err := telegram.ParseTsunamiObservation(telegramBody)
		if err != nil {
			continue
		}
		result.Observation = obs
		result.HasObservation = true
		p.markSeen(e.ID)
	}

	return result, nil
}

func (p *TsunamiPoller) markSeen(id string) {
	p.mu.Lock()
	p.seenIDs[id] = true
	p.mu.Unlock()
}
