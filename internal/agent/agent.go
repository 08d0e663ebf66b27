package agent

import (
	"github.com/siltlabs/silt/internal/base"
	"github.com/siltlabs/silt/internal/booked"
	"github.com/siltlabs/silt/internal/clock"
	"github.com/siltlabs/silt/internal/store"
)

// Agent is one node of the replicated store: its stable identity, its
// logical clock, its SQLite-backed change-capture store and its version
// ledger.
type Agent struct {
	siteID base.SiteID
	clock  clock.Source
	store  *store.Store
	booked *booked.Booked
}

// New assembles an agent from its parts.
func New(siteID base.SiteID, clk clock.Source, st *store.Store, bk *booked.Booked) *Agent {
	return &Agent{
		siteID: siteID,
		clock:  clk,
		store:  st,
		booked: bk,
	}
}

// SiteID returns the node's stable writer identity.
func (a *Agent) SiteID() base.SiteID {
	return a.siteID
}

// Clock returns the node's logical timestamp source.
func (a *Agent) Clock() clock.Source {
	return a.clock
}

// Store returns the node's change-capture store.
func (a *Agent) Store() *store.Store {
	return a.store
}

// Booked returns the node's version ledger.
func (a *Agent) Booked() *booked.Booked {
	return a.booked
}
