package store

import (
	"leaseline.app/leaseline/core/db"
)

// Stores bundles the concrete store implementations over a single Querier,
// which may be the pool or an open transaction.
type Stores struct {
	q db.Querier
}

func NewStores(q db.Querier) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Negotiations() NegotiationStore {
	return newNegotiationStore(s.q)
}
