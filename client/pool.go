package client

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// Pool hands out RPC endpoints for one network in round-robin order and
// exposes the full endpoint list for fan-out operations. The endpoint set is
// static after construction; nothing is ever added or removed.
type Pool struct {
	endpoints []Endpoint
	cursor    atomic.Uint64
}

// NewPool creates a Pool over the given endpoints. A pool is always
// non-empty by construction.
func NewPool(endpoints []Endpoint) (*Pool, error) {
	if len(endpoints) == 0 {
		return nil, errors.New("pool requires at least one endpoint")
	}
	eps := make([]Endpoint, len(endpoints))
	copy(eps, endpoints)
	return &Pool{endpoints: eps}, nil
}

// Next returns the next endpoint in strict round-robin order, wrapping to
// the first after the last. Safe for concurrent use; under contention the
// ordering may be slightly unfair but the index is always in range.
func (p *Pool) Next() Endpoint {
	idx := p.cursor.Add(1) - 1
	return p.endpoints[idx%uint64(len(p.endpoints))]
}

// All returns every pooled endpoint, in construction order. The returned
// slice is a copy; callers cannot mutate the pool through it.
func (p *Pool) All() []Endpoint {
	eps := make([]Endpoint, len(p.endpoints))
	copy(eps, p.endpoints)
	return eps
}

// Len returns the number of pooled endpoints.
func (p *Pool) Len() int {
	return len(p.endpoints)
}
