// Package memory is a single-process store implementing the repository ports.
// A Store serializes all access behind one mutex; transactions hold that
// mutex for their whole duration and roll back by restoring a snapshot.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"eventreg/internal/domain"
)

type counterKey struct {
	eventID string
	key     string
}

type counter struct {
	limited   bool
	remaining int
	total     int
}

// state is copy-on-write: stored entries are never mutated in place, so a
// shallow clone of the containers is a consistent snapshot.
type state struct {
	events        map[string]*domain.Event
	counters      map[counterKey]counter
	counterOrder  map[string][]string
	reservations  map[string]*domain.ReservationToken
	registrations map[string]*domain.Registration
	regOrder      []string
	audit         []*domain.AuditEntry
}

func newState() *state {
	return &state{
		events:        make(map[string]*domain.Event),
		counters:      make(map[counterKey]counter),
		counterOrder:  make(map[string][]string),
		reservations:  make(map[string]*domain.ReservationToken),
		registrations: make(map[string]*domain.Registration),
	}
}

func (st *state) clone() *state {
	order := make(map[string][]string, len(st.counterOrder))
	for k, v := range st.counterOrder {
		order[k] = slices.Clone(v)
	}
	return &state{
		events:        maps.Clone(st.events),
		counters:      maps.Clone(st.counters),
		counterOrder:  order,
		reservations:  maps.Clone(st.reservations),
		registrations: maps.Clone(st.registrations),
		regOrder:      slices.Clone(st.regOrder),
		audit:         slices.Clone(st.audit),
	}
}

// Store holds all data of the memory backend and is its TxManager.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{state: newState()}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock acquires the store mutex unless ctx already runs inside one of this
// store's transactions, and returns the matching unlock.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithinTx implements domain.TxManager.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := s.state.clone()
	defer func() {
		if p := recover(); p != nil {
			s.state = saved
			panic(p)
		}
		if err != nil {
			s.state = saved
		}
	}()
	return fn(context.WithValue(ctx, txKey{}, s))
}

// Ping always succeeds; it lets the store back the health check.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

var _ domain.TxManager = (*Store)(nil)

// page slices items per the pagination params.
func page[T any](items []T, p domain.PaginationParams) []T {
	off := p.Offset()
	if off >= len(items) {
		return []T{}
	}
	items = items[off:]
	if limit := p.Limit(); limit >= 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
