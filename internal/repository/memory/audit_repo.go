package memory

import (
	"context"
	"sort"

	"eventreg/internal/domain"
)

type auditRepository struct {
	store *Store
}

// NewAuditRepository returns an append-only AuditRepository backed by store.
func NewAuditRepository(store *Store) domain.AuditRepository {
	return &auditRepository{store: store}
}

func (r *auditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	defer r.store.lock(ctx)()
	c := *entry
	r.store.state.audit = append(r.store.state.audit, &c)
	return nil
}

func (r *auditRepository) ListByEvent(ctx context.Context, eventID string, p domain.PaginationParams) ([]*domain.AuditEntry, int, error) {
	defer r.store.lock(ctx)()
	var out []*domain.AuditEntry
	for _, e := range r.store.state.audit {
		if e.EventID == eventID {
			c := *e
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return page(out, p), len(out), nil
}
