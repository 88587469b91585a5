package resolve

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/sentinel/internal/models"
)

type eventRef struct {
	id uuid.UUID
	ts time.Time
}

// Linker performs the temporal join from a resolved source record to the
// canonical event with the greatest timestamp not after the record's
// timestamp. Per-entity event lists are sorted ascending once at
// construction; Link is O(log n) per record. The sorted-ascending order is
// an invariant of the struct, never re-derived per call.
type Linker struct {
	byEntity map[string][]eventRef
}

// NewLinker indexes canonical events by entity. Events without an entity
// reference are skipped: they can never be the target of an entity join.
func NewLinker(events []models.Event) *Linker {
	l := &Linker{byEntity: make(map[string][]eventRef)}
	for i := range events {
		ev := &events[i]
		if ev.EntityID == nil {
			continue
		}
		l.byEntity[*ev.EntityID] = append(l.byEntity[*ev.EntityID], eventRef{id: ev.EventID, ts: ev.Timestamp})
	}
	for id := range l.byEntity {
		refs := l.byEntity[id]
		sort.Slice(refs, func(a, b int) bool { return refs[a].ts.Before(refs[b].ts) })
	}
	return l
}

// Link returns the event for entityID with the greatest timestamp ≤ ts.
// The second return is false when the entity has no event at or before ts;
// such records stay unlinked in the raw store.
func (l *Linker) Link(entityID string, ts time.Time) (uuid.UUID, bool) {
	refs := l.byEntity[entityID]
	if len(refs) == 0 {
		return uuid.Nil, false
	}
	// First index with timestamp strictly after ts; the candidate is the
	// one before it.
	idx := sort.Search(len(refs), func(i int) bool { return refs[i].ts.After(ts) })
	if idx == 0 {
		return uuid.Nil, false
	}
	return refs[idx-1].id, true
}

// Events returns the number of indexed events for an entity, used by the
// importer for batch reporting.
func (l *Linker) Events(entityID string) int {
	return len(l.byEntity[entityID])
}
