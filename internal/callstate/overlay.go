package callstate

import (
	"sort"
	"sync"

	"github.com/dkeye/Sight/internal/domain"
)

// Overlay holds the annotations drawn over the video, including during the
// frozen-frame period where both sides draw against a static reference. On
// resume the peer's accumulated set is reconciled into the local one rather
// than replacing it, so nothing drawn while frozen is lost on either side.
type Overlay struct {
	mu         sync.Mutex
	frozen     bool
	capturedAt int64
	byID       map[string]domain.Annotation
}

func NewOverlay() *Overlay {
	return &Overlay{byID: make(map[string]domain.Annotation)}
}

// Add inserts one annotation, replacing any previous version with the same
// id.
func (o *Overlay) Add(a domain.Annotation) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.byID[a.ID] = a
}

// Clear drops every annotation.
func (o *Overlay) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.byID = make(map[string]domain.Annotation)
}

// Freeze enters frozen-frame mode. Freezing while already frozen keeps the
// original capture instant.
func (o *Overlay) Freeze(capturedAt int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.frozen {
		return
	}
	o.frozen = true
	o.capturedAt = capturedAt
}

func (o *Overlay) Frozen() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.frozen
}

// Resume leaves frozen mode and merges the peer's snapshot into the local
// set: union by id, with a colliding id resolving to the newer version. The
// merged overlay is returned in creation order.
func (o *Overlay) Resume(peer domain.FrozenFrame) []domain.Annotation {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.frozen = false
	o.capturedAt = 0
	for _, a := range peer.Annotations {
		if prev, ok := o.byID[a.ID]; ok && prev.CreatedAt > a.CreatedAt {
			continue
		}
		o.byID[a.ID] = a
	}
	return o.sortedLocked()
}

// Snapshot is the frame a resuming side sends so the peer can reconcile.
func (o *Overlay) Snapshot() domain.FrozenFrame {
	o.mu.Lock()
	defer o.mu.Unlock()
	return domain.FrozenFrame{
		CapturedAt:  o.capturedAt,
		Annotations: o.sortedLocked(),
	}
}

// Annotations returns the current set in creation order, id breaking ties.
func (o *Overlay) Annotations() []domain.Annotation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sortedLocked()
}

func (o *Overlay) sortedLocked() []domain.Annotation {
	out := make([]domain.Annotation, 0, len(o.byID))
	for _, a := range o.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}
