// Package store provides the shared toast store.
//
// The store owns the canonical ordered sequence of active toasts plus two
// positional index sets: toasts marked for deletion (still animating out) and
// toasts under active drag. A toast's master index is stable for its lifetime
// in the store; indices only shift when PurgeAll removes everything at once,
// which also clears both sets, so the sets always reference valid indices.
package store

import (
	"sync"

	"github.com/jmylchreest/toastd/internal/model"
)

// ChangeType indicates the type of store change.
type ChangeType int

const (
	// ChangeTypeShow indicates a toast was appended.
	ChangeTypeShow ChangeType = iota
	// ChangeTypeMark indicates a toast was marked for deletion.
	ChangeTypeMark
	// ChangeTypeDrag indicates the drag set changed.
	ChangeTypeDrag
	// ChangeTypePurge indicates all toasts were purged.
	ChangeTypePurge
)

// ChangeEvent signals a store mutation to subscribers.
type ChangeEvent struct {
	Type  ChangeType
	Index int    // Master index the change applies to (-1 for purge)
	ID    string // Toast ID where applicable
}

// Snapshot is an immutable view of the store taken under the lock. Timer
// callbacks and viewers always read a fresh snapshot at the moment they act,
// never state captured when a timer was armed.
type Snapshot struct {
	Toasts        []model.Toast
	MarkedDeleted map[int]bool
	Dragging      map[int]bool
}

// IsMarked reports whether the toast at master index i is marked deleted.
func (s Snapshot) IsMarked(i int) bool { return s.MarkedDeleted[i] }

// IsDragging reports whether the toast at master index i is under drag.
func (s Snapshot) IsDragging(i int) bool { return s.Dragging[i] }

// AnyDragging reports whether any toast is under active drag.
func (s Snapshot) AnyDragging() bool { return len(s.Dragging) > 0 }

// AllMarked reports whether every toast in a non-empty sequence is marked
// deleted — the purge trigger condition.
func (s Snapshot) AllMarked() bool {
	return len(s.Toasts) > 0 && len(s.MarkedDeleted) == len(s.Toasts)
}

// Store manages the shared toast sequence with thread-safe operations.
type Store struct {
	mu       sync.RWMutex
	toasts   []model.Toast
	index    map[string]int // toast ID -> master index
	marked   map[int]bool   // master indices marked for deletion
	dragging map[int]bool   // master indices under active drag

	subscribers []chan ChangeEvent
	closed      bool
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		toasts:      make([]model.Toast, 0),
		index:       make(map[string]int),
		marked:      make(map[int]bool),
		dragging:    make(map[int]bool),
		subscribers: make([]chan ChangeEvent, 0),
	}
}

// Show appends a toast to the sequence. Arrival order is display order.
func (s *Store) Show(t model.Toast) error {
	t.Normalize()
	if err := t.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}

	idx := len(s.toasts)
	s.toasts = append(s.toasts, t)
	s.index[t.ID] = idx
	s.mu.Unlock()

	s.notifyChange(ChangeEvent{Type: ChangeTypeShow, Index: idx, ID: t.ID})
	return nil
}

// Hide marks the toast with the given ID for deletion. Unknown IDs are a
// no-op, and marking twice has no additional effect.
func (s *Store) Hide(id string) {
	s.mu.Lock()
	idx, exists := s.index[id]
	if !exists || s.closed || s.marked[idx] {
		s.mu.Unlock()
		return
	}
	s.marked[idx] = true
	s.mu.Unlock()

	s.notifyChange(ChangeEvent{Type: ChangeTypeMark, Index: idx, ID: id})
}

// HideIndex marks the toast at the given master index for deletion.
// Out-of-range indices and already-marked toasts are a no-op.
func (s *Store) HideIndex(idx int) {
	s.mu.Lock()
	if s.closed || idx < 0 || idx >= len(s.toasts) || s.marked[idx] {
		s.mu.Unlock()
		return
	}
	s.marked[idx] = true
	id := s.toasts[idx].ID
	s.mu.Unlock()

	s.notifyChange(ChangeEvent{Type: ChangeTypeMark, Index: idx, ID: id})
}

// PurgeAll clears the sequence and both index sets as a single observable
// transition. Callers invoke it once every toast is marked deleted; purging
// an empty or partially-marked store still clears everything.
func (s *Store) PurgeAll() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.toasts = make([]model.Toast, 0)
	s.index = make(map[string]int)
	s.marked = make(map[int]bool)
	s.dragging = make(map[int]bool)
	s.mu.Unlock()

	s.notifyChange(ChangeEvent{Type: ChangeTypePurge, Index: -1})
}

// MarkDragging adds the master index to the drag set. Multiple toasts may be
// under drag simultaneously.
func (s *Store) MarkDragging(idx int) {
	s.mu.Lock()
	if s.closed || idx < 0 || idx >= len(s.toasts) {
		s.mu.Unlock()
		return
	}
	s.dragging[idx] = true
	id := s.toasts[idx].ID
	s.mu.Unlock()

	s.notifyChange(ChangeEvent{Type: ChangeTypeDrag, Index: idx, ID: id})
}

// UnmarkDragging removes the master index from the drag set.
func (s *Store) UnmarkDragging(idx int) {
	s.mu.Lock()
	if s.closed || !s.dragging[idx] {
		s.mu.Unlock()
		return
	}
	delete(s.dragging, idx)
	var id string
	if idx >= 0 && idx < len(s.toasts) {
		id = s.toasts[idx].ID
	}
	s.mu.Unlock()

	s.notifyChange(ChangeEvent{Type: ChangeTypeDrag, Index: idx, ID: id})
}

// IndexOf resolves a toast ID to its current master index.
func (s *Store) IndexOf(id string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, exists := s.index[id]
	return idx, exists
}

// Count returns the number of toasts in the sequence, marked or not.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.toasts)
}

// Snapshot returns an immutable copy of the current store state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Toasts:        make([]model.Toast, len(s.toasts)),
		MarkedDeleted: make(map[int]bool, len(s.marked)),
		Dragging:      make(map[int]bool, len(s.dragging)),
	}
	copy(snap.Toasts, s.toasts)
	for i := range s.marked {
		snap.MarkedDeleted[i] = true
	}
	for i := range s.dragging {
		snap.Dragging[i] = true
	}
	return snap
}

// Subscribe returns a channel that receives change events.
func (s *Store) Subscribe() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan ChangeEvent, 16)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch <-chan ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close releases resources and closes all subscriber channels.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil
	return nil
}

// notifyChange sends a change event to all subscribers (non-blocking).
func (s *Store) notifyChange(event ChangeEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
}

// Errors
var (
	ErrStoreClosed = storeError("store is closed")
)

type storeError string

func (e storeError) Error() string {
	return string(e)
}
