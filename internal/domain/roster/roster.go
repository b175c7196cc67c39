// Package roster holds the team-assignment state for one match setup:
// a pool of unassigned players and the two team columns, mutated by drag
// reorder events and quick-move commands.
package roster

import (
	"sort"
	"sync"
)

// ColumnID identifies one of the three assignment columns.
type ColumnID string

// Column identifiers.
const (
	Pool  ColumnID = "pool"
	TeamA ColumnID = "team_a"
	TeamB ColumnID = "team_b"
)

// ParseColumn validates a column identifier received over the wire.
func ParseColumn(s string) (ColumnID, error) {
	switch ColumnID(s) {
	case Pool, TeamA, TeamB:
		return ColumnID(s), nil
	default:
		return "", ErrUnknownColumn
	}
}

// Item is a player placed in a column. Identity is immutable; only the
// column membership changes.
type Item struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Snapshot is an immutable value of the three column sequences. Readers
// only ever observe committed snapshots, never a drag in progress.
type Snapshot struct {
	Pool  []Item `json:"pool"`
	TeamA []Item `json:"team_a"`
	TeamB []Item `json:"team_b"`
}

// Column returns the sequence for id. Unknown ids yield nil.
func (s Snapshot) Column(id ColumnID) []Item {
	switch id {
	case Pool:
		return s.Pool
	case TeamA:
		return s.TeamA
	case TeamB:
		return s.TeamB
	default:
		return nil
	}
}

// Total returns the number of items across all columns.
func (s Snapshot) Total() int {
	return len(s.Pool) + len(s.TeamA) + len(s.TeamB)
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Pool:  append([]Item(nil), s.Pool...),
		TeamA: append([]Item(nil), s.TeamA...),
		TeamB: append([]Item(nil), s.TeamB...),
	}
}

func (s *Snapshot) set(id ColumnID, items []Item) {
	switch id {
	case Pool:
		s.Pool = items
	case TeamA:
		s.TeamA = items
	case TeamB:
		s.TeamB = items
	}
}

// columns is the fixed iteration order used by reconciliation.
var columns = [...]ColumnID{Pool, TeamA, TeamB}

// dragState tracks the two-phase drag lifecycle.
type dragState int

const (
	idle dragState = iota
	dragging
)

// Roster owns the committed snapshot and, while a drag gesture is in
// flight, a working copy that consider events mutate. Finalize commits
// the working copy atomically; quick moves bypass the drag lifecycle.
type Roster struct {
	mu        sync.Mutex
	committed Snapshot
	working   Snapshot
	state     dragState
	version   uint64

	// universe maps every seeded item id to its canonical data so stale
	// or tampered drag payloads cannot invent players.
	universe map[int64]Item
}

// New seeds a roster from the active-player list: everyone starts in the
// pool, both teams empty.
func New(players []Item) *Roster {
	r := &Roster{universe: make(map[int64]Item, len(players))}
	for _, p := range players {
		if _, dup := r.universe[p.ID]; dup {
			continue
		}
		r.universe[p.ID] = p
		r.committed.Pool = append(r.committed.Pool, p)
	}
	return r
}

// Snapshot returns the last committed state. The returned value is a copy
// and safe to retain.
func (r *Roster) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.committed.clone()
}

// Version increments on every commit. Useful for change detection.
func (r *Roster) Version() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version
}

// Consider applies a provisional drag reorder: the drag layer reports the
// full item-id sequence it currently shows for col, and that sequence
// replaces the column wholesale in the working copy. A nil sequence is a
// no-op. Many considers may arrive per gesture; last applied wins.
func (r *Roster) Consider(col ColumnID, ids []int64) error {
	if _, err := ParseColumn(string(col)); err != nil {
		return err
	}
	if ids == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == idle {
		r.working = r.committed.clone()
		r.state = dragging
	}
	r.replace(&r.working, col, ids)
	return nil
}

// Finalize applies the drop sequence for col, reconciles the working copy
// so no seeded item is lost or duplicated, and commits it as the new
// snapshot. The gesture then returns to idle.
func (r *Roster) Finalize(col ColumnID, ids []int64) error {
	if _, err := ParseColumn(string(col)); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == idle {
		r.working = r.committed.clone()
	}
	if ids != nil {
		r.replace(&r.working, col, ids)
	}
	r.reconcile(&r.working)
	r.committed = r.working
	r.working = Snapshot{}
	r.state = idle
	r.version++
	return nil
}

// Move relocates one item to target, appending at the end. It is
// idempotent: moving an item to the column it already occupies changes
// nothing. Unknown ids are a silent no-op (stale event payloads). A
// quick move aborts any drag gesture in flight and commits directly.
func (r *Roster) Move(itemID int64, target ColumnID) error {
	if _, err := ParseColumn(string(target)); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	// Quick moves bypass the drag lifecycle entirely.
	r.working = Snapshot{}
	r.state = idle

	item, ok := r.universe[itemID]
	if !ok {
		return nil
	}
	for _, res := range r.committed.Column(target) {
		if res.ID == itemID {
			return nil
		}
	}

	next := r.committed.clone()
	for _, c := range columns {
		next.set(c, removeID(next.Column(c), itemID))
	}
	next.set(target, append(next.Column(target), item))
	r.committed = next
	r.version++
	return nil
}

// replace swaps col's sequence for the given ids, resolving each id
// against the universe (unknown ids dropped, duplicates collapsed) and
// pulling the ids out of the other columns of the same snapshot.
func (r *Roster) replace(s *Snapshot, col ColumnID, ids []int64) {
	items := make([]Item, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		item, ok := r.universe[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		items = append(items, item)
	}
	for _, c := range columns {
		if c == col {
			continue
		}
		s.set(c, removeAll(s.Column(c), seen))
	}
	s.set(col, items)
}

// reconcile restores the membership invariant on commit: every seeded
// item ends up in exactly one column. Items orphaned mid-gesture (their
// source column reported them gone before any column claimed them)
// return to the pool.
func (r *Roster) reconcile(s *Snapshot) {
	placed := make(map[int64]struct{}, len(r.universe))
	for _, c := range columns {
		kept := s.Column(c)[:0:0]
		for _, item := range s.Column(c) {
			if _, dup := placed[item.ID]; dup {
				continue
			}
			placed[item.ID] = struct{}{}
			kept = append(kept, item)
		}
		s.set(c, kept)
	}
	if len(placed) == len(r.universe) {
		return
	}
	// Restore lost items in seed order so the outcome is deterministic.
	for _, item := range r.seedOrder() {
		if _, ok := placed[item.ID]; !ok {
			s.Pool = append(s.Pool, item)
		}
	}
}

// seedOrder lists the universe in the original pool insertion order.
func (r *Roster) seedOrder() []Item {
	// The committed pool at seed time was insertion-ordered, but items
	// wander; sort by id for a stable fallback order instead.
	out := make([]Item, 0, len(r.universe))
	for _, item := range r.universe {
		out = append(out, item)
	}
	sortItemsByID(out)
	return out
}

func removeID(items []Item, id int64) []Item {
	out := items[:0:0]
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

func removeAll(items []Item, ids map[int64]struct{}) []Item {
	out := items[:0:0]
	for _, it := range items {
		if _, drop := ids[it.ID]; !drop {
			out = append(out, it)
		}
	}
	return out
}

func sortItemsByID(items []Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}
