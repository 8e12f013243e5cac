package workout

import (
	"context"
	"fmt"
	"log"
	"sync"

	"backend-mapty/internal/observability"
)

// Slot is the single key-value entry the whole collection is written to.
type Slot interface {
	Get(ctx context.Context) ([]byte, bool, error)
	Set(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}

// Store owns the ordered workout collection. Every mutation rewrites the
// slot with the full collection before the lock is released. When the slot
// write fails the in-memory change is kept and the returned error wraps
// ErrPersistenceUnavailable. After a failed LoadAll nothing is written
// until a later LoadAll succeeds, so the stored collection is never replaced
// by a partial one.
type Store struct {
	mu         sync.Mutex
	slot       Slot
	workouts   []Workout
	loadFailed error
}

func NewStore(slot Slot) *Store {
	return &Store{slot: slot}
}

func (s *Store) Add(ctx context.Context, w Workout) error {
	if w == nil {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := w.Common().ID
	if s.indexLocked(id) >= 0 {
		return fmt.Errorf("%w: duplicate id %s", ErrInvalidInput, id)
	}
	s.workouts = append(s.workouts, w.clone())
	observability.RecordMutation("add")
	return s.persistLocked(ctx)
}

// Update applies p to the workout with id. The patch is validated before
// anything changes, so a rejected patch leaves the store untouched.
func (s *Store) Update(ctx context.Context, id string, p Patch) (Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	edited := s.workouts[idx].clone()
	if err := edited.Edit(p); err != nil {
		return nil, err
	}
	s.workouts[idx] = edited
	observability.RecordMutation("update")
	return edited.clone(), s.persistLocked(ctx)
}

// Remove deletes the workout with id. A missing id is a no-op reported as false.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return false, nil
	}
	s.workouts = append(s.workouts[:idx], s.workouts[idx+1:]...)
	observability.RecordMutation("remove")
	return true, s.persistLocked(ctx)
}

// RemoveAll clears the collection and deletes the persisted value.
func (s *Store) RemoveAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workouts = nil
	observability.RecordMutation("remove_all")
	s.publishCountsLocked()
	if s.slot == nil {
		return nil
	}
	if s.loadFailed != nil {
		return s.writeBlocked()
	}
	if err := s.slot.Delete(ctx); err != nil {
		return s.persistFailed(err)
	}
	return nil
}

// Select counts one user selection of the workout.
func (s *Store) Select(ctx context.Context, id string) (Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.workouts[idx].Click()
	observability.RecordMutation("select")
	return s.workouts[idx].clone(), s.persistLocked(ctx)
}

// LoadAll replaces the collection with the persisted one. An absent value
// yields an empty collection. Entries that cannot be reconstructed, or that
// repeat an id, are skipped. When the slot cannot be read the in-memory
// collection is kept and writes are refused until a load succeeds.
func (s *Store) LoadAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slot == nil {
		s.workouts, s.loadFailed = nil, nil
		return nil
	}
	data, ok, err := s.slot.Get(ctx)
	if err != nil {
		s.loadFailed = err
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	if !ok || len(data) == 0 {
		s.workouts, s.loadFailed = nil, nil
		s.publishCountsLocked()
		return nil
	}
	records, err := DecodeRecords(data)
	if err != nil {
		s.workouts, s.loadFailed = nil, err
		s.publishCountsLocked()
		return fmt.Errorf("decode workouts: %w", err)
	}

	s.workouts, s.loadFailed = nil, nil

	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		w, err := Reconstruct(rec)
		if err != nil {
			log.Printf("skipping stored workout %d: %v", i, err)
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			log.Printf("skipping stored workout %d: duplicate id %s", i, rec.ID)
			continue
		}
		seen[rec.ID] = struct{}{}
		s.workouts = append(s.workouts, w)
	}
	s.publishCountsLocked()
	return nil
}

// SerializeAll returns exactly the bytes LoadAll consumes.
func (s *Store) SerializeAll() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Encode(s.workouts)
}

// All returns copies of the workouts in collection order.
func (s *Store) All() []Workout {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Workout, 0, len(s.workouts))
	for _, w := range s.workouts {
		out = append(out, w.clone())
	}
	return out
}

func (s *Store) Get(id string) (Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.workouts[idx].clone(), nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workouts)
}

func (s *Store) indexLocked(id string) int {
	for i, w := range s.workouts {
		if w.Common().ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked(ctx context.Context) error {
	s.publishCountsLocked()
	if s.slot == nil {
		return nil
	}
	if s.loadFailed != nil {
		return s.writeBlocked()
	}
	data, err := Encode(s.workouts)
	if err != nil {
		return s.persistFailed(err)
	}
	if err := s.slot.Set(ctx, data); err != nil {
		return s.persistFailed(err)
	}
	return nil
}

func (s *Store) persistFailed(err error) error {
	observability.RecordPersistFailure()
	log.Printf("persist workouts: %v", err)
	return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
}

func (s *Store) writeBlocked() error {
	observability.RecordPersistFailure()
	log.Printf("persist workouts: skipped, stored workouts were not loaded: %v", s.loadFailed)
	return fmt.Errorf("%w: stored workouts were not loaded", ErrPersistenceUnavailable)
}

func (s *Store) publishCountsLocked() {
	counts := map[Kind]int{KindRunning: 0, KindCycling: 0}
	for _, w := range s.workouts {
		counts[w.Kind()]++
	}
	for k, n := range counts {
		observability.SetWorkoutCount(string(k), n)
	}
}
