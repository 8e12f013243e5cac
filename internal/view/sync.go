package view

import (
	"sync"

	"backend-mapty/internal/shared/geo"
	"backend-mapty/internal/workout"
)

// Sync keeps the list and the map markers consistent with the workout
// collection. Every method is idempotent with respect to what is already
// rendered, and removals happen in place so the map keeps its view.
type Sync struct {
	mu      sync.Mutex
	m       Map
	l       List
	zoom    int
	order   []string
	markers map[string]Marker
	onMap   map[string]bool
}

func NewSync(m Map, l List, zoom int) *Sync {
	return &Sync{
		m:       m,
		l:       l,
		zoom:    zoom,
		markers: map[string]Marker{},
		onMap:   map[string]bool{},
	}
}

// Initialize shows the map at center and draws markers for every entry
// rendered so far.
func (s *Sync) Initialize(center geo.Coords) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m.Initialize(center, s.zoom)
	for _, id := range s.order {
		s.drawMarkerLocked(id)
	}
}

// Load renders the whole collection in order, replacing what is shown.
func (s *Sync) Load(workouts []workout.Workout) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked()
	for _, w := range workouts {
		s.addLocked(w)
	}
}

func (s *Sync) Added(w workout.Workout) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.markers[w.Common().ID]; ok {
		s.l.Update(entryFor(w))
		return
	}
	s.addLocked(w)
}

// Updated refreshes the list entry. Coordinates never change so the marker stays.
func (s *Sync) Updated(w workout.Workout) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.markers[w.Common().ID]; !ok {
		return
	}
	s.l.Update(entryFor(w))
}

func (s *Sync) Removed(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *Sync) Cleared() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// Resync diffs what is rendered against workouts: stale entries are
// removed, missing ones added and the rest refreshed. The list ends up in
// the order of workouts.
func (s *Sync) Resync(workouts []workout.Workout) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[string]struct{}, len(workouts))
	for _, w := range workouts {
		want[w.Common().ID] = struct{}{}
	}
	for _, id := range append([]string(nil), s.order...) {
		if _, ok := want[id]; !ok {
			s.removeLocked(id)
		}
	}
	for _, w := range workouts {
		if _, ok := s.markers[w.Common().ID]; ok {
			s.l.Update(entryFor(w))
			continue
		}
		s.addLocked(w)
	}

	if sameOrder(s.order, workouts) {
		return
	}
	for id := range s.onMap {
		s.m.RemoveMarker(id)
	}
	s.onMap = map[string]bool{}
	s.order = s.order[:0]
	s.l.Clear()
	for _, w := range workouts {
		id := w.Common().ID
		s.order = append(s.order, id)
		s.l.Insert(entryFor(w))
		s.drawMarkerLocked(id)
	}
}

func sameOrder(order []string, workouts []workout.Workout) bool {
	if len(order) != len(workouts) {
		return false
	}
	for i, w := range workouts {
		if order[i] != w.Common().ID {
			return false
		}
	}
	return true
}

// Focus pans the map to the workout.
func (s *Sync) Focus(w workout.Workout) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.m.Initialized() {
		return
	}
	s.m.PanTo(w.Common().Coords, s.zoom)
}

// FitAll moves the map so every rendered workout is visible. It reports
// false when there is nothing to show or the map is not ready.
func (s *Sync) FitAll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.m.Initialized() || len(s.order) == 0 {
		return false
	}
	points := make([]geo.Coords, 0, len(s.order))
	for _, id := range s.order {
		points = append(points, s.markers[id].Coords)
	}
	b, _ := geo.BoundsOf(points...)
	s.m.PanTo(b.Center(), b.FitZoom(s.zoom))
	return true
}

// Rendered returns the ids currently shown, in order.
func (s *Sync) Rendered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

func (s *Sync) addLocked(w workout.Workout) {
	id := w.Common().ID
	s.order = append(s.order, id)
	s.markers[id] = markerFor(w)
	s.l.Insert(entryFor(w))
	s.drawMarkerLocked(id)
}

func (s *Sync) drawMarkerLocked(id string) {
	if s.onMap[id] || !s.m.Initialized() {
		return
	}
	s.m.AddMarker(s.markers[id])
	s.onMap[id] = true
}

func (s *Sync) removeLocked(id string) {
	if _, ok := s.markers[id]; !ok {
		return
	}
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	delete(s.markers, id)
	s.l.Remove(id)
	if s.onMap[id] {
		s.m.RemoveMarker(id)
		delete(s.onMap, id)
	}
}

func (s *Sync) clearLocked() {
	for id := range s.onMap {
		s.m.RemoveMarker(id)
	}
	s.order = nil
	s.markers = map[string]Marker{}
	s.onMap = map[string]bool{}
	s.l.Clear()
}
