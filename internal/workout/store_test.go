package workout

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend-mapty/internal/shared/geo"

	"github.com/stretchr/testify/require"
)

type fakeSlot struct {
	data    []byte
	present bool
	setErr  error
	getErr  error
	sets    int
}

func (s *fakeSlot) Get(context.Context) ([]byte, bool, error) {
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	return s.data, s.present, nil
}

func (s *fakeSlot) Set(_ context.Context, data []byte) error {
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.data = append([]byte(nil), data...)
	s.present = true
	return nil
}

func (s *fakeSlot) Delete(context.Context) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.data = nil
	s.present = false
	return nil
}

var errSlot = errors.New("quota exceeded")

func seedStore(t *testing.T, slot Slot) (*Store, []Workout) {
	t.Helper()
	fixedClock(t, time.Date(2026, time.April, 14, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	r, err := NewRunning(geo.Coords{39, -12}, 5.2, 24, 178)
	require.NoError(t, err)
	c, err := NewCycling(geo.Coords{38.7, -9.1}, 27, 95, 523)
	require.NoError(t, err)
	r2, err := NewRunning(geo.Coords{38.5, -9}, 10, 55, 165)
	require.NoError(t, err)

	s := NewStore(slot)
	for _, w := range []Workout{r, c, r2} {
		require.NoError(t, s.Add(ctx, w))
	}
	return s, []Workout{r, c, r2}
}

func TestStoreAddPersistsInOrder(t *testing.T) {
	slot := &fakeSlot{}
	s, seeded := seedStore(t, slot)

	require.Equal(t, 3, s.Len())
	require.Equal(t, ids(seeded), ids(s.All()))
	require.Equal(t, 3, slot.sets)

	serialized, err := s.SerializeAll()
	require.NoError(t, err)
	require.JSONEq(t, string(serialized), string(slot.data))
}

func TestStoreAddRejectsDuplicateID(t *testing.T) {
	s, seeded := seedStore(t, &fakeSlot{})
	err := s.Add(context.Background(), seeded[0])
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Equal(t, 3, s.Len())
}

func TestStoreUpdate(t *testing.T) {
	slot := &fakeSlot{}
	s, seeded := seedStore(t, slot)
	id := seeded[0].Common().ID

	updated, err := s.Update(context.Background(), id, Patch{Distance: 5.2, Duration: 30})
	require.NoError(t, err)
	require.InDelta(t, 5.7692, updated.Metric(), 0.0001)
	require.Equal(t, geo.Coords{39, -12}, updated.Common().Coords)
	require.Equal(t, 178.0, updated.Detail())

	got, err := s.Get(id)
	require.NoError(t, err)
	require.Equal(t, updated.Metric(), got.Metric())

	reloaded := NewStore(slot)
	require.NoError(t, reloaded.LoadAll(context.Background()))
	again, err := reloaded.Get(id)
	require.NoError(t, err)
	require.InDelta(t, 5.7692, again.Metric(), 0.0001)
}

func TestStoreUpdateInvalidLeavesStoreUnchanged(t *testing.T) {
	slot := &fakeSlot{}
	s, seeded := seedStore(t, slot)
	before, err := s.SerializeAll()
	require.NoError(t, err)
	sets := slot.sets

	_, err = s.Update(context.Background(), seeded[1].Common().ID, Patch{Distance: -3, Duration: 95})
	require.ErrorIs(t, err, ErrInvalidInput)

	after, err := s.SerializeAll()
	require.NoError(t, err)
	require.Equal(t, before, after)
	require.Equal(t, sets, slot.sets)
}

func TestStoreUpdateNotFound(t *testing.T) {
	s, _ := seedStore(t, &fakeSlot{})
	_, err := s.Update(context.Background(), "missing", Patch{Distance: 1, Duration: 1})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreAddThenRemoveRestoresState(t *testing.T) {
	slot := &fakeSlot{}
	s, seeded := seedStore(t, slot)
	before, _ := s.SerializeAll()

	extra, err := NewCycling(geo.Coords{1, 1}, 3, 10, 0)
	require.NoError(t, err)
	require.NoError(t, s.Add(context.Background(), extra))

	removed, err := s.Remove(context.Background(), extra.ID)
	require.NoError(t, err)
	require.True(t, removed)
	require.Equal(t, ids(seeded), ids(s.All()))

	after, _ := s.SerializeAll()
	require.Equal(t, before, after)
	require.JSONEq(t, string(before), string(slot.data))
}

func TestStoreRemoveMissingIsNoop(t *testing.T) {
	slot := &fakeSlot{}
	s, _ := seedStore(t, slot)
	sets := slot.sets

	removed, err := s.Remove(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, removed)
	require.Equal(t, 3, s.Len())
	require.Equal(t, sets, slot.sets)
}

func TestStoreRemoveAll(t *testing.T) {
	slot := &fakeSlot{}
	s, _ := seedStore(t, slot)

	require.NoError(t, s.RemoveAll(context.Background()))
	require.Zero(t, s.Len())
	require.False(t, slot.present)
	require.Empty(t, slot.data)

	reloaded := NewStore(slot)
	require.NoError(t, reloaded.LoadAll(context.Background()))
	require.Zero(t, reloaded.Len())
}

func TestStoreLoadAllRoundTrip(t *testing.T) {
	slot := &fakeSlot{}
	s, seeded := seedStore(t, slot)
	_, err := s.Select(context.Background(), seeded[2].Common().ID)
	require.NoError(t, err)

	reloaded := NewStore(slot)
	require.NoError(t, reloaded.LoadAll(context.Background()))
	all := reloaded.All()
	require.Equal(t, ids(seeded), ids(all))
	for i, w := range all {
		require.Equal(t, seeded[i].Kind(), w.Kind())
		require.Equal(t, seeded[i].Metric(), w.Metric())
		require.Equal(t, seeded[i].Common().Description, w.Common().Description)
	}
	require.Equal(t, 1, all[2].Common().InteractionCount)
}

func TestStoreLoadAllEmptyAndSkips(t *testing.T) {
	empty := NewStore(&fakeSlot{})
	require.NoError(t, empty.LoadAll(context.Background()))
	require.Zero(t, empty.Len())

	slot := &fakeSlot{present: true, data: []byte(`[
		{"id":"a","createdAt":"2026-04-14T08:00:00Z","coords":[39,-12],"distance":5,"duration":25,"kind":"running","cadence":170,"interactionCount":0},
		{"id":"b","createdAt":"2026-04-14T08:00:00Z","coords":[39,-12],"distance":5,"duration":25,"kind":"swimming","interactionCount":0},
		{"id":"a","createdAt":"2026-04-14T08:00:00Z","coords":[39,-12],"distance":9,"duration":25,"kind":"cycling","elevationGain":3,"interactionCount":0},
		{"id":"c","createdAt":"2026-04-14T08:00:00Z","coords":[39,-12],"distance":20,"duration":60,"kind":"cycling","elevationGain":-5,"interactionCount":2}
	]`)}
	s := NewStore(slot)
	require.NoError(t, s.LoadAll(context.Background()))
	all := s.All()
	require.Equal(t, []string{"a", "c"}, ids(all))
	require.Equal(t, 5.0, all[0].Metric())
	require.Equal(t, 20.0, all[1].Metric())
	require.Equal(t, "Cycling on April 14", all[1].Common().Description)
}

func TestStoreLoadAllErrors(t *testing.T) {
	s := NewStore(&fakeSlot{getErr: errSlot})
	require.ErrorIs(t, s.LoadAll(context.Background()), ErrPersistenceUnavailable)

	s = NewStore(&fakeSlot{present: true, data: []byte(`{not json`)})
	require.Error(t, s.LoadAll(context.Background()))
	require.Zero(t, s.Len())
}

func TestStoreFailedLoadDoesNotOverwriteSlot(t *testing.T) {
	slot := &fakeSlot{}
	_, _ = seedStore(t, slot)
	saved := append([]byte(nil), slot.data...)
	writes := slot.sets

	slot.getErr = errSlot
	s := NewStore(slot)
	require.ErrorIs(t, s.LoadAll(context.Background()), ErrPersistenceUnavailable)

	extra, err := NewRunning(geo.Coords{1, 1}, 3, 15, 160)
	require.NoError(t, err)
	require.ErrorIs(t, s.Add(context.Background(), extra), ErrPersistenceUnavailable)
	require.Equal(t, 1, s.Len())
	require.ErrorIs(t, s.RemoveAll(context.Background()), ErrPersistenceUnavailable)
	require.Equal(t, saved, slot.data)
	require.Equal(t, writes, slot.sets)

	slot.getErr = nil
	require.NoError(t, s.LoadAll(context.Background()))
	require.Equal(t, 3, s.Len())
	require.NoError(t, s.Add(context.Background(), extra))
	require.Equal(t, writes+1, slot.sets)
}

func TestStoreCorruptSlotIsNotOverwritten(t *testing.T) {
	slot := &fakeSlot{present: true, data: []byte(`{not json`)}
	s := NewStore(slot)
	require.Error(t, s.LoadAll(context.Background()))

	w, err := NewRunning(geo.Coords{1, 1}, 3, 15, 160)
	require.NoError(t, err)
	require.ErrorIs(t, s.Add(context.Background(), w), ErrPersistenceUnavailable)
	require.Equal(t, []byte(`{not json`), slot.data)
}

func TestStorePersistenceFailureKeepsData(t *testing.T) {
	slot := &fakeSlot{}
	s, _ := seedStore(t, slot)
	slot.setErr = errSlot

	extra, err := NewRunning(geo.Coords{1, 1}, 3, 15, 160)
	require.NoError(t, err)
	err = s.Add(context.Background(), extra)
	require.ErrorIs(t, err, ErrPersistenceUnavailable)
	require.Equal(t, 4, s.Len())

	require.ErrorIs(t, s.RemoveAll(context.Background()), ErrPersistenceUnavailable)
	require.Zero(t, s.Len())
}

func TestStoreSelectCountsInteractions(t *testing.T) {
	s, seeded := seedStore(t, &fakeSlot{})
	id := seeded[0].Common().ID

	for i := 0; i < 3; i++ {
		_, err := s.Select(context.Background(), id)
		require.NoError(t, err)
	}
	got, err := s.Get(id)
	require.NoError(t, err)
	require.Equal(t, 3, got.Common().InteractionCount)

	_, err = s.Select(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreReturnsCopies(t *testing.T) {
	s, seeded := seedStore(t, nil)
	id := seeded[0].Common().ID

	got, err := s.Get(id)
	require.NoError(t, err)
	require.NoError(t, got.Edit(Patch{Distance: 100, Duration: 100}))

	again, err := s.Get(id)
	require.NoError(t, err)
	require.Equal(t, 5.2, again.Common().Distance)
}
