package form

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"backend-mapty/internal/observability"
	"backend-mapty/internal/shared/geo"
	"backend-mapty/internal/workout"
)

// ErrNoPendingForm is returned when a submission targets a form that is not open.
var ErrNoPendingForm = errors.New("form is not open")

// Controller decides which form is open and turns submissions into store
// mutations. At most one form, creation or edit, is open at a time.
type Controller struct {
	mu       sync.Mutex
	store    *workout.Store
	view     Syncer
	alerts   Alerter
	onChange func(Snapshot)

	state  State
	coords geo.Coords
	editID string
	kind   workout.Kind
	create Input
	edit   Input
}

func NewController(store *workout.Store, view Syncer, alerts Alerter) *Controller {
	return &Controller{
		store:  store,
		view:   view,
		alerts: alerts,
		state:  StateIdle,
		kind:   workout.KindRunning,
	}
}

// OnChange registers fn to receive the form snapshot after every transition.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// MapClicked opens the creation form at the clicked location. An open edit
// form is closed.
func (c *Controller) MapClicked(at geo.Coords) error {
	if !at.Valid() {
		return fmt.Errorf("%w: coordinates", workout.ErrInvalidInput)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateEditPending {
		c.editID, c.edit = "", Input{}
	}
	c.state, c.coords = StateCreatePending, at
	c.changedLocked()
	return nil
}

// SelectKind toggles the creation form between cadence and elevation.
func (c *Controller) SelectKind(kind workout.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kind = kind
	c.create.Type = string(kind)
	c.changedLocked()
}

// Submit validates the creation form and adds the workout. On invalid input
// the form stays open with the values kept. A non-nil workout together with
// an ErrPersistenceUnavailable error means the workout exists in memory only.
func (c *Controller) Submit(ctx context.Context, in Input) (workout.Workout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateCreatePending {
		return nil, ErrNoPendingForm
	}
	c.create = in

	kind := c.kind
	if in.Type != "" {
		k, err := workout.ParseKind(in.Type)
		if err != nil {
			return nil, c.rejectLocked(msgInvalid)
		}
		kind = k
		c.kind = k
	}

	var w workout.Workout
	var err error
	switch kind {
	case workout.KindRunning:
		vals, ok := parseAll(in.Distance, in.Duration, in.Cadence)
		if !ok {
			return nil, c.rejectLocked(msgInvalid)
		}
		w, err = workout.NewRunning(c.coords, vals[0], vals[1], vals[2])
	case workout.KindCycling:
		vals, ok := parseAll(in.Distance, in.Duration, in.Elevation)
		if !ok {
			return nil, c.rejectLocked(msgInvalid)
		}
		w, err = workout.NewCycling(c.coords, vals[0], vals[1], vals[2])
	default:
		return nil, c.rejectLocked(msgInvalid)
	}
	if err != nil {
		return nil, c.rejectLocked(msgInvalid)
	}

	err = c.store.Add(ctx, w)
	if err != nil && !errors.Is(err, workout.ErrPersistenceUnavailable) {
		return nil, err
	}
	c.view.Added(w)
	c.state, c.coords, c.create = StateIdle, geo.Coords{}, Input{}
	c.changedLocked()
	if err != nil {
		c.alerts.Alert(msgNotSaved)
		return w, err
	}
	c.alerts.Alert(msgCreated)
	return w, nil
}

// Cancel closes the creation form and clears its fields.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateCreatePending {
		return
	}
	c.state, c.coords, c.create = StateIdle, geo.Coords{}, Input{}
	c.changedLocked()
}

// OpenEdit opens the edit form of one workout, closing any other form.
// An unknown id leaves the state as it is.
func (c *Controller) OpenEdit(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.store.Get(id); err != nil {
		if errors.Is(err, workout.ErrNotFound) {
			return nil
		}
		return err
	}
	if c.state == StateCreatePending {
		c.coords, c.create = geo.Coords{}, Input{}
	}
	c.state, c.editID, c.edit = StateEditPending, id, Input{}
	c.changedLocked()
	return nil
}

// SubmitEdit validates the edit form for id and updates the workout.
// Elevation gain may be negative; cadence must be positive.
func (c *Controller) SubmitEdit(ctx context.Context, id string, in Input) (workout.Workout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateEditPending || c.editID != id {
		return nil, ErrNoPendingForm
	}
	c.edit = in

	current, err := c.store.Get(id)
	if errors.Is(err, workout.ErrNotFound) {
		c.closeEditLocked()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var patch workout.Patch
	switch current.Kind() {
	case workout.KindRunning:
		vals, ok := parseAll(in.Distance, in.Duration, in.Cadence)
		if !ok || !allPositive(vals...) {
			return nil, c.rejectLocked(msgInvalid)
		}
		patch = workout.Patch{Distance: vals[0], Duration: vals[1], Cadence: &vals[2]}
	case workout.KindCycling:
		vals, ok := parseAll(in.Distance, in.Duration, in.Elevation)
		if !ok || !allPositive(vals[0], vals[1]) {
			return nil, c.rejectLocked(msgInvalidCycling)
		}
		patch = workout.Patch{Distance: vals[0], Duration: vals[1], ElevationGain: &vals[2]}
	}

	updated, err := c.store.Update(ctx, id, patch)
	switch {
	case errors.Is(err, workout.ErrNotFound):
		c.closeEditLocked()
		return nil, nil
	case errors.Is(err, workout.ErrInvalidInput):
		return nil, c.rejectLocked(msgInvalid)
	case err != nil && !errors.Is(err, workout.ErrPersistenceUnavailable):
		return nil, err
	}
	c.view.Updated(updated)
	c.closeEditLocked()
	if err != nil {
		c.alerts.Alert(msgNotSaved)
	}
	return updated, err
}

// CloseEdit closes the edit form of id without changes. It does nothing
// when the open edit form belongs to another workout.
func (c *Controller) CloseEdit(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditPending || c.editID != id {
		return
	}
	c.closeEditLocked()
}

// Delete removes the workout and its rendered entry in place. A missing id
// is a silent no-op.
func (c *Controller) Delete(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed, err := c.store.Remove(ctx, id)
	if !removed {
		return false, err
	}
	c.view.Removed(id)
	if c.state == StateEditPending && c.editID == id {
		c.closeEditLocked()
	}
	if err != nil {
		c.alerts.Alert(msgNotSaved)
	}
	return true, err
}

// Reset removes every workout and closes any open form.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.store.RemoveAll(ctx)
	c.view.Cleared()
	c.state, c.coords, c.editID = StateIdle, geo.Coords{}, ""
	c.create, c.edit = Input{}, Input{}
	c.changedLocked()
	if err != nil {
		c.alerts.Alert(msgNotSaved)
	}
	return err
}

// Select moves the map to the workout and counts the interaction.
func (c *Controller) Select(ctx context.Context, id string) (workout.Workout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, err := c.store.Select(ctx, id)
	if errors.Is(err, workout.ErrNotFound) {
		return nil, nil
	}
	if err != nil && !errors.Is(err, workout.ErrPersistenceUnavailable) {
		return nil, err
	}
	c.view.Focus(w)
	return w, err
}

func (c *Controller) rejectLocked(msg string) error {
	observability.RecordRejectedInput()
	c.alerts.Alert(msg)
	c.changedLocked()
	return fmt.Errorf("%w: %s", workout.ErrInvalidInput, msg)
}

func (c *Controller) closeEditLocked() {
	c.state, c.editID, c.edit = StateIdle, "", Input{}
	c.changedLocked()
}

func (c *Controller) changedLocked() {
	if c.onChange != nil {
		c.onChange(c.snapshotLocked())
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		State:  c.state,
		EditID: c.editID,
		Kind:   c.kind,
		Create: c.create,
		Edit:   c.edit,
	}
	if c.state == StateCreatePending {
		coords := c.coords
		s.Coords = &coords
	}
	return s
}

// parseAll parses every raw value as a finite number. Blank values fail.
func parseAll(raw ...string) ([]float64, bool) {
	vals := make([]float64, 0, len(raw))
	for _, r := range raw {
		v, err := strconv.ParseFloat(strings.TrimSpace(r), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		vals = append(vals, v)
	}
	return vals, true
}

func allPositive(vals ...float64) bool {
	for _, v := range vals {
		if v <= 0 {
			return false
		}
	}
	return true
}
