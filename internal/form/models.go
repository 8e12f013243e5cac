package form

import (
	"backend-mapty/internal/shared/geo"
	"backend-mapty/internal/workout"
)

type State string

const (
	StateIdle          State = "idle"
	StateCreatePending State = "create_pending"
	StateEditPending   State = "edit_pending"
)

const (
	msgInvalid        = "All inputs must be positive numbers!"
	msgInvalidCycling = "Distance and duration must be positive numbers! Elevation gain may be negative."
	msgCreated        = "New workout created successfully"
	msgNotSaved       = "Workouts could not be saved and will be lost on reload"
)

// Input holds raw form values as typed by the user.
type Input struct {
	Type      string `json:"type"`
	Distance  string `json:"distance"`
	Duration  string `json:"duration"`
	Cadence   string `json:"cadence"`
	Elevation string `json:"elevation"`
}

// Snapshot describes which form is open and what it holds.
type Snapshot struct {
	State  State        `json:"state"`
	Coords *geo.Coords  `json:"coords,omitempty"`
	EditID string       `json:"edit_id,omitempty"`
	Kind   workout.Kind `json:"kind"`
	Create Input        `json:"create"`
	Edit   Input        `json:"edit"`
}

// Syncer is the part of the view the controller drives after each change.
type Syncer interface {
	Added(w workout.Workout)
	Updated(w workout.Workout)
	Removed(id string)
	Cleared()
	Focus(w workout.Workout)
}

// Alerter shows transient messages to the user.
type Alerter interface {
	Alert(msg string)
}
