package workout

import (
	"encoding/json"
	"fmt"
	"time"

	"backend-mapty/internal/shared/geo"
)

// Record is the persisted shape of one workout.
type Record struct {
	ID               string     `json:"id"`
	CreatedAt        time.Time  `json:"createdAt"`
	Coords           geo.Coords `json:"coords"`
	Distance         float64    `json:"distance"`
	Duration         float64    `json:"duration"`
	Kind             Kind       `json:"kind"`
	Cadence          *float64   `json:"cadence,omitempty"`
	ElevationGain    *float64   `json:"elevationGain,omitempty"`
	InteractionCount int        `json:"interactionCount"`
}

func (r *Running) Record() Record {
	cadence := r.Cadence
	return Record{
		ID:               r.ID,
		CreatedAt:        r.CreatedAt,
		Coords:           r.Coords,
		Distance:         r.Distance,
		Duration:         r.Duration,
		Kind:             KindRunning,
		Cadence:          &cadence,
		InteractionCount: r.InteractionCount,
	}
}

func (c *Cycling) Record() Record {
	elevation := c.ElevationGain
	return Record{
		ID:               c.ID,
		CreatedAt:        c.CreatedAt,
		Coords:           c.Coords,
		Distance:         c.Distance,
		Duration:         c.Duration,
		Kind:             KindCycling,
		ElevationGain:    &elevation,
		InteractionCount: c.InteractionCount,
	}
}

// Reconstruct rebuilds the variant named by rec.Kind, recomputing the
// derived metric and description from the stored inputs.
func Reconstruct(rec Record) (Workout, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidInput)
	}
	if rec.InteractionCount < 0 {
		return nil, fmt.Errorf("%w: negative interaction count", ErrInvalidInput)
	}
	base := Base{
		ID:               rec.ID,
		CreatedAt:        rec.CreatedAt,
		Coords:           rec.Coords,
		Distance:         rec.Distance,
		Duration:         rec.Duration,
		InteractionCount: rec.InteractionCount,
	}
	if !rec.Coords.Valid() || !validInputs(rec.Distance, rec.Duration) || !allPositive(rec.Distance, rec.Duration) {
		return nil, fmt.Errorf("%w: workout %s", ErrInvalidInput, rec.ID)
	}

	switch rec.Kind {
	case KindRunning:
		if rec.Cadence == nil || rec.ElevationGain != nil {
			return nil, fmt.Errorf("%w: running %s needs cadence only", ErrInvalidInput, rec.ID)
		}
		if !validInputs(*rec.Cadence) || !allPositive(*rec.Cadence) {
			return nil, fmt.Errorf("%w: running %s cadence", ErrInvalidInput, rec.ID)
		}
		base.Description = describe(KindRunning, rec.CreatedAt)
		r := &Running{Base: base, Cadence: *rec.Cadence}
		r.calcPace()
		return r, nil
	case KindCycling:
		if rec.ElevationGain == nil || rec.Cadence != nil {
			return nil, fmt.Errorf("%w: cycling %s needs elevationGain only", ErrInvalidInput, rec.ID)
		}
		if !validInputs(*rec.ElevationGain) {
			return nil, fmt.Errorf("%w: cycling %s elevation", ErrInvalidInput, rec.ID)
		}
		base.Description = describe(KindCycling, rec.CreatedAt)
		c := &Cycling{Base: base, ElevationGain: *rec.ElevationGain}
		c.calcSpeed()
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, rec.Kind)
}

// Encode serializes workouts, in order, to the persisted JSON array.
func Encode(workouts []Workout) ([]byte, error) {
	records := make([]Record, 0, len(workouts))
	for _, w := range workouts {
		records = append(records, w.Record())
	}
	return json.Marshal(records)
}

// DecodeRecords parses a persisted JSON array without reconstructing workouts.
func DecodeRecords(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// MarshalJSON adds the kind to the API shape of a running workout.
func (r *Running) MarshalJSON() ([]byte, error) {
	type plain Running
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*plain
	}{KindRunning, (*plain)(r)})
}

func (c *Cycling) MarshalJSON() ([]byte, error) {
	type plain Cycling
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*plain
	}{KindCycling, (*plain)(c)})
}
