package workout

import (
	"fmt"
	"math"
	"time"

	"backend-mapty/internal/shared/geo"

	"github.com/google/uuid"
)

type Kind string

const (
	KindRunning Kind = "running"
	KindCycling Kind = "cycling"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindRunning, KindCycling:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Title is the capitalized kind used in descriptions.
func (k Kind) Title() string {
	switch k {
	case KindRunning:
		return "Running"
	case KindCycling:
		return "Cycling"
	}
	return string(k)
}

// Icon prefixes marker popups and list entries.
func (k Kind) Icon() string {
	if k == KindRunning {
		return "🏃‍♂️"
	}
	return "🚴‍♀️"
}

// Workout is one recorded activity. Implementations are *Running and *Cycling.
type Workout interface {
	Common() Base
	Kind() Kind
	// Metric is pace (min/km) for running and speed (km/h) for cycling.
	Metric() float64
	// Detail is the kind specific input: cadence or elevation gain.
	Detail() float64
	Edit(p Patch) error
	Click()
	Record() Record
	clone() Workout
}

type Base struct {
	ID               string     `json:"id"`
	CreatedAt        time.Time  `json:"created_at"`
	Coords           geo.Coords `json:"coords"`
	Distance         float64    `json:"distance"`
	Duration         float64    `json:"duration"`
	Description      string     `json:"description"`
	InteractionCount int        `json:"interaction_count"`
}

type Running struct {
	Base
	Cadence float64 `json:"cadence"`
	Pace    float64 `json:"pace"`
}

type Cycling struct {
	Base
	ElevationGain float64 `json:"elevation_gain"`
	Speed         float64 `json:"speed"`
}

// Patch carries edited values. Distance and duration are always required;
// a nil kind specific field keeps the current value and a field that does
// not belong to the workout's kind is ignored.
type Patch struct {
	Distance      float64
	Duration      float64
	Cadence       *float64
	ElevationGain *float64
}

var (
	newID = uuid.NewString
	now   = time.Now
)

func NewRunning(coords geo.Coords, distance, duration, cadence float64) (*Running, error) {
	if !coords.Valid() || !validInputs(distance, duration, cadence) || !allPositive(distance, duration, cadence) {
		return nil, ErrInvalidInput
	}
	r := &Running{
		Base:    newBase(KindRunning, coords, distance, duration),
		Cadence: cadence,
	}
	r.calcPace()
	return r, nil
}

func NewCycling(coords geo.Coords, distance, duration, elevationGain float64) (*Cycling, error) {
	if !coords.Valid() || !validInputs(distance, duration, elevationGain) || !allPositive(distance, duration) {
		return nil, ErrInvalidInput
	}
	c := &Cycling{
		Base:          newBase(KindCycling, coords, distance, duration),
		ElevationGain: elevationGain,
	}
	c.calcSpeed()
	return c, nil
}

func newBase(kind Kind, coords geo.Coords, distance, duration float64) Base {
	createdAt := now()
	return Base{
		ID:          newID(),
		CreatedAt:   createdAt,
		Coords:      coords,
		Distance:    distance,
		Duration:    duration,
		Description: describe(kind, createdAt),
	}
}

func describe(kind Kind, at time.Time) string {
	return fmt.Sprintf("%s on %s %d", kind.Title(), at.Month(), at.Day())
}

func (r *Running) Common() Base    { return r.Base }
func (r *Running) Kind() Kind      { return KindRunning }
func (r *Running) Metric() float64 { return r.Pace }
func (r *Running) Detail() float64 { return r.Cadence }
func (r *Running) Click()          { r.InteractionCount++ }

func (r *Running) Edit(p Patch) error {
	cadence := r.Cadence
	if p.Cadence != nil {
		cadence = *p.Cadence
	}
	if !validInputs(p.Distance, p.Duration, cadence) || !allPositive(p.Distance, p.Duration, cadence) {
		return ErrInvalidInput
	}
	r.Distance, r.Duration, r.Cadence = p.Distance, p.Duration, cadence
	r.calcPace()
	return nil
}

func (r *Running) calcPace() {
	r.Pace = r.Duration / r.Distance
}

func (r *Running) clone() Workout {
	cp := *r
	return &cp
}

func (c *Cycling) Common() Base    { return c.Base }
func (c *Cycling) Kind() Kind      { return KindCycling }
func (c *Cycling) Metric() float64 { return c.Speed }
func (c *Cycling) Detail() float64 { return c.ElevationGain }
func (c *Cycling) Click()          { c.InteractionCount++ }

// Edit accepts any finite elevation gain, negative included.
func (c *Cycling) Edit(p Patch) error {
	elevation := c.ElevationGain
	if p.ElevationGain != nil {
		elevation = *p.ElevationGain
	}
	if !validInputs(p.Distance, p.Duration, elevation) || !allPositive(p.Distance, p.Duration) {
		return ErrInvalidInput
	}
	c.Distance, c.Duration, c.ElevationGain = p.Distance, p.Duration, elevation
	c.calcSpeed()
	return nil
}

func (c *Cycling) calcSpeed() {
	c.Speed = c.Distance / (c.Duration / 60)
}

func (c *Cycling) clone() Workout {
	cp := *c
	return &cp
}

func validInputs(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func allPositive(vals ...float64) bool {
	for _, v := range vals {
		if v <= 0 {
			return false
		}
	}
	return true
}
