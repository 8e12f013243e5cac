package view

import (
	"fmt"

	"backend-mapty/internal/shared/geo"
	"backend-mapty/internal/workout"
)

// Map is the map widget the workouts are drawn on.
type Map interface {
	Initialize(center geo.Coords, zoom int)
	Initialized() bool
	AddMarker(m Marker)
	RemoveMarker(id string)
	OnClick(handler ClickHandler)
	PanTo(center geo.Coords, zoom int)
}

type ClickHandler func(at geo.Coords) error

// List is the rendered list of workout entries.
type List interface {
	Insert(e Entry)
	Update(e Entry)
	Remove(id string)
	Clear()
}

type Marker struct {
	ID     string     `json:"id"`
	Coords geo.Coords `json:"coords"`
	Popup  string     `json:"popup"`
	Class  string     `json:"class"`
}

type Entry struct {
	ID          string       `json:"id"`
	Kind        workout.Kind `json:"kind"`
	Description string       `json:"description"`
	Icon        string       `json:"icon"`
	Distance    float64      `json:"distance"`
	Duration    float64      `json:"duration"`
	Metric      string       `json:"metric"`
	MetricUnit  string       `json:"metric_unit"`
	Detail      float64      `json:"detail"`
	DetailUnit  string       `json:"detail_unit"`
}

func markerFor(w workout.Workout) Marker {
	b := w.Common()
	return Marker{
		ID:     b.ID,
		Coords: b.Coords,
		Popup:  w.Kind().Icon() + " " + b.Description,
		Class:  string(w.Kind()) + "-popup",
	}
}

func entryFor(w workout.Workout) Entry {
	b := w.Common()
	e := Entry{
		ID:          b.ID,
		Kind:        w.Kind(),
		Description: b.Description,
		Icon:        w.Kind().Icon(),
		Distance:    b.Distance,
		Duration:    b.Duration,
		Metric:      fmt.Sprintf("%.1f", w.Metric()),
		Detail:      w.Detail(),
	}
	if w.Kind() == workout.KindRunning {
		e.MetricUnit, e.DetailUnit = "min/km", "spm"
	} else {
		e.MetricUnit, e.DetailUnit = "km/h", "m"
	}
	return e
}
