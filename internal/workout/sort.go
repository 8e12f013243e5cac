package workout

import (
	"fmt"
	"sort"
)

type SortField string

const (
	SortNone     SortField = ""
	SortDistance SortField = "distance"
	SortDuration SortField = "duration"
	SortMetric   SortField = "metric"
	SortDate     SortField = "date"
)

func ParseSortField(s string) (SortField, error) {
	switch f := SortField(s); f {
	case SortNone, SortDistance, SortDuration, SortMetric, SortDate:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown sort field %q", ErrInvalidInput, s)
}

// Sorted returns a copy of workouts ordered ascending by field. The input
// slice is left as is and equal keys keep their collection order.
func Sorted(workouts []Workout, field SortField) []Workout {
	out := make([]Workout, len(workouts))
	copy(out, workouts)
	if field == SortNone {
		return out
	}
	key := func(w Workout) float64 {
		b := w.Common()
		switch field {
		case SortDistance:
			return b.Distance
		case SortDuration:
			return b.Duration
		case SortMetric:
			return w.Metric()
		default:
			return float64(b.CreatedAt.UnixNano())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return key(out[i]) < key(out[j])
	})
	return out
}
