package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	storeMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "store",
		Name:      "mutations_total",
		Help:      "Workout store mutations by operation.",
	}, []string{"op"})
	persistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "store",
		Name:      "persist_failures_total",
		Help:      "Writes to the persistence slot that failed and were kept in memory only.",
	})
	workoutsGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mapty",
		Subsystem: "store",
		Name:      "workouts",
		Help:      "Workouts currently held by the store, by kind.",
	}, []string{"kind"})
	rejectedInputs = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "form",
		Name:      "rejected_inputs_total",
		Help:      "Form submissions rejected by validation.",
	})
)

func init() {
	prometheus.MustRegister(storeMutations, persistFailures, workoutsGauge, rejectedInputs)
}

// RecordMutation counts one store operation (add, update, remove, remove_all, select).
func RecordMutation(op string) {
	storeMutations.WithLabelValues(op).Inc()
}

func RecordPersistFailure() {
	persistFailures.Inc()
}

// SetWorkoutCount publishes the number of workouts of one kind.
func SetWorkoutCount(kind string, n int) {
	workoutsGauge.WithLabelValues(kind).Set(float64(n))
}

func RecordRejectedInput() {
	rejectedInputs.Inc()
}
