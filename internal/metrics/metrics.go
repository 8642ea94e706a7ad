package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	TasksSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tunegrab",
			Name:      "tasks_submitted_total",
			Help:      "Count of accepted download submissions.",
		},
	)

	TasksCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tunegrab",
			Name:      "tasks_completed_total",
			Help:      "Count of tasks that reached a terminal state.",
		},
		[]string{"status"},
	)

	ProgressEvents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tunegrab",
			Name:      "progress_events_total",
			Help:      "Progress callbacks applied to the task registry.",
		},
	)

	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tunegrab",
			Name:      "fetch_duration_seconds",
			Help:      "Wall time of engine fetch calls.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	ActiveTasks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tunegrab",
			Name:      "active_tasks",
			Help:      "Number of tasks currently running.",
		},
	)
)

// Register registers the tunegrab metrics into the default registry.
func Register() {
	prometheus.MustRegister(TasksSubmitted, TasksCompleted, ProgressEvents, FetchDuration, ActiveTasks)
}
