package metrics

import (
    "strings"
    "testing"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAndGauge(t *testing.T) {
    reg := prometheus.NewRegistry()
    reg.MustRegister(TasksSubmitted, TasksCompleted, ProgressEvents, FetchDuration, ActiveTasks)

    TasksSubmitted.Inc()
    TasksCompleted.WithLabelValues("finished").Add(2)
    ActiveTasks.Set(3)

    // Histogram: observe one sample to ensure collector is live
    FetchDuration.Observe(1.5)

    expectedSubmitted := `# HELP tunegrab_tasks_submitted_total Count of accepted download submissions.
# TYPE tunegrab_tasks_submitted_total counter
tunegrab_tasks_submitted_total 1
`
    if err := testutil.CollectAndCompare(TasksSubmitted, strings.NewReader(expectedSubmitted)); err != nil {
        t.Fatalf("unexpected submitted metric: %v", err)
    }

    expectedCompleted := `# HELP tunegrab_tasks_completed_total Count of tasks that reached a terminal state.
# TYPE tunegrab_tasks_completed_total counter
tunegrab_tasks_completed_total{status="finished"} 2
`
    if err := testutil.CollectAndCompare(TasksCompleted, strings.NewReader(expectedCompleted)); err != nil {
        t.Fatalf("unexpected completed metric: %v", err)
    }

    expectedGauge := `# HELP tunegrab_active_tasks Number of tasks currently running.
# TYPE tunegrab_active_tasks gauge
tunegrab_active_tasks 3
`
    if err := testutil.CollectAndCompare(ActiveTasks, strings.NewReader(expectedGauge)); err != nil {
        t.Fatalf("unexpected active tasks gauge: %v", err)
    }
}
