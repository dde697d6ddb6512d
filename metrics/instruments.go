package metrics

// Instrument names used throughout the taskpool package. Centralizing them
// here (rather than string literals at each call site) keeps Prometheus
// series names and the Provider/Counter/Histogram interface's optional
// advisory metadata in exactly one place.
const (
	TasksCompletedTotal  = "taskpool_tasks_completed_total"
	TasksFailedTotal     = "taskpool_tasks_failed_total"
	WorkerRestartsTotal  = "taskpool_worker_restarts_total"
	TaskDurationSeconds  = "taskpool_task_duration_seconds"
	ActiveWorkersCurrent = "taskpool_active_workers"
)

// TaskInstruments bundles the counters and histogram every worker records
// against, constructed once per Pool so the advisory description/unit
// metadata is attached exactly once rather than re-specified at every call
// site (spec.md §4.9, "per-task success/failure counts, worker restarts").
type TaskInstruments struct {
	TasksCompleted  Counter
	TasksFailed     Counter
	WorkerRestarts  Counter
	TaskDuration    Histogram
	ActiveWorkers   UpDownCounter
}

// NewTaskInstruments pre-creates every instrument taskpool's worker and
// supervisor record against. Call once per Pool and share
// the result; Provider implementations are required to be safe for
// concurrent use, so TaskInstruments is too.
func NewTaskInstruments(p Provider) *TaskInstruments {
	return &TaskInstruments{
		TasksCompleted: p.Counter(TasksCompletedTotal,
			WithDescription("tasks that completed without error"),
			WithUnit("1")),
		TasksFailed: p.Counter(TasksFailedTotal,
			WithDescription("tasks that completed with an error or recovered panic"),
			WithUnit("1")),
		WorkerRestarts: p.Counter(WorkerRestartsTotal,
			WithDescription("worker respawns performed by the supervisor"),
			WithUnit("1")),
		TaskDuration: p.Histogram(TaskDurationSeconds,
			WithDescription("wall-clock time spent executing one task"),
			WithUnit("seconds")),
		ActiveWorkers: p.UpDownCounter(ActiveWorkersCurrent,
			WithDescription("workers currently alive"),
			WithUnit("1")),
	}
}
