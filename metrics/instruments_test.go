package metrics

import "testing"

func TestNewTaskInstruments_RecordsAgainstBasicProvider(t *testing.T) {
	p := NewBasicProvider()
	instr := NewTaskInstruments(p)

	instr.TasksCompleted.Add(1)
	instr.TasksFailed.Add(1)
	instr.WorkerRestarts.Add(1)
	instr.TaskDuration.Record(0.25)
	instr.ActiveWorkers.Add(1)
	instr.ActiveWorkers.Add(-1)

	if got := p.Counter(TasksCompletedTotal).(*BasicCounter).Snapshot(); got != 1 {
		t.Fatalf("TasksCompleted = %d; want 1", got)
	}
	if got := p.Counter(TasksFailedTotal).(*BasicCounter).Snapshot(); got != 1 {
		t.Fatalf("TasksFailed = %d; want 1", got)
	}
	if got := p.Counter(WorkerRestartsTotal).(*BasicCounter).Snapshot(); got != 1 {
		t.Fatalf("WorkerRestarts = %d; want 1", got)
	}
	if got := p.UpDownCounter(ActiveWorkersCurrent).(*BasicUpDownCounter).Snapshot(); got != 0 {
		t.Fatalf("ActiveWorkers = %d; want 0 (incremented then decremented)", got)
	}
}
