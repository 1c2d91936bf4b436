package task

import "testing"

func TestNewTask(t *testing.T) {
	task := NewTask(OperationEnrichBatch, PriorityUserInitiated, map[string]any{"batch_id": int64(7)})

	if task.Operation() != OperationEnrichBatch {
		t.Errorf("Operation() = %v, want %v", task.Operation(), OperationEnrichBatch)
	}
	if task.Priority() != int(PriorityUserInitiated) {
		t.Errorf("Priority() = %d, want %d", task.Priority(), PriorityUserInitiated)
	}
	if task.DedupKey() != "firmint.batch.enrich:7" {
		t.Errorf("DedupKey() = %q, want %q", task.DedupKey(), "firmint.batch.enrich:7")
	}
}

func TestTask_PayloadIsCopied(t *testing.T) {
	payload := map[string]any{"batch_id": int64(1)}
	task := NewTask(OperationEnrichBatch, PriorityNormal, payload)
	payload["batch_id"] = int64(99)

	got := task.Payload()
	if got["batch_id"] != int64(1) {
		t.Errorf("payload batch_id = %v, want 1", got["batch_id"])
	}

	// Mutating the returned copy must not affect the task either.
	got["batch_id"] = int64(5)
	if id, _ := task.BatchID(); id != 1 {
		t.Errorf("BatchID() = %d, want 1", id)
	}
}

func TestTask_BatchID(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    int64
		ok      bool
	}{
		{"int64", map[string]any{"batch_id": int64(3)}, 3, true},
		{"int", map[string]any{"batch_id": 4}, 4, true},
		{"float64 from json", map[string]any{"batch_id": float64(5)}, 5, true},
		{"missing", map[string]any{}, 0, false},
		{"wrong type", map[string]any{"batch_id": "nope"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := NewTask(OperationEnrichBatch, PriorityNormal, tt.payload)
			got, ok := task.BatchID()
			if got != tt.want || ok != tt.ok {
				t.Errorf("BatchID() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestTask_WithID(t *testing.T) {
	task := NewTask(OperationEnrichBatch, PriorityNormal, nil)
	withID := task.WithID(12)

	if withID.ID() != 12 {
		t.Errorf("ID() = %d, want 12", withID.ID())
	}
	if task.ID() != 0 {
		t.Error("WithID must not mutate the original task")
	}
}
