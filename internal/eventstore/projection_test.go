package eventstore

import (
	"testing"
)

func TestJobHistoryProjectionRebuild(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	_ = Record(ctx, store, "job-1", JobStarted{Source: "a.gcode", Scripts: []string{"PauseAtTopAndBottom"}}, nil)
	_ = Record(ctx, store, "job-1", ScriptApplied{Script: "PauseAtTopAndBottom", Pauses: 2}, nil)
	_ = Record(ctx, store, "job-1", JobCompleted{Output: "a_pp.gcode", Pauses: 2}, nil)

	_ = Record(ctx, store, "job-2", JobStarted{Source: "b.gcode"}, nil)
	_ = Record(ctx, store, "job-2", JobFailed{Stage: "read", Error: "no such file"}, nil)

	_ = Record(ctx, store, "job-3", JobStarted{Source: "c.gcode"}, nil)
	_ = Record(ctx, store, "job-3", JobSkipped{Reason: "already post-processed"}, nil)

	_ = Record(ctx, store, "job-4", JobStarted{Source: "d.gcode"}, nil)

	projection := NewJobHistoryProjection(store, 10)
	if err := projection.Rebuild(ctx); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	history := projection.GetHistory()
	if len(history) != 3 {
		t.Fatalf("expected 3 finished jobs, got %d", len(history))
	}

	job1, ok := projection.GetJob("job-1")
	if !ok {
		t.Fatal("job-1 missing")
	}
	if job1.Status != StatusCompleted || job1.Pauses != 2 || job1.Output != "a_pp.gcode" || job1.CompletedAt == nil {
		t.Errorf("unexpected job-1 summary: %+v", job1)
	}

	job2, _ := projection.GetJob("job-2")
	if job2.Status != StatusFailed || job2.ErrorStage != "read" {
		t.Errorf("unexpected job-2 summary: %+v", job2)
	}

	job3, _ := projection.GetJob("job-3")
	if job3.Status != StatusSkipped || job3.SkipReason == "" {
		t.Errorf("unexpected job-3 summary: %+v", job3)
	}

	job4, ok := projection.GetJob("job-4")
	if !ok || job4.Status != StatusRunning {
		t.Errorf("expected job-4 running, got %+v", job4)
	}

	counts := projection.Counts()
	if counts[StatusCompleted] != 1 || counts[StatusFailed] != 1 || counts[StatusSkipped] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
	if projection.LastSyncTime().IsZero() {
		t.Error("expected last sync time to be set")
	}
}

func TestJobHistoryProjectionBounded(t *testing.T) {
	store := newTestStore(t)
	projection := NewJobHistoryProjection(store, 2)

	for _, id := range []string{"j1", "j2", "j3"} {
		projection.Apply(&BaseEvent{EventJobID: id, EventType: TypeJobStarted, EventPayload: []byte(`{}`)})
		projection.Apply(&BaseEvent{EventJobID: id, EventType: TypeJobCompleted, EventPayload: []byte(`{}`)})
	}

	history := projection.GetHistory()
	if len(history) != 2 {
		t.Fatalf("expected 2 jobs in history, got %d", len(history))
	}
	if history[0].JobID != "j3" || history[1].JobID != "j2" {
		t.Errorf("expected newest first, got %s, %s", history[0].JobID, history[1].JobID)
	}
	if _, ok := projection.GetJob("j1"); ok {
		t.Error("expected j1 to be pruned")
	}
}

func TestJobHistoryProjectionIgnoresEmptyJobID(t *testing.T) {
	projection := NewJobHistoryProjection(newTestStore(t), 0)
	projection.Apply(&BaseEvent{EventType: TypeJobCompleted, EventPayload: []byte(`{}`)})
	if len(projection.GetHistory()) != 0 {
		t.Error("expected event without job id to be ignored")
	}
}
