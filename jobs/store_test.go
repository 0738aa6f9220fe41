package jobs

import (
	"testing"
	"time"
)

func TestStoreLifecycle(t *testing.T) {
	s := NewStore()

	id := s.Create()
	job, ok := s.Get(id)
	if !ok || job.Status != StatusPending {
		t.Fatalf("created job: %+v", job)
	}

	s.Update(id, func(j *Job) {
		j.Status = StatusProcessing
		j.Progress = 40
	})
	job, _ = s.Get(id)
	if job.Status != StatusProcessing || job.Progress != 40 || job.CompletedAt != nil {
		t.Fatalf("processing job: %+v", job)
	}

	s.Update(id, func(j *Job) { j.Status = StatusCompleted })
	job, _ = s.Get(id)
	if job.CompletedAt == nil {
		t.Fatalf("terminal status must stamp completion time")
	}

	if !s.Delete(id) {
		t.Fatalf("delete known job")
	}
	if s.Delete(id) {
		t.Fatalf("delete unknown job must report false")
	}
}

func TestStoreListOrderAndLimit(t *testing.T) {
	s := NewStore()
	ts := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		ts = ts.Add(time.Minute)
		return ts
	}

	first := s.Create()
	s.Create()
	last := s.Create()

	list, total := s.List(2)
	if total != 3 || len(list) != 2 {
		t.Fatalf("list: %d of %d", len(list), total)
	}
	if list[0].ID != last {
		t.Fatalf("newest first, got %s", list[0].ID)
	}

	removed := s.Cleanup(ts.Add(-90 * time.Second))
	if len(removed) != 1 || removed[0] != first {
		t.Fatalf("cleanup: %v", removed)
	}
	if _, total = s.List(0); total != 2 {
		t.Fatalf("remaining: %d", total)
	}
}

func TestStoreActive(t *testing.T) {
	s := NewStore()
	a := s.Create()
	s.Create()
	s.Update(a, func(j *Job) { j.Status = StatusProcessing })
	if s.Active() != 1 {
		t.Fatalf("active: %d", s.Active())
	}
}
