package jobs

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps job state in memory. Jobs do not survive a restart; the
// files they produced do.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]*Job), now: time.Now}
}

// Create registers a new pending job and returns its ID.
func (s *Store) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.jobs[id] = &Job{
		ID:        id,
		Status:    StatusPending,
		StartedAt: s.now(),
	}
	return id
}

// Get returns a copy of the job, or false when unknown.
func (s *Store) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// Update applies fn to the job under the store lock. Terminal statuses
// get their completion time stamped.
func (s *Store) Update(id string, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return
	}
	fn(j)
	if (j.Status == StatusCompleted || j.Status == StatusError) && j.CompletedAt == nil {
		done := s.now()
		j.CompletedAt = &done
	}
}

// List returns up to limit jobs, newest first, plus the total count.
func (s *Store) List(limit int) ([]Job, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	total := len(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, total
}

// Delete removes the job. Returns false when unknown.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return false
	}
	delete(s.jobs, id)
	return true
}

// Cleanup drops jobs started before cutoff and returns their IDs so the
// caller can remove their output folders.
func (s *Store) Cleanup(cutoff time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []string
	for id, j := range s.jobs {
		if j.StartedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Active counts jobs currently processing.
func (s *Store) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, j := range s.jobs {
		if j.Status == StatusProcessing {
			n++
		}
	}
	return n
}
