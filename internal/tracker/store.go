package tracker

import (
	"sync"

	"docrecon/internal/entity"
)

// Store owns the authoritative job state: the currently tracked job, the job
// roster, and the two independently-arriving derived payloads of the tracked
// job. All mutation goes through methods; readers get copies.
type Store struct {
	mu        sync.Mutex
	current   *entity.JobSnapshot
	roster    []entity.JobSnapshot
	result    *entity.JobResult
	extracted *entity.ExtractedCSVData
}

func NewStore() *Store {
	return &Store{}
}

// SetCurrent replaces the tracked job and clears derived data from any
// previous one.
func (s *Store) SetCurrent(snap *entity.JobSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *snap
	s.current = &cp
	s.result = nil
	s.extracted = nil
}

// Current returns a copy of the tracked job snapshot, if any.
func (s *Store) Current() (entity.JobSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return entity.JobSnapshot{}, false
	}
	return *s.current, true
}

// Apply overwrites the tracked snapshot unconditionally when the job ID
// matches: last fetch wins, no merge. A snapshot for a different job is
// ignored (its fetch was started before tracking moved on).
func (s *Store) Apply(snap *entity.JobSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.JobID != snap.JobID {
		return
	}
	cp := *snap
	s.current = &cp
}

// ReplaceRoster swaps in the full roster from the service. Full replace,
// not merge.
func (s *Store) ReplaceRoster(jobs []entity.JobSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster = append([]entity.JobSnapshot(nil), jobs...)
}

// Roster returns a copy of the known roster.
func (s *Store) Roster() []entity.JobSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.JobSnapshot(nil), s.roster...)
}

// SetResult attaches a derived result payload if jobID is still the tracked
// job.
func (s *Store) SetResult(jobID string, result *entity.JobResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.JobID != jobID {
		return
	}
	s.result = result
}

// Result returns the tracked job's result payload, if it has arrived.
func (s *Store) Result() (*entity.JobResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil, false
	}
	cp := *s.result
	return &cp, true
}

// SetExtracted attaches the structured extraction payload if jobID is still
// the tracked job.
func (s *Store) SetExtracted(jobID string, data *entity.ExtractedCSVData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.JobID != jobID {
		return
	}
	s.extracted = data
}

// Extracted returns the structured extraction payload, if it has arrived.
func (s *Store) Extracted() (*entity.ExtractedCSVData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.extracted == nil {
		return nil, false
	}
	cp := *s.extracted
	return &cp, true
}

// Remove drops jobID from the roster and, when it was the tracked job, clears
// the selection and derived data. Reports whether the tracked job was cleared.
func (s *Store) Remove(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.roster[:0]
	for _, j := range s.roster {
		if j.JobID != jobID {
			kept = append(kept, j)
		}
	}
	s.roster = kept

	if s.current != nil && s.current.JobID == jobID {
		s.current = nil
		s.result = nil
		s.extracted = nil
		return true
	}
	return false
}
