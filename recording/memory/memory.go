package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/neurorank/fxpagerank/recording"
	"github.com/neurorank/fxpagerank/trajectory"
	"golang.org/x/xerrors"
)

// Compile-time check for ensuring InMemoryStore implements recording.Store.
var _ recording.Store = (*InMemoryStore)(nil)

type runEntry struct {
	run  recording.Run
	rows []trajectory.Row
}

// InMemoryStore implements an in-memory trajectory store that can be
// concurrently accessed by multiple engines.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*runEntry
}

// NewInMemoryStore creates a new in-memory trajectory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		runs: make(map[uuid.UUID]*runEntry),
	}
}

// CreateRun registers a new run.
func (s *InMemoryStore) CreateRun(run *recording.Run) error {
	if err := run.RankFormat.Validate(); err != nil {
		return xerrors.Errorf("create run: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure the run ID is unique
	id := uuid.New()
	for s.runs[id] != nil {
		id = uuid.New()
	}
	run.ID = id
	run.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	cpy := *run
	cpy.Labels = append([]string(nil), run.Labels...)
	s.runs[id] = &runEntry{run: cpy}
	return nil
}

// FindRun looks up a run by its ID.
func (s *InMemoryStore) FindRun(id uuid.UUID) (*recording.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry := s.runs[id]
	if entry == nil {
		return nil, xerrors.Errorf("find run: %w", recording.ErrNotFound)
	}
	cpy := entry.run
	cpy.Labels = append([]string(nil), entry.run.Labels...)
	return &cpy, nil
}

// AppendRow stores the row committed by round.
func (s *InMemoryStore) AppendRow(runID uuid.UUID, round int, row trajectory.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.runs[runID]
	if entry == nil {
		return xerrors.Errorf("append row: %w", recording.ErrNotFound)
	}
	if round != len(entry.rows) {
		return xerrors.Errorf("append row for round %d after %d rows: %w", round, len(entry.rows), recording.ErrRoundOutOfOrder)
	}
	if err := recording.CheckRow(&entry.run, row); err != nil {
		return xerrors.Errorf("append row: %w", err)
	}
	entry.rows = append(entry.rows, append(trajectory.Row(nil), row...))
	return nil
}

// Trajectory returns a copy of the rows recorded for a run.
func (s *InMemoryStore) Trajectory(runID uuid.UUID) (*trajectory.Trajectory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry := s.runs[runID]
	if entry == nil {
		return nil, xerrors.Errorf("trajectory: %w", recording.ErrNotFound)
	}
	t := trajectory.New(append([]string(nil), entry.run.Labels...))
	for _, row := range entry.rows {
		if err := t.Append(append(trajectory.Row(nil), row...)); err != nil {
			return nil, err
		}
	}
	return t, nil
}
