// Package recording persists engine trajectories so that runs can be
// replayed, frozen and verified after the fact.
package recording

import (
	"time"

	"github.com/google/uuid"
	"github.com/neurorank/fxpagerank/fixed"
	"github.com/neurorank/fxpagerank/pagerank"
	"github.com/neurorank/fxpagerank/trajectory"
	"golang.org/x/xerrors"
)

var (
	// ErrNotFound is returned when looking up an unknown run.
	ErrNotFound = xerrors.New("run not found")

	// ErrRoundOutOfOrder is returned when a row is appended for any round
	// other than the next one.
	ErrRoundOutOfOrder = xerrors.New("round out of order")

	// ErrFormatMismatch is returned when a row holds values whose format
	// differs from the format of the run.
	ErrFormatMismatch = xerrors.New("rank format mismatch")
)

// Run describes a recorded engine run.
type Run struct {
	// A unique identifier for the run, assigned by the store.
	ID uuid.UUID

	// The vertex labels in column order.
	Labels []string

	// The format of the recorded ranks.
	RankFormat fixed.Format

	// The time the run was registered, assigned by the store.
	CreatedAt time.Time
}

// Store is implemented by objects that can persist trajectories.
type Store interface {
	// CreateRun registers a new run and assigns an ID to it.
	CreateRun(run *Run) error

	// FindRun looks up a run by its ID.
	FindRun(id uuid.UUID) (*Run, error)

	// AppendRow stores the row committed by the given round. Rounds must
	// be appended in order, starting at 0.
	AppendRow(runID uuid.UUID, round int, row trajectory.Row) error

	// Trajectory returns all rows recorded for a run.
	Trajectory(runID uuid.UUID) (*trajectory.Trajectory, error)
}

// CheckRow returns an error if row cannot be recorded for run.
func CheckRow(run *Run, row trajectory.Row) error {
	if len(row) != len(run.Labels) {
		return xerrors.Errorf("row of %d entries for %d vertices: %w", len(row), len(run.Labels), trajectory.ErrRowWidth)
	}
	for i, st := range row {
		if st.Rank.Format() != run.RankFormat || st.Pending.Format() != run.RankFormat {
			return xerrors.Errorf("vertex %q: %w", run.Labels[i], ErrFormatMismatch)
		}
	}
	return nil
}

// Observer returns a pagerank.RoundObserver that appends every committed row
// to run.
func Observer(s Store, run *Run) pagerank.RoundObserver {
	return pagerank.RoundObserverFunc(func(round int, row trajectory.Row) error {
		if err := s.AppendRow(run.ID, round, row); err != nil {
			return xerrors.Errorf("record round %d: %w", round, err)
		}
		return nil
	})
}

// Chain returns a pagerank.RoundObserver that notifies each non-nil observer
// in turn, stopping at the first error.
func Chain(observers ...pagerank.RoundObserver) pagerank.RoundObserver {
	return pagerank.RoundObserverFunc(func(round int, row trajectory.Row) error {
		for _, o := range observers {
			if o == nil {
				continue
			}
			if err := o.ObserveRound(round, row); err != nil {
				return err
			}
		}
		return nil
	})
}
