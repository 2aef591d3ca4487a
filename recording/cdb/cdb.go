package cdb

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/neurorank/fxpagerank/fixed"
	"github.com/neurorank/fxpagerank/recording"
	"github.com/neurorank/fxpagerank/trajectory"
	"golang.org/x/xerrors"
)

var (
	createRunQuery = `
INSERT INTO runs (labels, rank_format, created_at) VALUES ($1, $2, NOW())
RETURNING id, created_at
`
	findRunQuery    = "SELECT labels, rank_format, created_at FROM runs WHERE id=$1"
	advanceRunQuery = "UPDATE runs SET rounds=rounds+1 WHERE id=$1 AND rounds=$2"
	insertRankQuery = "INSERT INTO ranks (run_id, round, vertex, rank, pending, msg_count) VALUES ($1, $2, $3, $4, $5, $6)"
	runRanksQuery   = "SELECT round, vertex, rank, pending, msg_count FROM ranks WHERE run_id=$1 ORDER BY round, vertex"
	roundCountQuery = "SELECT rounds FROM runs WHERE id=$1"

	// ErrCorruptTrajectory is returned when the stored entries of a run do
	// not form complete rounds.
	ErrCorruptTrajectory = xerrors.New("stored trajectory is incomplete")

	// Compile-time check for ensuring CockroachDBStore implements
	// recording.Store.
	_ recording.Store = (*CockroachDBStore)(nil)
)

// CockroachDBStore implements a trajectory store that persists runs to a
// cockroachdb (or any postgres-compatible) instance.
type CockroachDBStore struct {
	db *sql.DB
}

// NewCockroachDBStore returns a CockroachDBStore instance that connects to
// the cockroachdb instance specified by dsn.
func NewCockroachDBStore(dsn string) (*CockroachDBStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	return &CockroachDBStore{db: db}, nil
}

// Close terminates the connection to the backing cockroachdb instance.
func (c *CockroachDBStore) Close() error {
	return c.db.Close()
}

// CreateRun registers a new run.
func (c *CockroachDBStore) CreateRun(run *recording.Run) error {
	if err := run.RankFormat.Validate(); err != nil {
		return xerrors.Errorf("create run: %w", err)
	}

	row := c.db.QueryRow(createRunQuery, pq.Array(run.Labels), run.RankFormat.String())
	if err := row.Scan(&run.ID, &run.CreatedAt); err != nil {
		return xerrors.Errorf("create run: %w", err)
	}

	run.CreatedAt = run.CreatedAt.UTC()
	return nil
}

// FindRun looks up a run by its ID.
func (c *CockroachDBStore) FindRun(id uuid.UUID) (*recording.Run, error) {
	var (
		run    = &recording.Run{ID: id}
		format string
	)
	row := c.db.QueryRow(findRunQuery, id)
	if err := row.Scan(pq.Array(&run.Labels), &format, &run.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, xerrors.Errorf("find run: %w", recording.ErrNotFound)
		}

		return nil, xerrors.Errorf("find run: %w", err)
	}

	f, err := fixed.ParseFormat(format)
	if err != nil {
		return nil, xerrors.Errorf("find run: %w", err)
	}
	run.RankFormat = f
	run.CreatedAt = run.CreatedAt.UTC()
	return run, nil
}

// AppendRow stores the row committed by round. The row is written in a
// single transaction together with the run's round counter so that
// concurrent appends for the same round cannot both succeed.
func (c *CockroachDBStore) AppendRow(runID uuid.UUID, round int, row trajectory.Row) error {
	run, err := c.FindRun(runID)
	if err != nil {
		return xerrors.Errorf("append row: %w", err)
	}
	if err = recording.CheckRow(run, row); err != nil {
		return xerrors.Errorf("append row: %w", err)
	}

	tx, err := c.db.Begin()
	if err != nil {
		return xerrors.Errorf("append row: %w", err)
	}
	if err = appendRow(tx, runID, round, row); err != nil {
		_ = tx.Rollback()
		if xerrors.Is(err, recording.ErrRoundOutOfOrder) {
			return c.outOfOrderError(runID, round)
		}
		return xerrors.Errorf("append row: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return xerrors.Errorf("append row: %w", err)
	}
	return nil
}

func appendRow(tx *sql.Tx, runID uuid.UUID, round int, row trajectory.Row) error {
	res, err := tx.Exec(advanceRunQuery, runID, round)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n != 1 {
		return recording.ErrRoundOutOfOrder
	}

	stmt, err := tx.Prepare(insertRankQuery)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for vertex, st := range row {
		if _, err = stmt.Exec(runID, round, vertex, st.Rank.Raw(), st.Pending.Raw(), st.MessageCount); err != nil {
			if isUniqueViolationError(err) {
				return recording.ErrRoundOutOfOrder
			}
			return err
		}
	}
	return nil
}

func (c *CockroachDBStore) outOfOrderError(runID uuid.UUID, round int) error {
	var rounds int
	if err := c.db.QueryRow(roundCountQuery, runID).Scan(&rounds); err != nil {
		return xerrors.Errorf("append row for round %d: %w", round, recording.ErrRoundOutOfOrder)
	}
	return xerrors.Errorf("append row for round %d after %d rows: %w", round, rounds, recording.ErrRoundOutOfOrder)
}

// Trajectory returns the rows recorded for a run.
func (c *CockroachDBStore) Trajectory(runID uuid.UUID) (*trajectory.Trajectory, error) {
	run, err := c.FindRun(runID)
	if err != nil {
		return nil, xerrors.Errorf("trajectory: %w", err)
	}

	rows, err := c.db.Query(runRanksQuery, runID)
	if err != nil {
		return nil, xerrors.Errorf("trajectory: %w", err)
	}
	defer func() { _ = rows.Close() }()

	asm := newRowAssembler(run)
	for rows.Next() {
		var (
			round, vertex, count int
			rank, pending        int64
		)
		if err = rows.Scan(&round, &vertex, &rank, &pending, &count); err != nil {
			return nil, xerrors.Errorf("trajectory: %w", err)
		}
		if err = asm.add(round, vertex, rank, pending, count); err != nil {
			return nil, xerrors.Errorf("trajectory: %w", err)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, xerrors.Errorf("trajectory: %w", err)
	}
	t, err := asm.finish()
	if err != nil {
		return nil, xerrors.Errorf("trajectory: %w", err)
	}
	return t, nil
}

// rowAssembler rebuilds a trajectory from rank entries sorted by round and
// vertex.
type rowAssembler struct {
	run *recording.Run
	t   *trajectory.Trajectory
	cur trajectory.Row
}

func newRowAssembler(run *recording.Run) *rowAssembler {
	return &rowAssembler{run: run, t: trajectory.New(run.Labels)}
}

func (a *rowAssembler) add(round, vertex int, rank, pending int64, count int) error {
	width := len(a.run.Labels)
	if round != a.t.Len() || vertex != len(a.cur) || vertex >= width {
		return xerrors.Errorf("unexpected entry for round %d, vertex %d: %w", round, vertex, ErrCorruptTrajectory)
	}

	a.cur = append(a.cur, trajectory.RankState{
		Rank:         fixed.FromRaw(rank, a.run.RankFormat),
		Pending:      fixed.FromRaw(pending, a.run.RankFormat),
		MessageCount: count,
	})
	if len(a.cur) == width {
		if err := a.t.Append(a.cur); err != nil {
			return err
		}
		a.cur = nil
	}
	return nil
}

// finish returns the assembled trajectory. A trailing round with missing
// vertices is reported as an error.
func (a *rowAssembler) finish() (*trajectory.Trajectory, error) {
	if len(a.cur) != 0 {
		return nil, xerrors.Errorf("round %d has %d of %d entries: %w", a.t.Len(), len(a.cur), len(a.run.Labels), ErrCorruptTrajectory)
	}
	return a.t, nil
}

// isUniqueViolationError returns true if err indicates a unique constraint
// violation.
func isUniqueViolationError(err error) bool {
	pqErr, valid := err.(*pq.Error)
	if !valid {
		return false
	}

	return pqErr.Code.Name() == "unique_violation"
}
