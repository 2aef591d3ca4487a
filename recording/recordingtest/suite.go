package recordingtest

import (
	"github.com/google/uuid"
	"github.com/neurorank/fxpagerank/fixed"
	"github.com/neurorank/fxpagerank/graph"
	"github.com/neurorank/fxpagerank/pagerank"
	"github.com/neurorank/fxpagerank/recording"
	"github.com/neurorank/fxpagerank/trajectory"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

// SuiteBase defines a re-usable set of recording-related tests that can be
// executed against any type that implements recording.Store.
type SuiteBase struct {
	s recording.Store
}

// SetStore configures the test-suite to run all tests against s.
func (s *SuiteBase) SetStore(store recording.Store) {
	s.s = store
}

// TestCreateAndFindRun verifies run registration and lookups.
func (s *SuiteBase) TestCreateAndFindRun(c *gc.C) {
	run := &recording.Run{
		Labels:     []string{"A", "B", "C"},
		RankFormat: fixed.S1615,
	}
	c.Assert(s.s.CreateRun(run), gc.IsNil)
	c.Assert(run.ID, gc.Not(gc.Equals), uuid.Nil, gc.Commentf("expected an ID to be assigned to the new run"))
	c.Assert(run.CreatedAt.IsZero(), gc.Equals, false)

	other := &recording.Run{Labels: []string{"A"}, RankFormat: fixed.S3132}
	c.Assert(s.s.CreateRun(other), gc.IsNil)
	c.Assert(other.ID, gc.Not(gc.Equals), run.ID)

	stored, err := s.s.FindRun(run.ID)
	c.Assert(err, gc.IsNil)
	c.Assert(stored.Labels, gc.DeepEquals, run.Labels)
	c.Assert(stored.RankFormat, gc.Equals, fixed.S1615)
	c.Assert(stored.CreatedAt.Equal(run.CreatedAt), gc.Equals, true)
}

// TestFindUnknownRun verifies that unknown runs are reported.
func (s *SuiteBase) TestFindUnknownRun(c *gc.C) {
	_, err := s.s.FindRun(uuid.New())
	c.Assert(xerrors.Is(err, recording.ErrNotFound), gc.Equals, true)

	_, err = s.s.Trajectory(uuid.New())
	c.Assert(xerrors.Is(err, recording.ErrNotFound), gc.Equals, true)

	err = s.s.AppendRow(uuid.New(), 0, trajectory.Row{})
	c.Assert(xerrors.Is(err, recording.ErrNotFound), gc.Equals, true)
}

// TestInvalidRankFormat verifies that runs with unusable formats are
// rejected.
func (s *SuiteBase) TestInvalidRankFormat(c *gc.C) {
	err := s.s.CreateRun(&recording.Run{Labels: []string{"A"}})
	c.Assert(err, gc.ErrorMatches, "(?ms).*total bits must be positive.*")
}

// TestAppendRowChecks verifies that malformed or out of order rows are
// rejected without being stored.
func (s *SuiteBase) TestAppendRowChecks(c *gc.C) {
	run := &recording.Run{Labels: []string{"A", "B"}, RankFormat: fixed.S1615}
	c.Assert(s.s.CreateRun(run), gc.IsNil)

	good := makeRow(fixed.S1615, 0.5, 0.5)
	err := s.s.AppendRow(run.ID, 1, good)
	c.Assert(xerrors.Is(err, recording.ErrRoundOutOfOrder), gc.Equals, true)

	err = s.s.AppendRow(run.ID, 0, makeRow(fixed.S1615, 1))
	c.Assert(xerrors.Is(err, trajectory.ErrRowWidth), gc.Equals, true)

	err = s.s.AppendRow(run.ID, 0, makeRow(fixed.S3132, 0.5, 0.5))
	c.Assert(xerrors.Is(err, recording.ErrFormatMismatch), gc.Equals, true)

	c.Assert(s.s.AppendRow(run.ID, 0, good), gc.IsNil)
	err = s.s.AppendRow(run.ID, 0, good)
	c.Assert(xerrors.Is(err, recording.ErrRoundOutOfOrder), gc.Equals, true)

	t, err := s.s.Trajectory(run.ID)
	c.Assert(err, gc.IsNil)
	c.Assert(t.Len(), gc.Equals, 1)
	c.Assert(t.Labels(), gc.DeepEquals, run.Labels)
	c.Assert(t.Row(0), gc.DeepEquals, good)
}

// TestRecordEngineRun verifies that an engine run recorded through an
// observer can be read back bit for bit.
func (s *SuiteBase) TestRecordEngineRun(c *gc.C) {
	g, err := graph.Build(graph.Config{
		Edges: []graph.Edge{
			{Src: "A", Dst: "B"},
			{Src: "A", Dst: "C"},
			{Src: "B", Dst: "C"},
			{Src: "C", Dst: "A"},
		},
	})
	c.Assert(err, gc.IsNil)

	run := &recording.Run{Labels: g.Labels(), RankFormat: fixed.S3132}
	c.Assert(s.s.CreateRun(run), gc.IsNil)

	var rounds int
	counter := pagerank.RoundObserverFunc(func(int, trajectory.Row) error {
		rounds++
		return nil
	})
	eng, err := pagerank.NewEngine(pagerank.Config{
		TruncateBits: 8,
		Observer:     recording.Chain(recording.Observer(s.s, run), nil, counter),
	})
	c.Assert(err, gc.IsNil)
	res, err := eng.Run(g)
	c.Assert(err, gc.IsNil)
	c.Assert(rounds, gc.Equals, res.Trajectory.Len())

	stored, err := s.s.Trajectory(run.ID)
	c.Assert(err, gc.IsNil)
	c.Assert(stored.Len(), gc.Equals, res.Trajectory.Len())
	for r := 0; r < stored.Len(); r++ {
		c.Assert(stored.Row(r), gc.DeepEquals, res.Trajectory.Row(r), gc.Commentf("row %d", r))
	}
}

func makeRow(f fixed.Format, ranks ...float64) trajectory.Row {
	row := make(trajectory.Row, len(ranks))
	for i, x := range ranks {
		row[i] = trajectory.RankState{
			Rank:         fixed.MustFromFloat(x, f),
			Pending:      fixed.Zero(f),
			MessageCount: i,
		}
	}
	return row
}
