package trajectory_test

import (
	"testing"

	"github.com/neurorank/fxpagerank/fixed"
	"github.com/neurorank/fxpagerank/trajectory"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(TrajectoryTestSuite))

func Test(t *testing.T) {
	// Run all gocheck test-suites
	gc.TestingT(t)
}

type TrajectoryTestSuite struct{}

func (s *TrajectoryTestSuite) TestFromMatrix(c *gc.C) {
	labels := []string{"a", "b"}
	tr, err := trajectory.FromMatrix(labels, [][]float64{
		{0.5, 0.5},
		{0.25, 0.75},
	}, fixed.S1615)
	c.Assert(err, gc.IsNil)
	c.Assert(tr.Len(), gc.Equals, 2)
	c.Assert(tr.Width(), gc.Equals, 2)
	c.Assert(tr.Labels(), gc.DeepEquals, labels)
	c.Assert(tr.Matrix(), gc.DeepEquals, [][]float64{{0.5, 0.5}, {0.25, 0.75}})
	c.Assert(tr.Final().Ranks(), gc.DeepEquals, []float64{0.25, 0.75})
	c.Assert(tr.Final().Sum(), gc.Equals, 1.0)
}

func (s *TrajectoryTestSuite) TestFromMatrixErrors(c *gc.C) {
	_, err := trajectory.FromMatrix([]string{"a"}, [][]float64{{0.5, 0.5}}, fixed.S1615)
	c.Assert(xerrors.Is(err, trajectory.ErrRowWidth), gc.Equals, true)

	_, err = trajectory.FromMatrix([]string{"a"}, [][]float64{{70000}}, fixed.S1615)
	c.Assert(xerrors.Is(err, fixed.ErrRange), gc.Equals, true)
	c.Assert(err, gc.ErrorMatches, "row 0, column 0: .*")
}

func (s *TrajectoryTestSuite) TestDistance(c *gc.C) {
	tr, err := trajectory.FromMatrix([]string{"a", "b", "c"}, [][]float64{
		{0.5, 0.25, 0.25},
		{0.25, 0.5, 0.125},
	}, fixed.S3132)
	c.Assert(err, gc.IsNil)
	c.Assert(trajectory.Distance(tr.Row(0), tr.Row(1)), gc.Equals, 0.625)
	c.Assert(trajectory.Distance(tr.Row(1), tr.Row(1)), gc.Equals, 0.0)
	c.Assert(trajectory.Distance(nil, nil), gc.Equals, 0.0)
}

func (s *TrajectoryTestSuite) TestCloneIsDeep(c *gc.C) {
	tr, err := trajectory.FromMatrix([]string{"a"}, [][]float64{{0.5}, {0.25}}, fixed.S1615)
	c.Assert(err, gc.IsNil)

	clone := tr.Clone()
	clone.Row(1)[0].Rank = fixed.MustFromFloat(1, fixed.S1615)
	c.Assert(tr.Row(1)[0].Rank.Float(), gc.Equals, 0.25)

	c.Assert(clone.Set(0, trajectory.Row{}), gc.NotNil)
	c.Assert(clone.Set(0, clone.Row(1)), gc.IsNil)
	c.Assert(clone.Matrix(), gc.DeepEquals, [][]float64{{1}, {1}})
}

func (s *TrajectoryTestSuite) TestAppendRejectsWrongWidth(c *gc.C) {
	tr := trajectory.New([]string{"a", "b"})
	err := tr.Append(trajectory.Row{{Rank: fixed.Zero(fixed.S1615)}})
	c.Assert(xerrors.Is(err, trajectory.ErrRowWidth), gc.Equals, true)
	c.Assert(tr.Final(), gc.IsNil)
}
