package cdb

import (
	"github.com/neurorank/fxpagerank/fixed"
	"github.com/neurorank/fxpagerank/recording"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(RowAssemblerTestSuite))

type RowAssemblerTestSuite struct{}

func (s *RowAssemblerTestSuite) TestCompleteRounds(c *gc.C) {
	asm := newRowAssembler(&recording.Run{Labels: []string{"A", "B"}, RankFormat: fixed.S1615})
	for round := 0; round < 3; round++ {
		for vertex := 0; vertex < 2; vertex++ {
			c.Assert(asm.add(round, vertex, int64(round*10+vertex), 0, vertex), gc.IsNil)
		}
	}

	t, err := asm.finish()
	c.Assert(err, gc.IsNil)
	c.Assert(t.Len(), gc.Equals, 3)
	c.Assert(t.Row(2)[1].Rank, gc.Equals, fixed.FromRaw(21, fixed.S1615))
	c.Assert(t.Row(2)[1].MessageCount, gc.Equals, 1)
}

func (s *RowAssemblerTestSuite) TestTrailingPartialRound(c *gc.C) {
	asm := newRowAssembler(&recording.Run{Labels: []string{"A", "B", "C"}, RankFormat: fixed.S1615})
	for vertex := 0; vertex < 3; vertex++ {
		c.Assert(asm.add(0, vertex, 1, 0, 0), gc.IsNil)
	}
	c.Assert(asm.add(1, 0, 1, 0, 0), gc.IsNil)

	_, err := asm.finish()
	c.Assert(xerrors.Is(err, ErrCorruptTrajectory), gc.Equals, true)
	c.Assert(err, gc.ErrorMatches, "round 1 has 1 of 3 entries: .*")
}

func (s *RowAssemblerTestSuite) TestMissingVertex(c *gc.C) {
	asm := newRowAssembler(&recording.Run{Labels: []string{"A", "B", "C"}, RankFormat: fixed.S1615})
	c.Assert(asm.add(0, 0, 1, 0, 0), gc.IsNil)

	err := asm.add(0, 2, 1, 0, 0)
	c.Assert(xerrors.Is(err, ErrCorruptTrajectory), gc.Equals, true)

	err = asm.add(1, 0, 1, 0, 0)
	c.Assert(xerrors.Is(err, ErrCorruptTrajectory), gc.Equals, true)
}
