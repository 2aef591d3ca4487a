package graph_test

import (
	"math/rand"

	"github.com/neurorank/fxpagerank/graph"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(RandomGraphTestSuite))

type RandomGraphTestSuite struct{}

func (s *RandomGraphTestSuite) TestRandomGraphsAreValid(c *gc.C) {
	specs := []struct {
		vertices, edges int
	}{
		{1, 1},
		{5, 5},
		{10, 30},
		{4, 16},
		{100, 150},
	}

	rng := rand.New(rand.NewSource(42))
	for specIndex, spec := range specs {
		c.Logf("[spec %d] %d vertices, %d edges", specIndex, spec.vertices, spec.edges)
		cfg, err := graph.RandomConfig(spec.vertices, spec.edges, rng)
		c.Assert(err, gc.IsNil)

		g, err := graph.Build(cfg)
		c.Assert(err, gc.IsNil)
		c.Assert(g.Len(), gc.Equals, spec.vertices)
		c.Assert(g.Edges(), gc.HasLen, spec.edges)
		c.Assert(g.Labels()[0], gc.Equals, "#0")
	}
}

func (s *RandomGraphTestSuite) TestSameSeedSameGraph(c *gc.C) {
	a, err := graph.RandomConfig(50, 120, rand.New(rand.NewSource(7)))
	c.Assert(err, gc.IsNil)
	b, err := graph.RandomConfig(50, 120, rand.New(rand.NewSource(7)))
	c.Assert(err, gc.IsNil)
	c.Assert(a, gc.DeepEquals, b)

	other, err := graph.RandomConfig(50, 120, rand.New(rand.NewSource(8)))
	c.Assert(err, gc.IsNil)
	c.Assert(other.Edges, gc.Not(gc.DeepEquals), a.Edges)
}

func (s *RandomGraphTestSuite) TestImpossibleShapes(c *gc.C) {
	rng := rand.New(rand.NewSource(1))
	for _, shape := range [][2]int{{0, 0}, {5, 4}, {3, 10}, {-1, 3}} {
		_, err := graph.RandomConfig(shape[0], shape[1], rng)
		c.Assert(xerrors.Is(err, graph.ErrRandomShape), gc.Equals, true, gc.Commentf("shape %v", shape))
	}
}
