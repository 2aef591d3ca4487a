package graph_test

import (
	"testing"

	"github.com/neurorank/fxpagerank/graph"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(GraphTestSuite))

func Test(t *testing.T) {
	// Run all gocheck test-suites
	gc.TestingT(t)
}

type GraphTestSuite struct{}

func fourNodeEdges() []graph.Edge {
	return []graph.Edge{
		{"A", "B"},
		{"A", "C"},
		{"B", "D"},
		{"C", "A"},
		{"C", "B"},
		{"C", "D"},
		{"D", "C"},
	}
}

func (s *GraphTestSuite) TestDerivedLabelOrder(c *gc.C) {
	g, err := graph.Build(graph.Config{
		Edges: []graph.Edge{
			{"z", "y"},
			{"x", "z"},
			{"y", "x"},
			{"y", "w"},
			{"w", "z"},
		},
	})
	c.Assert(err, gc.IsNil)

	// First appearance, source before target; never sorted.
	c.Assert(g.Labels(), gc.DeepEquals, []string{"z", "y", "x", "w"})
}

func (s *GraphTestSuite) TestExplicitLabelsFixOrder(c *gc.C) {
	g, err := graph.Build(graph.Config{
		Edges:  fourNodeEdges(),
		Labels: []string{"D", "C", "B", "A"},
	})
	c.Assert(err, gc.IsNil)
	c.Assert(g.Labels(), gc.DeepEquals, []string{"D", "C", "B", "A"})

	idx, err := g.IndexOf("B")
	c.Assert(err, gc.IsNil)
	c.Assert(idx, gc.Equals, 2)

	label, err := g.LabelOf(0)
	c.Assert(err, gc.IsNil)
	c.Assert(label, gc.Equals, "D")
}

func (s *GraphTestSuite) TestDegreeTables(c *gc.C) {
	g, err := graph.Build(graph.Config{Edges: fourNodeEdges()})
	c.Assert(err, gc.IsNil)

	c.Assert(g.Labels(), gc.DeepEquals, []string{"A", "B", "C", "D"})
	c.Assert(g.OutgoingEdgesCount(), gc.DeepEquals, []int{2, 1, 3, 1})
	c.Assert(g.IncomingEdgesCount(), gc.DeepEquals, []int{1, 2, 2, 2})
	c.Assert(g.Neighbors(2), gc.DeepEquals, []int{0, 1, 3})
	c.Assert(g.Damping(), gc.Equals, graph.DefaultDamping)

	verts := g.SimVertices()
	c.Assert(verts, gc.HasLen, 4)
	c.Assert(verts[2], gc.DeepEquals, graph.SimVertex{Index: 2, Label: "C", InDegree: 2, OutDegree: 3})
}

func (s *GraphTestSuite) TestIntEdges(c *gc.C) {
	g, err := graph.Build(graph.Config{
		Edges: graph.IntEdges([][2]int{{0, 1}, {1, 0}, {1, 1}}),
	})
	c.Assert(err, gc.IsNil)
	c.Assert(g.Labels(), gc.DeepEquals, []string{"0", "1"})
	c.Assert(g.OutgoingEdgesCount(), gc.DeepEquals, []int{1, 2})
}

func (s *GraphTestSuite) TestDuplicateEdges(c *gc.C) {
	_, err := graph.Build(graph.Config{
		Edges: graph.IntEdges([][2]int{{0, 1}, {0, 1}}),
	})
	c.Assert(err, gc.NotNil)

	var vErr *graph.ValidationError
	c.Assert(xerrors.As(err, &vErr), gc.Equals, true)
	c.Assert(xerrors.Is(err, graph.ErrDuplicateEdge), gc.Equals, true)
	// Vertex 1 is also a dead end.
	c.Assert(xerrors.Is(err, graph.ErrDanglingVertex), gc.Equals, true)
}

func (s *GraphTestSuite) TestUndeclaredLabels(c *gc.C) {
	_, err := graph.Build(graph.Config{
		Edges:  fourNodeEdges(),
		Labels: []string{"A", "B", "C"},
	})
	c.Assert(xerrors.Is(err, graph.ErrUnknownLabel), gc.Equals, true)
	c.Assert(err, gc.ErrorMatches, `(?ms).*edge "B" -> "D": target.*`)
}

func (s *GraphTestSuite) TestDuplicateLabels(c *gc.C) {
	_, err := graph.Build(graph.Config{
		Edges:  []graph.Edge{{"A", "A"}},
		Labels: []string{"A", "A"},
	})
	c.Assert(xerrors.Is(err, graph.ErrDuplicateLabel), gc.Equals, true)
}

func (s *GraphTestSuite) TestDanglingVertex(c *gc.C) {
	_, err := graph.Build(graph.Config{
		Edges: []graph.Edge{{"A", "B"}, {"B", "C"}},
	})
	c.Assert(xerrors.Is(err, graph.ErrDanglingVertex), gc.Equals, true)
	c.Assert(err, gc.ErrorMatches, `(?ms).*vertex "C".*`)
}

func (s *GraphTestSuite) TestDampingRange(c *gc.C) {
	for _, d := range []float64{-0.1, 1.0, 1.5} {
		_, err := graph.Build(graph.Config{Edges: fourNodeEdges(), Damping: graph.DampingFactor(d)})
		c.Assert(xerrors.Is(err, graph.ErrDampingOutOfRange), gc.Equals, true, gc.Commentf("damping %v", d))
	}

	g, err := graph.Build(graph.Config{Edges: fourNodeEdges(), Damping: graph.DampingFactor(0.5)})
	c.Assert(err, gc.IsNil)
	c.Assert(g.Damping(), gc.Equals, 0.5)

	g, err = graph.Build(graph.Config{Edges: fourNodeEdges(), Damping: graph.DampingFactor(0)})
	c.Assert(err, gc.IsNil)
	c.Assert(g.Damping(), gc.Equals, 0.0)
}

func (s *GraphTestSuite) TestEmptyGraph(c *gc.C) {
	_, err := graph.Build(graph.Config{})
	c.Assert(xerrors.Is(err, graph.ErrNoVertices), gc.Equals, true)
}

func (s *GraphTestSuite) TestUnknownLookups(c *gc.C) {
	g, err := graph.Build(graph.Config{Edges: fourNodeEdges()})
	c.Assert(err, gc.IsNil)

	_, err = g.IndexOf("nope")
	c.Assert(xerrors.Is(err, graph.ErrUnknownVertex), gc.Equals, true)
	_, err = g.LabelOf(4)
	c.Assert(xerrors.Is(err, graph.ErrUnknownVertex), gc.Equals, true)
}
