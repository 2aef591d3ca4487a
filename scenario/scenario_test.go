package scenario_test

import (
	"path/filepath"
	"testing"

	"github.com/neurorank/fxpagerank/fixed"
	"github.com/neurorank/fxpagerank/graph"
	"github.com/neurorank/fxpagerank/pagerank"
	"github.com/neurorank/fxpagerank/scenario"
	"github.com/neurorank/fxpagerank/verify"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(ScenarioTestSuite))

func Test(t *testing.T) {
	// Run all gocheck test-suites
	gc.TestingT(t)
}

type ScenarioTestSuite struct{}

func (s *ScenarioTestSuite) TestFourNodeScenario(c *gc.C) {
	sc, err := scenario.Load(filepath.Join("testdata", "four_node.yaml"))
	c.Assert(err, gc.IsNil)
	c.Assert(sc.Name, gc.Equals, "four-node")
	c.Assert(sc.Edges, gc.HasLen, 7)
	c.Assert(sc.Edges[6], gc.Equals, scenario.Edge{Src: "D", Dst: "C"})

	g, err := sc.Graph()
	c.Assert(err, gc.IsNil)
	c.Assert(g.Labels(), gc.DeepEquals, []string{"A", "B", "C", "D"})
	c.Assert(g.Damping(), gc.Equals, 0.85)

	engCfg := sc.EngineConfig()
	c.Assert(engCfg.TruncateBits, gc.Equals, 8)
	c.Assert(engCfg.MaxIter, gc.Equals, 100)
	eng, err := pagerank.NewEngine(engCfg)
	c.Assert(err, gc.IsNil)
	res, err := eng.Run(g)
	c.Assert(err, gc.IsNil)
	c.Assert(res.ConvergenceRound < 50, gc.Equals, true)

	observed := res.Trajectory.Final().Ranks()
	report, err := sc.CompareExpected(g, observed)
	c.Assert(err, gc.IsNil)
	c.Assert(report.IsCorrect, gc.Equals, true, gc.Commentf("%+v", report.Rows()))

	v, err := verify.NewVerifier(sc.VerifierConfig())
	c.Assert(err, gc.IsNil)
	report, err = v.Verify(observed, g)
	c.Assert(err, gc.IsNil)
	c.Assert(report.IsCorrect, gc.Equals, true)
}

func (s *ScenarioTestSuite) TestDuplicateEdgesScenario(c *gc.C) {
	sc, err := scenario.Load(filepath.Join("testdata", "duplicate_edges.yaml"))
	c.Assert(err, gc.IsNil)
	c.Assert(sc.Edges, gc.DeepEquals, []scenario.Edge{{Src: "0", Dst: "1"}, {Src: "0", Dst: "1"}})

	_, err = sc.Graph()
	var vErr *graph.ValidationError
	c.Assert(xerrors.As(err, &vErr), gc.Equals, true)
	c.Assert(xerrors.Is(err, graph.ErrDuplicateEdge), gc.Equals, true)
}

func (s *ScenarioTestSuite) TestHardwareScenario(c *gc.C) {
	sc, err := scenario.Load(filepath.Join("testdata", "hardware.yaml"))
	c.Assert(err, gc.IsNil)

	engCfg := sc.EngineConfig()
	c.Assert(engCfg.RankFormat, gc.Equals, fixed.S1615)
	c.Assert(engCfg.Undamped, gc.Equals, true)
	c.Assert(*sc.VerifierConfig().Damping, gc.Equals, 1.0)

	g, err := sc.Graph()
	c.Assert(err, gc.IsNil)
	c.Assert(g.Labels(), gc.DeepEquals, []string{"0", "1"})

	eng, err := pagerank.NewEngine(engCfg)
	c.Assert(err, gc.IsNil)
	res, err := eng.Run(g)
	c.Assert(err, gc.IsNil)
	c.Assert(res.Trajectory.Final().Ranks(), gc.DeepEquals, []float64{0.5, 0.5})

	v, err := verify.NewVerifier(sc.VerifierConfig())
	c.Assert(err, gc.IsNil)
	report, err := v.VerifyTrajectory(res.Trajectory, g)
	c.Assert(err, gc.IsNil)
	c.Assert(report.IsCorrect, gc.Equals, true)
}

func (s *ScenarioTestSuite) TestExplicitZeroDamping(c *gc.C) {
	sc, err := scenario.Parse([]byte("edges: [[a, b], [b, c], [c, a], [a, c]]\ndamping: 0\n"))
	c.Assert(err, gc.IsNil)
	c.Assert(sc.Damping, gc.NotNil)

	g, err := sc.Graph()
	c.Assert(err, gc.IsNil)
	c.Assert(g.Damping(), gc.Equals, 0.0)

	sc, err = scenario.Parse([]byte("edges: [[a, b], [b, a]]\n"))
	c.Assert(err, gc.IsNil)
	g, err = sc.Graph()
	c.Assert(err, gc.IsNil)
	c.Assert(g.Damping(), gc.Equals, graph.DefaultDamping)
}

func (s *ScenarioTestSuite) TestParseErrors(c *gc.C) {
	specs := []struct {
		descr  string
		doc    string
		expErr string
	}{
		{descr: "empty document", doc: "", expErr: "empty scenario"},
		{descr: "unknown key", doc: "edges: [[a, b]]\ndampnig: 0.5\n", expErr: "(?ms)parse scenario: .*dampnig.*"},
		{descr: "edge with three endpoints", doc: "edges: [[a, b, c]]\n", expErr: "(?ms)parse scenario: line 1: an edge needs exactly two endpoints, got 3"},
		{descr: "edge mapping without dst", doc: "edges:\n  - {src: a}\n", expErr: "(?ms)parse scenario: line 2: an edge needs both src and dst"},
		{descr: "nested label", doc: "edges: [[[a], b]]\n", expErr: "(?ms)parse scenario: line 1: a label must be a non-empty scalar"},
		{descr: "scalar edge", doc: "edges: [a]\n", expErr: "(?ms)parse scenario: line 1: an edge must be a pair or a mapping"},
		{descr: "bad rank format", doc: "edges: [[a, b]]\nrank_format: X1.2\n", expErr: `parse scenario: parse format "X1.2": prefix must be S or U`},
	}

	for specIndex, spec := range specs {
		c.Logf("[spec %d] %s", specIndex, spec.descr)
		_, err := scenario.Parse([]byte(spec.doc))
		c.Assert(err, gc.ErrorMatches, spec.expErr)
	}
}

func (s *ScenarioTestSuite) TestCompareExpectedErrors(c *gc.C) {
	sc, err := scenario.Parse([]byte("edges: [[a, b], [b, a]]\nexpected: {a: 0.5}\n"))
	c.Assert(err, gc.IsNil)
	g, err := sc.Graph()
	c.Assert(err, gc.IsNil)

	_, err = sc.CompareExpected(g, []float64{0.5, 0.5})
	c.Assert(err, gc.ErrorMatches, `no expected rank for vertex "b"`)

	sc.Expected = nil
	_, err = sc.CompareExpected(g, []float64{0.5, 0.5})
	c.Assert(err, gc.ErrorMatches, "scenario does not list expected ranks")
}

func (s *ScenarioTestSuite) TestLoadMissingFile(c *gc.C) {
	_, err := scenario.Load(filepath.Join("testdata", "missing.yaml"))
	c.Assert(err, gc.ErrorMatches, "load scenario: .*")
}
