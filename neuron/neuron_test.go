package neuron_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/neurorank/fxpagerank/fixed"
	"github.com/neurorank/fxpagerank/graph"
	"github.com/neurorank/fxpagerank/neuron"
	"github.com/neurorank/fxpagerank/pagerank"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(NeuronTestSuite))

func Test(t *testing.T) {
	// Run all gocheck test-suites
	gc.TestingT(t)
}

type NeuronTestSuite struct{}

func (s *NeuronTestSuite) TestStateVarDescriptors(c *gc.C) {
	var names, units []string
	for _, v := range neuron.StateVars() {
		names = append(names, v.String())
		units = append(units, v.Descriptor().Unit)
	}
	c.Assert(names, gc.DeepEquals, []string{"rank", "curr_rank_acc", "curr_rank_count"})
	c.Assert(units, gc.DeepEquals, []string{"rk", "rk", "au"})
	c.Assert(neuron.Rank.Descriptor().Format, gc.Equals, fixed.S1615)
	c.Assert(neuron.RankCount.Descriptor().Format, gc.Equals, fixed.U32)

	v, err := neuron.ParseStateVar("curr_rank_acc")
	c.Assert(err, gc.IsNil)
	c.Assert(v, gc.Equals, neuron.RankAcc)

	_, err = neuron.ParseStateVar("v_thresh")
	c.Assert(xerrors.Is(err, neuron.ErrUnknownStateVar), gc.Equals, true)
}

func (s *NeuronTestSuite) TestStateGetSet(c *gc.C) {
	st, err := neuron.NewState(0.25)
	c.Assert(err, gc.IsNil)
	c.Assert(st.Get(neuron.Rank).Float(), gc.Equals, 0.25)
	c.Assert(st.Get(neuron.RankAcc).Raw(), gc.Equals, int64(0))

	c.Assert(st.Set(neuron.RankAcc, fixed.MustFromFloat(0.5, fixed.S1615)), gc.IsNil)
	c.Assert(st.RankAcc.Float(), gc.Equals, 0.5)
	c.Assert(st.Set(neuron.RankCount, fixed.FromRaw(3, fixed.U32)), gc.IsNil)
	c.Assert(st.Get(neuron.RankCount).Raw(), gc.Equals, int64(3))

	err = st.Set(neuron.Rank, fixed.MustFromFloat(0.5, fixed.S3132))
	c.Assert(xerrors.Is(err, neuron.ErrFormatMismatch), gc.Equals, true)
	c.Assert(err, gc.ErrorMatches, "set rank to a S31.32 value, expected S16.15: .*")

	err = st.Set(neuron.StateVar(42), fixed.Zero(fixed.U32))
	c.Assert(xerrors.Is(err, neuron.ErrUnknownStateVar), gc.Equals, true)
}

func (s *NeuronTestSuite) TestParameterLayoutOrder(c *gc.C) {
	var names []string
	for _, f := range neuron.ParameterLayout {
		names = append(names, f.Name)
	}
	c.Assert(names, gc.DeepEquals, []string{
		"incoming_edges_count",
		"outgoing_edges_count",
		"rank",
		"curr_rank_acc",
		"curr_rank_count",
		"has_completed_iter",
	})
	c.Assert(neuron.GlobalLayout, gc.DeepEquals, []neuron.Field{{Name: "machine_time_step", Format: fixed.U32}})

	p := neuron.Params{
		IncomingEdgesCount: 7,
		OutgoingEdgesCount: 11,
		State: neuron.State{
			Rank:      fixed.FromRaw(13, fixed.S1615),
			RankAcc:   fixed.FromRaw(-1, fixed.S1615),
			RankCount: fixed.FromRaw(17, fixed.U32),
		},
		HasCompletedIter: true,
	}
	var buf bytes.Buffer
	c.Assert(neuron.EncodeParameters(&buf, []neuron.Params{p}), gc.IsNil)
	c.Assert(buf.Len(), gc.Equals, 4*len(neuron.ParameterLayout))

	words := make([]uint32, len(neuron.ParameterLayout))
	c.Assert(binary.Read(&buf, binary.LittleEndian, words), gc.IsNil)
	c.Assert(words, gc.DeepEquals, []uint32{7, 11, 13, 0xffffffff, 17, 1})
}

func (s *NeuronTestSuite) TestDecodeParameters(c *gc.C) {
	params, err := neuron.ParamsFromGraph(fourNodeGraph(c))
	c.Assert(err, gc.IsNil)

	var buf bytes.Buffer
	c.Assert(neuron.EncodeParameters(&buf, params), gc.IsNil)
	decoded, err := neuron.DecodeParameters(&buf, len(params))
	c.Assert(err, gc.IsNil)
	c.Assert(decoded, gc.DeepEquals, params)

	_, err = neuron.DecodeParameters(bytes.NewReader([]byte{1, 2, 3}), 1)
	c.Assert(err, gc.ErrorMatches, "decode parameters of neuron 0: .*")
}

func (s *NeuronTestSuite) TestParamsFromGraph(c *gc.C) {
	params, err := neuron.ParamsFromGraph(fourNodeGraph(c))
	c.Assert(err, gc.IsNil)
	c.Assert(params, gc.HasLen, 4)

	expIn := []uint32{1, 2, 2, 2}
	expOut := []uint32{2, 1, 3, 1}
	for i, p := range params {
		c.Assert(p.IncomingEdgesCount, gc.Equals, expIn[i])
		c.Assert(p.OutgoingEdgesCount, gc.Equals, expOut[i])
		c.Assert(p.State.Rank.Float(), gc.Equals, 0.25)
		c.Assert(p.HasCompletedIter, gc.Equals, false)
	}
}

func (s *NeuronTestSuite) TestParamsFromRow(c *gc.C) {
	g := fourNodeGraph(c)
	eng, err := pagerank.NewEngine(pagerank.Config{})
	c.Assert(err, gc.IsNil)
	res, err := eng.Run(g)
	c.Assert(err, gc.IsNil)

	params, err := neuron.ParamsFromRow(g, res.Trajectory.Final())
	c.Assert(err, gc.IsNil)
	for i, p := range params {
		c.Assert(p.HasCompletedIter, gc.Equals, true)
		c.Assert(p.State.Rank.Format(), gc.Equals, fixed.S1615)
		c.Assert(p.State.RankCount.Raw(), gc.Equals, int64(p.IncomingEdgesCount))

		// Re-encoding only drops fraction bits.
		delta := res.Trajectory.Final()[i].Rank.Float() - p.State.Rank.Float()
		c.Assert(delta >= 0 && delta < fixed.S1615.Resolution(), gc.Equals, true)
	}

	// The initial row has not received anything yet.
	params, err = neuron.ParamsFromRow(g, res.Trajectory.Row(0))
	c.Assert(err, gc.IsNil)
	c.Assert(params[0].HasCompletedIter, gc.Equals, false)

	_, err = neuron.ParamsFromRow(g, res.Trajectory.Final()[:2])
	c.Assert(err, gc.ErrorMatches, "row of 2 entries for 4 vertices: .*")
}

func (s *NeuronTestSuite) TestEncodeGlobals(c *gc.C) {
	var buf bytes.Buffer
	c.Assert(neuron.EncodeGlobals(&buf, 1000), gc.IsNil)
	c.Assert(buf.Bytes(), gc.DeepEquals, []byte{0xe8, 0x03, 0x00, 0x00})
}

func fourNodeGraph(c *gc.C) *graph.Graph {
	g, err := graph.Build(graph.Config{
		Edges: []graph.Edge{
			{Src: "A", Dst: "B"},
			{Src: "A", Dst: "C"},
			{Src: "B", Dst: "D"},
			{Src: "C", Dst: "A"},
			{Src: "C", Dst: "B"},
			{Src: "C", Dst: "D"},
			{Src: "D", Dst: "C"},
		},
	})
	c.Assert(err, gc.IsNil)
	return g
}
