package neuron

import (
	"bytes"
	"encoding/binary"

	"github.com/neurorank/fxpagerank/fixed"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(LayoutTestSuite))

type LayoutTestSuite struct {
	saved []Field
}

func (s *LayoutTestSuite) SetUpTest(c *gc.C) {
	s.saved = append([]Field(nil), ParameterLayout...)
}

func (s *LayoutTestSuite) TearDownTest(c *gc.C) {
	ParameterLayout = s.saved
}

func (s *LayoutTestSuite) TestEncodingFollowsLayout(c *gc.C) {
	// Swap the edge counts and move the completion flag to the front.
	ParameterLayout = []Field{
		s.saved[5], s.saved[1], s.saved[0], s.saved[2], s.saved[3], s.saved[4],
	}

	p := Params{
		IncomingEdgesCount: 7,
		OutgoingEdgesCount: 11,
		State: State{
			Rank:      fixed.FromRaw(13, fixed.S1615),
			RankAcc:   fixed.FromRaw(-1, fixed.S1615),
			RankCount: fixed.FromRaw(17, fixed.U32),
		},
		HasCompletedIter: true,
	}
	var buf bytes.Buffer
	c.Assert(EncodeParameters(&buf, []Params{p}), gc.IsNil)

	words := make([]uint32, len(ParameterLayout))
	c.Assert(binary.Read(bytes.NewReader(buf.Bytes()), binary.LittleEndian, words), gc.IsNil)
	c.Assert(words, gc.DeepEquals, []uint32{1, 11, 7, 13, 0xffffffff, 17})

	decoded, err := DecodeParameters(&buf, 1)
	c.Assert(err, gc.IsNil)
	c.Assert(decoded, gc.DeepEquals, []Params{p})
}

func (s *LayoutTestSuite) TestUnknownLayoutField(c *gc.C) {
	ParameterLayout = append(ParameterLayout, Field{Name: "refractory_period", Format: fixed.U32})

	err := EncodeParameters(new(bytes.Buffer), []Params{{}})
	c.Assert(xerrors.Is(err, ErrUnknownField), gc.Equals, true)
	_, err = DecodeParameters(new(bytes.Buffer), 1)
	c.Assert(err, gc.ErrorMatches, `decode parameters: parameter field "refractory_period": unknown parameter field`)
}
