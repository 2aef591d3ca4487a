package neuron

import (
	"encoding/binary"
	"io"

	"github.com/neurorank/fxpagerank/fixed"
	"github.com/neurorank/fxpagerank/graph"
	"github.com/neurorank/fxpagerank/trajectory"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// ErrUnknownField is returned when a layout lists a field that Params does
// not have.
var ErrUnknownField = xerrors.New("unknown parameter field")

// Field describes one 32-bit word of a binary parameter block.
type Field struct {
	Name   string
	Format fixed.Format
}

// ParameterLayout lists the words of the per-neuron parameter block in the
// order in which the hardware kernel reads them.
var ParameterLayout = []Field{
	{Name: "incoming_edges_count", Format: fixed.U32},
	{Name: "outgoing_edges_count", Format: fixed.U32},
	{Name: "rank", Format: fixed.S1615},
	{Name: "curr_rank_acc", Format: fixed.S1615},
	{Name: "curr_rank_count", Format: fixed.U32},
	{Name: "has_completed_iter", Format: fixed.U32},
}

// GlobalLayout lists the words of the population-wide parameter block.
var GlobalLayout = []Field{
	{Name: "machine_time_step", Format: fixed.U32},
}

// Params holds the parameters of a single neuron.
type Params struct {
	IncomingEdgesCount uint32
	OutgoingEdgesCount uint32
	State              State
	HasCompletedIter   bool
}

// ParamsFromGraph returns the initial parameters of every vertex of g in
// canonical vertex order. Every neuron starts with a rank of 1/N.
func ParamsFromGraph(g *graph.Graph) ([]Params, error) {
	verts := g.SimVertices()
	if len(verts) == 0 {
		return nil, nil
	}

	params := make([]Params, len(verts))
	for i, sv := range verts {
		st, err := NewState(1.0 / float64(len(verts)))
		if err != nil {
			return nil, xerrors.Errorf("vertex %q: %w", sv.Label, err)
		}
		params[i] = Params{
			IncomingEdgesCount: uint32(sv.InDegree),
			OutgoingEdgesCount: uint32(sv.OutDegree),
			State:              st,
		}
	}
	return params, nil
}

// StateOf re-encodes a rank state computed by the engine in the hardware
// formats.
func StateOf(rs trajectory.RankState) State {
	return State{
		Rank:      rs.Rank.Convert(Rank.Descriptor().Format),
		RankAcc:   rs.Pending.Convert(RankAcc.Descriptor().Format),
		RankCount: fixed.FromRaw(int64(rs.MessageCount), RankCount.Descriptor().Format),
	}
}

// ParamsFromRow returns the parameter blocks that the hardware would hold
// after committing row. A neuron has completed its iteration once it has
// received a message along every incoming edge.
func ParamsFromRow(g *graph.Graph, row trajectory.Row) ([]Params, error) {
	if len(row) != g.Len() {
		return nil, xerrors.Errorf("row of %d entries for %d vertices: %w", len(row), g.Len(), trajectory.ErrRowWidth)
	}

	params := make([]Params, len(row))
	for i, sv := range g.SimVertices() {
		params[i] = Params{
			IncomingEdgesCount: uint32(sv.InDegree),
			OutgoingEdgesCount: uint32(sv.OutDegree),
			State:              StateOf(row[i]),
			HasCompletedIter:   row[i].MessageCount >= sv.InDegree,
		}
	}
	return params, nil
}

// wordAccessor reads and writes one word of a parameter block.
type wordAccessor struct {
	get func(*Params) uint32
	set func(*Params, uint32)
}

// valueWord returns the accessor of a fixed-point word stored in the field
// selected by sel.
func valueWord(sel func(*Params) *fixed.Value, f fixed.Format) wordAccessor {
	return wordAccessor{
		get: func(p *Params) uint32 { return uint32(sel(p).Bits()) },
		set: func(p *Params, w uint32) { *sel(p) = fixed.FromRaw(int64(w), f) },
	}
}

// paramWords maps every ParameterLayout field to the Params field backing it.
var paramWords = map[string]wordAccessor{
	"incoming_edges_count": {
		get: func(p *Params) uint32 { return p.IncomingEdgesCount },
		set: func(p *Params, w uint32) { p.IncomingEdgesCount = w },
	},
	"outgoing_edges_count": {
		get: func(p *Params) uint32 { return p.OutgoingEdgesCount },
		set: func(p *Params, w uint32) { p.OutgoingEdgesCount = w },
	},
	"rank":            valueWord(func(p *Params) *fixed.Value { return &p.State.Rank }, Rank.Descriptor().Format),
	"curr_rank_acc":   valueWord(func(p *Params) *fixed.Value { return &p.State.RankAcc }, RankAcc.Descriptor().Format),
	"curr_rank_count": valueWord(func(p *Params) *fixed.Value { return &p.State.RankCount }, RankCount.Descriptor().Format),
	"has_completed_iter": {
		get: func(p *Params) uint32 {
			if p.HasCompletedIter {
				return 1
			}
			return 0
		},
		set: func(p *Params, w uint32) { p.HasCompletedIter = w != 0 },
	},
}

// accessors returns the word accessors in ParameterLayout order.
func accessors() ([]wordAccessor, error) {
	out := make([]wordAccessor, len(ParameterLayout))
	for i, f := range ParameterLayout {
		acc, ok := paramWords[f.Name]
		if !ok {
			return nil, xerrors.Errorf("parameter field %q: %w", f.Name, ErrUnknownField)
		}
		out[i] = acc
	}
	return out, nil
}

// EncodeParameters writes the parameter block of every neuron to w as
// little-endian 32-bit words in ParameterLayout order.
func EncodeParameters(w io.Writer, params []Params) error {
	accs, err := accessors()
	if err != nil {
		return xerrors.Errorf("encode parameters: %w", err)
	}

	words := make([]uint32, len(accs))
	for i := range params {
		for j, acc := range accs {
			words[j] = acc.get(&params[i])
		}
		if err := binary.Write(w, binary.LittleEndian, words); err != nil {
			return xerrors.Errorf("encode parameters of neuron %d: %w", i, err)
		}
	}
	return nil
}

// DecodeParameters reads n parameter blocks laid out as ParameterLayout
// from r.
func DecodeParameters(r io.Reader, n int) ([]Params, error) {
	accs, err := accessors()
	if err != nil {
		return nil, xerrors.Errorf("decode parameters: %w", err)
	}

	params := make([]Params, n)
	words := make([]uint32, len(accs))
	for i := range params {
		if err := binary.Read(r, binary.LittleEndian, words); err != nil {
			return nil, xerrors.Errorf("decode parameters of neuron %d: %w", i, err)
		}
		params[i].State = State{
			Rank:      fixed.Zero(Rank.Descriptor().Format),
			RankAcc:   fixed.Zero(RankAcc.Descriptor().Format),
			RankCount: fixed.Zero(RankCount.Descriptor().Format),
		}
		for j, acc := range accs {
			acc.set(&params[i], words[j])
		}
	}
	return params, nil
}

// EncodeGlobals writes the population-wide parameter block to w.
func EncodeGlobals(w io.Writer, machineTimeStep uint32) error {
	if err := binary.Write(w, binary.LittleEndian, []uint32{machineTimeStep}); err != nil {
		return xerrors.Errorf("encode global parameters: %w", err)
	}
	return nil
}

// LogState emits the state variables of a neuron as a single log entry.
func LogState(logger *logrus.Entry, index int, st State) {
	fields := logrus.Fields{"neuron": index}
	for _, v := range StateVars() {
		desc := v.Descriptor()
		fields[desc.Name] = st.Get(v).Float()
	}
	logger.WithFields(fields).Debug("neuron state")
}
