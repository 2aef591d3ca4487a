package neuron

import (
	"github.com/neurorank/fxpagerank/fixed"
	"golang.org/x/xerrors"
)

var (
	// ErrUnknownStateVar is returned when looking up a state variable that
	// the neuron does not have.
	ErrUnknownStateVar = xerrors.New("unknown state variable")

	// ErrFormatMismatch is returned when assigning a value whose format
	// differs from the format of the state variable.
	ErrFormatMismatch = xerrors.New("value format does not match state variable")
)

// StateVar identifies a per-vertex state variable of the hardware neuron.
type StateVar uint8

// The state variables of a PageRank neuron.
const (
	Rank StateVar = iota
	RankAcc
	RankCount

	numStateVars
)

// Descriptor describes the encoding of a state variable.
type Descriptor struct {
	Name   string
	Format fixed.Format
	Unit   string
}

var stateVarDescriptors = [numStateVars]Descriptor{
	Rank:      {Name: "rank", Format: fixed.S1615, Unit: "rk"},
	RankAcc:   {Name: "curr_rank_acc", Format: fixed.S1615, Unit: "rk"},
	RankCount: {Name: "curr_rank_count", Format: fixed.U32, Unit: "au"},
}

// StateVars returns all state variables in declaration order.
func StateVars() []StateVar {
	vars := make([]StateVar, numStateVars)
	for i := range vars {
		vars[i] = StateVar(i)
	}
	return vars
}

// ParseStateVar returns the state variable with the given name.
func ParseStateVar(name string) (StateVar, error) {
	for i, desc := range stateVarDescriptors {
		if desc.Name == name {
			return StateVar(i), nil
		}
	}
	return 0, xerrors.Errorf("%q: %w", name, ErrUnknownStateVar)
}

// Descriptor returns the encoding of v.
func (v StateVar) Descriptor() Descriptor { return stateVarDescriptors[v] }

// String returns the name of v.
func (v StateVar) String() string { return stateVarDescriptors[v].Name }

// State holds the state variables of a single neuron.
type State struct {
	Rank      fixed.Value
	RankAcc   fixed.Value
	RankCount fixed.Value
}

// NewState returns a state with the given initial rank and an empty
// accumulator.
func NewState(rank float64) (State, error) {
	r, err := fixed.FromFloat(rank, Rank.Descriptor().Format)
	if err != nil {
		return State{}, xerrors.Errorf("initial rank: %w", err)
	}
	return State{
		Rank:      r,
		RankAcc:   fixed.Zero(RankAcc.Descriptor().Format),
		RankCount: fixed.Zero(RankCount.Descriptor().Format),
	}, nil
}

// Get returns the value of state variable v.
func (s *State) Get(v StateVar) fixed.Value {
	switch v {
	case Rank:
		return s.Rank
	case RankAcc:
		return s.RankAcc
	case RankCount:
		return s.RankCount
	}
	panic(xerrors.Errorf("get state variable %d: %w", v, ErrUnknownStateVar))
}

// Set assigns val to state variable v. The value must already be encoded in
// the variable's format.
func (s *State) Set(v StateVar, val fixed.Value) error {
	if v >= numStateVars {
		return xerrors.Errorf("set state variable %d: %w", v, ErrUnknownStateVar)
	}
	if exp := v.Descriptor().Format; val.Format() != exp {
		return xerrors.Errorf("set %s to a %s value, expected %s: %w", v, val.Format(), exp, ErrFormatMismatch)
	}

	switch v {
	case Rank:
		s.Rank = val
	case RankAcc:
		s.RankAcc = val
	case RankCount:
		s.RankCount = val
	}
	return nil
}
