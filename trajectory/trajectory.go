// Package trajectory stores the per-round rank states produced by a
// message-passing PageRank run.
package trajectory

import (
	"math"

	"github.com/neurorank/fxpagerank/fixed"
	"golang.org/x/xerrors"
)

// ErrRowWidth is returned when a row does not have one entry per vertex.
var ErrRowWidth = xerrors.New("row width does not match the number of vertices")

// RankState is the state of a single vertex after a round.
type RankState struct {
	// The rank committed in this round.
	Rank fixed.Value

	// The sum of the payloads received during this round.
	Pending fixed.Value

	// The number of messages received during this round.
	MessageCount int
}

// Row holds one RankState per vertex in canonical vertex order.
type Row []RankState

// Ranks returns the committed ranks of the row as floats.
func (r Row) Ranks() []float64 {
	out := make([]float64, len(r))
	for i, st := range r {
		out[i] = st.Rank.Float()
	}
	return out
}

// Sum returns the sum of the row's ranks as a float.
func (r Row) Sum() float64 {
	var sum float64
	for _, st := range r {
		sum += st.Rank.Float()
	}
	return sum
}

// Distance returns the L1 distance between the ranks of two rows. The sum is
// computed exactly on the raw fixed-point encodings and converted to a float
// at the end. Both rows must have the same width and rank format.
func Distance(a, b Row) float64 {
	if len(a) != len(b) {
		panic("trajectory: distance between rows of different width")
	}
	if len(a) == 0 {
		return 0
	}

	var sum int64
	for i := range a {
		sum += a[i].Rank.Sub(b[i].Rank).Abs().Raw()
	}
	return math.Ldexp(float64(sum), -int(a[0].Rank.Format().FracBits))
}

// Trajectory is an append-only sequence of rows, one per round. Row 0 is
// the state before any message has been sent; row r is committed by round r.
type Trajectory struct {
	labels []string
	rows   []Row
}

// New returns an empty trajectory for vertices with the given labels.
func New(labels []string) *Trajectory {
	return &Trajectory{labels: labels}
}

// FromMatrix builds a trajectory from an externally recorded matrix of ranks
// (one row per round, one column per vertex), encoding every value in
// format f. Pending and message count fields are left zero.
func FromMatrix(labels []string, ranks [][]float64, f fixed.Format) (*Trajectory, error) {
	t := New(labels)
	for r, ranksRow := range ranks {
		row := make(Row, len(ranksRow))
		for i, x := range ranksRow {
			v, err := fixed.FromFloat(x, f)
			if err != nil {
				return nil, xerrors.Errorf("row %d, column %d: %w", r, i, err)
			}
			row[i] = RankState{Rank: v, Pending: fixed.Zero(f)}
		}
		if err := t.Append(row); err != nil {
			return nil, xerrors.Errorf("row %d: %w", r, err)
		}
	}
	return t, nil
}

// Labels returns the vertex labels, in column order.
func (t *Trajectory) Labels() []string { return t.labels }

// Width returns the number of vertices.
func (t *Trajectory) Width() int { return len(t.labels) }

// Len returns the number of rows.
func (t *Trajectory) Len() int { return len(t.rows) }

// Append adds a row to the end of the trajectory. The row is not copied.
func (t *Trajectory) Append(row Row) error {
	if len(row) != len(t.labels) {
		return xerrors.Errorf("append row with %d entries to trajectory of %d vertices: %w", len(row), len(t.labels), ErrRowWidth)
	}
	t.rows = append(t.rows, row)
	return nil
}

// Row returns the row at index i.
func (t *Trajectory) Row(i int) Row { return t.rows[i] }

// Final returns the last row or nil if the trajectory is empty.
func (t *Trajectory) Final() Row {
	if len(t.rows) == 0 {
		return nil
	}
	return t.rows[len(t.rows)-1]
}

// Matrix returns the committed ranks as a rows-by-vertices array of floats.
func (t *Trajectory) Matrix() [][]float64 {
	out := make([][]float64, len(t.rows))
	for i, row := range t.rows {
		out[i] = row.Ranks()
	}
	return out
}

// Clone returns a deep copy of the trajectory.
func (t *Trajectory) Clone() *Trajectory {
	clone := &Trajectory{
		labels: t.labels,
		rows:   make([]Row, len(t.rows)),
	}
	for i, row := range t.rows {
		clone.rows[i] = append(Row(nil), row...)
	}
	return clone
}

// Set replaces the row at index i.
func (t *Trajectory) Set(i int, row Row) error {
	if len(row) != len(t.labels) {
		return xerrors.Errorf("set row %d: %w", i, ErrRowWidth)
	}
	t.rows[i] = row
	return nil
}
