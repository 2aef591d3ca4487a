package verify

import (
	"math"

	"golang.org/x/xerrors"
)

// Report summarizes a verification.
type Report struct {
	// IsCorrect is true if every observed rank is within Tolerance of the
	// expected rank.
	IsCorrect bool

	// The round at which the reference computation converged.
	ConvergenceRound int

	// Observed and reference ranks keyed by vertex label.
	Computed map[string]float64
	Expected map[string]float64

	Tolerance float64

	labels []string
}

// Row describes a single vertex of a report.
type Row struct {
	Label     string
	Computed  float64
	Expected  float64
	Deviation float64
	Ok        bool
}

// Rows returns one diagnostic row per vertex in canonical vertex order.
func (r *Report) Rows() []Row {
	rows := make([]Row, len(r.labels))
	for i, label := range r.labels {
		dev := math.Abs(r.Computed[label] - r.Expected[label])
		rows[i] = Row{
			Label:     label,
			Computed:  r.Computed[label],
			Expected:  r.Expected[label],
			Deviation: dev,
			Ok:        dev < r.Tolerance,
		}
	}
	return rows
}

// MaxDeviation returns the largest absolute difference between a computed
// and an expected rank.
func (r *Report) MaxDeviation() float64 {
	var max float64
	for _, row := range r.Rows() {
		max = math.Max(max, row.Deviation)
	}
	return max
}

// Outcome classifies the result of a verification.
type Outcome uint8

const (
	// Inconclusive means that the reference ranks could not be computed.
	Inconclusive Outcome = iota
	// Pass means that the observed ranks match the reference.
	Pass
	// Fail means that the observed ranks deviate from the reference or the
	// verification could not be carried out.
	Fail
)

func (o Outcome) String() string {
	switch o {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	default:
		return "inconclusive"
	}
}

// OutcomeOf maps the return values of Verify to an Outcome.
func OutcomeOf(report *Report, err error) Outcome {
	var divErr *GraphDivergenceError
	switch {
	case xerrors.As(err, &divErr):
		return Inconclusive
	case err != nil || report == nil || !report.IsCorrect:
		return Fail
	default:
		return Pass
	}
}
