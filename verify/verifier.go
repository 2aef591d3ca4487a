package verify

import (
	"context"
	"math"

	"github.com/neurorank/fxpagerank/graph"
	"github.com/neurorank/fxpagerank/trajectory"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Verifier cross-checks observed ranks against a floating point PageRank
// computation over the same graph.
type Verifier struct {
	cfg Config
}

// NewVerifier returns a new Verifier instance using the provided config
// options.
func NewVerifier(cfg Config) (*Verifier, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("verifier config validation failed: %w", err)
	}
	return &Verifier{cfg: cfg}, nil
}

// Verify compares observed, the final ranks in canonical vertex order, to
// the reference ranks of g. A mismatch is not an error: it is reported
// through Report.IsCorrect. If the reference computation does not converge,
// Verify returns a *GraphDivergenceError.
func (v *Verifier) Verify(observed []float64, g *graph.Graph) (*Report, error) {
	if len(observed) != g.Len() {
		return nil, xerrors.Errorf("verify %d ranks against a graph of %d vertices: %w", len(observed), g.Len(), ErrWidthMismatch)
	}

	damping := g.Damping()
	if v.cfg.Damping != nil {
		damping = *v.cfg.Damping
	}

	span := v.cfg.Tracer.StartSpan("verify.Verify")
	defer span.Finish()
	span.SetTag("vertices", g.Len())
	span.SetTag("damping", damping)

	ctx := opentracing.ContextWithSpan(context.Background(), span)
	expected, round, err := v.reference(ctx, g, damping)
	if err != nil {
		ext.Error.Set(span, true)
		v.cfg.Logger.WithField("err", err).Warn("reference computation failed")
		return nil, err
	}

	report, err := Compare(g.Labels(), observed, expected, v.cfg.Tolerance)
	if err != nil {
		return nil, err
	}
	report.ConvergenceRound = round

	span.SetTag("correct", report.IsCorrect)
	v.cfg.Logger.WithFields(logrus.Fields{
		"correct":           report.IsCorrect,
		"reference_round":   round,
		"max_abs_deviation": report.MaxDeviation(),
	}).Info("verified ranks")
	return report, nil
}

// VerifyTrajectory verifies the final row of t.
func (v *Verifier) VerifyTrajectory(t *trajectory.Trajectory, g *graph.Graph) (*Report, error) {
	if t.Len() == 0 {
		return nil, xerrors.Errorf("verify empty trajectory: %w", ErrWidthMismatch)
	}
	return v.Verify(t.Final().Ranks(), g)
}

// Compare checks observed against expected element-wise and returns a
// report that is correct only if |observed[i]-expected[i]| < tol for every
// vertex. It is useful when the expected ranks come from an external source.
func Compare(labels []string, observed, expected []float64, tol float64) (*Report, error) {
	if len(observed) != len(labels) || len(expected) != len(labels) {
		return nil, xerrors.Errorf("compare %d observed and %d expected ranks for %d vertices: %w", len(observed), len(expected), len(labels), ErrWidthMismatch)
	}

	report := &Report{
		IsCorrect: true,
		Computed:  make(map[string]float64, len(labels)),
		Expected:  make(map[string]float64, len(labels)),
		Tolerance: tol,
		labels:    labels,
	}
	for i, label := range labels {
		report.Computed[label] = observed[i]
		report.Expected[label] = expected[i]
		if !(math.Abs(observed[i]-expected[i]) < tol) {
			report.IsCorrect = false
		}
	}
	return report, nil
}
