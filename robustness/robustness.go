// Package robustness runs the engine and the verifier over batches of random
// graphs and counts how many of them produce ranks that match the reference.
package robustness

import (
	"context"
	"io/ioutil"
	"math/rand"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/neurorank/fxpagerank/graph"
	"github.com/neurorank/fxpagerank/pagerank"
	"github.com/neurorank/fxpagerank/simulation"
	"github.com/neurorank/fxpagerank/verify"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// ErrTooManySkips is returned when too many generated graphs had to be
// skipped because the reference computation did not converge on them.
var ErrTooManySkips = xerrors.New("too many graphs without a reference ranking")

// Config encapsulates the parameters of a robustness run.
type Config struct {
	// The number of graphs that must be run and verified. Required.
	Runs int

	// The number of vertices and distinct edges of each random graph.
	// Edges must be in the range [Vertices, Vertices^2].
	Vertices int
	Edges    int

	// The damping factor of each random graph. If not specified,
	// graph.DefaultDamping is used.
	Damping *float64

	// The seed of the graph generator. Runs with the same config
	// generate the same graphs.
	Seed int64

	// The number of graphs that may be skipped as inconclusive before the
	// run is aborted. If not specified, ten times Runs is used instead.
	MaxSkips int

	// The engine and verifier parameters used for every graph.
	Simulation simulation.Config

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.Runs <= 0 {
		err = multierror.Append(err, xerrors.New("number of runs must be positive"))
	}
	if cfg.Vertices <= 0 {
		err = multierror.Append(err, xerrors.New("number of vertices must be positive"))
	} else if cfg.Edges < cfg.Vertices || cfg.Edges > cfg.Vertices*cfg.Vertices {
		err = multierror.Append(err, xerrors.Errorf("%d edges: %w", cfg.Edges, graph.ErrRandomShape))
	}
	if cfg.MaxSkips < 0 {
		err = multierror.Append(err, xerrors.New("max skips must not be negative"))
	} else if cfg.MaxSkips == 0 {
		cfg.MaxSkips = 10 * cfg.Runs
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	if cfg.Simulation.Logger == nil {
		cfg.Simulation.Logger = cfg.Logger
	}
	return err
}

// RunReport describes the verification of a single graph.
type RunReport struct {
	// The position of the graph among the verified ones.
	Index int

	// The number of graphs generated up to and including this one.
	Generated int

	// The outcome of the verification, either Pass or Fail.
	Outcome verify.Outcome

	// The engine's convergence round and whether it converged within its
	// iteration budget.
	ConvergenceRound int
	Converged        bool

	// The largest absolute deviation from the reference ranks.
	MaxDeviation float64
}

// Summary collects the outcome of a robustness run.
type Summary struct {
	Passed  int
	Failed  int
	Skipped int

	// One report per verified graph.
	Reports []RunReport
}

// Runner generates random graphs and verifies the engine on each of them.
type Runner struct {
	cfg Config
	sim *simulation.Simulation
}

// NewRunner returns a new Runner instance using the provided config options.
func NewRunner(cfg Config) (*Runner, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("robustness config validation failed: %w", err)
	}
	sim, err := simulation.New(cfg.Simulation)
	if err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, sim: sim}, nil
}

// Run verifies cfg.Runs random graphs. Graphs on which the reference
// computation does not converge are skipped and replaced by new ones; a
// ranking mismatch is counted as a failure, not returned as an error. Run
// returns the summary collected so far together with any error that aborted
// it.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	var (
		rng       = rand.New(rand.NewSource(r.cfg.Seed))
		sum       = new(Summary)
		generated int
	)

	for len(sum.Reports) < r.cfg.Runs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		gcfg, err := graph.RandomConfig(r.cfg.Vertices, r.cfg.Edges, rng)
		if err != nil {
			return sum, err
		}
		gcfg.Damping = r.cfg.Damping
		g, err := graph.Build(gcfg)
		if err != nil {
			return sum, xerrors.Errorf("graph %d: %w", generated, err)
		}
		generated++

		report, err := r.verifyGraph(g)
		outcome := verify.OutcomeOf(report, err)
		logger := r.cfg.Logger.WithField("graph", generated)
		if outcome == verify.Inconclusive {
			sum.Skipped++
			logger.Warn("skipping graph without a reference ranking")
			if sum.Skipped >= r.cfg.MaxSkips {
				return sum, xerrors.Errorf("skipped %d graphs: %w", sum.Skipped, ErrTooManySkips)
			}
			continue
		} else if err != nil {
			return sum, xerrors.Errorf("graph %d: %w", generated, err)
		}

		res, err := r.sim.Result()
		if err != nil {
			return sum, err
		}
		rr := RunReport{
			Index:            len(sum.Reports),
			Generated:        generated,
			Outcome:          outcome,
			ConvergenceRound: res.ConvergenceRound,
			Converged:        res.Converged,
			MaxDeviation:     report.MaxDeviation(),
		}
		sum.Reports = append(sum.Reports, rr)
		if outcome == verify.Pass {
			sum.Passed++
		} else {
			sum.Failed++
		}
		logger.WithFields(logrus.Fields{
			"outcome":       outcome.String(),
			"round":         rr.ConvergenceRound,
			"max_deviation": rr.MaxDeviation,
		}).Debug("verified graph")
	}

	r.cfg.Logger.WithFields(logrus.Fields{
		"runs":    len(sum.Reports),
		"failed":  sum.Failed,
		"skipped": sum.Skipped,
	}).Info("finished robustness run")
	return sum, nil
}

// verifyGraph runs the engine on g and verifies its final ranks. Runs that
// exhaust the engine's iteration budget are still verified.
func (r *Runner) verifyGraph(g *graph.Graph) (*verify.Report, error) {
	if err := r.sim.Run(g); err != nil {
		var convErr *pagerank.ConvergenceError
		if !xerrors.As(err, &convErr) {
			return nil, err
		}
	}
	return r.sim.Verify()
}
