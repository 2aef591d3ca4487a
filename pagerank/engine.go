package pagerank

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/neurorank/fxpagerank/bspgraph"
	"github.com/neurorank/fxpagerank/bspgraph/aggregator"
	"github.com/neurorank/fxpagerank/fixed"
	"github.com/neurorank/fxpagerank/graph"
	"github.com/neurorank/fxpagerank/trajectory"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Result describes the outcome of an engine run.
type Result struct {
	// A unique ID for the run, also attached to log entries.
	RunID uuid.UUID

	// One row per committed round; row 0 is the initial state.
	Trajectory *trajectory.Trajectory

	// The round at which the stopping bound was met. It equals
	// Trajectory.Len() when the run did not converge.
	ConvergenceRound int

	// Converged is true if the stopping bound was met within MaxIter.
	Converged bool

	// The wall time spent running rounds.
	Elapsed time.Duration
}

// Engine executes the round-synchronous, fixed-point PageRank iteration that
// emulates the hardware kernel. Engines are safe for concurrent use; every
// call to Run works on its own state.
type Engine struct {
	cfg Config
}

// NewEngine returns a new Engine instance using the provided config options.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("PageRank engine config validation failed: %w", err)
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine configuration with all defaults applied.
func (e *Engine) Config() Config { return e.cfg }

// Run executes rounds on g until the L1 distance between consecutive rows
// drops below N*Tolerance. If MaxIter rounds complete first, Run returns the
// partial result together with a *ConvergenceError.
func (e *Engine) Run(g *graph.Graph) (*Result, error) {
	var (
		cfg    = e.cfg
		runID  = uuid.New()
		n      = g.Len()
		logger = cfg.Logger.WithFields(logrus.Fields{
			"run_id":        runID.String(),
			"vertices":      n,
			"edges":         len(g.Edges()),
			"truncate_bits": cfg.TruncateBits,
			"rank_format":   cfg.RankFormat.String(),
		})
	)

	span := cfg.Tracer.StartSpan("pagerank.Run")
	defer span.Finish()
	span.SetTag("run_id", runID.String())
	span.SetTag("vertices", n)
	span.SetTag("truncate_bits", cfg.TruncateBits)

	st, err := e.newRoundState(g)
	if err != nil {
		ext.Error.Set(span, true)
		cfg.Metrics.observeRun("failed")
		return nil, err
	}

	bsp, err := bspgraph.NewGraph(bspgraph.Config{
		ComputeWorkers: cfg.ComputeWorkers,
		ComputeFn:      makeComputeFunc(st),
		SizeHint:       n,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = bsp.Close() }()

	for _, label := range g.Labels() {
		bsp.AddVertex(label, nil)
	}
	for src := 0; src < n; src++ {
		for _, dst := range g.Neighbors(src) {
			if err = bsp.AddEdge(src, dst); err != nil {
				return nil, err
			}
		}
	}
	bsp.RegisterAggregator(l1AggregatorName, new(aggregator.Int64Accumulator))

	res := &Result{
		RunID:      runID,
		Trajectory: trajectory.New(g.Labels()),
	}
	bound := float64(n) * cfg.Tolerance
	ex := bspgraph.NewExecutor(bsp, bspgraph.ExecutorCallbacks{
		PreStep: func(_ context.Context, g *bspgraph.Graph) error {
			g.Aggregator(l1AggregatorName).Set(int64(0))
			st.row = make(trajectory.Row, n)
			return nil
		},
		PostStep: func(_ context.Context, g *bspgraph.Graph) error {
			if err := res.Trajectory.Append(st.row); err != nil {
				return err
			}
			if cfg.Observer != nil {
				if err := cfg.Observer.ObserveRound(g.Superstep(), st.row); err != nil {
					return xerrors.Errorf("round observer: %w", err)
				}
			}
			return nil
		},
		PostStepKeepRunning: func(_ context.Context, g *bspgraph.Graph) (bool, error) {
			// Superstep 0 only seeds the initial ranks.
			round := g.Superstep()
			if round == 0 {
				return true, nil
			}

			raw := g.Aggregator(l1AggregatorName).Get().(int64)
			l1 := math.Ldexp(float64(raw), -int(st.rankFmt.FracBits))
			cfg.Metrics.observeRound(l1)
			logger.WithFields(logrus.Fields{"round": round, "l1_error": l1}).Debug("committed round")

			if l1 < bound {
				res.Converged = true
				res.ConvergenceRound = round
				return false, nil
			}
			return true, nil
		},
	})

	startAt := cfg.Clock.Now()
	ctx := opentracing.ContextWithSpan(context.Background(), span)
	// Superstep 0 seeds the initial row, so MaxIter rounds take one extra step.
	err = ex.RunSteps(ctx, cfg.MaxIter+1)
	res.Elapsed = cfg.Clock.Now().Sub(startAt)
	if err != nil {
		ext.Error.Set(span, true)
		cfg.Metrics.observeRun("failed")
		return nil, xerrors.Errorf("run %s: %w", runID, err)
	}

	if !res.Converged {
		res.ConvergenceRound = ex.CompletedSteps()
		span.SetTag("converged", false)
		cfg.Metrics.observeRun("diverged")
		logger.WithFields(logrus.Fields{
			"max_iter": cfg.MaxIter,
			"elapsed":  res.Elapsed.String(),
		}).Warn("ranks did not converge")
		return res, &ConvergenceError{MaxIter: cfg.MaxIter}
	}

	span.SetTag("converged", true)
	span.SetTag("round", res.ConvergenceRound)
	cfg.Metrics.observeRun("converged")
	logger.WithFields(logrus.Fields{
		"round":   res.ConvergenceRound,
		"elapsed": res.Elapsed.String(),
	}).Info("ranks converged")
	return res, nil
}

// newRoundState converts the run constants into the rank format.
func (e *Engine) newRoundState(g *graph.Graph) (*roundState, error) {
	rankFmt := e.cfg.RankFormat
	n := int64(g.Len())

	damping, err := fixed.FromFloat(g.Damping(), rankFmt)
	if err != nil {
		return nil, xerrors.Errorf("encode damping factor: %w", err)
	}
	one := fixed.One(rankFmt)

	return &roundState{
		rankFmt:      rankFmt,
		payloadFmt:   e.cfg.PayloadFormat,
		truncateBits: uint(e.cfg.TruncateBits),
		undamped:     e.cfg.Undamped,
		initRank:     one.DivInt(n),
		damping:      damping,
		dampingSum:   one.Sub(damping).DivInt(n),
	}, nil
}
