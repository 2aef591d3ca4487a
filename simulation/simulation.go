package simulation

import (
	"fmt"
	"io/ioutil"
	"sync"

	"github.com/neurorank/fxpagerank/convergence"
	"github.com/neurorank/fxpagerank/graph"
	"github.com/neurorank/fxpagerank/neuron"
	"github.com/neurorank/fxpagerank/pagerank"
	"github.com/neurorank/fxpagerank/recording"
	"github.com/neurorank/fxpagerank/trajectory"
	"github.com/neurorank/fxpagerank/verify"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// State describes the lifecycle stage of a Simulation.
type State uint8

// The states of a Simulation.
const (
	Unconfigured State = iota
	Running
	Completed
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Running:
		return "running"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// StateError is returned when an operation is not allowed in the current
// state of a Simulation.
type StateError struct {
	Op    string
	State State
}

// Error implements error.
func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s while simulation is %s", e.Op, e.State)
}

// Config encapsulates the parameters of a Simulation.
type Config struct {
	// Engine parameters. The engine logger defaults to Logger.
	Engine pagerank.Config

	// Verifier parameters. The verifier logger defaults to Logger and
	// an undamped engine is verified against an undamped reference.
	Verifier verify.Config

	// An optional store that receives every row committed by a run. The
	// engine observer, if any, is still notified after the row is recorded.
	Recorder recording.Store

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

// Simulation drives a single graph through the engine and keeps the outcome
// for later inspection and verification.
type Simulation struct {
	engine   *pagerank.Engine
	verifier *verify.Verifier
	recorder recording.Store
	logger   *logrus.Entry

	mu       sync.Mutex
	state    State
	g        *graph.Graph
	result   *pagerank.Result
	runErr   error
	recorded *recording.Run
}

// New returns an unconfigured Simulation.
func New(cfg Config) (*Simulation, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	if cfg.Engine.Logger == nil {
		cfg.Engine.Logger = cfg.Logger
	}
	if cfg.Verifier.Logger == nil {
		cfg.Verifier.Logger = cfg.Logger
	}
	if cfg.Engine.Undamped && cfg.Verifier.Damping == nil {
		cfg.Verifier.Damping = graph.DampingFactor(1)
	}

	engine, err := pagerank.NewEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	verifier, err := verify.NewVerifier(cfg.Verifier)
	if err != nil {
		return nil, err
	}

	return &Simulation{
		engine:   engine,
		verifier: verifier,
		recorder: cfg.Recorder,
		logger:   cfg.Logger,
	}, nil
}

// State returns the current state.
func (s *Simulation) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run executes the engine on g and blocks until it returns. The simulation
// is Completed afterwards even if the run failed; the run error is returned
// and kept available through Err. Running a completed simulation again
// replaces its outcome.
func (s *Simulation) Run(g *graph.Graph) error {
	s.mu.Lock()
	if s.state == Running {
		s.mu.Unlock()
		return &StateError{Op: "run", State: Running}
	}
	s.state = Running
	s.g, s.result, s.runErr, s.recorded = g, nil, nil, nil
	s.mu.Unlock()

	res, rec, err := s.runEngine(g)

	if res != nil {
		for i, rs := range res.Trajectory.Final() {
			neuron.LogState(s.logger, i, neuron.StateOf(rs))
		}
	}

	s.mu.Lock()
	s.state = Completed
	s.result, s.runErr, s.recorded = res, err, rec
	s.mu.Unlock()
	return err
}

// runEngine runs g on the configured engine or, when a recorder is set, on
// an engine whose observer also records every row.
func (s *Simulation) runEngine(g *graph.Graph) (*pagerank.Result, *recording.Run, error) {
	if s.recorder == nil {
		res, err := s.engine.Run(g)
		return res, nil, err
	}

	cfg := s.engine.Config()
	rec := &recording.Run{Labels: g.Labels(), RankFormat: cfg.RankFormat}
	if err := s.recorder.CreateRun(rec); err != nil {
		return nil, nil, xerrors.Errorf("record run: %w", err)
	}
	cfg.Observer = recording.Chain(recording.Observer(s.recorder, rec), cfg.Observer)

	engine, err := pagerank.NewEngine(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := engine.Run(g)
	s.logger.WithField("recording_id", rec.ID.String()).Info("recorded run")
	return res, rec, err
}

// Recording returns the stored run that holds the trajectory of the last run,
// or nil if no recorder is configured.
func (s *Simulation) Recording() *recording.Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorded
}

// Err returns the error of the last run.
func (s *Simulation) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runErr
}

// Result returns the outcome of the last run. Runs that stop on a
// ConvergenceError still yield a result.
func (s *Simulation) Result() (*pagerank.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireResult("get result"); err != nil {
		return nil, err
	}
	return s.result, nil
}

// Trajectory returns the raw trajectory of the last run.
func (s *Simulation) Trajectory() (*trajectory.Trajectory, error) {
	res, err := s.Result()
	if err != nil {
		return nil, err
	}
	return res.Trajectory, nil
}

// Frozen returns the trajectory of the last run frozen at its convergence
// round, together with that round.
func (s *Simulation) Frozen() (*trajectory.Trajectory, int, error) {
	res, err := s.Result()
	if err != nil {
		return nil, 0, err
	}
	frozen, round := convergence.Freeze(res.Trajectory, s.engine.Config().Tolerance)
	return frozen, round, nil
}

// Snapshot returns the hardware parameter blocks matching the final row of
// the last run.
func (s *Simulation) Snapshot() ([]neuron.Params, error) {
	res, g, err := s.lastRun("take snapshot")
	if err != nil {
		return nil, err
	}
	return neuron.ParamsFromRow(g, res.Trajectory.Final())
}

// Verify checks the final ranks of the last run against the reference
// computation.
func (s *Simulation) Verify() (*verify.Report, error) {
	res, g, err := s.lastRun("verify")
	if err != nil {
		return nil, err
	}

	report, err := s.verifier.VerifyTrajectory(res.Trajectory, g)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"run_id":  res.RunID.String(),
		"outcome": verify.OutcomeOf(report, nil).String(),
	}).Info("simulation verified")
	return report, nil
}

// lastRun returns the result of the last run together with the graph it was
// computed on. Both are read under the same lock so that a concurrent Run
// cannot pair a new graph with an old result.
func (s *Simulation) lastRun(op string) (*pagerank.Result, *graph.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireResult(op); err != nil {
		return nil, nil, err
	}
	return s.result, s.g, nil
}

// requireResult must be called with mu held.
func (s *Simulation) requireResult(op string) error {
	if s.state != Completed {
		return &StateError{Op: op, State: s.state}
	}
	if s.result == nil {
		return xerrors.Errorf("%s: run produced no result: %w", op, s.runErr)
	}
	return nil
}
