package pagerank

import (
	"io/ioutil"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/neurorank/fxpagerank/fixed"
	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/neurorank/fxpagerank/pagerank RoundObserver

// Config encapsulates the required parameters for creating a new engine
// instance.
type Config struct {
	// The maximum number of rounds to execute before giving up with a
	// ConvergenceError. If not specified, a default value of 100 will be
	// used instead.
	MaxIter int

	// The engine stops once the L1 distance between two consecutive rows
	// drops below N*Tolerance, where N is the number of vertices. If not
	// specified, a default value of 1e-5 will be used instead.
	Tolerance float64

	// The number of low payload bits that are zeroed before a message is
	// delivered. A value of 0 disables truncation and yields the ideal
	// reference model.
	TruncateBits int

	// The format of ranks and rank accumulators. If not specified, the
	// wide fixed.S3132 format will be used instead; use fixed.S1615 to
	// match the hardware registers.
	RankFormat fixed.Format

	// The wire format of message payloads. If not specified, fixed.U032
	// will be used instead.
	PayloadFormat fixed.Format

	// Undamped drops the teleport term so that new ranks are the plain
	// sum of the incoming payloads, as computed by the bare hardware
	// kernel.
	Undamped bool

	// The number of workers to spin up for processing vertices. If not
	// specified, a default value of 1 will be used instead.
	ComputeWorkers int

	// A clock instance for measuring run times. If not specified, the
	// default wall-clock will be used instead.
	Clock clock.Clock

	// The tracer to use for reporting run spans. If not specified, a
	// no-op tracer will be used instead.
	Tracer opentracing.Tracer

	// Optional metrics collectors.
	Metrics *Metrics

	// An optional observer that is notified about every committed round.
	Observer RoundObserver

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

// validate checks whether the engine configuration is valid and sets the
// default values where required.
func (cfg *Config) validate() error {
	var err error
	if cfg.MaxIter < 0 {
		err = multierror.Append(err, xerrors.New("MaxIter must be positive"))
	} else if cfg.MaxIter == 0 {
		cfg.MaxIter = 100
	}

	if cfg.Tolerance < 0 {
		err = multierror.Append(err, xerrors.New("Tolerance must be positive"))
	} else if cfg.Tolerance == 0 {
		cfg.Tolerance = 1e-5
	}

	if cfg.RankFormat == (fixed.Format{}) {
		cfg.RankFormat = fixed.S3132
	}
	if fmtErr := cfg.RankFormat.Validate(); fmtErr != nil {
		err = multierror.Append(err, xerrors.Errorf("invalid rank format: %w", fmtErr))
	} else if cfg.RankFormat.IntBits() < 1 {
		err = multierror.Append(err, xerrors.Errorf("rank format %s cannot represent 1.0", cfg.RankFormat))
	}

	if cfg.PayloadFormat == (fixed.Format{}) {
		cfg.PayloadFormat = fixed.U032
	}
	if fmtErr := cfg.PayloadFormat.Validate(); fmtErr != nil {
		err = multierror.Append(err, xerrors.Errorf("invalid payload format: %w", fmtErr))
	}

	if cfg.TruncateBits < 0 || cfg.TruncateBits > int(cfg.PayloadFormat.FracBits) {
		err = multierror.Append(err, xerrors.Errorf("TruncateBits must be in the range [0, %d]", cfg.PayloadFormat.FracBits))
	}

	if cfg.ComputeWorkers <= 0 {
		cfg.ComputeWorkers = 1
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.Tracer == nil {
		cfg.Tracer = opentracing.NoopTracer{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}

	return err
}
