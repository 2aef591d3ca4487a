package verify

import (
	"io/ioutil"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Config encapsulates the parameters of the reference computation that a
// Verifier compares observed ranks against.
type Config struct {
	// The damping factor of the reference computation. If not specified,
	// the damping factor of the verified graph is used. A value of 1
	// verifies an undamped run and 0 expects uniform ranks.
	Damping *float64

	// The absolute per-vertex tolerance of the comparison. The reference
	// computation also stops once its L1 error drops below N*Tolerance.
	// If not specified, a default value of 1e-5 will be used instead.
	Tolerance float64

	// The iteration budget of the reference computation. If not
	// specified, a default value of 100 will be used instead.
	MaxIter int

	// The number of workers for the reference computation. If not
	// specified, a default value of 1 will be used instead.
	ComputeWorkers int

	// The tracer to use for reporting verification spans. If not
	// specified, a no-op tracer will be used instead.
	Tracer opentracing.Tracer

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.Damping != nil && (*cfg.Damping < 0 || *cfg.Damping > 1) {
		err = multierror.Append(err, xerrors.Errorf("damping factor %v is not in the range [0, 1]", *cfg.Damping))
	}
	if cfg.Tolerance < 0 {
		err = multierror.Append(err, xerrors.New("tolerance must be positive"))
	} else if cfg.Tolerance == 0 {
		cfg.Tolerance = 1e-5
	}
	if cfg.MaxIter < 0 {
		err = multierror.Append(err, xerrors.New("max iterations must be positive"))
	} else if cfg.MaxIter == 0 {
		cfg.MaxIter = 100
	}
	if cfg.ComputeWorkers <= 0 {
		cfg.ComputeWorkers = 1
	}
	if cfg.Tracer == nil {
		cfg.Tracer = opentracing.NoopTracer{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}
