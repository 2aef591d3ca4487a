package tracing

import (
	"io"
	"io/ioutil"
	"sync"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"golang.org/x/xerrors"
)

// Config describes a Jaeger tracer for engine and verifier runs.
type Config struct {
	// The service name attached to every span. Required.
	ServiceName string

	// The fraction of runs to sample. If not specified, every run is
	// sampled.
	SampleRatio float64

	// An optional reporter for finished spans. If not specified, spans are
	// shipped to the agent configured through the JAEGER_* environment
	// variables.
	Reporter jaeger.Reporter

	// The logger for tracer diagnostics. If not defined an
	// output-discarding logger will be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.ServiceName == "" {
		err = multierror.Append(err, xerrors.New("service name not specified"))
	}
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
		err = multierror.Append(err, xerrors.Errorf("sample ratio %v is not in the range [0, 1]", cfg.SampleRatio))
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// Pool creates tracers and keeps track of them so that they can be flushed
// and closed at once. The zero value is ready for use.
type Pool struct {
	mu      sync.Mutex
	closers []io.Closer
}

// Tracer returns a new Jaeger tracer. Callers must Close the pool before
// exiting so that buffered spans are not lost.
func (p *Pool) Tracer(cfg Config) (opentracing.Tracer, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("tracer config validation failed: %w", err)
	}

	jcfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, xerrors.Errorf("read jaeger settings: %w", err)
	}
	jcfg.ServiceName = cfg.ServiceName
	jcfg.Sampler = &jaegercfg.SamplerConfig{Type: jaeger.SamplerTypeConst, Param: 1}
	if cfg.SampleRatio > 0 && cfg.SampleRatio < 1 {
		jcfg.Sampler = &jaegercfg.SamplerConfig{Type: jaeger.SamplerTypeProbabilistic, Param: cfg.SampleRatio}
	}

	opts := []jaegercfg.Option{jaegercfg.Logger(logAdapter{cfg.Logger})}
	if cfg.Reporter != nil {
		opts = append(opts, jaegercfg.Reporter(cfg.Reporter))
	}
	tracer, closer, err := jcfg.NewTracer(opts...)
	if err != nil {
		return nil, xerrors.Errorf("create tracer: %w", err)
	}

	p.mu.Lock()
	p.closers = append(p.closers, closer)
	p.mu.Unlock()
	return tracer, nil
}

// Close all tracers created by the pool.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	for _, closer := range p.closers {
		if cErr := closer.Close(); cErr != nil {
			err = multierror.Append(err, cErr)
		}
	}
	p.closers = nil
	return err
}

// logAdapter forwards jaeger diagnostics to logrus.
type logAdapter struct {
	entry *logrus.Entry
}

func (l logAdapter) Error(msg string) { l.entry.Error(msg) }

func (l logAdapter) Infof(msg string, args ...interface{}) { l.entry.Infof(msg, args...) }
