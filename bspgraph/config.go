package bspgraph

import (
	multierror "github.com/hashicorp/go-multierror"
	"github.com/neurorank/fxpagerank/bspgraph/message"
	"golang.org/x/xerrors"
)

// Config describes how a Graph processes its vertices.
type Config struct {
	// ComputeFn is invoked for every vertex in every superstep. It is the
	// only mandatory field.
	ComputeFn ComputeFunc

	// ComputeWorkers is the size of the worker pool that runs ComputeFn.
	// Zero selects a single worker; negative values are rejected.
	ComputeWorkers int

	// QueueFactory creates the two message buffers of each vertex.
	// Defaults to message.NewInMemoryQueue.
	QueueFactory message.QueueFactory

	// SizeHint pre-allocates room for the given number of vertices.
	SizeHint int
}

func (cfg *Config) validate() error {
	var err error
	if cfg.ComputeFn == nil {
		err = multierror.Append(err, xerrors.New("compute function not specified"))
	}
	switch {
	case cfg.ComputeWorkers < 0:
		err = multierror.Append(err, xerrors.Errorf("invalid number of compute workers %d", cfg.ComputeWorkers))
	case cfg.ComputeWorkers == 0:
		cfg.ComputeWorkers = 1
	}
	if cfg.SizeHint < 0 {
		cfg.SizeHint = 0
	}
	if cfg.QueueFactory == nil {
		cfg.QueueFactory = message.NewInMemoryQueue
	}
	return err
}
