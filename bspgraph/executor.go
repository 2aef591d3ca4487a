package bspgraph

import "context"

// ExecutorCallbacks encapsulates a series of callbacks that are invoked by an
// Executor instance on a graph. All callbacks are optional and will be ignored
// if not specified.
type ExecutorCallbacks struct {
	// PreStep, if defined, is invoked before running the next superstep.
	// This is a good place to reset aggregators that will be used for the
	// next superstep.
	PreStep func(ctx context.Context, g *Graph) error

	// PostStep, if defined, is invoked after running a superstep and
	// before the stop condition is evaluated. At this point every vertex
	// has committed its value for the superstep.
	PostStep func(ctx context.Context, g *Graph) error

	// PostStepKeepRunning, if defined, is invoked after running a
	// superstep to decide whether the stop condition for terminating the
	// run has been met.
	PostStepKeepRunning func(ctx context.Context, g *Graph) (bool, error)
}

func patchEmptyCallbacks(cb *ExecutorCallbacks) {
	if cb.PreStep == nil {
		cb.PreStep = func(context.Context, *Graph) error { return nil }
	}
	if cb.PostStep == nil {
		cb.PostStep = func(context.Context, *Graph) error { return nil }
	}
	if cb.PostStepKeepRunning == nil {
		cb.PostStepKeepRunning = func(context.Context, *Graph) (bool, error) { return true, nil }
	}
}

// Executor wraps a Graph instance and provides an orchestration layer for
// executing super-steps until an error occurs or an exit condition is met.
// Users can provide an optional set of callbacks to be executed before and
// after each super-step.
type Executor struct {
	g  *Graph
	cb ExecutorCallbacks

	completed int
}

// NewExecutor returns an Executor instance for graph g that invokes the
// provided list of callbacks inside each execution loop.
func NewExecutor(g *Graph, cb ExecutorCallbacks) *Executor {
	patchEmptyCallbacks(&cb)
	g.superstep = 0
	return &Executor{
		g:  g,
		cb: cb,
	}
}

// RunToCompletion keeps executing supersteps until the context expires, an
// error occurs or the PostStepKeepRunning callback returns false.
func (ex *Executor) RunToCompletion(ctx context.Context) error {
	return ex.run(ctx, -1)
}

// RunSteps executes at most numSteps supersteps unless the context expires,
// an error occurs or the PostStepKeepRunning callback returns false.
func (ex *Executor) RunSteps(ctx context.Context, numSteps int) error {
	return ex.run(ctx, numSteps)
}

// CompletedSteps returns the number of supersteps that ran to completion,
// including the one that satisfied the stop condition.
func (ex *Executor) CompletedSteps() int {
	return ex.completed
}

func (ex *Executor) run(ctx context.Context, maxSteps int) error {
	var (
		err         error
		keepRunning bool
		cb          = ex.cb
	)

	for ; maxSteps != 0; ex.g.superstep, maxSteps = ex.g.superstep+1, maxSteps-1 {
		if err = ensureContextNotExpired(ctx); err != nil {
			break
		} else if err = cb.PreStep(ctx, ex.g); err != nil {
			break
		} else if err = ex.g.step(); err != nil {
			break
		} else if err = cb.PostStep(ctx, ex.g); err != nil {
			break
		}

		ex.completed++
		if keepRunning, err = cb.PostStepKeepRunning(ctx, ex.g); !keepRunning || err != nil {
			break
		}
	}

	return err
}

func ensureContextNotExpired(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
