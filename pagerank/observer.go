package pagerank

import "github.com/neurorank/fxpagerank/trajectory"

// RoundObserver is implemented by types that want to be notified whenever
// the engine commits a row, e.g. plug-in adapters that stream ranks to an
// external platform. Round 0 is the initial state. Returning an error aborts
// the run.
type RoundObserver interface {
	ObserveRound(round int, row trajectory.Row) error
}

// The RoundObserverFunc type is an adapter to allow the use of ordinary
// functions as RoundObservers.
type RoundObserverFunc func(int, trajectory.Row) error

// ObserveRound calls f(round, row).
func (f RoundObserverFunc) ObserveRound(round int, row trajectory.Row) error {
	return f(round, row)
}
