package bspgraph

import (
	"github.com/neurorank/fxpagerank/bspgraph/message"
)

// Aggregator is implemented by types that provide concurrent-safe aggregation
// primitives (e.g. counters, sums of absolute differences).
type Aggregator interface {
	// Type returns the type of this aggregator.
	Type() string

	// Set the aggregator to the specified value.
	Set(val interface{})

	// Get the current aggregator value.
	Get() interface{}

	// Aggregate updates the aggregator's value based on the provided value.
	Aggregate(val interface{})
}

// ComputeFunc is a function that a graph instance invokes on each vertex when
// executing a superstep. The iterator yields the messages that were sent to
// the vertex during the previous superstep.
type ComputeFunc func(g *Graph, v *Vertex, msgIt message.Iterator) error
