package aggregator

import "sync/atomic"

// Int64Accumulator implements a concurrent-safe accumulator for int64
// values. Fixed-point quantities are accumulated through their raw encoding;
// integer addition commutes, so the result does not depend on the order in
// which workers contribute.
type Int64Accumulator struct {
	sum int64
}

// Type implements bspgraph.Aggregator.
func (a *Int64Accumulator) Type() string {
	return "Int64Accumulator"
}

// Get returns the current value of the accumulator.
func (a *Int64Accumulator) Get() interface{} {
	return atomic.LoadInt64(&a.sum)
}

// Set the current value of the accumulator.
func (a *Int64Accumulator) Set(v interface{}) {
	atomic.StoreInt64(&a.sum, v.(int64))
}

// Aggregate adds an int64 value to the accumulator.
func (a *Int64Accumulator) Aggregate(v interface{}) {
	_ = atomic.AddInt64(&a.sum, v.(int64))
}
