package pagerank

import "fmt"

// ConvergenceError is returned by Engine.Run when the stopping bound was not
// met within the configured number of rounds. Callers may retry with a larger
// MaxIter or a relaxed Tolerance.
type ConvergenceError struct {
	MaxIter int
}

// Error implements error.
func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("ranks did not converge within %d rounds", e.MaxIter)
}
