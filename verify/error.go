package verify

import (
	"fmt"

	"golang.org/x/xerrors"
)

// ErrWidthMismatch is returned when the number of observed ranks differs
// from the number of vertices being verified.
var ErrWidthMismatch = xerrors.New("observed and expected ranks have different lengths")

// GraphDivergenceError is returned when the reference computation itself
// does not converge within its iteration budget. Such an outcome says
// nothing about the observed ranks and is reported as inconclusive.
type GraphDivergenceError struct {
	MaxIter int
}

// Error implements error.
func (e *GraphDivergenceError) Error() string {
	return fmt.Sprintf("reference PageRank did not converge within %d iterations", e.MaxIter)
}
