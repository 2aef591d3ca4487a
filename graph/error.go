package graph

import "golang.org/x/xerrors"

var (
	// ErrDuplicateEdge is returned when the same (source, target) pair
	// appears more than once in the edge list.
	ErrDuplicateEdge = xerrors.New("duplicate edge")

	// ErrDuplicateLabel is returned when an explicit label list contains
	// the same label twice.
	ErrDuplicateLabel = xerrors.New("duplicate vertex label")

	// ErrUnknownLabel is returned when an edge endpoint is missing from the
	// explicitly supplied label list.
	ErrUnknownLabel = xerrors.New("edge endpoint is not a declared vertex")

	// ErrDanglingVertex is returned for vertices without outgoing edges.
	ErrDanglingVertex = xerrors.New("vertex has no outgoing edges")

	// ErrDampingOutOfRange is returned when the damping factor is not in
	// the range [0, 1).
	ErrDampingOutOfRange = xerrors.New("damping factor must be in the range [0, 1)")

	// ErrNoVertices is returned when the graph would be empty.
	ErrNoVertices = xerrors.New("graph has no vertices")

	// ErrUnknownVertex is returned by lookups for labels that are not part
	// of the graph.
	ErrUnknownVertex = xerrors.New("unknown vertex")
)

// ValidationError is returned by Build when the input does not describe a
// valid graph. It lists every problem that was detected; use xerrors.Is with
// the sentinel errors of this package to test for a particular one.
type ValidationError struct {
	err error
}

// Error implements error.
func (e *ValidationError) Error() string {
	return "graph validation failed: " + e.err.Error()
}

// Unwrap returns the aggregated validation errors.
func (e *ValidationError) Unwrap() error { return e.err }
