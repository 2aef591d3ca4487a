package graph

import (
	"strconv"

	multierror "github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// DefaultDamping is the damping factor used when Config.Damping is nil.
const DefaultDamping = 0.85

// DampingFactor returns a pointer to d for use in Config.Damping.
func DampingFactor(d float64) *float64 { return &d }

// Edge is a directed edge between two vertex labels.
type Edge struct {
	Src string
	Dst string
}

// IntEdges converts pairs of integer vertex IDs into edges whose labels are
// the decimal representation of the IDs.
func IntEdges(pairs [][2]int) []Edge {
	edges := make([]Edge, len(pairs))
	for i, p := range pairs {
		edges[i] = Edge{Src: strconv.Itoa(p[0]), Dst: strconv.Itoa(p[1])}
	}
	return edges
}

// Config describes the graph to be built.
type Config struct {
	// The directed edges of the graph. Duplicate edges are rejected;
	// self-loops are allowed.
	Edges []Edge

	// An optional explicit list of vertex labels which also fixes the
	// canonical vertex order. If not specified, labels are derived from
	// Edges in order of first appearance, visiting the source of each
	// edge before its target.
	Labels []string

	// The probability that a walk follows an outgoing edge instead of
	// teleporting. It must be in the range [0, 1); a damping factor of 0
	// yields uniform ranks. If not specified, a default value of 0.85 will
	// be used instead.
	Damping *float64
}

// SimVertex exposes the per-vertex data that message-passing engines need
// for their setup.
type SimVertex struct {
	Index     int
	Label     string
	InDegree  int
	OutDegree int
}

// Graph is an immutable, validated directed graph with a canonical vertex
// order. All slices returned by its methods are shared and must not be
// modified.
type Graph struct {
	labels  []string
	index   map[string]int
	edges   []Edge
	out     [][]int
	inDeg   []int
	damping float64
}

// Build validates cfg and returns the resulting graph. All detected problems
// are reported together in a *ValidationError.
func Build(cfg Config) (*Graph, error) {
	var err error

	damping := DefaultDamping
	if cfg.Damping != nil {
		damping = *cfg.Damping
	}
	if damping < 0 || damping >= 1 {
		err = multierror.Append(err, xerrors.Errorf("damping %v: %w", damping, ErrDampingOutOfRange))
	}

	g := &Graph{
		index:   make(map[string]int),
		damping: damping,
	}

	explicit := cfg.Labels != nil
	if explicit {
		for _, label := range cfg.Labels {
			if _, exists := g.index[label]; exists {
				err = multierror.Append(err, xerrors.Errorf("label %q: %w", label, ErrDuplicateLabel))
				continue
			}
			g.addLabel(label)
		}
	} else {
		for _, e := range cfg.Edges {
			g.addLabel(e.Src)
			g.addLabel(e.Dst)
		}
	}

	if len(g.labels) == 0 {
		err = multierror.Append(err, ErrNoVertices)
	}

	g.out = make([][]int, len(g.labels))
	g.inDeg = make([]int, len(g.labels))
	seen := make(map[Edge]struct{}, len(cfg.Edges))
	for _, e := range cfg.Edges {
		if _, dup := seen[e]; dup {
			err = multierror.Append(err, xerrors.Errorf("edge %q -> %q: %w", e.Src, e.Dst, ErrDuplicateEdge))
			continue
		}
		seen[e] = struct{}{}

		src, srcOK := g.index[e.Src]
		dst, dstOK := g.index[e.Dst]
		if !srcOK {
			err = multierror.Append(err, xerrors.Errorf("edge %q -> %q: source: %w", e.Src, e.Dst, ErrUnknownLabel))
		}
		if !dstOK {
			err = multierror.Append(err, xerrors.Errorf("edge %q -> %q: target: %w", e.Src, e.Dst, ErrUnknownLabel))
		}
		if !srcOK || !dstOK {
			continue
		}

		g.edges = append(g.edges, e)
		g.out[src] = append(g.out[src], dst)
		g.inDeg[dst]++
	}

	for i, targets := range g.out {
		if len(targets) == 0 {
			err = multierror.Append(err, xerrors.Errorf("vertex %q: %w", g.labels[i], ErrDanglingVertex))
		}
	}

	if err != nil {
		return nil, &ValidationError{err: err}
	}
	return g, nil
}

func (g *Graph) addLabel(label string) {
	if _, exists := g.index[label]; exists {
		return
	}
	g.index[label] = len(g.labels)
	g.labels = append(g.labels, label)
}

// Len returns the number of vertices.
func (g *Graph) Len() int { return len(g.labels) }

// Labels returns the vertex labels in canonical order.
func (g *Graph) Labels() []string { return g.labels }

// Edges returns the edges in the order they were supplied.
func (g *Graph) Edges() []Edge { return g.edges }

// Damping returns the graph's damping factor.
func (g *Graph) Damping() float64 { return g.damping }

// LabelOf returns the label of the vertex with the given canonical index.
func (g *Graph) LabelOf(index int) (string, error) {
	if index < 0 || index >= len(g.labels) {
		return "", xerrors.Errorf("index %d: %w", index, ErrUnknownVertex)
	}
	return g.labels[index], nil
}

// IndexOf returns the canonical index of the vertex with the given label.
func (g *Graph) IndexOf(label string) (int, error) {
	index, ok := g.index[label]
	if !ok {
		return -1, xerrors.Errorf("label %q: %w", label, ErrUnknownVertex)
	}
	return index, nil
}

// Neighbors returns the canonical indices of the targets of the outgoing
// edges of vertex index, in edge insertion order.
func (g *Graph) Neighbors(index int) []int { return g.out[index] }

// IncomingEdgesCount returns the in-degree of every vertex, indexed by
// canonical vertex index.
func (g *Graph) IncomingEdgesCount() []int { return g.inDeg }

// OutgoingEdgesCount returns the out-degree of every vertex, indexed by
// canonical vertex index.
func (g *Graph) OutgoingEdgesCount() []int {
	counts := make([]int, len(g.out))
	for i, targets := range g.out {
		counts[i] = len(targets)
	}
	return counts
}

// SimVertices returns the per-vertex setup data in canonical order.
func (g *Graph) SimVertices() []SimVertex {
	verts := make([]SimVertex, len(g.labels))
	for i, label := range g.labels {
		verts[i] = SimVertex{
			Index:     i,
			Label:     label,
			InDegree:  g.inDeg[i],
			OutDegree: len(g.out[i]),
		}
	}
	return verts
}
