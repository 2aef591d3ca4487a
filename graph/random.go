package graph

import (
	"fmt"
	"math/rand"

	"golang.org/x/xerrors"
)

// ErrRandomShape is returned when no graph with the requested vertex and
// edge counts satisfies the validation rules.
var ErrRandomShape = xerrors.New("edge count must be between the vertex count and its square")

// RandomConfig returns the config of a random graph with the given number of
// vertices and distinct edges. Every vertex receives one outgoing edge first
// so that the graph has no dangling vertices; the remaining edges are drawn
// uniformly. Self-loops are allowed. Labels are "#0" to "#<vertices-1>" and
// the output only depends on the state of rng.
func RandomConfig(vertices, edges int, rng *rand.Rand) (Config, error) {
	if vertices <= 0 || edges < vertices || edges > vertices*vertices {
		return Config{}, xerrors.Errorf("random graph with %d vertices and %d edges: %w", vertices, edges, ErrRandomShape)
	}

	cfg := Config{
		Labels: make([]string, vertices),
		Edges:  make([]Edge, 0, edges),
	}
	for i := range cfg.Labels {
		cfg.Labels[i] = fmt.Sprintf("#%d", i)
	}

	seen := make(map[[2]int]struct{}, edges)
	addEdge := func(src, dst int) bool {
		if _, dup := seen[[2]int{src, dst}]; dup {
			return false
		}
		seen[[2]int{src, dst}] = struct{}{}
		cfg.Edges = append(cfg.Edges, Edge{Src: cfg.Labels[src], Dst: cfg.Labels[dst]})
		return true
	}

	for src := 0; src < vertices; src++ {
		addEdge(src, rng.Intn(vertices))
	}
	for len(cfg.Edges) < edges {
		addEdge(rng.Intn(vertices), rng.Intn(vertices))
	}
	return cfg, nil
}
