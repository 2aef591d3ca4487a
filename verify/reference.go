package verify

import (
	"context"
	"math"
	"sort"

	"github.com/neurorank/fxpagerank/bspgraph"
	"github.com/neurorank/fxpagerank/bspgraph/message"
	"github.com/neurorank/fxpagerank/graph"
)

// scoreMessage is used for distributing reference scores to neighbors.
type scoreMessage struct {
	Src   int
	Score float64
}

// Type returns the type of this message
func (scoreMessage) Type() string { return "score" }

// refState is the value of a vertex in the reference computation.
type refState struct {
	Score float64

	// The absolute change of Score in the last superstep.
	Delta float64
}

// makeReferenceComputeFunc returns a ComputeFunc for the floating point power
// iteration. Scores start at 1/N and every vertex spreads its score evenly
// across its outgoing edges. Incoming scores are summed in source order so
// that results are bit-identical for any number of workers.
func makeReferenceComputeFunc(numVertices int, damping float64) bspgraph.ComputeFunc {
	pageCount := float64(numVertices)
	return func(g *bspgraph.Graph, v *bspgraph.Vertex, msgIt message.Iterator) error {
		var st refState
		if g.Superstep() == 0 {
			st.Score = 1.0 / pageCount
		} else {
			var incoming []scoreMessage
			for msgIt.Next() {
				incoming = append(incoming, msgIt.Message().(scoreMessage))
			}
			sort.Slice(incoming, func(i, j int) bool { return incoming[i].Src < incoming[j].Src })

			var sum float64
			for _, msg := range incoming {
				sum += msg.Score
			}
			st.Score = (1.0-damping)/pageCount + damping*sum
			st.Delta = math.Abs(v.Value().(refState).Score - st.Score)
		}
		v.SetValue(st)

		numOutLinks := float64(len(v.Edges()))
		if numOutLinks == 0.0 {
			return nil
		}
		return g.BroadcastToNeighbors(v, scoreMessage{Src: v.Index(), Score: st.Score / numOutLinks})
	}
}

// reference runs the power iteration on g. It returns the final scores in
// vertex order and the iteration at which the sum of absolute differences
// dropped below N*tol.
func (v *Verifier) reference(ctx context.Context, g *graph.Graph, damping float64) ([]float64, int, error) {
	n := g.Len()
	bsp, err := bspgraph.NewGraph(bspgraph.Config{
		ComputeFn:      makeReferenceComputeFunc(n, damping),
		ComputeWorkers: v.cfg.ComputeWorkers,
		SizeHint:       n,
	})
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = bsp.Close() }()

	for _, label := range g.Labels() {
		bsp.AddVertex(label, refState{})
	}
	for src := 0; src < n; src++ {
		for _, dst := range g.Neighbors(src) {
			if err = bsp.AddEdge(src, dst); err != nil {
				return nil, 0, err
			}
		}
	}

	var (
		round     int
		converged bool
		bound     = float64(n) * v.cfg.Tolerance
	)
	ex := bspgraph.NewExecutor(bsp, bspgraph.ExecutorCallbacks{
		PostStepKeepRunning: func(_ context.Context, g *bspgraph.Graph) (bool, error) {
			round = g.Superstep()
			if round == 0 {
				return true, nil
			}
			if sumOfDeltas(g) < bound {
				converged = true
				return false, nil
			}
			return round < v.cfg.MaxIter, nil
		},
	})
	if err = ex.RunToCompletion(ctx); err != nil {
		return nil, 0, err
	}
	if !converged {
		return nil, 0, &GraphDivergenceError{MaxIter: v.cfg.MaxIter}
	}

	scores := make([]float64, n)
	for i, vert := range bsp.Vertices() {
		scores[i] = vert.Value().(refState).Score
	}
	return scores, round, nil
}

// sumOfDeltas adds up the last score changes in vertex order.
func sumOfDeltas(g *bspgraph.Graph) float64 {
	var sad float64
	for _, v := range g.Vertices() {
		sad += v.Value().(refState).Delta
	}
	return sad
}
