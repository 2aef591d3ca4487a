package bspgraph

import (
	"sync"
	"sync/atomic"

	"github.com/neurorank/fxpagerank/bspgraph/message"
	"golang.org/x/xerrors"
)

var (
	// ErrUnknownEdgeSource is returned by AddEdge when the source vertex
	// is not present in the graph.
	ErrUnknownEdgeSource = xerrors.New("source vertex is not part of the graph")

	// ErrInvalidMessageDestination is returned by calls to SendMessage,
	// BroadcastToNeighbors and AddEdge when the destination does not
	// resolve to a vertex of the graph.
	ErrInvalidMessageDestination = xerrors.New("invalid message destination")
)

// Vertex represents a vertex in the Graph. Vertices are addressed by the
// dense index assigned by AddVertex.
type Vertex struct {
	index    int
	label    string
	value    interface{}
	msgQueue [2]message.Queue
	edges    []int
}

// Index returns the vertex index.
func (v *Vertex) Index() int { return v.index }

// Label returns the label the vertex was added with.
func (v *Vertex) Label() string { return v.label }

// Edges returns the destination indices of the vertex's outgoing edges.
func (v *Vertex) Edges() []int { return v.edges }

// Value returns the value associated with this vertex.
func (v *Vertex) Value() interface{} { return v.value }

// SetValue sets the value associated with this vertex.
func (v *Vertex) SetValue(val interface{}) { v.value = val }

// Graph implements a parallel graph processor based on the concepts described
// in the Pregel paper. Every vertex is processed in every superstep and only
// sees the messages that were sent during the previous superstep, so the
// outcome of a superstep does not depend on the order in which vertices are
// processed.
type Graph struct {
	superstep int

	aggregators map[string]Aggregator
	vertices    []*Vertex
	computeFn   ComputeFunc

	queueFactory message.QueueFactory

	wg              sync.WaitGroup
	vertexCh        chan *Vertex
	errCh           chan error
	stepCompletedCh chan struct{}
	pendingInStep   int64
}

// NewGraph creates a new Graph instance using the specified configuration. It
// is important for callers to invoke Close() on the returned graph instance
// when they are done using it.
func NewGraph(cfg Config) (*Graph, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("graph config validation failed: %w", err)
	}

	g := &Graph{
		computeFn:    cfg.ComputeFn,
		queueFactory: cfg.QueueFactory,
		aggregators:  make(map[string]Aggregator),
		vertices:     make([]*Vertex, 0, cfg.SizeHint),
	}
	g.startWorkers(cfg.ComputeWorkers)

	return g, nil
}

// Close releases any resources associated with the graph.
func (g *Graph) Close() error {
	close(g.vertexCh)
	g.wg.Wait()

	return g.Reset()
}

// Reset the state of the graph by removing any existing vertices or
// aggregators and resetting the superstep counter.
func (g *Graph) Reset() error {
	g.superstep = 0
	for _, v := range g.vertices {
		for i := 0; i < 2; i++ {
			if err := v.msgQueue[i].Close(); err != nil {
				return xerrors.Errorf("closing message queue #%d for vertex %d: %w", i, v.index, err)
			}
		}
	}
	g.vertices = nil
	g.aggregators = make(map[string]Aggregator)
	return nil
}

// Vertices returns the graph vertices ordered by index.
func (g *Graph) Vertices() []*Vertex { return g.vertices }

// AddVertex appends a new vertex with the specified label and initial value
// to the graph and returns its index.
func (g *Graph) AddVertex(label string, initValue interface{}) int {
	v := &Vertex{
		index: len(g.vertices),
		label: label,
		value: initValue,
		msgQueue: [2]message.Queue{
			g.queueFactory(),
			g.queueFactory(),
		},
	}
	g.vertices = append(g.vertices, v)
	return v.index
}

// AddEdge inserts a directed edge from src to dst. Both endpoints must have
// been added to the graph beforehand.
func (g *Graph) AddEdge(src, dst int) error {
	if src < 0 || src >= len(g.vertices) {
		return xerrors.Errorf("create edge from %d to %d: %w", src, dst, ErrUnknownEdgeSource)
	}
	if dst < 0 || dst >= len(g.vertices) {
		return xerrors.Errorf("create edge from %d to %d: %w", src, dst, ErrInvalidMessageDestination)
	}

	srcVert := g.vertices[src]
	srcVert.edges = append(srcVert.edges, dst)
	return nil
}

// RegisterAggregator adds an aggregator with the specified name into the graph.
func (g *Graph) RegisterAggregator(name string, aggr Aggregator) { g.aggregators[name] = aggr }

// Aggregator returns the aggregator with the specified name or nil if the
// aggregator does not exist
func (g *Graph) Aggregator(name string) Aggregator { return g.aggregators[name] }

// BroadcastToNeighbors is a helper function that broadcasts a single message
// along each outgoing edge of a particular vertex. Messages are queued for
// delivery and will be processed by recipients in the next superstep.
func (g *Graph) BroadcastToNeighbors(v *Vertex, msg message.Message) error {
	for _, dst := range v.edges {
		if err := g.SendMessage(dst, msg); err != nil {
			return err
		}
	}

	return nil
}

// SendMessage queues a message for the vertex with the specified index. The
// message will be processed by the recipient in the next superstep.
func (g *Graph) SendMessage(dst int, msg message.Message) error {
	if dst < 0 || dst >= len(g.vertices) {
		return xerrors.Errorf("message cannot be delivered to %d: %w", dst, ErrInvalidMessageDestination)
	}

	queueIndex := (g.superstep + 1) % 2
	return g.vertices[dst].msgQueue[queueIndex].Enqueue(msg)
}

// Superstep returns the current superstep value.
func (g *Graph) Superstep() int { return g.superstep }

// step executes the next superstep over every vertex.
func (g *Graph) step() error {
	g.pendingInStep = int64(len(g.vertices))

	// No work required.
	if g.pendingInStep == 0 {
		return nil
	}

	for _, v := range g.vertices {
		g.vertexCh <- v
	}

	// Block until worker pool has finished processing all vertices.
	<-g.stepCompletedCh

	// Dequeue any errors
	var err error
	select {
	case err = <-g.errCh: // dequeued
	default: // no error available
	}

	return err
}

// startWorkers allocates the required channels and spins up numWorkers to
// execute each superstep.
func (g *Graph) startWorkers(numWorkers int) {
	g.vertexCh = make(chan *Vertex)
	g.errCh = make(chan error, 1)
	g.stepCompletedCh = make(chan struct{})

	g.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go g.stepWorker()
	}
}

// stepWorker polls vertexCh for incoming vertices and executes the configured
// ComputeFunc for each one. The worker automatically exits when vertexCh gets
// closed.
func (g *Graph) stepWorker() {
	for v := range g.vertexCh {
		buffer := g.superstep % 2
		if err := g.computeFn(g, v, v.msgQueue[buffer].Messages()); err != nil {
			tryEmitError(g.errCh, xerrors.Errorf("running compute function for vertex %d (%q) failed: %w", v.index, v.label, err))
		} else if err := v.msgQueue[buffer].DiscardMessages(); err != nil {
			tryEmitError(g.errCh, xerrors.Errorf("discarding unprocessed messages for vertex %d failed: %w", v.index, err))
		}
		if atomic.AddInt64(&g.pendingInStep, -1) == 0 {
			g.stepCompletedCh <- struct{}{}
		}
	}
	g.wg.Done()
}

func tryEmitError(errCh chan<- error, err error) {
	select {
	case errCh <- err: // queued error
	default: // channel already contains another error
	}
}
