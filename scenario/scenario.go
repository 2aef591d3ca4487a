package scenario

import (
	"bytes"
	"io"
	"io/ioutil"

	"github.com/neurorank/fxpagerank/fixed"
	"github.com/neurorank/fxpagerank/graph"
	"github.com/neurorank/fxpagerank/pagerank"
	"github.com/neurorank/fxpagerank/verify"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// ErrEmpty is returned when parsing a document without a scenario.
var ErrEmpty = xerrors.New("empty scenario")

// Label is a vertex label. Scenario files may spell labels as strings or
// integers; both are kept in their textual form.
type Label string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Label) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode || n.Value == "" {
		return xerrors.Errorf("line %d: a label must be a non-empty scalar", n.Line)
	}
	*l = Label(n.Value)
	return nil
}

// Edge is a directed edge. It is written either as a [src, dst] pair or as
// a {src: ..., dst: ...} mapping.
type Edge struct {
	Src Label `yaml:"src"`
	Dst Label `yaml:"dst"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Edge) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		if len(n.Content) != 2 {
			return xerrors.Errorf("line %d: an edge needs exactly two endpoints, got %d", n.Line, len(n.Content))
		}
		if err := n.Content[0].Decode(&e.Src); err != nil {
			return err
		}
		return n.Content[1].Decode(&e.Dst)
	case yaml.MappingNode:
		type plain Edge
		var p plain
		if err := n.Decode(&p); err != nil {
			return err
		}
		if p.Src == "" || p.Dst == "" {
			return xerrors.Errorf("line %d: an edge needs both src and dst", n.Line)
		}
		*e = Edge(p)
		return nil
	default:
		return xerrors.Errorf("line %d: an edge must be a pair or a mapping", n.Line)
	}
}

// Scenario describes a graph, the parameters to run it with and optionally
// the ranks that a run is expected to produce.
type Scenario struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Edges       []Edge             `yaml:"edges"`
	Labels      []Label            `yaml:"labels"`
	Damping     *float64           `yaml:"damping"`
	MaxIter     int                `yaml:"max_iter"`
	Tolerance   float64            `yaml:"tolerance"`
	Truncate    int                `yaml:"truncate_bits"`
	RankFormat  string             `yaml:"rank_format"`
	Undamped    bool               `yaml:"undamped"`
	Expected    map[string]float64 `yaml:"expected"`
}

// Parse decodes a scenario from a YAML document. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		if xerrors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, xerrors.Errorf("parse scenario: %w", err)
	}
	if s.RankFormat != "" {
		if _, err := fixed.ParseFormat(s.RankFormat); err != nil {
			return nil, xerrors.Errorf("parse scenario: %w", err)
		}
	}
	return &s, nil
}

// Load reads and parses the scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("load scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Graph builds and validates the scenario graph.
func (s *Scenario) Graph() (*graph.Graph, error) {
	cfg := graph.Config{Damping: s.Damping}
	for _, e := range s.Edges {
		cfg.Edges = append(cfg.Edges, graph.Edge{Src: string(e.Src), Dst: string(e.Dst)})
	}
	for _, l := range s.Labels {
		cfg.Labels = append(cfg.Labels, string(l))
	}
	return graph.Build(cfg)
}

// EngineConfig returns the engine parameters of the scenario. Fields that
// the scenario leaves out keep their engine defaults.
func (s *Scenario) EngineConfig() pagerank.Config {
	cfg := pagerank.Config{
		MaxIter:      s.MaxIter,
		Tolerance:    s.Tolerance,
		TruncateBits: s.Truncate,
		Undamped:     s.Undamped,
	}
	if s.RankFormat != "" {
		// Validated by Parse.
		cfg.RankFormat, _ = fixed.ParseFormat(s.RankFormat)
	}
	return cfg
}

// VerifierConfig returns the verifier parameters of the scenario.
func (s *Scenario) VerifierConfig() verify.Config {
	cfg := verify.Config{Tolerance: s.Tolerance}
	if s.Undamped {
		cfg.Damping = graph.DampingFactor(1)
	}
	return cfg
}

// CompareExpected checks observed ranks, given in the vertex order of g,
// against the expected ranks listed in the scenario.
func (s *Scenario) CompareExpected(g *graph.Graph, observed []float64) (*verify.Report, error) {
	if len(s.Expected) == 0 {
		return nil, xerrors.New("scenario does not list expected ranks")
	}

	expected := make([]float64, g.Len())
	for i, label := range g.Labels() {
		rank, ok := s.Expected[label]
		if !ok {
			return nil, xerrors.Errorf("no expected rank for vertex %q", label)
		}
		expected[i] = rank
	}

	tol := s.Tolerance
	if tol == 0 {
		tol = 1e-5
	}
	return verify.Compare(g.Labels(), observed, expected, tol)
}
