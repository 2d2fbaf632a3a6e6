package spectral

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	gerrors "github.com/matzehuels/graphem/pkg/errors"
	"github.com/matzehuels/graphem/pkg/graph"
)

// mustGraph panics on a construction error; test graphs are fixed.
func mustGraph(g *graph.Graph, err error) *graph.Graph {
	if err != nil {
		panic(err)
	}
	return g
}

func assertFinite(t *testing.T, m *mat.Dense) {
	t.Helper()
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := m.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("coordinate (%d,%d) = %v", i, j, v)
			}
		}
	}
}

func TestInitializeShapeAndScale(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*graph.Graph, error)
		dim   int
	}{
		{"path 1d", func() (*graph.Graph, error) { return graph.Path(6) }, 1},
		{"grid 2d", func() (*graph.Graph, error) { return graph.Grid(4, 5) }, 2},
		{"complete 3d", func() (*graph.Graph, error) { return graph.Complete(6) }, 3},
		{"scale-free 3d", func() (*graph.Graph, error) { return graph.BarabasiAlbert(80, 2, 3) }, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGraph(tt.build())
			res, err := Initialize(g, tt.dim, Options{Scale: 10})
			if err != nil {
				t.Fatalf("Initialize: %v", err)
			}
			if res.Fallback {
				t.Fatalf("unexpected fallback: %s", res.Reason)
			}
			r, c := res.Positions.Dims()
			if r != g.N() || c != tt.dim {
				t.Fatalf("Dims() = %dx%d, want %dx%d", r, c, g.N(), tt.dim)
			}
			assertFinite(t, res.Positions)
			if mean := meanEdgeLength(g, res.Positions); math.Abs(mean-10) > 1e-9 {
				t.Errorf("mean edge length = %v, want 10", mean)
			}
		})
	}
}

func TestInitializePathIsMonotone(t *testing.T) {
	g := mustGraph(graph.Path(7))
	res, err := Initialize(g, 1, Options{Scale: 1})
	if err != nil {
		t.Fatal(err)
	}
	x := mat.Col(nil, 0, res.Positions)
	inc, dec := true, true
	for i := 1; i < len(x); i++ {
		inc = inc && x[i] > x[i-1]
		dec = dec && x[i] < x[i-1]
	}
	if !inc && !dec {
		t.Errorf("Fiedler coordinates of a path are not monotone: %v", x)
	}
}

func TestInitializeCycleOnCircle(t *testing.T) {
	g := mustGraph(graph.Cycle(8))
	res, err := Initialize(g, 2, Options{Scale: 1})
	if err != nil {
		t.Fatal(err)
	}
	r0 := mat.Norm(res.Positions.RowView(0), 2)
	for i := 1; i < 8; i++ {
		if ri := mat.Norm(res.Positions.RowView(i), 2); math.Abs(ri-r0) > 1e-6*r0 {
			t.Errorf("radius(%d) = %v, radius(0) = %v", i, ri, r0)
		}
	}
}

func TestInitializeSignConvention(t *testing.T) {
	g := mustGraph(graph.Star(9))
	res, err := Initialize(g, 2, Options{Scale: 1})
	if err != nil {
		t.Fatal(err)
	}
	_, d := res.Positions.Dims()
	for c := 0; c < d; c++ {
		col := mat.Col(nil, c, res.Positions)
		best, at := -1.0, 0
		for i, v := range col {
			if math.Abs(v) > best {
				best, at = math.Abs(v), i
			}
		}
		if col[at] < 0 {
			t.Errorf("column %d: largest entry %v is negative", c, col[at])
		}
	}
}

func TestInitializeDeterministic(t *testing.T) {
	g := mustGraph(graph.ErdosRenyi(40, 0.2, 1))
	opts := Options{Scale: 10, Jitter: DefaultJitter, Seed: 42}

	a, err := Initialize(g, 3, opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Initialize(g, 3, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(a.Positions, b.Positions) {
		t.Error("same seed produced different coordinates")
	}

	opts.Seed = 43
	c, err := Initialize(g, 3, opts)
	if err != nil {
		t.Fatal(err)
	}
	if mat.Equal(a.Positions, c.Positions) {
		t.Error("different seeds produced identical jitter")
	}
}

func TestInitializeFallback(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*graph.Graph, error)
		dim   int
		max   int
	}{
		{"disconnected", func() (*graph.Graph, error) { return graph.FromPairs(6, [][2]int{{0, 1}, {2, 3}}) }, 2, 0},
		{"edgeless", func() (*graph.Graph, error) { return graph.New(20, nil) }, 3, 0},
		{"too few vertices", func() (*graph.Graph, error) { return graph.Path(3) }, 3, 0},
		{"single vertex", func() (*graph.Graph, error) { return graph.Path(1) }, 1, 0},
		{"over the limit", func() (*graph.Graph, error) { return graph.Path(10) }, 2, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGraph(tt.build())
			const scale = 4.0
			res, err := Initialize(g, tt.dim, Options{Scale: scale, MaxVertices: tt.max, Seed: 7})
			if err != nil {
				t.Fatalf("Initialize: %v", err)
			}
			if !res.Fallback || res.Reason == "" {
				t.Fatalf("Fallback = %v, Reason = %q", res.Fallback, res.Reason)
			}
			assertFinite(t, res.Positions)
			s := scale * math.Pow(float64(g.N()), 1/float64(tt.dim)) / 2
			r, c := res.Positions.Dims()
			for i := 0; i < r; i++ {
				for j := 0; j < c; j++ {
					if v := res.Positions.At(i, j); math.Abs(v) > s {
						t.Errorf("coordinate %v outside [-%v, %v]", v, s, s)
					}
				}
			}
		})
	}
}

func TestInitializeInvalid(t *testing.T) {
	g := mustGraph(graph.Path(4))
	tests := []struct {
		name string
		dim  int
		opts Options
	}{
		{"zero dimension", 0, Options{Scale: 1}},
		{"zero scale", 2, Options{Scale: 0}},
		{"nan scale", 2, Options{Scale: math.NaN()}},
		{"negative jitter", 2, Options{Scale: 1, Jitter: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Initialize(g, tt.dim, tt.opts)
			if !gerrors.Is(err, gerrors.ErrCodeInvalidConfig) {
				t.Errorf("error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}
