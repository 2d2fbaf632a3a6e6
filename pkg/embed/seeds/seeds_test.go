package seeds

import (
	"math"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/graphem/internal/rng"
	"github.com/matzehuels/graphem/pkg/embed/layout"
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

func randomStart(n, d int, scale float64, seed uint64) *mat.Dense {
	r := rng.New(seed)
	m := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for c := 0; c < d; c++ {
			m.Set(i, c, (2*r.Float64()-1)*scale)
		}
	}
	return m
}

func starConfig() layout.Config {
	return layout.Config{Dimension: 2, LMin: 1, KAttr: 0.2, KInter: 0.1, KnnK: 3, Iterations: 200}
}

func newEngine(t *testing.T, g *graph.Graph, cfg layout.Config) *layout.Engine {
	t.Helper()
	e, err := layout.NewEngine(g, cfg, layout.Options{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestSelectStarCenter(t *testing.T) {
	g := mustGraph(graph.Star(10))
	for _, seed := range []uint64{1, 2, 3, 4, 5} {
		e := newEngine(t, g, starConfig())
		res, err := New(Options{}).Select(e, randomStart(10, 2, 3, seed), 1, 1)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		if !slices.Equal(res.Seeds, []int{0}) {
			t.Errorf("start %d: Seeds = %v, want [0]", seed, res.Seeds)
		}
	}
}

func TestSelectDeterministic(t *testing.T) {
	g := mustGraph(graph.BarabasiAlbert(40, 2, 9))
	cfg := layout.Config{Dimension: 3, LMin: 1, KAttr: 0.1, KInter: 0.05, KnnK: 5, Iterations: 30}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 10
	properties := gopter.NewProperties(parameters)

	properties.Property("identical inputs give identical seeds", prop.ForAll(
		func(seed uint64, k int) bool {
			init := randomStart(40, 3, 5, seed)
			a, err := New(Options{}).Select(newEngine(t, g, cfg), init, k, 0)
			if err != nil {
				return false
			}
			b, err := New(Options{}).Select(newEngine(t, g, cfg), init, k, 0)
			if err != nil {
				return false
			}
			return slices.Equal(a.Seeds, b.Seeds) && mat.Equal(a.Positions, b.Positions)
		},
		gen.UInt64(),
		gen.IntRange(1, 4),
	))

	properties.Property("seeds are distinct and in range", prop.ForAll(
		func(seed uint64, k int) bool {
			res, err := New(Options{}).Select(newEngine(t, g, cfg), randomStart(40, 3, 5, seed), k, 0)
			if err != nil || len(res.Seeds) != k {
				return false
			}
			seen := map[int]bool{}
			for _, s := range res.Seeds {
				if s < 0 || s >= 40 || seen[s] {
					return false
				}
				seen[s] = true
			}
			return true
		},
		gen.UInt64(),
		gen.IntRange(1, 6),
	))

	properties.TestingRun(t)
}

func TestSelectPinsCommittedSeeds(t *testing.T) {
	g := mustGraph(graph.Grid(4, 4))
	cfg := layout.Config{Dimension: 2, LMin: 1, KAttr: 0.2, KInter: 0.05, KnnK: 4, Iterations: 20}
	init := randomStart(16, 2, 2, 17)

	// Round one on its own.
	e := newEngine(t, g, cfg)
	if err := e.Reset(init); err != nil {
		t.Fatal(err)
	}
	if err := e.Run(); err != nil {
		t.Fatal(err)
	}
	afterFirst := e.Positions()

	res, err := New(Options{}).Select(newEngine(t, g, cfg), init, 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Rounds != 3 {
		t.Errorf("Rounds = %d, want 3", res.Rounds)
	}
	first := res.Seeds[0]
	if !mat.Equal(res.Positions.RowView(first), afterFirst.RowView(first)) {
		t.Errorf("seed %d moved after it was committed", first)
	}
}

func TestSelectRoundsExhausted(t *testing.T) {
	g := mustGraph(graph.BarabasiAlbert(30, 2, 5))
	cfg := layout.Config{Dimension: 2, LMin: 1, KAttr: 0.1, KInter: 0.05, KnnK: 4, Iterations: 10}
	res, err := New(Options{}).Select(newEngine(t, g, cfg), randomStart(30, 2, 3, 1), 4, 1)
	if err != nil {
		t.Fatal(err)
	}

	if res.Rounds != 1 || len(res.Seeds) != 4 {
		t.Fatalf("Rounds = %d, Seeds = %v; want 1 round and 4 seeds", res.Rounds, res.Seeds)
	}
	if len(res.Notices) != 1 || res.Notices[0].Code != layout.NoticeRoundsExhausted {
		t.Fatalf("Notices = %v, want rounds_exhausted", res.Notices)
	}

	// The filled seeds follow the single ranking.
	scores := CentroidDistance.Score(res.Positions)
	for i := 1; i < len(res.Seeds); i++ {
		a, b := res.Seeds[i-1], res.Seeds[i]
		if scores[a] > scores[b] || (scores[a] == scores[b] && a > b) {
			t.Errorf("seed %d (%v) ranked before %d (%v)", a, scores[a], b, scores[b])
		}
		if res.Scores[i] != scores[b] {
			t.Errorf("Scores[%d] = %v, want %v", i, res.Scores[i], scores[b])
		}
	}
}

func TestSelectEdgeCases(t *testing.T) {
	g := mustGraph(graph.Path(3))
	cfg := layout.Config{Dimension: 1, LMin: 1, KAttr: 0.2, KInter: 0.1, KnnK: 2, Iterations: 5}
	init := mat.NewDense(3, 1, []float64{0, 1, 2})

	t.Run("k zero", func(t *testing.T) {
		res, err := New(Options{}).Select(newEngine(t, g, cfg), init, 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Seeds) != 0 || res.Rounds != 0 {
			t.Errorf("Seeds = %v, Rounds = %d", res.Seeds, res.Rounds)
		}
		if !mat.Equal(res.Positions, init) {
			t.Error("Positions should equal the start when no round runs")
		}
	})

	t.Run("k above n", func(t *testing.T) {
		res, err := New(Options{}).Select(newEngine(t, g, cfg), init, 10, 0)
		if err != nil {
			t.Fatal(err)
		}
		got := slices.Sorted(slices.Values(res.Seeds))
		if !slices.Equal(got, []int{0, 1, 2}) {
			t.Errorf("Seeds = %v, want a permutation of [0 1 2]", res.Seeds)
		}
	})

	errTests := []struct {
		name     string
		init     *mat.Dense
		k, round int
	}{
		{"negative k", init, -1, 0},
		{"negative rounds", init, 1, -1},
		{"wrong shape", mat.NewDense(2, 1, nil), 1, 0},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Options{}).Select(newEngine(t, g, cfg), tt.init, tt.k, tt.round)
			if !gerrors.Is(err, gerrors.ErrCodeInvalidConfig) {
				t.Errorf("Select() = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestRankers(t *testing.T) {
	pos := mat.NewDense(4, 2, []float64{
		10, 10,
		12, 10,
		10, 12,
		12, 12,
	})
	centroid := CentroidDistance.Score(pos)
	for i, s := range centroid {
		if math.Abs(s-math.Sqrt2) > 1e-12 {
			t.Errorf("centroid score %d = %v, want sqrt(2)", i, s)
		}
	}
	origin := OriginDistance.Score(pos)
	if got := order(origin, []int{0, 1, 2, 3}); !slices.Equal(got, []int{0, 1, 2, 3}) {
		t.Errorf("origin order = %v, want [0 1 2 3]", got)
	}
	// Equal centroid scores fall back to id order.
	if got := order(centroid, []int{3, 1, 2}); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("tie order = %v, want [1 2 3]", got)
	}
}

func TestRankerByName(t *testing.T) {
	for _, name := range []string{"centroid", "origin", "Centroid"} {
		if _, err := RankerByName(name); err != nil {
			t.Errorf("RankerByName(%q) = %v", name, err)
		}
	}
	if _, err := RankerByName("pagerank"); !gerrors.Is(err, gerrors.ErrCodeInvalidConfig) {
		t.Errorf("RankerByName(pagerank) = %v, want INVALID_CONFIG", err)
	}
}
