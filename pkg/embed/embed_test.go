package embed

import (
	"errors"
	"math"
	"slices"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/graphem/pkg/embed/layout"
	"github.com/matzehuels/graphem/pkg/embed/seeds"
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

func noticeCodes(ns []Notice) []layout.NoticeCode {
	out := make([]layout.NoticeCode, len(ns))
	for i, n := range ns {
		out[i] = n.Code
	}
	return out
}

func TestEmbedDefaults(t *testing.T) {
	g := mustGraph(graph.Grid(8, 15))
	res, err := Embed(g, DefaultConfig(), Options{Seed: 42})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	r, c := res.Positions.Dims()
	if r != 120 || c != 3 {
		t.Fatalf("Dims() = %dx%d, want 120x3", r, c)
	}
	if res.Iterations != 40 {
		t.Errorf("Iterations = %d, want 40", res.Iterations)
	}
	if len(res.Notices) != 0 {
		t.Errorf("Notices = %v, want none", res.Notices)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := res.Positions.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("coordinate (%d,%d) = %v", i, j, v)
			}
		}
	}
}

func TestEmbedDeterministic(t *testing.T) {
	g := mustGraph(graph.ErdosRenyi(80, 0.08, 5))
	cfg := DefaultConfig()

	a, err := Embed(g, cfg, Options{Seed: 7, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Embed(g, cfg, Options{Seed: 7, Workers: 8, BlockSize: 9})
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(a.Positions, b.Positions) {
		t.Error("same seed gave different positions across worker counts")
	}
}

func TestEmbedNotices(t *testing.T) {
	tests := []struct {
		name  string
		g     *graph.Graph
		cfg   func() Config
		codes []layout.NoticeCode
	}{
		{
			name: "disconnected graph",
			g:    mustGraph(graph.FromPairs(10, [][2]int{{0, 1}, {2, 3}})),
			cfg: func() Config {
				c := DefaultConfig()
				c.KnnK = 3
				return c
			},
			codes: []layout.NoticeCode{layout.NoticeSpectralFallback},
		},
		{
			name:  "small graph",
			g:     mustGraph(graph.Path(3)),
			cfg:   DefaultConfig,
			codes: []layout.NoticeCode{layout.NoticeKnnClamped, layout.NoticeSpectralFallback},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg()
			cfg.KAttr, cfg.Iterations = 0.1, 5
			res, err := Embed(tt.g, cfg, Options{Seed: 1})
			if err != nil {
				t.Fatalf("Embed: %v", err)
			}
			if got := noticeCodes(res.Notices); !slices.Equal(got, tt.codes) {
				t.Errorf("notices = %v, want %v", got, tt.codes)
			}
		})
	}
}

func TestEmbedWithInit(t *testing.T) {
	g := mustGraph(graph.Path(4))
	cfg := DefaultConfig()
	cfg.Dimension, cfg.Iterations = 2, 0
	init := mat.NewDense(4, 2, []float64{0, 0, 1, 1, 2, 2, 3, 3})

	res, err := Embed(g, cfg, Options{Init: init})
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(res.Positions, init) {
		t.Error("zero iterations from a supplied start should return it unchanged")
	}

	_, err = Embed(g, cfg, Options{Init: mat.NewDense(3, 2, nil)})
	if !errors.Is(err, layout.ErrShape) {
		t.Errorf("Embed with a 3x2 start = %v, want ErrShape", err)
	}
}

func TestEmbedRejectsInvalidConfig(t *testing.T) {
	g := mustGraph(graph.Path(4))
	cfg := DefaultConfig()
	cfg.LMin = -1
	if _, err := Embed(g, cfg, Options{}); !gerrors.Is(err, gerrors.ErrCodeInvalidConfig) {
		t.Errorf("Embed() = %v, want INVALID_CONFIG", err)
	}
	if _, err := SelectSeeds(g, cfg, 1, 0, Options{}); !gerrors.Is(err, gerrors.ErrCodeInvalidConfig) {
		t.Errorf("SelectSeeds() = %v, want INVALID_CONFIG", err)
	}
}

func TestEmbedDivergence(t *testing.T) {
	g := mustGraph(graph.Path(2))
	cfg := Config{Dimension: 1, LMin: 1, KAttr: 1e200, KInter: 0, KnnK: 0, Iterations: 3}
	_, err := Embed(g, cfg, Options{Init: mat.NewDense(2, 1, []float64{0, 1e200})})

	var div *layout.DivergenceError
	if !errors.As(err, &div) {
		t.Fatalf("Embed() = %v, want *DivergenceError", err)
	}
	if !gerrors.Is(err, gerrors.ErrCodeDiverged) {
		t.Error("divergence should carry DIVERGED")
	}
}

func TestSelectSeedsStar(t *testing.T) {
	g := mustGraph(graph.Star(10))
	cfg := Config{Dimension: 2, LMin: 1, KAttr: 0.2, KInter: 0.1, KnnK: 3, Iterations: 200}

	res, err := SelectSeeds(g, cfg, 1, 0, Options{Seed: 42})
	if err != nil {
		t.Fatalf("SelectSeeds: %v", err)
	}
	if !slices.Equal(res.Seeds, []int{0}) {
		t.Errorf("Seeds = %v, want [0]", res.Seeds)
	}
}

func TestSelectSeedsDeterministic(t *testing.T) {
	g := mustGraph(graph.BarabasiAlbert(60, 2, 4))
	cfg := Config{Dimension: 3, LMin: 1, KAttr: 0.1, KInter: 0.05, KnnK: 6, Iterations: 25}

	run := func() *SeedResult {
		res, err := SelectSeeds(g, cfg, 4, 0, Options{Seed: 11, Ranker: seeds.OriginDistance})
		if err != nil {
			t.Fatalf("SelectSeeds: %v", err)
		}
		return res
	}
	a, b := run(), run()
	if !slices.Equal(a.Seeds, b.Seeds) {
		t.Errorf("seed sequences differ: %v vs %v", a.Seeds, b.Seeds)
	}
	if len(a.Seeds) != 4 || a.Rounds != 4 {
		t.Errorf("Seeds = %v, Rounds = %d", a.Seeds, a.Rounds)
	}
}

func TestSelectSeedsRoundsExhausted(t *testing.T) {
	g := mustGraph(graph.Grid(5, 5))
	cfg := Config{Dimension: 2, LMin: 1, KAttr: 0.2, KInter: 0.05, KnnK: 4, Iterations: 10}

	res, err := SelectSeeds(g, cfg, 3, 2, Options{Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Seeds) != 3 || res.Rounds != 2 {
		t.Fatalf("Seeds = %v, Rounds = %d", res.Seeds, res.Rounds)
	}
	if got := noticeCodes(res.Notices); !slices.Contains(got, layout.NoticeRoundsExhausted) {
		t.Errorf("notices = %v, want rounds_exhausted", got)
	}
}
