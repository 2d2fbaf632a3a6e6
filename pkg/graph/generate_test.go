package graph

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/matzehuels/graphem/pkg/errors"
)

func hasEdge(g *Graph, u, v int) bool {
	return slices.Contains(g.Neighbors(u), v)
}

func TestFixedFamilies(t *testing.T) {
	tests := []struct {
		name      string
		build     func() (*Graph, error)
		wantN     int
		wantM     int
		connected bool
	}{
		{"path", func() (*Graph, error) { return Path(5) }, 5, 4, true},
		{"single path", func() (*Graph, error) { return Path(1) }, 1, 0, true},
		{"cycle", func() (*Graph, error) { return Cycle(6) }, 6, 6, true},
		{"star", func() (*Graph, error) { return Star(10) }, 10, 9, true},
		{"complete", func() (*Graph, error) { return Complete(5) }, 5, 10, true},
		{"grid", func() (*Graph, error) { return Grid(3, 4) }, 12, 17, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.wantN, g.N())
			assert.Equal(t, tt.wantM, g.M())
			assert.Equal(t, tt.connected, g.IsConnected())
		})
	}
}

func TestGeneratorErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Graph, error)
	}{
		{"empty path", func() (*Graph, error) { return Path(0) }},
		{"short cycle", func() (*Graph, error) { return Cycle(2) }},
		{"empty grid", func() (*Graph, error) { return Grid(0, 3) }},
		{"bad probability", func() (*Graph, error) { return ErdosRenyi(5, 1.5, 1) }},
		{"zero m", func() (*Graph, error) { return BarabasiAlbert(5, 0, 1) }},
		{"n not above m", func() (*Graph, error) { return BarabasiAlbert(3, 3, 1) }},
		{"ws k too large", func() (*Graph, error) { return WattsStrogatz(5, 5, 0.1, 1) }},
		{"ws bad probability", func() (*Graph, error) { return WattsStrogatz(10, 4, -0.1, 1) }},
		{"regular odd stubs", func() (*Graph, error) { return RandomRegular(5, 3, 1) }},
		{"regular degree too large", func() (*Graph, error) { return RandomRegular(4, 4, 1) }},
		{"sbm no blocks", func() (*Graph, error) { return StochasticBlock(nil, nil, 1) }},
		{"sbm asymmetric", func() (*Graph, error) {
			return StochasticBlock([]int{2, 2}, [][]float64{{1, 0.1}, {0.2, 1}}, 1)
		}},
		{"sbm ragged", func() (*Graph, error) { return StochasticBlock([]int{2, 2}, [][]float64{{1, 0}, {0}}, 1) }},
		{"geometric negative radius", func() (*Graph, error) { return RandomGeometric(5, -1, 2, 1) }},
		{"geometric zero dimension", func() (*Graph, error) { return RandomGeometric(5, 0.1, 0, 1) }},
		{"empty caveman", func() (*Graph, error) { return Caveman(0, 3) }},
		{"relaxed caveman probability", func() (*Graph, error) { return RelaxedCaveman(2, 3, 2, 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			require.Error(t, err)
			assert.True(t, gerrors.IsConfig(err), "got %v", err)
		})
	}
}

func TestErdosRenyi(t *testing.T) {
	a, err := ErdosRenyi(40, 0.2, 7)
	require.NoError(t, err)
	b, err := ErdosRenyi(40, 0.2, 7)
	require.NoError(t, err)
	assert.Equal(t, a.Edges(), b.Edges(), "same seed must give the same graph")

	empty, err := ErdosRenyi(10, 0, 7)
	require.NoError(t, err)
	assert.Zero(t, empty.M())

	full, err := ErdosRenyi(10, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 45, full.M())
}

func TestBarabasiAlbert(t *testing.T) {
	const n, m = 60, 2
	g, err := BarabasiAlbert(n, m, 11)
	require.NoError(t, err)

	// Clique on m+1 vertices, then m edges per later vertex.
	assert.Equal(t, n, g.N())
	assert.Equal(t, m*(m+1)/2+(n-m-1)*m, g.M())
	assert.True(t, g.IsConnected())
	for v := 0; v < n; v++ {
		assert.GreaterOrEqual(t, g.Degree(v), m, "vertex %d", v)
	}

	again, err := BarabasiAlbert(n, m, 11)
	require.NoError(t, err)
	assert.Equal(t, g.Edges(), again.Edges())
}

func TestWattsStrogatz(t *testing.T) {
	ring, err := WattsStrogatz(12, 4, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, 24, ring.M())
	for v := 0; v < 12; v++ {
		assert.Equal(t, 4, ring.Degree(v), "vertex %d", v)
	}
	assert.True(t, hasEdge(ring, 0, 11))
	assert.True(t, hasEdge(ring, 0, 2))

	// Rewiring moves edges but never adds or drops one.
	g, err := WattsStrogatz(50, 6, 0.3, 5)
	require.NoError(t, err)
	assert.Equal(t, 150, g.M())
	again, err := WattsStrogatz(50, 6, 0.3, 5)
	require.NoError(t, err)
	assert.Equal(t, g.Edges(), again.Edges())
}

func TestRandomRegular(t *testing.T) {
	for _, d := range []int{0, 3, 6} {
		g, err := RandomRegular(20, d, 9)
		require.NoError(t, err)
		assert.Equal(t, 20*d/2, g.M())
		for v := 0; v < 20; v++ {
			assert.Equal(t, d, g.Degree(v), "d=%d vertex %d", d, v)
		}
	}

	a, err := RandomRegular(30, 4, 9)
	require.NoError(t, err)
	b, err := RandomRegular(30, 4, 9)
	require.NoError(t, err)
	assert.Equal(t, a.Edges(), b.Edges())
}

func TestStochasticBlock(t *testing.T) {
	g, err := StochasticBlock([]int{4, 3}, [][]float64{{1, 0}, {0, 1}}, 2)
	require.NoError(t, err)
	assert.Equal(t, 7, g.N())
	assert.Equal(t, 6+3, g.M())
	assert.Equal(t, [][]int{{0, 1, 2, 3}, {4, 5, 6}}, g.Components())

	bridged, err := StochasticBlock([]int{3, 3}, [][]float64{{0, 1}, {1, 0}}, 2)
	require.NoError(t, err)
	assert.Equal(t, 9, bridged.M())
	assert.False(t, hasEdge(bridged, 0, 1))
	assert.True(t, hasEdge(bridged, 0, 3))
}

func TestRandomGeometric(t *testing.T) {
	none, err := RandomGeometric(20, 0, 2, 4)
	require.NoError(t, err)
	assert.Zero(t, none.M())

	// Any two points of the unit square are within sqrt(2).
	all, err := RandomGeometric(20, 1.5, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, 190, all.M())

	a, err := RandomGeometric(60, 0.2, 3, 4)
	require.NoError(t, err)
	b, err := RandomGeometric(60, 0.2, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, a.Edges(), b.Edges())
}

func TestCaveman(t *testing.T) {
	g, err := Caveman(3, 4)
	require.NoError(t, err)
	assert.Equal(t, 12, g.N())
	assert.Equal(t, 18, g.M())
	assert.Equal(t, [][]int{{0, 1, 2, 3}, {4, 5, 6, 7}, {8, 9, 10, 11}}, g.Components())

	same, err := RelaxedCaveman(3, 4, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, g.Edges(), same.Edges())

	relaxed, err := RelaxedCaveman(10, 5, 0.3, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, relaxed.M())
	assert.Less(t, len(relaxed.Components()), 10, "rewiring should join some caves")
}
