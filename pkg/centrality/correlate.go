package centrality

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	gerrors "github.com/matzehuels/graphem/pkg/errors"
)

// Ranks returns 1-based ranks of xs, giving tied values the average of
// the ranks they span.
func Ranks(xs []float64) []float64 {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	ranks := make([]float64, len(xs))
	for lo := 0; lo < len(idx); {
		hi := lo + 1
		for hi < len(idx) && xs[idx[hi]] == xs[idx[lo]] {
			hi++
		}
		avg := float64(lo+hi+1) / 2
		for _, i := range idx[lo:hi] {
			ranks[i] = avg
		}
		lo = hi
	}
	return ranks
}

// Spearman returns the rank correlation of x and y and its two-sided
// p-value from the t approximation. rho is NaN when either input is
// constant.
func Spearman(x, y []float64) (rho, p float64, err error) {
	if len(x) != len(y) {
		return 0, 0, gerrors.New(gerrors.ErrCodeInvalidInput, "length mismatch: %d vs %d", len(x), len(y))
	}
	n := len(x)
	if n < 3 {
		return 0, 0, gerrors.New(gerrors.ErrCodeInvalidInput, "need at least 3 observations, got %d", n)
	}
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			return 0, 0, gerrors.New(gerrors.ErrCodeInvalidInput, "NaN at index %d", i)
		}
	}

	rho = stat.Correlation(Ranks(x), Ranks(y), nil)
	switch {
	case math.IsNaN(rho):
		return rho, math.NaN(), nil
	case math.Abs(rho) >= 1:
		return math.Copysign(1, rho), 0, nil
	}
	df := float64(n - 2)
	t := rho * math.Sqrt(df/(1-rho*rho))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p = 2 * dist.Survival(math.Abs(t))
	return rho, p, nil
}
