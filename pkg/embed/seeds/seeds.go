// Package seeds selects influence-maximization seeds from layout geometry.
//
// Selection is greedy. Each round runs the layout engine to convergence,
// scores the unselected vertices with a [Ranker] and commits the most
// central one. Committed seeds are pinned in place and the next round
// starts from the coordinates the previous one converged to, so every
// round refines the same layout rather than starting over.
//
//	sel := seeds.New(seeds.Options{Ranker: seeds.CentroidDistance})
//	res, err := sel.Select(engine, init, 5, 0)
//	fmt.Println(res.Seeds)
//
// Ties between equal scores go to the lower vertex id, so a selection is
// fully determined by the graph, the configuration and the starting
// coordinates.
package seeds

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/graphem/pkg/embed/layout"
	gerrors "github.com/matzehuels/graphem/pkg/errors"
	"github.com/matzehuels/graphem/pkg/observability"
)

// Options configures a Selector.
type Options struct {
	// Ranker scores vertices. Nil means CentroidDistance.
	Ranker Ranker

	// Logger receives round progress and notices. Nil discards.
	Logger *log.Logger

	// Hooks receives selection events. Nil uses observability.Seeds().
	Hooks observability.SeedHooks

	// Notices receives the rounds_exhausted notice. Nil uses
	// observability.Embedding().
	Notices observability.EmbeddingHooks
}

// Result is the outcome of a selection.
type Result struct {
	// Seeds in commit order.
	Seeds []int

	// Scores[i] is the ranker score of Seeds[i] when it was committed.
	Scores []float64

	// Positions is the layout after the last round.
	Positions *mat.Dense

	// Rounds is the number of layout runs performed.
	Rounds int

	Notices []layout.Notice
}

// Selector runs greedy seed selection.
type Selector struct {
	ranker  Ranker
	logger  *log.Logger
	hooks   observability.SeedHooks
	notices observability.EmbeddingHooks
}

// New returns a Selector with defaults applied to opts.
func New(opts Options) *Selector {
	s := &Selector{ranker: opts.Ranker, logger: opts.Logger, hooks: opts.Hooks, notices: opts.Notices}
	if s.ranker == nil {
		s.ranker = CentroidDistance
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.hooks == nil {
		s.hooks = observability.Seeds()
	}
	if s.notices == nil {
		s.notices = observability.Embedding()
	}
	return s
}

// Select commits up to k seeds using at most rounds layout runs, starting
// from init. rounds == 0 means k rounds. k above the vertex count is
// clamped. When the rounds run out first, the remaining seeds are taken
// from the last ranking in order and a rounds_exhausted notice is
// reported.
//
// The engine's pins are cleared before and after the selection.
func (s *Selector) Select(e *layout.Engine, init *mat.Dense, k, rounds int) (*Result, error) {
	if k < 0 {
		return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "k must be >= 0, got %d", k)
	}
	if rounds < 0 {
		return nil, gerrors.New(gerrors.ErrCodeInvalidConfig, "rounds must be >= 0, got %d", rounds)
	}
	n := e.Graph().N()
	if k > n {
		s.logger.Debug("k clamped to vertex count", "k", k, "n", n)
		k = n
	}
	if rounds == 0 {
		rounds = k
	}

	start := time.Now()
	res, err := s.selectSeeds(e, init, k, rounds)
	var seeds []int
	if res != nil {
		seeds = res.Seeds
	}
	s.hooks.OnSelectComplete(seeds, roundsOf(res), time.Since(start), err)
	return res, err
}

func (s *Selector) selectSeeds(e *layout.Engine, init *mat.Dense, k, rounds int) (*Result, error) {
	e.Unpin()
	defer e.Unpin()

	// Validates init even when no round runs.
	if err := e.Reset(init); err != nil {
		return nil, err
	}

	n := e.Graph().N()
	res := &Result{Seeds: make([]int, 0, k), Scores: make([]float64, 0, k)}
	selected := make([]bool, n)
	cur := init
	var last []int
	var lastScores []float64

	for round := 1; len(res.Seeds) < k && round <= rounds; round++ {
		if err := e.Reset(cur); err != nil {
			return nil, err
		}
		if err := e.Run(); err != nil {
			return nil, fmt.Errorf("seed round %d: %w", round, err)
		}
		res.Rounds = round
		cur = e.Positions()

		scores := s.ranker.Score(cur)
		candidates := make([]int, 0, n-len(res.Seeds))
		for v := 0; v < n; v++ {
			if !selected[v] {
				candidates = append(candidates, v)
			}
		}
		ranked := order(scores, candidates)
		best := ranked[0]
		selected[best] = true
		res.Seeds = append(res.Seeds, best)
		res.Scores = append(res.Scores, scores[best])
		if err := e.Pin(best); err != nil {
			return nil, err
		}
		last, lastScores = ranked[1:], scores

		s.logger.Debug("seed committed", "round", round, "seed", best, "score", scores[best], "ranker", s.ranker.Name())
		s.hooks.OnRoundComplete(round, best, scores[best])
	}

	if missing := k - len(res.Seeds); missing > 0 {
		for _, v := range last[:missing] {
			res.Seeds = append(res.Seeds, v)
			res.Scores = append(res.Scores, lastScores[v])
		}
		notice := layout.Notice{
			Code:    layout.NoticeRoundsExhausted,
			Message: fmt.Sprintf("%d of %d seeds taken from the round %d ranking", missing, k, res.Rounds),
		}
		res.Notices = append(res.Notices, notice)
		s.logger.Warn("degenerate input", "code", notice.Code, "detail", notice.Message)
		s.notices.OnNotice(string(notice.Code), notice.Message)
	}

	res.Positions = e.Positions()
	return res, nil
}

func roundsOf(r *Result) int {
	if r == nil {
		return 0
	}
	return r.Rounds
}
