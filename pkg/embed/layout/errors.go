package layout

import (
	"errors"
	"fmt"

	gerrors "github.com/matzehuels/graphem/pkg/errors"
)

var (
	// ErrNotInitialized is returned by Run when the engine has no starting
	// coordinates, or has already run since the last Reset.
	ErrNotInitialized = errors.New("engine not initialized: call Reset first")

	// ErrShape is wrapped by Reset when the starting matrix is not n x d.
	ErrShape = errors.New("starting coordinates have the wrong shape")
)

// Term names the force contribution blamed for a divergence.
type Term string

const (
	TermAttraction Term = "attraction"
	TermRepulsion  Term = "repulsion"
)

// DivergenceError reports the first non-finite coordinate of a run.
//
// It unwraps to a DIVERGED [gerrors.Error], so both
// errors.As(err, new(*DivergenceError)) and
// gerrors.Is(err, gerrors.ErrCodeDiverged) hold.
type DivergenceError struct {
	Iteration int  // 1-based iteration that produced the value
	Vertex    int  // lowest vertex id with a non-finite coordinate
	Term      Term // contribution that was non-finite or larger in norm

	cause *gerrors.Error
}

func newDivergenceError(iter, vertex int, term Term) *DivergenceError {
	return &DivergenceError{
		Iteration: iter,
		Vertex:    vertex,
		Term:      term,
		cause: gerrors.New(gerrors.ErrCodeDiverged,
			"iteration %d, vertex %d, %s term", iter, vertex, term),
	}
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("layout diverged at iteration %d on vertex %d (%s term)", e.Iteration, e.Vertex, e.Term)
}

func (e *DivergenceError) Unwrap() error { return e.cause }
