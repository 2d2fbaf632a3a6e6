package centrality

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/mat"

	gerrors "github.com/matzehuels/graphem/pkg/errors"
	"github.com/matzehuels/graphem/pkg/graph"
)

// Row is one line of a correlation report.
type Row struct {
	Measure string  `json:"measure"`
	Rho     float64 `json:"rho"`
	P       float64 `json:"p"`
}

// MarshalJSON writes an undefined Rho or P as null. Spearman yields NaN
// when a measure is constant over the graph, as degree is on a cycle.
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Measure string   `json:"measure"`
		Rho     *float64 `json:"rho"`
		P       *float64 `json:"p"`
	}{r.Measure, finiteOrNil(r.Rho), finiteOrNil(r.P)})
}

func finiteOrNil(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}

// Report correlates the radii of pos with every centrality measure of g.
// Rows follow the order of Measures.
func Report(g *graph.Graph, pos mat.Matrix, from Center) ([]Row, error) {
	n, _ := pos.Dims()
	if n != g.N() {
		return nil, gerrors.New(gerrors.ErrCodeInvalidInput, "positions have %d rows, graph has %d vertices", n, g.N())
	}
	radii, err := Radii(pos, from)
	if err != nil {
		return nil, err
	}

	values := Compute(g)
	rows := make([]Row, 0, len(Measures))
	for _, name := range Measures {
		rho, p, err := Spearman(radii, values[name])
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{Measure: name, Rho: rho, P: p})
	}
	return rows, nil
}
