package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"

	gerrors "github.com/matzehuels/graphem/pkg/errors"
)

// =============================================================================
// Embedding - Serialized Run Output
// =============================================================================

// Embedding is the serialized result of an embed or seeds run.
//
// Positions[i] holds the coordinates of vertex i; every row has Dimension
// entries. Seeds is set only by seed selection runs. The format is meant for
// external plotters and for the pipeline cache:
//
//	{"n": 3, "dimension": 2, "positions": [[0, 0], [10, 0], [20, 0]], ...}
type Embedding struct {
	RunID      string      `json:"run_id,omitempty"`
	N          int         `json:"n"`
	Dimension  int         `json:"dimension"`
	Positions  [][]float64 `json:"positions"`
	Seeds      []int       `json:"seeds,omitempty"`
	Config     Params      `json:"config"`
	Notices    []Notice    `json:"notices,omitempty"`
	Seed       uint64      `json:"seed"`
	Iterations int         `json:"iterations"`
}

// Params mirrors the six layout parameters for serialization.
type Params struct {
	Dimension  int     `json:"dimension"`
	LMin       float64 `json:"l_min"`
	KAttr      float64 `json:"k_attr"`
	KInter     float64 `json:"k_inter"`
	KnnK       int     `json:"knn_k"`
	Iterations int     `json:"num_iterations"`
}

// Notice is the serialized form of a non-fatal degenerate-input report.
type Notice struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Validate checks that Positions is an N x Dimension matrix of finite
// values and that Seeds are distinct vertex ids.
func (e *Embedding) Validate() error {
	if e.N < 1 {
		return gerrors.New(gerrors.ErrCodeInvalidFormat, "embedding has n = %d", e.N)
	}
	if e.Dimension < 1 {
		return gerrors.New(gerrors.ErrCodeInvalidFormat, "embedding has dimension = %d", e.Dimension)
	}
	if len(e.Positions) != e.N {
		return gerrors.New(gerrors.ErrCodeInvalidFormat, "embedding has %d rows, want %d", len(e.Positions), e.N)
	}
	for i, row := range e.Positions {
		if len(row) != e.Dimension {
			return gerrors.New(gerrors.ErrCodeInvalidFormat, "row %d has %d columns, want %d", i, len(row), e.Dimension)
		}
		for _, x := range row {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return gerrors.New(gerrors.ErrCodeInvalidFormat, "row %d has non-finite coordinate", i)
			}
		}
	}
	seen := make(map[int]struct{}, len(e.Seeds))
	for _, s := range e.Seeds {
		if s < 0 || s >= e.N {
			return gerrors.New(gerrors.ErrCodeInvalidFormat, "seed %d out of range", s)
		}
		if _, dup := seen[s]; dup {
			return gerrors.New(gerrors.ErrCodeInvalidFormat, "seed %d repeated", s)
		}
		seen[s] = struct{}{}
	}
	return nil
}

// Dense returns Positions as an n x d gonum matrix.
func (e *Embedding) Dense() *mat.Dense {
	m := mat.NewDense(e.N, e.Dimension, nil)
	for i, row := range e.Positions {
		m.SetRow(i, row)
	}
	return m
}

// Rows copies a coordinate matrix into row slices.
func Rows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		for j := range out[i] {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

// =============================================================================
// Embedding Serialization API
// =============================================================================

// MarshalEmbedding serializes an Embedding to pretty-printed JSON bytes.
func MarshalEmbedding(e *Embedding) ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// UnmarshalEmbedding decodes and validates an Embedding.
func UnmarshalEmbedding(data []byte) (*Embedding, error) {
	var e Embedding
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidFormat, err, "unmarshal embedding")
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// WriteEmbeddingFile writes an Embedding to a JSON file.
func WriteEmbeddingFile(e *Embedding, path string) error {
	data, err := MarshalEmbedding(e)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadEmbeddingFile reads an Embedding from a JSON file.
func ReadEmbeddingFile(path string) (*Embedding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, gerrors.Wrap(gerrors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalEmbedding(data)
}
