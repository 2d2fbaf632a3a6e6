package layout

import (
	"fmt"

	"github.com/matzehuels/graphem/internal/validate"
	gerrors "github.com/matzehuels/graphem/pkg/errors"
)

// Default parameter values.
const (
	DefaultDimension  = 3
	DefaultLMin       = 10.0
	DefaultKAttr      = 0.5
	DefaultKInter     = 0.1
	DefaultKnnK       = 15
	DefaultIterations = 40
)

// Config holds the six layout parameters. Field keys match parameter files
// in TOML, YAML and JSON.
type Config struct {
	// Dimension is the number of coordinates per vertex.
	Dimension int `toml:"dimension" yaml:"dimension" json:"dimension" validate:"min=1"`

	// LMin is the rest length of an edge spring.
	LMin float64 `toml:"l_min" yaml:"l_min" json:"l_min" validate:"gt=0"`

	// KAttr is the spring stiffness along edges.
	KAttr float64 `toml:"k_attr" yaml:"k_attr" json:"k_attr" validate:"gte=0"`

	// KInter is the repulsion strength between nearby vertices.
	KInter float64 `toml:"k_inter" yaml:"k_inter" json:"k_inter" validate:"gte=0"`

	// KnnK is the number of neighbours each vertex is repelled by. Values
	// above n-1 are clamped; zero disables repulsion.
	KnnK int `toml:"knn_k" yaml:"knn_k" json:"knn_k" validate:"gte=0"`

	// Iterations is the exact number of update steps per run.
	Iterations int `toml:"num_iterations" yaml:"num_iterations" json:"num_iterations" validate:"gte=0"`
}

// DefaultConfig returns the standard parameter set.
func DefaultConfig() Config {
	return Config{
		Dimension:  DefaultDimension,
		LMin:       DefaultLMin,
		KAttr:      DefaultKAttr,
		KInter:     DefaultKInter,
		KnnK:       DefaultKnnK,
		Iterations: DefaultIterations,
	}
}

// Validate checks every parameter against its range. Failures are
// INVALID_CONFIG errors.
func (c Config) Validate() error {
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"l_min", c.LMin},
		{"k_attr", c.KAttr},
		{"k_inter", c.KInter},
	} {
		if err := gerrors.ValidateFinite(p.name, p.v); err != nil {
			return err
		}
	}
	return validate.Struct(c)
}

// Normalize validates c and adapts it to a graph with n vertices. It
// returns the adapted copy and a notice for every value it changed.
func (c Config) Normalize(n int) (Config, []Notice, error) {
	if err := c.Validate(); err != nil {
		return Config{}, nil, err
	}
	var notices []Notice
	if limit := max(n-1, 0); c.KnnK > limit {
		notices = append(notices, Notice{
			Code:    NoticeKnnClamped,
			Message: fmt.Sprintf("knn_k %d clamped to %d for %d vertices", c.KnnK, limit, n),
		})
		c.KnnK = limit
	}
	return c, notices, nil
}

// String returns the parameters in file-key form.
func (c Config) String() string {
	return fmt.Sprintf("dimension=%d l_min=%g k_attr=%g k_inter=%g knn_k=%d num_iterations=%d",
		c.Dimension, c.LMin, c.KAttr, c.KInter, c.KnnK, c.Iterations)
}
