package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/matzehuels/graphem/pkg/errors"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadOptions(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"toml", "params.toml", "dimension = 2\nl_min = 5.0\nknn_k = 4\nseed = 7\nk = 3\nranker = \"origin\"\n"},
		{"yaml", "params.yaml", "dimension: 2\nl_min: 5\nknn_k: 4\nseed: 7\nk: 3\nranker: origin\n"},
		{"json", "params.json", `{"dimension": 2, "l_min": 5, "knn_k": 4, "seed": 7, "k": 3, "ranker": "origin"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := LoadOptions(writeFile(t, tt.file, tt.body))
			require.NoError(t, err)

			assert.Equal(t, 2, opts.Dimension)
			assert.Equal(t, 5.0, opts.LMin)
			assert.Equal(t, 4, opts.KnnK)
			assert.Equal(t, uint64(7), opts.Seed)
			assert.Equal(t, 3, opts.K)
			assert.Equal(t, "origin", opts.Ranker)
			// Keys absent from the file keep their defaults.
			assert.Equal(t, 0.5, opts.KAttr)
			assert.Equal(t, 40, opts.Iterations)
			require.NoError(t, opts.Validate())
		})
	}
}

func TestLoadOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
		code gerrors.Code
	}{
		{"unknown toml key", "p.toml", "dimensions = 2\n", gerrors.ErrCodeInvalidConfig},
		{"unknown yaml key", "p.yml", "lmin: 3\n", gerrors.ErrCodeInvalidConfig},
		{"unknown json key", "p.json", `{"kattr": 1}`, gerrors.ErrCodeInvalidConfig},
		{"bad toml", "p.toml", "dimension = \n", gerrors.ErrCodeInvalidConfig},
		{"extension", "p.ini", "dimension=2", gerrors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadOptions(writeFile(t, tt.file, tt.body))
			require.Error(t, err)
			assert.True(t, gerrors.Is(err, tt.code), "got %v", err)
		})
	}

	_, err := LoadOptions(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, gerrors.Is(err, gerrors.ErrCodeFileNotFound))
}

func TestLoadOptionsEmptyYAML(t *testing.T) {
	opts, err := LoadOptions(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions().Config, opts.Config)
}
