package cli

import (
	"github.com/spf13/cobra"

	gerrors "github.com/matzehuels/graphem/pkg/errors"
	"github.com/matzehuels/graphem/pkg/graph"
	"github.com/matzehuels/graphem/pkg/pipeline"
)

// runFlags are the flags shared by embed and seeds.
type runFlags struct {
	config   string
	output   string
	init     string
	noCache  bool
	refresh  bool
	progress bool
	strict   bool

	// opts receives flag values; only flags the user set are applied on
	// top of the parameter file.
	opts pipeline.Options
}

func bindRunFlags(cmd *cobra.Command, f *runFlags) {
	def := pipeline.DefaultOptions()
	f.opts = def

	fs := cmd.Flags()
	fs.StringVarP(&f.config, "config", "c", "", "parameter file (.toml, .yaml or .json)")
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: <input>.<command>.json)")
	fs.StringVar(&f.init, "init", "", "embedding JSON whose positions replace the spectral start")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fs.BoolVar(&f.refresh, "refresh", false, "recompute even when a cached result exists")
	fs.BoolVar(&f.progress, "progress", false, "show an interactive progress bar")
	fs.BoolVar(&f.strict, "strict", false, "fail when the run reports degenerate-input notices")

	fs.IntVarP(&f.opts.Dimension, "dim", "d", def.Dimension, "embedding dimension")
	fs.Float64Var(&f.opts.LMin, "l-min", def.LMin, "spring rest length")
	fs.Float64Var(&f.opts.KAttr, "k-attr", def.KAttr, "attraction stiffness")
	fs.Float64Var(&f.opts.KInter, "k-inter", def.KInter, "repulsion strength")
	fs.IntVar(&f.opts.KnnK, "knn-k", def.KnnK, "neighbours per vertex for repulsion")
	fs.IntVarP(&f.opts.Iterations, "iterations", "n", def.Iterations, "layout iterations per run")
	fs.Uint64Var(&f.opts.Seed, "seed", def.Seed, "random seed")
	fs.Float64Var(&f.opts.Momentum, "momentum", def.Momentum, "fraction of the previous step carried over, in [0, 1)")
	fs.IntVar(&f.opts.Workers, "workers", def.Workers, "parallel neighbour-search workers (0: all CPUs)")
}

// flagFields maps flag names to the option field they set.
var flagFields = map[string]func(dst *pipeline.Options, src pipeline.Options){
	"dim":        func(d *pipeline.Options, s pipeline.Options) { d.Dimension = s.Dimension },
	"l-min":      func(d *pipeline.Options, s pipeline.Options) { d.LMin = s.LMin },
	"k-attr":     func(d *pipeline.Options, s pipeline.Options) { d.KAttr = s.KAttr },
	"k-inter":    func(d *pipeline.Options, s pipeline.Options) { d.KInter = s.KInter },
	"knn-k":      func(d *pipeline.Options, s pipeline.Options) { d.KnnK = s.KnnK },
	"iterations": func(d *pipeline.Options, s pipeline.Options) { d.Iterations = s.Iterations },
	"seed":       func(d *pipeline.Options, s pipeline.Options) { d.Seed = s.Seed },
	"momentum":   func(d *pipeline.Options, s pipeline.Options) { d.Momentum = s.Momentum },
	"workers":    func(d *pipeline.Options, s pipeline.Options) { d.Workers = s.Workers },
	"k":          func(d *pipeline.Options, s pipeline.Options) { d.K = s.K },
	"rounds":     func(d *pipeline.Options, s pipeline.Options) { d.Rounds = s.Rounds },
	"ranker":     func(d *pipeline.Options, s pipeline.Options) { d.Ranker = s.Ranker },
}

// resolve builds the run options: defaults, then the parameter file, then
// every flag the user set explicitly.
func (f *runFlags) resolve(cmd *cobra.Command, g *graph.Graph) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	if f.config != "" {
		loaded, err := pipeline.LoadOptions(f.config)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}
	for name, apply := range flagFields {
		if cmd.Flags().Changed(name) {
			apply(&opts, f.opts)
		}
	}
	opts.Refresh = f.refresh

	if f.init != "" {
		emb, err := graph.ReadEmbeddingFile(f.init)
		if err != nil {
			return opts, err
		}
		if emb.N != g.N() || emb.Dimension != opts.Dimension {
			return opts, errShape(emb, g.N(), opts.Dimension)
		}
		opts.Init = emb.Dense()
	}
	return opts, nil
}

func errShape(emb *graph.Embedding, n, dim int) error {
	return gerrors.New(gerrors.ErrCodeInvalidInput,
		"init embedding is %dx%d, graph needs %dx%d", emb.N, emb.Dimension, n, dim)
}
