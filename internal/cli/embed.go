package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	gerrors "github.com/matzehuels/graphem/pkg/errors"
	"github.com/matzehuels/graphem/pkg/graph"
	"github.com/matzehuels/graphem/pkg/pipeline"
)

// embedCommand creates the embed command.
func (c *CLI) embedCommand() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "embed [graph-file]",
		Short: "Compute a force-directed embedding",
		Long: `Compute a force-directed embedding of an undirected graph.

The input is either a JSON document {"n": ..., "edges": [[u, v], ...]} or
a whitespace-separated edge list. The result is written as JSON with one
coordinate row per vertex.`,
		Example: `  graphem embed karate.txt
  graphem embed graph.json -d 3 -n 200 -o layout.json
  graphem embed graph.json -c params.toml --progress`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEmbed(cmd, args[0], &f)
		},
	}
	bindRunFlags(cmd, &f)
	return cmd
}

func (c *CLI) runEmbed(cmd *cobra.Command, input string, f *runFlags) error {
	ctx := cmd.Context()
	g, err := c.readGraph(input)
	if err != nil {
		return err
	}
	opts, err := f.resolve(cmd, g)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := c.execute(ctx, "Embedding", f.progress, func() (*pipeline.Result, error) {
		return runner.Embed(ctx, g, opts)
	})
	if err != nil {
		return err
	}
	if err := c.writeResult(input, f.output, "embed", g, res); err != nil {
		return err
	}
	if f.strict {
		if err := noticesError(res.Embedding); err != nil {
			return err
		}
	}
	printNewline()
	printNextStep("Compare with centrality", fmt.Sprintf("%s compare %s --embedding %s", appName, input, outputPath(input, f.output, "embed")))
	return nil
}

// =============================================================================
// Shared Helpers
// =============================================================================

// readGraph loads a graph file and logs its size.
func (c *CLI) readGraph(path string) (*graph.Graph, error) {
	if err := gerrors.ValidatePath(path); err != nil {
		return nil, err
	}
	g, err := graph.ReadGraphFile(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded graph", "path", path, "n", g.N(), "m", g.M())
	return g, nil
}

// execute runs fn under a spinner, or under the progress view when
// interactive is set.
func (c *CLI) execute(ctx context.Context, title string, interactive bool, fn func() (*pipeline.Result, error)) (*pipeline.Result, error) {
	var res *pipeline.Result
	run := func() error {
		var err error
		res, err = fn()
		return err
	}

	if interactive {
		if err := runWithProgress(ctx, title, run); err != nil {
			return nil, err
		}
		return res, nil
	}

	spinner := newSpinnerWithContext(ctx, title+"...")
	spinner.Start()
	err := run()
	spinner.Stop()
	return res, err
}

// writeResult writes the embedding of res and prints a summary.
func (c *CLI) writeResult(input, output, command string, g *graph.Graph, res *pipeline.Result) error {
	output = outputPath(input, output, command)
	if err := gerrors.ValidatePath(output); err != nil {
		return err
	}
	if err := graph.WriteEmbeddingFile(res.Embedding, output); err != nil {
		return err
	}

	printSuccess("Wrote %d-dimensional embedding", res.Embedding.Dimension)
	printFile(output)
	printStats(g.N(), g.M(), res.CacheHit)
	for _, n := range res.Embedding.Notices {
		printWarning("%s: %s", n.Code, n.Message)
	}
	c.Logger.Debug("run complete", "run", res.Embedding.RunID, "iterations", res.Embedding.Iterations, "duration", res.Duration)
	return nil
}

// noticesError reports the notices of emb as a DEGENERATE_INPUT error, or
// nil when the run was clean. The embedding has already been written.
func noticesError(emb *graph.Embedding) error {
	if len(emb.Notices) == 0 {
		return nil
	}
	codes := make([]string, len(emb.Notices))
	for i, n := range emb.Notices {
		codes[i] = n.Code
	}
	return gerrors.New(gerrors.ErrCodeDegenerateInput, "run reported %d notice(s): %s", len(codes), strings.Join(codes, ", "))
}

// outputPath returns output, or "<base>.<command>.json" derived from the
// input path when output is empty.
func outputPath(input, output, command string) string {
	if output != "" {
		return output
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "." + command + ".json"
}
