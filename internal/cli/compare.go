package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphem/pkg/centrality"
	gerrors "github.com/matzehuels/graphem/pkg/errors"
	"github.com/matzehuels/graphem/pkg/graph"
	"github.com/matzehuels/graphem/pkg/pipeline"
)

type compareFlags struct {
	runFlags
	embedding string
	center    string
}

// compareCommand creates the compare command.
func (c *CLI) compareCommand() *cobra.Command {
	var f compareFlags

	cmd := &cobra.Command{
		Use:   "compare [graph-file]",
		Short: "Correlate embedding radii with centrality measures",
		Long: `Correlate each vertex's distance from the center of the embedding with
classical centrality measures using Spearman's rank correlation.

A strongly negative rho means central vertices sit near the middle of the
layout. The embedding is read from --embedding or computed first.`,
		Example: `  graphem compare karate.txt
  graphem compare graph.json --embedding graph.embed.json --center origin
  graphem compare graph.json -o report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompare(cmd, args[0], &f)
		},
	}
	bindRunFlags(cmd, &f.runFlags)

	fs := cmd.Flags()
	fs.StringVar(&f.embedding, "embedding", "", "existing embedding JSON to analyze")
	fs.StringVar(&f.center, "center", string(centrality.FromCentroid), "radius reference: centroid or origin")
	cmd.Flags().Lookup("output").Usage = "write the report as JSON to this file"
	return cmd
}

func (c *CLI) runCompare(cmd *cobra.Command, input string, f *compareFlags) error {
	ctx := cmd.Context()
	from := centrality.Center(f.center)
	if from != centrality.FromCentroid && from != centrality.FromOrigin {
		return gerrors.New(gerrors.ErrCodeInvalidInput, "center must be centroid or origin, got %q", f.center)
	}

	g, err := c.readGraph(input)
	if err != nil {
		return err
	}

	var emb *graph.Embedding
	if f.embedding != "" {
		emb, err = graph.ReadEmbeddingFile(f.embedding)
		if err != nil {
			return err
		}
	} else {
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
		emb = res.Embedding
	}

	spinner := newSpinnerWithContext(ctx, "Computing centrality...")
	spinner.Start()
	prog := newProgress(c.Logger)
	rows, err := centrality.Report(g, emb.Dense(), from)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("computed centrality")

	if f.output != "" {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(f.output, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.output, err)
		}
		printSuccess("Wrote correlation report")
		printFile(f.output)
		return nil
	}

	table := make([][]string, len(rows))
	for i, r := range rows {
		table[i] = []string{r.Measure, fmt.Sprintf("%+.3f", r.Rho), fmt.Sprintf("%.2g", r.P)}
	}
	printInfo("Spearman correlation of radius (from %s) with centrality", from)
	fmt.Fprintln(stdout, renderTable([]string{"Measure", "rho", "p"}, table))
	return nil
}
