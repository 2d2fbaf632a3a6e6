package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphem/pkg/graph"
	"github.com/matzehuels/graphem/pkg/influence"
	"github.com/matzehuels/graphem/pkg/pipeline"
)

// seedsFlags extends the shared run flags with spread evaluation.
type seedsFlags struct {
	runFlags
	evaluate  float64
	trials    int
	baselines bool
}

// seedsCommand creates the seeds command.
func (c *CLI) seedsCommand() *cobra.Command {
	var f seedsFlags

	cmd := &cobra.Command{
		Use:   "seeds [graph-file]",
		Short: "Select influence seeds from the embedding",
		Long: `Select k seed vertices by repeatedly laying out the graph and taking the
vertex nearest the center that is not yet chosen.

With --evaluate the seeds' independent-cascade spread is estimated by
Monte Carlo simulation. --baselines adds random and greedy seed sets for
comparison; greedy is slow on large graphs.`,
		Example: `  graphem seeds karate.txt -k 5
  graphem seeds graph.json -k 10 --rounds 20 --ranker origin
  graphem seeds graph.json -k 5 --evaluate 0.1 --baselines`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSeeds(cmd, args[0], &f)
		},
	}
	bindRunFlags(cmd, &f.runFlags)

	fs := cmd.Flags()
	fs.IntVarP(&f.opts.K, "k", "k", f.opts.K, "number of seeds")
	fs.IntVar(&f.opts.Rounds, "rounds", f.opts.Rounds, "layout rounds (0: one per seed)")
	fs.StringVar(&f.opts.Ranker, "ranker", f.opts.Ranker, "seed ranker: centroid or origin")
	fs.Float64Var(&f.evaluate, "evaluate", 0, "estimate spread with this activation probability")
	fs.IntVar(&f.trials, "trials", influence.DefaultTrials, "cascade simulations per estimate")
	fs.BoolVar(&f.baselines, "baselines", false, "compare against random and greedy seeds (needs --evaluate)")
	return cmd
}

func (c *CLI) runSeeds(cmd *cobra.Command, input string, f *seedsFlags) error {
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

	res, err := c.execute(ctx, "Selecting seeds", f.progress, func() (*pipeline.Result, error) {
		return runner.SelectSeeds(ctx, g, opts)
	})
	if err != nil {
		return err
	}
	if err := c.writeResult(input, f.output, "seeds", g, res); err != nil {
		return err
	}
	printKeyValue("seeds", formatInts(res.Embedding.Seeds))
	if f.strict {
		if err := noticesError(res.Embedding); err != nil {
			return err
		}
	}

	if f.evaluate <= 0 {
		return nil
	}
	eo := influence.Options{P: f.evaluate, Trials: f.trials, Seed: opts.Seed, Workers: opts.Workers}
	return c.evaluateSeeds(g, res.Embedding.Seeds, eo, f.baselines)
}

// evaluateSeeds prints the estimated spread of the embedding seeds and,
// optionally, of the baseline selectors.
func (c *CLI) evaluateSeeds(g *graph.Graph, seeds []int, opts influence.Options, baselines bool) error {
	type entry struct {
		name  string
		seeds []int
	}
	entries := []entry{{"embedding", seeds}}

	if baselines {
		random, err := influence.Random(g, len(seeds), opts.Seed)
		if err != nil {
			return err
		}
		entries = append(entries, entry{"random", random})

		spinner := newSpinner("Running greedy baseline...")
		spinner.Start()
		greedy, err := influence.Greedy(g, len(seeds), opts)
		spinner.Stop()
		if err != nil {
			return err
		}
		entries = append(entries, entry{"greedy", greedy})
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		s, err := influence.Estimate(g, e.seeds, opts)
		if err != nil {
			return err
		}
		c.Logger.Debug("estimated spread", "selector", e.name, "mean", s.Mean, "stddev", s.StdDev)
		rows = append(rows, []string{
			e.name,
			fmt.Sprintf("%.2f", s.Mean),
			fmt.Sprintf("%.2f", s.StdDev),
			formatInts(e.seeds),
		})
	}

	printNewline()
	printInfo("Independent cascade spread (p=%g, %d trials)", opts.P, opts.Trials)
	fmt.Fprintln(stdout, renderTable([]string{"Selector", "Mean", "StdDev", "Seeds"}, rows))
	return nil
}

// renderTable draws rows in the CLI's table style.
func renderTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return cellStyle.Foreground(colorCyan)
			}
			return cellStyle
		}).
		Render()
}

func formatInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, " ")
}
