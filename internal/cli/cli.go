// Package cli implements the graphem command-line interface.
//
// # Commands
//
//   - embed: lay out a graph and write its coordinates as JSON
//   - seeds: select influence-maximization seeds from the embedding
//   - generate: write a synthetic graph (path, star, grid, er, ba, ...)
//   - compare: correlate embedding radii with classical centrality
//   - cache: inspect or clear the result cache
//   - completion: shell completion scripts
//
// All commands accept --verbose (-v) for debug logging and --metrics-file
// to dump Prometheus metrics when the command exits.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphem/pkg/buildinfo"
	"github.com/matzehuels/graphem/pkg/cache"
	gerrors "github.com/matzehuels/graphem/pkg/errors"
	"github.com/matzehuels/graphem/pkg/metrics"
	"github.com/matzehuels/graphem/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "graphem"

// envRedisURL selects a shared Redis cache instead of the file cache.
const envRedisURL = "GRAPHEM_REDIS_URL"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	verbose     bool
	metricsFile string
	metrics     *metrics.Registry
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "graphem embeds graphs with a force-directed layout and picks influential seeds",
		Long: `graphem computes force-directed embeddings of undirected graphs and uses
their geometry to select seed vertices for influence maximization.

Vertices close to the center of the embedding tend to be central in the
graph; seeds are chosen greedily from the center outward.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.preRun,
	}
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit, including failed runs")

	root.AddCommand(c.embedCommand())
	root.AddCommand(c.seedsCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Execute runs the root command with args (os.Args when nil) and then
// writes the metrics file, whether or not the command succeeded.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	root := c.RootCommand()
	if args != nil {
		root.SetArgs(args)
	}
	err := root.ExecuteContext(ctx)
	if ferr := c.flushMetrics(); ferr != nil {
		return errors.Join(err, ferr)
	}
	return err
}

// Process exit codes returned by [ExitCode].
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitConfig      = 2
	ExitInterrupted = 130
)

// ExitCode maps a command error to a process exit code. Errors in the
// input or parameters, raised before any computation, exit with
// ExitConfig so scripts can tell them from runtime failures.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case gerrors.IsConfig(err):
		return ExitConfig
	default:
		return ExitFailure
	}
}

func (c *CLI) preRun(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
	}
	if c.metricsFile != "" {
		c.metrics = metrics.NewRegistry()
		c.metrics.Install()
	}
	return nil
}

func (c *CLI) flushMetrics() error {
	if c.metrics == nil {
		return nil
	}
	if err := c.metrics.WriteTextfile(c.metricsFile); err != nil {
		return fmt.Errorf("write metrics %s: %w", c.metricsFile, err)
	}
	c.Logger.Debug("wrote metrics", "path", c.metricsFile)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Keys are scoped by
// build so a new engine version never reads an old result.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(nil, buildinfo.CacheScope())
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

// newCache returns the Redis cache when GRAPHEM_REDIS_URL is set, else the
// file cache. An unreachable backend degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if url := os.Getenv(envRedisURL); url != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: url})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/graphem/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
