package cli

import (
	"context"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/okanda/rosviz/pkg/buildinfo"
	"github.com/okanda/rosviz/pkg/cache"
	"github.com/okanda/rosviz/pkg/pipeline"
	"github.com/okanda/rosviz/pkg/settings"
)

// appName is the application name used for directories and display.
const appName = "rosviz"

// Execute runs the rosviz CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands, configures
// logging based on the --verbose flag, and executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the CLI with an external context, so callers can wire
// signal handling into command cancellation.
func ExecuteContext(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// newRootCmd builds the root command with all subcommands registered.
func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "rosviz visualizes ROS 2 node graphs",
		Long:         `rosviz imports ROS 2 node graphs from CARET architecture files or rqt_graph DOT exports, groups nodes into logical containers, and computes deterministic 2D layouts for visualization.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newLoadCmd())
	root.AddCommand(newLayoutCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newPathsCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newSnapshotCmd())
	root.AddCommand(newBrowseCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

// =============================================================================
// Shared Flags & Factories
// =============================================================================

// sourceOpts holds the flags shared by every command that imports a graph.
type sourceOpts struct {
	format     string // "caret" or "dot"; empty means detect from extension
	targetPath string // restrict the graph to one CARET named path
	settings   string // explicit settings file (otherwise discovered)
	noFilter   bool   // skip node/topic filtering
	displace   bool   // shift every group offset by (-20,-20)
	refresh    bool   // bypass the cache
	noCache    bool   // disable caching entirely
	align      bool   // recenter the layout around the origin
}

// register adds the shared flags to cmd.
func (o *sourceOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "source format: caret or dot (default: detect from extension)")
	cmd.Flags().StringVar(&o.targetPath, "target-path", "", "restrict the graph to one CARET named path")
	cmd.Flags().StringVar(&o.settings, "settings", "", "settings file (default: rosviz.toml next to the source)")
	cmd.Flags().BoolVar(&o.noFilter, "no-filter", false, "skip node and topic filters")
	cmd.Flags().BoolVar(&o.displace, "displace", false, "shift every group offset by (-20,-20) to expose new nodes")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "bypass the cache and re-import")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
}

// pipelineOptions builds pipeline options for the given source file.
func (o *sourceOpts) pipelineOptions(ctx context.Context, source string) (pipeline.Options, error) {
	opts := pipeline.Options{
		Source:     source,
		Format:     o.format,
		TargetPath: o.targetPath,
		NoFilter:   o.noFilter,
		Displace:   o.displace,
		Refresh:    o.refresh,
		Align:      o.align,
		Logger:     loggerFromContext(ctx),
	}
	if o.settings != "" {
		s, err := settings.Load(o.settings)
		if err != nil {
			return opts, err
		}
		opts.Settings = s
	}
	return opts, nil
}

// newRunner creates a pipeline runner backed by the user cache directory.
func (o *sourceOpts) newRunner(ctx context.Context) *pipeline.Runner {
	return pipeline.NewRunner(newCache(o.noCache), nil, loggerFromContext(ctx))
}

func newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	c, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return c
}

// cacheDir returns the cache directory using XDG standard (~/.cache/rosviz/).
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
