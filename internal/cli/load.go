package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okanda/rosviz/pkg/graphio"
	"github.com/okanda/rosviz/pkg/pipeline"
)

// newLoadCmd creates the load command: import a graph source and write the
// filtered graph as JSON, without computing a layout.
func newLoadCmd() *cobra.Command {
	var opts sourceOpts
	var output string

	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Import a node graph and write it as JSON",
		Long: `Import a ROS node graph from a CARET architecture YAML or rqt_graph DOT
export, apply the configured node/topic filters, and write the result as JSON.

Examples:
  rosviz load architecture.yaml                  # CARET architecture
  rosviz load rosgraph.dot -o graph.json         # rqt_graph export to a file
  rosviz load architecture.yaml --no-filter      # keep rviz/rqt and ignored topics
  rosviz load architecture.yaml --target-path target_path_0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			popts, err := opts.pipelineOptions(ctx, args[0])
			if err != nil {
				return err
			}
			if err := popts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			runner := opts.newRunner(ctx)
			defer runner.Close()

			prog := newProgress(logger)
			g, _, err := runner.Load(ctx, popts)
			if err != nil {
				return err
			}
			stats, err := pipeline.ApplyFilters(g, popts.Settings.App)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Imported %d nodes with %d edges", g.NodeCount(), g.EdgeCount()))
			if stats.DroppedNodes > 0 || stats.DroppedTopics > 0 {
				logger.Debugf("Filters dropped %d nodes and %d topic edges", stats.DroppedNodes, stats.DroppedTopics)
			}

			out, err := openOutput(output)
			if err != nil {
				return err
			}
			defer out.Close()

			if err := graphio.WriteGraph(g, out); err != nil {
				return err
			}
			if output != "" {
				printSuccess("Wrote graph")
				printFile(output)
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
