package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okanda/rosviz/pkg/graphio"
)

// newLayoutCmd creates the layout command: run the full pipeline and write
// the laid-out graph as JSON.
func newLayoutCmd() *cobra.Command {
	var opts sourceOpts
	var output string
	var positionsOnly bool

	cmd := &cobra.Command{
		Use:   "layout <file>",
		Short: "Import a node graph and compute its 2D layout",
		Long: `Run the full pipeline: import, filter, group assignment, and per-group
Graphviz placement. The result is the graph JSON with positions and colors
filled in.

Examples:
  rosviz layout architecture.yaml -o graph.json
  rosviz layout architecture.yaml --align          # recenter around the origin
  rosviz layout rosgraph.dot --positions-only      # write just the position map`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			popts, err := opts.pipelineOptions(ctx, args[0])
			if err != nil {
				return err
			}
			runner := opts.newRunner(ctx)
			defer runner.Close()

			prog := newProgress(loggerFromContext(ctx))
			result, err := runner.Execute(ctx, popts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Laid out %d nodes in %d groups",
				result.Stats.NodeCount, len(result.Settings.Groups)))

			out, err := openOutput(output)
			if err != nil {
				return err
			}
			defer out.Close()

			if positionsOnly {
				err = graphio.WriteLayout(graphio.LayoutFromGraph(result.Graph), out)
			} else {
				err = graphio.WriteGraph(result.Graph, out)
			}
			if err != nil {
				return err
			}

			if output != "" {
				printSuccess("Wrote layout")
				printFile(output)
			}
			printStats(result.Stats.NodeCount, result.Stats.EdgeCount,
				result.CacheInfo.LoadHit && result.CacheInfo.LayoutHit)
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.align, "align", false, "recenter the final layout around the origin")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&positionsOnly, "positions-only", false, "write only the node position map")
	return cmd
}
