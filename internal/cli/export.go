package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/okanda/rosviz/pkg/errors"
	"github.com/okanda/rosviz/pkg/export"
)

// newExportCmd creates the export command: render the laid-out graph as DOT
// or SVG.
func newExportCmd() *cobra.Command {
	var opts sourceOpts
	var (
		output      string
		format      string
		noClusters  bool
		topicLabels bool
	)

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Render the node graph as DOT or SVG",
		Long: `Run the pipeline and render the grouped graph. Each group becomes a
labeled cluster; node colors follow the group colors from the settings file.

Examples:
  rosviz export architecture.yaml -o graph.svg
  rosviz export architecture.yaml -T dot --topic-labels
  rosviz export rosgraph.dot --no-clusters -o flat.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			switch format {
			case "dot", "svg":
			default:
				return errors.New(errors.ErrCodeInvalidFormat,
					"invalid export format: %q (must be dot or svg)", format)
			}

			popts, err := opts.pipelineOptions(ctx, args[0])
			if err != nil {
				return err
			}
			runner := opts.newRunner(ctx)
			defer runner.Close()

			result, err := runner.Execute(ctx, popts)
			if err != nil {
				return err
			}

			dot := export.ToDOT(result.Graph, export.Options{
				Clusters:    !noClusters,
				TopicLabels: topicLabels,
			})

			var data []byte
			if format == "svg" {
				spin := newSpinnerWithContext(ctx, "Rendering SVG...")
				spin.Start()
				data, err = export.RenderSVG(dot)
				if err != nil {
					spin.StopWithError("SVG rendering failed")
					return err
				}
				if spin.Cancelled() {
					spin.Stop()
					return ctx.Err()
				}
				spin.Stop()
			} else {
				data = []byte(dot)
			}

			out, err := openOutput(output)
			if err != nil {
				return err
			}
			defer out.Close()
			if _, err := out.Write(data); err != nil {
				return err
			}

			if output != "" {
				printSuccess("Exported %s", strings.ToUpper(format))
				printFile(output)
				printStats(result.Stats.NodeCount, result.Stats.EdgeCount,
					result.CacheInfo.LoadHit && result.CacheInfo.LayoutHit)
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.align, "align", false, "recenter the final layout around the origin")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&format, "to", "T", "svg", "export format: dot or svg")
	cmd.Flags().BoolVar(&noClusters, "no-clusters", false, "do not wrap groups in cluster subgraphs")
	cmd.Flags().BoolVar(&topicLabels, "topic-labels", false, "label edges with topic names")
	return cmd
}
