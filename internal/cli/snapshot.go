package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okanda/rosviz/pkg/graphio"
	"github.com/okanda/rosviz/pkg/store"
)

// newSnapshotCmd creates the snapshot command group for saving and browsing
// stored graph snapshots in MongoDB.
func newSnapshotCmd() *cobra.Command {
	var mongoURI string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save and browse stored graph snapshots",
		Long: `Snapshots are named, laid-out graphs stored in MongoDB, so the node graph
of a system can be compared across releases.`,
	}
	cmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", "mongodb://localhost:27017", "MongoDB URI")

	cmd.AddCommand(newSnapshotSaveCmd(&mongoURI))
	cmd.AddCommand(newSnapshotListCmd(&mongoURI))
	cmd.AddCommand(newSnapshotShowCmd(&mongoURI))
	cmd.AddCommand(newSnapshotDeleteCmd(&mongoURI))
	return cmd
}

// openStore connects to the snapshot store.
func openStore(ctx context.Context, mongoURI string) (store.Store, error) {
	return store.NewMongoStore(ctx, store.MongoConfig{URI: mongoURI})
}

func newSnapshotSaveCmd(mongoURI *string) *cobra.Command {
	var opts sourceOpts
	var name string

	cmd := &cobra.Command{
		Use:   "save <file>",
		Short: "Run the pipeline and store the result as a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

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

			snap, err := store.NewSnapshot(name, args[0], result.Graph)
			if err != nil {
				return err
			}

			st, err := openStore(ctx, *mongoURI)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			if err := st.Save(ctx, snap); err != nil {
				return err
			}
			printSuccess("Saved snapshot %q", name)
			printDetail("id: %s", snap.ID)
			printStats(snap.NodeCount, snap.EdgeCount, false)
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.align, "align", false, "recenter the final layout around the origin")
	cmd.Flags().StringVarP(&name, "name", "n", "", "snapshot name (required)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newSnapshotListCmd(mongoURI *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, *mongoURI)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			infos, err := st.List(ctx)
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				printInfo("No snapshots stored")
				return nil
			}
			for _, info := range infos {
				fmt.Printf("%s  %s  %s\n",
					StyleDim.Render(info.TakenAt.Format("2006-01-02 15:04")),
					StyleValue.Render(fmt.Sprintf("%-24s", info.Name)),
					StyleDim.Render(fmt.Sprintf("%d nodes · %d edges · %s",
						info.NodeCount, info.EdgeCount, info.ID)))
			}
			return nil
		},
	}
}

func newSnapshotShowCmd(mongoURI *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Write a stored snapshot's graph as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, *mongoURI)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			snap, err := st.Get(ctx, args[0])
			if err != nil {
				return err
			}
			g, err := graphio.ToGraph(snap.Graph)
			if err != nil {
				return err
			}

			out, err := openOutput(output)
			if err != nil {
				return err
			}
			defer out.Close()
			return graphio.WriteGraph(g, out)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func newSnapshotDeleteCmd(mongoURI *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, *mongoURI)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			if err := st.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted snapshot %s", args[0])
			return nil
		},
	}
}
