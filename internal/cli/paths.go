package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okanda/rosviz/pkg/caret"
	"github.com/okanda/rosviz/pkg/errors"
)

// newPathsCmd creates the paths command: list the named paths of a CARET
// architecture file.
func newPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths <file>",
		Short: "List the named paths of a CARET architecture file",
		Long: `List the named paths defined in a CARET architecture YAML. A named path
is an ordered node chain; pass one to --target-path on the other commands to
restrict the graph to that chain.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				if os.IsNotExist(err) {
					return errors.Wrap(errors.ErrCodeFileNotFound, err, "architecture file %s", args[0])
				}
				return err
			}

			paths, err := caret.ParsePaths(data)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				printInfo("No named paths defined")
				return nil
			}

			for _, name := range paths.Names() {
				fmt.Println(StyleTitle.Render(name))
				for _, node := range paths[name] {
					printDetail("%s", node)
				}
			}
			return nil
		},
	}
	return cmd
}
