package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/nomadpath/internal/model"
)

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the skill graph",
		Long: `Print the skill graph: one node per attribute and per skill, and one
link from each skill to every attribute it feeds.

JSON output is the stored {nodes, links} document, layout included.

Example:
  nomadpath graph
  nomadpath graph --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCharacter(cmd.Context(), rootOpts, func(_ *session, c *model.Character) error {
				g := c.SkillGraph
				return newFormatter(rootOpts, cmd).Emit(g, func(w io.Writer) {
					fmt.Fprintf(w, "%d nodes, %d links\n", len(g.Nodes), len(g.Links))
					for _, l := range g.Links {
						fmt.Fprintf(w, "  %s -> %s (%g)\n", l.Source, l.Target, l.Value)
					}
				})
			})
		},
	}
}
