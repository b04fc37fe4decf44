package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/nomadpath/internal/model"
)

// AwardResult is the attribute after an award.
type AwardResult struct {
	Attribute AttributeView `json:"attribute"`
	Character int           `json:"character_level"`
}

// NewAwardCommand creates the award command.
func NewAwardCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "award <attribute> <xp>",
		Short: "Award XP directly to an attribute",
		Long: `Award XP to one attribute without going through a skill, then
recompute attribute and global levels.

The attribute may be given in English or Russian.

Example:
  nomadpath award strength 10
  nomadpath award сила 5`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, ok := model.ParseAttribute(args[0])
			if !ok {
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown attribute %q", args[0]))
			}
			xp, err := strconv.Atoi(args[1])
			if err != nil || xp <= 0 {
				return NewExitError(ExitCommandError, fmt.Sprintf("xp must be a positive integer, got %q", args[1]))
			}

			return withCharacter(cmd.Context(), rootOpts, func(s *session, c *model.Character) error {
				if err := s.engine.AwardAttributeXP(cmd.Context(), c, string(name), xp); err != nil {
					return WrapExitError(ExitFailure, "failed to award attribute", err)
				}
				a := c.Attribute(name)
				result := AwardResult{
					Attribute: AttributeView{Name: string(name), XP: a.XP, Level: a.Level},
					Character: c.Level,
				}
				return newFormatter(rootOpts, cmd).Emit(result, func(w io.Writer) {
					fmt.Fprintf(w, "%s: lvl %d, xp %d\n", name, a.Level, a.XP)
					fmt.Fprintf(w, "Character level %d\n", c.Level)
				})
			})
		},
	}
}
