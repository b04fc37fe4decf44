package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/nomadpath/internal/model"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Avatar      string
	Description string
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init <name>",
		Short: "Create a character",
		Long: `Create a new character with every attribute at zero.

The new character becomes the most recently saved one, so later commands
pick it up without --character.

Example:
  nomadpath init "Aru"
  nomadpath init "Aru" --description "Walks a lot"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Avatar, "avatar", "", "avatar image reference")
	cmd.Flags().StringVar(&opts.Description, "description", "", "character description")

	return cmd
}

func runInit(opts *InitOptions, name string, cmd *cobra.Command) error {
	if strings.TrimSpace(name) == "" {
		return NewExitError(ExitCommandError, "character name must not be blank")
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	c, err := s.engine.NewCharacter(ctx, name, opts.Avatar, opts.Description)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to create character", err)
	}

	view := characterView(c)
	return newFormatter(opts.RootOptions, cmd).Emit(view, func(w io.Writer) {
		fmt.Fprintf(w, "Created %s (%s)\n", c.Name, c.ID)
	})
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the character sheet",
		Long: `Show the character's global level, attributes and counts.

Example:
  nomadpath show
  nomadpath show --character 0193d6c2-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCharacter(cmd.Context(), rootOpts, func(_ *session, c *model.Character) error {
				view := characterView(c)
				return newFormatter(rootOpts, cmd).Emit(view, func(w io.Writer) {
					printCharacter(w, view)
				})
			})
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored characters",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			list, err := s.store.ListCharacters(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list characters", err)
			}
			return newFormatter(rootOpts, cmd).Emit(list, func(w io.Writer) {
				if len(list) == 0 {
					fmt.Fprintln(w, "No characters.")
					return
				}
				for _, c := range list {
					fmt.Fprintf(w, "%s  %-20s lvl %-3d rev %d\n", c.ID, c.Name, c.Level, c.Revision)
				}
			})
		},
	}
}
