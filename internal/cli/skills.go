package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/nomadpath/internal/ledger"
	"github.com/roach88/nomadpath/internal/model"
)

// NewSkillsCommand creates the skills command.
func NewSkillsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "skills",
		Short: "List skills, applying weekly decay",
		Long: `List the character's skills.

Reading the skill list charges decay for every full idle week since a skill
was last used and saves the result.

Example:
  nomadpath skills
  nomadpath skills --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCharacter(cmd.Context(), rootOpts, func(s *session, c *model.Character) error {
				skills, err := s.engine.AllSkills(cmd.Context(), c)
				if err != nil {
					return WrapExitError(ExitFailure, "failed to read skills", err)
				}
				views := skillViews(skills)
				return newFormatter(rootOpts, cmd).Emit(views, func(w io.Writer) {
					if len(views) == 0 {
						fmt.Fprintln(w, "No skills yet.")
						return
					}
					for _, v := range views {
						printSkill(w, v)
					}
				})
			})
		},
	}
}

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	XP          int
	Description string
	Attributes  []string
	Emoji       string
	Parent      string
	Attribute   string
}

// LogResult is the outcome of logging one skill.
type LogResult struct {
	Skill     SkillView `json:"skill"`
	Character int       `json:"character_level"`
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log <skill>",
		Short: "Add XP to a skill",
		Long: `Add XP to a skill, creating it when new.

A level-up pays attribute XP and recomputes the character level. Skills
named in the rules table always feed the table's attributes.

Example:
  nomadpath log Running --xp 5
  nomadpath log "Chess" --attributes intellect,wisdom --emoji ♟️
  nomadpath log "Openings" --parent Chess --attribute intellect`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.XP, "xp", 1, "XP to add")
	cmd.Flags().StringVar(&opts.Description, "description", "", "skill description")
	cmd.Flags().StringSliceVar(&opts.Attributes, "attributes", nil, "attributes the skill feeds (new skills only)")
	cmd.Flags().StringVar(&opts.Emoji, "emoji", "", "skill emoji")
	cmd.Flags().StringVar(&opts.Parent, "parent", "", "parent skill name")
	cmd.Flags().StringVar(&opts.Attribute, "attribute", "", "attribute of a child skill")

	return cmd
}

func runLog(opts *LogOptions, name string, cmd *cobra.Command) error {
	in := ledger.Input{
		Name:        name,
		XP:          model.IntPtr(opts.XP),
		Description: opts.Description,
		Attributes:  opts.Attributes,
		Emoji:       opts.Emoji,
		Parent:      opts.Parent,
		Attribute:   opts.Attribute,
	}

	return withCharacter(cmd.Context(), opts.RootOptions, func(s *session, c *model.Character) error {
		skill, err := s.engine.AddOrUpdateSkill(cmd.Context(), c, in)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to log skill", err)
		}
		if skill == nil {
			return NewExitError(ExitCommandError, fmt.Sprintf("skill name %q is not usable", name))
		}

		result := LogResult{Skill: skillView(skill), Character: c.Level}
		return newFormatter(opts.RootOptions, cmd).Emit(result, func(w io.Writer) {
			printSkill(w, result.Skill)
			fmt.Fprintf(w, "Character level %d\n", result.Character)
		})
	})
}

// NewClearSkillsCommand creates the clear-skills command.
func NewClearSkillsCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear-skills",
		Short: "Remove every skill",
		Long: `Remove every skill from the character.

Attributes and the skill graph keep their values until the next
recompute --full.

Example:
  nomadpath clear-skills --yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewExitError(ExitCommandError, "refusing to clear skills without --yes")
			}
			return withCharacter(cmd.Context(), rootOpts, func(s *session, c *model.Character) error {
				removed := len(c.Skills)
				if err := s.engine.ClearSkills(cmd.Context(), c); err != nil {
					return WrapExitError(ExitFailure, "failed to clear skills", err)
				}
				data := map[string]int{"removed": removed}
				return newFormatter(rootOpts, cmd).Emit(data, func(w io.Writer) {
					fmt.Fprintf(w, "Removed %d skill(s)\n", removed)
				})
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm removal")

	return cmd
}

// NewRecomputeCommand creates the recompute command.
func NewRecomputeCommand(rootOpts *RootOptions) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute attribute and global levels",
		Long: `Recompute attribute levels and the global level from attribute XP.

With --full, every skill first goes through the attribute bridge and the
skill graph is rebuilt.

Example:
  nomadpath recompute
  nomadpath recompute --full`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCharacter(cmd.Context(), rootOpts, func(s *session, c *model.Character) error {
				var err error
				if full {
					_, err = s.engine.ApplyProgression(cmd.Context(), c, nil)
				} else {
					_, err = s.engine.ApplyProgressionRules(cmd.Context(), c)
				}
				if err != nil {
					return WrapExitError(ExitFailure, "failed to recompute", err)
				}
				view := characterView(c)
				return newFormatter(rootOpts, cmd).Emit(view, func(w io.Writer) {
					printCharacter(w, view)
				})
			})
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "run the attribute bridge over every skill first")

	return cmd
}
