package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/nomadpath/internal/model"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the progression event log",
		Long: `Show the character's progression events in the order they happened.

Example:
  nomadpath history
  nomadpath history --limit 10 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return NewExitError(ExitCommandError, "limit must not be negative")
			}
			return withCharacter(cmd.Context(), rootOpts, func(s *session, c *model.Character) error {
				events, err := s.store.ReadEvents(cmd.Context(), c.ID)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to read history", err)
				}
				if limit > 0 && len(events) > limit {
					events = events[len(events)-limit:]
				}
				return newFormatter(rootOpts, cmd).Emit(events, func(w io.Writer) {
					if len(events) == 0 {
						fmt.Fprintln(w, "No history.")
						return
					}
					for _, ev := range events {
						printEvent(w, ev)
					}
				})
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "show only the last N events (0 = all)")

	return cmd
}

func printEvent(w io.Writer, ev model.Event) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s %-16s", ev.Seq, ev.At.UTC().Format(time.DateTime), ev.Kind)
	if ev.Skill != "" {
		fmt.Fprintf(&b, " %s", ev.Skill)
	}
	if ev.XP != 0 {
		fmt.Fprintf(&b, " xp=%d", ev.XP)
	}
	if ev.Granted != 0 {
		fmt.Fprintf(&b, " granted=%d", ev.Granted)
	}
	if len(ev.LevelUps) > 0 {
		names := make([]string, 0, len(ev.LevelUps))
		for name := range ev.LevelUps {
			names = append(names, string(name))
		}
		sort.Strings(names)
		ups := make([]string, len(names))
		for i, name := range names {
			ups[i] = fmt.Sprintf("%s+%d", name, ev.LevelUps[model.AttributeName(name)])
		}
		fmt.Fprintf(&b, " up=%s", strings.Join(ups, ","))
	}
	fmt.Fprintf(&b, " level=%d", ev.Level)
	fmt.Fprintln(w, b.String())
}
