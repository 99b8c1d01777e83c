package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tanteo/internal/history"
	"github.com/verte-zerg/tanteo/internal/match"
	"github.com/verte-zerg/tanteo/internal/stats"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "add <team 1|2> <points>",
		Short:   "Add points to a team",
		Example: "  tanteo add 1 3\n  tanteo add 2 -- -1",
		Args:    cobra.ExactArgs(2),
		RunE:    runAddCmd,
	}
}

func runAddCmd(cmd *cobra.Command, args []string) error {
	team, err := parseTeam(args[0])
	if err != nil {
		return err
	}
	points, err := strconv.Atoi(strings.TrimSpace(args[1]))
	if err != nil {
		return fmt.Errorf("invalid points %q: %w", args[1], err)
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.engine.AddPoints(cmd.Context(), team, points)
	if err != nil {
		return err
	}
	st := a.engine.State()
	if !out.Applied {
		logErrf("No change: %s\n", noChangeReason(st, team))
	}
	if err := printBoard(cmd.OutOrStdout(), st); err != nil {
		return err
	}
	if out.Winner != match.NoWinner {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "\n%s wins! Start a rematch with: tanteo rematch\n", st.Teams[out.Winner].Name); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the last point change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if !a.engine.Undo(cmd.Context()) {
				logErrf("Nothing to undo.\n")
			}
			return printBoard(cmd.OutOrStdout(), a.engine.State())
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Start over with default names and target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			a.engine.Reset(cmd.Context())
			return printBoard(cmd.OutOrStdout(), a.engine.State())
		},
	}
}

func newRematchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rematch",
		Short: "Start a new match keeping names and target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			a.engine.NewGameKeepNames(cmd.Context())
			return printBoard(cmd.OutOrStdout(), a.engine.State())
		},
	}
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <team 1|2> <name...>",
		Short: "Rename a team",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			team, err := parseTeam(args[0])
			if err != nil {
				return err
			}
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.engine.RenameTeam(cmd.Context(), team, strings.Join(args[1:], " ")); err != nil {
				return err
			}
			return printBoard(cmd.OutOrStdout(), a.engine.State())
		},
	}
}

func newTargetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "target <points>",
		Short: "Set the points needed to win",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			applied := a.engine.SetTarget(cmd.Context(), args[0])
			if strings.TrimSpace(args[0]) != strconv.Itoa(applied) {
				logErrf("Invalid target %q; using %d.\n", args[0], applied)
			}
			return printBoard(cmd.OutOrStdout(), a.engine.State())
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return printBoard(cmd.OutOrStdout(), a.engine.State())
		},
	}
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the point history, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			st := a.engine.State()
			w := cmd.OutOrStdout()
			if historyDetailed {
				return printDetailed(w, st, a.engine.Detailed(), terminalWidth())
			}
			return printGrouped(w, st, a.engine.Grouped(a.window), terminalWidth())
		},
	}
	cmd.Flags().BoolVar(&historyDetailed, "detailed", false, "list every play instead of grouping")
	cmd.Flags().DurationVar(&historyWindow, "window", history.DefaultWindow, "grouping window")
	return cmd
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show finished match statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if statsLast < 0 {
				return fmt.Errorf("--last must be >= 0")
			}
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			matches := a.recorder.Load(cmd.Context()).Matches
			w := cmd.OutOrStdout()
			if err := stats.RenderSummary(w, matches); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			if err := stats.RenderRecent(w, matches, statsLast); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&statsLast, "last", 5, "number of recent matches to list (0 for all)")
	cmd.AddCommand(newStatsClearCmd())
	return cmd
}

func newStatsClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded match",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !clearStats {
				return fmt.Errorf("refusing to clear statistics without --yes")
			}
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.recorder.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear statistics: %w", err)
			}
			logErrf("Statistics cleared.\n")
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearStats, "yes", false, "confirm deletion")
	return cmd
}

// parseTeam accepts the 1-based team number used on the command line.
func parseTeam(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "a":
		return 0, nil
	case "2", "b":
		return 1, nil
	}
	return 0, fmt.Errorf("invalid team %q (use 1 or 2): %w", s, match.ErrInvalidTeam)
}
