package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/generator"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/history"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View generation history",
	Long: `View the history of generation runs.

Every run of 'sandpack', 'sandpack gen' and each regeneration in watch mode
is recorded with the outcome of every project.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show details of a specific run",
	Long:  `Display the projects of a run. A unique prefix of the ID is enough.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove runs older than history.retention_days.`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of runs to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// withHistory opens the configured history for the duration of fn.
func withHistory(fn func(*history.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := requireHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(store)
}

// runHistory lists recent runs.
func runHistory(cmd *cobra.Command, args []string) error {
	return withHistory(func(store *history.Store) error {
		runs, err := store.List(historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}

		if len(runs) == 0 {
			printInfo("No history entries found.")
			printInfo("Run 'sandpack' to generate manifests.")
			return nil
		}

		printRuns(cmd.OutOrStdout(), runs)
		return nil
	})
}

func printRuns(w io.Writer, runs []history.Run) {
	fmt.Fprintf(w, "\n%-12s  %-20s  %-8s  %-8s  %-10s\n", "ID", "WHEN", "PROJECTS", "FAILED", "SIZE")
	fmt.Fprintln(w, strings.Repeat("-", 66))

	for i := range runs {
		run := &runs[i]
		fmt.Fprintf(w, "%-12s  %-20s  %-8d  %-8d  %-10s\n",
			truncateString(run.ID, 12),
			humanize.Time(run.Timestamp),
			len(run.Projects),
			run.Count(string(generator.StatusFailed)),
			humanize.Bytes(uint64(run.TotalBytes())),
		)
	}

	fmt.Fprintln(w, strings.Repeat("-", 66))
	fmt.Fprintf(w, "\nShowing %d entries. Use --limit to see more.\n", len(runs))
	fmt.Fprintln(w, "Use 'sandpack history show <id>' for details on a specific run.")
}

// runHistoryShow displays a single run.
func runHistoryShow(cmd *cobra.Command, args []string) error {
	return withHistory(func(store *history.Store) error {
		run, err := store.Get(args[0])
		if err != nil {
			return fmt.Errorf("failed to get run: %w", err)
		}

		printRun(cmd.OutOrStdout(), run)
		return nil
	})
}

func printRun(w io.Writer, run *history.Run) {
	fmt.Fprintln(w, "\nRun Details")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "ID:         %s\n", run.ID)
	fmt.Fprintf(w, "Timestamp:  %s\n", run.Timestamp.Local().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Root:       %s\n", run.Root)
	fmt.Fprintf(w, "Duration:   %s\n", run.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Projects:   %d (%d written, %d unchanged, %d failed)\n",
		len(run.Projects),
		run.Count(string(generator.StatusWritten)),
		run.Count(string(generator.StatusUnchanged)),
		run.Count(string(generator.StatusFailed)),
	)

	if len(run.Projects) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-10s  %-6s  %-6s  %-10s  %s\n", "STATUS", "FILES", "HIDDEN", "SIZE", "PROJECT")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, p := range run.Projects {
		fmt.Fprintf(w, "%-10s  %-6d  %-6d  %-10s  %s\n",
			p.Status, p.Files, p.Hidden, humanize.Bytes(uint64(p.Bytes)), p.Name)
		if p.Error != "" {
			fmt.Fprintf(w, "%-10s  %s\n", "", p.Error)
		}
	}
}

// runHistoryClean removes runs past the retention period.
func runHistoryClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := requireHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	printInfo("Cleaning history entries older than %d days...", cfg.History.RetentionDays)

	removed, err := store.Cleanup(time.Duration(cfg.History.RetentionDays) * 24 * time.Hour)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	printInfo("Removed %d %s.", removed, pluralize(removed, "run", "runs"))
	return nil
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
