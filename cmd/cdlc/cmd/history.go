package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/cdlc/internal/store"
)

var (
	historyName      string
	historyFailed    bool
	historyLimit     int
	historySource    bool
	historyOlderThan time.Duration
	historyFormat    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded compile runs",
	Long: `Reads the compile history kept by "cdlc serve" and "cdlc check --record".

The database location is store.path in the config file
(default: ./data/cdlc.db).`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the history",
	Args:  cobra.NoArgs,
	RunE:  runHistoryStats,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyStatsCmd, historyPruneCmd)

	historyListCmd.Flags().StringVar(&historyName, "name", "", "only runs of this input name")
	historyListCmd.Flags().BoolVar(&historyFailed, "failed", false, "only runs with errors or diagnostics")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs")

	historyShowCmd.Flags().BoolVar(&historySource, "source", false, "print the compiled source")
	historyShowCmd.Flags().StringVarP(&historyFormat, "format", "f", "text", "output format (text, json, yaml)")

	historyPruneCmd.Flags().DurationVar(&historyOlderThan, "older-than", 30*24*time.Hour, "delete runs older than this")
}

// openHistory opens the configured history database
func openHistory() (*store.SQLiteRunStore, error) {
	return store.NewSQLiteRunStore(store.SQLiteConfig{Path: appConfig.Store.Path})
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	s, err := openHistory()
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.List(cmd.Context(), store.RunFilter{
		Name:       historyName,
		FailedOnly: historyFailed,
		Limit:      historyLimit,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %s  %-6s %5d nodes %8.2fms  %s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), runStatus(r), r.NodeCount, r.DurationMS, r.Name)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	s, err := openHistory()
	if err != nil {
		return err
	}
	defer s.Close()

	run, err := s.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !historySource {
		run.Source = ""
	}

	out := cmd.OutOrStdout()
	switch historyFormat {
	case "json":
		return writeJSON(out, run)
	case "yaml":
		return writeYAML(out, run)
	case "text":
	default:
		return fmt.Errorf("unknown format %q", historyFormat)
	}

	fmt.Fprintf(out, "ID:          %s\n", run.ID)
	fmt.Fprintf(out, "Name:        %s\n", run.Name)
	fmt.Fprintf(out, "Created:     %s\n", run.CreatedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(out, "Status:      %s\n", runStatus(run))
	fmt.Fprintf(out, "Hash:        %s\n", run.Hash)
	fmt.Fprintf(out, "Nodes:       %d\n", run.NodeCount)
	fmt.Fprintf(out, "Duration:    %.2fms\n", run.DurationMS)
	if len(run.Diagnostics) > 0 {
		fmt.Fprintln(out, "Diagnostics:")
		for _, d := range run.Diagnostics {
			fmt.Fprintf(out, "  %s\n", d)
		}
	}
	if run.Source != "" {
		fmt.Fprintln(out, "Source:")
		fmt.Fprintln(out, strings.TrimRight(run.Source, "\n"))
	}
	return nil
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	s, err := openHistory()
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Runs:             %d\n", stats.Total)
	fmt.Fprintf(out, "Failed:           %d\n", stats.Failed)
	fmt.Fprintf(out, "With diagnostics: %d\n", stats.WithWarnings)
	fmt.Fprintf(out, "Avg duration:     %.2fms\n", stats.AvgDurationMS)
	fmt.Fprintf(out, "Avg nodes:        %.1f\n", stats.AvgNodes)
	if !stats.LastRun.IsZero() {
		fmt.Fprintf(out, "Last run:         %s\n", stats.LastRun.Local().Format(time.RFC3339))
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	s, err := openHistory()
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.Prune(cmd.Context(), historyOlderThan)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d run(s) older than %s\n", n, historyOlderThan)
	return nil
}

// runStatus labels a run as ok, warn or failed
func runStatus(r *store.Run) string {
	switch {
	case !r.ParseOK:
		return "failed"
	case len(r.Diagnostics) > 0:
		return "warn"
	default:
		return "ok"
	}
}
