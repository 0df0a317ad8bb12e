package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerpa-project/p4check/internal/config"
	"github.com/nerpa-project/p4check/internal/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent recorded test runs",
		Long: `List the most recent runs from the run-history database, newest
first. Recording is enabled via the history section of the config
file.`,
		Args: checkArgs(cobra.NoArgs),
		RunE: historyCommand,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to show")
	cmd.Flags().String("config", "", "Path to config file (default: .p4check/config.yaml)")

	return cmd
}

// historyCommand implements the history command logic
func historyCommand(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if _, statErr := os.Stat(cfg.History.DBPath); os.IsNotExist(statErr) {
		return fmt.Errorf("no run history at %s (enable history in the config file)", cfg.History.DBPath)
	}

	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tTEST\tOUTCOME\tCODE\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.TestName,
			r.Outcome,
			r.ExitCode,
			r.Duration.Round(time.Millisecond),
		)
	}
	return w.Flush()
}
