package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sanvivo/price-dashboard/internal/dashboard"
)

var (
	historyView   viewFlags
	historyOutput string
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [timestamp]",
	Short: "List stored snapshots or show one of them",
	Long: `Without an argument, list the timestamps of stored price snapshots, newest
first. With a timestamp, load that snapshot and print it like fetch does.`,
	Example: `  dashboard history
  dashboard history "2024-05-01 10:00:00" --only-changes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyView.register(historyCmd)
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", outputTable, "Output format: table, json or markdown")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listTimestamps(cmd)
	}

	if err := historyView.apply(cmd); err != nil {
		return err
	}

	s, err := app.fetch(dashboard.LoadHistorical{Timestamp: args[0]})
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), historyOutput, priceView{
		Timestamp: s.SnapshotTimestamp,
		Total:     len(s.Rows),
		Rows:      app.runtime.Visible(),
	}, noColor())
}

func listTimestamps(cmd *cobra.Command) error {
	if err := app.runtime.Start(cmd.Context()); err != nil {
		return fmt.Errorf("%s", dashboard.MsgLoadTimestampsFailed)
	}

	out := cmd.OutOrStdout()
	timestamps := app.runtime.State().Timestamps
	if len(timestamps) == 0 {
		fmt.Fprintln(out, "No stored snapshots.")
		return nil
	}
	for _, ts := range timestamps {
		fmt.Fprintln(out, ts)
	}
	return nil
}
