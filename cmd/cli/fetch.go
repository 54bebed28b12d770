package main

import (
	"github.com/spf13/cobra"

	"github.com/sanvivo/price-dashboard/internal/dashboard"
)

var (
	fetchView   viewFlags
	fetchOutput string
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and show the current prices",
	Long: `Fetch the latest price snapshot from the pricing API and print the rows
that pass the selected filters, with the recommended undercut price.`,
	Example: `  dashboard fetch
  dashboard fetch --only-changes --hide-designated
  dashboard fetch --group "My Favorites" --watch --output markdown`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchView.register(fetchCmd)
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", outputTable, "Output format: table, json or markdown")
}

func runFetch(cmd *cobra.Command, args []string) error {
	if err := fetchView.apply(cmd); err != nil {
		return err
	}

	s, err := app.fetch(dashboard.FetchCurrent{})
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), fetchOutput, priceView{
		Timestamp: s.SnapshotTimestamp,
		Total:     len(s.Rows),
		Rows:      app.runtime.Visible(),
	}, noColor())
}
