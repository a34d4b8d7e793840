package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/stocksure/deployctl/pkg/history"
	"github.com/stocksure/deployctl/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded deployments",
	Long: `List deployment history, most recent first.

Examples:
  # The last ten deployments
  deployctl history

  # Failed production deployments
  deployctl history --environment production --status failed`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringP("environment", "e", "", "Filter by environment")
	historyCmd.Flags().String("status", "", "Filter by status (success, failed, rolled-back)")
	historyCmd.Flags().IntP("limit", "n", 10, "Maximum records to show (0 = all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	envName, _ := cmd.Flags().GetString("environment")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")

	ledger := history.NewLedger(history.Config{Path: historyPath()})
	records, err := ledger.Query(history.Filter{
		Environment: envName,
		Status:      types.DeploymentStatus(status),
		Limit:       limit,
	})
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No deployments recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tENVIRONMENT\tSTATUS\tVERSION\tBY")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.Timestamp.Format("2006-01-02 15:04"),
			r.Environment,
			r.Status,
			r.Version,
			r.DeployedBy,
		)
	}
	return w.Flush()
}
