package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stocksure/deployctl/pkg/history"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback DEPLOYMENT_ID",
	Short: "Prepare a rollback plan for a recorded deployment",
	Long: `Build the manual rollback plan for a recorded deployment.

The plan is printed, not executed: rolling back means checking out the
recorded commit and redeploying, which stays in the operator's hands.

Example:
  deployctl rollback deploy-1756600000000-a1b2`,
	Args: cobra.ExactArgs(1),
	RunE: runRollback,
}

func runRollback(cmd *cobra.Command, args []string) error {
	ledger := history.NewLedger(history.Config{Path: historyPath()})
	plan, err := ledger.PrepareRollback(args[0])
	if err != nil {
		return err
	}

	target := plan.TargetDeployment
	fmt.Printf("Rollback plan for %s\n", target.ID)
	fmt.Printf("  Environment: %s\n", target.Environment)
	fmt.Printf("  Version:     %s\n", target.Version)
	fmt.Printf("  Deployed:    %s by %s\n", target.Timestamp.Format("2006-01-02 15:04"), target.DeployedBy)
	if plan.CurrentDeployment != nil && plan.CurrentDeployment.ID != target.ID {
		fmt.Printf("  Replacing:   %s (version %s)\n",
			plan.CurrentDeployment.ID, plan.CurrentDeployment.Version)
	}

	fmt.Println("\nSteps:")
	for i, step := range plan.Steps {
		fmt.Printf("  %d. %s\n", i+1, step)
	}

	fmt.Println("\nWarnings:")
	for _, warning := range plan.Warnings {
		fmt.Printf("  ! %s\n", warning)
	}
	return nil
}
