package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/stocksure/deployctl/pkg/environment"
	"github.com/stocksure/deployctl/pkg/health"
	"github.com/stocksure/deployctl/pkg/orchestrator"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe a deployed service's health",
	Long: `Probe a deployed service and classify its health.

The probe checks the service root, and if that answers, a routed API
endpoint. A rejection (400/401) from the API endpoint counts as healthy:
it proves the route is deployed and enforcing validation.

Examples:
  deployctl health --environment production
  deployctl health --url https://stocksure-notify.onrender.com`,
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().StringP("environment", "e", "", "Probe this environment's service")
	healthCmd.Flags().String("url", "", "Probe this URL directly")
	healthCmd.Flags().Duration("timeout", health.DefaultTimeout, "Per-request timeout")
}

func runHealth(cmd *cobra.Command, args []string) error {
	envName, _ := cmd.Flags().GetString("environment")
	url, _ := cmd.Flags().GetString("url")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	orch := orchestrator.New(orchestrator.Config{
		Registry: environment.NewRegistry(configPath()),
	})
	result, err := orch.CheckHealth(cmd.Context(), envName, url, timeout)
	if err != nil {
		return err
	}

	fmt.Printf("Service: %s\n", result.URL)
	fmt.Printf("Status:  %s", result.Status)
	if result.ResponseTime > 0 {
		fmt.Printf(" (%s)", result.ResponseTime.Round(time.Millisecond))
	}
	fmt.Println()
	if result.Version != "" {
		fmt.Printf("Version: %s\n", result.Version)
	}
	for path, ep := range result.Endpoints {
		mark := "✓"
		if !ep.Success {
			mark = "✗"
		}
		fmt.Printf("  %s %s → %d (%s)\n", mark, path, ep.StatusCode, ep.ResponseTime.Round(time.Millisecond))
	}
	for _, e := range result.Errors {
		fmt.Printf("  ! %s\n", e)
	}

	return health.ResultError(result)
}
