package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stocksure/deployctl/pkg/credentials"
	"github.com/stocksure/deployctl/pkg/environment"
	"github.com/stocksure/deployctl/pkg/history"
	"github.com/stocksure/deployctl/pkg/log"
	"github.com/stocksure/deployctl/pkg/orchestrator"
	"github.com/stocksure/deployctl/pkg/validator"
)

var deployCmd = &cobra.Command{
	Use:   "deploy ENVIRONMENT",
	Short: "Deploy the notification backend to an environment",
	Long: `Deploy the notification backend to a named environment.

Runs the full orchestration: loads the environment, confirms production
targets, validates prerequisites, prepares credentials, writes render.yaml,
and records the attempt in the deployment history.

Examples:
  # Deploy to development
  deployctl deploy development

  # Simulate a production deployment without writing anything
  deployctl deploy production --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().Bool("dry-run", false, "Simulate the deployment without writing files or history")
	deployCmd.Flags().Bool("skip-validation", false, "Skip prerequisite validation")
	deployCmd.Flags().String("credentials-file", "serviceAccountKey.json", "Service account key file")
	deployCmd.Flags().String("server-dir", "server", "Backend server directory")
	deployCmd.Flags().String("blueprint", "render.yaml", "Output path for the service descriptor")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	envName := args[0]
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	skipValidation, _ := cmd.Flags().GetBool("skip-validation")
	credFile, _ := cmd.Flags().GetString("credentials-file")
	serverDir, _ := cmd.Flags().GetString("server-dir")
	blueprint, _ := cmd.Flags().GetString("blueprint")

	session, err := log.NewSession(logsDir())
	if err != nil {
		// Deployments proceed without the audit file rather than failing.
		log.Errorf("failed to open session log", err)
		session = nil
	}
	if session != nil {
		defer session.Close()
	}

	orch := orchestrator.New(orchestrator.Config{
		Registry: environment.NewRegistry(configPath()),
		Validator: &validator.Validator{
			CredentialPath: credFile,
			ServerDir:      serverDir,
			ConfigPath:     configPath(),
		},
		Ledger: history.NewLedger(history.Config{Path: historyPath()}),
		Preparer: credentials.Preparer{
			CredentialPath: credFile,
			OutputPath:     credentialsOut(),
		},
		Confirmer:     orchestrator.SurveyConfirmer{},
		BlueprintPath: blueprint,
		Version:       Version,
		Session:       session,
	})

	result, err := orch.Deploy(cmd.Context(), orchestrator.Options{
		Environment:    envName,
		DryRun:         dryRun,
		CIMode:         flagCI,
		SkipValidation: skipValidation,
		Verbose:        flagVerbose,
	})
	if err != nil {
		return err
	}
	if result.Cancelled {
		return nil
	}

	fmt.Printf("\n✓ Deployment prepared: %s\n", result.DeploymentID)
	return nil
}
