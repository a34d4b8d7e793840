package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stocksure/deployctl/pkg/errdefs"
	"github.com/stocksure/deployctl/pkg/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run deployment prerequisite checks",
	Long: `Run the deployment prerequisite checks without deploying.

Examples:
  # Check credentials, dependencies, and server config
  deployctl validate

  # Also check a target environment
  deployctl validate --environment staging`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringP("environment", "e", "", "Also validate this environment")
	validateCmd.Flags().Bool("skip-credentials", false, "Skip the credential check")
	validateCmd.Flags().String("credentials-file", "serviceAccountKey.json", "Service account key file")
	validateCmd.Flags().String("server-dir", "server", "Backend server directory")
}

func runValidate(cmd *cobra.Command, args []string) error {
	envName, _ := cmd.Flags().GetString("environment")
	skipCreds, _ := cmd.Flags().GetBool("skip-credentials")
	credFile, _ := cmd.Flags().GetString("credentials-file")
	serverDir, _ := cmd.Flags().GetString("server-dir")

	v := &validator.Validator{
		CredentialPath: credFile,
		ServerDir:      serverDir,
		ConfigPath:     configPath(),
	}

	result := v.ValidateAll(cmd.Context(), validator.Options{
		Environment:     envName,
		SkipCredentials: skipCreds,
	})

	for _, name := range []string{"credentials", "dependencies", "serverConfig", "environment"} {
		check, ok := result.Checks[name]
		if !ok {
			continue
		}
		switch {
		case check.Skipped:
			fmt.Printf("- %s: %s\n", name, check.Message)
		case check.Passed:
			fmt.Printf("✓ %s: %s\n", name, check.Message)
			for _, d := range check.Details {
				fmt.Printf("    %s\n", d)
			}
		default:
			fmt.Printf("✗ %s: %s\n", name, check.Message)
			if check.Remediation != "" {
				fmt.Printf("    → %s\n", check.Remediation)
			}
		}
	}
	for _, w := range result.Warnings {
		fmt.Printf("! %s\n", w)
	}

	if !result.Success {
		return errdefs.New(errdefs.CodeValidationFailed,
			fmt.Sprintf("%d validation check(s) failed", len(result.Errors)),
			"fix the reported checks and retry")
	}
	fmt.Println("\nAll checks passed.")
	return nil
}
