package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/stocksure/deployctl/pkg/environment"
	"github.com/stocksure/deployctl/pkg/errdefs"
	"github.com/stocksure/deployctl/pkg/types"
)

var environmentCmd = &cobra.Command{
	Use:     "environment",
	Aliases: []string{"env"},
	Short:   "Manage deployment environments",
}

var environmentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured environments",
	RunE: func(cmd *cobra.Command, args []string) error {
		summaries, err := environment.NewRegistry(configPath()).List()
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No environments configured.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSERVICE\tREGION\tPLAN\tVARS")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
				s.Name, s.RenderServiceName, s.Region, s.Plan, s.VarCount)
		}
		return w.Flush()
	},
}

var environmentCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create an environment",
	Long: `Create a named environment in the config store.

Example:
  deployctl environment create staging \
    --service stocksure-notify-staging --region oregon --plan starter \
    --var NODE_ENV=production --var PORT=10000 --var ADMIN_SETUP_CODE=s3cret`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		service, _ := cmd.Flags().GetString("service")
		region, _ := cmd.Flags().GetString("region")
		plan, _ := cmd.Flags().GetString("plan")
		branch, _ := cmd.Flags().GetString("branch")
		displayName, _ := cmd.Flags().GetString("display-name")
		healthPath, _ := cmd.Flags().GetString("health-path")
		pairs, _ := cmd.Flags().GetStringArray("var")
		confirm, _ := cmd.Flags().GetBool("requires-confirmation")

		vars, err := parseVarPairs(pairs)
		if err != nil {
			return err
		}

		registry := environment.NewRegistry(configPath())
		err = registry.Create(name, types.Environment{
			DisplayName:          displayName,
			RenderServiceName:    service,
			Region:               region,
			Plan:                 plan,
			Branch:               branch,
			HealthCheckPath:      healthPath,
			EnvVars:              vars,
			RequiresConfirmation: confirm || name == "production",
		})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Environment created: %s\n", name)
		return nil
	},
}

var environmentSetCmd = &cobra.Command{
	Use:   "set NAME KEY=VALUE...",
	Short: "Set environment variables",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		vars, err := parseVarPairs(args[1:])
		if err != nil {
			return err
		}

		registry := environment.NewRegistry(configPath())
		env, err := registry.UpdateVariables(name, vars)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Updated %s (%d variables)\n", name, len(env.EnvVars))
		masked := environment.MaskSensitive(env.EnvVars)
		for k := range vars {
			fmt.Printf("  %s=%s\n", k, masked[k])
		}
		return nil
	},
}

func parseVarPairs(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, errdefs.New(errdefs.CodeConfigurationRead,
				fmt.Sprintf("invalid variable %q", pair),
				"use KEY=VALUE form")
		}
		vars[key] = value
	}
	return vars, nil
}

func init() {
	environmentCmd.AddCommand(environmentListCmd)
	environmentCmd.AddCommand(environmentCreateCmd)
	environmentCmd.AddCommand(environmentSetCmd)

	environmentCreateCmd.Flags().String("service", "", "Render service name")
	environmentCreateCmd.Flags().String("region", "oregon", "Render region")
	environmentCreateCmd.Flags().String("plan", "free", "Render plan")
	environmentCreateCmd.Flags().String("branch", "", "Git branch to deploy")
	environmentCreateCmd.Flags().String("display-name", "", "Human-readable name")
	environmentCreateCmd.Flags().String("health-path", "/", "Health check path")
	environmentCreateCmd.Flags().StringArray("var", nil, "Environment variable (KEY=VALUE, repeatable)")
	environmentCreateCmd.Flags().Bool("requires-confirmation", false, "Require typed confirmation before deploys")
	_ = environmentCreateCmd.MarkFlagRequired("service")
}
