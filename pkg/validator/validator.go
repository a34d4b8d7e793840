package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/stocksure/deployctl/pkg/credentials"
	"github.com/stocksure/deployctl/pkg/log"
	"github.com/stocksure/deployctl/pkg/types"
)

// Check names, also the deterministic merge order for results.
const (
	CheckCredentials  = "credentials"
	CheckDependencies = "dependencies"
	CheckServerConfig = "serverConfig"
	CheckEnvironment  = "environment"
)

var checkOrder = []string{CheckCredentials, CheckDependencies, CheckServerConfig, CheckEnvironment}

// criticalPackages must be installed before the server can start.
var criticalPackages = []string{"express", "firebase-admin", "cors", "dotenv"}

// serverPatterns are source fragments the main server file must contain.
var serverPatterns = []struct {
	fragment string
	meaning  string
}{
	{"express", "web framework import"},
	{"firebase-admin", "admin SDK import"},
	{".listen(", "server listen call"},
}

// Options controls which checks a validation run performs.
type Options struct {
	// Environment enables the environment check for the named target.
	Environment string

	// SkipCredentials marks the credential check skipped instead of
	// running it.
	SkipCredentials bool
}

// Validator runs deployment prerequisite checks against the local working
// tree.
type Validator struct {
	// CredentialPath is the service-account file location.
	CredentialPath string

	// ServerDir contains the server sources, manifest, and node_modules.
	ServerDir string

	// ConfigPath is the environment config file location.
	ConfigPath string
}

type outcome struct {
	result   types.CheckResult
	warnings []string
}

// ValidateAll runs the independent checks concurrently and aggregates their
// results. Checks share no state, so completion order is irrelevant; results
// merge by check name in a fixed order and the output is deterministic for a
// given filesystem state.
func (v *Validator) ValidateAll(ctx context.Context, opts Options) *types.ValidationResult {
	logger := log.WithComponent("validator")

	outcomes := make(map[string]outcome)
	var mu sync.Mutex
	var wg sync.WaitGroup

	run := func(name string, fn func(ctx context.Context) (types.CheckResult, []string)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, warnings := fn(ctx)
			mu.Lock()
			outcomes[name] = outcome{result: result, warnings: warnings}
			mu.Unlock()
		}()
	}

	if opts.SkipCredentials {
		outcomes[CheckCredentials] = outcome{result: types.CheckResult{
			Passed:  true,
			Skipped: true,
			Message: "credential check skipped",
		}}
	} else {
		run(CheckCredentials, v.CheckCredentials)
	}
	run(CheckDependencies, v.CheckDependencies)
	run(CheckServerConfig, v.CheckServerConfig)
	if opts.Environment != "" {
		run(CheckEnvironment, func(ctx context.Context) (types.CheckResult, []string) {
			return v.CheckEnvironment(ctx, opts.Environment)
		})
	}
	wg.Wait()

	result := &types.ValidationResult{
		Success: true,
		Checks:  make(map[string]types.CheckResult, len(outcomes)),
	}
	for _, name := range checkOrder {
		o, ok := outcomes[name]
		if !ok {
			continue
		}
		result.Checks[name] = o.result
		result.Warnings = append(result.Warnings, o.warnings...)
		if o.result.Skipped {
			continue
		}
		if !o.result.Passed {
			result.Success = false
			result.Errors = append(result.Errors, types.ValidationError{
				Check:       name,
				Message:     o.result.Message,
				Remediation: o.result.Remediation,
			})
		}
	}

	logger.Debug().
		Bool("success", result.Success).
		Int("checks", len(result.Checks)).
		Int("errors", len(result.Errors)).
		Msg("validation complete")
	return result
}

// CheckCredentials verifies the service-account file exists, parses, and
// has the required fields with plausible shapes.
func (v *Validator) CheckCredentials(ctx context.Context) (types.CheckResult, []string) {
	data, err := os.ReadFile(v.CredentialPath)
	if err != nil {
		if os.IsNotExist(err) {
			return types.CheckResult{
				Passed:      false,
				Message:     fmt.Sprintf("service account file not found at %s", v.CredentialPath),
				Remediation: "download the service account key from the Firebase console",
			}, nil
		}
		return types.CheckResult{
			Passed:      false,
			Message:     fmt.Sprintf("failed to read service account file: %v", err),
			Remediation: "check file permissions",
		}, nil
	}

	creds, err := credentials.Parse(data)
	if err != nil {
		return types.CheckResult{
			Passed:      false,
			Message:     "service account file is not valid JSON",
			Remediation: "re-download the service account key; it may be truncated",
		}, nil
	}

	var missing []string
	for _, field := range credentials.RequiredFields {
		if s, _ := creds[field].(string); s == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return types.CheckResult{
			Passed:      false,
			Message:     fmt.Sprintf("service account is missing fields: %s", strings.Join(missing, ", ")),
			Remediation: "re-download the service account key from the Firebase console",
		}, nil
	}

	accountType, _ := creds["type"].(string)
	privateKey, _ := creds["private_key"].(string)
	clientEmail, _ := creds["client_email"].(string)
	projectID, _ := creds["project_id"].(string)

	switch {
	case accountType != "service_account":
		return types.CheckResult{
			Passed:      false,
			Message:     fmt.Sprintf("credential type is %q, expected \"service_account\"", accountType),
			Remediation: "use a service account key, not another credential type",
		}, nil
	case !strings.Contains(privateKey, "BEGIN PRIVATE KEY"):
		return types.CheckResult{
			Passed:      false,
			Message:     "private_key does not contain a PEM header",
			Remediation: "re-download the service account key; the private key is corrupt",
		}, nil
	case !strings.Contains(clientEmail, "@") || !strings.HasSuffix(clientEmail, ".iam.gserviceaccount.com"):
		return types.CheckResult{
			Passed:      false,
			Message:     fmt.Sprintf("client_email %q is not a service account address", maskTail(clientEmail)),
			Remediation: "use a service account key for this project",
		}, nil
	}

	return types.CheckResult{
		Passed:  true,
		Message: "service account credentials are valid",
		Details: []string{
			fmt.Sprintf("project: %s", maskTail(projectID)),
			fmt.Sprintf("account: %s", maskTail(clientEmail)),
		},
	}, nil
}

// CheckDependencies verifies the package manifest and installed packages.
func (v *Validator) CheckDependencies(ctx context.Context) (types.CheckResult, []string) {
	manifest := filepath.Join(v.ServerDir, "package.json")
	if _, err := os.Stat(manifest); err != nil {
		return types.CheckResult{
			Passed:      false,
			Message:     fmt.Sprintf("package manifest not found at %s", manifest),
			Remediation: "run the deployment from the repository root",
		}, nil
	}

	modules := filepath.Join(v.ServerDir, "node_modules")
	if _, err := os.Stat(modules); err != nil {
		return types.CheckResult{
			Passed:      false,
			Message:     "installed packages directory not found",
			Remediation: "install dependencies: npm install",
		}, nil
	}

	var missing []string
	for _, pkg := range criticalPackages {
		if _, err := os.Stat(filepath.Join(modules, pkg)); err != nil {
			missing = append(missing, pkg)
		}
	}
	if len(missing) > 0 {
		return types.CheckResult{
			Passed:      false,
			Message:     fmt.Sprintf("critical packages not installed: %s", strings.Join(missing, ", ")),
			Remediation: "install dependencies: npm install",
		}, nil
	}

	return types.CheckResult{
		Passed:  true,
		Message: fmt.Sprintf("all %d critical packages installed", len(criticalPackages)),
	}, nil
}

// CheckServerConfig verifies the server entrypoint and manifest are
// deployable: both files exist, the entrypoint wires the framework and admin
// SDK and starts a listener, and the manifest declares a start script.
func (v *Validator) CheckServerConfig(ctx context.Context) (types.CheckResult, []string) {
	serverFile := filepath.Join(v.ServerDir, "server.js")
	manifestFile := filepath.Join(v.ServerDir, "package.json")

	for _, f := range []string{serverFile, manifestFile} {
		if _, err := os.Stat(f); err != nil {
			return types.CheckResult{
				Passed:      false,
				Message:     fmt.Sprintf("required file not found: %s", f),
				Remediation: "run the deployment from the repository root",
			}, nil
		}
	}

	source, err := os.ReadFile(serverFile)
	if err != nil {
		return types.CheckResult{
			Passed:      false,
			Message:     fmt.Sprintf("failed to read %s: %v", serverFile, err),
			Remediation: "check file permissions",
		}, nil
	}
	text := string(source)
	for _, p := range serverPatterns {
		if !strings.Contains(text, p.fragment) {
			return types.CheckResult{
				Passed:      false,
				Message:     fmt.Sprintf("server entrypoint is missing %s (%q)", p.meaning, p.fragment),
				Remediation: "check that server.js is the production entrypoint",
			}, nil
		}
	}

	manifestData, err := os.ReadFile(manifestFile)
	if err != nil {
		return types.CheckResult{
			Passed:      false,
			Message:     fmt.Sprintf("failed to read %s: %v", manifestFile, err),
			Remediation: "check file permissions",
		}, nil
	}
	var manifest struct {
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		return types.CheckResult{
			Passed:      false,
			Message:     "package manifest is not valid JSON",
			Remediation: fmt.Sprintf("inspect and fix %s", manifestFile),
		}, nil
	}
	if manifest.Scripts["start"] == "" {
		return types.CheckResult{
			Passed:      false,
			Message:     "package manifest does not declare a start script",
			Remediation: `add "start": "node server.js" to the manifest scripts`,
		}, nil
	}

	return types.CheckResult{
		Passed:  true,
		Message: "server configuration is deployable",
	}, nil
}

// CheckEnvironment verifies the named environment is deployable. A config
// store that does not exist yet passes with a warning: the config is created
// later in the flow, so its absence is not a failure at validation time.
func (v *Validator) CheckEnvironment(ctx context.Context, name string) (types.CheckResult, []string) {
	if !types.IsKnownEnvironment(name) {
		return types.CheckResult{
			Passed:      false,
			Message:     fmt.Sprintf("unknown environment %q", name),
			Remediation: fmt.Sprintf("use one of: %s", strings.Join(types.KnownEnvironments, ", ")),
		}, nil
	}

	data, err := os.ReadFile(v.ConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return types.CheckResult{
					Passed:  true,
					Message: fmt.Sprintf("environment %q accepted; config store not created yet", name),
				}, []string{
					fmt.Sprintf("environment config %s does not exist yet; it will be created on first use", v.ConfigPath),
				}
		}
		return types.CheckResult{
			Passed:      false,
			Message:     fmt.Sprintf("failed to read environment config: %v", err),
			Remediation: "check file permissions",
		}, nil
	}

	var envs map[string]types.Environment
	if err := json.Unmarshal(data, &envs); err != nil {
		return types.CheckResult{
			Passed:      false,
			Message:     "environment config is not valid JSON",
			Remediation: fmt.Sprintf("inspect and fix %s", v.ConfigPath),
		}, nil
	}

	env, ok := envs[name]
	if !ok {
		return types.CheckResult{
			Passed:      false,
			Message:     fmt.Sprintf("environment %q is not defined in the config store", name),
			Remediation: fmt.Sprintf("run: deployctl environment create %s", name),
		}, nil
	}

	var missing []string
	if env.RenderServiceName == "" {
		missing = append(missing, "renderServiceName")
	}
	if env.Region == "" {
		missing = append(missing, "region")
	}
	if env.Plan == "" {
		missing = append(missing, "plan")
	}
	if len(missing) > 0 {
		return types.CheckResult{
			Passed:      false,
			Message:     fmt.Sprintf("environment %q is missing fields: %s", name, strings.Join(missing, ", ")),
			Remediation: "add the missing fields to the environment config",
		}, nil
	}

	return types.CheckResult{
		Passed:  true,
		Message: fmt.Sprintf("environment %q is configured", name),
	}, nil
}

func maskTail(v string) string {
	if len(v) > 8 {
		return v[:4] + "..." + v[len(v)-4:]
	}
	return "***"
}
