package environment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stocksure/deployctl/pkg/errdefs"
	"github.com/stocksure/deployctl/pkg/types"
)

// sensitiveMarkers flag variable names whose values must never be shown in
// full. Matching is by substring, so FIREBASE_API_KEY matches both KEY and
// API_KEY.
var sensitiveMarkers = []string{
	"SECRET", "KEY", "PASSWORD", "TOKEN",
	"API_KEY", "PRIVATE_KEY", "ADMIN_SETUP_CODE", "FIREBASE_SERVICE_ACCOUNT",
}

// Registry manages named deployment environments stored as a JSON map on
// disk. Registries hold no cached environment state: Load returns a value
// the caller threads through the rest of the run.
type Registry struct {
	configPath string
}

// NewRegistry creates a registry backed by the config file at path.
func NewRegistry(configPath string) *Registry {
	return &Registry{configPath: configPath}
}

// ConfigPath returns the backing config file path.
func (r *Registry) ConfigPath() string {
	return r.configPath
}

// Load reads and validates the named environment.
func (r *Registry) Load(name string) (*types.Environment, error) {
	if !types.IsKnownEnvironment(name) {
		return nil, errdefs.New(errdefs.CodeEnvironmentInvalid,
			fmt.Sprintf("unknown environment %q", name),
			fmt.Sprintf("use one of: %s", strings.Join(types.KnownEnvironments, ", ")))
	}

	envs, err := r.read()
	if err != nil {
		return nil, err
	}

	env, ok := envs[name]
	if !ok {
		return nil, errdefs.New(errdefs.CodeConfigurationRead,
			fmt.Sprintf("environment %q is not defined in %s", name, r.configPath),
			fmt.Sprintf("run: deployctl environment create %s", name))
	}
	env.Name = name

	if err := validateStructure(name, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// List returns summaries of all stored environments, sorted by name. A
// missing config file yields an empty list, not an error.
func (r *Registry) List() ([]types.EnvironmentSummary, error) {
	envs, err := r.read()
	if err != nil {
		if errdefs.HasCode(err, errdefs.CodeConfigurationMissing) {
			return []types.EnvironmentSummary{}, nil
		}
		return nil, err
	}

	summaries := make([]types.EnvironmentSummary, 0, len(envs))
	for name, env := range envs {
		summaries = append(summaries, types.EnvironmentSummary{
			Name:              name,
			DisplayName:       env.DisplayName,
			RenderServiceName: env.RenderServiceName,
			Region:            env.Region,
			Plan:              env.Plan,
			VarCount:          len(env.EnvVars),
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

// Create adds a new environment. It fails if the name is unknown, the
// environment already exists, or the definition is structurally invalid.
func (r *Registry) Create(name string, env types.Environment) error {
	if !types.IsKnownEnvironment(name) {
		return errdefs.New(errdefs.CodeEnvironmentInvalid,
			fmt.Sprintf("unknown environment %q", name),
			fmt.Sprintf("use one of: %s", strings.Join(types.KnownEnvironments, ", ")))
	}

	env.Name = name
	if err := validateStructure(name, &env); err != nil {
		return err
	}

	envs, err := r.read()
	if err != nil {
		if !errdefs.HasCode(err, errdefs.CodeConfigurationMissing) {
			return err
		}
		envs = map[string]types.Environment{}
	}

	if _, exists := envs[name]; exists {
		return errdefs.New(errdefs.CodeEnvironmentExists,
			fmt.Sprintf("environment %q already exists", name),
			fmt.Sprintf("update it instead: deployctl environment set %s KEY=VALUE", name))
	}

	envs[name] = env
	return r.write(envs)
}

// UpdateVariables merges vars into the named environment's variable set,
// preserving keys the patch does not mention. Failure conditions match Load.
func (r *Registry) UpdateVariables(name string, vars map[string]string) (*types.Environment, error) {
	if !types.IsKnownEnvironment(name) {
		return nil, errdefs.New(errdefs.CodeEnvironmentInvalid,
			fmt.Sprintf("unknown environment %q", name),
			fmt.Sprintf("use one of: %s", strings.Join(types.KnownEnvironments, ", ")))
	}

	envs, err := r.read()
	if err != nil {
		return nil, err
	}

	env, ok := envs[name]
	if !ok {
		return nil, errdefs.New(errdefs.CodeConfigurationRead,
			fmt.Sprintf("environment %q is not defined in %s", name, r.configPath),
			fmt.Sprintf("run: deployctl environment create %s", name))
	}

	if env.EnvVars == nil {
		env.EnvVars = map[string]string{}
	}
	for k, v := range vars {
		env.EnvVars[k] = v
	}
	env.Name = name
	envs[name] = env

	if err := r.write(envs); err != nil {
		return nil, err
	}
	return &env, nil
}

// MaskSensitive returns a copy of vars with values of sensitive-looking keys
// replaced by first4...last4 (or *** for short values). Non-sensitive values
// pass through unchanged.
func MaskSensitive(vars map[string]string) map[string]string {
	masked := make(map[string]string, len(vars))
	for k, v := range vars {
		if isSensitiveName(k) {
			masked[k] = maskValue(v)
		} else {
			masked[k] = v
		}
	}
	return masked
}

func isSensitiveName(name string) bool {
	upper := strings.ToUpper(name)
	for _, marker := range sensitiveMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

func maskValue(v string) string {
	if len(v) > 8 {
		return v[:4] + "..." + v[len(v)-4:]
	}
	return "***"
}

func validateStructure(name string, env *types.Environment) error {
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
		return errdefs.New(errdefs.CodeConfigurationRead,
			fmt.Sprintf("environment %q is missing required fields: %s", name, strings.Join(missing, ", ")),
			"add the missing fields to the environment config")
	}

	var missingVars []string
	for _, key := range types.RequiredEnvVars {
		if env.EnvVars[key] == "" {
			missingVars = append(missingVars, key)
		}
	}
	if len(missingVars) > 0 {
		return errdefs.New(errdefs.CodeConfigurationRead,
			fmt.Sprintf("environment %q is missing required variables: %s", name, strings.Join(missingVars, ", ")),
			fmt.Sprintf("set them: deployctl environment set %s KEY=VALUE", name))
	}
	return nil
}

func (r *Registry) read() (map[string]types.Environment, error) {
	data, err := os.ReadFile(r.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errdefs.New(errdefs.CodeConfigurationMissing,
				fmt.Sprintf("environment config not found at %s", r.configPath),
				"create an environment first: deployctl environment create <name>")
		}
		return nil, errdefs.Wrap(err, errdefs.CodeConfigurationRead,
			"failed to read environment config")
	}

	var envs map[string]types.Environment
	if err := json.Unmarshal(data, &envs); err != nil {
		return nil, errdefs.Wrap(err, errdefs.CodeConfigurationRead,
			"environment config is not valid JSON",
			fmt.Sprintf("inspect and fix %s", r.configPath))
	}
	return envs, nil
}

func (r *Registry) write(envs map[string]types.Environment) error {
	if err := os.MkdirAll(filepath.Dir(r.configPath), 0o755); err != nil {
		return errdefs.Wrap(err, errdefs.CodeConfigurationWrite,
			"failed to create config directory")
	}

	data, err := json.MarshalIndent(envs, "", "  ")
	if err != nil {
		return errdefs.Wrap(err, errdefs.CodeConfigurationWrite,
			"failed to encode environment config")
	}

	// 0600: the variable sets include secrets.
	if err := os.WriteFile(r.configPath, data, 0o600); err != nil {
		return errdefs.Wrap(err, errdefs.CodeConfigurationWrite,
			"failed to write environment config")
	}
	return nil
}
