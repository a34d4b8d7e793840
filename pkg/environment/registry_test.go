package environment

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stocksure/deployctl/pkg/errdefs"
	"github.com/stocksure/deployctl/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnv() types.Environment {
	return types.Environment{
		RenderServiceName: "stocksure-notify",
		Region:            "oregon",
		Plan:              "free",
		HealthCheckPath:   "/",
		EnvVars: map[string]string{
			"NODE_ENV":         "production",
			"PORT":             "10000",
			"ADMIN_SETUP_CODE": "setup-code-123",
		},
	}
}

func writeConfig(t *testing.T, path string, envs map[string]types.Environment) {
	t.Helper()
	data, err := json.Marshal(envs)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func TestLoadUnknownName(t *testing.T) {
	registry := NewRegistry(filepath.Join(t.TempDir(), "environments.json"))

	// Always the environment kind, even though the config file is also
	// absent here.
	_, err := registry.Load("qa")
	require.Error(t, err)
	assert.True(t, errdefs.HasCode(err, errdefs.CodeEnvironmentInvalid))
}

func TestLoadMissingConfig(t *testing.T) {
	registry := NewRegistry(filepath.Join(t.TempDir(), "environments.json"))

	_, err := registry.Load("production")
	require.Error(t, err)
	assert.True(t, errdefs.HasCode(err, errdefs.CodeConfigurationMissing))
}

func TestLoadAbsentEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "environments.json")
	writeConfig(t, path, map[string]types.Environment{"development": validEnv()})

	// Present config without the key is a read error, never the
	// invalid-environment kind.
	_, err := NewRegistry(path).Load("production")
	require.Error(t, err)
	assert.True(t, errdefs.HasCode(err, errdefs.CodeConfigurationRead))
}

func TestLoadValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "environments.json")
	writeConfig(t, path, map[string]types.Environment{"staging": validEnv()})

	env, err := NewRegistry(path).Load("staging")
	require.NoError(t, err)
	assert.Equal(t, "staging", env.Name)
	assert.Equal(t, "stocksure-notify", env.RenderServiceName)
}

func TestLoadStructurallyInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.Environment)
	}{
		{"missing service name", func(e *types.Environment) { e.RenderServiceName = "" }},
		{"missing region", func(e *types.Environment) { e.Region = "" }},
		{"missing required var", func(e *types.Environment) { delete(e.EnvVars, "PORT") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := validEnv()
			tt.mutate(&env)
			path := filepath.Join(t.TempDir(), "environments.json")
			writeConfig(t, path, map[string]types.Environment{"development": env})

			_, err := NewRegistry(path).Load("development")
			require.Error(t, err)
			assert.True(t, errdefs.HasCode(err, errdefs.CodeConfigurationRead))
		})
	}
}

func TestListMissingConfig(t *testing.T) {
	registry := NewRegistry(filepath.Join(t.TempDir(), "environments.json"))

	summaries, err := registry.List()
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestListSorted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "environments.json")
	writeConfig(t, path, map[string]types.Environment{
		"staging":     validEnv(),
		"development": validEnv(),
	})

	summaries, err := NewRegistry(path).List()
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "development", summaries[0].Name)
	assert.Equal(t, "staging", summaries[1].Name)
	assert.Equal(t, 3, summaries[0].VarCount)
}

func TestCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "environments.json")
	registry := NewRegistry(path)

	require.NoError(t, registry.Create("development", validEnv()))

	loaded, err := registry.Load("development")
	require.NoError(t, err)
	assert.Equal(t, "development", loaded.Name)

	// Duplicate create fails.
	err = registry.Create("development", validEnv())
	require.Error(t, err)
	assert.True(t, errdefs.HasCode(err, errdefs.CodeEnvironmentExists))
}

func TestCreateInvalid(t *testing.T) {
	registry := NewRegistry(filepath.Join(t.TempDir(), "environments.json"))

	err := registry.Create("qa", validEnv())
	assert.True(t, errdefs.HasCode(err, errdefs.CodeEnvironmentInvalid))

	env := validEnv()
	env.Plan = ""
	err = registry.Create("development", env)
	assert.True(t, errdefs.HasCode(err, errdefs.CodeConfigurationRead))
}

func TestUpdateVariablesMerges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "environments.json")
	writeConfig(t, path, map[string]types.Environment{"development": validEnv()})
	registry := NewRegistry(path)

	env, err := registry.UpdateVariables("development", map[string]string{
		"PORT":        "8080",
		"WEATHER_KEY": "abc123",
	})
	require.NoError(t, err)

	// Patched keys change, unspecified keys survive.
	assert.Equal(t, "8080", env.EnvVars["PORT"])
	assert.Equal(t, "abc123", env.EnvVars["WEATHER_KEY"])
	assert.Equal(t, "production", env.EnvVars["NODE_ENV"])

	reloaded, err := registry.Load("development")
	require.NoError(t, err)
	assert.Equal(t, "8080", reloaded.EnvVars["PORT"])
}

func TestUpdateVariablesFailures(t *testing.T) {
	registry := NewRegistry(filepath.Join(t.TempDir(), "environments.json"))

	_, err := registry.UpdateVariables("qa", map[string]string{"A": "1"})
	assert.True(t, errdefs.HasCode(err, errdefs.CodeEnvironmentInvalid))

	_, err = registry.UpdateVariables("development", map[string]string{"A": "1"})
	assert.True(t, errdefs.HasCode(err, errdefs.CodeConfigurationMissing))
}

func TestMaskSensitive(t *testing.T) {
	vars := map[string]string{
		"NODE_ENV":         "production",
		"PORT":             "10000",
		"ADMIN_SETUP_CODE": "super-secret-setup-code",
		"API_KEY":          "short",
		"WEATHER_TOKEN":    "tok_1234567890abcdef",
	}

	masked := MaskSensitive(vars)

	assert.Equal(t, "production", masked["NODE_ENV"])
	assert.Equal(t, "10000", masked["PORT"])
	assert.Equal(t, "supe...code", masked["ADMIN_SETUP_CODE"])
	assert.Equal(t, "***", masked["API_KEY"])
	assert.Equal(t, "tok_...cdef", masked["WEATHER_TOKEN"])

	// Input is untouched.
	assert.Equal(t, "super-secret-setup-code", vars["ADMIN_SETUP_CODE"])
}
