package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stocksure/deployctl/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testEnv() *types.Environment {
	return &types.Environment{
		Name:              "staging",
		RenderServiceName: "stocksure-staging",
		Region:            "oregon",
		Plan:              "free",
		Branch:            "develop",
		HealthCheckPath:   "/",
		EnvVars: map[string]string{
			"PORT":             "10000",
			"NODE_ENV":         "staging",
			"ADMIN_SETUP_CODE": "supersecret",
		},
	}
}

func TestNewBlueprint(t *testing.T) {
	b := NewBlueprint(testEnv())

	require.Len(t, b.Services, 1)
	svc := b.Services[0]
	assert.Equal(t, "web", svc.Type)
	assert.Equal(t, "stocksure-staging", svc.Name)
	assert.Equal(t, "node", svc.Env)
	assert.Equal(t, "oregon", svc.Region)
	assert.Equal(t, "free", svc.Plan)
	assert.Equal(t, "develop", svc.Branch)
	assert.Equal(t, "npm install", svc.BuildCommand)
	assert.Equal(t, "npm start", svc.StartCommand)
}

func TestNewBlueprintVarOrder(t *testing.T) {
	b := NewBlueprint(testEnv())

	vars := b.Services[0].EnvVars
	require.Len(t, vars, 4)
	// Sorted keys first, credential entry last.
	assert.Equal(t, "ADMIN_SETUP_CODE", vars[0].Key)
	assert.Equal(t, "NODE_ENV", vars[1].Key)
	assert.Equal(t, "PORT", vars[2].Key)
	assert.Equal(t, CredentialEnvVar, vars[3].Key)
}

func TestNewBlueprintCredentialNeverSynced(t *testing.T) {
	env := testEnv()
	// Even a configured value must not be written into the descriptor.
	env.EnvVars[CredentialEnvVar] = `{"type":"service_account"}`

	b := NewBlueprint(env)

	var credential *EnvVar
	for i := range b.Services[0].EnvVars {
		if b.Services[0].EnvVars[i].Key == CredentialEnvVar {
			credential = &b.Services[0].EnvVars[i]
		}
	}
	require.NotNil(t, credential)
	assert.Empty(t, credential.Value)
	require.NotNil(t, credential.Sync)
	assert.False(t, *credential.Sync)

	data, err := b.Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "service_account")
	assert.Contains(t, string(data), "sync: false")
}

func TestNewBlueprintDefaultHealthPath(t *testing.T) {
	env := testEnv()
	env.HealthCheckPath = ""

	b := NewBlueprint(env)
	assert.Equal(t, "/", b.Services[0].HealthCheckPath)
}

func TestMarshalRoundTrip(t *testing.T) {
	b := NewBlueprint(testEnv())

	data, err := b.Marshal()
	require.NoError(t, err)

	var decoded Blueprint
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, b.Services[0].Name, decoded.Services[0].Name)
	assert.Len(t, decoded.Services[0].EnvVars, 4)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "render.yaml")
	b := NewBlueprint(testEnv())

	require.NoError(t, b.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: stocksure-staging")
}

func TestServiceURL(t *testing.T) {
	url := ServiceURL(testEnv())
	assert.Equal(t, "https://stocksure-staging.onrender.com", url)
}
