package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/stocksure/deployctl/pkg/errdefs"
	"github.com/stocksure/deployctl/pkg/types"
	"gopkg.in/yaml.v3"
)

// CredentialEnvVar carries the service-account blob. It is always emitted
// with sync disabled: the value is supplied manually out of band and must
// never land in the generated file.
const CredentialEnvVar = "FIREBASE_SERVICE_ACCOUNT"

// EnvVar is one environment variable entry in the blueprint. Entries are
// either {key, value} or {key, sync: false}.
type EnvVar struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value,omitempty"`
	Sync  *bool  `yaml:"sync,omitempty"`
}

// Service is one web-service block in the blueprint.
type Service struct {
	Type            string   `yaml:"type"`
	Name            string   `yaml:"name"`
	Env             string   `yaml:"env"`
	Region          string   `yaml:"region"`
	Plan            string   `yaml:"plan"`
	Branch          string   `yaml:"branch,omitempty"`
	BuildCommand    string   `yaml:"buildCommand"`
	StartCommand    string   `yaml:"startCommand"`
	HealthCheckPath string   `yaml:"healthCheckPath"`
	EnvVars         []EnvVar `yaml:"envVars"`
}

// Blueprint is the generated Render service descriptor (render.yaml).
type Blueprint struct {
	Services []Service `yaml:"services"`
}

// NewBlueprint builds the descriptor for one environment. Variables are
// emitted in sorted key order so regeneration is diff-stable.
func NewBlueprint(env *types.Environment) *Blueprint {
	healthPath := env.HealthCheckPath
	if healthPath == "" {
		healthPath = "/"
	}

	keys := make([]string, 0, len(env.EnvVars))
	for k := range env.EnvVars {
		if k == CredentialEnvVar {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vars := make([]EnvVar, 0, len(keys)+1)
	for _, k := range keys {
		vars = append(vars, EnvVar{Key: k, Value: env.EnvVars[k]})
	}
	noSync := false
	vars = append(vars, EnvVar{Key: CredentialEnvVar, Sync: &noSync})

	return &Blueprint{
		Services: []Service{{
			Type:            "web",
			Name:            env.RenderServiceName,
			Env:             "node",
			Region:          env.Region,
			Plan:            env.Plan,
			Branch:          env.Branch,
			BuildCommand:    "npm install",
			StartCommand:    "npm start",
			HealthCheckPath: healthPath,
			EnvVars:         vars,
		}},
	}
}

// Marshal renders the blueprint as YAML.
func (b *Blueprint) Marshal() ([]byte, error) {
	return yaml.Marshal(b)
}

// WriteFile writes the blueprint to path, creating directories as needed.
func (b *Blueprint) WriteFile(path string) error {
	data, err := b.Marshal()
	if err != nil {
		return errdefs.Wrap(err, errdefs.CodeConfigurationWrite,
			"failed to encode service descriptor")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errdefs.Wrap(err, errdefs.CodeConfigurationWrite,
			"failed to create descriptor directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errdefs.Wrap(err, errdefs.CodeConfigurationWrite,
			fmt.Sprintf("failed to write %s", path))
	}
	return nil
}

// ServiceURL derives the public URL of an environment's Render service.
func ServiceURL(env *types.Environment) string {
	return fmt.Sprintf("https://%s.onrender.com", env.RenderServiceName)
}
