package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureInit(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Init(Config{Level: level, JSONOutput: true, Output: &buf})
	return &buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &record))
	return record
}

func TestChildLoggerFields(t *testing.T) {
	buf := captureInit(t, InfoLevel)

	l := WithComponent("orchestrator")
	l.Info().Msg("phase started")
	assert.Equal(t, "orchestrator", lastRecord(t, buf)["component"])

	l = WithEnvironment("staging")
	l.Info().Msg("environment loaded")
	assert.Equal(t, "staging", lastRecord(t, buf)["environment"])

	l = WithDeploymentID("deploy-1756600000000-a1b2")
	l.Info().Msg("deployment recorded")
	assert.Equal(t, "deploy-1756600000000-a1b2", lastRecord(t, buf)["deployment_id"])
}

func TestErrorfCarriesError(t *testing.T) {
	buf := captureInit(t, InfoLevel)

	Errorf("failed to open session log", errors.New("permission denied"))

	record := lastRecord(t, buf)
	assert.Equal(t, "error", record["level"])
	assert.Equal(t, "permission denied", record["error"])
	assert.Equal(t, "failed to open session log", record["message"])
}

func TestLevelFiltering(t *testing.T) {
	buf := captureInit(t, InfoLevel)
	l := WithComponent("validator")
	l.Debug().Msg("suppressed")
	assert.Empty(t, buf.Bytes())

	buf = captureInit(t, DebugLevel)
	l = WithComponent("validator")
	l.Debug().Msg("emitted")
	assert.Equal(t, "validator", lastRecord(t, buf)["component"])
}
