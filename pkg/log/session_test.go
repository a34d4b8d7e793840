package log

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func todayLogPath(dir string) string {
	return filepath.Join(dir, fmt.Sprintf("deploy-%s.log", time.Now().Format("2006-01-02")))
}

func TestSessionWritesDailyFile(t *testing.T) {
	dir := t.TempDir()

	s, err := NewSession(dir)
	require.NoError(t, err)
	s.Info("deploy_start", "starting deployment")
	s.Error("deploy_failed", "deployment failed", errors.New("boom"))
	require.NoError(t, s.Close())

	records, err := ReadSessionLines(todayLogPath(dir))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "deploy_start", records[0]["event_type"])
	assert.Equal(t, s.ID, records[0]["session_id"])

	assert.Equal(t, "deploy_failed", records[1]["event_type"])
	assert.Equal(t, "boom", records[1]["error"])
	assert.Equal(t, "error", records[1]["level"])

	assert.Equal(t, "session_summary", records[2]["event_type"])
	assert.EqualValues(t, 1, records[2]["info_count"])
	assert.EqualValues(t, 1, records[2]["error_count"])
}

func TestSessionsAppendToSameFile(t *testing.T) {
	dir := t.TempDir()

	first, err := NewSession(dir)
	require.NoError(t, err)
	first.Info("deploy_start", "one")
	require.NoError(t, first.Close())

	second, err := NewSession(dir)
	require.NoError(t, err)
	second.Info("deploy_start", "two")
	require.NoError(t, second.Close())

	assert.NotEqual(t, first.ID, second.ID)

	records, err := ReadSessionLines(todayLogPath(dir))
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, first.ID, records[0]["session_id"])
	assert.Equal(t, second.ID, records[2]["session_id"])
}

func TestReadSessionLinesFiltersSeparators(t *testing.T) {
	dir := t.TempDir()

	s, err := NewSession(dir)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	data, err := os.ReadFile(todayLogPath(dir))
	require.NoError(t, err)
	assert.Contains(t, string(data), `{"separator":"---"}`)

	records, err := ReadSessionLines(todayLogPath(dir))
	require.NoError(t, err)
	for _, r := range records {
		assert.NotContains(t, r, "separator")
	}
}

func TestSessionEventFields(t *testing.T) {
	dir := t.TempDir()

	s, err := NewSession(dir)
	require.NoError(t, err)
	s.Event(WarnLevel, "health_degraded", "service slow", map[string]string{
		"environment": "staging",
		"url":         "https://stocksure-staging.onrender.com",
	})
	require.NoError(t, s.Close())

	records, err := ReadSessionLines(todayLogPath(dir))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "warn", records[0]["level"])
	assert.Equal(t, "staging", records[0]["environment"])
	assert.Equal(t, "https://stocksure-staging.onrender.com", records[0]["url"])
}
