package heal_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-dawn/token-guard/hooks/lib/heal"
)

func TestRun_ReportsMissingHooksAndRegeneratesConfig(t *testing.T) {
	tmpDir := t.TempDir()
	hooksDir := filepath.Join(tmpDir, "hooks") // deliberately never populated
	stateDir := filepath.Join(tmpDir, "state")
	configPath := filepath.Join(tmpDir, "token-guard-config.json")

	report := heal.Run(hooksDir, stateDir, configPath)

	require.NotEmpty(t, report.RunID)
	assert.NotEmpty(t, report.Timestamp)
	assert.Greater(t, report.Checks, 0)
	assert.Greater(t, report.Repairs, 0, "missing state dir and missing config should both be auto-repaired")

	foundMissingSpawnGuard := false
	foundRegeneratedConfig := false
	for _, a := range report.Actions {
		if a == "MISSING: spawn-guard" {
			foundMissingSpawnGuard = true
		}
		if a == "regenerated config from defaults" {
			foundRegeneratedConfig = true
		}
	}
	assert.True(t, foundMissingSpawnGuard)
	assert.True(t, foundRegeneratedConfig)

	_, err := os.Stat(stateDir)
	assert.NoError(t, err, "auto-repair should have recreated the state directory")

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	var cfg map[string]any
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.Contains(t, cfg, "max_agents")
}

func TestRun_AppendsOneLineToSelfHealLog(t *testing.T) {
	tmpDir := t.TempDir()
	stateDir := filepath.Join(tmpDir, "state")
	require.NoError(t, os.MkdirAll(stateDir, 0755))

	heal.Run(filepath.Join(tmpDir, "hooks"), stateDir, filepath.Join(tmpDir, "config.json"))

	data, err := os.ReadFile(filepath.Join(stateDir, "self-heal.jsonl"))
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRun_DeletesCorruptedStateFileAndStaleLock(t *testing.T) {
	tmpDir := t.TempDir()
	stateDir := filepath.Join(tmpDir, "state")
	require.NoError(t, os.MkdirAll(stateDir, 0755))

	corrupted := filepath.Join(stateDir, "sess-corrupt.json")
	require.NoError(t, os.WriteFile(corrupted, []byte("{not valid json"), 0644))

	staleLock := filepath.Join(stateDir, "sess-stale.json.lock")
	require.NoError(t, os.WriteFile(staleLock, []byte(""), 0644))
	old := time.Now().Add(-10 * time.Minute)
	require.NoError(t, os.Chtimes(staleLock, old, old))

	orphanTmp := filepath.Join(stateDir, "sess.abc123.tmp")
	require.NoError(t, os.WriteFile(orphanTmp, []byte(""), 0644))

	heal.Run(filepath.Join(tmpDir, "hooks"), stateDir, filepath.Join(tmpDir, "config.json"))

	_, err := os.Stat(corrupted)
	assert.True(t, os.IsNotExist(err), "corrupted state file should be deleted")

	_, err = os.Stat(staleLock)
	assert.True(t, os.IsNotExist(err), "stale lock file should be deleted")

	_, err = os.Stat(orphanTmp)
	assert.True(t, os.IsNotExist(err), "orphaned tmp file should be deleted")
}
