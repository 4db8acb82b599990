package paths_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nova-dawn/token-guard/hooks/lib/paths"
)

func TestStateDir_HonorsOverride(t *testing.T) {
	t.Setenv("STATE_DIR_OVERRIDE", "/tmp/token-guard-state")
	assert.Equal(t, "/tmp/token-guard-state", paths.StateDir())
}

func TestConfigPath_HonorsOverride(t *testing.T) {
	t.Setenv("CONFIG_PATH_OVERRIDE", "/tmp/token-guard-config.json")
	assert.Equal(t, "/tmp/token-guard-config.json", paths.ConfigPath())
}

func TestHooksDir_HonorsOverride(t *testing.T) {
	t.Setenv("HOOKS_DIR_OVERRIDE", "/tmp/token-guard-hooks")
	assert.Equal(t, "/tmp/token-guard-hooks", paths.HooksDir())
}

func TestDerivedFileNames(t *testing.T) {
	t.Setenv("STATE_DIR_OVERRIDE", "/tmp/token-guard-state")

	assert.Equal(t, filepath.Join("/tmp/token-guard-state", "sess123.json"), paths.SpawnStateFile("sess123"))
	assert.Equal(t, filepath.Join("/tmp/token-guard-state", "sess123-reads.json"), paths.ReadStateFile("sess123"))
	assert.Equal(t, filepath.Join("/tmp/token-guard-state", "audit.jsonl"), paths.AuditLogFile())
	assert.Equal(t, filepath.Join("/tmp/token-guard-state", "self-heal.jsonl"), paths.HealLogFile())
	assert.Equal(t, filepath.Join("/tmp/token-guard-state", "agent-metrics.jsonl"), paths.MetricsLogFile())
}

func TestEnsureStateDir_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("STATE_DIR_OVERRIDE", filepath.Join(tmpDir, "nested", "session-state"))

	err := paths.EnsureStateDir()
	assert.NoError(t, err)
}
