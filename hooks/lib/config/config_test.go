package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-dawn/token-guard/hooks/lib/config"
)

func TestDefaults_MatchesDocumentedValues(t *testing.T) {
	c := config.Defaults()

	assert.Equal(t, 5, c.MaxAgents)
	assert.Equal(t, 30, c.ParallelWindowSeconds)
	assert.Equal(t, 5, c.GlobalCooldownSeconds)
	assert.Equal(t, 1, c.MaxPerSubagentType)
	assert.Equal(t, 24, c.StateTTLHours)
	assert.True(t, c.AuditLog)
	assert.True(t, c.OnePerSessionSet["Explore"])
	assert.True(t, c.OnePerSessionSet["Plan"])
	assert.True(t, c.AlwaysAllowedSet["haiku"])
	assert.False(t, c.OnePerSessionSet["haiku"])
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	c := config.Load(filepath.Join(tmpDir, "absent.json"))
	assert.Equal(t, config.Defaults(), c)
}

func TestLoad_PartialOverlayKeepsOtherDefaults(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"max_agents": 8}`), 0644))

	c := config.Load(path)
	assert.Equal(t, 8, c.MaxAgents)
	assert.Equal(t, 30, c.ParallelWindowSeconds)
	assert.Equal(t, 24, c.StateTTLHours)
}

func TestLoad_MalformedFieldFallsBackToDefaultForThatField(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "config.json")
	// max_agents is a string instead of a number; one_per_session is fine.
	require.NoError(t, os.WriteFile(path, []byte(`{"max_agents": "lots", "one_per_session": ["Plan"]}`), 0644))

	c := config.Load(path)
	assert.Equal(t, 5, c.MaxAgents, "malformed field falls back to its default")
	assert.Equal(t, []string{"Plan"}, c.OnePerSession)
	assert.True(t, c.OnePerSessionSet["Plan"])
	assert.False(t, c.OnePerSessionSet["Explore"], "overlay replaces the whole slice, not merges it")
}

func TestLoad_CorruptedJSONFallsBackEntirely(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0644))

	c := config.Load(path)
	assert.Equal(t, config.Defaults(), c)
}

func TestLoad_SafeIntCoercesJSONNumbers(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"parallel_window_seconds": 45.0}`), 0644))

	c := config.Load(path)
	assert.Equal(t, 45, c.ParallelWindowSeconds)
}
