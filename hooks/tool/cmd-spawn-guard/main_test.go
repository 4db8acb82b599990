package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sweepStaleState is the only piece of this binary's logic that doesn't
// terminate the process directly (spawnGuard and spawnGuardTeamPath call
// os.Exit on every path, the way hooks/tool/cmd-pre-use's pre-use.go does),
// so it's the one exercised here as a unit; the rule-cascade behavior it
// depends on is covered in hooks/lib/guard's own tests.
func TestSweepStaleState_RemovesOldFilesButKeepsAuditLog(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("STATE_DIR_OVERRIDE", tmpDir)

	oldSession := filepath.Join(tmpDir, "old-session.json")
	freshSession := filepath.Join(tmpDir, "fresh-session.json")
	auditLog := filepath.Join(tmpDir, "audit.jsonl")

	require.NoError(t, os.WriteFile(oldSession, []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(freshSession, []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(auditLog, []byte("{}\n"), 0644))

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldSession, old, old))
	require.NoError(t, os.Chtimes(auditLog, old, old))

	sweepStaleState(24)

	_, err := os.Stat(oldSession)
	assert.True(t, os.IsNotExist(err), "stale session file should be swept")

	_, err = os.Stat(freshSession)
	assert.NoError(t, err, "fresh session file should survive the sweep")

	_, err = os.Stat(auditLog)
	assert.NoError(t, err, "audit log must never be swept regardless of age")
}

func TestPrintTopN_NoopOnEmptyEntries(t *testing.T) {
	assert.NotPanics(t, func() { printTopN("by type", nil) })
}
