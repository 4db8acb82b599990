package audit_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-dawn/token-guard/hooks/lib/audit"
)

func TestNewRecord_TruncatesDescAndSession(t *testing.T) {
	longDesc := strings.Repeat("x", 120)
	longSession := strings.Repeat("s", 40)

	rec := audit.NewRecord(audit.EventAllow, "Explore", longDesc, longSession)

	assert.Len(t, rec.Desc, 80)
	assert.Len(t, rec.Session, 12)
	assert.Equal(t, audit.EventAllow, rec.Event)
	assert.NotEmpty(t, rec.Timestamp)
}

func TestAppend_CreatesFileAndAppendsJSONLine(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "audit-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "audit.jsonl")
	rec1 := audit.NewRecord(audit.EventAllow, "Explore", "explore the repo", "session-one")
	rec2 := audit.NewRecord(audit.EventBlock, "Explore", "explore again", "session-one")
	rec2.Reason = "one_per_session: Explore already ran this session"

	audit.Append(path, rec1)
	audit.Append(path, rec2)

	got := audit.ReadJSONLFaultTolerant(path)
	require.Len(t, got, 2)
	assert.Equal(t, audit.EventAllow, got[0].Event)
	assert.Equal(t, audit.EventBlock, got[1].Event)
	assert.Equal(t, rec2.Reason, got[1].Reason)
}

func TestReadJSONLFaultTolerant_SkipsMalformedLines(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "audit-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "audit.jsonl")
	content := `{"ts":"2026-01-01T00:00:00+00:00","event":"allow","type":"Explore","desc":"d","session":"s"}
not json at all
{"ts":"2026-01-01T00:01:00+00:00","event":"block","type":"Plan","desc":"d2","session":"s"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	got := audit.ReadJSONLFaultTolerant(path)
	require.Len(t, got, 2)
	assert.Equal(t, audit.EventAllow, got[0].Event)
	assert.Equal(t, audit.EventBlock, got[1].Event)
}

func TestReadJSONLFaultTolerant_MissingFileReturnsEmpty(t *testing.T) {
	got := audit.ReadJSONLFaultTolerant(filepath.Join(os.TempDir(), "does-not-exist-audit.jsonl"))
	assert.Empty(t, got)
}

func TestCountLines(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "audit-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "audit.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\nc\n"), 0644))

	assert.Equal(t, 3, audit.CountLines(path))
	assert.Equal(t, 0, audit.CountLines(filepath.Join(tmpDir, "absent.jsonl")))
}

func TestRotate_MovesCurrentToBackupClobberingExisting(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "audit-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "audit.jsonl")
	backup := path + ".1"
	require.NoError(t, os.WriteFile(path, []byte("current\n"), 0644))
	require.NoError(t, os.WriteFile(backup, []byte("stale backup\n"), 0644))

	audit.Rotate(path)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "current\n", string(data))
}
