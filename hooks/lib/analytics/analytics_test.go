package analytics_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-dawn/token-guard/hooks/lib/analytics"
	"github.com/nova-dawn/token-guard/hooks/lib/audit"
)

func writeAuditLog(t *testing.T, path string) {
	t.Helper()
	rec1 := audit.NewRecord(audit.EventAllow, "Explore", "explore the repo", "session-one")
	rec2 := audit.NewRecord(audit.EventBlock, "Explore", "explore again", "session-one")
	rec2.Reason = "one_per_session: Explore already ran this session"
	rec3 := audit.NewRecord(audit.EventBlock, "general-purpose", "search for a function", "session-two")
	rec3.Reason = "necessity: search_grep"
	rec3.Pattern = "search_grep"
	rec4 := audit.NewRecord(audit.EventAllowTeam, "general-purpose", "team task", "session-two")

	audit.Append(path, rec1)
	audit.Append(path, rec2)
	audit.Append(path, rec3)
	audit.Append(path, rec4)
}

func TestBuildReport_FoldsAuditLogByEvent(t *testing.T) {
	tmpDir := t.TempDir()
	auditPath := filepath.Join(tmpDir, "audit.jsonl")
	metricsPath := filepath.Join(tmpDir, "agent-metrics.jsonl") // intentionally absent

	writeAuditLog(t, auditPath)

	r := analytics.BuildReport(auditPath, metricsPath)

	assert.Equal(t, 1, r.Allow)
	assert.Equal(t, 2, r.Block)
	assert.Equal(t, 1, r.Team)
	assert.Equal(t, 0, r.Resume)
	assert.Nil(t, r.Real, "metrics log doesn't exist, Real should stay nil")
	assert.Greater(t, r.EstTokensSaved, 0)
	assert.Greater(t, r.EstCostSavedUSD, 0.0)
}

func TestBuildReport_IncludesRealTotalsWhenMetricsLogExists(t *testing.T) {
	tmpDir := t.TempDir()
	auditPath := filepath.Join(tmpDir, "audit.jsonl")
	metricsPath := filepath.Join(tmpDir, "agent-metrics.jsonl")

	writeAuditLog(t, auditPath)
	require.NoError(t, os.WriteFile(metricsPath, []byte(
		`{"ts":"2026-01-01T00:00:00Z","event":"agent_completed","agent_type":"Explore","agent_id":"a1","session":"sess1234","input_tokens":100,"output_tokens":50,"cache_read_tokens":0,"cache_creation_tokens":0,"api_calls":1,"total_tokens":150,"cost_usd":0.0009}
`), 0644))

	r := analytics.BuildReport(auditPath, metricsPath)

	require.NotNil(t, r.Real)
	assert.Equal(t, 100, r.Real.InputTokens)
	assert.Equal(t, 50, r.Real.OutputTokens)
	assert.Equal(t, 1, r.Real.APICalls)
}

func TestBuildUsage_CountsDistinctSessions(t *testing.T) {
	tmpDir := t.TempDir()
	auditPath := filepath.Join(tmpDir, "audit.jsonl")
	writeAuditLog(t, auditPath)

	u := analytics.BuildUsage(auditPath)

	assert.Equal(t, 2, u.SessionsTracked)
	assert.Equal(t, 4, u.TotalAttempts)
	assert.Equal(t, 2, u.BlockCount)
	assert.NotEmpty(t, u.TopBlockReasons)
	assert.LessOrEqual(t, len(u.TopBlockReasons), 3)
}

func TestBuildReport_EmptyLogsProduceZeroedReport(t *testing.T) {
	tmpDir := t.TempDir()
	r := analytics.BuildReport(filepath.Join(tmpDir, "absent.jsonl"), filepath.Join(tmpDir, "absent-metrics.jsonl"))

	assert.Equal(t, 0, r.Allow)
	assert.Equal(t, 0, r.Block)
	assert.Nil(t, r.Real)
	assert.Equal(t, 0, r.EstTokensSaved)
}
