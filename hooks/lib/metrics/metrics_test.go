package metrics_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-dawn/token-guard/hooks/lib/metrics"
)

func TestParseTranscript_SumsUsageAcrossLines(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "transcript.jsonl")
	content := `{"message":{"usage":{"input_tokens":100,"output_tokens":50,"cache_read_input_tokens":10,"cache_creation_input_tokens":5}}}
{"message":{"role":"user"}}
{"message":{"usage":{"input_tokens":200,"output_tokens":75}}}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	totals := metrics.ParseTranscript(path)

	assert.Equal(t, 300, totals.InputTokens)
	assert.Equal(t, 125, totals.OutputTokens)
	assert.Equal(t, 10, totals.CacheReadTokens)
	assert.Equal(t, 5, totals.CacheCreationTokens)
	assert.Equal(t, 2, totals.APICalls)
}

func TestParseTranscript_MissingFileReturnsZeroTotals(t *testing.T) {
	totals := metrics.ParseTranscript(filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.Equal(t, metrics.Totals{}, totals)
}

func TestParseTranscript_EmptyPathReturnsZeroTotals(t *testing.T) {
	totals := metrics.ParseTranscript("")
	assert.Equal(t, metrics.Totals{}, totals)
}

func TestParseTranscript_SkipsMalformedLines(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "transcript.jsonl")
	content := "not json\n{\"message\":{\"usage\":{\"input_tokens\":10,\"output_tokens\":5}}}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	totals := metrics.ParseTranscript(path)
	assert.Equal(t, 10, totals.InputTokens)
	assert.Equal(t, 1, totals.APICalls)
}

func TestCost_AppliesCacheDiscountAndFloorsAtZero(t *testing.T) {
	totals := metrics.Totals{InputTokens: 1000, CacheReadTokens: 1000, OutputTokens: 1000}
	cost := metrics.Cost(totals)
	// fresh input is 0 (all cache-read), so cost is cache-read rate + output rate.
	assert.Equal(t, 0.0153, cost)
}

func TestCost_FreshInputAtInputRate(t *testing.T) {
	totals := metrics.Totals{InputTokens: 1000, OutputTokens: 0}
	assert.Equal(t, 0.003, metrics.Cost(totals))
}

func TestNewRecord_TotalTokensIsInputPlusOutput(t *testing.T) {
	rec := metrics.NewRecord("Explore", "agent-1", "sess1234", metrics.Totals{InputTokens: 100, OutputTokens: 50})
	assert.Equal(t, 150, rec.TotalTokens)
	assert.Equal(t, "agent_completed", rec.Event)
}

func TestAppend_TruncatesOnceOverThreshold(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "agent-metrics.jsonl")

	// 501 appends: the 501st line triggers the over-threshold truncation to
	// the most recent 400 lines, so the count lands exactly on 400 rather
	// than somewhere above it that depends on how many appends follow.
	for i := 0; i < 501; i++ {
		rec := metrics.NewRecord("Explore", "agent-"+strconv.Itoa(i), "sess1234", metrics.Totals{InputTokens: 1})
		metrics.Append(path, rec)
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lineCount := 0
	for _, b := range data {
		if b == '\n' {
			lineCount++
		}
	}
	assert.Equal(t, 400, lineCount)
}
