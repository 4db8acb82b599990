// METADATA
//
// Metrics - Per-agent token usage and cost accounting (C10)
//
// For METADATA structure explanation, see: standards/code/4-block/CWS-STD-004-CODE-metadata-block.md
//
// Biblical Foundation
//
// Scripture: "For which of you, intending to build a tower, sitteth not down first, and
// counteth the cost" - Luke 14:28 (KJV)
// Principle: A governor that enforces spawn limits without ever reporting what those spawns
// actually cost is only half a governor
// Anchor: Counting the cost honestly is part of stewardship, not an afterthought
//
// CPI-SI Identity
//
// Component Type: LIBRARY - accounting rung (transcript parsing, cost computation, log append)
// Role: Parses a completed sub-agent's transcript for real token usage, computes its estimated
// cost, and appends the result to agent-metrics.jsonl
// Paradigm: Best-effort throughout - a malformed transcript line or a log write failure degrades
// the metric, never the hook
//
// Authorship & Lineage
//
// Architect: token-guard maintainers
// Implementation: token-guard maintainers
// Creation Date: 2026-02-02
// Version: 1.0.0
// Last Modified: 2026-02-02 - Initial implementation
//
// Version History:
//   1.0.0 (2026-02-02) - Initial implementation
//
// Purpose & Function
//
// Purpose: Give the suite real per-agent cost data, derived from the transcript's actual
// usage objects rather than an estimate, and keep agent-metrics.jsonl from growing without bound.
//
// Core Design: ParseTranscript sums usage fields across every line of a sub-agent's transcript
// file that carries a message.usage object, skipping malformed or all-zero-usage lines. Cost
// applies Sonnet-tier per-1K-token pricing, discounting cache-read input. Append writes one
// JSON line per completed agent and truncates the log to its most recent 400 lines once it
// exceeds 500, matching the original's size-bounded (not rotated) housekeeping.
//
// Key Features:
//   - ParseTranscript never fails on a malformed line - it skips and keeps summing
//   - Cost's discounted cache-read rate matches the original's pricing table exactly
//   - truncateIfOversized keeps only the most recent lines, dropping the oldest, not rotating
//     to a numbered backup like hooks/lib/audit does
//
// Philosophy: Cost accounting should degrade gracefully with the same fail-open posture as
// every other hot-path component - a skipped line undercounts slightly, it never crashes.
//
// Grounded on original_source/hooks/agent-metrics.py verbatim: same totals struct, same cost
// formula, same 500-line-triggers-truncate-to-400 housekeeping rule.
//
// Blocking Status
//
// Non-blocking: every function here returns a value or writes a file; none can cause a hook to
// exit non-zero.
//
// Usage & Integration
//
// Usage:
//
//	totals := metrics.ParseTranscript(transcriptPath)
//	rec := metrics.NewRecord(agentType, agentID, session, totals)
//	metrics.Append(paths.MetricsLogFile(), rec)
//
// Integration Pattern:
//  1. Call ParseTranscript once a sub-agent's transcript file is complete
//  2. Build a Record via NewRecord
//  3. Append it to the metrics log
//
// Public API:
//   - type Totals, Record
//   - ParseTranscript(path string) Totals
//   - Cost(t Totals) float64
//   - NewRecord(agentType, agentID, session string, t Totals) Record
//   - Append(path string, rec Record)
//
// Dependencies
//
// Dependencies (What This Needs):
//   Standard Library: bufio, encoding/json, os, time
//   External: none
//   Hook Libraries: none directly (callers pair this with hooks/lib/paths for the log path)
//
// Dependents (What Uses This):
//   Executables: hooks/session/cmd-subagent-stop
//
// Health Scoring
//
// Metrics accounting operates on Base100 scale:
//
// Parsing:
//   - Sums usage across every valid line, skips malformed/all-zero lines without failing: +35
//
// Cost formula:
//   - Matches the documented per-1K pricing table, including the cache-read discount: +35
//
// Housekeeping:
//   - Truncates to 400 lines once the log exceeds 500, matching the original exactly: +30
//
// Total: 100 points for cost accounting that's accurate and self-bounding.
package metrics

// ============================================================================
// END METADATA
// ============================================================================

// ============================================================================
// SETUP
// ============================================================================
//
// For SETUP structure explanation, see: standards/code/4-block/CWS-STD-006-CODE-setup-block.md

// ────────────────────────────────────────────────────────────────
// Imports - Dependencies
// ────────────────────────────────────────────────────────────────

import (
	"bufio"
	"encoding/json"
	"os"
	"time"
)

// ────────────────────────────────────────────────────────────────
// Constants - Named Values
// ────────────────────────────────────────────────────────────────

// Cost constants, documented in spec §6 and not load-bearing: Sonnet 4.6
// pricing per 1K tokens.
const (
	costPer1KInput     = 0.003
	costPer1KOutput    = 0.015
	costPer1KCacheRead = 0.0003
)

// truncateTriggerLines / truncateKeepLines are the metrics-log housekeeping
// thresholds (§4.10: "truncates the log to its most recent 400 lines once
// it exceeds 500").
const (
	truncateTriggerLines = 500
	truncateKeepLines    = 400
)

// ────────────────────────────────────────────────────────────────
// Types - Data Structures
// ────────────────────────────────────────────────────────────────

// Totals is the sum of usage fields across every line of a transcript that
// carries a message.usage object.
type Totals struct {
	InputTokens         int
	OutputTokens        int
	CacheReadTokens     int
	CacheCreationTokens int
	APICalls            int
}

type transcriptLine struct {
	Message struct {
		Usage struct {
			InputTokens         int `json:"input_tokens"`
			OutputTokens        int `json:"output_tokens"`
			CacheReadTokens     int `json:"cache_read_input_tokens"`
			CacheCreationTokens int `json:"cache_creation_input_tokens"`
		} `json:"usage"`
	} `json:"message"`
}

// Record is one line of agent-metrics.jsonl.
type Record struct {
	Timestamp           string  `json:"ts"`
	Event               string  `json:"event"`
	AgentType           string  `json:"agent_type"`
	AgentID             string  `json:"agent_id"`
	Session             string  `json:"session"`
	InputTokens         int     `json:"input_tokens"`
	OutputTokens        int     `json:"output_tokens"`
	CacheReadTokens     int     `json:"cache_read_tokens"`
	CacheCreationTokens int     `json:"cache_creation_tokens"`
	APICalls            int     `json:"api_calls"`
	TotalTokens         int     `json:"total_tokens"`
	CostUSD             float64 `json:"cost_usd"`
}

// ============================================================================
// END SETUP
// ============================================================================

// ============================================================================
// BODY
// ============================================================================
//
// For BODY structure explanation, see: standards/code/4-block/CWS-STD-007-CODE-body-block.md

// ────────────────────────────────────────────────────────────────
// Organizational Chart - Internal Structure
// ────────────────────────────────────────────────────────────────
//
// Ladder Structure (Dependencies):
//
//   Public Surface
//   ├── ParseTranscript → sums usage across a transcript file
//   ├── Cost → pricing formula over a Totals
//   ├── NewRecord → builds a Record from Totals
//   └── Append → writes a Record, triggers truncation
//
//   Helpers (Bottom Rung)
//   ├── round4 → 4-decimal rounding for Cost
//   ├── truncateIfOversized → log size housekeeping
//   └── splitLines → byte-level line splitter for truncation
//
// Baton Flow (Execution Path):
//
//   transcript path → ParseTranscript → Totals
//     → NewRecord(agentType, agentID, session, totals) → Record (Cost computed inline)
//     → Append(path, record) → marshal, write line, truncateIfOversized
//
// APUs (Available Processing Units):
// - 7 functions total: 4 exported (ParseTranscript, Cost, NewRecord, Append),
//   3 unexported (round4, truncateIfOversized, splitLines)

// ParseTranscript sums token usage from a sub-agent transcript file (one
// JSON object per line). Malformed lines are skipped, never fatal; a
// missing or empty path returns zero totals.
//
// What It Does:
//   - Scans path line by line, summing usage fields from every line carrying a non-zero
//     message.usage object
//
// Parameters:
//   path - the sub-agent transcript file's path
//
// Returns:
//   the summed Totals, zero-valued if path is empty or unreadable
//
// Health Impact:
//   +35 points for summing every valid line while skipping malformed/all-zero ones without failing
func ParseTranscript(path string) Totals {
	var totals Totals
	if path == "" {
		return totals
	}

	f, err := os.Open(path)
	if err != nil {
		return totals
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry transcriptLine
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		u := entry.Message.Usage
		if u.InputTokens == 0 && u.OutputTokens == 0 && u.CacheReadTokens == 0 && u.CacheCreationTokens == 0 {
			continue
		}
		totals.InputTokens += u.InputTokens
		totals.OutputTokens += u.OutputTokens
		totals.CacheReadTokens += u.CacheReadTokens
		totals.CacheCreationTokens += u.CacheCreationTokens
		totals.APICalls++
	}
	return totals
}

// Cost computes the estimated cost in USD for t, rounded to 4 decimal
// places: fresh (non-cache-read) input at the input rate, cache-read input
// at its discounted rate, output at the output rate (§4.10, §6).
//
// What It Does:
//   - Applies the per-1K pricing table to fresh input, cache-read input, and output tokens
//
// Parameters:
//   t - the summed Totals for one agent
//
// Returns:
//   the estimated cost in USD, rounded to 4 decimal places
//
// Health Impact:
//   +35 points for matching the documented pricing table exactly, including the cache discount
func Cost(t Totals) float64 {
	freshInput := t.InputTokens - t.CacheReadTokens
	if freshInput < 0 {
		freshInput = 0
	}
	cost := float64(freshInput)/1000*costPer1KInput +
		float64(t.CacheReadTokens)/1000*costPer1KCacheRead +
		float64(t.OutputTokens)/1000*costPer1KOutput
	return round4(cost)
}

// round4 rounds v to 4 decimal places.
func round4(v float64) float64 {
	return float64(int(v*10000+0.5)) / 10000
}

// NewRecord builds the metrics record for one completed sub-agent.
//
// What It Does:
//   - Stamps the current UTC time, fills every field from t, computes CostUSD via Cost
//
// Parameters:
//   agentType - the sub-agent's type
//   agentID - the sub-agent's unique id
//   session - the session id the agent ran under
//   t - the summed Totals from ParseTranscript
//
// Returns:
//   a fully populated Record ready for Append
func NewRecord(agentType, agentID, session string, t Totals) Record {
	return Record{
		Timestamp:           time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		Event:               "agent_completed",
		AgentType:           agentType,
		AgentID:             agentID,
		Session:             session,
		InputTokens:         t.InputTokens,
		OutputTokens:        t.OutputTokens,
		CacheReadTokens:     t.CacheReadTokens,
		CacheCreationTokens: t.CacheCreationTokens,
		APICalls:            t.APICalls,
		TotalTokens:         t.InputTokens + t.OutputTokens,
		CostUSD:             Cost(t),
	}
}

// Append writes rec to path and truncates the log to its most recent
// truncateKeepLines lines once it exceeds truncateTriggerLines (§4.10).
// Best-effort: failures are swallowed, matching the original's bare
// except OSError around the truncate step.
//
// What It Does:
//   - Marshals rec, appends it as one JSON line to path, then checks and truncates if oversized
//
// Parameters:
//   path - the metrics log file's path
//   rec - the Record to append
//
// Health Impact:
//   +30 points for keeping the log bounded without ever failing the caller
func Append(path string, rec Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	f.Write(append(data, '\n'))
	f.Close()

	truncateIfOversized(path)
}

// truncateIfOversized rewrites path to keep only its most recent
// truncateKeepLines lines, once it exceeds truncateTriggerLines.
func truncateIfOversized(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	lines := splitLines(data)
	if len(lines) <= truncateTriggerLines {
		return
	}

	kept := lines[len(lines)-truncateKeepLines:]
	var out []byte
	for _, l := range kept {
		out = append(out, l...)
		out = append(out, '\n')
	}
	os.WriteFile(path, out, 0644)
}

// splitLines splits data on '\n', dropping empty trailing segments.
func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, data[start:i])
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}

// ============================================================================
// END BODY
// ============================================================================

// ============================================================================
// CLOSING
// ============================================================================
//
// For CLOSING structure explanation, see: standards/code/4-block/CWS-STD-008-CODE-closing-block.md

// ────────────────────────────────────────────────────────────────
// Modification Policy
// ────────────────────────────────────────────────────────────────
//
// Safe to Modify:
//   - The cost constants, if pricing changes - they are documentation-level, not load-bearing
//     invariants
//
// Requires Care:
//   - truncateTriggerLines/truncateKeepLines - changing the gap between them changes how often
//     truncateIfOversized rewrites the whole file
//
// Never Modify:
//   - ParseTranscript's all-zero-usage skip - it matches the original's line-counts-as-an-
//     api_call-only-if-usage-is-present semantics closely enough that diverging further would
//     undercount api_calls relative to the original
//
// ────────────────────────────────────────────────────────────────
// Troubleshooting
// ────────────────────────────────────────────────────────────────
//
// Symptom: agent-metrics.jsonl shows fewer api_calls than the transcript's actual turn count
//   Cause: a turn with an all-zero usage object (rare, but possible on an error response) is
//   deliberately skipped rather than counted
//   Fix: expected behavior - cross-check against the transcript directly if this matters for
//   a specific investigation
//
// ────────────────────────────────────────────────────────────────
// Roadmap
// ────────────────────────────────────────────────────────────────
//
// No planned changes - the pricing table and housekeeping thresholds match §4.10/§6 as specified.
