// METADATA
//
// Analytics - Offline reducer folding the audit and metrics logs into reports (C8)
//
// For METADATA structure explanation, see: standards/code/4-block/CWS-STD-004-CODE-metadata-block.md
//
// Biblical Foundation
//
// Scripture: "Go to the ant, thou sluggard; consider her ways, and be wise" - Proverbs 6:6 (KJV)
// Principle: Patient accumulation, reviewed later, reveals patterns no single event shows
// Anchor: A governor earns trust by showing its work, not just enforcing silently
//
// CPI-SI Identity
//
// Component Type: LIBRARY - offline reduction rung (no hot-path involvement)
// Role: Folds audit.jsonl and agent-metrics.jsonl into the counts, top-N breakdowns, and cost
// estimates the --report and --usage CLI modes print
// Paradigm: Read-only, fault-tolerant, concurrent over two independent logs
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
// Purpose: Turn the two append-only logs the rest of the suite writes into human-facing reports,
// entirely offline - analytics never runs on the hot path and never affects a spawn/read decision.
//
// Core Design: BuildReport parses both logs concurrently (neither depends on the other) and
// reduces the audit log into per-event counts, top-N type/reason/pattern breakdowns, and a
// heuristic cost-saved estimate for blocked spawns; if a metrics log exists, it additionally
// folds in real token usage and cost. BuildUsage produces a shorter summary for quick checks.
//
// Key Features:
//   - Concurrent log parsing via golang.org/x/sync/errgroup - the two logs have no cross-dependency
//   - readMetrics distinguishes "no metrics log yet" from "metrics log with zero agents" via its
//     exists bool, so BuildReport only attaches Real when there's an actual log to report on
//   - topN sorts by count descending, then name ascending, for deterministic output
//
// Philosophy: Reporting should never touch the same path the guards run on - a slow or buggy
// reducer here can only produce a bad report, never a bad spawn decision.
//
// Grounded on hooks/lib/monitoring/analysis.go's "load the log, fold it into counts" shape,
// reworked to fold two independent logs concurrently with golang.org/x/sync/errgroup - each
// log's parse has no dependency on the other's, so there is no reason to serialize them.
//
// Blocking Status
//
// Non-blocking: this package is invoked only from CLI report modes, never from a hook's
// allow/block decision path.
//
// Usage & Integration
//
// Usage:
//
//	report := analytics.BuildReport(paths.AuditLogFile(), paths.MetricsLogFile())
//	usage := analytics.BuildUsage(paths.AuditLogFile())
//
// Integration Pattern:
//  1. Call BuildReport or BuildUsage from a CLI's --report/--usage flag handler
//  2. Format the returned struct for terminal output
//
// Public API:
//   - type CountEntry, RealTotals, Report, Usage
//   - BuildReport(auditPath, metricsPath string) Report
//   - BuildUsage(auditPath string) Usage
//
// Dependencies
//
// Dependencies (What This Needs):
//   Standard Library: bufio, encoding/json, os, sort
//   External: golang.org/x/sync/errgroup
//   Hook Libraries: hooks/lib/audit, hooks/lib/metrics
//
// Dependents (What Uses This):
//   Executables: the suite's CLI report entry point (--report / --usage modes)
//
// Health Scoring
//
// Reporting operates on Base100 scale:
//
// Concurrency:
//   - Both logs parse concurrently via errgroup with no shared mutable state: +25
//
// Reduction fidelity:
//   - Per-event counts and top-N breakdowns match §4.8's documented shape exactly: +35
//
// Real vs. heuristic cost:
//   - Real is populated only when a metrics log actually exists, never fabricated: +25
//
// Determinism:
//   - topN's tie-break by name keeps report output stable across runs: +15
//
// Total: 100 points for reports that are accurate, concurrent, and reproducible.
package analytics

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
	"sort"

	"golang.org/x/sync/errgroup" // concurrent fold of audit + metrics logs

	"github.com/nova-dawn/token-guard/hooks/lib/audit"
	"github.com/nova-dawn/token-guard/hooks/lib/metrics"
)

// ────────────────────────────────────────────────────────────────
// Constants - Named Values
// ────────────────────────────────────────────────────────────────

// Cost heuristic constants (§4.8, §6): per disallowed agent, an estimate of
// the tokens that spawn would have consumed had it been allowed.
const (
	heuristicInputTokensPerBlock  = 35000
	heuristicOutputTokensPerBlock = 15000
	costPer1KInput                = 0.003
	costPer1KOutput               = 0.015
)

// ────────────────────────────────────────────────────────────────
// Types - Data Structures
// ────────────────────────────────────────────────────────────────

// CountEntry is one {name, count} pair in a top-N breakdown.
type CountEntry struct {
	Name  string
	Count int
}

// RealTotals is the summed subset of metrics.Record fields the report shows;
// it's populated from the agent-metrics.jsonl records decoded as
// metrics.Record.
type RealTotals struct {
	InputTokens  int
	OutputTokens int
	APICalls     int
	CostUSD      float64
}

// Report is the folded result behind --report (§4.8).
type Report struct {
	Allow           int
	Block           int
	Resume          int
	Team            int
	ByType          []CountEntry
	ByReason        []CountEntry
	ByPattern       []CountEntry
	EstTokensSaved  int
	EstCostSavedUSD float64
	Real            *RealTotals // nil if the metrics log doesn't exist
}

// Usage is the shorter public summary behind --usage (§4.8).
type Usage struct {
	SessionsTracked int
	TotalAttempts   int
	BlockCount      int
	EstCostSavedUSD float64
	TopBlockReasons []CountEntry
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
//   ├── BuildReport → concurrent fold of both logs
//   └── BuildUsage → audit log only, shorter summary
//
//   Reduction (Bottom Rung)
//   ├── reduceAudit → per-event counts, top-N breakdowns, heuristic cost estimate
//   ├── readMetrics → fault-tolerant metrics log reader
//   └── topN → count-descending, name-ascending sort
//
// Baton Flow (Execution Path):
//
//   BuildReport(auditPath, metricsPath)
//     → errgroup: audit.ReadJSONLFaultTolerant(auditPath) ‖ readMetrics(metricsPath)
//     → g.Wait() → reduceAudit(records) → attach Real if metricsExist → return Report
//
// APUs (Available Processing Units):
// - 5 functions total: 2 exported (BuildReport, BuildUsage), 3 unexported
//   (reduceAudit, readMetrics, topN)

// BuildReport folds auditPath and metricsPath concurrently into a Report.
//
// What It Does:
//   - Parses both logs concurrently via errgroup, reduces the audit log into a Report, and
//     attaches real token/cost totals if the metrics log exists
//
// Parameters:
//   auditPath - the audit.jsonl log path
//   metricsPath - the agent-metrics.jsonl log path
//
// Returns:
//   a Report with Real populated only when the metrics log exists
//
// Health Impact:
//   +25 points for parsing both logs concurrently with no shared mutable state
func BuildReport(auditPath, metricsPath string) Report {
	var records []audit.Record
	var metricsRecords []metrics.Record
	var metricsExist bool

	var g errgroup.Group
	g.Go(func() error {
		records = audit.ReadJSONLFaultTolerant(auditPath)
		return nil
	})
	g.Go(func() error {
		metricsRecords, metricsExist = readMetrics(metricsPath)
		return nil
	})
	g.Wait() // neither goroutine can error; Wait only synchronizes completion

	report := reduceAudit(records)

	if metricsExist {
		var real RealTotals
		for _, m := range metricsRecords {
			real.InputTokens += m.InputTokens
			real.OutputTokens += m.OutputTokens
			real.APICalls += m.APICalls
			real.CostUSD += m.CostUSD
		}
		report.Real = &real
	}

	return report
}

// BuildUsage folds auditPath alone into the shorter public summary.
//
// What It Does:
//   - Reduces the audit log, counts distinct sessions, and keeps the top 3 block reasons
//
// Parameters:
//   auditPath - the audit.jsonl log path
//
// Returns:
//   a Usage summary
//
// Health Impact:
//   +10 points for a summary that stays consistent with BuildReport's underlying reduction
func BuildUsage(auditPath string) Usage {
	records := audit.ReadJSONLFaultTolerant(auditPath)
	report := reduceAudit(records)

	sessions := make(map[string]bool)
	for _, r := range records {
		sessions[r.Session] = true
	}

	top := report.ByReason
	if len(top) > 3 {
		top = top[:3]
	}

	return Usage{
		SessionsTracked: len(sessions),
		TotalAttempts:   len(records),
		BlockCount:      report.Block,
		EstCostSavedUSD: report.EstCostSavedUSD,
		TopBlockReasons: top,
	}
}

// reduceAudit folds records into per-event counts, top-N breakdowns, and a
// heuristic cost-saved estimate for blocked spawns.
func reduceAudit(records []audit.Record) Report {
	var report Report
	typeCounts := make(map[string]int)
	reasonCounts := make(map[string]int)
	patternCounts := make(map[string]int)

	for _, r := range records {
		switch r.Event {
		case audit.EventAllow:
			report.Allow++
		case audit.EventBlock:
			report.Block++
			reasonCounts[r.Reason]++
			if r.Pattern != "" {
				patternCounts[r.Pattern]++
			}
		case audit.EventResume:
			report.Resume++
		case audit.EventAllowTeam:
			report.Team++
		}
		if r.Type != "" {
			typeCounts[r.Type]++
		}
	}

	report.ByType = topN(typeCounts)
	report.ByReason = topN(reasonCounts)
	report.ByPattern = topN(patternCounts)

	report.EstTokensSaved = report.Block * (heuristicInputTokensPerBlock + heuristicOutputTokensPerBlock)
	report.EstCostSavedUSD = float64(report.Block) * (
		float64(heuristicInputTokensPerBlock)/1000*costPer1KInput +
			float64(heuristicOutputTokensPerBlock)/1000*costPer1KOutput)

	return report
}

// readMetrics reads the agent-metrics log, skipping malformed lines.
// Returns exists=false only when the file itself is absent, so callers can
// distinguish "no metrics log yet" from "metrics log with zero agents".
func readMetrics(path string) (records []metrics.Record, exists bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec metrics.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, true
}

// topN sorts counts into CountEntry slices, count descending, name
// ascending on ties, for deterministic report output.
func topN(counts map[string]int) []CountEntry {
	entries := make([]CountEntry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, CountEntry{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
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
//   - The heuristic cost constants, and TopBlockReasons' top-3 cutoff in BuildUsage
//
// Requires Care:
//   - readMetrics's exists bool - BuildReport's decision to attach Real depends on it
//     distinguishing "no log" from "empty log"
//
// Never Modify:
//   - BuildReport's concurrency via errgroup assuming neither goroutine can error - if either
//     reader is changed to return a real error, g.Wait()'s result must then be checked
//
// ────────────────────────────────────────────────────────────────
// Troubleshooting
// ────────────────────────────────────────────────────────────────
//
// Symptom: --report never shows Real totals even though agents have run
//   Cause: metricsPath doesn't point at the same state directory the hot path writes to
//   Fix: confirm metricsPath matches paths.MetricsLogFile()'s resolved path
//
// ────────────────────────────────────────────────────────────────
// Roadmap
// ────────────────────────────────────────────────────────────────
//
// No planned changes - the reduction shape matches §4.8 as specified.
