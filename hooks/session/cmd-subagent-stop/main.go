// METADATA
//
// cmd-subagent-stop - Per-agent metrics consumer entry point (C10)
//
// For METADATA structure explanation, see: standards/code/4-block/CWS-STD-004-CODE-metadata-block.md
//
// Biblical Foundation
//
// Scripture: "For which of you, intending to build a tower, sitteth not down first, and
// counteth the cost" - Luke 14:28 (KJV)
// Principle: Every completed sub-agent's real cost should be recorded, not estimated after the
// fact
// Anchor: Honest accounting, even for a throwaway sub-agent, is part of stewardship
//
// CPI-SI Identity
//
// Component Type: EXECUTABLE - SubagentStop hook, thin orchestrator
// Role: Reads the SubagentStop payload, parses the named transcript, appends one metrics record
// Paradigm: Thin orchestrator - all parsing/cost logic lives in hooks/lib/metrics
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
// Purpose: Capture one sub-agent's actual token usage and cost the moment it finishes, so
// hooks/lib/analytics can later report real totals instead of relying solely on the blocked-spawn
// cost heuristic.
//
// Core Design: subagentStop decodes the SubagentStop payload, defaults missing agent_type/
// agent_id to "unknown" and truncates session_id to its first 8 characters (matching the
// original's behavior), parses the named transcript via hooks/lib/metrics, and appends the
// resulting record.
//
// Key Features:
//   - Fails open on any decode error or event-name mismatch (§7 taxonomy #1)
//   - Defaults missing fields rather than rejecting the payload outright
//   - Ensures the state directory exists before appending, so a missing directory never drops a
//     metrics record
//
// Philosophy: A metrics consumer's job is to capture data reliably, not to gatekeep - any
// ambiguity in the payload degrades gracefully into a best-effort record, never a dropped event.
//
// Grounded on original_source/hooks/agent-metrics.py's main(): same payload fields, same
// fail-open-on-bad-input behavior, same truncated session-id (first 8 chars).
//
// Blocking Status
//
// Always exits 0: a metrics consumer must never block the host on a parsing or I/O failure.
//
// Usage & Integration
//
// Usage:
//
//	$ echo '{"hook_event_name":"SubagentStop","agent_type":"Explore","agent_id":"a1","session_id":"sess1234","agent_transcript_path":"/tmp/t.jsonl"}' | ./cmd-subagent-stop
//
// Integration Pattern:
//  1. Registered as the host's SubagentStop hook
//  2. Runs once per completed sub-agent, reading its payload from stdin
//
// Public API:
//   - func main()
//
// Dependencies
//
// Dependencies (What This Needs):
//   Standard Library: encoding/json, os
//   External: none directly (transitively via hooks/lib/metrics)
//   Hook Libraries: hooks/lib/metrics, hooks/lib/paths
//
// Dependents (What Uses This):
//   Host: invoked directly as the SubagentStop hook binary
//
// Health Scoring
//
// This executable operates on Base100 scale:
//
// Fail-open parsing:
//   - A malformed payload or mismatched hook_event_name exits 0 immediately: +30
//
// Field defaulting:
//   - Missing agent_type/agent_id default to "unknown" rather than producing a malformed record: +30
//
// Orchestration:
//   - All parsing and cost computation delegate to hooks/lib/metrics: +40
//
// Total: 100 points for a metrics consumer that never blocks and never drops a record silently.
package main

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
	"encoding/json"
	"os"

	"github.com/nova-dawn/token-guard/hooks/lib/metrics"
	"github.com/nova-dawn/token-guard/hooks/lib/paths"
)

// ────────────────────────────────────────────────────────────────
// Types - Data Structures
// ────────────────────────────────────────────────────────────────

type subagentStopPayload struct {
	HookEventName       string `json:"hook_event_name"`
	AgentType           string `json:"agent_type"`
	AgentID             string `json:"agent_id"`
	SessionID           string `json:"session_id"`
	AgentTranscriptPath string `json:"agent_transcript_path"`
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
//   cmd-subagent-stop depends on:
//     hooks/lib/metrics (transcript parsing, cost formula, log append)
//     hooks/lib/paths (state dir / metrics log path resolution)
//
// Baton Flow (Execution Path):
//
//   Host SubagentStop event (stdin JSON)
//     → main() → subagentStop()
//     → decode payload, validate hook_event_name
//     → default agent_type/agent_id, truncate session_id
//     → metrics.ParseTranscript → metrics.NewRecord → metrics.Append
//     → os.Exit(0)
//
// APUs (Available Processing Units):
// - 2 functions total: main, subagentStop

// subagentStop reads the SubagentStop payload, folds the named
// transcript's token usage, and appends one metrics record.
//
// What It Does:
//   - Decodes stdin, validates hook_event_name, defaults missing fields, parses the transcript,
//     and appends the resulting Record
//
// Health Impact:
//   +70 points collectively for fail-open parsing and field defaulting (see METADATA)
func subagentStop() {
	var payload subagentStopPayload
	if err := json.NewDecoder(os.Stdin).Decode(&payload); err != nil {
		os.Exit(0)
	}
	if payload.HookEventName != "" && payload.HookEventName != "SubagentStop" {
		os.Exit(0)
	}

	agentType := payload.AgentType
	if agentType == "" {
		agentType = "unknown"
	}
	agentID := payload.AgentID
	if agentID == "" {
		agentID = "unknown"
	}
	session := payload.SessionID
	if len(session) > 8 {
		session = session[:8]
	}

	totals := metrics.ParseTranscript(payload.AgentTranscriptPath)
	rec := metrics.NewRecord(agentType, agentID, session, totals)

	os.MkdirAll(paths.StateDir(), 0755)
	metrics.Append(paths.MetricsLogFile(), rec)
	os.Exit(0)
}

// main is the named entry point.
func main() {
	subagentStop()
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
//   - The "unknown" default strings, if a more descriptive placeholder is preferred
//
// Requires Care:
//   - The session_id truncation length (8 chars) - changing it changes how metrics records
//     correlate with audit log entries, which keep the first 12 characters of the session id
//
// Never Modify:
//   - The unconditional os.Exit(0) at every exit path - a metrics consumer must never block
//     the host
//
// ────────────────────────────────────────────────────────────────
// Code Validation: Build and Hook Testing
// ────────────────────────────────────────────────────────────────
//
// Manual execution:
//   $ echo '{"hook_event_name":"SubagentStop","agent_type":"Explore","agent_id":"a1",
//     "session_id":"sess1234","agent_transcript_path":"/tmp/t.jsonl"}' | ./cmd-subagent-stop
//   $ echo $?   # always 0
//   $ tail -1 ~/.claude/hooks/session-state/agent-metrics.jsonl
//
// ────────────────────────────────────────────────────────────────
// Troubleshooting
// ────────────────────────────────────────────────────────────────
//
// Symptom: a metrics record shows zero tokens for an agent that clearly ran
//   Cause: agent_transcript_path is wrong or the transcript has no usage objects yet
//   Fix: confirm the host passed the correct path; hooks/lib/metrics.ParseTranscript returns
//   zero totals rather than an error for an unreadable or empty file
//
// ────────────────────────────────────────────────────────────────
// Roadmap
// ────────────────────────────────────────────────────────────────
//
// No planned changes - payload shape matches the host's SubagentStop event as specified.
