// METADATA
//
// Guard Types - Per-session state shapes for spawn and read governance
//
// For METADATA structure explanation, see: standards/code/4-block/CWS-STD-004-CODE-metadata-block.md
//
// Biblical Foundation
//
// Scripture: "Where there is no vision, the people perish" - Proverbs 29:18 (KJV)
// Principle: A shared, well-defined shape for session state is the vision every rule in the cascade works from
// Anchor: Clear data models prevent the quiet drift that erodes trust in a system over time
//
// CPI-SI Identity
//
// Component Type: LIBRARY - data-model rung (shared by C6 and C7)
// Role: Defines SpawnState/ReadState and their record types, plus the shared prune helpers
// Paradigm: Pure data shapes with no I/O - persistence lives in hooks/lib/state, not here
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
// Purpose: Give the spawn guard and read guard one shared vocabulary for what a session's state
// file contains, so hooks/lib/state's generic Load/Save can operate on either shape uninvolved
// in what the fields mean.
//
// Core Design: SpawnState tracks AgentCount, the Agents spawned so far, and recent BlockedAttempts
// (pruned on every touch, §3). ReadState tracks recent Reads, the last sequential-read warning
// timestamp, and which Explore-claimed directories have already received their advisory. Both
// New*State constructors return the zero-value default used whenever a state file is missing or
// corrupt (hooks/lib/state.Load falls back to these factories).
//
// Key Features:
//   - Plain structs with json tags only - no behavior, no I/O
//   - PruneBlockedAttempts / PruneReads share the same age-cutoff shape for both record types
//   - NewSpawnState / NewReadState always return non-nil slices, matching §3's default shape
//
// Philosophy: State shape and state persistence are separate concerns - this file owns the shape,
// hooks/lib/state owns getting it to and from disk.
//
// Blocking Status
//
// Non-blocking: this file contains no I/O and no decision logic; it cannot itself cause a hook to
// exit non-zero.
//
// Usage & Integration
//
// Usage:
//
//	st := state.Load(path, guard.NewSpawnState)
//	st.BlockedAttempts = guard.PruneBlockedAttempts(st.BlockedAttempts, now, maxAge)
//
// Integration Pattern:
//  1. Load a SpawnState/ReadState via hooks/lib/state, passing the matching New*State factory
//  2. Prune before appending, per §3's "pruned on every touch" invariant
//
// Public API:
//   - type AgentRecord, BlockedAttempt, SpawnState, ReadRecord, ReadState
//   - NewSpawnState() SpawnState
//   - NewReadState() ReadState
//   - PruneBlockedAttempts(attempts []BlockedAttempt, now, maxAgeSeconds int64) []BlockedAttempt
//   - PruneReads(reads []ReadRecord, now, maxAgeSeconds int64) []ReadRecord
//
// Dependencies
//
// Dependencies (What This Needs):
//   Standard Library: none
//   External: none
//   Hook Libraries: none (this is the data-model foundation the rest of the package builds on)
//
// Dependents (What Uses This):
//   Libraries: hooks/lib/guard's own rules.go, messages.go, payload.go
//   Executables: hooks/tool/cmd-spawn-guard, hooks/tool/cmd-read-guard
//
// Health Scoring
//
// Data modeling operates on Base100 scale:
//
// Shape fidelity:
//   - Every field matches the documented data model (§3) exactly: +60
//
// Defaults:
//   - New*State constructors never return nil slices where §3 expects empty ones: +20
//
// Pruning:
//   - Both prune helpers use the identical age-cutoff comparison: +20
//
// Total: 100 points for a data model the rest of the package can trust without re-checking.
package guard

// ============================================================================
// END METADATA
// ============================================================================

// ============================================================================
// SETUP
// ============================================================================
//
// For SETUP structure explanation, see: standards/code/4-block/CWS-STD-006-CODE-setup-block.md
//
// No imports needed - every type here is built from primitive Go types.

// ────────────────────────────────────────────────────────────────
// Types - Data Structures
// ────────────────────────────────────────────────────────────────

// AgentRecord is one entry in SpawnState.Agents - one sub-agent ever allowed
// in the session.
type AgentRecord struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Timestamp   int64    `json:"timestamp"`
	Team        string   `json:"team,omitempty"`
	TargetDirs  []string `json:"target_dirs"`
}

// BlockedAttempt is one entry in SpawnState.BlockedAttempts - a spawn
// rejection, kept for 300s so the type-switching rule (R6) can compare
// against it.
type BlockedAttempt struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Timestamp   int64  `json:"timestamp"`
}

// SpawnState is the spawn guard's per-session state file (<sid>.json).
type SpawnState struct {
	AgentCount      int              `json:"agent_count"`
	Agents          []AgentRecord    `json:"agents"`
	BlockedAttempts []BlockedAttempt `json:"blocked_attempts"`
}

// ReadRecord is one entry in ReadState.Reads.
type ReadRecord struct {
	Path      string `json:"path"`
	Timestamp int64  `json:"timestamp"`
	Blocked   bool   `json:"blocked,omitempty"`
}

// ReadState is the read guard's per-session state file (<sid>-reads.json).
type ReadState struct {
	Reads              []ReadRecord    `json:"reads"`
	LastSequentialWarn int64           `json:"last_sequential_warn"`
	ExploreWarned      map[string]bool `json:"explore_warned,omitempty"`
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
//   Constructors
//   ├── NewSpawnState → zero-value SpawnState default
//   └── NewReadState → zero-value ReadState default
//
//   Maintenance (shared shape, different record types)
//   ├── PruneBlockedAttempts → age-cutoff filter for BlockedAttempt
//   └── PruneReads → age-cutoff filter for ReadRecord
//
// APUs (Available Processing Units):
// - 4 functions total, all exported, none with any I/O

// NewSpawnState returns the zero-value default used whenever a session's
// state file is missing or corrupt.
//
// What It Does:
//   - Returns a SpawnState with non-nil, empty Agents/BlockedAttempts slices
//
// Health Impact:
//   +10 points for matching §3's documented empty-state shape
func NewSpawnState() SpawnState {
	return SpawnState{
		Agents:          []AgentRecord{},
		BlockedAttempts: []BlockedAttempt{},
	}
}

// NewReadState returns the zero-value default used whenever a session's
// read-state file is missing or corrupt.
//
// What It Does:
//   - Returns a ReadState with a non-nil, empty Reads slice
//
// Health Impact:
//   +10 points for matching §3's documented empty-state shape
func NewReadState() ReadState {
	return ReadState{Reads: []ReadRecord{}}
}

// PruneBlockedAttempts drops entries older than maxAgeSeconds relative to
// now, matching §3's "pruned on every touch" invariant for blocked_attempts.
//
// What It Does:
//   - Keeps only entries whose age (now - Timestamp) is within maxAgeSeconds
//
// Parameters:
//   attempts - the current BlockedAttempts slice
//   now - the current Unix timestamp
//   maxAgeSeconds - the retention window
//
// Returns:
//   a new slice containing only the entries still within the window
//
// Health Impact:
//   +10 points for never growing blocked_attempts without bound
func PruneBlockedAttempts(attempts []BlockedAttempt, now int64, maxAgeSeconds int64) []BlockedAttempt {
	kept := make([]BlockedAttempt, 0, len(attempts))
	for _, a := range attempts {
		if now-a.Timestamp <= maxAgeSeconds {
			kept = append(kept, a)
		}
	}
	return kept
}

// PruneReads drops read records older than maxAgeSeconds relative to now.
//
// What It Does:
//   - Keeps only entries whose age (now - Timestamp) is within maxAgeSeconds
//
// Parameters:
//   reads - the current Reads slice
//   now - the current Unix timestamp
//   maxAgeSeconds - the retention window
//
// Returns:
//   a new slice containing only the entries still within the window
//
// Health Impact:
//   +10 points for never growing the reads list without bound
func PruneReads(reads []ReadRecord, now int64, maxAgeSeconds int64) []ReadRecord {
	kept := make([]ReadRecord, 0, len(reads))
	for _, r := range reads {
		if now-r.Timestamp <= maxAgeSeconds {
			kept = append(kept, r)
		}
	}
	return kept
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
//   - Adding new optional fields with omitempty (backward-compatible with existing state files)
//
// Requires Care:
//   - json tag names - changing one breaks reading state files written before the change
//
// Never Modify:
//   - The prune functions' "drop if older than maxAgeSeconds" semantics - rules R6 and the
//     sequential-read check both assume pruning happened before they read these slices
//
// ────────────────────────────────────────────────────────────────
// Troubleshooting
// ────────────────────────────────────────────────────────────────
//
// Symptom: an old session's state file fails to decode after a field rename
//   Cause: json tags changed without a migration path
//   Fix: hooks/lib/state.Load treats any decode failure as "missing," so a renamed field just
//   resets that session's state rather than crashing the hook
//
// ────────────────────────────────────────────────────────────────
// Roadmap
// ────────────────────────────────────────────────────────────────
//
// No planned changes - the shape matches §3 as specified.
