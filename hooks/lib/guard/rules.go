// METADATA
//
// Guard Rules - The spawn-guard R1-R7 cascade and the read-guard duplicate/sequential checks
//
// For METADATA structure explanation, see: standards/code/4-block/CWS-STD-004-CODE-metadata-block.md
//
// Biblical Foundation
//
// Scripture: "In the multitude of counsellors there is safety" - Proverbs 11:14 (KJV)
// Principle: A first-match-blocks cascade of independent checks catches what any single check
// would miss alone
// Anchor: Order and restraint, not cleverness, keep a governor trustworthy
//
// CPI-SI Identity
//
// Component Type: LIBRARY - decision rung (pure functions, no I/O)
// Role: Evaluates the spawn-guard's seven-rule cascade and the read-guard's two threshold checks
// Paradigm: Every rule is a pure function of (config, state, event, now) - no hidden state, no I/O
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
// Purpose: Hold the actual governance logic - the part of the system that decides whether a
// sub-agent spawn or a file read proceeds - separate from the stdin/stdout orchestration in
// hooks/tool/cmd-spawn-guard and cmd-read-guard.
//
// Core Design: EvaluateSpawnRules runs R1 (one-per-session) through R7 (global cooldown) in
// fixed order, returning on the first match (§4.6 step 8: first-match-blocks). DuplicatePathCount
// and SequentialReadCount give the read guard the raw counts it needs to apply its own
// warn/escalate thresholds (§4.7 steps 4-5).
//
// Key Features:
//   - Fixed rule order R1..R7, matching §4.6's rule table exactly
//   - R5 delegates to hooks/lib/necessity's classifier rather than re-implementing pattern matching
//   - R6 reuses hooks/lib/necessity's WordRatio for a different comparison: two user descriptions
//     directly, not a description against a canonical corpus
//
// Philosophy: One function per concern, one pass through the rules - a cascade is easiest to
// trust when it reads top to bottom in the same order it's documented.
//
// Blocking Status
//
// Non-blocking: this file returns verdicts; it never itself exits or writes output. Callers in
// hooks/tool/cmd-spawn-guard and cmd-read-guard translate a Blocked verdict into the host's
// expected exit behavior.
//
// Usage & Integration
//
// Usage:
//
//	verdict := guard.EvaluateSpawnRules(cfg, st, ev, now)
//	if verdict.Blocked { /* deny, record BlockedAttempt */ }
//
// Integration Pattern:
//  1. Load config and session state
//  2. Apply the team bypass and always_allowed bypass first (cmd-spawn-guard's job, not this file's)
//  3. Call EvaluateSpawnRules / DuplicatePathCount / SequentialReadCount
//  4. Persist the resulting state and emit the host's expected response
//
// Public API:
//   - type RuleVerdict, ReadVerdict
//   - EvaluateSpawnRules(cfg config.Config, st SpawnState, ev Event, now int64) RuleVerdict
//   - DuplicatePathCount(reads []ReadRecord, path string) int
//   - SequentialReadCount(reads []ReadRecord, now, windowSeconds int64) int
//
// Dependencies
//
// Dependencies (What This Needs):
//   Standard Library: strings
//   External: none directly (transitively via hooks/lib/necessity: github.com/sergi/go-diff/diffmatchpatch)
//   Hook Libraries: hooks/lib/config, hooks/lib/necessity
//
// Dependents (What Uses This):
//   Executables: hooks/tool/cmd-spawn-guard, hooks/tool/cmd-read-guard
//
// Health Scoring
//
// Rule evaluation operates on Base100 scale:
//
// Cascade fidelity:
//   - R1 through R7 fire in the documented order, first match wins: +50
//
// Bypass respect:
//   - Team spawns never set R7's cooldown clock (mostRecentAgent skips them): +15
//
// Delegation:
//   - R5/R6 reuse hooks/lib/necessity rather than re-implementing classification: +20
//
// Read checks:
//   - DuplicatePathCount/SequentialReadCount both count the current attempt, matching §4.7: +15
//
// Total: 100 points for a cascade that matches the rule table exactly, rule by rule.
package guard

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
	"strings" // description tokenizing for R6

	"github.com/nova-dawn/token-guard/hooks/lib/config"    // threshold and cap values
	"github.com/nova-dawn/token-guard/hooks/lib/necessity" // R5 classifier, R6 word-ratio
)

// ────────────────────────────────────────────────────────────────
// Constants - Named Values
// ────────────────────────────────────────────────────────────────

// blockedAttemptMaxAge is the window blocked_attempts are kept for, so R6
// (type-switching) can compare against recent rejections (§3, §4.6 step 6).
const blockedAttemptMaxAge = 300

// typeSwitchRatio is R6's similarity threshold (§4.6 rule table): higher
// than the necessity classifier's own fuzzy threshold, because R6 compares
// two user-supplied descriptions directly rather than against a curated
// canonical corpus.
const typeSwitchRatio = 0.6

// ────────────────────────────────────────────────────────────────
// Types - Data Structures
// ────────────────────────────────────────────────────────────────

// RuleVerdict is the outcome of the spawn-guard rule cascade (§4.6 step 8).
// An empty Rule means every rule passed and the spawn is allowed.
type RuleVerdict struct {
	Blocked    bool
	Rule       string // "R1".."R7"
	Reason     string // audit Reason field
	Pattern    string // necessity pattern name, set only when Rule == "R5"
	Suggestion string // human-readable suggestion, set only when Rule == "R5"
}

// ReadVerdict is the outcome of one of the read guard's two blocking checks
// (§4.7 steps 4-5).
type ReadVerdict struct {
	Blocked bool
	Reason  string
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
//   ├── EvaluateSpawnRules → the R1-R7 cascade
//   ├── DuplicatePathCount → read-guard duplicate check
//   └── SequentialReadCount → read-guard sequential check
//
//   Helpers (Bottom Rung)
//   ├── agentsOfType → filters Agents by SubagentType
//   └── mostRecentAgent → latest non-team agent, for R7
//
// Baton Flow (Execution Path):
//
//   EvaluateSpawnRules(cfg, st, ev, now)
//     → R1 one_per_session → R2 per_type_cap → R3 session_cap → R4 parallel_window
//     → R5 necessity.Classify → R6 type_switching (necessity.WordRatio) → R7 global_cooldown
//     → first Blocked verdict wins, or {} if every rule passes
//
// APUs (Available Processing Units):
// - 5 functions total: 3 exported (EvaluateSpawnRules, DuplicatePathCount, SequentialReadCount),
//   2 unexported helpers (agentsOfType, mostRecentAgent)

// EvaluateSpawnRules runs the first-match-blocks cascade R1-R7 against the
// current session state and the incoming Task event. Callers have already
// handled the team bypass and the always_allowed bypass before reaching
// here (§4.6 steps 3 and 7).
//
// What It Does:
//   - Evaluates R1 through R7 in fixed order, returning on the first match
//
// Parameters:
//   cfg - the loaded configuration (caps, thresholds, windows)
//   st - the current session's SpawnState
//   ev - the incoming Task event
//   now - the current Unix timestamp
//
// Returns:
//   a RuleVerdict with Blocked=true and the matching Rule/Reason, or an empty RuleVerdict if
//   every rule passes
//
// Health Impact:
//   +50 points for the cascade firing in the exact documented order
func EvaluateSpawnRules(cfg config.Config, st SpawnState, ev Event, now int64) RuleVerdict {
	sameType := agentsOfType(st.Agents, ev.SubagentType)

	// R1: one-per-session.
	if cfg.OnePerSessionSet[ev.SubagentType] && len(sameType) > 0 {
		return RuleVerdict{
			Blocked: true,
			Rule:    "R1",
			Reason:  "one_per_session: " + ev.SubagentType + " already ran this session",
		}
	}

	// R2: per-type cap.
	if len(sameType) >= cfg.MaxPerSubagentType {
		return RuleVerdict{
			Blocked: true,
			Rule:    "R2",
			Reason:  "per_type_cap: " + ev.SubagentType + " reached max_per_subagent_type",
		}
	}

	// R3: session cap.
	if st.AgentCount >= cfg.MaxAgents {
		return RuleVerdict{
			Blocked: true,
			Rule:    "R3",
			Reason:  "session_cap: max_agents reached",
		}
	}

	// R4: parallel window.
	for _, a := range sameType {
		if now-a.Timestamp < int64(cfg.ParallelWindowSeconds) {
			return RuleVerdict{
				Blocked: true,
				Rule:    "R4",
				Reason:  "parallel_window: another " + ev.SubagentType + " agent started recently",
			}
		}
	}

	// R5: necessity classifier.
	if shouldBlock, suggestion, pattern := necessity.Classify(ev.Description, ev.Prompt); shouldBlock {
		return RuleVerdict{
			Blocked:    true,
			Rule:       "R5",
			Reason:     "necessity: " + pattern,
			Pattern:    pattern,
			Suggestion: suggestion,
		}
	}

	// R6: type-switching, compared against recent blocked attempts.
	descWords := strings.Fields(strings.ToLower(ev.Description))
	for _, blocked := range st.BlockedAttempts {
		if now-blocked.Timestamp > blockedAttemptMaxAge {
			continue
		}
		if blocked.Type == ev.SubagentType {
			continue
		}
		blockedWords := strings.Fields(strings.ToLower(blocked.Description))
		if necessity.WordRatio(descWords, blockedWords) > typeSwitchRatio {
			return RuleVerdict{
				Blocked: true,
				Rule:    "R6",
				Reason:  "type_switching: similar description previously blocked as " + blocked.Type,
			}
		}
	}

	// R7: global cooldown, measured against the most recent non-team agent.
	if last, ok := mostRecentAgent(st.Agents); ok {
		if now-last.Timestamp < int64(cfg.GlobalCooldownSeconds) {
			return RuleVerdict{
				Blocked: true,
				Rule:    "R7",
				Reason:  "global_cooldown: another agent spawned too recently",
			}
		}
	}

	return RuleVerdict{}
}

// agentsOfType filters agents down to those matching subagentType.
func agentsOfType(agents []AgentRecord, subagentType string) []AgentRecord {
	var out []AgentRecord
	for _, a := range agents {
		if a.Type == subagentType {
			out = append(out, a)
		}
	}
	return out
}

// mostRecentAgent returns the latest non-team agent record, for R7 - team
// spawns only enforce the session cap (§4.6 step 7) and so never set the
// cooldown clock.
func mostRecentAgent(agents []AgentRecord) (AgentRecord, bool) {
	var best AgentRecord
	found := false
	for _, a := range agents {
		if a.Team != "" {
			continue
		}
		if !found || a.Timestamp > best.Timestamp {
			best = a
			found = true
		}
	}
	return best, found
}

// DuplicatePathCount returns how many prior reads (plus the current
// attempt) target path - the basis of the duplicate-path block (§4.7 step
// 4: "including the current attempt").
//
// What It Does:
//   - Counts prior ReadRecords matching path, plus 1 for the current attempt
//
// Parameters:
//   reads - the session's recorded reads
//   path - the file path of the current read attempt
//
// Returns:
//   the total count, including the current attempt
//
// Health Impact:
//   +8 points for always counting the current attempt, matching §4.7's phrasing exactly
func DuplicatePathCount(reads []ReadRecord, path string) int {
	count := 1 // the current attempt
	for _, r := range reads {
		if r.Path == path {
			count++
		}
	}
	return count
}

// SequentialReadCount returns how many reads (plus the current attempt)
// fall within windowSeconds of now - the basis of the sequential-reads
// warn/escalate check (§4.7 step 5).
//
// What It Does:
//   - Counts reads within windowSeconds of now, plus 1 for the current attempt
//
// Parameters:
//   reads - the session's recorded reads
//   now - the current Unix timestamp
//   windowSeconds - the sliding window width
//
// Returns:
//   the total count, including the current attempt
//
// Health Impact:
//   +7 points for always counting the current attempt, matching §4.7's phrasing exactly
func SequentialReadCount(reads []ReadRecord, now int64, windowSeconds int64) int {
	count := 1 // the current attempt
	for _, r := range reads {
		if d := now - r.Timestamp; d >= 0 && d <= windowSeconds {
			count++
		}
	}
	return count
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
//   - typeSwitchRatio and blockedAttemptMaxAge, if the rule table's thresholds change
//
// Requires Care:
//   - Adding an R8 rule - it must be inserted in the correct position in EvaluateSpawnRules,
//     since the cascade is order-sensitive (first match wins)
//
// Never Modify:
//   - The first-match-blocks contract - every caller assumes exactly one Rule fires per call
//
// ────────────────────────────────────────────────────────────────
// Troubleshooting
// ────────────────────────────────────────────────────────────────
//
// Symptom: a spawn is blocked by R6 when the description looks unrelated to the prior rejection
//   Cause: typeSwitchRatio's word-level fuzzy match is coarser than it looks - short descriptions
//   with common words can cross 0.6 unintentionally
//   Fix: inspect hooks/lib/necessity.WordRatio's inputs via the audit log's raw Reason field
//
// Symptom: R7's global cooldown never triggers for team spawns
//   Cause: mostRecentAgent deliberately skips agents with a non-empty Team field (§4.6 step 7)
//   Fix: this is by design, not a bug - team spawns are governed by the session cap alone
//
// ────────────────────────────────────────────────────────────────
// Roadmap
// ────────────────────────────────────────────────────────────────
//
// No planned changes - the rule table matches §4.6/§4.7 as specified.
