// METADATA
//
// Guard Messages - User-facing stderr output for every block, warning, and advisory
//
// For METADATA structure explanation, see: standards/code/4-block/CWS-STD-004-CODE-metadata-block.md
//
// Biblical Foundation
//
// Scripture: "A word fitly spoken is like apples of gold in pictures of silver" - Proverbs 25:11 (KJV)
// Principle: A block message is only useful if it's immediately legible - color and plain wording
// over a stack trace
// Anchor: Every stop this system makes should explain itself in one line
//
// CPI-SI Identity
//
// Component Type: LIBRARY - presentation rung (stderr only, no decisions)
// Role: Renders a RuleVerdict or advisory event into the colored message the host's user sees
// Paradigm: Pure presentation - every function here takes a verdict/value and writes, nothing more
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
// Purpose: Keep every user-visible message - block, warning, or advisory - in one file with one
// consistent color register, so hooks/tool/cmd-spawn-guard and cmd-read-guard stay thin
// orchestrators that call a Print* function rather than building strings themselves.
//
// Core Design: Three colors distinguish severity (red for a hard block, yellow for a warning,
// cyan for a non-blocking advisory), matching the visual register the teacher's confirmation and
// feedback libraries use. ruleMessages maps each spawn-guard rule code to its message template;
// PrintBlock fills the template's %s with whichever value that rule needs (Reason, or the
// necessity classifier's Suggestion for R5).
//
// Key Features:
//   - One template map (ruleMessages) keeps all seven rule messages in one place, easy to audit
//   - Color objects are package-level singletons (github.com/fatih/color), not reconstructed per call
//   - Read-guard and spawn-guard messages share the same three color tiers
//
// Philosophy: The person reading stderr is a developer mid-task, not a log aggregator - every
// message is one sentence, plain, and tells them what to do next.
//
// Blocking Status
//
// Non-blocking: every function here only writes to stderr; none can cause a hook to exit non-zero.
//
// Usage & Integration
//
// Usage:
//
//	if verdict.Blocked {
//	    guard.PrintBlock(verdict, verdict.Suggestion)
//	}
//
// Integration Pattern:
//  1. Get a RuleVerdict/ReadVerdict from hooks/lib/guard's rules
//  2. Call the matching Print* function for the outcome (block, warning, or advisory)
//
// Public API:
//   - PrintBlock(v RuleVerdict, suggestion string)
//   - PrintFirstAgentNotice()
//   - PrintOpusCostAdvisory()
//   - PrintReadDuplicateBlock(path string)
//   - PrintReadEscalationBlock()
//   - PrintReadSequentialWarning()
//   - PrintExploreAdvisory(dir string)
//
// Dependencies
//
// Dependencies (What This Needs):
//   Standard Library: fmt, os
//   External: github.com/fatih/color
//   Hook Libraries: none directly (RuleVerdict is defined in this package's rules.go)
//
// Dependents (What Uses This):
//   Executables: hooks/tool/cmd-spawn-guard, hooks/tool/cmd-read-guard
//
// Health Scoring
//
// Message rendering operates on Base100 scale:
//
// Template coverage:
//   - Every rule R1-R7 has a ruleMessages entry, with a safe fallback for any future rule: +30
//
// Color consistency:
//   - Block/warn/advisory each use one dedicated color throughout, never mixed: +30
//
// Parameter correctness:
//   - PrintBlock fills the correct %s (Reason vs. necessity Suggestion) per rule: +40
//
// Total: 100 points for messages that are legible and consistently colored end to end.
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
	"fmt"
	"os"

	"github.com/fatih/color" // terminal color for block/warn/advisory tiers
)

// ────────────────────────────────────────────────────────────────
// Package-Level State - Color Tiers and Rule Message Templates
// ────────────────────────────────────────────────────────────────

var (
	blockColor    = color.New(color.FgRed, color.Bold)
	warnColor     = color.New(color.FgYellow)
	advisoryColor = color.New(color.FgCyan)
)

var ruleMessages = map[string]string{
	"R1": "blocked: %s already ran once this session (one-per-session agent type)",
	"R2": "blocked: %s has reached its per-type cap for this session",
	"R3": "blocked: session agent cap reached, no more sub-agents this session",
	"R4": "blocked: another %s agent started within the parallel window, try again shortly",
	"R5": "blocked: this looks like direct-tool work, not a sub-agent task - %s",
	"R6": "blocked: this description is suspiciously similar to a recently blocked attempt under a different type",
	"R7": "blocked: global cooldown still active, wait a moment before spawning another agent",
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
//   Spawn-guard messages
//   ├── PrintBlock → red, rule-specific template
//   ├── PrintFirstAgentNotice → cyan advisory
//   └── PrintOpusCostAdvisory → cyan advisory
//
//   Read-guard messages
//   ├── PrintReadDuplicateBlock → red
//   ├── PrintReadEscalationBlock → red
//   ├── PrintReadSequentialWarning → yellow
//   └── PrintExploreAdvisory → cyan
//
// APUs (Available Processing Units):
// - 7 functions total, all exported, all write-only (no return value)

// PrintBlock writes the rule's message to stderr in red, the same visual
// register the teacher's confirmation/feedback libraries use for a hard
// stop (as opposed to the non-blocking output: advisories in cyan, the
// sequential-read warning in yellow).
//
// What It Does:
//   - Looks up v.Rule's template and fills its %s with Reason or suggestion, then prints in red
//
// Parameters:
//   v - the blocking RuleVerdict
//   suggestion - the necessity classifier's human-readable suggestion, used only for R5
//
// Health Impact:
//   +40 points for filling each template with the field that rule actually needs
func PrintBlock(v RuleVerdict, suggestion string) {
	tmpl, ok := ruleMessages[v.Rule]
	if !ok {
		tmpl = "blocked: %s"
	}
	var msg string
	switch v.Rule {
	case "R1", "R2", "R4":
		msg = fmt.Sprintf(tmpl, v.Reason)
	case "R5":
		msg = fmt.Sprintf(tmpl, suggestion)
	default:
		msg = tmpl
	}
	blockColor.Fprintln(os.Stderr, msg)
}

// PrintFirstAgentNotice is the non-blocking "first agent this session"
// advisory (§4.6 step 9).
func PrintFirstAgentNotice() {
	advisoryColor.Fprintln(os.Stderr, "first sub-agent spawned this session")
}

// PrintOpusCostAdvisory is the non-blocking cost notice when tool_input.model
// == "opus" (§4.6 step 9).
func PrintOpusCostAdvisory() {
	advisoryColor.Fprintln(os.Stderr, "advisory: spawning an opus sub-agent, costs run higher than sonnet/haiku")
}

// PrintReadDuplicateBlock is the read guard's duplicate-path block message
// (§4.7 step 4).
func PrintReadDuplicateBlock(path string) {
	blockColor.Fprintf(os.Stderr, "blocked: %s has already been read repeatedly this session, reuse what you already have\n", path)
}

// PrintReadEscalationBlock is the read guard's sequential-reads escalation
// block message (§4.7 step 5).
func PrintReadEscalationBlock() {
	blockColor.Fprintln(os.Stderr, "blocked: too many reads in a short window, slow down or use Grep/Glob to narrow the search")
}

// PrintReadSequentialWarning is the read guard's non-blocking sequential-reads
// warning (§4.7 step 5).
func PrintReadSequentialWarning() {
	warnColor.Fprintln(os.Stderr, "warning: many reads in a short window, consider a targeted search instead")
}

// PrintExploreAdvisory is the read guard's non-blocking Explore-aware
// advisory (§4.7 step 6).
func PrintExploreAdvisory(dir string) {
	advisoryColor.Fprintf(os.Stderr, "advisory: %s was already explored by a sub-agent this session, its findings may already cover this file\n", dir)
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
//   - Message wording, as long as the %s placeholders stay where PrintBlock expects them
//
// Requires Care:
//   - Adding a new rule code to ruleMessages without also updating PrintBlock's switch, if the
//     new rule needs a parameter other than Reason
//
// Never Modify:
//   - The red/yellow/cyan severity mapping - it is the one visual cue the host's user has for
//     "stop" vs. "slow down" vs. "fyi"
//
// ────────────────────────────────────────────────────────────────
// Troubleshooting
// ────────────────────────────────────────────────────────────────
//
// Symptom: a block message prints a literal "%s" instead of the expected reason
//   Cause: a new rule code was added to the cascade but ruleMessages/PrintBlock's switch wasn't
//   updated to match, so the switch's default branch prints the template unformatted
//   Fix: add the rule to both the map and the switch in the same change
//
// ────────────────────────────────────────────────────────────────
// Roadmap
// ────────────────────────────────────────────────────────────────
//
// No planned changes - message wording matches §4.6/§4.7 as specified.
