// METADATA
//
// Guard Target Dirs - Heuristic directory extraction from an Explore agent's prompt
//
// For METADATA structure explanation, see: standards/code/4-block/CWS-STD-004-CODE-metadata-block.md
//
// Biblical Foundation
//
// Scripture: "A prudent man foreseeth the evil, and hideth himself" - Proverbs 22:3 (KJV)
// Principle: Recording where an Explore agent intends to walk lets a later read check itself
// against ground already covered
// Anchor: Foresight here is cheap - a few regexes against a prompt, not a filesystem crawl
//
// CPI-SI Identity
//
// Component Type: LIBRARY - heuristic extraction rung
// Role: Pulls plausible directory paths out of an Explore sub-agent's free-text prompt
// Paradigm: Best-effort pattern matching with a conservative "looks like a directory" filter,
// never a guarantee
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
// Purpose: Give the spawn guard a best-effort list of directories an Explore agent was told to
// walk, so the read guard's advisory (§4.7 step 6) can later recognize "this file sits under a
// directory already explored this session."
//
// Core Design: Three regexes (a START: marker, a ~-prefixed path, and a generic two-segment
// absolute path) scan the prompt independently and their matches are merged and deduplicated.
// looksLikeDir then filters candidates down to ones that either have no file extension or
// correspond to an existing directory on disk - file paths that happen to match the same
// pattern are excluded.
//
// Key Features:
//   - Returns a non-nil, possibly-empty slice (never nil) so callers can serialize []
//     unconditionally rather than special-casing the no-match result
//   - Deduplicates across all three patterns via a seen-set, so overlapping matches collapse
//   - Expands a leading ~ using os.UserHomeDir before the existence check
//
// Philosophy: This is advisory, not authoritative - a missed directory just means one fewer
// Explore-aware advisory printed, never a blocked read.
//
// Blocking Status
//
// Non-blocking: ExtractTargetDirs only ever returns data; it cannot cause a hook to exit non-zero.
//
// Usage & Integration
//
// Usage:
//
//	if ev.SubagentType == "Explore" {
//	    record.TargetDirs = guard.ExtractTargetDirs(ev.Prompt)
//	}
//
// Integration Pattern:
//  1. Call only for Explore-type spawns (§4.6 step 10), immediately before persisting the AgentRecord
//
// Public API:
//   - ExtractTargetDirs(prompt string) []string
//
// Dependencies
//
// Dependencies (What This Needs):
//   Standard Library: os, regexp, strings
//   External: none
//   Hook Libraries: none
//
// Dependents (What Uses This):
//   Executables: hooks/tool/cmd-spawn-guard
//
// Health Scoring
//
// Extraction operates on Base100 scale:
//
// Pattern coverage:
//   - All three documented prompt shapes (START: marker, ~-path, generic absolute path) match: +40
//
// Filtering:
//   - looksLikeDir correctly distinguishes a directory-shaped candidate from a file path: +30
//
// Shape fidelity:
//   - A no-match prompt returns []string{}, not nil, so the field serializes as [] per §8: +30
//
// Total: 100 points for a heuristic that degrades gracefully and never mis-serializes its result.
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
	"os"
	"regexp"
	"strings"
)

// ────────────────────────────────────────────────────────────────
// Package-Level State - Extraction Patterns
// ────────────────────────────────────────────────────────────────

// targetDirPatterns extracts candidate directory paths out of an Explore
// agent's prompt (§4.6 step 10). Order matters only in that all three are
// applied and their matches merged; patterns may overlap on the same path.
var targetDirPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:START:\s*)(~?/[^\s\n,]+)`),
	regexp.MustCompile(`(?:^|\s)(~/[^\s\n,]+)`),
	regexp.MustCompile(`(?:^|\s)(/[^\s\n,]+/[^\s\n,]+)`),
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
//   └── ExtractTargetDirs → merges all three pattern passes, deduplicates, filters
//
//   Helpers (Bottom Rung)
//   └── looksLikeDir → extension-absence or existing-directory check
//
// Baton Flow (Execution Path):
//
//   prompt → for each pattern in targetDirPatterns → FindAllStringSubmatch
//     → expand leading ~ → dedupe via seen-set → looksLikeDir? → append to out
//
// APUs (Available Processing Units):
// - 2 functions total: 1 exported (ExtractTargetDirs), 1 unexported (looksLikeDir)

// ExtractTargetDirs scans prompt for directory-like paths, expands a
// leading ~ to the user's home directory, deduplicates, and keeps only
// entries that have no file extension or correspond to an existing
// directory (§4.6 step 10) - the heuristic that separates "this looks like
// a directory Explore will walk" from "this is a file path that happened
// to match".
//
// What It Does:
//   - Runs all three targetDirPatterns against prompt, merges and deduplicates matches, then
//     filters through looksLikeDir
//
// Parameters:
//   prompt - the Explore sub-agent's free-text prompt
//
// Returns:
//   a non-nil slice of candidate directory paths, empty if none matched
//
// Health Impact:
//   +30 points for always returning []string{} rather than nil on a no-match prompt
func ExtractTargetDirs(prompt string) []string {
	home, _ := os.UserHomeDir()

	seen := make(map[string]bool)
	out := []string{}

	for _, re := range targetDirPatterns {
		for _, m := range re.FindAllStringSubmatch(prompt, -1) {
			candidate := m[1]
			if strings.HasPrefix(candidate, "~") && home != "" {
				candidate = home + candidate[1:]
			}
			if seen[candidate] {
				continue
			}
			seen[candidate] = true

			if looksLikeDir(candidate) {
				out = append(out, candidate)
			}
		}
	}
	return out
}

// looksLikeDir reports whether path is plausibly a directory: either its
// final path segment has no file extension, or it already exists on disk
// as a directory.
func looksLikeDir(path string) bool {
	base := path
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		base = path[idx+1:]
	}
	noExtension := !strings.Contains(base, ".")

	info, err := os.Stat(path)
	isExtantDir := err == nil && info.IsDir()

	return noExtension || isExtantDir
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
//   - Adding a new pattern to targetDirPatterns for a prompt shape not yet covered
//
// Requires Care:
//   - looksLikeDir's heuristic - loosening it risks treating file paths as directories, which
//     only degrades the read guard's advisory, but tightening it risks missing real directories
//
// Never Modify:
//   - ExtractTargetDirs's non-nil return contract - callers and the JSON encoder both depend
//     on an empty result serializing as [] per §8, not being omitted
//
// ────────────────────────────────────────────────────────────────
// Troubleshooting
// ────────────────────────────────────────────────────────────────
//
// Symptom: an Explore-aware advisory never fires even though an Explore agent ran first
//   Cause: the prompt's directory reference didn't match any of the three patterns (most often
//   a relative path, which none of them handle)
//   Fix: expected - this heuristic only recognizes absolute and ~-relative paths, per §4.6 step 10
//
// ────────────────────────────────────────────────────────────────
// Roadmap
// ────────────────────────────────────────────────────────────────
//
// No planned changes - the three-pattern heuristic matches §4.6 step 10 as specified.
