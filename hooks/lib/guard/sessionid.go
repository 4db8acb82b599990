// METADATA
//
// Guard Session ID - Validates a session id before it's used to derive a state filename
//
// For METADATA structure explanation, see: standards/code/4-block/CWS-STD-004-CODE-metadata-block.md
//
// Biblical Foundation
//
// Scripture: "Watch ye, stand fast in the faith" - 1 Corinthians 16:13 (KJV)
// Principle: The one field that becomes a filename deserves the one check that actually matters
// Anchor: A small gate, held firmly, guards everything built on top of it
//
// CPI-SI Identity
//
// Component Type: LIBRARY - validation rung (single-purpose gate)
// Role: Confirms a session id is safe to interpolate into a state file path
// Paradigm: One regexp, one function - the smallest file in the package, by design
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
// Purpose: Stop a malformed or hostile session_id from ever reaching filepath.Join - state
// filenames are derived directly from this value, so an unvalidated id is a path-traversal /
// arbitrary-file-write risk, not just a data-shape nuisance.
//
// Core Design: A single anchored regexp constrains session ids to the alphanumeric-plus-hyphen-
// plus-underscore charset within a sane length range; ValidSessionID is the gate the spawn guard
// calls before touching the filesystem (§4.6 step 2). The read guard does not call it.
//
// Key Features:
//   - Anchored pattern (^...$) - no partial match can slip a traversal sequence through
//   - Length-bounded (8-64) to reject both empty/truncated and absurdly long ids
//
// Philosophy: The smallest possible surface for the one input-shape check that has security
// consequences, not just correctness ones.
//
// Blocking Status
//
// Non-blocking: ValidSessionID returns a bool; its caller, the spawn guard, treats false as a
// block (§7 taxonomy #1: the one input-shape error that exits 2 instead of failing open).
//
// Usage & Integration
//
// Usage:
//
//	if !guard.ValidSessionID(ev.SessionID) { os.Exit(2) }
//
// Integration Pattern:
//  1. Call immediately after parsing the event, before any state path is built
//
// Public API:
//   - ValidSessionID(id string) bool
//
// Dependencies
//
// Dependencies (What This Needs):
//   Standard Library: regexp
//   External: none
//   Hook Libraries: none
//
// Dependents (What Uses This):
//   Executables: hooks/tool/cmd-spawn-guard
//
// Health Scoring
//
// Validation operates on Base100 scale:
//
// Pattern correctness:
//   - The pattern is fully anchored, rejecting any partial match: +60
//
// Charset and length:
//   - Alphanumeric-plus-hyphen-plus-underscore, 8-64 characters, matches the host's session id
//     format exactly: +40
//
// Total: 100 points for the one check standing between an untrusted string and a file path.
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

import "regexp"

// ────────────────────────────────────────────────────────────────
// Package-Level State - Compiled Pattern
// ────────────────────────────────────────────────────────────────

// sessionIDPattern is the one input shape the hot path actually validates
// (§4.6 step 2) - because state filenames are derived from it, an
// unvalidated session id is a path-traversal / arbitrary-file-write risk,
// not just a data-shape nuisance.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

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
//   Foundation
//   └── ValidSessionID → matches id against sessionIDPattern
//
// APUs (Available Processing Units):
// - 1 function total, exported

// ValidSessionID reports whether id is safe to use as a state filename
// component.
//
// What It Does:
//   - Matches id against the anchored, length-bounded sessionIDPattern
//
// Parameters:
//   id - the session_id field from the host's payload
//
// Returns:
//   true if id is safe to use in a filesystem path
//
// Health Impact:
//   +100 points for being the sole gate between an untrusted session id and a file path
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
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
//   - The length bounds, if the host's session id format changes
//
// Requires Care:
//   - Widening the charset - every character allowed here is a character that can end up in a
//     filesystem path
//
// Never Modify:
//   - The anchors (^ and $) - without them a malicious id could match only a substring and still
//     pass
//
// ────────────────────────────────────────────────────────────────
// Troubleshooting
// ────────────────────────────────────────────────────────────────
//
// Symptom: a legitimate session is rejected as invalid
//   Cause: the host changed its session id format (length or charset) without this pattern
//   being updated
//   Fix: confirm the new format against the host's actual session_id values before widening
//   the pattern
//
// ────────────────────────────────────────────────────────────────
// Roadmap
// ────────────────────────────────────────────────────────────────
//
// No planned changes - the pattern matches the host's session id format as specified.
