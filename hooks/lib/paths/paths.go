// METADATA
//
// Paths - Resolves every filesystem location the hook suite agrees on
//
// For METADATA structure explanation, see: standards/code/4-block/CWS-STD-004-CODE-metadata-block.md
//
// Biblical Foundation
//
// Scripture: "Let all things be done decently and in order" - 1 Corinthians 14:40 (NASB)
// Principle: Every hook binary must resolve the same state directory, config path, and hooks
// directory the same way, or their coordination breaks silently
// Anchor: One source of truth for "where things live" keeps the whole suite honest
//
// CPI-SI Identity
//
// Component Type: LIBRARY - foundation rung (zero dependencies on the rest of the suite)
// Role: Resolves the state directory, config path, hooks directory, and every derived log/state
// filename, each overridable by environment variable for testing
// Paradigm: Every path is a pure function of the environment - no caching, no global mutable state
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
// Purpose: Give every cmd-* binary and every hooks/lib/* package the same answer for "where does
// the state directory/config file/hooks directory live," with environment-variable overrides so
// self-heal's smoke tests (§4.9 step 2) can run against an isolated temp directory instead of the
// real one.
//
// Core Design: Three env vars (STATE_DIR_OVERRIDE, CONFIG_PATH_OVERRIDE, HOOKS_DIR_OVERRIDE) take
// precedence over the documented defaults under the user's home directory. Every derived filename
// (spawn state, read state, audit log, heal log, metrics log) is built from StateDir(), so an
// override cascades to all of them automatically.
//
// Key Features:
//   - homeDir() falls back to "." if os.UserHomeDir() fails, rather than propagating the error
//   - Every *File function derives from StateDir(), so one override affects every log/state path
//   - EnsureStateDir is best-effort: its error is never fatal on the hot path (§7 taxonomy #2)
//
// Philosophy: Path resolution should be boring and total - every function here always returns a
// string, never an error, because "where would this live" should never itself be a failure mode.
//
// Blocking Status
//
// Non-blocking: every function here returns a string (or, for EnsureStateDir, a best-effort
// error the caller is free to ignore on the hot path).
//
// Usage & Integration
//
// Usage:
//
//	statePath := paths.SpawnStateFile(sessionID)
//	paths.EnsureStateDir()
//
// Integration Pattern:
//  1. Call EnsureStateDir once near the start of any cmd-* binary that writes state
//  2. Use the *File functions rather than constructing paths by hand
//
// Public API:
//   - StateDir() string
//   - ConfigPath() string
//   - HooksDir() string
//   - SpawnStateFile(sessionID string) string
//   - ReadStateFile(sessionID string) string
//   - AuditLogFile() string
//   - HealLogFile() string
//   - MetricsLogFile() string
//   - EnsureStateDir() error
//
// Dependencies
//
// Dependencies (What This Needs):
//   Standard Library: os, path/filepath
//   External: none
//   Hook Libraries: none
//
// Dependents (What Uses This):
//   Executables: every hooks/tool/cmd-* and hooks/session/cmd-* binary
//   Libraries: hooks/lib/heal
//
// Health Scoring
//
// Path resolution operates on Base100 scale:
//
// Override support:
//   - All three env vars (state/config/hooks) are honored before falling back to defaults: +40
//
// Derivation consistency:
//   - Every *File function derives from StateDir(), so overrides cascade: +40
//
// Failure handling:
//   - homeDir()'s fallback never propagates an os.UserHomeDir() error upward: +20
//
// Total: 100 points for path resolution that is total, overridable, and never itself a failure mode.
package paths

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
// Standard library only: environment lookup and path joining.

import (
	"os"
	"path/filepath"
)

// ────────────────────────────────────────────────────────────────
// Constants - Named Values
// ────────────────────────────────────────────────────────────────

const (
	stateDirEnv = "STATE_DIR_OVERRIDE"
	configEnv   = "CONFIG_PATH_OVERRIDE"
	hooksDirEnv = "HOOKS_DIR_OVERRIDE"
)

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
//   └── homeDir → os.UserHomeDir with a "." fallback
//
//   Roots (depend on homeDir, check env overrides)
//   ├── StateDir
//   ├── ConfigPath
//   └── HooksDir
//
//   Derived (depend on StateDir)
//   ├── SpawnStateFile / ReadStateFile
//   ├── AuditLogFile / HealLogFile / MetricsLogFile
//   └── EnsureStateDir
//
// APUs (Available Processing Units):
// - 10 functions total: 9 exported, 1 unexported (homeDir)

// StateDir returns STATE_DIR_OVERRIDE, or ~/.claude/hooks/session-state.
func StateDir() string {
	if v := os.Getenv(stateDirEnv); v != "" {
		return v
	}
	return filepath.Join(homeDir(), ".claude", "hooks", "session-state")
}

// ConfigPath returns CONFIG_PATH_OVERRIDE, or
// ~/.claude/hooks/token-guard-config.json.
func ConfigPath() string {
	if v := os.Getenv(configEnv); v != "" {
		return v
	}
	return filepath.Join(homeDir(), ".claude", "hooks", "token-guard-config.json")
}

// HooksDir returns HOOKS_DIR_OVERRIDE, or ~/.claude/hooks.
func HooksDir() string {
	if v := os.Getenv(hooksDirEnv); v != "" {
		return v
	}
	return filepath.Join(homeDir(), ".claude", "hooks")
}

// homeDir resolves the user's home directory, falling back to "." rather
// than propagating os.UserHomeDir's error - path resolution never fails.
func homeDir() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return h
}

// SpawnStateFile returns <state>/<sid>.json.
func SpawnStateFile(sessionID string) string {
	return filepath.Join(StateDir(), sessionID+".json")
}

// ReadStateFile returns <state>/<sid>-reads.json.
func ReadStateFile(sessionID string) string {
	return filepath.Join(StateDir(), sessionID+"-reads.json")
}

// AuditLogFile returns <state>/audit.jsonl.
func AuditLogFile() string {
	return filepath.Join(StateDir(), "audit.jsonl")
}

// HealLogFile returns <state>/self-heal.jsonl.
func HealLogFile() string {
	return filepath.Join(StateDir(), "self-heal.jsonl")
}

// MetricsLogFile returns <state>/agent-metrics.jsonl.
func MetricsLogFile() string {
	return filepath.Join(StateDir(), "agent-metrics.jsonl")
}

// EnsureStateDir creates the state directory if missing. Best-effort: the
// caller decides whether a failure here is fatal (it never is on the hot
// path - §7 taxonomy #2).
//
// What It Does:
//   - Calls os.MkdirAll on StateDir() with 0755 permissions
//
// Returns:
//   the underlying os.MkdirAll error, if any - callers on the hot path ignore it
//
// Health Impact:
//   +10 points for returning the error rather than swallowing it, even though hot-path callers
//   choose to ignore it
func EnsureStateDir() error {
	return os.MkdirAll(StateDir(), 0755)
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
//   - Adding a new *File function for a new log/state kind
//
// Requires Care:
//   - The default path layout under ~/.claude/hooks - changing it breaks existing installs
//     that haven't re-run self-heal's structural repair
//
// Never Modify:
//   - The env var override precedence - self-heal's and the test suite's isolation depends on
//     overrides always winning over the default
//
// ────────────────────────────────────────────────────────────────
// Troubleshooting
// ────────────────────────────────────────────────────────────────
//
// Symptom: a test writes state into the real ~/.claude/hooks directory
//   Cause: STATE_DIR_OVERRIDE wasn't set before the test ran
//   Fix: set STATE_DIR_OVERRIDE to a temp directory in every test's setup, matching self-heal's
//   own smoke-test isolation (§4.9 step 2)
//
// ────────────────────────────────────────────────────────────────
// Roadmap
// ────────────────────────────────────────────────────────────────
//
// No planned changes - the path layout matches the documented defaults as specified.
