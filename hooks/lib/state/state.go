// METADATA
//
// State - Concurrency-safe JSON state store (load-or-default, atomic save)
//
// For METADATA structure explanation, see: standards/code/4-block/CWS-STD-004-CODE-metadata-block.md
//
// Biblical Foundation
//
// Scripture: "Let all things be done decently and in order" - 1 Corinthians 14:40 (NASB)
// Principle: A state file that's half-written is worse than one that's absent - order protects truth
// Anchor: Atomic persistence is faithfulness to the data, not mere mechanism
//
// CPI-SI Identity
//
// Component Type: LIBRARY - foundation rung (generic over any state shape)
// Role: Provides the load-or-default / atomic-save contract every session-state file relies on
// Paradigm: A corrupted or missing state file is treated as equivalent to a fresh one, never an error
//
// Authorship & Lineage
//
// Architect: token-guard maintainers
// Implementation: token-guard maintainers
// Creation Date: 2026-02-02
// Version: 1.0.0
// Last Modified: 2026-02-02 - Initial Go port of the atomic-rename pattern
//
// Version History:
//   1.0.0 (2026-02-02) - Initial implementation using Go generics
//
// Purpose & Function
//
// Purpose: Give SpawnState and ReadState (and any future per-session state shape) one shared
// load-or-default and atomic-save implementation, so neither guard has to hand-roll its own
// corruption handling or temp-file dance.
//
// Core Design: Load[T] decodes into a fresh T built by a caller-supplied factory, collapsing
// "missing file", "unreadable file", and "malformed JSON" into the same outcome: the default.
// Save writes to a sibling temp file in the same directory and renames it over the target, so a
// reader never observes a partially-written file.
//
// Key Features:
//   - Generic over any JSON-serializable state shape (Go generics, no reflection-heavy interface)
//   - Never raises - both operations return a zero value / bool rather than an error
//   - Atomic save via temp-file-plus-rename (same filesystem, so rename is atomic)
//
// Philosophy: A state file is working memory, not a ledger - losing it should degrade gracefully
// back to a fresh start, never crash the hook that depends on it.
//
// Blocking Status
//
// Non-blocking: neither Load nor Save can cause a hook to exit non-zero by itself; every call site
// treats a false/default return as "proceed with a fresh state," per §7's fail-open taxonomy.
//
// Usage & Integration
//
// Usage:
//
//	st := state.Load(path, guard.NewSpawnState)
//	st.AgentCount++
//	state.Save(path, st)
//
// Integration Pattern:
//  1. Define a defaultFactory for the state shape (e.g. guard.NewSpawnState)
//  2. Load under a lock.Handle held for the whole read-modify-write
//  3. Mutate the in-memory value
//  4. Save while still holding the same lock
//
// Public API:
//   - Load[T any](path string, defaultFactory func() T) T
//   - Save(path string, v any) bool
//
// Dependencies
//
// Dependencies (What This Needs):
//   Standard Library: encoding/json, os, path/filepath
//   External: none
//   Hook Libraries: none directly (callers pair this with hooks/lib/lock for the locking half)
//
// Dependents (What Uses This):
//   Executables: hooks/tool/cmd-spawn-guard, hooks/tool/cmd-read-guard
//
// Health Scoring
//
// State persistence operates on Base100 scale:
//
// Load:
//   - Returns the default on any error path (missing, unreadable, malformed): +40
//
// Save:
//   - Writes to a temp file first: +20
//   - Renames atomically over the target: +20
//   - Cleans up the temp file on every failure branch: +20
//
// Total: 100 points for a save that never leaves a reader with a torn file.
package state

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
// Standard library only: JSON codec, file I/O, path manipulation.

import (
	"encoding/json"
	"os"
	"path/filepath"
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
//   Foundation (Bottom Rung)
//   ├── Load[T] → read-or-default
//   └── Save → write-then-rename
//
// Baton Flow (Save's Execution Path):
//
//   Caller → Save(path, v)
//     ↓
//   CreateTemp in same directory
//     ↓
//   MarshalIndent(v)
//     ↓
//   Write + Close temp file
//     ↓
//   Rename temp over path (atomic)
//     ↓
//   true returned, or temp removed and false returned on any failure
//
// APUs (Available Processing Units):
// - 2 functions total, both exported, both generic-free except Load's type parameter

// Load reads and JSON-decodes the file at path into a freshly constructed T
// (via defaultFactory). On any error - missing file, unreadable, malformed
// JSON - Load returns defaultFactory()'s result rather than the error, since
// a corrupted state file is defined (§3 invariants) as equivalent to an
// absent one.
//
// What It Does:
//   - Reads path, JSON-decodes into T, or falls back to defaultFactory() on any error
//
// Parameters:
//   path - the state file's path
//   defaultFactory - constructs a fresh T when path is missing or unreadable
//
// Returns:
//   the decoded T, or defaultFactory()'s result
//
// Health Impact:
//   +40 points for collapsing every error path into the same safe default
func Load[T any](path string, defaultFactory func() T) T {
	data, err := os.ReadFile(path)
	if err != nil {
		return defaultFactory()
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return defaultFactory()
	}
	return v
}

// Save atomically persists v as JSON to path: write to a temp file in the
// same directory, then rename over the target. On any failure the temp file
// is removed and path is left untouched. Never raises; returns false on
// failure so callers can log and continue (state-save failures are
// non-fatal per §7).
//
// What It Does:
//   - Marshals v as indented JSON, writes it to a temp file, renames it over path
//   - Removes the temp file and leaves path untouched on any failure
//
// Parameters:
//   path - the destination state file's path
//   v - the value to persist (any JSON-marshalable type)
//
// Returns:
//   true on a durable rename, false on any failure
//
// Health Impact:
//   +60 points for the full write-temp-then-rename sequence with cleanup on every failure branch
func Save(path string, v any) bool {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return false
	}
	tmpPath := tmp.Name()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return false
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return false
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return false
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return false
	}
	return true
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
//   - The indentation/formatting passed to MarshalIndent
//
// Requires Care:
//   - The temp file must stay in filepath.Dir(path) - Rename is only atomic
//     within the same filesystem/directory
//
// Never Modify:
//   - The "never raise" contract - every cmd-* binary that calls Load/Save
//     assumes a bool/zero-value return, not a panic or error
//
// ────────────────────────────────────────────────────────────────
// Troubleshooting
// ────────────────────────────────────────────────────────────────
//
// Symptom: Save returns false in self-heal's smoke tests
//   Cause: the state directory isn't writable (permissions, read-only mount)
//   Fix: checked explicitly by hooks/lib/heal's structural phase before Save is ever called
//
// Symptom: an old .tmp file lingers in the state directory
//   Cause: the process was killed between CreateTemp and the Rename/Remove that would have
//   cleaned it up
//   Fix: hooks/lib/heal's state-health phase sweeps orphaned .tmp files
//
// ────────────────────────────────────────────────────────────────
// Roadmap
// ────────────────────────────────────────────────────────────────
//
// No planned changes - the two-operation contract is intentionally complete.
