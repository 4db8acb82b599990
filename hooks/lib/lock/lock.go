// METADATA
//
// Lock - Cross-platform exclusive file lock for session-state access
//
// For METADATA structure explanation, see: standards/code/4-block/CWS-STD-004-CODE-metadata-block.md
//
// Biblical Foundation
//
// Scripture: "Two are better than one... if either of them falls down, one can help the other up" - Ecclesiastes 4:9-10 (NASB)
// Principle: Serialized, orderly access protects shared state the way ordered cooperation protects a shared task
// Anchor: Guarding a resource that many hands touch is stewardship, not obstruction
//
// CPI-SI Identity
//
// Component Type: LIBRARY - foundation rung (lowest-level primitive)
// Role: Provides the exclusive-lock primitive every session-state and audit-log writer builds on
// Paradigm: Advisory file locking so concurrent hook invocations never interleave a read-modify-write
//
// Authorship & Lineage
//
// Architect: token-guard maintainers
// Implementation: token-guard maintainers
// Creation Date: 2026-02-02
// Version: 1.0.0
// Last Modified: 2026-02-02 - Initial port from the session library's locked-access pattern
//
// Version History:
//   1.0.0 (2026-02-02) - Initial implementation on github.com/gofrs/flock
//
// Purpose & Function
//
// Purpose: Guard every read-modify-write on a session-state, read-state, or audit-log file so two
// concurrent hook invocations (e.g. two sub-agent spawns landing within the same second) never
// interleave their writes and corrupt the file.
//
// Core Design: A thin wrapper over github.com/gofrs/flock that hides the POSIX/Windows locking
// split from every call site. Acquire blocks until the lock is granted; Release always succeeds,
// even on a nil Handle, so callers can defer it unconditionally.
//
// Key Features:
//   - Blocking acquire (callers wait rather than fail on contention)
//   - Nil-safe release (defer h.Release() is always correct, even after a failed Acquire)
//   - One lock file per state file (no global lock, no cross-session contention)
//
// Philosophy: Locking is plumbing, not a feature - it should be invisible to every caller above it.
//
// Blocking Status
//
// Non-blocking to the hook's exit-code contract: Acquire can block the calling goroutine while it
// waits for the lock, but it never causes the hook to exit non-zero; callers decide what to do with
// an Acquire error (audit.go treats it as "skip this write, don't crash the hook"; the spawn and
// read guards exit 0).
//
// Usage & Integration
//
// Usage:
//
//	h, err := lock.Acquire(path + ".lock")
//	if err != nil {
//	    return // fail open - see hooks/lib/audit
//	}
//	defer h.Release()
//	// ... read-modify-write the guarded file ...
//
// Integration Pattern:
//  1. Derive a ".lock" sibling path from the file being guarded
//  2. Acquire before reading the current contents
//  3. Release (via defer) after the new contents are durably written
//
// Public API:
//   - Acquire(path string) (*Handle, error)
//   - (*Handle).Release()
//
// Dependencies
//
// Dependencies (What This Needs):
//   Standard Library: none directly
//   External: github.com/gofrs/flock
//   Hook Libraries: none (this is the foundation rung)
//
// Dependents (What Uses This):
//   Libraries: hooks/lib/audit
//   Executables: hooks/tool/cmd-spawn-guard, hooks/tool/cmd-read-guard (around each session-state
//   read-modify-write)
//
// Health Scoring
//
// Lock acquisition operates on Base100 scale:
//
// Acquire:
//   - Open/create the lock file: +40
//   - Grant the exclusive lock without deadlocking a single-writer workload: +40
//
// Release:
//   - Always releases, even on a nil Handle: +20
//
// Total: 100 points for a correctly guarded critical section.
package lock

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
// Only the external flock package - this library has no other dependency.

import (
	"github.com/gofrs/flock"
)

// ────────────────────────────────────────────────────────────────
// Types - Data Structures
// ────────────────────────────────────────────────────────────────

// Handle wraps an open, exclusively-lockable file. Callers obtain one with
// Acquire and must Release it once the critical section is done - typically
// via `defer h.Release()` immediately after a successful Acquire.
type Handle struct {
	flock *flock.Flock
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
//   Foundation (Bottom Rung - no dependents below it)
//   └── Acquire / Release → the only two operations this package exposes
//
// Baton Flow (Execution Path):
//
//   Caller → Acquire(path)
//     ↓
//   flock.New + Lock (blocks until granted)
//     ↓
//   Handle returned to caller
//     ↓
//   Caller's critical section runs
//     ↓
//   Caller → Release() (typically deferred)
//
// APUs (Available Processing Units):
// - 2 functions total, both exported

// Acquire opens (creating if necessary) the lock file at path and blocks
// until an exclusive advisory lock is granted. The lock is released on any
// exit path by calling Release on the returned Handle.
//
// What It Does:
//   - Creates the lock file if it doesn't already exist
//   - Blocks the calling goroutine until the exclusive lock is granted
//
// Parameters:
//   path - the lock file's path (callers pass a ".lock" sibling of the guarded file)
//
// Returns:
//   (*Handle, nil) on success; (nil, error) if the lock file couldn't be opened
//
// Health Impact:
//   +80 points for opening and granting the lock without corrupting concurrent access
func Acquire(path string) (*Handle, error) {
	fl := flock.New(path)
	if err := fl.Lock(); err != nil {
		return nil, err
	}
	return &Handle{flock: fl}, nil
}

// Release drops the exclusive lock and closes the underlying file
// descriptor. Safe to call on a nil Handle (no-op) so callers can defer it
// unconditionally after an Acquire that might have failed.
//
// What It Does:
//   - Unlocks and closes the underlying file descriptor
//   - No-ops silently on a nil Handle or a Handle with no underlying flock
//
// Parameters:
//   none (method receiver)
//
// Returns:
//   none
//
// Health Impact:
//   +20 points for never panicking regardless of Handle state
func (h *Handle) Release() {
	if h == nil || h.flock == nil {
		return
	}
	_ = h.flock.Unlock()
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
//   - Internal error wrapping/messages
//
// Requires Care:
//   - The blocking (vs. try-lock) semantics of Acquire - every caller assumes
//     Acquire either blocks until granted or returns a real error, never a
//     spurious "would block" result
//
// Never Modify:
//   - The nil-safe contract of Release - callers in hooks/lib/audit and the
//     spawn/read guards defer Release(), and a nil Handle left by a failed
//     Acquire must stay safe to release
//
// ────────────────────────────────────────────────────────────────
// Troubleshooting
// ────────────────────────────────────────────────────────────────
//
// Symptom: a state file is occasionally read with half-written JSON
//   Cause: a call site wrote the file without holding the lock for both the
//   read and the write half of its read-modify-write
//   Fix: hold the Handle across the entire critical section, not just the write
//
// Symptom: self-heal reports a stale lock file
//   Cause: a process crashed between Acquire and Release, leaving the lock
//   file orphaned; flock locks release automatically when the owning process
//   dies, but the file itself lingers on disk
//   Fix: hooks/lib/heal's state-health phase removes .lock files older than
//   its staleness threshold
//
// ────────────────────────────────────────────────────────────────
// Roadmap
// ────────────────────────────────────────────────────────────────
//
// No planned changes - this primitive is intentionally minimal.
