// METADATA
//
// cmd-read-guard - Hot-path entry point for Read tool events (C7)
//
// For METADATA structure explanation, see: standards/code/4-block/CWS-STD-004-CODE-metadata-block.md
//
// Biblical Foundation
//
// Scripture: "A prudent man foreseeth the evil, and hideth himself" - Proverbs 22:3 (KJV)
// Principle: Catching repeated or runaway reads early saves the tokens a flailing search would
// otherwise burn
// Anchor: A light touch here protects budget without getting in the way of normal work
//
// CPI-SI Identity
//
// Component Type: EXECUTABLE - PreToolUse hook for Read, thin orchestrator
// Role: Blocks duplicate and runaway sequential reads, warns on a sequential-read pattern, and
// advises when a file sits under a directory an Explore agent already walked this session
// Paradigm: Thin orchestrator - duplicate/sequential counting and Explore matching live in
// hooks/lib/guard; this binary wires stdin, locking, and state persistence together
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
// Purpose: Stop the second most common source of wasted tokens after runaway sub-agent spawns -
// re-reading the same file repeatedly, or reading file after file in a short window instead of
// using a targeted search.
//
// Core Design: readGuard parses the event, exits immediately for anything but a Read, then
// loads the session's ReadState under its own lock. DuplicatePathCount and SequentialReadCount
// (hooks/lib/guard) decide whether to block; exploreAdvisory separately checks the spawn guard's
// session file, under its own lock, for a prior Explore agent covering this path.
//
// Key Features:
//   - Acquires its own lock (<sid>-reads.json.lock) for the read-state read-modify-write
//   - exploreAdvisory acquires the spawn guard's lock separately, so it never observes a
//     partial write to that file (§5)
//   - ExploreWarned persists per-directory suppression in the read-state file itself, since
//     every hook invocation is a fresh process with no in-process event loop (§5)
//
// Philosophy: Two independent locks, two independent state files, one thin binary tying them
// together - each guard owns its own session file, and this binary reads the other's only under
// its lock, never writing to it.
//
// Grounded on hooks/tool/cmd-pre-use/pre-use.go's thin-orchestrator shape, mirrored from
// cmd-spawn-guard/main.go's pipeline structure.
//
// Blocking Status
//
// Blocking: exits 0 (allow) or 2 (block). A block means a duplicate-path or sequential-read
// threshold was crossed; every other outcome, including any internal failure, exits 0 (§7).
//
// Usage & Integration
//
// Usage:
//
//	$ echo '{"tool_name":"Read","tool_input":{"file_path":"/tmp/x.py"},"session_id":"sess1234abc"}' | ./cmd-read-guard
//	$ echo $?
//
// Integration Pattern:
//  1. Registered as the host's PreToolUse hook for the Read tool
//  2. Runs once per Read tool call, reading the event from stdin
//
// Public API:
//   - func main()
//
// Dependencies
//
// Dependencies (What This Needs):
//   Standard Library: os, strings, time
//   External: none directly (transitively via hooks/lib/lock: github.com/gofrs/flock)
//   Hook Libraries: hooks/lib/guard, hooks/lib/lock, hooks/lib/paths, hooks/lib/state
//
// Dependents (What Uses This):
//   Host: invoked directly as the PreToolUse(Read) hook binary
//
// Health Scoring
//
// This executable operates on Base100 scale:
//
// Duplicate-path block:
//   - Blocks at the documented threshold, recording the attempt before exiting: +25
//
// Sequential escalation:
//   - Escalates to a block past the documented ceiling, warns below it with rate-limited
//     repetition: +25
//
// Explore advisory:
//   - Correctly reads the spawn guard's session file under its own lock, never writing to it: +25
//
// Fail-open posture:
//   - Lock acquisition failure, decode failure, or a non-Read event all exit 0 immediately: +25
//
// Total: 100 points for a read guard that catches waste without ever risking a false block.
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
	"os"
	"strings"
	"time"

	"github.com/nova-dawn/token-guard/hooks/lib/guard"
	"github.com/nova-dawn/token-guard/hooks/lib/lock"
	"github.com/nova-dawn/token-guard/hooks/lib/paths"
	"github.com/nova-dawn/token-guard/hooks/lib/state"
)

// ────────────────────────────────────────────────────────────────
// Constants - Named Values
// ────────────────────────────────────────────────────────────────

const (
	exitAllow = 0
	exitBlock = 2
)

// sequentialWindowSeconds is SEQUENTIAL_WINDOW (§4.7 step 5).
const sequentialWindowSeconds = 120

const (
	duplicatePathThreshold      = 3
	sequentialWarnThreshold     = 4
	sequentialEscalateThreshold = 15
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
//   cmd-read-guard depends on:
//     hooks/lib/guard (ParseEvent, DuplicatePathCount, SequentialReadCount, ReadState, messages)
//     hooks/lib/lock (per-session-file advisory locking)
//     hooks/lib/paths (read-state / spawn-state path resolution)
//     hooks/lib/state (load-or-default, atomic save)
//
// Baton Flow (Execution Path):
//
//   Host PreToolUse(Read) event (stdin JSON)
//     → main() → readGuard()
//     → guard.ParseEvent → exit if not EventRead
//     → lock.Acquire(read-state lock) → state.Load(ReadState)
//     → guard.PruneReads
//     → DuplicatePathCount ≥ threshold? → block
//     → SequentialReadCount ≥ escalate? → block : ≥ warn? → non-blocking warning
//     → exploreAdvisory (separate lock on spawn-state file)
//     → append ReadRecord, state.Save, exit 0
//
// APUs (Available Processing Units):
// - 2 functions total: main, readGuard (plus exploreAdvisory as a helper)

// readGuard parses the Read event, applies the duplicate-path and
// sequential-read checks under the read-state lock, then checks the
// Explore advisory before recording and allowing.
//
// What It Does:
//   - Fails open on any parse/lock error or non-Read event
//   - Blocks on a duplicate-path or sequential-read threshold, recording the blocked attempt
//   - Otherwise appends the read and allows
//
// Health Impact:
//   +75 points collectively across the duplicate, sequential, and fail-open behaviors (see
//   METADATA)
func readGuard() {
	ev, err := guard.ParseEvent(os.Stdin)
	if err != nil {
		os.Exit(exitAllow)
	}
	if ev.Kind != guard.EventRead || ev.FilePath == "" {
		os.Exit(exitAllow)
	}

	paths.EnsureStateDir()

	statePath := paths.ReadStateFile(ev.SessionID)
	h, lockErr := lock.Acquire(statePath + ".lock")
	if lockErr != nil {
		os.Exit(exitAllow)
	}
	defer h.Release()

	now := time.Now().Unix()
	st := state.Load(statePath, guard.NewReadState)
	st.Reads = guard.PruneReads(st.Reads, now, 300)

	if n := guard.DuplicatePathCount(st.Reads, ev.FilePath); n >= duplicatePathThreshold {
		st.Reads = append(st.Reads, guard.ReadRecord{Path: ev.FilePath, Timestamp: now, Blocked: true})
		state.Save(statePath, st)
		guard.PrintReadDuplicateBlock(ev.FilePath)
		os.Exit(exitBlock)
	}

	seqCount := guard.SequentialReadCount(st.Reads, now, sequentialWindowSeconds)
	if seqCount >= sequentialEscalateThreshold {
		st.Reads = append(st.Reads, guard.ReadRecord{Path: ev.FilePath, Timestamp: now, Blocked: true})
		state.Save(statePath, st)
		guard.PrintReadEscalationBlock()
		os.Exit(exitBlock)
	}
	if seqCount >= sequentialWarnThreshold && now-st.LastSequentialWarn > sequentialWindowSeconds {
		guard.PrintReadSequentialWarning()
		st.LastSequentialWarn = now
	}

	exploreAdvisory(ev, &st)

	st.Reads = append(st.Reads, guard.ReadRecord{Path: ev.FilePath, Timestamp: now})
	state.Save(statePath, st)
	os.Exit(exitAllow)
}

// exploreAdvisory opens the spawn guard's session file under its own lock
// (§5: "the read guard acquires the spawn-guard lock for that read so it
// never observes a partial write") and warns, non-blockingly, if file_path
// falls under a directory an Explore agent already walked this session.
// Each hook invocation is a fresh process (§5: "no in-process event loop"),
// so suppressing repeat warnings for the same directory has to live in the
// persisted read-state file, not an in-process limiter.
func exploreAdvisory(ev guard.Event, st *guard.ReadState) {
	spawnStatePath := paths.SpawnStateFile(ev.SessionID)
	h, err := lock.Acquire(spawnStatePath + ".lock")
	if err != nil {
		return
	}
	defer h.Release()

	spawnState := state.Load(spawnStatePath, guard.NewSpawnState)

	for _, agent := range spawnState.Agents {
		if agent.Type != "Explore" {
			continue
		}
		for _, dir := range agent.TargetDirs {
			if ev.FilePath != dir && !strings.HasPrefix(ev.FilePath, dir+"/") {
				continue
			}
			if st.ExploreWarned[dir] {
				return
			}
			guard.PrintExploreAdvisory(dir)
			if st.ExploreWarned == nil {
				st.ExploreWarned = make(map[string]bool)
			}
			st.ExploreWarned[dir] = true
			return
		}
	}
}

// main is the named entry point.
func main() {
	readGuard()
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
//   - The threshold constants, if operational experience suggests different values
//
// Requires Care:
//   - exploreAdvisory's lock acquisition on the spawn guard's session file - it must always be
//     released (the defer already guarantees this) and must never write to that file
//
// Never Modify:
//   - The 4-block structure (METADATA → SETUP → BODY → CLOSING)
//   - The named entry point pattern (main calls readGuard)
//   - The fail-open contract on any parse or lock error
//
// ────────────────────────────────────────────────────────────────
// Code Validation: Build and Hook Testing
// ────────────────────────────────────────────────────────────────
//
// Manual execution (allowed read):
//   $ echo '{"tool_name":"Read","tool_input":{"file_path":"/tmp/x.py"},"session_id":"sess1234abc"}' \
//     | ./cmd-read-guard; echo $?   # 0
//
// Manual execution (duplicate-path block, after 3 reads of the same path):
//   $ for i in 1 2 3; do echo '{"tool_name":"Read","tool_input":{"file_path":"/tmp/x.py"},
//     "session_id":"sess1234abc"}' | ./cmd-read-guard; done; echo $?   # 2 on the third
//
// ────────────────────────────────────────────────────────────────
// Troubleshooting
// ────────────────────────────────────────────────────────────────
//
// Symptom: the Explore advisory never fires even after an Explore agent ran
//   Cause: hooks/lib/guard.ExtractTargetDirs didn't recognize the prompt's directory reference,
//   or the read's file_path doesn't share a prefix with any recorded TargetDirs entry
//   Fix: expected for relative-path prompts; inspect the spawn guard's AgentRecord.TargetDirs
//   for that session
//
// Symptom: reads are never blocked even after far more than 3 repeats
//   Cause: the read-state lock couldn't be acquired, so the guard failed open before loading
//   state (the read guard does not validate the session id)
//   Fix: confirm the state directory is writable and <sid>-reads.json.lock can be opened
//
// ────────────────────────────────────────────────────────────────
// Roadmap
// ────────────────────────────────────────────────────────────────
//
// No planned changes - the duplicate/sequential/advisory behavior matches §4.7 as specified.
