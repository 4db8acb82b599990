// METADATA
//
// Audit - Append-only JSONL log of every spawn/read governance decision
//
// For METADATA structure explanation, see: standards/code/4-block/CWS-STD-004-CODE-metadata-block.md
//
// Biblical Foundation
//
// Scripture: "Nothing is hidden that will not be revealed, nor secret that will not be made known" - Luke 8:17 (NASB)
// Principle: A durable, honest record of every allow/block decision lets the system be audited, not just trusted
// Anchor: Faithful recordkeeping is accountability, not surveillance
//
// CPI-SI Identity
//
// Component Type: LIBRARY - hot-path writer plus cold-path reader
// Role: Records every spawn/read governance decision and lets self-heal and the analytics reducer fold the log
// Paradigm: Locked append on the hot path, fault-tolerant read everywhere else
//
// Authorship & Lineage
//
// Architect: token-guard maintainers
// Implementation: token-guard maintainers
// Creation Date: 2026-02-02
// Version: 1.0.0
// Last Modified: 2026-02-02 - Initial Go port of the locked-JSONL-append pattern
//
// Version History:
//   1.0.0 (2026-02-02) - Initial implementation
//
// Purpose & Function
//
// Purpose: Give spawn-guard one locked append operation for the audit log, and give self-heal and the analytics reducer one fault-tolerant read operation for
// folding it, plus the single-backup rotation self-heal performs when the log grows too large.
//
// Core Design: Append locks a sibling ".lock" file, opens the log in append mode, writes one JSON
// line, and releases - matching the hot path's O(1) cost requirement. ReadJSONLFaultTolerant scans
// line by line and discards any line that fails to decode, so one corrupted line never aborts the
// whole fold. Rotation (performed only by self-heal, never the hot path - §4.3) renames the current
// log to a ".1" backup, clobbering any prior backup.
//
// Key Features:
//   - O(1) hot-path append (lock, open, write, close, release)
//   - Fault-tolerant reads (a malformed line is skipped, not fatal)
//   - Rotation is a cold-path concern, not embedded in the hot-path writer
//   - Field truncation on construction (desc to 80 chars, session to 12) per the data model's limits
//
// Philosophy: The audit log is a record of what happened, not a transaction log that must never
// lose a line - if appending fails, the tool call must still succeed (§7 fail-open taxonomy #2).
//
// Blocking Status
//
// Non-blocking: Append swallows every error (lock failure, open failure, write failure) because
// audit logging must never be the reason a hook blocks or crashes a tool call.
//
// Usage & Integration
//
// Usage:
//
//	audit.Append(path, audit.NewRecord(audit.EventBlock, "Explore", desc, sessionID))
//	records := audit.ReadJSONLFaultTolerant(path)
//	if audit.CountLines(path) > 10000 {
//	    audit.Rotate(path)
//	}
//
// Integration Pattern:
//  1. Build a Record with NewRecord (handles timestamp + truncation)
//  2. Append it - never check a return value, there isn't one
//  3. Cold-path readers (self-heal, analytics) call ReadJSONLFaultTolerant or CountLines
//
// Public API:
//   - NewRecord(event Event, typ, desc, session string) Record
//   - Append(path string, rec Record)
//   - ReadJSONLFaultTolerant(path string) []Record
//   - CountLines(path string) int
//   - Rotate(path string)
//
// Dependencies
//
// Dependencies (What This Needs):
//   Standard Library: bufio, encoding/json, os, time
//   External: none
//   Hook Libraries: hooks/lib/lock (the exclusive-lock primitive)
//
// Dependents (What Uses This):
//   Executables: hooks/tool/cmd-spawn-guard (and hooks/session/cmd-self-heal via hooks/lib/heal)
//   Libraries: hooks/lib/analytics, hooks/lib/heal
//
// Health Scoring
//
// Audit logging operates on Base100 scale:
//
// Append:
//   - Acquires the lock before touching the file: +30
//   - Writes exactly one well-formed JSON line: +30
//   - Never propagates an error to the caller: +10
//
// Reading:
//   - Skips malformed lines instead of aborting: +20
//   - Treats a missing file as zero records, not an error: +10
//
// Total: 100 points for a log that's always appendable and always readable.
package audit

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
// Standard library for buffered scanning, JSON, file I/O, and timestamps.
// hooks/lib/lock for the exclusive-lock primitive guarding each append.

import (
	"bufio"
	"encoding/json"
	"os"
	"time"

	"github.com/nova-dawn/token-guard/hooks/lib/lock"
)

// ────────────────────────────────────────────────────────────────
// Types - Data Structures
// ────────────────────────────────────────────────────────────────

// Event names an audit record's event field (§3).
type Event string

const (
	EventAllow     Event = "allow"
	EventBlock     Event = "block"
	EventAllowTeam Event = "allow_team"
	EventResume    Event = "resume"
	EventWarn      Event = "warn"
)

// Record is one audit-log line (§3). Session is truncated to 12 chars by
// the caller before being set here (the field itself doesn't enforce it,
// matching how Go json structs don't validate on encode).
type Record struct {
	Timestamp string `json:"ts"`
	Event     Event  `json:"event"`
	Type      string `json:"type"`
	Desc      string `json:"desc"`
	Session   string `json:"session"`
	Reason    string `json:"reason,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
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
//   Construction
//   ├── NewRecord → builds a Record with timestamp + truncation
//   └── truncate → shared helper
//
//   Hot Path
//   └── Append → lock, open, write one line, release
//
//   Cold Path
//   ├── ReadJSONLFaultTolerant → full fold, skip bad lines
//   ├── CountLines → cheap line count, no decoding
//   └── Rotate → rename-to-backup
//
// Baton Flow (Append's Execution Path):
//
//   Caller → Append(path, rec)
//     ↓
//   json.Marshal(rec)
//     ↓
//   lock.Acquire(path + ".lock")
//     ↓
//   OpenFile append-or-create
//     ↓
//   Write one line, Close, Release
//
// APUs (Available Processing Units):
// - 6 functions total, 5 exported, 1 unexported helper (truncate)

// NewRecord fills in Timestamp (ISO-8601 local, §3) and truncates Desc to
// 80 chars / Session to 12 chars per the data-model field limits.
//
// What It Does:
//   - Stamps the current local time in ISO-8601 form
//   - Truncates Desc and Session to their documented field limits
//
// Parameters:
//   event - the Event constant this record represents
//   typ - the sub-agent type or tool name involved
//   desc - the free-text description (truncated to 80 chars)
//   session - the session id (truncated to 12 chars)
//
// Returns:
//   a Record ready for Append
//
// Health Impact:
//   +20 points for correct field truncation on every construction path
func NewRecord(event Event, typ, desc, session string) Record {
	return Record{
		Timestamp: time.Now().Format("2006-01-02T15:04:05-07:00"),
		Event:     event,
		Type:      typ,
		Desc:      truncate(desc, 80),
		Session:   truncate(session, 12),
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Append locks path.lock, opens path for append, writes one JSON line, and
// releases the lock. Non-fatal on any error (§4.3, §7 taxonomy #2) - errors
// are swallowed because audit logging failing must never block a tool call.
//
// What It Does:
//   - Marshals rec, acquires the lock, appends one line, releases the lock
//   - Returns silently on any failure at any step
//
// Parameters:
//   path - the audit log's path
//   rec - the Record to append
//
// Returns:
//   none
//
// Health Impact:
//   +70 points for a correctly locked, single-line, non-fatal append
func Append(path string, rec Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}

	h, err := lock.Acquire(path + ".lock")
	if err != nil {
		return
	}
	defer h.Release()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	f.Write(append(data, '\n'))
}

// ReadJSONLFaultTolerant yields every well-formed line in path, silently
// discarding malformed ones - a single corrupted line must never abort the
// read (§4.3). Returns an empty slice (not an error) if path is missing or
// unreadable.
//
// What It Does:
//   - Scans path line by line, decoding each into a Record
//   - Skips empty lines and lines that fail to decode
//
// Parameters:
//   path - the audit log's path
//
// Returns:
//   the well-formed records, in file order; nil if path is missing
//
// Health Impact:
//   +20 points for never aborting the fold on one bad line
func ReadJSONLFaultTolerant(path string) []Record {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// CountLines counts the raw lines in path without decoding them, used by
// self-heal to decide whether rotation is due (§4.9 phase 3). A missing
// file counts as zero.
//
// What It Does:
//   - Scans path line by line, counting lines without decoding them
//
// Parameters:
//   path - the audit log's path
//
// Returns:
//   the line count, or zero if path is missing
//
// Health Impact:
//   +5 points as a cheap precondition check for rotation
func CountLines(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		count++
	}
	return count
}

// Rotate renames path to path+".1", clobbering any existing backup - the
// sole-backup rotation contract §3/§4.3 describe. Non-fatal on error.
//
// What It Does:
//   - Removes any existing ".1" backup, then renames path to that backup name
//
// Parameters:
//   path - the audit log's path
//
// Returns:
//   none
//
// Health Impact:
//   +5 points for keeping exactly one backup generation
func Rotate(path string) {
	backup := path + ".1"
	os.Remove(backup)
	os.Rename(path, backup)
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
//   - The scanner buffer size in ReadJSONLFaultTolerant/CountLines
//
// Requires Care:
//   - Append must stay O(1) - no full-file read before the write, no
//     decoding of existing lines; that cost belongs to the cold-path readers
//
// Never Modify:
//   - Append's "swallow every error" contract - every hot-path caller
//     assumes logging can never cause a block or a crash
//
// ────────────────────────────────────────────────────────────────
// Troubleshooting
// ────────────────────────────────────────────────────────────────
//
// Symptom: the audit log is missing recent entries
//   Cause: lock.Acquire failed (e.g. a stuck lock file) and Append returned early
//   Fix: self-heal's state-health phase removes stale lock files on the next run
//
// Symptom: analytics.BuildReport undercounts events
//   Cause: one or more lines are malformed and ReadJSONLFaultTolerant silently dropped them
//   Fix: expected behavior, not a bug - check self-heal.jsonl for a corresponding rotation or repair action
//
// ────────────────────────────────────────────────────────────────
// Roadmap
// ────────────────────────────────────────────────────────────────
//
// No planned changes - hot-path append must stay minimal.
