// METADATA
//
// cmd-spawn-guard - Hot-path entry point for Task tool events (C6), plus the analytics CLI surface
//
// For METADATA structure explanation, see: standards/code/4-block/CWS-STD-004-CODE-metadata-block.md
//
// Biblical Foundation
//
// Scripture: "In the multitude of counsellors there is safety" - Proverbs 11:14 (KJV)
// Principle: A fixed cascade of independent rules, applied every time, keeps token spend
// governed without needing a human in the loop for every spawn
// Anchor: The governor's authority rests on consistency, not cleverness - the same rules, the
// same order, every time
//
// CPI-SI Identity
//
// Component Type: EXECUTABLE - PreToolUse hook for Task, thin orchestrator, plus a cobra CLI
// Role: Runs the R1-R7 rule cascade against every sub-agent spawn attempt, records the outcome,
// and exposes --report/--usage analytics as subcommands of the same binary
// Paradigm: Thin orchestrator on the hot path, cobra subcommands only reached when os.Args
// carries flags - the stdin pipeline never pays cobra's flag-parsing cost
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
// Purpose: Be the single governing checkpoint every Task spawn passes through - deciding allow,
// block, or team-bypass - and give the rest of the suite a way to see what it's decided, via
// --report and --usage.
//
// Core Design: spawnGuard parses the event, validates the session id, loads config, checks the
// always_allowed bypass, handles a resume specially, sweeps stale state, then acquires the
// session's lock for the rule cascade. Team spawns take a separate path (spawnGuardTeamPath)
// that only enforces the session cap. Every outcome - allow, block, team-allow, resume - is
// optionally audited; every block is recorded as a BlockedAttempt for R6 to compare against later.
//
// Key Features:
//   - sweepStaleState runs once per hot-path invocation, deleting state files older than the
//     configured TTL, excluding the audit log and its rotation backup
//   - Team spawns bypass R1-R7 entirely but still respect the session cap (§4.6 step 7)
//   - The CLI surface (report/usage subcommands) only activates when os.Args carries arguments -
//     the stdin pipeline is the default, zero-argument path
//
// Philosophy: One binary, two audiences - the host calling it silently on every Task spawn, and
// a developer invoking it by hand to see what the governor has been doing.
//
// Grounded on hooks/tool/cmd-pre-use/pre-use.go's thin-orchestrator shape: main() delegates to
// a single named verb function that does all the work and calls os.Exit itself.
//
// Blocking Status
//
// Blocking: exits 0 (allow, optional advisory on stderr) or 2 (block, reason on stderr). An
// invalid session id is itself a block (§4.6 step 2), distinct from the rule cascade's blocks.
//
// Usage & Integration
//
// Usage:
//
//	$ echo '{"tool_name":"Task","tool_input":{"subagent_type":"Explore","description":"survey the auth package"},"session_id":"sess1234abc"}' | ./cmd-spawn-guard
//	$ ./cmd-spawn-guard report
//	$ ./cmd-spawn-guard usage
//
// Integration Pattern:
//  1. Registered as the host's PreToolUse hook for the Task tool (zero-argument stdin pipeline)
//  2. Invoked directly with a subcommand for ad hoc reporting
//
// Public API:
//   - func main()
//
// Dependencies
//
// Dependencies (What This Needs):
//   Standard Library: fmt, os, time
//   External: github.com/spf13/cobra
//   Hook Libraries: hooks/lib/analytics, hooks/lib/audit, hooks/lib/config, hooks/lib/guard,
//   hooks/lib/lock, hooks/lib/paths, hooks/lib/state
//
// Dependents (What Uses This):
//   Host: invoked directly as the PreToolUse(Task) hook binary, and by hand for --report/--usage
//
// Health Scoring
//
// This executable operates on Base100 scale:
//
// Rule cascade integration:
//   - Delegates the full R1-R7 decision to hooks/lib/guard.EvaluateSpawnRules unmodified: +25
//
// Bypass handling:
//   - always_allowed, resume, and team paths each apply their documented, narrower rules: +25
//
// State hygiene:
//   - Records every block for R6, sweeps stale state, locks around the full read-modify-write: +25
//
// CLI surface:
//   - report/usage subcommands never run on the hot path, and never affect its exit code: +25
//
// Total: 100 points for a hot-path governor that is also a trustworthy reporting tool.
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
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra" // --report / --usage subcommands

	"github.com/nova-dawn/token-guard/hooks/lib/analytics"
	"github.com/nova-dawn/token-guard/hooks/lib/audit"
	"github.com/nova-dawn/token-guard/hooks/lib/config"
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
//   cmd-spawn-guard depends on:
//     hooks/lib/guard (ParseEvent, ValidSessionID, EvaluateSpawnRules, state types, messages)
//     hooks/lib/config (threshold/cap loading)
//     hooks/lib/audit (allow/block/resume/allow_team event logging)
//     hooks/lib/lock, hooks/lib/state (session-file locking and persistence)
//     hooks/lib/paths (every derived path)
//     hooks/lib/analytics (report/usage CLI subcommands)
//
// Baton Flow (Execution Path, hot path):
//
//   Host PreToolUse(Task) event (stdin JSON)
//     → main() → spawnGuard()
//     → guard.ParseEvent → exit if not EventTask
//     → guard.ValidSessionID → block if invalid
//     → config.Load → always_allowed bypass? → allow
//     → resume? → audit EventResume → allow
//     → sweepStaleState → lock.Acquire(session lock)
//     → state.Load(SpawnState) → PruneBlockedAttempts
//     → team spawn? → spawnGuardTeamPath (session cap only) → allow
//     → guard.EvaluateSpawnRules → blocked? → record BlockedAttempt, audit, PrintBlock, exit 2
//     → first-agent / opus advisories → build AgentRecord (+ TargetDirs for Explore)
//     → persist, audit EventAllow, exit 0
//
//   CLI path (os.Args carries a subcommand):
//     main() → runCLI() → cobra root → report/usage subcommand → analytics.Build* → print*
//
// APUs (Available Processing Units):
// - 10 functions total: main, runCLI, reportCmd, usageCmd, printReport, printUsage, printTopN,
//   spawnGuard, spawnGuardTeamPath, sweepStaleState

// main dispatches to the CLI (when os.Args carries arguments) or the
// hot-path stdin pipeline (the zero-argument default).
func main() {
	if len(os.Args) > 1 {
		runCLI()
		return
	}
	spawnGuard()
}

// runCLI builds the cobra root command and its report/usage subcommands.
func runCLI() {
	root := &cobra.Command{
		Use:   "cmd-spawn-guard",
		Short: "Task-spawn governor hot path, plus offline analytics",
	}
	root.AddCommand(reportCmd(), usageCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// reportCmd folds the audit and metrics logs into the full --report breakdown.
func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Fold the audit and metrics logs into counts and cost estimates",
		Run: func(cmd *cobra.Command, args []string) {
			r := analytics.BuildReport(paths.AuditLogFile(), paths.MetricsLogFile())
			printReport(r)
		},
	}
}

// usageCmd prints the shorter public --usage summary.
func usageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Print a short public summary of governor activity",
		Run: func(cmd *cobra.Command, args []string) {
			u := analytics.BuildUsage(paths.AuditLogFile())
			printUsage(u)
		},
	}
}

// printReport renders a full analytics.Report to stdout.
func printReport(r analytics.Report) {
	fmt.Printf("allow=%d block=%d resume=%d team=%d\n", r.Allow, r.Block, r.Resume, r.Team)
	fmt.Printf("estimated tokens saved: %d (~$%.2f)\n", r.EstTokensSaved, r.EstCostSavedUSD)
	printTopN("by type", r.ByType)
	printTopN("by reason", r.ByReason)
	printTopN("by necessity pattern", r.ByPattern)
	if r.Real != nil {
		fmt.Printf("real usage: input=%d output=%d calls=%d cost=$%.4f\n",
			r.Real.InputTokens, r.Real.OutputTokens, r.Real.APICalls, r.Real.CostUSD)
	}
}

// printUsage renders the shorter analytics.Usage summary to stdout.
func printUsage(u analytics.Usage) {
	fmt.Printf("sessions tracked: %d\n", u.SessionsTracked)
	fmt.Printf("total attempts: %d\n", u.TotalAttempts)
	fmt.Printf("blocked: %d\n", u.BlockCount)
	fmt.Printf("estimated savings: ~$%.2f\n", u.EstCostSavedUSD)
	printTopN("top block reasons", u.TopBlockReasons)
}

// printTopN renders up to the first 10 entries of a top-N breakdown.
func printTopN(label string, entries []analytics.CountEntry) {
	if len(entries) == 0 {
		return
	}
	fmt.Println(label + ":")
	for i, e := range entries {
		if i >= 10 {
			break
		}
		fmt.Printf("  %-24s %d\n", e.Name, e.Count)
	}
}

// spawnGuard runs the full spawn-guard pipeline and exits with the
// governing rule's verdict. It never returns.
//
// What It Does:
//   - Parses the event, validates the session id, applies the always_allowed/resume/team
//     bypasses, runs the R1-R7 cascade, persists state, and audits the outcome
//
// Health Impact:
//   +75 points collectively across rule cascade integration, bypass handling, and state
//   hygiene (see METADATA)
func spawnGuard() {
	ev, err := guard.ParseEvent(os.Stdin)
	if err != nil {
		os.Exit(exitAllow)
	}
	if ev.Kind != guard.EventTask {
		os.Exit(exitAllow)
	}

	if !guard.ValidSessionID(ev.SessionID) {
		fmt.Fprintln(os.Stderr, "invalid session id")
		os.Exit(exitBlock)
	}

	cfg := config.Load(paths.ConfigPath())

	if cfg.AlwaysAllowedSet[ev.SubagentType] {
		os.Exit(exitAllow)
	}

	now := time.Now().Unix()

	if ev.Resume {
		if cfg.AuditLog {
			audit.Append(paths.AuditLogFile(), audit.NewRecord(audit.EventResume, ev.SubagentType, ev.Description, ev.SessionID))
		}
		os.Exit(exitAllow)
	}

	paths.EnsureStateDir()
	sweepStaleState(cfg.StateTTLHours)

	statePath := paths.SpawnStateFile(ev.SessionID)
	h, lockErr := lock.Acquire(statePath + ".lock")
	if lockErr != nil {
		os.Exit(exitAllow)
	}
	defer h.Release()

	st := state.Load(statePath, guard.NewSpawnState)
	st.BlockedAttempts = guard.PruneBlockedAttempts(st.BlockedAttempts, now, 300)

	if ev.TeamName != "" {
		spawnGuardTeamPath(cfg, &st, ev, now, statePath)
		os.Exit(exitAllow)
	}

	verdict := guard.EvaluateSpawnRules(cfg, st, ev, now)
	if verdict.Blocked {
		st.BlockedAttempts = append(st.BlockedAttempts, guard.BlockedAttempt{
			Type:        ev.SubagentType,
			Description: ev.Description,
			Timestamp:   now,
		})
		state.Save(statePath, st)
		if cfg.AuditLog {
			rec := audit.NewRecord(audit.EventBlock, ev.SubagentType, ev.Description, ev.SessionID)
			rec.Reason = verdict.Reason
			rec.Pattern = verdict.Pattern
			audit.Append(paths.AuditLogFile(), rec)
		}
		guard.PrintBlock(verdict, verdict.Suggestion)
		os.Exit(exitBlock)
	}

	if st.AgentCount == 0 {
		guard.PrintFirstAgentNotice()
	}
	if ev.Model == "opus" {
		guard.PrintOpusCostAdvisory()
	}

	record := guard.AgentRecord{
		Type:        ev.SubagentType,
		Description: ev.Description,
		Timestamp:   now,
	}
	if ev.SubagentType == "Explore" {
		record.TargetDirs = guard.ExtractTargetDirs(ev.Prompt)
	}

	st.AgentCount++
	st.Agents = append(st.Agents, record)
	state.Save(statePath, st)

	if cfg.AuditLog {
		audit.Append(paths.AuditLogFile(), audit.NewRecord(audit.EventAllow, ev.SubagentType, ev.Description, ev.SessionID))
	}
	os.Exit(exitAllow)
}

// spawnGuardTeamPath handles the team bypass (§4.6 step 7): only the
// session cap applies, and the allow is audited distinctly as allow_team.
func spawnGuardTeamPath(cfg config.Config, st *guard.SpawnState, ev guard.Event, now int64, statePath string) {
	if st.AgentCount >= cfg.MaxAgents {
		if cfg.AuditLog {
			rec := audit.NewRecord(audit.EventBlock, ev.SubagentType, ev.Description, ev.SessionID)
			rec.Reason = "session_cap: max_agents reached (team)"
			audit.Append(paths.AuditLogFile(), rec)
		}
		state.Save(statePath, *st)
		fmt.Fprintln(os.Stderr, "blocked: session agent cap reached, no more sub-agents this session")
		os.Exit(exitBlock)
	}

	st.AgentCount++
	st.Agents = append(st.Agents, guard.AgentRecord{
		Type:        ev.SubagentType,
		Description: ev.Description,
		Timestamp:   now,
		Team:        ev.TeamName,
	})
	state.Save(statePath, *st)
	if cfg.AuditLog {
		audit.Append(paths.AuditLogFile(), audit.NewRecord(audit.EventAllowTeam, ev.SubagentType, ev.Description, ev.SessionID))
	}
}

// sweepStaleState deletes state-directory files older than ttlHours,
// excluding the audit log and its backup (§4.6 step 5). Best-effort.
func sweepStaleState(ttlHours int) {
	dir := paths.StateDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-time.Duration(ttlHours) * time.Hour)
	for _, entry := range entries {
		name := entry.Name()
		if name == "audit.jsonl" || name == "audit.jsonl.1" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(dir + "/" + name)
		}
	}
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
//   - Adding a new cobra subcommand alongside report/usage
//   - printReport/printUsage/printTopN's output formatting
//
// Requires Care:
//   - sweepStaleState's audit-log exclusion list - a new rotation artifact name must be added
//     here or it will be swept away as stale
//   - spawnGuardTeamPath - it intentionally skips R1-R7 entirely; any change here should be
//     checked against §4.6 step 7's documented scope (session cap only)
//
// Never Modify:
//   - The 4-block structure (METADATA → SETUP → BODY → CLOSING)
//   - The named entry point pattern (main dispatches to runCLI or spawnGuard)
//   - The CLI path's inability to affect the hot path's exit code - os.Args-based dispatch must
//     stay the only branch point between them
//
// ────────────────────────────────────────────────────────────────
// Code Validation: Build and Hook Testing
// ────────────────────────────────────────────────────────────────
//
// Manual execution (allowed spawn):
//   $ echo '{"tool_name":"Task","tool_input":{"subagent_type":"Explore",
//     "description":"survey the auth package"},"session_id":"sess1234abc"}' | ./cmd-spawn-guard
//   $ echo $?   # 0
//
// Manual execution (necessity-classifier block, R5):
//   $ echo '{"tool_name":"Task","tool_input":{"subagent_type":"general-purpose",
//     "description":"fix the typo in README.md"},"session_id":"sess1234abc"}' | ./cmd-spawn-guard
//   $ echo $?   # 2
//
// Manual execution (reporting):
//   $ ./cmd-spawn-guard report
//   $ ./cmd-spawn-guard usage
//
// ────────────────────────────────────────────────────────────────
// Troubleshooting
// ────────────────────────────────────────────────────────────────
//
// Symptom: every spawn is blocked with "invalid session id"
//   Cause: the host's session_id doesn't match hooks/lib/guard.ValidSessionID's pattern
//   (length or charset)
//   Fix: confirm the host's actual session id format before widening the pattern
//
// Symptom: a team spawn blocks even though individual agent caps haven't been hit
//   Cause: expected - spawnGuardTeamPath only checks the session cap (MaxAgents), by design
//   Fix: not a bug; raise MaxAgents in config if team workflows need more headroom
//
// Symptom: `report` shows no Real usage line
//   Cause: no agent-metrics.jsonl exists yet, meaning no SubagentStop event has been recorded
//   Fix: expected until at least one sub-agent completes and cmd-subagent-stop runs
//
// ────────────────────────────────────────────────────────────────
// Roadmap
// ────────────────────────────────────────────────────────────────
//
// No planned changes - the pipeline and CLI surface match §4.6 and §6 as specified.
