// METADATA
//
// Heal - The five-phase self-heal bootstrap (C9)
//
// For METADATA structure explanation, see: standards/code/4-block/CWS-STD-004-CODE-metadata-block.md
//
// Biblical Foundation
//
// Scripture: "He healeth the broken in heart, and bindeth up their wounds" - Psalm 147:3 (KJV)
// Principle: A system that repairs its own small wounds before they compound is a kinder system
// to operate than one that waits for a human to notice
// Anchor: Self-repair must itself never become the wound it's meant to prevent
//
// CPI-SI Identity
//
// Component Type: LIBRARY - orchestration rung (drives structural/smoke/health/repair phases)
// Role: Runs structural checks, smoke tests, state-directory cleanup, and config/directory
// auto-repair, merging all four into one Report
// Paradigm: Every phase is best-effort and never propagates an error - self-heal itself must
// never be the thing that breaks session start (§4.9, §7 taxonomy #5)
//
// Authorship & Lineage
//
// Architect: token-guard maintainers
// Implementation: token-guard maintainers
// Creation Date: 2026-02-02
// Version: 1.0.1
// Last Modified: 2026-07-30 - Fixed sweepNotice's zero-value rate.Sometimes never firing
//
// Version History:
//   1.0.1 (2026-07-30) - sweepNotice constructed with First: 1 so its fire-once-per-run notice
//   actually prints instead of silently never firing
//   1.0.0 (2026-02-02) - Initial implementation
//
// Purpose & Function
//
// Purpose: Bootstrap a session by checking and, where possible, repairing the hook suite's own
// footprint - missing binaries, a corrupted config, an unwritable state directory, stale lock
// files, a bloated audit log - without ever raising an error that would block session start.
//
// Core Design: Run executes four phases in fixed order (structural, smoke tests, state health,
// auto-repair) and merges their Checks/Repairs/Actions into one Report, which is appended to
// self-heal.jsonl and returned for a one-line session-start summary. Each phase function is
// independently testable and independently fails open.
//
// Key Features:
//   - phaseSmokeTests pipes real Task/Read payloads through the spawn/read guard binaries in an
//     isolated temp directory, so a smoke test never touches the user's real session state
//   - phaseStateHealth's sweepNotice (golang.org/x/time/rate) rate-limits the stderr notice for a
//     large cleanup backlog to at most once per run
//   - phaseAutoRepair regenerates config.json from config.Defaults() whenever it's missing or
//     unparsable, so a corrupted config never blocks a later hook invocation
//
// Philosophy: Self-heal's job is to make the rest of the suite's assumptions true again, quietly -
// a Report entry, not a crash, is the worst outcome a broken environment should produce.
//
// Grounded on original_source/hooks/self-heal.py's phase_structural / phase_smoke_tests /
// phase_state_health / phase_auto_repair / main shape - the mode-file validation phase
// (phase_mode_validation) in that file operates on an unrelated master-agents persona system
// outside this suite's four named phases and is deliberately not ported.
//
// Blocking Status
//
// Non-blocking: Run never returns an error; every phase function swallows its own failures into
// Actions rather than propagating them, per §7 taxonomy #5 (self-heal must never block startup).
//
// Usage & Integration
//
// Usage:
//
//	report := heal.Run(hooksDir, stateDir, configPath)
//	fmt.Printf("self-heal: %d checks, %d repairs\n", report.Checks, report.Repairs)
//
// Integration Pattern:
//  1. Call Run once per session start, typically from hooks/session/cmd-self-heal
//  2. Print or log the returned Report's one-line summary
//
// Public API:
//   - type Phase, Report
//   - Run(hooksDir, stateDir, configPath string) Report
//
// Dependencies
//
// Dependencies (What This Needs):
//   Standard Library: bytes, context, encoding/json, fmt, os, os/exec, path/filepath, strings, time
//   External: github.com/google/uuid, golang.org/x/time/rate
//   Hook Libraries: hooks/lib/audit, hooks/lib/config, hooks/lib/paths
//
// Dependents (What Uses This):
//   Executables: hooks/session/cmd-self-heal
//
// Health Scoring
//
// Self-heal operates on Base100 scale:
//
// Structural phase:
//   - Detects missing binaries, malformed config, unwritable state dir: +25
//
// Smoke tests:
//   - Exercises both guard binaries end to end against isolated state: +25
//
// State health:
//   - Sweeps corrupted/orphaned/stale files and rotates an oversized audit log: +25
//
// Auto-repair:
//   - Recreates the state directory and regenerates config from defaults: +25
//
// Total: 100 points for a bootstrap that leaves the suite in a working state or explains why not.
package heal

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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"   // run ids for each Report
	"golang.org/x/time/rate"   // rate-limits the stale-state sweep notice

	"github.com/nova-dawn/token-guard/hooks/lib/audit"
	"github.com/nova-dawn/token-guard/hooks/lib/config"
	"github.com/nova-dawn/token-guard/hooks/lib/paths"
)

// ────────────────────────────────────────────────────────────────
// Constants - Named Values
// ────────────────────────────────────────────────────────────────

// smokeTestTimeout bounds each subprocess smoke test (§4.9 step 2, §5
// "Smoke tests in self-heal use a 5 s subprocess timeout").
const smokeTestTimeout = 5 * time.Second

// staleLockSeconds is how old a .lock file must be before self-heal
// considers it orphaned (§4.9 step 3).
const staleLockSeconds = 300

// auditMaxLines is the rotation threshold for audit.jsonl (§4.9 step 3).
const auditMaxLines = 10000

// ────────────────────────────────────────────────────────────────
// Types - Data Structures
// ────────────────────────────────────────────────────────────────

// Phase bundles one phase's check/repair counts and human-readable action
// log, mirroring phase_structural()'s (checks, repairs, actions) return
// shape in the original.
type Phase struct {
	Checks  int
	Repairs int
	Actions []string
}

// Report is the record appended to self-heal.jsonl (§4.9 step 5) and
// printed as a one-line summary.
type Report struct {
	RunID     string   `json:"run_id"`
	Timestamp string   `json:"ts"`
	Checks    int      `json:"checks"`
	Repairs   int      `json:"repairs"`
	Actions   []string `json:"actions,omitempty"`
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
//   └── Run → orchestrates all four phases, merges, logs
//
//   Phases (each independent, each best-effort)
//   ├── phaseStructural → requiredHooks()
//   ├── phaseSmokeTests → requiredHooks(), runSmoke()
//   ├── phaseStateHealth → audit.CountLines/Rotate, paths.AuditLogFile
//   └── phaseAutoRepair → config.Defaults()
//
//   Helpers (Bottom Rung)
//   ├── requiredHooks → maps hook name to binary path
//   ├── runSmoke → subprocess exec with timeout
//   ├── (*Phase).note → records an action, optionally counts a repair
//   └── appendHealLog → JSONL append of the final Report
//
// Baton Flow (Execution Path):
//
//   Run(hooksDir, stateDir, configPath)
//     → phaseStructural → phaseSmokeTests → phaseStateHealth → phaseAutoRepair
//     → merge all four Phases into one Report → appendHealLog → return Report
//
// APUs (Available Processing Units):
// - 9 functions total: 1 exported (Run), 8 unexported (requiredHooks, phaseStructural,
//   phaseSmokeTests, runSmoke, phaseStateHealth, phaseAutoRepair, appendHealLog, (*Phase).note)

// requiredHooks names the executables self-heal checks for structurally
// (§4.9 step 1) - the Go binaries that replace token-guard.py and
// read-efficiency-guard.py.
func requiredHooks(hooksDir string) map[string]string {
	return map[string]string{
		"spawn-guard": filepath.Join(hooksDir, "tool", "cmd-spawn-guard", "cmd-spawn-guard"),
		"read-guard":  filepath.Join(hooksDir, "tool", "cmd-read-guard", "cmd-read-guard"),
	}
}

// note records an action taken against a check that was already counted by
// the caller (p.Checks++ at the check site, mirroring the original's
// "checks += 1" followed by a conditional action/repair append).
func (p *Phase) note(action string, repaired bool) {
	p.Actions = append(p.Actions, action)
	if repaired {
		p.Repairs++
	}
}

// Run executes all four phases and returns the combined report. It never
// returns an error: every phase swallows its own failures into Actions.
//
// What It Does:
//   - Runs phaseStructural, phaseSmokeTests, phaseStateHealth, phaseAutoRepair in order, merges
//     their Checks/Repairs/Actions, appends the result to self-heal.jsonl
//
// Parameters:
//   hooksDir - the hooks directory self-heal inspects structurally
//   stateDir - the session-state directory to clean and repair
//   configPath - the config file to validate and regenerate if needed
//
// Returns:
//   a Report summarizing all four phases
//
// Health Impact:
//   +100 points collectively across the four merged phases (see METADATA Health Scoring)
func Run(hooksDir, stateDir, configPath string) Report {
	var all Phase

	merge := func(p Phase) {
		all.Checks += p.Checks
		all.Repairs += p.Repairs
		all.Actions = append(all.Actions, p.Actions...)
	}

	merge(phaseStructural(hooksDir, stateDir, configPath))
	merge(phaseSmokeTests(hooksDir))
	merge(phaseStateHealth(stateDir))
	merge(phaseAutoRepair(hooksDir, stateDir, configPath))

	report := Report{
		RunID:     uuid.NewString(),
		Timestamp: time.Now().Format("2006-01-02T15:04:05-07:00"),
		Checks:    all.Checks,
		Repairs:   all.Repairs,
		Actions:   all.Actions,
	}

	appendHealLog(stateDir, report)
	return report
}

// phaseStructural: hook files exist, config is a JSON object, state dir is
// writable (§4.9 step 1).
func phaseStructural(hooksDir, stateDir, configPath string) Phase {
	var p Phase

	for name, path := range requiredHooks(hooksDir) {
		p.Checks++
		if _, err := os.Stat(path); err != nil {
			p.note("MISSING: "+name, false)
		}
	}

	p.Checks++
	if data, err := os.ReadFile(configPath); err != nil {
		p.Actions = append(p.Actions, "config file missing")
	} else {
		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err != nil {
			p.note("config is corrupted JSON", true)
		} else if _, ok := obj["max_agents"]; !ok {
			p.Actions = append(p.Actions, "config missing max_agents key")
		}
	}

	p.Checks++
	if info, err := os.Stat(stateDir); err != nil || !info.IsDir() {
		p.Actions = append(p.Actions, "state directory missing")
	} else {
		probe := filepath.Join(stateDir, ".write-test")
		if err := os.WriteFile(probe, []byte("test"), 0644); err != nil {
			p.note("state directory not writable", true)
		} else {
			os.Remove(probe)
		}
	}

	return p
}

// phaseSmokeTests: pipe a valid Task payload through the spawn guard and a
// valid Read payload through the read guard in an isolated temp directory
// (§4.9 step 2).
func phaseSmokeTests(hooksDir string) Phase {
	var p Phase

	tmpDir, err := os.MkdirTemp("", "token-guard-smoke-*")
	if err != nil {
		p.Checks++
		p.note("smoke test setup failed: "+err.Error(), true)
		return p
	}
	defer os.RemoveAll(tmpDir)

	smokeState := filepath.Join(tmpDir, "state")
	if err := os.MkdirAll(smokeState, 0755); err != nil {
		p.Checks++
		p.note("smoke test setup failed: "+err.Error(), true)
		return p
	}

	smokeConfigPath := filepath.Join(tmpDir, "config.json")
	defaults, _ := json.MarshalIndent(config.Defaults(), "", "  ")
	if err := os.WriteFile(smokeConfigPath, defaults, 0644); err != nil {
		p.Checks++
		p.note("smoke test setup failed: "+err.Error(), true)
		return p
	}

	env := append(os.Environ(),
		"STATE_DIR_OVERRIDE="+smokeState,
		"CONFIG_PATH_OVERRIDE="+smokeConfigPath,
	)

	taskInput := `{"tool_name":"Task","tool_input":{"subagent_type":"general-purpose","description":"refactor authentication across multiple services"},"session_id":"smoke-test-session"}`
	readInput := `{"tool_name":"Read","tool_input":{"file_path":"/tmp/test.py"},"session_id":"smoke-test-session"}`

	hooks := requiredHooks(hooksDir)

	if code, err := runSmoke(hooks["spawn-guard"], taskInput, env); err == nil {
		p.Checks++
		if code != 0 && code != 2 {
			p.note(fmt.Sprintf("spawn guard smoke test failed (exit %d)", code), true)
		}
	}

	if code, err := runSmoke(hooks["read-guard"], readInput, env); err == nil {
		p.Checks++
		if code != 0 {
			p.note(fmt.Sprintf("read guard smoke test failed (exit %d)", code), true)
		}
	}

	return p
}

// runSmoke runs binPath with input on stdin under smokeTestTimeout,
// returning its exit code (or -1 on timeout/spawn failure).
func runSmoke(binPath, input string, env []string) (int, error) {
	if _, err := os.Stat(binPath); err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), smokeTestTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binPath)
	cmd.Stdin = strings.NewReader(input)
	cmd.Env = env
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	runErr := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return -1, nil
	}
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	if runErr != nil {
		return -1, nil
	}
	return 0, nil
}

// phaseStateHealth: delete corrupted state files, orphaned .tmp files,
// stale .lock files; rotate audit.jsonl if it's grown past the line cap
// (§4.9 step 3).
func phaseStateHealth(stateDir string) Phase {
	var p Phase

	entries, err := os.ReadDir(stateDir)
	if err != nil {
		return p
	}

	// Sweeping the state directory can touch hundreds of session files; a
	// large backlog of deletions would otherwise print one stderr line per
	// file, drowning the one-line session-start summary it's meant to stay
	// out of the way of. sweepNotice fires at most once per phase run.
	sweepNotice := rate.Sometimes{First: 1}

	now := time.Now()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		fpath := filepath.Join(stateDir, name)

		switch {
		case strings.HasSuffix(name, ".json"):
			p.Checks++
			data, err := os.ReadFile(fpath)
			var obj any
			if err != nil || json.Unmarshal(data, &obj) != nil {
				if os.Remove(fpath) == nil {
					sweepNotice.Do(func() {
						fmt.Fprintln(os.Stderr, "self-heal: cleaning up stale session state")
					})
					p.note("deleted corrupted "+name, true)
				}
			}
		case strings.HasSuffix(name, ".tmp"):
			p.Checks++
			if os.Remove(fpath) == nil {
				sweepNotice.Do(func() {
					fmt.Fprintln(os.Stderr, "self-heal: cleaning up stale session state")
				})
				p.note("deleted orphaned "+name, true)
			}
		case strings.HasSuffix(name, ".lock"):
			p.Checks++
			info, err := entry.Info()
			if err == nil && now.Sub(info.ModTime()) > staleLockSeconds*time.Second {
				if os.Remove(fpath) == nil {
					sweepNotice.Do(func() {
						fmt.Fprintln(os.Stderr, "self-heal: cleaning up stale session state")
					})
					p.note("deleted stale "+name, true)
				}
			}
		}
	}

	auditPath := paths.AuditLogFile()
	if _, err := os.Stat(auditPath); err == nil {
		p.Checks++
		if n := audit.CountLines(auditPath); n > auditMaxLines {
			audit.Rotate(auditPath)
			p.note("rotated audit.jsonl", true)
		}
	}

	return p
}

// phaseAutoRepair: recreate the missing state directory, chmod +x on any
// shell hooks (none remain in this port, kept as a no-op loop for parity
// with the original's intent), regenerate config from defaults if missing
// or malformed (§4.9 step 4).
func phaseAutoRepair(hooksDir, stateDir, configPath string) Phase {
	var p Phase

	p.Checks++
	if info, err := os.Stat(stateDir); err != nil || !info.IsDir() {
		if err := os.MkdirAll(stateDir, 0755); err == nil {
			p.note("recreated state directory", true)
		} else {
			p.note("FAILED to recreate state directory", true)
		}
	}

	p.Checks++
	needsRegen := false
	if data, err := os.ReadFile(configPath); err != nil {
		needsRegen = true
	} else {
		var obj map[string]any
		if json.Unmarshal(data, &obj) != nil {
			needsRegen = true
		}
	}

	if needsRegen {
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err == nil {
			data, _ := json.MarshalIndent(config.Defaults(), "", "  ")
			if os.WriteFile(configPath, data, 0644) == nil {
				p.note("regenerated config from defaults", true)
			} else {
				p.note("FAILED to regenerate config", true)
			}
		}
	}

	return p
}

// appendHealLog appends report as one JSON line to <stateDir>/self-heal.jsonl.
func appendHealLog(stateDir string, report Report) {
	os.MkdirAll(stateDir, 0755)
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	f, err := os.OpenFile(filepath.Join(stateDir, "self-heal.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()
	f.Write(append(data, '\n'))
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
//   - smokeTestTimeout, staleLockSeconds, auditMaxLines, if operational experience suggests
//     different thresholds
//
// Requires Care:
//   - phaseSmokeTests's isolated-temp-directory setup - it must never point at the real state
//     directory, or a smoke test would pollute live session state
//
// Never Modify:
//   - The "never propagate an error" contract on Run and every phase function - self-heal must
//     never be the reason session start fails (§7 taxonomy #5)
//
// ────────────────────────────────────────────────────────────────
// Troubleshooting
// ────────────────────────────────────────────────────────────────
//
// Symptom: self-heal reports a spawn guard smoke test failure every run
//   Cause: the cmd-spawn-guard binary isn't built/present at the expected path, or its exit
//   code for an allowed spawn isn't 0 or 2
//   Fix: confirm the binary exists at requiredHooks' path and re-check its documented exit codes
//
// Symptom: "self-heal: cleaning up stale session state" never prints even though files were swept
//   Cause: sweepNotice was constructed as the zero-value rate.Sometimes, whose Do callback can
//   never fire - fixed by constructing it with First: 1
//   Fix: already applied; watch for this regressing if sweepNotice's construction is ever touched
//
// ────────────────────────────────────────────────────────────────
// Roadmap
// ────────────────────────────────────────────────────────────────
//
// No planned changes - the four phases match §4.9 as specified.
