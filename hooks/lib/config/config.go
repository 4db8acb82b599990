// METADATA
//
// Config - Typed configuration model: defaults, JSON overlay, safe-int coercion
//
// For METADATA structure explanation, see: standards/code/4-block/CWS-STD-004-CODE-metadata-block.md
//
// Biblical Foundation
//
// Scripture: "Let your yes be yes" - Matthew 5:37 (NASB)
// Principle: A config value should mean exactly what it says, or fall back to a known-good default - never silently corrupt
// Anchor: Predictable defaults under malformed input are a form of trustworthiness
//
// CPI-SI Identity
//
// Component Type: LIBRARY - configuration rung
// Role: Loads the single token-guard-config.json document, field by field, with per-field fallback
// Paradigm: Fail-open per field, never per document - one bad field doesn't take down the whole config
//
// Authorship & Lineage
//
// Architect: token-guard maintainers
// Implementation: token-guard maintainers
// Creation Date: 2026-02-02
// Version: 1.0.0
// Last Modified: 2026-02-02 - Initial Go port, narrowed from JSONC+TOML to plain JSON
//
// Version History:
//   1.0.0 (2026-02-02) - Initial implementation
//
// Purpose & Function
//
// Purpose: Provide the documented default configuration (§3) and a Load that overlays whatever
// fields are present and well-typed in the on-disk JSON document, falling back field-by-field to
// the default on anything absent or malformed.
//
// Core Design: Defaults() builds the hardcoded baseline, matching original_source's DEFAULT_CONFIG
// exactly. Load() decodes the on-disk document into a loosely-typed overlay struct (every field is
// `any`) so a wrong-typed field can be detected and coerced instead of failing json.Unmarshal for
// the whole document. OnePerSessionSet / AlwaysAllowedSet are derived once after every Load so
// callers get O(1) membership tests instead of re-deriving them per rule check.
//
// Key Features:
//   - Per-field fallback, not per-document (one malformed field doesn't blow away the rest)
//   - safeInt coerces JSON's float64 number representation without panicking on the wrong type
//   - Derived sets computed once per Load, not once per rule evaluation
//
// Philosophy: Configuration should never be a single point of failure - a typo in one field must
// degrade to that one field's default, not the whole governor.
//
// Blocking Status
//
// Non-blocking: Load never returns an error; every failure path (missing file, unreadable,
// malformed JSON, wrong-typed field) degrades to Defaults() or to that field's default value.
//
// Usage & Integration
//
// Usage:
//
//	cfg := config.Load(paths.ConfigPath())
//	if cfg.OnePerSessionSet[agentType] { ... }
//
// Integration Pattern:
//  1. Call Load once per hook invocation (hooks are one-shot processes, so no caching needed)
//  2. Read fields directly; use the derived *Set maps for membership checks
//
// Public API:
//   - Defaults() Config
//   - Load(path string) Config
//   - type Config (exported fields; OnePerSessionSet/AlwaysAllowedSet are derived, not persisted)
//
// Dependencies
//
// Dependencies (What This Needs):
//   Standard Library: encoding/json, os
//   External: none
//   Hook Libraries: none
//
// Dependents (What Uses This):
//   Executables: hooks/tool/cmd-spawn-guard, hooks/tool/cmd-read-guard, hooks/session/cmd-self-heal
//   Libraries: hooks/lib/guard (rule cascade reads Config fields)
//
// Health Scoring
//
// Configuration loading operates on Base100 scale:
//
// Defaults:
//   - Matches the documented default values exactly: +30
//
// Load:
//   - Falls back to Defaults() on a missing/unreadable/malformed file: +30
//   - Coerces each field independently rather than failing the whole document: +30
//   - Derives the membership sets after every load: +10
//
// Total: 100 points for a config load that degrades gracefully under any malformed input.
package config

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
// Standard library only: JSON codec, file I/O.

import (
	"encoding/json"
	"os"
)

// ────────────────────────────────────────────────────────────────
// Types - Data Structures
// ────────────────────────────────────────────────────────────────

// Config is the single JSON document described in §3.
type Config struct {
	MaxAgents             int      `json:"max_agents"`
	ParallelWindowSeconds int      `json:"parallel_window_seconds"`
	GlobalCooldownSeconds int      `json:"global_cooldown_seconds"`
	MaxPerSubagentType    int      `json:"max_per_subagent_type"`
	StateTTLHours         int      `json:"state_ttl_hours"`
	AuditLog              bool     `json:"audit_log"`
	OnePerSession         []string `json:"one_per_session"`
	AlwaysAllowed         []string `json:"always_allowed"`

	// OnePerSessionSet / AlwaysAllowedSet are derived from the slices above
	// during Load; exported so callers get O(1) membership tests without
	// re-deriving them (§4.4 step 4: "converting... into sets").
	OnePerSessionSet map[string]bool `json:"-"`
	AlwaysAllowedSet map[string]bool `json:"-"`
}

// overlay is an intentionally loose shape for decoding the on-disk document:
// every field is interface{} so a malformed field (wrong type, or absent)
// can be detected and coerced to the default rather than failing the whole
// load (§4.4 step 3).
type overlay struct {
	MaxAgents             any `json:"max_agents"`
	ParallelWindowSeconds any `json:"parallel_window_seconds"`
	GlobalCooldownSeconds any `json:"global_cooldown_seconds"`
	MaxPerSubagentType    any `json:"max_per_subagent_type"`
	StateTTLHours         any `json:"state_ttl_hours"`
	AuditLog              any `json:"audit_log"`
	OnePerSession         any `json:"one_per_session"`
	AlwaysAllowed         any `json:"always_allowed"`
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
//   ├── Defaults() → hardcoded baseline
//   └── Load(path) → Defaults() + per-field overlay
//
//   Helpers (Bottom Rung)
//   ├── deriveSets / toSet → membership-set construction
//   └── safeInt / safeStringSlice → per-field type coercion
//
// Baton Flow (Load's Execution Path):
//
//   Caller → Load(path)
//     ↓
//   cfg := Defaults()
//     ↓
//   ReadFile + Unmarshal into overlay (loose `any` fields)
//     ↓
//   Per-field safeInt / type-assert / safeStringSlice coercion
//     ↓
//   deriveSets()
//     ↓
//   cfg returned
//
// APUs (Available Processing Units):
// - 6 functions total, 2 exported (Defaults, Load), 4 unexported helpers

// Defaults returns the documented default configuration (§3), matching
// original_source/hooks/hook_utils.py's DEFAULT_CONFIG exactly.
//
// What It Does:
//   - Constructs the hardcoded baseline Config and derives its membership sets
//
// Parameters:
//   none
//
// Returns:
//   the default Config, with OnePerSessionSet/AlwaysAllowedSet already populated
//
// Health Impact:
//   +30 points for matching the documented defaults exactly
func Defaults() Config {
	c := Config{
		MaxAgents:             5,
		ParallelWindowSeconds: 30,
		GlobalCooldownSeconds: 5,
		MaxPerSubagentType:    1,
		StateTTLHours:         24,
		AuditLog:              true,
		OnePerSession: []string{
			"Explore",
			"master-coder",
			"master-researcher",
			"master-architect",
			"master-workflow",
			"Plan",
		},
		AlwaysAllowed: []string{
			"claude-code-guide",
			"statusline-setup",
			"haiku",
		},
	}
	c.deriveSets()
	return c
}

func (c *Config) deriveSets() {
	c.OnePerSessionSet = toSet(c.OnePerSession)
	c.AlwaysAllowedSet = toSet(c.AlwaysAllowed)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

// Load builds a Config by starting from Defaults(), overlaying whatever
// fields are present and well-typed in the JSON document at path, and
// falling back to the default for any field that's absent or malformed.
// Never returns an error: an unreadable or malformed config file just means
// every field falls back to its default (§7: fail-open on input-shape
// errors).
//
// What It Does:
//   - Starts from Defaults(), overlays each well-typed field found in path
//   - Leaves a field at its default if it's absent, wrong-typed, or the whole file is unreadable
//
// Parameters:
//   path - the config document's path
//
// Returns:
//   the resulting Config, always valid
//
// Health Impact:
//   +70 points for per-field fallback that never fails the whole load
func Load(path string) Config {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	var ov overlay
	if err := json.Unmarshal(data, &ov); err != nil {
		return cfg
	}

	cfg.MaxAgents = safeInt(ov.MaxAgents, cfg.MaxAgents)
	cfg.ParallelWindowSeconds = safeInt(ov.ParallelWindowSeconds, cfg.ParallelWindowSeconds)
	cfg.GlobalCooldownSeconds = safeInt(ov.GlobalCooldownSeconds, cfg.GlobalCooldownSeconds)
	cfg.MaxPerSubagentType = safeInt(ov.MaxPerSubagentType, cfg.MaxPerSubagentType)
	cfg.StateTTLHours = safeInt(ov.StateTTLHours, cfg.StateTTLHours)

	if b, ok := ov.AuditLog.(bool); ok {
		cfg.AuditLog = b
	}
	if items, ok := safeStringSlice(ov.OnePerSession); ok {
		cfg.OnePerSession = items
	}
	if items, ok := safeStringSlice(ov.AlwaysAllowed); ok {
		cfg.AlwaysAllowed = items
	}

	cfg.deriveSets()
	return cfg
}

// safeInt coerces a JSON-decoded any (always float64 for JSON numbers) to
// int, falling back to fallback on type mismatch or absence - the "safe-int
// helper" §4.4 step 3 names.
func safeInt(v any, fallback int) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	default:
		return fallback
	}
}

func safeStringSlice(v any) ([]string, bool) {
	raw, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
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
//   - The default values inside Defaults(), if the spec's documented defaults change
//
// Requires Care:
//   - overlay's fields must stay `any`, not typed - typing them would make json.Unmarshal
//     fail the whole document on one bad field instead of letting safeInt/safeStringSlice
//     coerce per-field
//
// Never Modify:
//   - Load's "never returns an error" contract - every cmd-* binary calls Load unconditionally
//     at startup and assumes a usable Config comes back
//
// ────────────────────────────────────────────────────────────────
// Troubleshooting
// ────────────────────────────────────────────────────────────────
//
// Symptom: a hand-edited config.json field doesn't take effect
//   Cause: the field's JSON type doesn't match what safeInt/safeStringSlice/the bool
//   assertion expects (e.g. a quoted string where a number is expected)
//   Fix: self-heal's structural phase flags a config missing required keys; check
//   the field's JSON type against the Config struct tags
//
// Symptom: self-heal regenerates the config file
//   Cause: phaseAutoRepair found the file unreadable or not valid JSON
//   Fix: expected behavior - self-heal writes Defaults() back to disk
//
// ────────────────────────────────────────────────────────────────
// Roadmap
// ────────────────────────────────────────────────────────────────
//
// No planned changes - the field set matches §3 exactly.
