// METADATA
//
// Necessity - Regex-plus-fuzzy classifier for "this should be a direct tool call"
//
// For METADATA structure explanation, see: standards/code/4-block/CWS-STD-004-CODE-metadata-block.md
//
// Biblical Foundation
//
// Scripture: "A time to keep silence, and a time to speak" - Ecclesiastes 3:7 (KJV)
// Principle: Knowing when NOT to act (spawn an agent) is as much wisdom as knowing when to act
// Anchor: Restraint that saves effort serves the work, not the appearance of busyness
//
// CPI-SI Identity
//
// Component Type: LIBRARY - classification rung
// Role: Decides whether a spawn's description/prompt describes work a direct tool could do instead
// Paradigm: First-match regex cascade, falling back to a word-level fuzzy match against a fixed corpus
//
// Authorship & Lineage
//
// Architect: token-guard maintainers
// Implementation: token-guard maintainers
// Creation Date: 2026-02-02
// Version: 1.0.0
// Last Modified: 2026-02-02 - Initial Go port of the pattern-cascade shape
//
// Version History:
//   1.0.0 (2026-02-02) - Initial implementation
//
// Purpose & Function
//
// Purpose: Give rule R5 (§4.6) a yes/no/why answer for "does this spawn's stated task look like
// something Grep, Read, Edit, Glob, or Bash could do directly, without the overhead of a sub-agent?"
//
// Core Design: Ten fixed regex patterns run in declared order; the first match wins and returns its
// stable intent name. If nothing matches, the combined description+prompt is truncated to 200 chars,
// split into words, and compared against a ~50-phrase canonical corpus using a SequenceMatcher-style
// ratio - 2*M/T where M is the matched-run length from an LCS-based diff and T is the combined word
// count - at word granularity rather than character granularity, by encoding each distinct word to a
// private-use-area rune before handing the two sequences to diffmatchpatch.
//
// Key Features:
//   - First-match-wins regex cascade (order preserved exactly as declared)
//   - Word-granularity fuzzy match (not character-granularity) via a rune-encoding trick
//   - Stable intent names on both paths (fuzzy hits get a "fuzzy_" prefix, never a mangled string)
//
// Philosophy: A classifier earns trust by being wrong in the same, explainable way every time -
// first-match-wins and a fixed corpus make every block reproducible from its input.
//
// Blocking Status
//
// Non-blocking to this package itself: Classify returns a decision, it never exits or panics; R5's
// caller (hooks/lib/guard/rules.go) is what turns a true result into a blocked spawn.
//
// Usage & Integration
//
// Usage:
//
//	shouldBlock, suggestion, pattern := necessity.Classify(description, prompt)
//	if shouldBlock {
//	    // rule R5 fires with `suggestion` as the block message and `pattern` for the audit log
//	}
//
// Integration Pattern:
//  1. Called once per spawn attempt from EvaluateSpawnRules' R5 step
//  2. The returned pattern name is recorded in the audit log's Pattern field
//
// Public API:
//   - Classify(description, prompt string) (shouldBlock bool, suggestion, patternName string)
//   - WordRatio(a, b []string) float64 (reused by rule R6's type-switching comparison)
//
// Dependencies
//
// Dependencies (What This Needs):
//   Standard Library: regexp, strings
//   External: github.com/sergi/go-diff/diffmatchpatch
//   Hook Libraries: none
//
// Dependents (What Uses This):
//   Libraries: hooks/lib/guard (rule R5 and, via WordRatio, rule R6)
//
// Health Scoring
//
// Classification operates on Base100 scale:
//
// Regex cascade:
//   - Matches in declared order, first match wins: +40
//
// Fuzzy pass:
//   - Truncates input to 200 chars before comparing: +10
//   - Computes the ratio at word granularity, not character granularity: +30
//   - Reports a stable "fuzzy_<intent>" name rather than a mangled suggestion string: +20
//
// Total: 100 points for a reproducible, explainable classification on every input.
package necessity

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
// Standard library for regex and string splitting; diffmatchpatch for the
// LCS-based diff the fuzzy pass's ratio formula is built on.

import (
	"regexp"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ────────────────────────────────────────────────────────────────
// Constants - Named Values
// ────────────────────────────────────────────────────────────────

// maxInputLen is the truncation length applied before the fuzzy pass
// (spec.md §4.5: "truncated to 200 characters for the fuzzy pass").
const maxInputLen = 200

// fuzzyThreshold is the minimum ratio for a fuzzy match to fire (§4.5).
const fuzzyThreshold = 0.55

// ────────────────────────────────────────────────────────────────
// Types - Data Structures
// ────────────────────────────────────────────────────────────────

type pattern struct {
	name       string
	re         *regexp.Regexp
	suggestion string
}

// ────────────────────────────────────────────────────────────────
// Package-Level State - Fixed Cascade and Corpus Data
// ────────────────────────────────────────────────────────────────
// Both tables are immutable after package init; no mutex needed since
// nothing ever writes to them after the var block below runs.

// regexPatterns is the fixed ten-pattern cascade (§4.5 step 1). First match
// wins; order therefore matters and is preserved exactly as declared.
var regexPatterns = []pattern{
	{
		name:       "search_grep",
		re:         regexp.MustCompile(`\b(search|grep|find|locate)\b.*\b(for|across|in|through)\b`),
		suggestion: "Use Grep or Glob directly instead of spawning an agent to search.",
	},
	{
		name:       "read_file",
		re:         regexp.MustCompile(`\b(read|open|view|show me)\b.*\b(file|contents?)\b`),
		suggestion: "Use the Read tool directly instead of spawning an agent to read a file.",
	},
	{
		name:       "check_verify",
		re:         regexp.MustCompile(`\b(check|verify|confirm|make sure)\b.*\b(exists?|present|works?|passes?)\b`),
		suggestion: "Run the check directly (Bash/Read) instead of spawning an agent.",
	},
	{
		name:       "edit_fix",
		re:         regexp.MustCompile(`\b(edit|fix|update|change|modify)\b.*\b(line|file|typo|bug)\b`),
		suggestion: "Use Edit directly for a targeted change instead of spawning an agent.",
	},
	{
		name:       "analyze_inspect",
		re:         regexp.MustCompile(`\b(analyze|inspect|look at|review)\b.*\b(this|the|that)\b.*\b(function|file|code|class)\b`),
		suggestion: "Read the file directly instead of spawning an agent to analyze it.",
	},
	{
		name:       "what_does",
		re:         regexp.MustCompile(`^what does\b`),
		suggestion: "Read the relevant code directly instead of spawning an agent to explain it.",
	},
	{
		name:       "list_show",
		re:         regexp.MustCompile(`\b(list|show)\b.*\b(files?|directories|functions?|all)\b`),
		suggestion: "Use Glob or Bash (ls) directly instead of spawning an agent to list things.",
	},
	{
		name:       "count",
		re:         regexp.MustCompile(`\b(count|how many)\b`),
		suggestion: "Use Grep -c or a one-line shell pipeline instead of spawning an agent to count.",
	},
	{
		name:       "compare_diff",
		re:         regexp.MustCompile(`\b(compare|diff)\b.*\b(with|against|between|to)\b`),
		suggestion: "Use Bash (diff/git diff) directly instead of spawning an agent to compare.",
	},
	{
		name:       "run_execute",
		re:         regexp.MustCompile(`\b(run|execute)\b.*\b(test|script|command|build)\b`),
		suggestion: "Use Bash directly instead of spawning an agent to run a command.",
	},
}

type canonicalPhrase struct {
	words      []string
	suggestion string
}

// intentForSuggestion maps each of the ten fixed suggestion strings back to
// its stable intent name, so a fuzzy hit reports "fuzzy_search_grep" rather
// than a mangled copy of the suggestion text (§4.5: "pattern name prefixed
// fuzzy_").
var intentForSuggestion = func() map[string]string {
	m := make(map[string]string, len(regexPatterns))
	for _, p := range regexPatterns {
		m[p.suggestion] = p.name
	}
	return m
}()

// canonicalCorpus is the fixed fuzzy-match corpus (§4.5 step 2: "~50
// canonical phrases"), organized by the same ten intents the regex pass
// covers plus common paraphrases that slip past the regexes. Each entry's
// words are pre-split so the fuzzy pass never re-splits them per call.
var canonicalCorpus = buildCorpus([]struct {
	phrase     string
	suggestion string
}{
	{"search the codebase for this function", "Use Grep or Glob directly instead of spawning an agent to search."},
	{"find where this helper is used across all files", "Use Grep or Glob directly instead of spawning an agent to search."},
	{"grep for all usages of this symbol", "Use Grep or Glob directly instead of spawning an agent to search."},
	{"locate the file that defines this type", "Use Grep or Glob directly instead of spawning an agent to search."},
	{"find every caller of this method in the repo", "Use Grep or Glob directly instead of spawning an agent to search."},
	{"read the contents of this configuration file", "Use the Read tool directly instead of spawning an agent to read a file."},
	{"open this file and show me what is inside", "Use the Read tool directly instead of spawning an agent to read a file."},
	{"view the source of this module", "Use the Read tool directly instead of spawning an agent to read a file."},
	{"show me the current contents of this file", "Use the Read tool directly instead of spawning an agent to read a file."},
	{"check whether this package is already installed", "Run the check directly (Bash/Read) instead of spawning an agent."},
	{"verify that the tests currently pass", "Run the check directly (Bash/Read) instead of spawning an agent."},
	{"confirm this file exists on disk", "Run the check directly (Bash/Read) instead of spawning an agent."},
	{"make sure the build still works after this change", "Run the check directly (Bash/Read) instead of spawning an agent."},
	{"check if this dependency is present in the lockfile", "Run the check directly (Bash/Read) instead of spawning an agent."},
	{"fix the typo on this line", "Use Edit directly for a targeted change instead of spawning an agent."},
	{"edit this file to change the variable name", "Use Edit directly for a targeted change instead of spawning an agent."},
	{"update the version string in this file", "Use Edit directly for a targeted change instead of spawning an agent."},
	{"change this one line to correct the bug", "Use Edit directly for a targeted change instead of spawning an agent."},
	{"modify the config value in this file", "Use Edit directly for a targeted change instead of spawning an agent."},
	{"analyze this function for correctness", "Read the file directly instead of spawning an agent to analyze it."},
	{"inspect this class and tell me what it does", "Read the file directly instead of spawning an agent to analyze it."},
	{"review this code and summarize the logic", "Read the file directly instead of spawning an agent to analyze it."},
	{"look at this file and explain the approach", "Read the file directly instead of spawning an agent to analyze it."},
	{"what does this function do", "Read the relevant code directly instead of spawning an agent to explain it."},
	{"what does this class do exactly", "Read the relevant code directly instead of spawning an agent to explain it."},
	{"what does this script accomplish", "Read the relevant code directly instead of spawning an agent to explain it."},
	{"list all the files in this directory", "Use Glob or Bash (ls) directly instead of spawning an agent to list things."},
	{"show all functions defined in this package", "Use Glob or Bash (ls) directly instead of spawning an agent to list things."},
	{"list every test file in the repository", "Use Glob or Bash (ls) directly instead of spawning an agent to list things."},
	{"show me all the directories under this path", "Use Glob or Bash (ls) directly instead of spawning an agent to list things."},
	{"count how many lines are in this file", "Use Grep -c or a one-line shell pipeline instead of spawning an agent to count."},
	{"how many times does this function get called", "Use Grep -c or a one-line shell pipeline instead of spawning an agent to count."},
	{"count the occurrences of this string in the repo", "Use Grep -c or a one-line shell pipeline instead of spawning an agent to count."},
	{"compare this file with the previous version", "Use Bash (diff/git diff) directly instead of spawning an agent to compare."},
	{"diff these two branches", "Use Bash (diff/git diff) directly instead of spawning an agent to compare."},
	{"compare the output between these two runs", "Use Bash (diff/git diff) directly instead of spawning an agent to compare."},
	{"run the test suite and report results", "Use Bash directly instead of spawning an agent to run a command."},
	{"execute this script and show the output", "Use Bash directly instead of spawning an agent to run a command."},
	{"run the build command and check for errors", "Use Bash directly instead of spawning an agent to run a command."},
	{"execute the migration script against the database", "Use Bash directly instead of spawning an agent to run a command."},
	{"run a quick lint check on this file", "Use Bash directly instead of spawning an agent to run a command."},
	{"grep across the repo for this error message", "Use Grep or Glob directly instead of spawning an agent to search."},
	{"search for every reference to this constant", "Use Grep or Glob directly instead of spawning an agent to search."},
	{"find all files that import this package", "Use Grep or Glob directly instead of spawning an agent to search."},
	{"read this log file and show me the last lines", "Use the Read tool directly instead of spawning an agent to read a file."},
	{"check if this environment variable is set", "Run the check directly (Bash/Read) instead of spawning an agent."},
	{"verify the schema matches what we expect", "Run the check directly (Bash/Read) instead of spawning an agent."},
	{"fix this failing assertion in the test", "Use Edit directly for a targeted change instead of spawning an agent."},
	{"list the dependencies declared in this manifest", "Use Glob or Bash (ls) directly instead of spawning an agent to list things."},
	{"count how many tests are currently skipped", "Use Grep -c or a one-line shell pipeline instead of spawning an agent to count."},
}...)

func buildCorpus(entries []struct {
	phrase     string
	suggestion string
}) []canonicalPhrase {
	corpus := make([]canonicalPhrase, 0, len(entries))
	for _, e := range entries {
		corpus = append(corpus, canonicalPhrase{
			words:      strings.Fields(e.phrase),
			suggestion: e.suggestion,
		})
	}
	return corpus
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
//   ├── Classify → regex cascade, then fuzzy fallback
//   └── WordRatio → shared word-granularity ratio (also used by rule R6)
//
//   Data (Bottom Rung)
//   ├── regexPatterns → the ten-pattern cascade
//   └── canonicalCorpus → the ~50-phrase fuzzy corpus
//
// Baton Flow (Classify's Execution Path):
//
//   Caller → Classify(description, prompt)
//     ↓
//   lowercase
//     ↓
//   regexPatterns cascade (first match wins) → return if matched
//     ↓
//   truncate to 200 chars, split into words → WordRatio against every canonicalCorpus entry
//     ↓
//   best ratio >= fuzzyThreshold → return "fuzzy_<intent>"; else return no-block
//
// APUs (Available Processing Units):
// - 3 functions total, 2 exported (Classify, WordRatio), 1 unexported (buildCorpus)

// Classify decides whether a spawn's description/prompt describes work a
// direct tool could do instead (§4.5). The zero-value PatternName ("") means
// no pattern fired and the spawn should proceed.
//
// What It Does:
//   - Runs the ten-pattern regex cascade in order; returns the first match
//   - Falls back to a word-level fuzzy match against the canonical corpus
//
// Parameters:
//   description - the spawn's description field
//   prompt - the spawn's prompt field
//
// Returns:
//   shouldBlock - true if a pattern or fuzzy match fired
//   suggestion - the direct-tool alternative to show the user
//   patternName - the stable intent name ("search_grep", "fuzzy_read_file", ...) or "" if no match
//
// Health Impact:
//   +70 points for a reproducible decision across both the regex and fuzzy passes
func Classify(description, prompt string) (shouldBlock bool, suggestion, patternName string) {
	input := strings.ToLower(description + " " + prompt)

	for _, p := range regexPatterns {
		if p.re.MatchString(input) {
			return true, p.suggestion, p.name
		}
	}

	if len(input) > maxInputLen {
		input = input[:maxInputLen]
	}
	words := strings.Fields(input)
	if len(words) == 0 {
		return false, "", ""
	}

	best := 0.0
	var bestSuggestion string
	for _, c := range canonicalCorpus {
		if r := WordRatio(words, c.words); r > best {
			best = r
			bestSuggestion = c.suggestion
		}
	}

	if best >= fuzzyThreshold {
		intent := intentForSuggestion[bestSuggestion]
		if intent == "" {
			intent = "match"
		}
		return true, bestSuggestion, "fuzzy_" + intent
	}
	return false, "", ""
}

// WordRatio computes SequenceMatcher's ratio() - 2*M/T, where M is the total
// length of matching (equal) runs found by the LCS-based diff and T is the
// combined length of both inputs - at word granularity. Each distinct word
// across both lists is assigned a private-use rune so diffmatchpatch's
// rune-level diff effectively operates on whole words. Exported so the
// spawn guard's type-switching rule (R6) can reuse the same comparison the
// necessity classifier uses internally, at the same word granularity.
//
// What It Does:
//   - Encodes each distinct word across both slices to a private-use-area rune
//   - Hands the two rune strings to diffmatchpatch's LCS-based diff
//   - Sums the matched-run lengths and divides by the combined word count
//
// Parameters:
//   a, b - the two word sequences to compare
//
// Returns:
//   a ratio in [0.0, 1.0]; 1.0 when both inputs are empty
//
// Health Impact:
//   +30 points for operating at word granularity rather than character granularity
func WordRatio(a, b []string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}

	toRune := make(map[string]rune, total)
	next := rune(0xE000) // private-use area, safe from colliding with real text
	encode := func(words []string) []rune {
		runes := make([]rune, len(words))
		for i, w := range words {
			r, ok := toRune[w]
			if !ok {
				r = next
				toRune[w] = r
				next++
			}
			runes[i] = r
		}
		return runes
	}

	ra := string(encode(a))
	rb := string(encode(b))

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(ra, rb, false)

	matching := 0
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			matching += len([]rune(d.Text))
		}
	}

	return 2 * float64(matching) / float64(total)
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
//   - Adding new regex patterns or corpus phrases (append, don't reorder existing entries)
//
// Requires Care:
//   - regexPatterns' declared order - Classify returns the first match, so reordering
//     changes which pattern name a given input reports
//
// Never Modify:
//   - WordRatio's rune-encoding trick - it's what makes the ratio operate at word
//     granularity instead of character granularity; removing it would silently degrade
//     every fuzzy match's accuracy
//
// ────────────────────────────────────────────────────────────────
// Troubleshooting
// ────────────────────────────────────────────────────────────────
//
// Symptom: a fuzzy match reports "fuzzy_match" instead of a named intent
//   Cause: the winning corpus entry's suggestion string isn't present in intentForSuggestion -
//   likely a copy-paste mismatch between a corpus entry and its regexPatterns counterpart
//   Fix: verify the corpus entry's suggestion string is byte-identical to the regex pattern's
//
// Symptom: an obviously direct-tool-shaped prompt doesn't get blocked
//   Cause: ratio fell just under fuzzyThreshold (0.55), or the input was truncated to 200
//   chars before the distinguishing words appeared
//   Fix: expected behavior at the threshold boundary - not every paraphrase is covered
//
// ────────────────────────────────────────────────────────────────
// Roadmap
// ────────────────────────────────────────────────────────────────
//
// No planned changes - the ten intents and corpus match §4.5 as specified.
