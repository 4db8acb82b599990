package guard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-dawn/token-guard/hooks/lib/config"
	"github.com/nova-dawn/token-guard/hooks/lib/guard"
)

func baseConfig() config.Config {
	c := config.Defaults()
	c.MaxAgents = 5
	c.MaxPerSubagentType = 1
	c.ParallelWindowSeconds = 30
	c.GlobalCooldownSeconds = 5
	c.OnePerSessionSet = map[string]bool{"Explore": true, "Plan": true}
	c.AlwaysAllowedSet = map[string]bool{}
	return c
}

func TestEvaluateSpawnRules_R1_OnePerSessionBlocksSecondAttempt(t *testing.T) {
	cfg := baseConfig()
	st := guard.SpawnState{
		Agents: []guard.AgentRecord{{Type: "Explore", Timestamp: 1000}},
	}
	ev := guard.Event{SubagentType: "Explore", Description: "explore the repo again"}

	v := guard.EvaluateSpawnRules(cfg, st, ev, 2000)

	require.True(t, v.Blocked)
	assert.Equal(t, "R1", v.Rule)
}

func TestEvaluateSpawnRules_R2_PerTypeCapBlocks(t *testing.T) {
	cfg := baseConfig()
	cfg.OnePerSessionSet = map[string]bool{} // empty one-per-session set so R1 cannot fire, isolating R2
	cfg.MaxPerSubagentType = 2
	st := guard.SpawnState{
		Agents: []guard.AgentRecord{
			{Type: "general-purpose", Timestamp: 100},
			{Type: "general-purpose", Timestamp: 200},
		},
	}
	ev := guard.Event{SubagentType: "general-purpose", Description: "do unrelated creative work"}

	v := guard.EvaluateSpawnRules(cfg, st, ev, 10000)

	require.True(t, v.Blocked)
	assert.Equal(t, "R2", v.Rule)
}

func TestEvaluateSpawnRules_R3_SessionCapBlocks(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxAgents = 2
	cfg.MaxPerSubagentType = 10
	cfg.OnePerSessionSet = map[string]bool{}
	st := guard.SpawnState{
		AgentCount: 2,
		Agents: []guard.AgentRecord{
			{Type: "general-purpose", Timestamp: 100},
			{Type: "other-type", Timestamp: 200},
		},
	}
	ev := guard.Event{SubagentType: "third-type", Description: "build a new feature"}

	v := guard.EvaluateSpawnRules(cfg, st, ev, 10000)

	require.True(t, v.Blocked)
	assert.Equal(t, "R3", v.Rule)
}

func TestEvaluateSpawnRules_R4_ParallelWindowBlocks(t *testing.T) {
	cfg := baseConfig()
	cfg.OnePerSessionSet = map[string]bool{}
	cfg.MaxPerSubagentType = 10
	cfg.ParallelWindowSeconds = 30
	st := guard.SpawnState{
		Agents: []guard.AgentRecord{{Type: "general-purpose", Timestamp: 1000}},
	}
	ev := guard.Event{SubagentType: "general-purpose", Description: "start a second concurrent task"}

	v := guard.EvaluateSpawnRules(cfg, st, ev, 1010) // 10s later, inside the 30s window

	require.True(t, v.Blocked)
	assert.Equal(t, "R4", v.Rule)
}

func TestEvaluateSpawnRules_R5_NecessityClassifierBlocks(t *testing.T) {
	cfg := baseConfig()
	cfg.OnePerSessionSet = map[string]bool{}
	cfg.MaxPerSubagentType = 10
	st := guard.SpawnState{}
	ev := guard.Event{SubagentType: "general-purpose", Description: "search the codebase for the auth handler"}

	v := guard.EvaluateSpawnRules(cfg, st, ev, 0)

	require.True(t, v.Blocked)
	assert.Equal(t, "R5", v.Rule)
	assert.Equal(t, "search_grep", v.Pattern)
	assert.NotEmpty(t, v.Suggestion)
}

func TestEvaluateSpawnRules_R6_TypeSwitchingBlocksSimilarDescription(t *testing.T) {
	cfg := baseConfig()
	cfg.OnePerSessionSet = map[string]bool{}
	cfg.MaxPerSubagentType = 10
	st := guard.SpawnState{
		BlockedAttempts: []guard.BlockedAttempt{
			{Type: "Explore", Description: "refactor authentication across multiple services", Timestamp: 100},
		},
	}
	ev := guard.Event{SubagentType: "general-purpose", Description: "refactor authentication across multiple services please"}

	v := guard.EvaluateSpawnRules(cfg, st, ev, 200)

	require.True(t, v.Blocked)
	assert.Equal(t, "R6", v.Rule)
}

func TestEvaluateSpawnRules_R6_IgnoresBlockedAttemptsOutsideWindow(t *testing.T) {
	cfg := baseConfig()
	cfg.OnePerSessionSet = map[string]bool{}
	cfg.MaxPerSubagentType = 10
	st := guard.SpawnState{
		BlockedAttempts: []guard.BlockedAttempt{
			{Type: "Explore", Description: "refactor authentication across multiple services", Timestamp: 0},
		},
	}
	ev := guard.Event{SubagentType: "general-purpose", Description: "refactor authentication across multiple services please"}

	v := guard.EvaluateSpawnRules(cfg, st, ev, 1000) // older than blockedAttemptMaxAge (300s)

	assert.False(t, v.Blocked)
}

func TestEvaluateSpawnRules_R7_GlobalCooldownBlocks(t *testing.T) {
	cfg := baseConfig()
	cfg.OnePerSessionSet = map[string]bool{}
	cfg.MaxPerSubagentType = 10
	cfg.GlobalCooldownSeconds = 5
	st := guard.SpawnState{
		Agents: []guard.AgentRecord{{Type: "other-type", Timestamp: 1000}},
	}
	ev := guard.Event{SubagentType: "general-purpose", Description: "build a new feature from scratch"}

	v := guard.EvaluateSpawnRules(cfg, st, ev, 1002) // 2s later, inside the 5s cooldown

	require.True(t, v.Blocked)
	assert.Equal(t, "R7", v.Rule)
}

func TestEvaluateSpawnRules_R7_TeamSpawnsDoNotSetCooldownClock(t *testing.T) {
	cfg := baseConfig()
	cfg.OnePerSessionSet = map[string]bool{}
	cfg.MaxPerSubagentType = 10
	cfg.GlobalCooldownSeconds = 5
	st := guard.SpawnState{
		Agents: []guard.AgentRecord{{Type: "other-type", Timestamp: 1000, Team: "alpha"}},
	}
	ev := guard.Event{SubagentType: "general-purpose", Description: "build a new feature from scratch"}

	v := guard.EvaluateSpawnRules(cfg, st, ev, 1002)

	assert.False(t, v.Blocked)
}

func TestEvaluateSpawnRules_AllRulesPassAllows(t *testing.T) {
	cfg := baseConfig()
	cfg.OnePerSessionSet = map[string]bool{}
	cfg.MaxPerSubagentType = 10
	st := guard.SpawnState{}
	ev := guard.Event{SubagentType: "general-purpose", Description: "design and implement a new caching layer"}

	v := guard.EvaluateSpawnRules(cfg, st, ev, 0)

	assert.False(t, v.Blocked)
	assert.Empty(t, v.Rule)
}

func TestPruneBlockedAttempts_DropsEntriesOlderThanMaxAge(t *testing.T) {
	attempts := []guard.BlockedAttempt{
		{Type: "Explore", Timestamp: 0},
		{Type: "Plan", Timestamp: 250},
	}
	pruned := guard.PruneBlockedAttempts(attempts, 301, 300)
	require.Len(t, pruned, 1)
	assert.Equal(t, "Plan", pruned[0].Type)
}

func TestPruneReads_DropsEntriesOlderThanMaxAge(t *testing.T) {
	reads := []guard.ReadRecord{
		{Path: "/a", Timestamp: 0},
		{Path: "/b", Timestamp: 250},
	}
	pruned := guard.PruneReads(reads, 301, 300)
	require.Len(t, pruned, 1)
	assert.Equal(t, "/b", pruned[0].Path)
}

func TestDuplicatePathCount_IncludesCurrentAttempt(t *testing.T) {
	reads := []guard.ReadRecord{
		{Path: "/a.go", Timestamp: 100},
		{Path: "/a.go", Timestamp: 200},
		{Path: "/b.go", Timestamp: 300},
	}
	assert.Equal(t, 3, guard.DuplicatePathCount(reads, "/a.go"))
	assert.Equal(t, 2, guard.DuplicatePathCount(reads, "/b.go"))
	assert.Equal(t, 1, guard.DuplicatePathCount(reads, "/c.go"))
}

func TestDuplicatePathCount_ThirdReadOfSamePathReachesBlockThreshold(t *testing.T) {
	reads := []guard.ReadRecord{
		{Path: "/a.go", Timestamp: 100},
		{Path: "/a.go", Timestamp: 200},
	}
	const duplicatePathThreshold = 3
	assert.GreaterOrEqual(t, guard.DuplicatePathCount(reads, "/a.go"), duplicatePathThreshold)
}

func TestSequentialReadCount_IncludesCurrentAttemptWithinWindow(t *testing.T) {
	reads := []guard.ReadRecord{
		{Path: "/a.go", Timestamp: 100},
		{Path: "/b.go", Timestamp: 150},
		{Path: "/c.go", Timestamp: 900}, // outside the window
	}
	assert.Equal(t, 3, guard.SequentialReadCount(reads, 200, 120))
}

func TestSessionIDValidation(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{"well-formed alnum id", "abcdef01-23456", true},
		{"minimum length", "abcdefgh", true},
		{"too short", "short", false},
		{"contains bang", "bad!session", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, guard.ValidSessionID(tt.id))
		})
	}
}

func TestExtractTargetDirs_ExpandsHomeAndDedupes(t *testing.T) {
	dirs := guard.ExtractTargetDirs("START: ~/projects/token-guard and also ~/projects/token-guard again")
	assert.Len(t, dirs, 1)
}

func TestExtractTargetDirs_SkipsFileLikePaths(t *testing.T) {
	dirs := guard.ExtractTargetDirs("open /etc/hosts.conf for reference")
	assert.NotContains(t, dirs, "/etc/hosts.conf")
}
