package necessity_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nova-dawn/token-guard/hooks/lib/necessity"
)

func TestClassify_RegexMatchReturnsStablePatternName(t *testing.T) {
	shouldBlock, suggestion, pattern := necessity.Classify("search the codebase for the auth handler", "")

	assert.True(t, shouldBlock)
	assert.Equal(t, "search_grep", pattern)
	assert.Contains(t, suggestion, "Grep")
}

func TestClassify_FuzzyParaphraseMatchesAboveThreshold(t *testing.T) {
	shouldBlock, suggestion, pattern := necessity.Classify("please hunt through the codebase searching for this function", "")

	assert.True(t, shouldBlock)
	assert.True(t, strings.HasPrefix(pattern, "fuzzy_"))
	assert.Contains(t, suggestion, "Grep")
}

func TestClassify_UnrelatedDescriptionDoesNotBlock(t *testing.T) {
	shouldBlock, suggestion, pattern := necessity.Classify("design and implement a new caching layer for the billing service", "")

	assert.False(t, shouldBlock)
	assert.Empty(t, suggestion)
	assert.Empty(t, pattern)
}

func TestClassify_UsesPromptAsWellAsDescription(t *testing.T) {
	shouldBlock, _, pattern := necessity.Classify("do the thing", "count how many times this error appears in the logs")

	assert.True(t, shouldBlock)
	assert.Equal(t, "count", pattern)
}

func TestClassify_EmptyInputNeverBlocks(t *testing.T) {
	shouldBlock, suggestion, pattern := necessity.Classify("", "")

	assert.False(t, shouldBlock)
	assert.Empty(t, suggestion)
	assert.Empty(t, pattern)
}

func TestWordRatio_IdenticalWordsIsOne(t *testing.T) {
	words := []string{"fix", "the", "bug", "in", "this", "file"}
	assert.Equal(t, 1.0, necessity.WordRatio(words, words))
}

func TestWordRatio_DisjointWordsIsZero(t *testing.T) {
	a := []string{"alpha", "beta", "gamma"}
	b := []string{"delta", "epsilon", "zeta"}
	assert.Equal(t, 0.0, necessity.WordRatio(a, b))
}

func TestWordRatio_BothEmptyIsOne(t *testing.T) {
	assert.Equal(t, 1.0, necessity.WordRatio(nil, nil))
}

func TestWordRatio_PartialOverlapIsBetweenZeroAndOne(t *testing.T) {
	a := []string{"read", "the", "contents", "of", "this", "file"}
	b := []string{"open", "this", "file", "and", "show", "contents"}

	ratio := necessity.WordRatio(a, b)
	assert.Greater(t, ratio, 0.0)
	assert.Less(t, ratio, 1.0)
}
