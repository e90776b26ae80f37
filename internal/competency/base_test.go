package competency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func canonicalProfile(t *testing.T) *WeightProfile {
	t.Helper()

	entries := make([]WeightEntry, 0, 8)
	for _, code := range Codes() {
		entries = append(entries, WeightEntry{Code: code, Weight: 1})
	}
	p, err := NewWeightProfile("canonical", entries)
	require.NoError(t, err)
	return p
}

func TestCalculateBaseAllScored(t *testing.T) {
	p := canonicalProfile(t)

	scores := Scores{}
	for _, code := range Codes() {
		scores[code] = 80
	}

	base := CalculateBase(p, scores)
	assert.Equal(t, 80.0, base.Score)
	assert.Equal(t, 100.0, base.ScoredWeight)
	require.Len(t, base.Contributions, 8)
	for _, c := range base.Contributions {
		assert.True(t, c.Scored)
		assert.Equal(t, 10.0, c.Weighted)
	}
}

func TestCalculateBaseExcludesMissingWeights(t *testing.T) {
	p, err := NewWeightProfile("two", []WeightEntry{{Code: "a", Weight: 60}, {Code: "b", Weight: 40}})
	require.NoError(t, err)

	base := CalculateBase(p, Scores{"a": 50, "unknown": 100})
	assert.Equal(t, 50.0, base.Score)
	assert.Equal(t, 60.0, base.ScoredWeight)
	assert.False(t, base.Contributions[1].Scored)
	assert.Equal(t, 0.0, base.Contributions[1].Score)
}

func TestCalculateBaseNoScores(t *testing.T) {
	base := CalculateBase(canonicalProfile(t), nil)
	assert.Equal(t, 0.0, base.Score)
	assert.Equal(t, 0.0, base.ScoredWeight)
}

func TestCalculateBaseClampsOutOfRangeScores(t *testing.T) {
	p, err := NewWeightProfile("one", []WeightEntry{{Code: "a", Weight: 1}})
	require.NoError(t, err)

	assert.Equal(t, 100.0, CalculateBase(p, Scores{"a": 250}).Score)
	assert.Equal(t, 0.0, CalculateBase(p, Scores{"a": -10}).Score)
}
