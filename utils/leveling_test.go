package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateLevelBoundaries(t *testing.T) {
	assert.Equal(t, LevelInfo{Level: 0, Progress: 0, XPToNextLevel: 100}, CalculateLevel(0))
	assert.Equal(t, 0, CalculateLevel(-50).Level)
	assert.Equal(t, 0, CalculateLevel(99).Level)

	// Exact boundary lands on the newly reached level.
	info := CalculateLevel(100)
	assert.Equal(t, 1, info.Level)
	assert.Equal(t, 0, info.Progress)
	assert.Equal(t, 150, info.XPToNextLevel)

	// One XP short of level 2 (100 + 150).
	info = CalculateLevel(249)
	assert.Equal(t, 1, info.Level)
	assert.Equal(t, 99, info.Progress)
	assert.Equal(t, 1, info.XPToNextLevel)

	info = CalculateLevel(250)
	assert.Equal(t, 2, info.Level)
	assert.Equal(t, 0, info.Progress)
}

func TestLevelOfTotalXPRoundTrips(t *testing.T) {
	for n := 1; n <= MaxLevel; n++ {
		require.Equal(t, n, CalculateLevel(TotalXPForLevel(n)).Level, "level %d", n)
	}
}

func TestLevelIsMonotonic(t *testing.T) {
	prev := 0
	for xp := 0; xp <= TotalXPForLevel(MaxLevel)+500; xp += 7 {
		level := CalculateLevel(xp).Level
		require.GreaterOrEqual(t, level, prev, "xp %d", xp)
		prev = level
	}
}

func TestCurveCapsAtMaxLevel(t *testing.T) {
	cap := TotalXPForLevel(MaxLevel)
	for _, xp := range []int{cap, cap + 1, cap * 2} {
		info := CalculateLevel(xp)
		assert.Equal(t, MaxLevel, info.Level)
		assert.Equal(t, 100, info.Progress)
		assert.Equal(t, 0, info.XPToNextLevel)
	}
}
