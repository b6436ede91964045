package utils

const (
	// BaseXP is the XP needed to go from level 0 to level 1.
	BaseXP = 100
	// ScaleFactor is the extra XP each subsequent level adds on top of the
	// previous level's requirement.
	ScaleFactor = 50
	// MaxLevel caps the curve; prestige resets happen at this level.
	MaxLevel = 30
)

type LevelInfo struct {
	Level         int `json:"level"`
	Progress      int `json:"progress"`
	XPToNextLevel int `json:"xp_to_next_level"`
}

// xpForLevelStep returns the XP needed to climb from level n-1 to level n.
// Level n requires BaseXP + (n-1)*ScaleFactor additional XP.
func xpForLevelStep(n int) int {
	return BaseXP + (n-1)*ScaleFactor
}

// TotalXPForLevel returns the cumulative XP needed to reach level n.
func TotalXPForLevel(n int) int {
	if n <= 0 {
		return 0
	}
	if n > MaxLevel {
		n = MaxLevel
	}
	total := 0
	for i := 1; i <= n; i++ {
		total += xpForLevelStep(i)
	}
	return total
}

// CalculateLevel maps cumulative XP to a level, a 0-100 progress percentage
// toward the next level and the XP still missing. Negative XP is treated as
// zero. Exact boundary values land on the newly reached level.
func CalculateLevel(xp int) LevelInfo {
	if xp < 0 {
		xp = 0
	}

	level := 0
	remaining := xp
	for level < MaxLevel {
		step := xpForLevelStep(level + 1)
		if remaining < step {
			break
		}
		remaining -= step
		level++
	}

	if level >= MaxLevel {
		return LevelInfo{Level: MaxLevel, Progress: 100, XPToNextLevel: 0}
	}

	step := xpForLevelStep(level + 1)
	return LevelInfo{
		Level:         level,
		Progress:      remaining * 100 / step,
		XPToNextLevel: step - remaining,
	}
}
