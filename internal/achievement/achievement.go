package achievement

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryGeneral   Category = "general"
	CategoryDaily     Category = "daily"
	CategoryTrophy    Category = "trophy"
	CategoryStreaming Category = "streaming"
	CategorySocial    Category = "social"
	CategorySpecial   Category = "special"
	CategoryGaming    Category = "gaming"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryDaily, CategoryTrophy,
		CategoryStreaming, CategorySocial, CategorySpecial, CategoryGaming:
		return true
	}
	return false
}

// Definition is a catalog entry. The catalog is immutable at runtime;
// TargetValue is always > 0.
type Definition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	TargetValue float64  `json:"targetValue"`
	XPReward    int      `json:"xpReward"`
	TokenReward int      `json:"tokenReward"`
}

// Progress is one row per user x achievement. CurrentValue only grows;
// Completed flips to true exactly once and never back.
type Progress struct {
	UserID        uuid.UUID `json:"userId"`
	AchievementID string    `json:"achievementId"`
	CurrentValue  float64   `json:"currentValue"`
	Completed     bool      `json:"completed"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type WithProgress struct {
	Definition
	CurrentValue float64 `json:"currentValue"`
	Completed    bool    `json:"completed"`
}

// ApplyResult reports what a progress write actually did.
type ApplyResult struct {
	Progress     Progress `json:"progress"`
	CompletedNow bool     `json:"completedNow"`
	// PrevLevel/NewLevel describe the XP reward's effect when the
	// achievement completed on this call; both zero otherwise.
	PrevLevel int `json:"prevLevel,omitempty"`
	NewLevel  int `json:"newLevel,omitempty"`
}
