package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindAchievementUnlocked Kind = "achievement_unlocked"
	KindLevelUp             Kind = "level_up"
	KindPrestige            Kind = "prestige"
	KindBoostActivated      Kind = "boost_activated"
	KindBoostResult         Kind = "boost_result"
	KindTokensAwarded       Kind = "tokens_awarded"
)

func (k Kind) Valid() bool {
	switch k {
	case KindAchievementUnlocked, KindLevelUp, KindPrestige,
		KindBoostActivated, KindBoostResult, KindTokensAwarded:
		return true
	}
	return false
}

type ReferenceType string

const (
	RefAchievement ReferenceType = "achievement"
	RefBoost       ReferenceType = "boost"
	RefProfile     ReferenceType = "profile"
)

type Notification struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"userId"`
	Kind          Kind          `json:"type"`
	Title         string        `json:"title"`
	Message       string        `json:"message"`
	ReferenceID   string        `json:"referenceId,omitempty"`
	ReferenceType ReferenceType `json:"referenceType,omitempty"`
	Read          bool          `json:"read"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type DeviceToken struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// Each kind has a constructor so the payload is validated where the
// notification is built, not where it is rendered.

func NewAchievementUnlocked(userID uuid.UUID, achievementID, name string, xpReward, tokenReward int) (*Notification, error) {
	if achievementID == "" || name == "" {
		return nil, fmt.Errorf("achievement notification requires id and name")
	}
	return build(userID, KindAchievementUnlocked, "Achievement Unlocked!",
		fmt.Sprintf("%s — +%d XP, +%d tokens", name, xpReward, tokenReward),
		achievementID, RefAchievement)
}

func NewLevelUp(userID uuid.UUID, level int, theme string) (*Notification, error) {
	if level <= 0 {
		return nil, fmt.Errorf("level must be positive, got %d", level)
	}
	msg := fmt.Sprintf("You reached level %d", level)
	if theme != "" {
		msg += fmt.Sprintf(" and unlocked the %q theme", theme)
	}
	return build(userID, KindLevelUp, "Level Up!", msg, userID.String(), RefProfile)
}

func NewPrestige(userID uuid.UUID, prestige, tokenBonus int) (*Notification, error) {
	if prestige <= 0 {
		return nil, fmt.Errorf("prestige must be positive, got %d", prestige)
	}
	return build(userID, KindPrestige, "Prestige!",
		fmt.Sprintf("Prestige %d reached — level reset, +%d tokens", prestige, tokenBonus),
		userID.String(), RefProfile)
}

func NewBoostActivated(userID, boostID uuid.UUID, boostType string, expiresAt time.Time) (*Notification, error) {
	if boostID == uuid.Nil || boostType == "" {
		return nil, fmt.Errorf("boost notification requires boost id and type")
	}
	return build(userID, KindBoostActivated, "Boost Activated",
		fmt.Sprintf("Your %s boost is live until %s", boostType, expiresAt.Format(time.Kitchen)),
		boostID.String(), RefBoost)
}

func NewBoostResult(userID, boostID uuid.UUID, summary string) (*Notification, error) {
	if boostID == uuid.Nil || summary == "" {
		return nil, fmt.Errorf("boost result requires boost id and summary")
	}
	return build(userID, KindBoostResult, "Boost Results Are In", summary,
		boostID.String(), RefBoost)
}

func NewTokensAwarded(userID uuid.UUID, amount int, reason string) (*Notification, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("token amount must be positive, got %d", amount)
	}
	msg := fmt.Sprintf("+%d tokens", amount)
	if reason != "" {
		msg += " — " + reason
	}
	return build(userID, KindTokensAwarded, "Tokens Awarded", msg, userID.String(), RefProfile)
}

func build(userID uuid.UUID, kind Kind, title, message, refID string, refType ReferenceType) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("notification requires a user id")
	}
	return &Notification{
		ID:            uuid.New(),
		UserID:        userID,
		Kind:          kind,
		Title:         title,
		Message:       message,
		ReferenceID:   refID,
		ReferenceType: refType,
		CreatedAt:     time.Now(),
	}, nil
}
