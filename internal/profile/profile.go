package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile carries a user's progression state. Level is a cache derived from
// XP; every write path recomputes it from XP, it is never authoritative on
// its own.
type Profile struct {
	ID             uuid.UUID `json:"id"`
	ClerkID        string    `json:"clerkId"`
	XP             int       `json:"xp"`
	Level          int       `json:"level"`
	Prestige       int       `json:"prestige"`
	Tokens         int       `json:"tokens"`
	UnlockedThemes []string  `json:"unlockedThemes"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ThemeUnlocks maps level milestones to the arcade theme granted when the
// milestone is first reached.
var ThemeUnlocks = map[int]string{
	5:  "neon-grid",
	10: "crt-glow",
	20: "synthwave",
	30: "gold-cartridge",
}

func (p *Profile) HasTheme(theme string) bool {
	for _, t := range p.UnlockedThemes {
		if t == theme {
			return true
		}
	}
	return false
}
