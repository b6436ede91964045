package services

import (
	"context"
	"log"

	"github.com/google/uuid"

	"cliptAPI/internal/apperr"
	"cliptAPI/internal/notification"
	"cliptAPI/internal/profile"
	"cliptAPI/internal/store"
	"cliptAPI/utils"
)

// PrestigeTokenBonus is credited when a level-30 profile prestiges.
const PrestigeTokenBonus = 100

type ProfileService struct {
	store         store.Store
	notifications *NotificationService
}

func NewProfileService(s store.Store, notifications *NotificationService) *ProfileService {
	return &ProfileService{store: s, notifications: notifications}
}

// Resolve maps an authenticated Clerk subject to its progression profile,
// creating the row on first touch. Account creation itself belongs to the
// auth system.
func (s *ProfileService) Resolve(ctx context.Context, clerkID string) (*profile.Profile, error) {
	return s.store.EnsureProfile(ctx, clerkID)
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*profile.ProfileResponse, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &profile.ProfileResponse{Profile: p, Leveling: utils.CalculateLevel(p.XP)}, nil
}

func (s *ProfileService) AwardXP(ctx context.Context, userID uuid.UUID, amount int, reason string) (*profile.ProfileResponse, error) {
	if amount <= 0 {
		return nil, &apperr.ValidationError{Field: "amount", Reason: "xp award must be positive"}
	}

	p, prevLevel, err := s.store.AwardXP(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	log.Printf("XP awarded: user=%s amount=%d level=%d (reason: %s)", userID, amount, p.Level, reason)

	p = s.handleLevelUp(ctx, p, prevLevel)
	return &profile.ProfileResponse{Profile: p, Leveling: utils.CalculateLevel(p.XP)}, nil
}

func (s *ProfileService) AwardTokens(ctx context.Context, userID uuid.UUID, amount int, reason string) (*profile.Profile, error) {
	if amount <= 0 {
		return nil, &apperr.ValidationError{Field: "amount", Reason: "token award must be positive"}
	}

	p, err := s.store.AwardTokens(ctx, userID, amount)
	if err != nil {
		return nil, err
	}

	if n, err := notification.NewTokensAwarded(userID, amount, reason); err == nil {
		if err := s.notifications.Notify(ctx, n); err != nil {
			log.Printf("Failed to notify token award for %s: %v", userID, err)
		}
	}
	return p, nil
}

func (s *ProfileService) SpendTokens(ctx context.Context, userID uuid.UUID, amount int) (*profile.Profile, error) {
	if amount <= 0 {
		return nil, &apperr.ValidationError{Field: "amount", Reason: "token spend must be positive"}
	}
	return s.store.SpendTokens(ctx, userID, amount)
}

// Prestige resets a max-level profile back to the start of the curve.
func (s *ProfileService) Prestige(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.Level != utils.MaxLevel {
		return nil, &apperr.ValidationError{Field: "level", Reason: "prestige requires max level"}
	}

	p, err = s.store.Prestige(ctx, userID, utils.MaxLevel, PrestigeTokenBonus)
	if err != nil {
		return nil, err
	}
	log.Printf("Prestige: user=%s prestige=%d", userID, p.Prestige)

	if n, err := notification.NewPrestige(userID, p.Prestige, PrestigeTokenBonus); err == nil {
		if err := s.notifications.Notify(ctx, n); err != nil {
			log.Printf("Failed to notify prestige for %s: %v", userID, err)
		}
	}
	return p, nil
}

// handleLevelUp unlocks milestone themes for every level crossed and emits
// one level-up notification. Shared with the achievement reward path, which
// also moves XP.
func (s *ProfileService) handleLevelUp(ctx context.Context, p *profile.Profile, prevLevel int) *profile.Profile {
	if p.Level <= prevLevel {
		return p
	}

	theme := ""
	for lvl := prevLevel + 1; lvl <= p.Level; lvl++ {
		t, ok := profile.ThemeUnlocks[lvl]
		if !ok {
			continue
		}
		updated, err := s.store.UnlockTheme(ctx, p.ID, t)
		if err != nil {
			log.Printf("Failed to unlock theme %q for %s: %v", t, p.ID, err)
			continue
		}
		p = updated
		theme = t
	}

	if n, err := notification.NewLevelUp(p.ID, p.Level, theme); err == nil {
		if err := s.notifications.Notify(ctx, n); err != nil {
			log.Printf("Failed to notify level up for %s: %v", p.ID, err)
		}
	}
	return p
}
