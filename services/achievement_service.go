package services

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"cliptAPI/internal/achievement"
	"cliptAPI/internal/apperr"
	"cliptAPI/internal/notification"
	"cliptAPI/internal/store"
)

type AchievementService struct {
	store         store.Store
	profiles      *ProfileService
	notifications *NotificationService
}

func NewAchievementService(s store.Store, profiles *ProfileService, notifications *NotificationService) *AchievementService {
	return &AchievementService{store: s, profiles: profiles, notifications: notifications}
}

func (s *AchievementService) ListAchievements(ctx context.Context, userID uuid.UUID) ([]*achievement.WithProgress, error) {
	return s.store.ListAchievementsWithProgress(ctx, userID)
}

// UpdateProgress raises the user's progress toward an achievement to
// newValue. Values never go backwards; crossing the target completes the
// achievement and grants its rewards exactly once, which the store
// guarantees with a conditional claim.
func (s *AchievementService) UpdateProgress(ctx context.Context, userID uuid.UUID, achievementID string, newValue float64) (*achievement.ApplyResult, error) {
	if newValue < 0 {
		return nil, &apperr.ValidationError{Field: "value", Reason: "progress cannot be negative"}
	}

	def, err := s.store.GetAchievement(ctx, achievementID)
	if err != nil {
		return nil, err
	}

	result, err := s.store.ApplyAchievementProgress(ctx, userID, def, newValue)
	if err != nil {
		log.Printf("Achievement progress write failed: user=%s achievement=%s: %v", userID, achievementID, err)
		return nil, err
	}

	if result.CompletedNow {
		log.Printf("Achievement completed: user=%s achievement=%s (+%d XP, +%d tokens)",
			userID, achievementID, def.XPReward, def.TokenReward)

		if n, err := notification.NewAchievementUnlocked(userID, def.ID, def.Name, def.XPReward, def.TokenReward); err == nil {
			if err := s.notifications.Notify(ctx, n); err != nil {
				log.Printf("Failed to notify achievement %s for %s: %v", def.ID, userID, err)
			}
		}

		// The XP reward may have pushed the profile over a level
		// boundary.
		if result.NewLevel > result.PrevLevel {
			if p, err := s.store.GetProfile(ctx, userID); err == nil {
				s.profiles.handleLevelUp(ctx, p, result.PrevLevel)
			}
		}
	}

	return result, nil
}

// IncrementProgress is the read-add-delegate convenience wrapper.
func (s *AchievementService) IncrementProgress(ctx context.Context, userID uuid.UUID, achievementID string, delta float64) (*achievement.ApplyResult, error) {
	if delta <= 0 {
		return nil, &apperr.ValidationError{Field: "delta", Reason: "increment must be positive"}
	}

	current := 0.0
	p, err := s.store.GetAchievementProgress(ctx, userID, achievementID)
	if err != nil {
		var notFound *apperr.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	} else {
		current = p.CurrentValue
	}

	return s.UpdateProgress(ctx, userID, achievementID, current+delta)
}
