package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cliptAPI/internal/achievement"
	"cliptAPI/internal/boost"
	"cliptAPI/internal/notification"
	"cliptAPI/internal/profile"
)

// Store is the persistence boundary for the progression domain. Two
// implementations exist: Postgres (production) and Memory (demo mode and
// tests). Multi-step operations that must not half-apply (token debit plus
// boost insert, completion claim plus reward grant) live here as single
// methods so each implementation can make them atomic.
//
// Error contract: missing rows surface as *apperr.NotFoundError, failed
// business preconditions as *apperr.ValidationError, lost conditional writes
// as *apperr.ConflictError and any backend failure as *apperr.StoreError.
type Store interface {
	// Profiles.
	GetProfile(ctx context.Context, userID uuid.UUID) (*profile.Profile, error)
	GetProfileByClerkID(ctx context.Context, clerkID string) (*profile.Profile, error)
	// EnsureProfile creates the progression row on first touch; accounts
	// themselves are owned by the auth system.
	EnsureProfile(ctx context.Context, clerkID string) (*profile.Profile, error)
	// AwardXP adds XP and recomputes the level cache from the new total.
	// The returned int is the level before the grant.
	AwardXP(ctx context.Context, userID uuid.UUID, amount int) (*profile.Profile, int, error)
	AwardTokens(ctx context.Context, userID uuid.UUID, amount int) (*profile.Profile, error)
	// SpendTokens fails with a ValidationError when the balance would go
	// negative; the balance is left untouched in that case.
	SpendTokens(ctx context.Context, userID uuid.UUID, amount int) (*profile.Profile, error)
	// Prestige resets xp/level and increments prestige, crediting
	// tokenBonus in the same write. Callers gate on level beforehand; the
	// store re-checks and returns a ConflictError when the level moved.
	Prestige(ctx context.Context, userID uuid.UUID, requiredLevel, tokenBonus int) (*profile.Profile, error)
	UnlockTheme(ctx context.Context, userID uuid.UUID, theme string) (*profile.Profile, error)

	// Achievements.
	ListAchievements(ctx context.Context) ([]*achievement.Definition, error)
	GetAchievement(ctx context.Context, id string) (*achievement.Definition, error)
	ListAchievementsWithProgress(ctx context.Context, userID uuid.UUID) ([]*achievement.WithProgress, error)
	GetAchievementProgress(ctx context.Context, userID uuid.UUID, achievementID string) (*achievement.Progress, error)
	// ApplyAchievementProgress raises current_value monotonically and, when
	// the target is crossed for the first time, claims completion and
	// grants the rewards in the same transaction. The completed=false guard
	// makes the claim safe under concurrent callers: exactly one sees
	// CompletedNow.
	ApplyAchievementProgress(ctx context.Context, userID uuid.UUID, def *achievement.Definition, newValue float64) (*achievement.ApplyResult, error)

	// Boosts.
	// CreateBoostCharged debits b.Cost and inserts the boost row and its
	// baseline metrics snapshot; either all three apply or none.
	CreateBoostCharged(ctx context.Context, b *boost.Boost, m *boost.Metrics) error
	GetBoost(ctx context.Context, id uuid.UUID) (*boost.Boost, error)
	ListActiveBoosts(ctx context.Context, userID uuid.UUID) ([]*boost.Boost, error)
	ListExpiredActiveBoosts(ctx context.Context, now time.Time, limit int) ([]*boost.Boost, error)
	// ExtendBoostCharged re-debits cost and pushes expires_at forward,
	// all-or-nothing, only while the boost is still active.
	ExtendBoostCharged(ctx context.Context, boostID, userID uuid.UUID, extra time.Duration, cost int) (*boost.Boost, error)
	CancelBoost(ctx context.Context, boostID, userID uuid.UUID) (*boost.Boost, error)
	// FinalizeBoost transitions active->expired. Returns false when another
	// pass already claimed the boost, so overlapping polls stay idempotent.
	FinalizeBoost(ctx context.Context, boostID uuid.UUID) (bool, error)
	SaveBoostMetrics(ctx context.Context, m *boost.Metrics) error
	GetBoostMetrics(ctx context.Context, boostID uuid.UUID) (*boost.Metrics, error)
	GetContentStats(ctx context.Context, userID, contentID uuid.UUID, contentType boost.ContentType) (*boost.ContentStats, error)

	// Notifications.
	InsertNotification(ctx context.Context, n *notification.Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID, page, pageSize int, unreadOnly bool) (*notification.ListResponse, error)
	MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) error
	RegisterDeviceToken(ctx context.Context, userID uuid.UUID, token, platform string) error
	ListDeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error)
}
