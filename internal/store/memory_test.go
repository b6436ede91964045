package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cliptAPI/internal/achievement"
	"cliptAPI/internal/apperr"
	"cliptAPI/internal/boost"
	"cliptAPI/internal/notification"
)

func notificationFixture(userID uuid.UUID) (*notification.Notification, error) {
	return notification.NewTokensAwarded(userID, 10, "test")
}

func newTestProfile(t *testing.T, s *Memory, tokens int) uuid.UUID {
	t.Helper()
	p, err := s.EnsureProfile(context.Background(), "clerk_"+uuid.NewString())
	require.NoError(t, err)
	if tokens > 0 {
		_, err = s.AwardTokens(context.Background(), p.ID, tokens)
		require.NoError(t, err)
	}
	return p.ID
}

func TestEnsureProfileIdempotent(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	first, err := s.EnsureProfile(ctx, "clerk_abc")
	require.NoError(t, err)
	second, err := s.EnsureProfile(ctx, "clerk_abc")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestSpendTokensInsufficientBalance(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	userID := newTestProfile(t, s, 30)

	_, err := s.SpendTokens(ctx, userID, 80)

	var validationErr *apperr.ValidationError
	require.ErrorAs(t, err, &validationErr)

	p, err := s.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 30, p.Tokens, "failed spend must not touch the balance")
}

func TestSpendTokensNeverGoesNegative(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	userID := newTestProfile(t, s, 100)

	// 20 goroutines each try to spend 10 from a balance of 100.
	var wg sync.WaitGroup
	succeeded := make(chan struct{}, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.SpendTokens(ctx, userID, 10); err == nil {
				succeeded <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(succeeded)

	assert.Len(t, succeeded, 10, "exactly ten spends can succeed")

	p, err := s.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Tokens)
}

func TestAwardXPRecomputesLevel(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	userID := newTestProfile(t, s, 0)

	p, prevLevel, err := s.AwardXP(ctx, userID, 250)
	require.NoError(t, err)
	assert.Equal(t, 0, prevLevel)
	assert.Equal(t, 250, p.XP)
	assert.Equal(t, 2, p.Level)
}

func TestApplyAchievementProgressCompletesOnce(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	userID := newTestProfile(t, s, 0)

	def, err := s.GetAchievement(ctx, "trophy-hunter")
	require.NoError(t, err)

	// Hammer the same completion from many goroutines.
	var wg sync.WaitGroup
	completions := make(chan *achievement.ApplyResult, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.ApplyAchievementProgress(ctx, userID, def, def.TargetValue)
			if err == nil && result.CompletedNow {
				completions <- result
			}
		}()
	}
	wg.Wait()
	close(completions)

	assert.Len(t, completions, 1, "completion must be claimed exactly once")

	p, err := s.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, def.XPReward, p.XP, "reward XP granted exactly once")
	assert.Equal(t, def.TokenReward, p.Tokens, "reward tokens granted exactly once")
}

func TestApplyAchievementProgressNeverRegresses(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	userID := newTestProfile(t, s, 0)

	def, err := s.GetAchievement(ctx, "clip-collector")
	require.NoError(t, err)

	result, err := s.ApplyAchievementProgress(ctx, userID, def, 8)
	require.NoError(t, err)
	assert.Equal(t, 8.0, result.Progress.CurrentValue)

	result, err = s.ApplyAchievementProgress(ctx, userID, def, 3)
	require.NoError(t, err)
	assert.Equal(t, 8.0, result.Progress.CurrentValue, "lower value must not move progress backwards")
}

func activeBoost(userID uuid.UUID, boostType boost.Type, contentType boost.ContentType) (*boost.Boost, *boost.Metrics) {
	spec, _ := boost.SpecFor(boostType)
	now := time.Now()
	b := &boost.Boost{
		ID:          uuid.New(),
		UserID:      userID,
		ContentID:   uuid.New(),
		ContentType: contentType,
		BoostType:   boostType,
		Cost:        spec.Cost,
		Status:      boost.StatusActive,
		CreatedAt:   now,
		ExpiresAt:   now.Add(spec.Duration),
	}
	return b, &boost.Metrics{BoostID: b.ID, UpdatedAt: now}
}

func TestCreateBoostChargedDebitsTokens(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	userID := newTestProfile(t, s, 100)

	b, m := activeBoost(userID, boost.TypeStreamSurge, boost.ContentStream)
	require.NoError(t, s.CreateBoostCharged(ctx, b, m))

	p, err := s.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Tokens)

	stored, err := s.GetBoost(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, boost.StatusActive, stored.Status)
}

func TestCreateBoostChargedInsufficientBalance(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	userID := newTestProfile(t, s, 30)

	b, m := activeBoost(userID, boost.TypeKing, boost.ContentStream)
	err := s.CreateBoostCharged(ctx, b, m)

	var validationErr *apperr.ValidationError
	require.ErrorAs(t, err, &validationErr)

	_, err = s.GetBoost(ctx, b.ID)
	var notFoundErr *apperr.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr, "failed charge must not create the boost")

	p, err := s.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 30, p.Tokens)
}

func TestFinalizeBoostClaimedOnce(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	userID := newTestProfile(t, s, 100)

	b, m := activeBoost(userID, boost.TypeStreamSurge, boost.ContentStream)
	require.NoError(t, s.CreateBoostCharged(ctx, b, m))

	claimed, err := s.FinalizeBoost(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = s.FinalizeBoost(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, claimed, "second finalize must not claim again")

	stored, err := s.GetBoost(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, boost.StatusExpired, stored.Status)
}

func TestListExpiredActiveBoosts(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	userID := newTestProfile(t, s, 200)

	expired, m1 := activeBoost(userID, boost.TypeStreamSurge, boost.ContentStream)
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, s.CreateBoostCharged(ctx, expired, m1))

	active, m2 := activeBoost(userID, boost.TypeSquadBlast, boost.ContentPost)
	require.NoError(t, s.CreateBoostCharged(ctx, active, m2))

	due, err := s.ListExpiredActiveBoosts(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, expired.ID, due[0].ID)
}

func TestCancelBoostOwnershipCheck(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	owner := newTestProfile(t, s, 100)
	stranger := newTestProfile(t, s, 100)

	b, m := activeBoost(owner, boost.TypeSquadBlast, boost.ContentPost)
	require.NoError(t, s.CreateBoostCharged(ctx, b, m))

	_, err := s.CancelBoost(ctx, b.ID, stranger)
	var conflictErr *apperr.ConflictError
	require.ErrorAs(t, err, &conflictErr)

	cancelled, err := s.CancelBoost(ctx, b.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, boost.StatusCancelled, cancelled.Status)
}

func TestListNotificationsPagination(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	userID := newTestProfile(t, s, 0)

	for i := 0; i < 5; i++ {
		n, err := notificationFixture(userID)
		require.NoError(t, err)
		require.NoError(t, s.InsertNotification(ctx, n))
	}

	resp, err := s.ListNotifications(ctx, userID, 1, 2, false)
	require.NoError(t, err)
	assert.Len(t, resp.Notifications, 2)
	assert.Equal(t, 5, resp.TotalCount)
	assert.Equal(t, 5, resp.UnreadCount)

	require.NoError(t, s.MarkNotificationRead(ctx, resp.Notifications[0].ID, userID))
	resp, err = s.ListNotifications(ctx, userID, 1, 10, true)
	require.NoError(t, err)
	assert.Len(t, resp.Notifications, 4)
	assert.Equal(t, 4, resp.UnreadCount)

	require.NoError(t, s.MarkAllNotificationsRead(ctx, userID))
	resp, err = s.ListNotifications(ctx, userID, 1, 10, true)
	require.NoError(t, err)
	assert.Empty(t, resp.Notifications)
	assert.Equal(t, 0, resp.UnreadCount)
}

func TestMarkNotificationReadUnknownID(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	userID := newTestProfile(t, s, 0)

	err := s.MarkNotificationRead(ctx, uuid.New(), userID)
	var notFoundErr *apperr.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}
