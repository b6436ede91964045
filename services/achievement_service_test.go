package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cliptAPI/internal/apperr"
	"cliptAPI/internal/notification"
)

func TestIncrementProgressRejectsNonPositiveDelta(t *testing.T) {
	env := newTestEnv(t)
	userID := env.newUser(t, 0)

	_, err := env.achievements.IncrementProgress(context.Background(), userID, "trophy-hunter", 0)
	var validationErr *apperr.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestUpdateProgressUnknownAchievement(t *testing.T) {
	env := newTestEnv(t)
	userID := env.newUser(t, 0)

	_, err := env.achievements.UpdateProgress(context.Background(), userID, "no-such-achievement", 1)
	var notFoundErr *apperr.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestIncrementCrossingTargetCompletesAndRewards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.newUser(t, 0)

	// trophy-hunter: target 10, +200 XP, +30 tokens.
	result, err := env.achievements.UpdateProgress(ctx, userID, "trophy-hunter", 8)
	require.NoError(t, err)
	assert.False(t, result.CompletedNow)

	result, err = env.achievements.IncrementProgress(ctx, userID, "trophy-hunter", 3)
	require.NoError(t, err)
	assert.True(t, result.CompletedNow)
	assert.Equal(t, 11.0, result.Progress.CurrentValue)

	p, err := env.store.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 200, p.XP)
	assert.Equal(t, 30, p.Tokens)
	assert.Equal(t, 1, p.Level, "200 XP crosses the level 1 boundary")
	assert.Equal(t, 1, env.notificationsOfKind(t, userID, notification.KindAchievementUnlocked))
	assert.Equal(t, 1, env.notificationsOfKind(t, userID, notification.KindLevelUp))
}

func TestCompletedAchievementNeverRewardsTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.newUser(t, 0)

	_, err := env.achievements.UpdateProgress(ctx, userID, "first-clip", 1)
	require.NoError(t, err)

	result, err := env.achievements.IncrementProgress(ctx, userID, "first-clip", 5)
	require.NoError(t, err)
	assert.False(t, result.CompletedNow)

	p, err := env.store.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 50, p.XP, "reward granted exactly once")
	assert.Equal(t, 10, p.Tokens)
	assert.Equal(t, 1, env.notificationsOfKind(t, userID, notification.KindAchievementUnlocked))
}

func TestConcurrentCompletionNotifiesOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.newUser(t, 0)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.achievements.UpdateProgress(ctx, userID, "night-owl", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, err := env.store.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 60, p.XP)
	assert.Equal(t, 10, p.Tokens)
	assert.Equal(t, 1, env.notificationsOfKind(t, userID, notification.KindAchievementUnlocked))
}

func TestListAchievementsIncludesProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.newUser(t, 0)

	_, err := env.achievements.UpdateProgress(ctx, userID, "clip-collector", 4)
	require.NoError(t, err)

	all, err := env.achievements.ListAchievements(ctx, userID)
	require.NoError(t, err)

	found := false
	for _, a := range all {
		if a.ID == "clip-collector" {
			found = true
			assert.Equal(t, 4.0, a.CurrentValue)
			assert.False(t, a.Completed)
		}
	}
	assert.True(t, found)
}
