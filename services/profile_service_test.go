package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cliptAPI/internal/apperr"
	"cliptAPI/internal/notification"
	"cliptAPI/utils"
)

func TestAwardXPRejectsNonPositiveAmount(t *testing.T) {
	env := newTestEnv(t)
	userID := env.newUser(t, 0)

	for _, amount := range []int{0, -10} {
		_, err := env.profiles.AwardXP(context.Background(), userID, amount, "test")
		var validationErr *apperr.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	}
}

func TestAwardXPLevelUpUnlocksMilestoneTheme(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.newUser(t, 0)

	resp, err := env.profiles.AwardXP(ctx, userID, utils.TotalXPForLevel(5), "test")
	require.NoError(t, err)

	assert.Equal(t, 5, resp.Level)
	assert.True(t, resp.HasTheme("neon-grid"), "level 5 milestone theme")
	assert.Equal(t, 1, env.notificationsOfKind(t, userID, notification.KindLevelUp))
}

func TestAwardXPCrossingSeveralLevelsNotifiesOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.newUser(t, 0)

	// Level 0 straight to 10, crossing two theme milestones.
	resp, err := env.profiles.AwardXP(ctx, userID, utils.TotalXPForLevel(10), "test")
	require.NoError(t, err)

	assert.Equal(t, 10, resp.Level)
	assert.True(t, resp.HasTheme("neon-grid"))
	assert.True(t, resp.HasTheme("crt-glow"))
	assert.Equal(t, 1, env.notificationsOfKind(t, userID, notification.KindLevelUp))
}

func TestAwardTokensNotifies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.newUser(t, 0)

	p, err := env.profiles.AwardTokens(ctx, userID, 25, "daily bonus")
	require.NoError(t, err)

	assert.Equal(t, 25, p.Tokens)
	assert.Equal(t, 1, env.notificationsOfKind(t, userID, notification.KindTokensAwarded))
}

func TestPrestigeRequiresMaxLevel(t *testing.T) {
	env := newTestEnv(t)
	userID := env.newUser(t, 0)

	_, err := env.profiles.Prestige(context.Background(), userID)
	var validationErr *apperr.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestPrestigeResetsCurveAndPaysBonus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.newUser(t, 0)

	_, err := env.profiles.AwardXP(ctx, userID, utils.TotalXPForLevel(utils.MaxLevel), "test")
	require.NoError(t, err)

	p, err := env.profiles.Prestige(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, 1, p.Prestige)
	assert.Equal(t, 0, p.XP)
	assert.Equal(t, 0, p.Level)
	assert.Equal(t, PrestigeTokenBonus, p.Tokens)
	assert.Equal(t, 1, env.notificationsOfKind(t, userID, notification.KindPrestige))

	// Themes survive the reset.
	assert.True(t, p.HasTheme("gold-cartridge"))
}
