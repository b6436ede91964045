package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cliptAPI/internal/apperr"
	"cliptAPI/internal/boost"
	"cliptAPI/internal/notification"
)

func applyRequest(boostType boost.Type, contentType boost.ContentType) *boost.ApplyBoostRequest {
	return &boost.ApplyBoostRequest{
		ContentID:   uuid.New(),
		ContentType: contentType,
		BoostType:   boostType,
	}
}

func TestApplyBoostValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.newUser(t, 500)

	tests := []struct {
		name string
		req  *boost.ApplyBoostRequest
	}{
		{"unknown boost type", &boost.ApplyBoostRequest{ContentID: uuid.New(), ContentType: boost.ContentPost, BoostType: "mega_blast"}},
		{"unknown content type", &boost.ApplyBoostRequest{ContentID: uuid.New(), ContentType: "story", BoostType: boost.TypeSquadBlast}},
		{"missing content id", &boost.ApplyBoostRequest{ContentType: boost.ContentPost, BoostType: boost.TypeSquadBlast}},
		{"stream-only boost on post", applyRequest(boost.TypeStreamSurge, boost.ContentPost)},
		{"king boost on post", applyRequest(boost.TypeKing, boost.ContentPost)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.boosts.ApplyBoost(ctx, userID, tt.req)
			var validationErr *apperr.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestApplyBoostInsufficientTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.newUser(t, 30)

	_, err := env.boosts.ApplyBoost(ctx, userID, applyRequest(boost.TypeKing, boost.ContentStream))
	var validationErr *apperr.ValidationError
	require.ErrorAs(t, err, &validationErr)

	p, err := env.store.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 30, p.Tokens, "rejected boost must not cost tokens")

	active, err := env.boosts.ListActiveBoosts(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestApplyBoostDebitsAndSchedulesExpiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.newUser(t, 100)

	resp, err := env.boosts.ApplyBoost(ctx, userID, applyRequest(boost.TypeStreamSurge, boost.ContentStream))
	require.NoError(t, err)

	assert.Equal(t, boost.StatusActive, resp.Status)
	assert.Equal(t, 50, resp.Cost)
	assert.Equal(t, resp.CreatedAt.Add(30*time.Minute), resp.ExpiresAt)
	require.NotNil(t, resp.Metrics)
	assert.Equal(t, resp.ID, resp.Metrics.BoostID)

	p, err := env.store.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Tokens)

	assert.Equal(t, 1, env.notificationsOfKind(t, userID, notification.KindBoostActivated))
}

func TestExtendBoostChargesAgain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.newUser(t, 100)

	resp, err := env.boosts.ApplyBoost(ctx, userID, applyRequest(boost.TypeSquadBlast, boost.ContentPost))
	require.NoError(t, err)

	extended, err := env.boosts.ExtendBoost(ctx, userID, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ExpiresAt.Add(24*time.Hour), extended.ExpiresAt)

	p, err := env.store.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 20, p.Tokens, "40 for the boost, 40 for the extension")
}

func TestCancelBoostKeepsTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.newUser(t, 100)

	resp, err := env.boosts.ApplyBoost(ctx, userID, applyRequest(boost.TypeSquadBlast, boost.ContentPost))
	require.NoError(t, err)

	cancelled, err := env.boosts.CancelBoost(ctx, userID, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, boost.StatusCancelled, cancelled.Status)

	// No refund on cancel.
	p, err := env.store.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 60, p.Tokens)

	active, err := env.boosts.ListActiveBoosts(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestGetBoostHidesOtherUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.newUser(t, 100)
	stranger := env.newUser(t, 100)

	resp, err := env.boosts.ApplyBoost(ctx, owner, applyRequest(boost.TypeSquadBlast, boost.ContentPost))
	require.NoError(t, err)

	_, err = env.boosts.GetBoost(ctx, stranger, resp.ID)
	var notFoundErr *apperr.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestRefreshMetricsAdvancesSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.newUser(t, 100)

	applied, err := env.boosts.ApplyBoost(ctx, userID, applyRequest(boost.TypeStreamSurge, boost.ContentStream))
	require.NoError(t, err)

	refreshed, err := env.boosts.RefreshMetrics(ctx, userID, applied.ID)
	require.NoError(t, err)

	require.NotNil(t, refreshed.Metrics)
	assert.False(t, refreshed.Metrics.UpdatedAt.Before(applied.Metrics.UpdatedAt))
	assert.GreaterOrEqual(t, refreshed.Metrics.ViewsCurrent, applied.Metrics.ViewsBefore)
}

func TestFinalizeExpiredBoostsSettlesOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.newUser(t, 100)

	now := time.Now()
	b := &boost.Boost{
		ID:          uuid.New(),
		UserID:      userID,
		ContentID:   uuid.New(),
		ContentType: boost.ContentStream,
		BoostType:   boost.TypeStreamSurge,
		Cost:        50,
		Status:      boost.StatusActive,
		CreatedAt:   now.Add(-time.Hour),
		ExpiresAt:   now.Add(-30 * time.Minute),
	}
	m := &boost.Metrics{BoostID: b.ID, ViewsBefore: 100, ViewsCurrent: 100, UpdatedAt: b.CreatedAt}
	require.NoError(t, env.store.CreateBoostCharged(ctx, b, m))

	finalized, err := env.boosts.FinalizeExpiredBoosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, finalized)

	// A second pass finds nothing left to settle.
	finalized, err = env.boosts.FinalizeExpiredBoosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, finalized)

	stored, err := env.store.GetBoost(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, boost.StatusExpired, stored.Status)

	assert.Equal(t, 1, env.notificationsOfKind(t, userID, notification.KindBoostResult))

	final, err := env.store.GetBoostMetrics(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ExpiresAt, final.UpdatedAt, "final snapshot lands on the expiry instant")
	assert.GreaterOrEqual(t, final.ViewersPeak, 200, "stream surge reports a peak audience")
}
