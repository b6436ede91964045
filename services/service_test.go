package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"cliptAPI/internal/notification"
	"cliptAPI/internal/store"
)

type testEnv struct {
	store         *store.Memory
	profiles      *ProfileService
	achievements  *AchievementService
	boosts        *BoostService
	notifications *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mem := store.NewMemory()
	notifications := NewNotificationService(mem)
	t.Cleanup(notifications.Stop)

	profiles := NewProfileService(mem, notifications)
	achievements := NewAchievementService(mem, profiles, notifications)
	boosts := NewBoostService(mem, NewBoostSimulator(mem), notifications)

	return &testEnv{
		store:         mem,
		profiles:      profiles,
		achievements:  achievements,
		boosts:        boosts,
		notifications: notifications,
	}
}

func (e *testEnv) newUser(t *testing.T, tokens int) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	p, err := e.profiles.Resolve(ctx, "clerk_"+uuid.NewString())
	require.NoError(t, err)
	if tokens > 0 {
		_, err = e.store.AwardTokens(ctx, p.ID, tokens)
		require.NoError(t, err)
	}
	return p.ID
}

// notificationsOfKind counts the user's stored notifications of one kind.
func (e *testEnv) notificationsOfKind(t *testing.T, userID uuid.UUID, kind notification.Kind) int {
	t.Helper()

	resp, err := e.store.ListNotifications(context.Background(), userID, 1, 100, false)
	require.NoError(t, err)

	count := 0
	for _, n := range resp.Notifications {
		if n.Kind == kind {
			count++
		}
	}
	return count
}
