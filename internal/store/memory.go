package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"cliptAPI/internal/achievement"
	"cliptAPI/internal/apperr"
	"cliptAPI/internal/boost"
	"cliptAPI/internal/notification"
	"cliptAPI/internal/profile"
	"cliptAPI/utils"
)

type progressKey struct {
	userID        uuid.UUID
	achievementID string
}

type contentKey struct {
	contentID   uuid.UUID
	contentType boost.ContentType
}

// Memory implements Store in process. It backs demo mode and the test
// suite; a single mutex gives it the same atomicity the Postgres
// implementation gets from transactions and conditional updates.
type Memory struct {
	mu sync.Mutex

	profiles      map[uuid.UUID]*profile.Profile
	byClerkID     map[string]uuid.UUID
	catalog       []*achievement.Definition
	progress      map[progressKey]*achievement.Progress
	boosts        map[uuid.UUID]*boost.Boost
	metrics       map[uuid.UUID]*boost.Metrics
	notifications map[uuid.UUID][]*notification.Notification
	deviceTokens  map[uuid.UUID][]notification.DeviceToken
	contentStats  map[contentKey]*boost.ContentStats
}

func NewMemory() *Memory {
	return &Memory{
		profiles:      make(map[uuid.UUID]*profile.Profile),
		byClerkID:     make(map[string]uuid.UUID),
		catalog:       achievement.DefaultCatalog,
		progress:      make(map[progressKey]*achievement.Progress),
		boosts:        make(map[uuid.UUID]*boost.Boost),
		metrics:       make(map[uuid.UUID]*boost.Metrics),
		notifications: make(map[uuid.UUID][]*notification.Notification),
		deviceTokens:  make(map[uuid.UUID][]notification.DeviceToken),
		contentStats:  make(map[contentKey]*boost.ContentStats),
	}
}

var _ Store = (*Memory)(nil)

func cloneProfile(p *profile.Profile) *profile.Profile {
	cp := *p
	cp.UnlockedThemes = append([]string(nil), p.UnlockedThemes...)
	return &cp
}

// SetContentStats seeds engagement counters for a piece of content; demo
// and test hook, not part of the Store interface.
func (s *Memory) SetContentStats(contentID uuid.UUID, contentType boost.ContentType, stats boost.ContentStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contentStats[contentKey{contentID, contentType}] = &stats
}

// --- Profiles ---

func (s *Memory) GetProfile(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getProfileLocked(userID)
}

func (s *Memory) getProfileLocked(userID uuid.UUID) (*profile.Profile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return nil, &apperr.NotFoundError{Resource: "profile", Identifier: userID.String()}
	}
	return cloneProfile(p), nil
}

func (s *Memory) GetProfileByClerkID(ctx context.Context, clerkID string) (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byClerkID[clerkID]
	if !ok {
		return nil, &apperr.NotFoundError{Resource: "profile", Identifier: clerkID}
	}
	return s.getProfileLocked(id)
}

func (s *Memory) EnsureProfile(ctx context.Context, clerkID string) (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byClerkID[clerkID]; ok {
		return s.getProfileLocked(id)
	}

	now := time.Now()
	p := &profile.Profile{
		ID:             uuid.New(),
		ClerkID:        clerkID,
		UnlockedThemes: []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.profiles[p.ID] = p
	s.byClerkID[clerkID] = p.ID
	return cloneProfile(p), nil
}

func (s *Memory) AwardXP(ctx context.Context, userID uuid.UUID, amount int) (*profile.Profile, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, 0, &apperr.NotFoundError{Resource: "profile", Identifier: userID.String()}
	}
	prevLevel := p.Level
	p.XP += amount
	p.Level = utils.CalculateLevel(p.XP).Level
	p.UpdatedAt = time.Now()
	return cloneProfile(p), prevLevel, nil
}

func (s *Memory) AwardTokens(ctx context.Context, userID uuid.UUID, amount int) (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, &apperr.NotFoundError{Resource: "profile", Identifier: userID.String()}
	}
	p.Tokens += amount
	p.UpdatedAt = time.Now()
	return cloneProfile(p), nil
}

func (s *Memory) SpendTokens(ctx context.Context, userID uuid.UUID, amount int) (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spendTokensLocked(userID, amount)
}

func (s *Memory) spendTokensLocked(userID uuid.UUID, amount int) (*profile.Profile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return nil, &apperr.NotFoundError{Resource: "profile", Identifier: userID.String()}
	}
	if p.Tokens < amount {
		return nil, &apperr.ValidationError{
			Field:  "tokens",
			Reason: fmt.Sprintf("balance %d below %d", p.Tokens, amount),
		}
	}
	p.Tokens -= amount
	p.UpdatedAt = time.Now()
	return cloneProfile(p), nil
}

func (s *Memory) Prestige(ctx context.Context, userID uuid.UUID, requiredLevel, tokenBonus int) (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, &apperr.NotFoundError{Resource: "profile", Identifier: userID.String()}
	}
	if p.Level != requiredLevel {
		return nil, &apperr.ConflictError{Resource: "profile", Reason: fmt.Sprintf("level is no longer %d", requiredLevel)}
	}
	p.Prestige++
	p.XP = 0
	p.Level = 0
	p.Tokens += tokenBonus
	p.UpdatedAt = time.Now()
	return cloneProfile(p), nil
}

func (s *Memory) UnlockTheme(ctx context.Context, userID uuid.UUID, theme string) (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, &apperr.NotFoundError{Resource: "profile", Identifier: userID.String()}
	}
	if !p.HasTheme(theme) {
		p.UnlockedThemes = append(p.UnlockedThemes, theme)
		p.UpdatedAt = time.Now()
	}
	return cloneProfile(p), nil
}

// --- Achievements ---

func (s *Memory) ListAchievements(ctx context.Context) ([]*achievement.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defs := make([]*achievement.Definition, len(s.catalog))
	copy(defs, s.catalog)
	return defs, nil
}

func (s *Memory) GetAchievement(ctx context.Context, id string) (*achievement.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, def := range s.catalog {
		if def.ID == id {
			return def, nil
		}
	}
	return nil, &apperr.NotFoundError{Resource: "achievement", Identifier: id}
}

func (s *Memory) ListAchievementsWithProgress(ctx context.Context, userID uuid.UUID) ([]*achievement.WithProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*achievement.WithProgress, 0, len(s.catalog))
	for _, def := range s.catalog {
		wp := &achievement.WithProgress{Definition: *def}
		if p, ok := s.progress[progressKey{userID, def.ID}]; ok {
			wp.CurrentValue = p.CurrentValue
			wp.Completed = p.Completed
		}
		result = append(result, wp)
	}
	return result, nil
}

func (s *Memory) GetAchievementProgress(ctx context.Context, userID uuid.UUID, achievementID string) (*achievement.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.progress[progressKey{userID, achievementID}]
	if !ok {
		return nil, &apperr.NotFoundError{
			Resource:   "achievement progress",
			Identifier: fmt.Sprintf("%s/%s", userID, achievementID),
		}
	}
	cp := *p
	return &cp, nil
}

func (s *Memory) ApplyAchievementProgress(ctx context.Context, userID uuid.UUID, def *achievement.Definition, newValue float64) (*achievement.ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := progressKey{userID, def.ID}
	now := time.Now()
	p, ok := s.progress[key]
	if !ok {
		p = &achievement.Progress{
			UserID:        userID,
			AchievementID: def.ID,
			CreatedAt:     now,
		}
		s.progress[key] = p
	}

	if newValue > p.CurrentValue {
		p.CurrentValue = newValue
	}
	p.UpdatedAt = now

	result := &achievement.ApplyResult{Progress: *p}
	if p.Completed || p.CurrentValue < def.TargetValue {
		return result, nil
	}

	p.Completed = true
	result.Progress.Completed = true
	result.CompletedNow = true

	prof, ok := s.profiles[userID]
	if !ok {
		p.Completed = false
		return nil, &apperr.NotFoundError{Resource: "profile", Identifier: userID.String()}
	}
	result.PrevLevel = prof.Level
	prof.XP += def.XPReward
	prof.Tokens += def.TokenReward
	prof.Level = utils.CalculateLevel(prof.XP).Level
	prof.UpdatedAt = now
	result.NewLevel = prof.Level

	return result, nil
}

// --- Boosts ---

func (s *Memory) CreateBoostCharged(ctx context.Context, b *boost.Boost, m *boost.Metrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.spendTokensLocked(b.UserID, b.Cost); err != nil {
		return err
	}
	cb := *b
	s.boosts[b.ID] = &cb
	cm := *m
	s.metrics[m.BoostID] = &cm
	return nil
}

func (s *Memory) GetBoost(ctx context.Context, id uuid.UUID) (*boost.Boost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boosts[id]
	if !ok {
		return nil, &apperr.NotFoundError{Resource: "boost", Identifier: id.String()}
	}
	cb := *b
	return &cb, nil
}

func (s *Memory) ListActiveBoosts(ctx context.Context, userID uuid.UUID) ([]*boost.Boost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var boosts []*boost.Boost
	for _, b := range s.boosts {
		if b.UserID == userID && b.Status == boost.StatusActive {
			cb := *b
			boosts = append(boosts, &cb)
		}
	}
	sort.Slice(boosts, func(i, j int) bool {
		return boosts[i].CreatedAt.After(boosts[j].CreatedAt)
	})
	return boosts, nil
}

func (s *Memory) ListExpiredActiveBoosts(ctx context.Context, now time.Time, limit int) ([]*boost.Boost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var boosts []*boost.Boost
	for _, b := range s.boosts {
		if b.Status == boost.StatusActive && b.Expired(now) {
			cb := *b
			boosts = append(boosts, &cb)
		}
	}
	sort.Slice(boosts, func(i, j int) bool {
		return boosts[i].ExpiresAt.Before(boosts[j].ExpiresAt)
	})
	if limit > 0 && len(boosts) > limit {
		boosts = boosts[:limit]
	}
	return boosts, nil
}

func (s *Memory) ExtendBoostCharged(ctx context.Context, boostID, userID uuid.UUID, extra time.Duration, cost int) (*boost.Boost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boosts[boostID]
	if !ok {
		return nil, &apperr.NotFoundError{Resource: "boost", Identifier: boostID.String()}
	}
	if b.UserID != userID || b.Status != boost.StatusActive {
		return nil, &apperr.ConflictError{Resource: "boost", Reason: "not active or not owned by caller"}
	}
	if _, err := s.spendTokensLocked(userID, cost); err != nil {
		return nil, err
	}
	b.ExpiresAt = b.ExpiresAt.Add(extra)
	cb := *b
	return &cb, nil
}

func (s *Memory) CancelBoost(ctx context.Context, boostID, userID uuid.UUID) (*boost.Boost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boosts[boostID]
	if !ok {
		return nil, &apperr.NotFoundError{Resource: "boost", Identifier: boostID.String()}
	}
	if b.UserID != userID || b.Status != boost.StatusActive {
		return nil, &apperr.ConflictError{Resource: "boost", Reason: "not active or not owned by caller"}
	}
	b.Status = boost.StatusCancelled
	cb := *b
	return &cb, nil
}

func (s *Memory) FinalizeBoost(ctx context.Context, boostID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boosts[boostID]
	if !ok {
		return false, &apperr.NotFoundError{Resource: "boost", Identifier: boostID.String()}
	}
	if b.Status != boost.StatusActive {
		return false, nil
	}
	b.Status = boost.StatusExpired
	return true, nil
}

func (s *Memory) SaveBoostMetrics(ctx context.Context, m *boost.Metrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cm := *m
	s.metrics[m.BoostID] = &cm
	return nil
}

func (s *Memory) GetBoostMetrics(ctx context.Context, boostID uuid.UUID) (*boost.Metrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.metrics[boostID]
	if !ok {
		return nil, &apperr.NotFoundError{Resource: "boost metrics", Identifier: boostID.String()}
	}
	cm := *m
	return &cm, nil
}

func (s *Memory) GetContentStats(ctx context.Context, userID, contentID uuid.UUID, contentType boost.ContentType) (*boost.ContentStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, ok := s.contentStats[contentKey{contentID, contentType}]
	if !ok {
		return nil, &apperr.NotFoundError{Resource: string(contentType), Identifier: contentID.String()}
	}
	cs := *stats
	return &cs, nil
}

// --- Notifications ---

func (s *Memory) InsertNotification(ctx context.Context, n *notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cn := *n
	s.notifications[n.UserID] = append(s.notifications[n.UserID], &cn)
	return nil
}

func (s *Memory) ListNotifications(ctx context.Context, userID uuid.UUID, page, pageSize int, unreadOnly bool) (*notification.ListResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	all := s.notifications[userID]
	unreadCount := 0
	var filtered []*notification.Notification
	for _, n := range all {
		if !n.Read {
			unreadCount++
		}
		if unreadOnly && n.Read {
			continue
		}
		cn := *n
		filtered = append(filtered, &cn)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	start := (page - 1) * pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	return &notification.ListResponse{
		Notifications: filtered[start:end],
		UnreadCount:   unreadCount,
		TotalCount:    len(all),
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

func (s *Memory) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications[userID] {
		if n.ID == id && !n.Read {
			n.Read = true
			return nil
		}
	}
	return &apperr.NotFoundError{Resource: "unread notification", Identifier: id.String()}
}

func (s *Memory) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications[userID] {
		n.Read = true
	}
	return nil
}

func (s *Memory) RegisterDeviceToken(ctx context.Context, userID uuid.UUID, token, platform string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.deviceTokens[userID] {
		if t.Token == token {
			s.deviceTokens[userID][i].Platform = platform
			return nil
		}
	}
	s.deviceTokens[userID] = append(s.deviceTokens[userID], notification.DeviceToken{Token: token, Platform: platform})
	return nil
}

func (s *Memory) ListDeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification.DeviceToken(nil), s.deviceTokens[userID]...), nil
}
