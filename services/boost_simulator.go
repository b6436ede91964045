package services

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"cliptAPI/internal/boost"
	"cliptAPI/internal/store"
)

// BoostSimulator produces the engagement numbers shown for a boost. It is a
// demo layer: the figures are plausible, not measured, and make no causal
// claim about real traffic.
type BoostSimulator struct {
	store store.Store
}

func NewBoostSimulator(s store.Store) *BoostSimulator {
	return &BoostSimulator{store: s}
}

// Baseline snapshots the content's counters at boost creation. When the
// content row is missing (demo content, deleted posts) it synthesizes
// plausible values instead of failing the boost.
func (s *BoostSimulator) Baseline(ctx context.Context, b *boost.Boost) *boost.Metrics {
	stats, err := s.store.GetContentStats(ctx, b.UserID, b.ContentID, b.ContentType)
	if err != nil {
		log.Printf("Simulator: no stats for %s %s, synthesizing baseline: %v", b.ContentType, b.ContentID, err)
		views := 150 + rand.IntN(1350)
		stats = &boost.ContentStats{
			Views:     views,
			Likes:     views / (8 + rand.IntN(5)),
			Shares:    views / (30 + rand.IntN(20)),
			Followers: 20 + rand.IntN(480),
		}
	}

	m := &boost.Metrics{
		BoostID:       b.ID,
		ViewsBefore:   stats.Views,
		LikesBefore:   stats.Likes,
		SharesBefore:  stats.Shares,
		ViewsCurrent:  stats.Views,
		LikesCurrent:  stats.Likes,
		SharesCurrent: stats.Shares,
		UpdatedAt:     b.CreatedAt,
	}

	switch b.BoostType {
	case boost.TypeSquadBlast:
		m.AudienceSize = stats.Followers
	case boost.TypeChainReaction:
		m.ChainMultiplier = 1.0
	case boost.TypeKing:
		m.RankBefore = 11 + rand.IntN(40)
		m.RankDuring = m.RankBefore
	case boost.TypeStreamSurge:
		m.ViewersPeak = stats.Views
	}
	return m
}

// Snapshot advances the metrics to the given instant, growing counters in
// proportion to how much of the boost window has elapsed.
func (s *BoostSimulator) Snapshot(b *boost.Boost, m *boost.Metrics, now time.Time) *boost.Metrics {
	window := b.ExpiresAt.Sub(b.CreatedAt)
	if window <= 0 {
		return m
	}
	elapsed := now.Sub(b.CreatedAt)
	frac := float64(elapsed) / float64(window)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	next := *m

	switch b.BoostType {
	case boost.TypeSquadBlast:
		// Content fans out to the follower list over the window.
		next.ReachedUsers = int(frac * float64(m.AudienceSize))
		next.ViewsCurrent = m.ViewsBefore + next.ReachedUsers + jitter(next.ReachedUsers/4)
	case boost.TypeChainReaction:
		engagement := m.LikesBefore + m.SharesBefore
		rate := float64(engagement) / float64(maxInt(m.ViewsBefore, 1))
		next.ChainMultiplier = 1.0 + frac*(1.0+4.0*rate)
		next.ViewsCurrent = int(float64(m.ViewsBefore) * next.ChainMultiplier)
		next.ReachedUsers = next.ViewsCurrent - m.ViewsBefore
	case boost.TypeKing:
		// Climbs from the starting category rank into the top 10.
		target := 1 + rand.IntN(10)
		rank := m.RankBefore - int(frac*float64(m.RankBefore-target))
		if rank < 1 {
			rank = 1
		}
		if frac >= 1 && rank > 10 {
			rank = 10
		}
		next.RankDuring = rank
		next.ViewsCurrent = m.ViewsBefore + int(frac*float64(m.ViewsBefore)) + jitter(25)
	case boost.TypeStreamSurge:
		viewers := m.ViewsBefore + int(frac*float64(200+jitter(60)))
		if viewers < 200 && frac >= 1 {
			viewers = 200 + jitter(40)
		}
		if viewers > next.ViewersPeak {
			next.ViewersPeak = viewers
		}
		next.ViewsCurrent = maxInt(viewers, m.ViewsBefore)
	}

	growth := float64(next.ViewsCurrent-m.ViewsBefore) / float64(maxInt(m.ViewsBefore, 1))
	next.LikesCurrent = m.LikesBefore + int(growth*float64(m.LikesBefore))
	next.SharesCurrent = m.SharesBefore + int(growth*float64(m.SharesBefore))
	next.UpdatedAt = now
	return &next
}

// Summary renders the result line for the owner's notification.
func (s *BoostSimulator) Summary(b *boost.Boost, m *boost.Metrics) string {
	switch b.BoostType {
	case boost.TypeSquadBlast:
		return fmt.Sprintf("Squad Blast finished: your content reached %d followers and gained %d views",
			m.ReachedUsers, m.ViewsCurrent-m.ViewsBefore)
	case boost.TypeChainReaction:
		return fmt.Sprintf("Chain Reaction finished: %.1fx reach multiplier, %d users reached",
			m.ChainMultiplier, m.ReachedUsers)
	case boost.TypeKing:
		return fmt.Sprintf("King boost finished: your stream climbed from rank %d to rank %d in its category",
			m.RankBefore, m.RankDuring)
	case boost.TypeStreamSurge:
		return fmt.Sprintf("Stream Surge finished: peak of %d concurrent viewers", m.ViewersPeak)
	}
	return fmt.Sprintf("Boost finished: %d views gained", m.ViewsCurrent-m.ViewsBefore)
}

func jitter(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.IntN(n)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
