package boost

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeSquadBlast    Type = "squad_blast"
	TypeChainReaction Type = "chain_reaction"
	TypeKing          Type = "king"
	TypeStreamSurge   Type = "stream_surge"
)

type ContentType string

const (
	ContentPost   ContentType = "post"
	ContentStream ContentType = "stream"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Spec describes a boost type's fixed pricing and duration.
type Spec struct {
	Duration time.Duration
	Cost     int
	// StreamOnly boosts act on live stream audiences and cannot be
	// applied to posts.
	StreamOnly bool
}

var specs = map[Type]Spec{
	TypeSquadBlast:    {Duration: 24 * time.Hour, Cost: 40},
	TypeChainReaction: {Duration: 6 * time.Hour, Cost: 60},
	TypeKing:          {Duration: 2 * time.Hour, Cost: 80, StreamOnly: true},
	TypeStreamSurge:   {Duration: 30 * time.Minute, Cost: 50, StreamOnly: true},
}

func SpecFor(t Type) (Spec, bool) {
	s, ok := specs[t]
	return s, ok
}

func (t Type) Valid() bool {
	_, ok := specs[t]
	return ok
}

func (c ContentType) Valid() bool {
	return c == ContentPost || c == ContentStream
}

type Boost struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"userId"`
	ContentID   uuid.UUID   `json:"contentId"`
	ContentType ContentType `json:"contentType"`
	BoostType   Type        `json:"boostType"`
	Cost        int         `json:"cost"`
	Status      Status      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	ExpiresAt   time.Time   `json:"expiresAt"`
}

func (b *Boost) Expired(now time.Time) bool {
	return !b.ExpiresAt.After(now)
}

// Metrics is the simulated engagement snapshot stored 1:1 with a boost.
// Baseline fields are written once at creation; the rest are refreshed over
// the boost's lifetime. This is a demo layer, not real analytics.
type Metrics struct {
	BoostID       uuid.UUID `json:"boostId"`
	ViewsBefore   int       `json:"viewsBefore"`
	LikesBefore   int       `json:"likesBefore"`
	SharesBefore  int       `json:"sharesBefore"`
	ViewsCurrent  int       `json:"viewsCurrent"`
	LikesCurrent  int       `json:"likesCurrent"`
	SharesCurrent int       `json:"sharesCurrent"`

	// Type-specific derived fields; zero-valued when not applicable.
	AudienceSize    int     `json:"audienceSize,omitempty"`
	ReachedUsers    int     `json:"reachedUsers,omitempty"`
	ChainMultiplier float64 `json:"chainMultiplier,omitempty"`
	RankBefore      int     `json:"rankBefore,omitempty"`
	RankDuring      int     `json:"rankDuring,omitempty"`
	ViewersPeak     int     `json:"viewersPeak,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// ContentStats are the real counters read from the boosted content row.
type ContentStats struct {
	Views     int `json:"views"`
	Likes     int `json:"likes"`
	Shares    int `json:"shares"`
	Followers int `json:"followers"`
}
