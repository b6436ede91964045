package boost

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecTable(t *testing.T) {
	cases := []struct {
		boostType Type
		duration  time.Duration
		cost      int
	}{
		{TypeSquadBlast, 24 * time.Hour, 40},
		{TypeChainReaction, 6 * time.Hour, 60},
		{TypeKing, 2 * time.Hour, 80},
		{TypeStreamSurge, 30 * time.Minute, 50},
	}

	for _, c := range cases {
		spec, ok := SpecFor(c.boostType)
		require.True(t, ok, "%s", c.boostType)
		assert.Equal(t, c.duration, spec.Duration, "%s duration", c.boostType)
		assert.Equal(t, c.cost, spec.Cost, "%s cost", c.boostType)
	}

	_, ok := SpecFor(Type("mega_blast"))
	assert.False(t, ok)
}

func TestStreamOnlyTypes(t *testing.T) {
	for boostType, streamOnly := range map[Type]bool{
		TypeSquadBlast:    false,
		TypeChainReaction: false,
		TypeKing:          true,
		TypeStreamSurge:   true,
	} {
		spec, _ := SpecFor(boostType)
		assert.Equal(t, streamOnly, spec.StreamOnly, "%s", boostType)
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()
	b := &Boost{CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	assert.False(t, b.Expired(now))
	assert.True(t, b.Expired(now.Add(time.Hour)))
	assert.True(t, b.Expired(now.Add(2*time.Hour)))
}
