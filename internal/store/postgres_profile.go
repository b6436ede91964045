package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"cliptAPI/internal/apperr"
	"cliptAPI/internal/profile"
	"cliptAPI/utils"
)

const profileColumns = `id, clerk_id, xp, level, prestige, tokens, unlocked_themes, created_at, updated_at`

func scanProfile(row pgx.Row) (*profile.Profile, error) {
	p := &profile.Profile{}
	err := row.Scan(
		&p.ID,
		&p.ClerkID,
		&p.XP,
		&p.Level,
		&p.Prestige,
		&p.Tokens,
		&p.UnlockedThemes,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Postgres) GetProfile(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, profileColumns)

	p, err := scanProfile(s.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperr.NotFoundError{Resource: "profile", Identifier: userID.String()}
		}
		return nil, &apperr.StoreError{Operation: "get profile", Err: err}
	}
	return p, nil
}

func (s *Postgres) GetProfileByClerkID(ctx context.Context, clerkID string) (*profile.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE clerk_id = $1`, profileColumns)

	p, err := scanProfile(s.db.QueryRow(ctx, query, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperr.NotFoundError{Resource: "profile", Identifier: clerkID}
		}
		return nil, &apperr.StoreError{Operation: "get profile by clerk id", Err: err}
	}
	return p, nil
}

func (s *Postgres) EnsureProfile(ctx context.Context, clerkID string) (*profile.Profile, error) {
	query := fmt.Sprintf(`
	INSERT INTO profiles (id, clerk_id, xp, level, prestige, tokens, unlocked_themes, created_at, updated_at)
	VALUES ($1, $2, 0, 0, 0, 0, '{}', NOW(), NOW())
	ON CONFLICT (clerk_id) DO UPDATE SET updated_at = profiles.updated_at
	RETURNING %s`, profileColumns)

	p, err := scanProfile(s.db.QueryRow(ctx, query, uuid.New(), clerkID))
	if err != nil {
		return nil, &apperr.StoreError{Operation: "ensure profile", Err: err}
	}
	return p, nil
}

// AwardXP adds XP and rewrites the level cache from the new total inside one
// transaction. Level is never trusted as stored state.
func (s *Postgres) AwardXP(ctx context.Context, userID uuid.UUID, amount int) (*profile.Profile, int, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, 0, &apperr.StoreError{Operation: "begin award xp", Err: err}
	}
	defer tx.Rollback(ctx)

	var newXP, prevLevel int
	err = tx.QueryRow(ctx, `
	UPDATE profiles
	SET xp = xp + $2
	WHERE id = $1
	RETURNING xp, level
	`, userID, amount).Scan(&newXP, &prevLevel)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, &apperr.NotFoundError{Resource: "profile", Identifier: userID.String()}
		}
		return nil, 0, &apperr.StoreError{Operation: "award xp", Err: err}
	}

	newLevel := utils.CalculateLevel(newXP).Level

	query := fmt.Sprintf(`
	UPDATE profiles
	SET level = $2, updated_at = NOW()
	WHERE id = $1
	RETURNING %s`, profileColumns)

	p, err := scanProfile(tx.QueryRow(ctx, query, userID, newLevel))
	if err != nil {
		return nil, 0, &apperr.StoreError{Operation: "update level cache", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, &apperr.StoreError{Operation: "commit award xp", Err: err}
	}
	return p, prevLevel, nil
}

func (s *Postgres) AwardTokens(ctx context.Context, userID uuid.UUID, amount int) (*profile.Profile, error) {
	query := fmt.Sprintf(`
	UPDATE profiles
	SET tokens = tokens + $2, updated_at = NOW()
	WHERE id = $1
	RETURNING %s`, profileColumns)

	p, err := scanProfile(s.db.QueryRow(ctx, query, userID, amount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperr.NotFoundError{Resource: "profile", Identifier: userID.String()}
		}
		return nil, &apperr.StoreError{Operation: "award tokens", Err: err}
	}
	return p, nil
}

// SpendTokens is a conditional decrement. The tokens >= $2 guard keeps the
// balance from ever going negative, also under concurrent spends.
func (s *Postgres) SpendTokens(ctx context.Context, userID uuid.UUID, amount int) (*profile.Profile, error) {
	query := fmt.Sprintf(`
	UPDATE profiles
	SET tokens = tokens - $2, updated_at = NOW()
	WHERE id = $1 AND tokens >= $2
	RETURNING %s`, profileColumns)

	p, err := scanProfile(s.db.QueryRow(ctx, query, userID, amount))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, &apperr.StoreError{Operation: "spend tokens", Err: err}
	}

	// Either the profile is missing or the balance is short.
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return nil, err
	}
	return nil, &apperr.ValidationError{Field: "tokens", Reason: fmt.Sprintf("balance below %d", amount)}
}

func (s *Postgres) Prestige(ctx context.Context, userID uuid.UUID, requiredLevel, tokenBonus int) (*profile.Profile, error) {
	query := fmt.Sprintf(`
	UPDATE profiles
	SET prestige = prestige + 1, xp = 0, level = 0, tokens = tokens + $3, updated_at = NOW()
	WHERE id = $1 AND level = $2
	RETURNING %s`, profileColumns)

	p, err := scanProfile(s.db.QueryRow(ctx, query, userID, requiredLevel, tokenBonus))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, &apperr.StoreError{Operation: "prestige", Err: err}
	}

	if _, err := s.GetProfile(ctx, userID); err != nil {
		return nil, err
	}
	return nil, &apperr.ConflictError{Resource: "profile", Reason: fmt.Sprintf("level is no longer %d", requiredLevel)}
}

func (s *Postgres) UnlockTheme(ctx context.Context, userID uuid.UUID, theme string) (*profile.Profile, error) {
	query := fmt.Sprintf(`
	UPDATE profiles
	SET unlocked_themes = array_append(unlocked_themes, $2), updated_at = NOW()
	WHERE id = $1 AND NOT ($2 = ANY(unlocked_themes))
	RETURNING %s`, profileColumns)

	p, err := scanProfile(s.db.QueryRow(ctx, query, userID, theme))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, &apperr.StoreError{Operation: "unlock theme", Err: err}
	}
	// Already unlocked (or missing profile); return current state.
	return s.GetProfile(ctx, userID)
}
