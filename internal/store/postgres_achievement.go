package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"cliptAPI/internal/achievement"
	"cliptAPI/internal/apperr"
	"cliptAPI/utils"
)

func (s *Postgres) ListAchievements(ctx context.Context) ([]*achievement.Definition, error) {
	query := `
	SELECT id, name, description, category, target_value, xp_reward, token_reward
	FROM achievements
	ORDER BY category, id
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, &apperr.StoreError{Operation: "list achievements", Err: err}
	}
	defer rows.Close()

	var defs []*achievement.Definition
	for rows.Next() {
		def := &achievement.Definition{}
		if err := rows.Scan(&def.ID, &def.Name, &def.Description, &def.Category,
			&def.TargetValue, &def.XPReward, &def.TokenReward); err != nil {
			return nil, &apperr.StoreError{Operation: "scan achievement", Err: err}
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, &apperr.StoreError{Operation: "list achievements", Err: err}
	}
	return defs, nil
}

func (s *Postgres) GetAchievement(ctx context.Context, id string) (*achievement.Definition, error) {
	query := `
	SELECT id, name, description, category, target_value, xp_reward, token_reward
	FROM achievements
	WHERE id = $1
	`

	def := &achievement.Definition{}
	err := s.db.QueryRow(ctx, query, id).Scan(&def.ID, &def.Name, &def.Description,
		&def.Category, &def.TargetValue, &def.XPReward, &def.TokenReward)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperr.NotFoundError{Resource: "achievement", Identifier: id}
		}
		return nil, &apperr.StoreError{Operation: "get achievement", Err: err}
	}
	return def, nil
}

func (s *Postgres) ListAchievementsWithProgress(ctx context.Context, userID uuid.UUID) ([]*achievement.WithProgress, error) {
	query := `
	SELECT a.id, a.name, a.description, a.category, a.target_value, a.xp_reward, a.token_reward,
	       COALESCE(ap.current_value, 0), COALESCE(ap.completed, false)
	FROM achievements a
	LEFT JOIN achievement_progress ap ON a.id = ap.achievement_id AND ap.user_id = $1
	ORDER BY a.category, a.id
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, &apperr.StoreError{Operation: "list achievement progress", Err: err}
	}
	defer rows.Close()

	var result []*achievement.WithProgress
	for rows.Next() {
		wp := &achievement.WithProgress{}
		if err := rows.Scan(&wp.ID, &wp.Name, &wp.Description, &wp.Category,
			&wp.TargetValue, &wp.XPReward, &wp.TokenReward,
			&wp.CurrentValue, &wp.Completed); err != nil {
			return nil, &apperr.StoreError{Operation: "scan achievement progress", Err: err}
		}
		result = append(result, wp)
	}
	if err := rows.Err(); err != nil {
		return nil, &apperr.StoreError{Operation: "list achievement progress", Err: err}
	}
	return result, nil
}

func (s *Postgres) GetAchievementProgress(ctx context.Context, userID uuid.UUID, achievementID string) (*achievement.Progress, error) {
	query := `
	SELECT user_id, achievement_id, current_value, completed, created_at, updated_at
	FROM achievement_progress
	WHERE user_id = $1 AND achievement_id = $2
	`

	p := &achievement.Progress{}
	err := s.db.QueryRow(ctx, query, userID, achievementID).Scan(
		&p.UserID, &p.AchievementID, &p.CurrentValue, &p.Completed, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperr.NotFoundError{
				Resource:   "achievement progress",
				Identifier: fmt.Sprintf("%s/%s", userID, achievementID),
			}
		}
		return nil, &apperr.StoreError{Operation: "get achievement progress", Err: err}
	}
	return p, nil
}

// ApplyAchievementProgress does the whole progress write in one transaction:
// monotonic value raise, completion claim guarded by completed = false, and
// the reward grant. Concurrent threshold-crossing calls race on the guard;
// exactly one of them grants.
func (s *Postgres) ApplyAchievementProgress(ctx context.Context, userID uuid.UUID, def *achievement.Definition, newValue float64) (*achievement.ApplyResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, &apperr.StoreError{Operation: "begin apply progress", Err: err}
	}
	defer tx.Rollback(ctx)

	result := &achievement.ApplyResult{}
	p := &result.Progress

	err = tx.QueryRow(ctx, `
	INSERT INTO achievement_progress (user_id, achievement_id, current_value, completed, created_at, updated_at)
	VALUES ($1, $2, $3, false, NOW(), NOW())
	ON CONFLICT (user_id, achievement_id) DO UPDATE
	SET current_value = GREATEST(achievement_progress.current_value, EXCLUDED.current_value),
	    updated_at = NOW()
	RETURNING user_id, achievement_id, current_value, completed, created_at, updated_at
	`, userID, def.ID, newValue).Scan(
		&p.UserID, &p.AchievementID, &p.CurrentValue, &p.Completed, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, &apperr.StoreError{Operation: "upsert achievement progress", Err: err}
	}

	if p.Completed || p.CurrentValue < def.TargetValue {
		if err := tx.Commit(ctx); err != nil {
			return nil, &apperr.StoreError{Operation: "commit apply progress", Err: err}
		}
		return result, nil
	}

	// Claim completion. A concurrent transaction may have claimed it
	// between the upsert and here; the guard makes that a no-op for us.
	tag, err := tx.Exec(ctx, `
	UPDATE achievement_progress
	SET completed = true, updated_at = NOW()
	WHERE user_id = $1 AND achievement_id = $2 AND completed = false
	`, userID, def.ID)
	if err != nil {
		return nil, &apperr.StoreError{Operation: "claim achievement completion", Err: err}
	}
	if tag.RowsAffected() == 0 {
		p.Completed = true
		if err := tx.Commit(ctx); err != nil {
			return nil, &apperr.StoreError{Operation: "commit apply progress", Err: err}
		}
		return result, nil
	}

	p.Completed = true
	result.CompletedNow = true

	// Grant rewards inside the same transaction as the claim.
	var newXP int
	err = tx.QueryRow(ctx, `
	UPDATE profiles
	SET xp = xp + $2, tokens = tokens + $3
	WHERE id = $1
	RETURNING xp, level
	`, userID, def.XPReward, def.TokenReward).Scan(&newXP, &result.PrevLevel)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperr.NotFoundError{Resource: "profile", Identifier: userID.String()}
		}
		return nil, &apperr.StoreError{Operation: "grant achievement reward", Err: err}
	}

	result.NewLevel = utils.CalculateLevel(newXP).Level
	_, err = tx.Exec(ctx, `UPDATE profiles SET level = $2, updated_at = NOW() WHERE id = $1`,
		userID, result.NewLevel)
	if err != nil {
		return nil, &apperr.StoreError{Operation: "update level cache", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &apperr.StoreError{Operation: "commit apply progress", Err: err}
	}
	return result, nil
}
