package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"cliptAPI/internal/apperr"
	"cliptAPI/internal/boost"
)

const boostColumns = `id, user_id, content_id, content_type, boost_type, cost, status, created_at, expires_at`

func scanBoost(row pgx.Row) (*boost.Boost, error) {
	b := &boost.Boost{}
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.ContentID,
		&b.ContentType,
		&b.BoostType,
		&b.Cost,
		&b.Status,
		&b.CreatedAt,
		&b.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CreateBoostCharged runs the debit, the boost insert and the baseline
// metrics insert in one transaction so a failed half never applies.
func (s *Postgres) CreateBoostCharged(ctx context.Context, b *boost.Boost, m *boost.Metrics) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return &apperr.StoreError{Operation: "begin create boost", Err: err}
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
	UPDATE profiles
	SET tokens = tokens - $2, updated_at = NOW()
	WHERE id = $1 AND tokens >= $2
	`, b.UserID, b.Cost)
	if err != nil {
		return &apperr.StoreError{Operation: "debit boost cost", Err: err}
	}
	if tag.RowsAffected() == 0 {
		var tokens int
		err := tx.QueryRow(ctx, `SELECT tokens FROM profiles WHERE id = $1`, b.UserID).Scan(&tokens)
		if errors.Is(err, pgx.ErrNoRows) {
			return &apperr.NotFoundError{Resource: "profile", Identifier: b.UserID.String()}
		}
		if err != nil {
			return &apperr.StoreError{Operation: "debit boost cost", Err: err}
		}
		return &apperr.ValidationError{
			Field:  "tokens",
			Reason: fmt.Sprintf("balance %d below boost cost %d", tokens, b.Cost),
		}
	}

	_, err = tx.Exec(ctx, fmt.Sprintf(`
	INSERT INTO boosts (%s)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, boostColumns),
		b.ID, b.UserID, b.ContentID, b.ContentType, b.BoostType,
		b.Cost, b.Status, b.CreatedAt, b.ExpiresAt)
	if err != nil {
		return &apperr.StoreError{Operation: "insert boost", Err: err}
	}

	if err := insertMetricsTx(ctx, tx, m); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return &apperr.StoreError{Operation: "commit create boost", Err: err}
	}
	return nil
}

func (s *Postgres) GetBoost(ctx context.Context, id uuid.UUID) (*boost.Boost, error) {
	query := fmt.Sprintf(`SELECT %s FROM boosts WHERE id = $1`, boostColumns)

	b, err := scanBoost(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperr.NotFoundError{Resource: "boost", Identifier: id.String()}
		}
		return nil, &apperr.StoreError{Operation: "get boost", Err: err}
	}
	return b, nil
}

func (s *Postgres) ListActiveBoosts(ctx context.Context, userID uuid.UUID) ([]*boost.Boost, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM boosts
	WHERE user_id = $1 AND status = $2
	ORDER BY created_at DESC`, boostColumns)

	rows, err := s.db.Query(ctx, query, userID, boost.StatusActive)
	if err != nil {
		return nil, &apperr.StoreError{Operation: "list active boosts", Err: err}
	}
	defer rows.Close()

	return collectBoosts(rows)
}

func (s *Postgres) ListExpiredActiveBoosts(ctx context.Context, now time.Time, limit int) ([]*boost.Boost, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM boosts
	WHERE status = $1 AND expires_at <= $2
	ORDER BY expires_at ASC
	LIMIT $3`, boostColumns)

	rows, err := s.db.Query(ctx, query, boost.StatusActive, now, limit)
	if err != nil {
		return nil, &apperr.StoreError{Operation: "list expired boosts", Err: err}
	}
	defer rows.Close()

	return collectBoosts(rows)
}

func collectBoosts(rows pgx.Rows) ([]*boost.Boost, error) {
	var boosts []*boost.Boost
	for rows.Next() {
		b, err := scanBoost(rows)
		if err != nil {
			return nil, &apperr.StoreError{Operation: "scan boost", Err: err}
		}
		boosts = append(boosts, b)
	}
	if err := rows.Err(); err != nil {
		return nil, &apperr.StoreError{Operation: "collect boosts", Err: err}
	}
	return boosts, nil
}

func (s *Postgres) ExtendBoostCharged(ctx context.Context, boostID, userID uuid.UUID, extra time.Duration, cost int) (*boost.Boost, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, &apperr.StoreError{Operation: "begin extend boost", Err: err}
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
	UPDATE profiles
	SET tokens = tokens - $2, updated_at = NOW()
	WHERE id = $1 AND tokens >= $2
	`, userID, cost)
	if err != nil {
		return nil, &apperr.StoreError{Operation: "debit extension cost", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return nil, &apperr.ValidationError{
			Field:  "tokens",
			Reason: fmt.Sprintf("balance below extension cost %d", cost),
		}
	}

	query := fmt.Sprintf(`
	UPDATE boosts
	SET expires_at = expires_at + $3
	WHERE id = $1 AND user_id = $2 AND status = $4
	RETURNING %s`, boostColumns)

	b, err := scanBoost(tx.QueryRow(ctx, query, boostID, userID, extra, boost.StatusActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperr.ConflictError{Resource: "boost", Reason: "not active or not owned by caller"}
		}
		return nil, &apperr.StoreError{Operation: "extend boost", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &apperr.StoreError{Operation: "commit extend boost", Err: err}
	}
	return b, nil
}

func (s *Postgres) CancelBoost(ctx context.Context, boostID, userID uuid.UUID) (*boost.Boost, error) {
	query := fmt.Sprintf(`
	UPDATE boosts
	SET status = $3
	WHERE id = $1 AND user_id = $2 AND status = $4
	RETURNING %s`, boostColumns)

	b, err := scanBoost(s.db.QueryRow(ctx, query, boostID, userID, boost.StatusCancelled, boost.StatusActive))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, &apperr.StoreError{Operation: "cancel boost", Err: err}
	}

	if _, err := s.GetBoost(ctx, boostID); err != nil {
		return nil, err
	}
	return nil, &apperr.ConflictError{Resource: "boost", Reason: "not active or not owned by caller"}
}

// FinalizeBoost claims the active->expired transition. RowsAffected tells us
// whether this pass won the claim; a lost claim is not an error.
func (s *Postgres) FinalizeBoost(ctx context.Context, boostID uuid.UUID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
	UPDATE boosts
	SET status = $2
	WHERE id = $1 AND status = $3
	`, boostID, boost.StatusExpired, boost.StatusActive)
	if err != nil {
		return false, &apperr.StoreError{Operation: "finalize boost", Err: err}
	}
	return tag.RowsAffected() > 0, nil
}

func insertMetricsTx(ctx context.Context, tx pgx.Tx, m *boost.Metrics) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return &apperr.StoreError{Operation: "marshal boost metrics", Err: err}
	}

	_, err = tx.Exec(ctx, `
	INSERT INTO boost_metrics (boost_id, metrics, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (boost_id) DO UPDATE SET metrics = EXCLUDED.metrics, updated_at = NOW()
	`, m.BoostID, payload)
	if err != nil {
		return &apperr.StoreError{Operation: "insert boost metrics", Err: err}
	}
	return nil
}

func (s *Postgres) SaveBoostMetrics(ctx context.Context, m *boost.Metrics) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return &apperr.StoreError{Operation: "marshal boost metrics", Err: err}
	}

	_, err = s.db.Exec(ctx, `
	INSERT INTO boost_metrics (boost_id, metrics, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (boost_id) DO UPDATE SET metrics = EXCLUDED.metrics, updated_at = NOW()
	`, m.BoostID, payload)
	if err != nil {
		return &apperr.StoreError{Operation: "save boost metrics", Err: err}
	}
	return nil
}

func (s *Postgres) GetBoostMetrics(ctx context.Context, boostID uuid.UUID) (*boost.Metrics, error) {
	var payload []byte
	var updatedAt time.Time
	err := s.db.QueryRow(ctx,
		`SELECT metrics, updated_at FROM boost_metrics WHERE boost_id = $1`, boostID).
		Scan(&payload, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperr.NotFoundError{Resource: "boost metrics", Identifier: boostID.String()}
		}
		return nil, &apperr.StoreError{Operation: "get boost metrics", Err: err}
	}

	m := &boost.Metrics{}
	if err := json.Unmarshal(payload, m); err != nil {
		return nil, &apperr.StoreError{Operation: "unmarshal boost metrics", Err: err}
	}
	m.BoostID = boostID
	m.UpdatedAt = updatedAt
	return m, nil
}

// GetContentStats reads the real engagement counters of the boosted content.
// The simulator synthesizes a baseline when the row is missing.
func (s *Postgres) GetContentStats(ctx context.Context, userID, contentID uuid.UUID, contentType boost.ContentType) (*boost.ContentStats, error) {
	stats := &boost.ContentStats{}

	var query string
	switch contentType {
	case boost.ContentStream:
		query = `SELECT viewer_count, like_count, share_count FROM streams WHERE id = $1`
	default:
		query = `SELECT view_count, like_count, share_count FROM posts WHERE id = $1`
	}

	err := s.db.QueryRow(ctx, query, contentID).Scan(&stats.Views, &stats.Likes, &stats.Shares)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperr.NotFoundError{Resource: string(contentType), Identifier: contentID.String()}
		}
		return nil, &apperr.StoreError{Operation: "get content stats", Err: err}
	}

	err = s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM follows WHERE followed_id = $1`, userID).Scan(&stats.Followers)
	if err != nil {
		return nil, &apperr.StoreError{Operation: "count followers", Err: err}
	}
	return stats, nil
}
