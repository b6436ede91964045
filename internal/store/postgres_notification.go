package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"cliptAPI/internal/apperr"
	"cliptAPI/internal/notification"
)

func (s *Postgres) InsertNotification(ctx context.Context, n *notification.Notification) error {
	_, err := s.db.Exec(ctx, `
	INSERT INTO notifications (id, user_id, type, title, message, reference_id, reference_type, read, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, n.ID, n.UserID, n.Kind, n.Title, n.Message, n.ReferenceID, n.ReferenceType, n.Read, n.CreatedAt)
	if err != nil {
		return &apperr.StoreError{Operation: "insert notification", Err: err}
	}
	return nil
}

func (s *Postgres) ListNotifications(ctx context.Context, userID uuid.UUID, page, pageSize int, unreadOnly bool) (*notification.ListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := `
	SELECT id, user_id, type, title, message, reference_id, reference_type, read, created_at
	FROM notifications
	WHERE user_id = $1
	`
	if unreadOnly {
		query += " AND read = false"
	}
	query += `
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3
	`

	rows, err := s.db.Query(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, &apperr.StoreError{Operation: "list notifications", Err: err}
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		n := &notification.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Message,
			&n.ReferenceID, &n.ReferenceType, &n.Read, &n.CreatedAt); err != nil {
			return nil, &apperr.StoreError{Operation: "scan notification", Err: err}
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, &apperr.StoreError{Operation: "list notifications", Err: err}
	}

	var unreadCount, totalCount int
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE read = false), COUNT(*) FROM notifications WHERE user_id = $1`,
		userID).Scan(&unreadCount, &totalCount); err != nil {
		return nil, &apperr.StoreError{Operation: "count notifications", Err: err}
	}

	return &notification.ListResponse{
		Notifications: notifications,
		UnreadCount:   unreadCount,
		TotalCount:    totalCount,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

func (s *Postgres) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
	UPDATE notifications
	SET read = true
	WHERE id = $1 AND user_id = $2 AND read = false
	`, id, userID)
	if err != nil {
		return &apperr.StoreError{Operation: "mark notification read", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &apperr.NotFoundError{Resource: "unread notification", Identifier: id.String()}
	}
	return nil
}

func (s *Postgres) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE notifications SET read = true WHERE user_id = $1 AND read = false`, userID)
	if err != nil {
		return &apperr.StoreError{Operation: "mark all notifications read", Err: err}
	}
	return nil
}

func (s *Postgres) RegisterDeviceToken(ctx context.Context, userID uuid.UUID, token, platform string) error {
	_, err := s.db.Exec(ctx, `
	INSERT INTO device_tokens (user_id, token, platform, created_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (user_id, token) DO UPDATE SET platform = EXCLUDED.platform
	`, userID, token, platform)
	if err != nil {
		return &apperr.StoreError{Operation: "register device token", Err: err}
	}
	return nil
}

func (s *Postgres) ListDeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx,
		`SELECT token, platform FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, &apperr.StoreError{Operation: "list device tokens", Err: err}
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, &apperr.StoreError{Operation: "scan device token", Err: err}
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &apperr.StoreError{Operation: "list device tokens", Err: err}
	}
	return tokens, nil
}
