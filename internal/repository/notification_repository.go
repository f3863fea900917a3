package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// NotificationRepository encapsulates in-app notification persistence.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	metadata, err := json.Marshal(notification.Metadata)
	if err != nil {
		return fmt.Errorf("encode notification metadata: %w", err)
	}

	const query = `
        INSERT INTO notifications (id, recipient_id, type, title, description, link, metadata)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		notification.ID,
		notification.RecipientID,
		notification.Type,
		notification.Title,
		notification.Description,
		notification.Link,
		metadata,
	).Scan(&notification.CreatedAt)
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
        SELECT id, recipient_id, type, title, description, link, metadata, read_at, created_at
        FROM notifications
        WHERE recipient_id=$1
        ORDER BY created_at DESC
        LIMIT %d OFFSET %d`, limit, offset)

	rows, err := r.pool.Query(ctx, query, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var (
			n           domain.Notification
			metadataRaw []byte
		)
		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.Type,
			&n.Title,
			&n.Description,
			&n.Link,
			&metadataRaw,
			&n.ReadAt,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(metadataRaw) > 0 {
			if err := json.Unmarshal(metadataRaw, &n.Metadata); err != nil {
				return nil, fmt.Errorf("decode notification metadata: %w", err)
			}
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
