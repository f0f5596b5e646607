package mysql

import (
	"context"

	"Synergy_Link/internal/model"

	"gorm.io/gorm"
)

type MessageRepository struct {
	DB *gorm.DB
}

func (r *MessageRepository) Create(ctx context.Context, msg *model.ChatMessage) error {
	return r.DB.WithContext(ctx).Create(msg).Error
}

// ListByMatch returns the thread newest first. created_at carries sub-second
// precision; id only makes the order stable for rows with equal timestamps and
// says nothing about which of them was written first.
func (r *MessageRepository) ListByMatch(ctx context.Context, matchID string, limit int) ([]model.ChatMessage, error) {
	q := r.DB.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var list []model.ChatMessage
	err := q.Find(&list).Error
	return list, err
}
