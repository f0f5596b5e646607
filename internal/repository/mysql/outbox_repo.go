package mysql

import (
	"context"

	"Synergy_Link/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OutboxRepository struct {
	DB *gorm.DB
}

// Insert queues ob unless a row with the same dedup key exists.
func (r *OutboxRepository) Insert(ctx context.Context, ob *model.PushOutbox) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoNothing: true,
	}).Create(ob).Error
}

// List returns pending rows plus failed rows still under maxRetry, oldest first.
func (r *OutboxRepository) List(ctx context.Context, batchSize, maxRetry int) ([]model.PushOutbox, error) {
	var list []model.PushOutbox
	if err := r.DB.WithContext(ctx).
		Where("status = ? OR (status = ? AND retry < ?)", model.OutboxPending, model.OutboxFailed, maxRetry).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// RetryUpdate marks a failed send and bumps its retry counter.
func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.PushOutbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
}

func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.PushOutbox{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}
