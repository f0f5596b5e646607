package mysql

import (
	"context"
	"time"

	"Synergy_Link/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MatchRepository struct {
	DB *gorm.DB
}

// CreateIfAbsent inserts m keyed on its match key and returns the stored row.
// created=true only for the caller whose insert actually landed; everyone
// else gets the existing row back.
func (r *MatchRepository) CreateIfAbsent(ctx context.Context, m *model.Match) (*model.Match, bool, error) {
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(m)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return m, true, nil
	}
	stored, err := r.FindByID(ctx, m.ID)
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

// MarkNotified records that the match pushes are queued. Only the first call
// sets the timestamp.
func (r *MatchRepository) MarkNotified(ctx context.Context, id string, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&model.Match{}).
		Where("id = ? AND notified_at IS NULL", id).
		Update("notified_at", at).Error
}

func (r *MatchRepository) FindByID(ctx context.Context, id string) (*model.Match, error) {
	var m model.Match
	if err := r.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByUser returns every match userID takes part in, newest first.
func (r *MatchRepository) ListByUser(ctx context.Context, userID string) ([]model.Match, error) {
	var list []model.Match
	err := r.DB.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}
