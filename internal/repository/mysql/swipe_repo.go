package mysql

import (
	"context"
	"errors"

	"Synergy_Link/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SwipeRepository struct {
	DB *gorm.DB
}

// Record inserts the swipe. The first swipe on a (swiper, target) pair is
// final; a repeat returns inserted=false and leaves the stored row as is.
func (r *SwipeRepository) Record(ctx context.Context, s *model.Swipe) (bool, error) {
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "swiper_id"}, {Name: "target_id"}},
		DoNothing: true,
	}).Create(s)
	return res.RowsAffected == 1, res.Error
}

// Find returns the stored swipe of swiperID on targetID.
func (r *SwipeRepository) Find(ctx context.Context, swiperID, targetID string) (*model.Swipe, error) {
	var s model.Swipe
	err := r.DB.WithContext(ctx).
		Where("swiper_id = ? AND target_id = ?", swiperID, targetID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// HasLiked reports whether fromID has a like recorded on toID.
func (r *SwipeRepository) HasLiked(ctx context.Context, fromID, toID string) (bool, error) {
	var s model.Swipe
	err := r.DB.WithContext(ctx).Select("id").
		Where("swiper_id = ? AND target_id = ? AND action = ?", fromID, toID, model.SwipeLike).
		Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *SwipeRepository) SwipedTargets(ctx context.Context, swiperID string) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.Swipe{}).
		Where("swiper_id = ?", swiperID).
		Pluck("target_id", &ids).Error
	return ids, err
}
