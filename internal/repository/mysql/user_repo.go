package mysql

import (
	"context"

	"Synergy_Link/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

// Create inserts the user unless the id already exists. created=false means it existed.
func (r *UserRepository) Create(ctx context.Context, user *model.User) (bool, error) {
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(user)
	return res.RowsAffected == 1, res.Error
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, "id = ?", id).Error
	return &user, err
}

// ListApproved returns approved users with a completed profile, newest first.
// limit <= 0 returns all of them.
func (r *UserRepository) ListApproved(ctx context.Context, limit int) ([]model.User, error) {
	q := r.DB.WithContext(ctx).
		Where("status = ? AND profile_full_name <> ''", model.UserApproved).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var list []model.User
	err := q.Find(&list).Error
	return list, err
}

// UpdateProfile overwrites every profile column, empty values included.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, p model.Profile, oi model.OpenInnovation) error {
	res := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Select("profile_full_name", "profile_company_name", "profile_position",
			"profile_profile_image_url", "profile_bio", "profile_tags", "oi_needs", "oi_seeds").
		Updates(&model.User{Profile: p, OpenInnovation: oi})
	return r.checkUpdated(ctx, id, res)
}

func (r *UserRepository) UpdateBusinessCard(ctx context.Context, id, url string) error {
	res := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("business_card_image_url", url)
	return r.checkUpdated(ctx, id, res)
}

func (r *UserRepository) UpdateDeviceToken(ctx context.Context, id, token string) error {
	res := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("device_token", token)
	return r.checkUpdated(ctx, id, res)
}

func (r *UserRepository) checkUpdated(ctx context.Context, id string, res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// MySQL reports 0 for unchanged rows too, so confirm the row exists
		var n int64
		if err := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}
