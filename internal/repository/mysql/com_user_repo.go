package mysql

import (
	"context"

	"Synergy_Link/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommunityMemberRepository struct {
	DB *gorm.DB
}

// Join is idempotent on (community_id, user_id); joined=false means already a member.
func (r *CommunityMemberRepository) Join(ctx context.Context, communityID, userID string) (bool, error) {
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "community_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&model.CommunityMember{CommunityID: communityID, UserID: userID})
	return res.RowsAffected == 1, res.Error
}

func (r *CommunityMemberRepository) Leave(ctx context.Context, communityID, userID string) error {
	return r.DB.WithContext(ctx).Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&model.CommunityMember{}).Error
}
