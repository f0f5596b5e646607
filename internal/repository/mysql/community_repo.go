package mysql

import (
	"context"
	"time"

	"Synergy_Link/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommunityRepository struct {
	DB *gorm.DB
}

// SupportResult is the state after a Support call.
type SupportResult struct {
	Community *model.Community
	Added     bool // false when the user already supported it
	Promoted  bool // true only for the call that crossed the threshold
}

// Create stores the community and enrols the creator as its first member and supporter.
func (r *CommunityRepository) Create(ctx context.Context, c *model.Community) (*model.Community, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		mRepo := &CommunityMemberRepository{DB: tx}

		c.SupporterCount = 1
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		if _, err := mRepo.Join(ctx, c.ID, c.CreatorID); err != nil {
			return err
		}
		if _, err := insertSupporter(tx, c.ID, c.CreatorID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.MemberIDs = []string{c.CreatorID}
	c.SupporterIDs = []string{c.CreatorID}
	return c, nil
}

// FindByID loads the community together with its member and supporter ids.
func (r *CommunityRepository) FindByID(ctx context.Context, id string) (*model.Community, error) {
	db := r.DB.WithContext(ctx)
	var community model.Community
	if err := db.First(&community, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.CommunityMember{}).
		Where("community_id = ?", id).Order("id ASC").
		Pluck("user_id", &community.MemberIDs).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.CommunitySupporter{}).
		Where("community_id = ?", id).Order("id ASC").
		Pluck("user_id", &community.SupporterIDs).Error; err != nil {
		return nil, err
	}
	return &community, nil
}

// List pages communities newest first; status "" means any.
func (r *CommunityRepository) List(ctx context.Context, status string, offset, limit int) ([]model.Community, error) {
	q := r.DB.WithContext(ctx).Model(&model.Community{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []model.Community
	err := q.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

// Support records userID as a supporter and promotes the community once the
// supporter count reaches threshold. The community row is locked for the whole
// transaction so concurrent supporters serialise and exactly one sees Promoted.
func (r *CommunityRepository) Support(ctx context.Context, communityID, userID string, threshold int) (*SupportResult, error) {
	out := &SupportResult{}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Community
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&c, "id = ?", communityID).Error; err != nil {
			return err
		}

		added, err := insertSupporter(tx, communityID, userID)
		if err != nil {
			return err
		}
		out.Added = added
		if !added {
			out.Community = &c
			return nil
		}

		var n int64
		if err := tx.Model(&model.CommunitySupporter{}).
			Where("community_id = ?", communityID).Count(&n).Error; err != nil {
			return err
		}
		updates := map[string]any{"supporter_count": n}
		if c.ShouldPromote(int(n), threshold) {
			now := time.Now().UTC()
			updates["status"] = model.CommunityOfficial
			updates["officialized_at"] = now
			c.Status = model.CommunityOfficial
			c.OfficializedAt = &now
			out.Promoted = true
		}
		if err := tx.Model(&model.Community{}).Where("id = ?", communityID).
			Updates(updates).Error; err != nil {
			return err
		}
		c.SupporterCount = int(n)
		out.Community = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func insertSupporter(tx *gorm.DB, communityID, userID string) (bool, error) {
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "community_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&model.CommunitySupporter{CommunityID: communityID, UserID: userID})
	return res.RowsAffected == 1, res.Error
}
