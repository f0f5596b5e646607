package model

import "time"

const (
	CommunityProposed = "proposed"
	CommunityOfficial = "official"

	// DefaultOfficialThreshold is the supporter count that promotes a proposed community.
	DefaultOfficialThreshold = 20
)

type Community struct {
	ID             string `gorm:"primaryKey;size:36"`
	Name           string `gorm:"size:64;not null"`
	Description    string `gorm:"type:text"`
	Icon           string `gorm:"size:32;not null"`
	CreatorID      string `gorm:"size:128;not null;index"`
	Status         string `gorm:"size:16;not null;default:proposed;index"`
	SupporterCount int    `gorm:"not null;default:0"`
	OfficializedAt *time.Time
	CreatedAt      time.Time `gorm:"index"`
	UpdatedAt      time.Time

	MemberIDs    []string `gorm:"-"`
	SupporterIDs []string `gorm:"-"`
}

// ShouldPromote reports whether the community turns official at the given supporter count.
// Only proposed communities qualify; there is no way back from official.
func (c *Community) ShouldPromote(supporters, threshold int) bool {
	return c.Status == CommunityProposed && supporters >= threshold
}

func (c *Community) IsMember(userID string) bool {
	return contains(c.MemberIDs, userID)
}

func (c *Community) IsSupporter(userID string) bool {
	return contains(c.SupporterIDs, userID)
}

type CommunityMember struct {
	ID          uint64 `gorm:"primaryKey"`
	CommunityID string `gorm:"size:36;not null;index;uniqueIndex:uk_community_user"`
	UserID      string `gorm:"size:128;not null;index;uniqueIndex:uk_community_user"`
	CreatedAt   time.Time
}

type CommunitySupporter struct {
	ID          uint64 `gorm:"primaryKey"`
	CommunityID string `gorm:"size:36;not null;index;uniqueIndex:uk_community_supporter"`
	UserID      string `gorm:"size:128;not null;uniqueIndex:uk_community_supporter"`
	CreatedAt   time.Time
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
