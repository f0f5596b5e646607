package model

import "time"

const (
	UserPendingReview = "pending_review"
	UserApproved      = "approved"
	UserRejected      = "rejected"
)

type User struct {
	ID                   string         `gorm:"primaryKey;size:128"`
	Email                string         `gorm:"uniqueIndex;size:255;not null"`
	Status               string         `gorm:"size:16;not null;default:pending_review;index"`
	BusinessCardImageURL string         `gorm:"size:1024"`
	Profile              Profile        `gorm:"embedded;embeddedPrefix:profile_"`
	OpenInnovation       OpenInnovation `gorm:"embedded;embeddedPrefix:oi_"`
	DeviceToken          string         `gorm:"size:512"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Profile struct {
	FullName        string   `gorm:"size:100" json:"full_name"`
	CompanyName     string   `gorm:"size:100" json:"company_name"`
	Position        string   `gorm:"size:100" json:"position"`
	ProfileImageURL string   `gorm:"size:1024" json:"profile_image_url"`
	Bio             string   `gorm:"type:text" json:"bio"`
	Tags            []string `gorm:"serializer:json;type:text" json:"tags"`
}

type OpenInnovation struct {
	Needs string `gorm:"type:text" json:"needs"`
	Seeds string `gorm:"type:text" json:"seeds"`
}

// HasProfile reports whether the user finished profile setup.
func (u *User) HasProfile() bool {
	return u.Profile.FullName != ""
}

// DisplayName is the name shown to other users, with fallback when the profile is empty.
func (u *User) DisplayName(fallback string) string {
	if u == nil || u.Profile.FullName == "" {
		return fallback
	}
	return u.Profile.FullName
}
