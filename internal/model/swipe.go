package model

import "time"

const (
	SwipeLike = "like"
	SwipePass = "pass"
)

// Swipe is one directed rating. (swiper_id, target_id) is unique: the first action wins.
type Swipe struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	SwiperID  string    `gorm:"size:128;not null;uniqueIndex:uk_swiper_target,priority:1"`
	TargetID  string    `gorm:"size:128;not null;uniqueIndex:uk_swiper_target,priority:2;index:idx_target_action,priority:1"`
	Action    string    `gorm:"size:8;not null;index:idx_target_action,priority:2"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Swipe) TableName() string {
	return "swipes"
}

func ValidSwipeAction(a string) bool {
	return a == SwipeLike || a == SwipePass
}
