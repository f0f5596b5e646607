package model

import (
	"strings"
	"time"
)

// Match is an unordered pair. ID is MatchKey(UserAID, UserBID) and UserAID < UserBID.
// NotifiedAt stays nil until both participants' pushes are queued.
type Match struct {
	ID         string    `gorm:"primaryKey;size:257"`
	UserAID    string    `gorm:"size:128;not null;index"`
	UserBID    string    `gorm:"size:128;not null;index"`
	CreatedAt  time.Time `gorm:"not null;index"`
	NotifiedAt *time.Time
}

// MatchKey is the natural key of the unordered pair {a, b}.
func MatchKey(a, b string) string {
	lo, hi := SortPair(a, b)
	return lo + ":" + hi
}

func SortPair(a, b string) (string, string) {
	if strings.Compare(a, b) > 0 {
		return b, a
	}
	return a, b
}

// NewMatch builds the canonical record for the pair.
func NewMatch(a, b string, at time.Time) *Match {
	lo, hi := SortPair(a, b)
	return &Match{ID: lo + ":" + hi, UserAID: lo, UserBID: hi, CreatedAt: at}
}

// SamePair reports whether o joins the same two users as m. Ids may contain
// ':' so two different pairs can share a key.
func (m *Match) SamePair(o *Match) bool {
	return m.UserAID == o.UserAID && m.UserBID == o.UserBID
}

func (m *Match) HasUser(userID string) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// OtherUserID returns the partner of userID, false if userID is not in the pair.
func (m *Match) OtherUserID(userID string) (string, bool) {
	switch userID {
	case m.UserAID:
		return m.UserBID, true
	case m.UserBID:
		return m.UserAID, true
	}
	return "", false
}

type ChatMessage struct {
	ID           string    `gorm:"primaryKey;size:27"`
	MatchID      string    `gorm:"size:257;not null;index:idx_match_time,priority:1"`
	SenderID     string    `gorm:"size:128;not null"`
	SenderName   string    `gorm:"size:100"`
	SenderAvatar string    `gorm:"size:1024"`
	Text         string    `gorm:"type:text;not null"`
	CreatedAt    time.Time `gorm:"not null;index:idx_match_time,priority:2"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
