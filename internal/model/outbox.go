package model

import "time"

const (
	OutboxPending int8 = 0
	OutboxSent    int8 = 1
	OutboxFailed  int8 = 2
)

// PushOutbox is a queued push notification waiting for the relayer.
// DedupKey names the event and recipient, so queueing the same push twice is a no-op.
type PushOutbox struct {
	ID          uint64 `gorm:"primaryKey"`
	DedupKey    string `gorm:"size:512;not null;uniqueIndex"`
	EventType   string `gorm:"size:16;not null"` // match / message
	RecipientID string `gorm:"size:128;not null"`
	Token       string `gorm:"size:512;not null"`
	Payload     string `gorm:"type:json;not null"`
	Status      int8   `gorm:"not null;default:0;index;comment:'0=pending,1=sent,2=failed'"`
	Retry       int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (PushOutbox) TableName() string { return "push_outbox" }
