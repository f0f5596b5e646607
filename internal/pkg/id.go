package pkg

import (
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// NewID returns a random UUID string.
func NewID() string {
	return uuid.NewString()
}

// NewSortableID returns a KSUID. KSUIDs order by their second-resolution
// timestamp; within one second the order is random.
func NewSortableID() string {
	return ksuid.New().String()
}
