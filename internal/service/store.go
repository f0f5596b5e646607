package service

import (
	"context"
	"errors"
	"time"

	"Synergy_Link/internal/model"
	"Synergy_Link/internal/pkg"
	"Synergy_Link/internal/repository/mysql"

	"gorm.io/gorm"
)

// Storage ports. The mysql repositories satisfy these; tests use in-memory fakes.

type UserStore interface {
	Create(ctx context.Context, user *model.User) (bool, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	ListApproved(ctx context.Context, limit int) ([]model.User, error)
	UpdateProfile(ctx context.Context, id string, p model.Profile, oi model.OpenInnovation) error
	UpdateBusinessCard(ctx context.Context, id, url string) error
	UpdateDeviceToken(ctx context.Context, id, token string) error
}

type SwipeStore interface {
	Record(ctx context.Context, s *model.Swipe) (bool, error)
	Find(ctx context.Context, swiperID, targetID string) (*model.Swipe, error)
	HasLiked(ctx context.Context, fromID, toID string) (bool, error)
	SwipedTargets(ctx context.Context, swiperID string) ([]string, error)
}

type MatchStore interface {
	CreateIfAbsent(ctx context.Context, m *model.Match) (*model.Match, bool, error)
	MarkNotified(ctx context.Context, id string, at time.Time) error
	FindByID(ctx context.Context, id string) (*model.Match, error)
	ListByUser(ctx context.Context, userID string) ([]model.Match, error)
}

type MessageStore interface {
	Create(ctx context.Context, msg *model.ChatMessage) error
	ListByMatch(ctx context.Context, matchID string, limit int) ([]model.ChatMessage, error)
}

type CommunityStore interface {
	Create(ctx context.Context, c *model.Community) (*model.Community, error)
	FindByID(ctx context.Context, id string) (*model.Community, error)
	List(ctx context.Context, status string, offset, limit int) ([]model.Community, error)
	Support(ctx context.Context, communityID, userID string, threshold int) (*mysql.SupportResult, error)
}

type MemberStore interface {
	Join(ctx context.Context, communityID, userID string) (bool, error)
	Leave(ctx context.Context, communityID, userID string) error
}

type OutboxStore interface {
	Insert(ctx context.Context, ob *model.PushOutbox) error
	List(ctx context.Context, batchSize, maxRetry int) ([]model.PushOutbox, error)
	RetryUpdate(ctx context.Context, id uint64) error
	SuccessUpdate(ctx context.Context, id uint64) error
}

// ImageUploader stores an object and returns the URL clients load it from.
type ImageUploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ThreadBus carries "thread changed" signals between writers and subscribers.
type ThreadBus interface {
	Publish(ctx context.Context, matchID string) error
	Watch(ctx context.Context, matchID string) (<-chan struct{}, func() error, error)
}

// storeErr maps a repository error onto the core error kinds.
func storeErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkg.NotFound(what + " not found")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkg.Conflict(what+" already exists", err)
	}
	return pkg.Transport(what+" store failed", err)
}
