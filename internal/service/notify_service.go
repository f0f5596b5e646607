package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"Synergy_Link/internal/model"
	"Synergy_Link/internal/pkg"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	PushTitle          = "Synergy Link"
	PushTypeMatch      = "match"
	PushTypeMessage    = "message"
	matchChannel       = "matches"
	messageChannel     = "messages"
	defaultSenderName  = "Someone"
	matchBody          = "You have a new match!"
	messageBodyPattern = "New message from %s"
)

// Notifier is invoked after a match or message has been written.
type Notifier interface {
	MatchCreated(ctx context.Context, m *model.Match) error
	MessageCreated(ctx context.Context, m *model.Match, msg *model.ChatMessage) error
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) MatchCreated(context.Context, *model.Match) error { return nil }

func (NopNotifier) MessageCreated(context.Context, *model.Match, *model.ChatMessage) error {
	return nil
}

// PushMessage is one device notification, shaped for the push gateway.
// Key identifies the event and recipient and never leaves the service.
type PushMessage struct {
	Key         string            `json:"-"`
	RecipientID string            `json:"recipient_id"`
	Token       string            `json:"token"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Icon        string            `json:"icon"`
	Sound       string            `json:"sound"`
	ChannelID   string            `json:"android_channel_id"`
	Priority    string            `json:"android_priority"`
	Badge       int               `json:"apns_badge"`
	Data        map[string]string `json:"data"`
}

type Dispatcher interface {
	Dispatch(ctx context.Context, msg PushMessage) error
}

// PushNotifier turns match and message events into device pushes.
type PushNotifier struct {
	users      UserStore
	dispatcher Dispatcher
	log        *zap.Logger
}

func NewPushNotifier(users UserStore, d Dispatcher, log *zap.Logger) *PushNotifier {
	return &PushNotifier{users: users, dispatcher: d, log: log}
}

func (n *PushNotifier) MatchCreated(ctx context.Context, m *model.Match) error {
	a, b, err := n.pair(ctx, m.UserAID, m.UserBID)
	if err != nil {
		return err
	}
	if a == nil || b == nil {
		n.log.Warn("match participant missing, push skipped", zap.String("match_id", m.ID))
		return nil
	}
	var errs []error
	for _, u := range []*model.User{a, b} {
		if u.DeviceToken == "" {
			continue
		}
		key := "match:" + m.ID + ":" + u.ID
		msg := newPush(key, u, matchBody, matchChannel, map[string]string{
			"type":    PushTypeMatch,
			"matchId": m.ID,
			"screen":  "ChatList",
		})
		if err := n.dispatcher.Dispatch(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *PushNotifier) MessageCreated(ctx context.Context, m *model.Match, msg *model.ChatMessage) error {
	recipientID, ok := m.OtherUserID(msg.SenderID)
	if !ok {
		n.log.Warn("sender not in match, push skipped",
			zap.String("match_id", m.ID), zap.String("sender_id", msg.SenderID))
		return nil
	}
	recipient, sender, err := n.pair(ctx, recipientID, msg.SenderID)
	if err != nil {
		return err
	}
	if recipient == nil || sender == nil {
		n.log.Warn("message participant missing, push skipped", zap.String("match_id", m.ID))
		return nil
	}
	if recipient.DeviceToken == "" {
		return nil
	}
	body := fmt.Sprintf(messageBodyPattern, sender.DisplayName(defaultSenderName))
	return n.dispatcher.Dispatch(ctx, newPush("message:"+msg.ID, recipient, body, messageChannel, map[string]string{
		"type":     PushTypeMessage,
		"matchId":  m.ID,
		"senderId": msg.SenderID,
		"screen":   "Chat",
	}))
}

// pair loads two users; a missing user comes back nil, not as an error.
func (n *PushNotifier) pair(ctx context.Context, firstID, secondID string) (*model.User, *model.User, error) {
	first, err := n.lookup(ctx, firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := n.lookup(ctx, secondID)
	if err != nil {
		return nil, nil, err
	}
	return first, second, nil
}

func (n *PushNotifier) lookup(ctx context.Context, id string) (*model.User, error) {
	u, err := n.users.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkg.Transport("load push recipient", err)
	}
	return u, nil
}

func newPush(key string, to *model.User, body, channel string, data map[string]string) PushMessage {
	return PushMessage{
		Key:         key,
		RecipientID: to.ID,
		Token:       to.DeviceToken,
		Title:       PushTitle,
		Body:        body,
		Icon:        "ic_notification",
		Sound:       "default",
		ChannelID:   channel,
		Priority:    "high",
		Badge:       1,
		Data:        data,
	}
}

// OutboxDispatcher queues pushes in the outbox table for the relayer.
type OutboxDispatcher struct {
	repo    OutboxStore
	metrics *pkg.Metrics
}

func NewOutboxDispatcher(repo OutboxStore, metrics *pkg.Metrics) *OutboxDispatcher {
	return &OutboxDispatcher{repo: repo, metrics: metrics}
}

func (d *OutboxDispatcher) Dispatch(ctx context.Context, msg PushMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := d.repo.Insert(ctx, &model.PushOutbox{
		DedupKey:    msg.Key,
		EventType:   msg.Data["type"],
		RecipientID: msg.RecipientID,
		Token:       msg.Token,
		Payload:     string(payload),
		Status:      model.OutboxPending,
	}); err != nil {
		return pkg.Transport("queue push", err)
	}
	d.metrics.PushQueued(msg.Data["type"])
	return nil
}
