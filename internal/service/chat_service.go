package service

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"Synergy_Link/internal/model"
	"Synergy_Link/internal/pkg"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	MaxMessageLength = 2000
	partnerLookups   = 8
)

type MatchSummary struct {
	MatchID   string      `json:"matchId"`
	Partner   *model.User `json:"partner"`
	CreatedAt time.Time   `json:"createdAt"`
}

// ChatService exposes matches and their message threads.
type ChatService struct {
	matches  MatchStore
	messages MessageStore
	users    UserStore
	bus      ThreadBus
	notifier Notifier
	log      *zap.Logger
	metrics  *pkg.Metrics
	now      func() time.Time
}

func NewChatService(matches MatchStore, messages MessageStore, users UserStore, bus ThreadBus, notifier Notifier, log *zap.Logger, metrics *pkg.Metrics) *ChatService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if bus == nil {
		bus = NewLocalThreadBus()
	}
	return &ChatService{
		matches:  matches,
		messages: messages,
		users:    users,
		bus:      bus,
		notifier: notifier,
		log:      log,
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListMatches returns userID's matches newest first with the partner resolved.
// A match whose partner cannot be loaded is left out.
func (s *ChatService) ListMatches(ctx context.Context, userID string) ([]MatchSummary, error) {
	if userID == "" {
		return nil, pkg.Unauthenticated("sign in required")
	}
	list, err := s.matches.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkg.Transport("list matches", err)
	}

	resolved := make([]*MatchSummary, len(list))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(partnerLookups)
	for i := range list {
		m := list[i]
		g.Go(func() error {
			partnerID, ok := m.OtherUserID(userID)
			if !ok {
				return nil
			}
			partner, err := s.users.FindByID(gctx, partnerID)
			if err != nil {
				s.log.Warn("match partner unavailable",
					zap.String("match_id", m.ID), zap.String("partner_id", partnerID), zap.Error(err))
				return nil
			}
			resolved[i] = &MatchSummary{MatchID: m.ID, Partner: partner, CreatedAt: m.CreatedAt}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, pkg.Transport("list matches", err)
	}

	out := make([]MatchSummary, 0, len(list))
	for _, ms := range resolved {
		if ms != nil {
			out = append(out, *ms)
		}
	}
	return out, nil
}

// GetMatch returns the match if userID takes part in it.
func (s *ChatService) GetMatch(ctx context.Context, matchID, userID string) (*model.Match, error) {
	if userID == "" {
		return nil, pkg.Unauthenticated("sign in required")
	}
	if matchID == "" {
		return nil, pkg.Invalid("match id is required")
	}
	m, err := s.matches.FindByID(ctx, matchID)
	if err != nil {
		return nil, storeErr(err, "match")
	}
	if !m.HasUser(userID) {
		return nil, pkg.Forbidden("not a participant of this match")
	}
	return m, nil
}

// SendMessage appends a message to the thread and notifies the partner.
func (s *ChatService) SendMessage(ctx context.Context, matchID, senderID, text string) (*model.ChatMessage, error) {
	if senderID == "" {
		return nil, pkg.Unauthenticated("sign in required")
	}
	text = pkg.CleanText(text)
	if text == "" {
		return nil, pkg.Invalid("message text is required")
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return nil, pkg.Invalid("message is too long")
	}
	m, err := s.GetMatch(ctx, matchID, senderID)
	if err != nil {
		return nil, err
	}

	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.Transport("load sender", err)
	}
	msg := &model.ChatMessage{
		ID:        pkg.NewSortableID(),
		MatchID:   m.ID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: s.now(),
	}
	if sender != nil && err == nil {
		msg.SenderName = sender.Profile.FullName
		msg.SenderAvatar = sender.Profile.ProfileImageURL
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, pkg.Transport("store message", err)
	}
	s.metrics.MessageSent()

	if err := s.bus.Publish(ctx, m.ID); err != nil {
		s.log.Warn("thread publish failed", zap.String("match_id", m.ID), zap.Error(err))
	}
	if err := s.notifier.MessageCreated(ctx, m, msg); err != nil {
		s.log.Warn("message notification failed",
			zap.String("match_id", m.ID), zap.String("message_id", msg.ID), zap.Error(err))
	}
	return msg, nil
}

// ListMessages returns the whole thread, newest first.
func (s *ChatService) ListMessages(ctx context.Context, matchID, userID string) ([]model.ChatMessage, error) {
	if _, err := s.GetMatch(ctx, matchID, userID); err != nil {
		return nil, err
	}
	list, err := s.messages.ListByMatch(ctx, matchID, 0)
	if err != nil {
		return nil, pkg.Transport("list messages", err)
	}
	return list, nil
}

// SubscribeMessages calls onUpdate with the full thread, newest first, right
// away and again after every change. Changes that arrive while onUpdate runs
// are folded into a single follow-up delivery.
//
// onUpdate runs on the subscription's goroutine and must not call Cancel.
func (s *ChatService) SubscribeMessages(ctx context.Context, matchID string, onUpdate func([]model.ChatMessage)) (*Subscription, error) {
	if matchID == "" {
		return nil, pkg.Invalid("match id is required")
	}
	if onUpdate == nil {
		return nil, pkg.Invalid("update callback is required")
	}
	// watch before the first load so a write between the two is not lost
	events, closeFeed, err := s.bus.Watch(ctx, matchID)
	if err != nil {
		return nil, pkg.Transport("subscribe thread", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		cancel:    cancel,
		closeFeed: closeFeed,
		done:      make(chan struct{}),
	}
	deliver := func() bool {
		list, err := s.messages.ListByMatch(runCtx, matchID, 0)
		if runCtx.Err() != nil {
			return false
		}
		if err != nil {
			s.log.Warn("thread reload failed", zap.String("match_id", matchID), zap.Error(err))
			return true
		}
		onUpdate(list)
		return true
	}
	go sub.run(runCtx, events, deliver)
	return sub, nil
}

// Subscription is a live view of one thread.
type Subscription struct {
	once      sync.Once
	cancel    context.CancelFunc
	closeFeed func() error
	done      chan struct{}
}

func (s *Subscription) run(ctx context.Context, events <-chan struct{}, deliver func() bool) {
	defer close(s.done)
	defer s.stop()

	if !deliver() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			if !deliver() {
				return
			}
		}
	}
}

func (s *Subscription) stop() {
	s.once.Do(func() {
		s.cancel()
		_ = s.closeFeed()
	})
}

// Cancel ends the subscription. Once it returns, onUpdate will not be called
// again. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.stop()
	<-s.done
}

// Done is closed when the subscription has ended, by Cancel or by its context.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}
