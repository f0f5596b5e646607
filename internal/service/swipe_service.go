package service

import (
	"context"
	"time"

	"Synergy_Link/internal/model"
	"Synergy_Link/internal/pkg"

	"go.uber.org/zap"
)

// SwipeResult tells the client whether the swipe completed a match.
type SwipeResult struct {
	IsMatch bool   `json:"isMatch"`
	MatchID string `json:"matchId,omitempty"`
}

// SwipeService is the swipe ledger plus the match reconciler that runs on every like.
type SwipeService struct {
	swipes   SwipeStore
	matches  MatchStore
	users    UserStore
	notifier Notifier
	log      *zap.Logger
	metrics  *pkg.Metrics
	now      func() time.Time
}

func NewSwipeService(swipes SwipeStore, matches MatchStore, users UserStore, notifier Notifier, log *zap.Logger, metrics *pkg.Metrics) *SwipeService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &SwipeService{
		swipes:   swipes,
		matches:  matches,
		users:    users,
		notifier: notifier,
		log:      log,
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RecordSwipe appends the swipe and, for a like, checks for a reciprocal like.
//
// The swipe write commits before the reciprocity read, so of two concurrent
// mutual likes at least one sees the other; the match key turns the second
// match insert into a no-op. A repeated swipe keeps the first action but still
// re-runs reconciliation, which makes a retry after a failed read or a failed
// notification safe.
func (s *SwipeService) RecordSwipe(ctx context.Context, swiperID, targetID, action string) (*SwipeResult, error) {
	if swiperID == "" {
		return nil, pkg.Unauthenticated("sign in required")
	}
	if targetID == "" {
		return nil, pkg.Invalid("target user is required")
	}
	if swiperID == targetID {
		return nil, pkg.Invalid("cannot swipe on yourself")
	}
	if !model.ValidSwipeAction(action) {
		return nil, pkg.Invalid("action must be like or pass")
	}
	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		return nil, storeErr(err, "target user")
	}

	inserted, err := s.swipes.Record(ctx, &model.Swipe{
		SwiperID:  swiperID,
		TargetID:  targetID,
		Action:    action,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, pkg.Transport("record swipe", err)
	}

	stored := action
	if inserted {
		s.metrics.SwipeRecorded(action)
	} else {
		prev, err := s.swipes.Find(ctx, swiperID, targetID)
		if err != nil {
			return nil, pkg.Transport("load existing swipe", err)
		}
		stored = prev.Action
	}
	if stored != model.SwipeLike {
		return &SwipeResult{}, nil
	}
	return s.reconcile(ctx, swiperID, targetID)
}

func (s *SwipeService) reconcile(ctx context.Context, a, b string) (*SwipeResult, error) {
	liked, err := s.swipes.HasLiked(ctx, b, a)
	if err != nil {
		return nil, pkg.Transport("check reciprocal like", err)
	}
	if !liked {
		return &SwipeResult{}, nil
	}

	m := model.NewMatch(a, b, s.now())
	stored, created, err := s.matches.CreateIfAbsent(ctx, m)
	if err != nil {
		return nil, pkg.Transport("create match", err)
	}
	if !stored.SamePair(m) {
		s.log.Warn("match key taken by another pair",
			zap.String("match_id", m.ID), zap.String("user_a", stored.UserAID), zap.String("user_b", stored.UserBID))
		return nil, pkg.Conflict("match key already belongs to another pair", nil)
	}
	if created {
		s.metrics.MatchCreated()
		s.log.Info("match created", zap.String("match_id", m.ID))
	}
	if stored.NotifiedAt == nil {
		if err := s.notifyMatch(ctx, stored); err != nil {
			return nil, err
		}
	}
	return &SwipeResult{IsMatch: true, MatchID: stored.ID}, nil
}

// notifyMatch queues the match pushes and marks the match notified. It runs
// again on every reconcile until it succeeds; queued pushes are deduplicated.
func (s *SwipeService) notifyMatch(ctx context.Context, m *model.Match) error {
	if err := s.notifier.MatchCreated(ctx, m); err != nil {
		s.log.Warn("match notification failed", zap.String("match_id", m.ID), zap.Error(err))
		return pkg.Transport("notify match", err)
	}
	if err := s.matches.MarkNotified(ctx, m.ID, s.now()); err != nil {
		return pkg.Transport("mark match notified", err)
	}
	return nil
}

func (s *SwipeService) HasLiked(ctx context.Context, fromID, toID string) (bool, error) {
	liked, err := s.swipes.HasLiked(ctx, fromID, toID)
	if err != nil {
		return false, pkg.Transport("check like", err)
	}
	return liked, nil
}

// SwipedTargets lists every user swiperID has already rated.
func (s *SwipeService) SwipedTargets(ctx context.Context, swiperID string) ([]string, error) {
	ids, err := s.swipes.SwipedTargets(ctx, swiperID)
	if err != nil {
		return nil, pkg.Transport("list swiped targets", err)
	}
	return ids, nil
}
