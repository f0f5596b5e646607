package service

import (
	"context"
	"time"

	"Synergy_Link/internal/model"
	"Synergy_Link/internal/pkg"

	"go.uber.org/zap"
)

const relayerLockName = "outbox:push"

type Sender func(ctx context.Context, ob *model.PushOutbox) error

// Locker is a cluster-wide lease; only one relayer drains at a time.
type Locker interface {
	Acquire(ctx context.Context, name, token string) (bool, error)
	Release(ctx context.Context, name, token string) error
}

type RelayerConfig struct {
	BatchSize int
	MaxRetry  int
	Interval  time.Duration
}

// OutboxRelayer drains push_outbox into the push gateway.
type OutboxRelayer struct {
	repo      OutboxStore
	sender    Sender
	lock      Locker
	owner     string
	batchSize int
	maxRetry  int
	interval  time.Duration
	log       *zap.Logger
	metrics   *pkg.Metrics
}

// NewOutboxRelayer builds a relayer. lock may be nil for a single instance.
func NewOutboxRelayer(repo OutboxStore, sender Sender, lock Locker, cfg RelayerConfig, log *zap.Logger, metrics *pkg.Metrics) *OutboxRelayer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if cfg.MaxRetry <= 0 {
		cfg.MaxRetry = 5
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &OutboxRelayer{
		repo:      repo,
		sender:    sender,
		lock:      lock,
		owner:     pkg.NewID(),
		batchSize: cfg.BatchSize,
		maxRetry:  cfg.MaxRetry,
		interval:  cfg.Interval,
		log:       log,
		metrics:   metrics,
	}
}

// Run drains on every tick until ctx is done.
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

// drainOnce sends one batch and returns how many rows were delivered.
func (r *OutboxRelayer) drainOnce(ctx context.Context) int {
	if r.lock != nil {
		ok, err := r.lock.Acquire(ctx, relayerLockName, r.owner)
		if err != nil {
			r.log.Warn("outbox lock failed", zap.Error(err))
			return 0
		}
		if !ok {
			return 0
		}
		defer func() {
			// release even when ctx is already cancelled
			rctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := r.lock.Release(rctx, relayerLockName, r.owner); err != nil {
				r.log.Warn("outbox lock release failed", zap.Error(err))
			}
		}()
	}

	rows, err := r.repo.List(ctx, r.batchSize, r.maxRetry)
	if err != nil {
		r.log.Error("outbox query failed", zap.Error(err))
		return 0
	}
	sent := 0
	for i := range rows {
		ob := rows[i]
		if err := r.sender(ctx, &ob); err != nil {
			r.log.Warn("outbox send failed",
				zap.Uint64("outbox_id", ob.ID), zap.Int("retry", ob.Retry+1), zap.Error(err))
			r.metrics.OutboxRelayed(false)
			if err := r.repo.RetryUpdate(ctx, ob.ID); err != nil {
				r.log.Error("outbox retry update failed", zap.Uint64("outbox_id", ob.ID), zap.Error(err))
			}
			continue
		}
		r.metrics.OutboxRelayed(true)
		if err := r.repo.SuccessUpdate(ctx, ob.ID); err != nil {
			r.log.Error("outbox success update failed", zap.Uint64("outbox_id", ob.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

// KafkaSender publishes the stored payload keyed by recipient, so one user's
// pushes stay ordered on a single partition.
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.PushOutbox) error {
		return p.Send(ctx, ob.RecipientID, []byte(ob.Payload))
	}
}

// LogSender only logs; used when no brokers are configured.
func LogSender(log *zap.Logger) Sender {
	return func(ctx context.Context, ob *model.PushOutbox) error {
		log.Info("push outbox",
			zap.String("type", ob.EventType),
			zap.String("recipient_id", ob.RecipientID),
			zap.String("payload", ob.Payload))
		return nil
	}
}
