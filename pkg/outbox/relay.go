package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

type Store interface {
	LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error)
	MarkSent(ctx context.Context, ids []int64) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
	ExtendLease(ctx context.Context, relayID string, ids []int64, lease time.Duration) error
}

type Relay struct {
	log       *slog.Logger
	store     Store
	dispatch  *Dispatcher
	relayID   string
	batchSize int
	interval  time.Duration
	lease     time.Duration
}

type RelayOption func(*Relay)

func WithBatchSize(n int) RelayOption {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithInterval(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithLease(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.lease = d
		}
	}
}

func NewRelay(log *slog.Logger, store Store, dispatch *Dispatcher, relayID string, opts ...RelayOption) *Relay {
	r := &Relay{
		log:       log,
		store:     store,
		dispatch:  dispatch,
		relayID:   relayID,
		batchSize: 100,
		interval:  500 * time.Millisecond,
		lease:     5 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Relay) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("relay stopping", "relay_id", r.relayID)
			return nil
		case <-t.C:
			if _, err := r.Tick(ctx); err != nil {
				r.log.Error("relay tick error", "relay_id", r.relayID, "err", err)
			}
		}
	}
}

// Tick locks and dispatches a single batch and returns how many events were sent.
// Events that fail with a transient error stay leased and are picked up again
// once the lease expires. Events this relay does not hold are left untouched.
func (r *Relay) Tick(ctx context.Context) (int, error) {
	events, err := r.store.LockBatch(ctx, r.relayID, r.batchSize, r.lease)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	owned := make([]Event, 0, len(events))
	for _, e := range events {
		if e.RelayID != r.relayID || !e.Status.CanTransitionTo(StatusSent) {
			r.log.Warn("relay skipping event it does not hold", "event_id", e.ID, "status", e.Status, "holder", e.RelayID)
			continue
		}
		owned = append(owned, e)
	}

	leasedAt := time.Now()
	pending := make([]int64, 0, len(owned))
	for _, e := range owned {
		pending = append(pending, e.ID)
	}

	sent := make([]int64, 0, len(owned))
	for i, e := range owned {
		if time.Since(leasedAt) > r.lease/2 {
			if err := r.store.ExtendLease(ctx, r.relayID, pending[i:], r.lease); err != nil {
				r.log.Error("relay extend lease error", "err", err)
			}
			leasedAt = time.Now()
		}

		if err := r.dispatch.Dispatch(ctx, e); err != nil {
			if errors.Is(err, ErrPermanent) && e.Status.CanTransitionTo(StatusFailed) {
				if mErr := r.store.MarkFailed(ctx, e.ID, err.Error()); mErr != nil {
					r.log.Error("relay mark failed error", "event_id", e.ID, "err", mErr)
				}
			}
			continue
		}
		sent = append(sent, e.ID)
	}

	if len(sent) > 0 {
		if err := r.store.MarkSent(ctx, sent); err != nil {
			return 0, fmt.Errorf("mark sent: %w", err)
		}
	}
	return len(sent), nil
}
