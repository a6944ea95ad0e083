// Package sync keeps displayed entities eventually consistent with the
// record store without push notifications. Each watcher polls on a fixed
// interval, compares against the last delivered value and emits only on a
// detected difference, so repeated reads with no intervening writes never
// produce an event. Watchers are independent of each other: no ordering is
// guaranteed across them. A watcher never outlives its context; cancelling
// the context stops the ticker and closes the channel.
package sync

import (
	"context" // Owner-scoped cancellation
	"reflect" // Structural equality between polls
	"time"    // Polling ticker

	"github.com/sirupsen/logrus" // Structured logging

	"mebe/internal/domain" // Record models
	"mebe/internal/store"  // Record store
)

// Watcher turns the store's read operations into change subscriptions
// backed by polling.
type Watcher struct {
	store    store.Store   // Record store
	interval time.Duration // Poll interval; only required to be positive
}

// NewWatcher wires a Watcher over the given store.
func NewWatcher(st store.Store, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Watcher{store: st, interval: interval}
}

// WatchUser emits the user record for phone whenever it changes, starting
// with an immediate fetch. Poll failures are logged and skipped; the user
// never sees transient connectivity loss.
func (w *Watcher) WatchUser(ctx context.Context, phone string) <-chan domain.User {
	out := make(chan domain.User, 1)
	go poll(ctx, w.interval, out, func() (domain.User, error) {
		return w.store.GetUser(ctx, phone)
	})
	return out
}

// WatchUsers emits the full user list whenever it changes.
func (w *Watcher) WatchUsers(ctx context.Context) <-chan []domain.User {
	out := make(chan []domain.User, 1)
	go poll(ctx, w.interval, out, func() ([]domain.User, error) {
		return w.store.ListUsers(ctx)
	})
	return out
}

// WatchPendingTransactions emits the PENDING transactions, newest first,
// whenever the set changes.
func (w *Watcher) WatchPendingTransactions(ctx context.Context) <-chan []domain.TransactionRecord {
	out := make(chan []domain.TransactionRecord, 1)
	go poll(ctx, w.interval, out, func() ([]domain.TransactionRecord, error) {
		all, err := w.store.ListTransactions(ctx)
		if err != nil {
			return nil, err
		}
		pending := make([]domain.TransactionRecord, 0, len(all))
		for _, t := range all {
			if t.Status == domain.StatusPending {
				pending = append(pending, t)
			}
		}
		return pending, nil
	})
	return out
}

// WatchNotifications emits a user's notifications whenever they change.
func (w *Watcher) WatchNotifications(ctx context.Context, phone string) <-chan []domain.AppNotification {
	out := make(chan []domain.AppNotification, 1)
	go poll(ctx, w.interval, out, func() ([]domain.AppNotification, error) {
		return w.store.ListNotifications(ctx, phone)
	})
	return out
}

// poll runs the fetch-diff-emit loop until ctx is cancelled, then closes out.
func poll[T any](ctx context.Context, interval time.Duration, out chan T, fetch func() (T, error)) {
	defer close(out)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last T
	seeded := false
	emit := func() {
		fresh, err := fetch()
		if err != nil {
			if ctx.Err() == nil {
				logrus.WithError(err).Warn("Sync poll failed")
			}
			return
		}
		if seeded && reflect.DeepEqual(fresh, last) {
			return
		}
		last = fresh
		seeded = true
		select {
		case out <- fresh:
		case <-ctx.Done():
		}
	}

	emit() // Immediate first fetch
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			emit()
		}
	}
}
