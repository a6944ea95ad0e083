package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mebe/internal/domain"
	"mebe/internal/store"
)

func newTestWatcher(t *testing.T) (*Watcher, store.Store) {
	t.Helper()
	st, err := store.NewLocal(t.TempDir())
	require.NoError(t, err)
	return NewWatcher(st, 10*time.Millisecond), st
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed early")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for emission")
		panic("unreachable")
	}
}

func TestWatchUserEmitsInitialAndChanges(t *testing.T) {
	watcher, st := newTestWatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, st.CreateUser(ctx, domain.User{Phone: "0911111111", Name: "Lan", Balance: 0}))

	ch := watcher.WatchUser(ctx, "0911111111")
	first := recv(t, ch)
	assert.Equal(t, int64(0), first.Balance)

	// An external balance change shows up on a later poll
	first.Balance = 500000
	require.NoError(t, st.UpdateUser(ctx, first))
	second := recv(t, ch)
	assert.Equal(t, int64(500000), second.Balance)
}

func TestWatchUserSuppressesUnchangedPolls(t *testing.T) {
	watcher, st := newTestWatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, st.CreateUser(ctx, domain.User{Phone: "0911111111", Name: "Lan"}))

	ch := watcher.WatchUser(ctx, "0911111111")
	recv(t, ch)

	// Several poll cycles with no writes: nothing may arrive
	select {
	case v, ok := <-ch:
		if ok {
			t.Fatalf("unexpected emission: %+v", v)
		}
		t.Fatal("channel closed early")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatchClosesOnCancel(t *testing.T) {
	watcher, st := newTestWatcher(t)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, st.CreateUser(ctx, domain.User{Phone: "0911111111", Name: "Lan"}))
	ch := watcher.WatchUser(ctx, "0911111111")
	recv(t, ch)

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatchPendingTransactionsFiltersDecided(t *testing.T) {
	watcher, st := newTestWatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, st.CreateTransaction(ctx, domain.TransactionRecord{ID: "TX-1", Status: domain.StatusPending, CreatedAt: 100}))
	require.NoError(t, st.CreateTransaction(ctx, domain.TransactionRecord{ID: "TX-2", Status: domain.StatusApproved, CreatedAt: 200}))

	ch := watcher.WatchPendingTransactions(ctx)
	pending := recv(t, ch)
	require.Len(t, pending, 1)
	assert.Equal(t, "TX-1", pending[0].ID)

	// Deciding the last pending one empties the set on a later poll
	require.NoError(t, st.UpdateTransaction(ctx, domain.TransactionRecord{ID: "TX-1", Status: domain.StatusRejected, RejectionReason: "x"}))
	pending = recv(t, ch)
	assert.Empty(t, pending)
}

func TestWatchNotifications(t *testing.T) {
	watcher, st := newTestWatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := watcher.WatchNotifications(ctx, "0911111111")
	assert.Empty(t, recv(t, ch))

	require.NoError(t, st.AddNotification(ctx, "0911111111", domain.AppNotification{ID: "n1", Title: "hello"}))
	notifs := recv(t, ch)
	require.Len(t, notifs, 1)
	assert.Equal(t, "hello", notifs[0].Title)
}
