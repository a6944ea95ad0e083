package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mebe/internal/domain"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	return l
}

func TestLocalUserRoundTrip(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	user := domain.User{
		Phone:    "0911111111",
		Name:     "Lan",
		Password: "hash",
		Balance:  500000,
		Banks: []domain.BankAccount{
			{ID: "b1", UserPhone: "0911111111", BankName: "Vietcombank", AccountNumber: "001", AccountHolder: "LAN", Position: 0},
		},
	}
	require.NoError(t, l.CreateUser(ctx, user))

	got, err := l.GetUser(ctx, "0911111111")
	require.NoError(t, err)
	assert.Equal(t, user, got)
	// The password survives the file round trip despite the JSON hide
	assert.Equal(t, "hash", got.Password)

	_, err = l.GetUser(ctx, "0999999999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalCreateUserDuplicate(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, l.CreateUser(ctx, domain.User{Phone: "0911111111", Name: "Lan"}))
	err := l.CreateUser(ctx, domain.User{Phone: "0911111111", Name: "Mai"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestLocalUpdateUser(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, l.CreateUser(ctx, domain.User{Phone: "0911111111", Name: "Lan"}))

	err := l.UpdateUser(ctx, domain.User{Phone: "0911111111", Name: "Lan Anh", Balance: 100000})
	require.NoError(t, err)
	got, err := l.GetUser(ctx, "0911111111")
	require.NoError(t, err)
	assert.Equal(t, "Lan Anh", got.Name)
	assert.Equal(t, int64(100000), got.Balance)

	err = l.UpdateUser(ctx, domain.User{Phone: "0999999999"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalTransactionsNewestFirst(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, l.CreateTransaction(ctx, domain.TransactionRecord{ID: "TX-1", UserPhone: "0911111111", CreatedAt: 100}))
	require.NoError(t, l.CreateTransaction(ctx, domain.TransactionRecord{ID: "TX-2", UserPhone: "0911111111", CreatedAt: 300}))
	require.NoError(t, l.CreateTransaction(ctx, domain.TransactionRecord{ID: "TX-3", UserPhone: "0911111111", CreatedAt: 200}))

	txs, err := l.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "TX-2", txs[0].ID)
	assert.Equal(t, "TX-3", txs[1].ID)
	assert.Equal(t, "TX-1", txs[2].ID)
}

func TestLocalUpdateTransactionStatusOnly(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	orig := domain.TransactionRecord{ID: "TX-1", UserPhone: "0911111111", UserName: "Lan", Amount: 500000, Status: domain.StatusPending}
	require.NoError(t, l.CreateTransaction(ctx, orig))

	// Carrying a mutated amount must not rewrite the snapshot fields
	mutated := orig
	mutated.Status = domain.StatusRejected
	mutated.RejectionReason = "Invalid bank info"
	mutated.Amount = 1
	mutated.UserName = "someone else"
	require.NoError(t, l.UpdateTransaction(ctx, mutated))

	got, err := l.GetTransaction(ctx, "TX-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, got.Status)
	assert.Equal(t, "Invalid bank info", got.RejectionReason)
	assert.Equal(t, int64(500000), got.Amount)
	assert.Equal(t, "Lan", got.UserName)

	err = l.UpdateTransaction(ctx, domain.TransactionRecord{ID: "TX-missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalNotifications(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, l.AddNotification(ctx, "0911111111", domain.AppNotification{ID: "n1", Title: "first", CreatedAt: 100}))
	require.NoError(t, l.AddNotification(ctx, "0911111111", domain.AppNotification{ID: "n2", Title: "second", CreatedAt: 200}))

	notifs, err := l.ListNotifications(ctx, "0911111111")
	require.NoError(t, err)
	require.Len(t, notifs, 2)
	assert.Equal(t, "second", notifs[0].Title) // newest first
	assert.False(t, notifs[0].IsRead)

	// Another user's collection stays empty
	other, err := l.ListNotifications(ctx, "0922222222")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, l.MarkAllNotificationsRead(ctx, "0911111111"))
	notifs, err = l.ListNotifications(ctx, "0911111111")
	require.NoError(t, err)
	for _, n := range notifs {
		assert.True(t, n.IsRead)
	}

	require.NoError(t, l.ClearNotifications(ctx, "0911111111"))
	notifs, err = l.ListNotifications(ctx, "0911111111")
	require.NoError(t, err)
	assert.Empty(t, notifs)

	// Clearing an empty collection is fine
	assert.NoError(t, l.ClearNotifications(ctx, "0911111111"))
}

func TestLocalMigratePhone(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	user := domain.User{
		Phone: "0911111111",
		Name:  "Lan",
		Banks: []domain.BankAccount{{ID: "b1", UserPhone: "0911111111", BankName: "ACB"}},
	}
	require.NoError(t, l.CreateUser(ctx, user))
	require.NoError(t, l.CreateTransaction(ctx, domain.TransactionRecord{ID: "TX-1", UserPhone: "0911111111", UserName: "Lan"}))
	require.NoError(t, l.AddNotification(ctx, "0911111111", domain.AppNotification{ID: "n1", Title: "hello"}))

	require.NoError(t, l.MigratePhone(ctx, "0911111111", "0922222222"))

	// Old key is gone, new key carries the banks
	_, err := l.GetUser(ctx, "0911111111")
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := l.GetUser(ctx, "0922222222")
	require.NoError(t, err)
	assert.Equal(t, "0922222222", got.Banks[0].UserPhone)

	// Transaction foreign key follows, the name snapshot stays
	tx, err := l.GetTransaction(ctx, "TX-1")
	require.NoError(t, err)
	assert.Equal(t, "0922222222", tx.UserPhone)
	assert.Equal(t, "Lan", tx.UserName)

	// Notifications move to the new key
	notifs, err := l.ListNotifications(ctx, "0922222222")
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, "hello", notifs[0].Title)
}

func TestLocalMigratePhoneConflicts(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, l.CreateUser(ctx, domain.User{Phone: "0911111111"}))
	require.NoError(t, l.CreateUser(ctx, domain.User{Phone: "0922222222"}))

	err := l.MigratePhone(ctx, "0911111111", "0922222222")
	assert.ErrorIs(t, err, ErrDuplicateKey)

	err = l.MigratePhone(ctx, "0933333333", "0944444444")
	assert.ErrorIs(t, err, ErrNotFound)

	// Same phone is a no-op
	assert.NoError(t, l.MigratePhone(ctx, "0911111111", "0911111111"))
}
