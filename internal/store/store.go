package store

import (
	"context" // All store operations may suspend the caller
	"errors"  // Sentinel errors

	"mebe/internal/domain" // Record models
)

// Sentinel errors returned by every Store implementation. Anything else is a
// backend failure and is wrapped with the failing operation.
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Store is the uniform CRUD facade over the four record collections. It hides
// whether the backing store is local JSON files or a remote table service;
// every write is visible to subsequent reads from any client sharing the same
// backend. There is no transactional guarantee across collections.
type Store interface {
	// Users, keyed by phone (unique).
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, phone string) (domain.User, error)
	CreateUser(ctx context.Context, u domain.User) error
	// UpdateUser replaces the full record matched by phone, banks included.
	UpdateUser(ctx context.Context, u domain.User) error
	// MigratePhone re-keys a user and rewrites transaction and notification
	// foreign keys. Denormalized snapshots on past transactions are untouched.
	MigratePhone(ctx context.Context, oldPhone, newPhone string) error

	// Transactions, keyed by id, newest first.
	ListTransactions(ctx context.Context) ([]domain.TransactionRecord, error)
	GetTransaction(ctx context.Context, id string) (domain.TransactionRecord, error)
	CreateTransaction(ctx context.Context, t domain.TransactionRecord) error
	// UpdateTransaction persists status and rejection reason only.
	UpdateTransaction(ctx context.Context, t domain.TransactionRecord) error

	// Notifications, keyed by id, filtered by phone, newest first.
	ListNotifications(ctx context.Context, phone string) ([]domain.AppNotification, error)
	AddNotification(ctx context.Context, phone string, n domain.AppNotification) error
	MarkAllNotificationsRead(ctx context.Context, phone string) error
	ClearNotifications(ctx context.Context, phone string) error
}
