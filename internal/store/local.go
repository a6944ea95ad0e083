package store

import (
	"context"       // Store contract
	"encoding/json" // Collections are plain JSON text on disk
	"errors"        // Error checks
	"fmt"           // Error wrapping
	"io/fs"         // Missing-file detection
	"os"            // File access
	"path/filepath" // Collection file paths
	"sort"          // Newest-first ordering
	"sync"          // Serializes the read-modify-write cycle
	"time"          // Timestamps

	"mebe/internal/domain" // Record models
)

// Fixed file names per collection; notifications get one file per user.
const (
	usersFile        = "users.json"
	transactionsFile = "transactions.json"
	notifsFilePrefix = "notifications_"
)

// Local is the file-backed Store. Each collection is one JSON file under the
// data directory, read and rewritten whole on every operation. A single mutex
// serializes all access; the files are the only shared mutable resource.
type Local struct {
	dir string     // Data directory
	mu  sync.Mutex // Guards every file read-modify-write
}

// NewLocal creates the data directory if needed and returns a Local store.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

// readFile unmarshals a collection file into dest. A missing file is an empty
// collection, not an error.
func (l *Local) readFile(name string, dest any) error {
	b, err := os.ReadFile(filepath.Join(l.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// writeFile marshals a collection and rewrites its file.
func (l *Local) writeFile(name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(l.dir, name), b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// localUser carries the password through JSON, which domain.User hides.
type localUser struct {
	domain.User
	Password string `json:"password"`
}

func (l *Local) loadUsers() ([]localUser, error) {
	var users []localUser
	if err := l.readFile(usersFile, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListUsers returns every user record.
func (l *Local) ListUsers(ctx context.Context) ([]domain.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	raw, err := l.loadUsers()
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, len(raw))
	for i, u := range raw {
		users[i] = u.User
		users[i].Password = u.Password
	}
	return users, nil
}

// GetUser resolves one user by phone.
func (l *Local) GetUser(ctx context.Context, phone string) (domain.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	raw, err := l.loadUsers()
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range raw {
		if u.Phone == phone {
			user := u.User
			user.Password = u.Password
			return user, nil
		}
	}
	return domain.User{}, ErrNotFound
}

// CreateUser appends a new user; the phone must be unused.
func (l *Local) CreateUser(ctx context.Context, u domain.User) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	raw, err := l.loadUsers()
	if err != nil {
		return err
	}
	for _, existing := range raw {
		if existing.Phone == u.Phone {
			return ErrDuplicateKey
		}
	}
	raw = append(raw, localUser{User: u, Password: u.Password})
	return l.writeFile(usersFile, raw)
}

// UpdateUser replaces the full record matched by phone.
func (l *Local) UpdateUser(ctx context.Context, u domain.User) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	raw, err := l.loadUsers()
	if err != nil {
		return err
	}
	for i, existing := range raw {
		if existing.Phone == u.Phone {
			raw[i] = localUser{User: u, Password: u.Password}
			return l.writeFile(usersFile, raw)
		}
	}
	return ErrNotFound
}

// MigratePhone re-keys a user and every record referencing the old phone.
// The userName and bankInfo snapshots on past transactions stay as written.
func (l *Local) MigratePhone(ctx context.Context, oldPhone, newPhone string) error {
	if oldPhone == newPhone {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	raw, err := l.loadUsers()
	if err != nil {
		return err
	}
	idx := -1
	for i, u := range raw {
		if u.Phone == newPhone {
			return ErrDuplicateKey
		}
		if u.Phone == oldPhone {
			idx = i
		}
	}
	if idx == -1 {
		return ErrNotFound
	}
	raw[idx].Phone = newPhone
	for i := range raw[idx].Banks {
		raw[idx].Banks[i].UserPhone = newPhone
	}
	if err := l.writeFile(usersFile, raw); err != nil {
		return err
	}

	// Re-key the transaction foreign keys.
	var txs []domain.TransactionRecord
	if err := l.readFile(transactionsFile, &txs); err != nil {
		return err
	}
	for i := range txs {
		if txs[i].UserPhone == oldPhone {
			txs[i].UserPhone = newPhone
		}
	}
	if err := l.writeFile(transactionsFile, txs); err != nil {
		return err
	}

	// Move the notification file to the new key.
	oldPath := filepath.Join(l.dir, notifsFilePrefix+oldPhone+".json")
	newPath := filepath.Join(l.dir, notifsFilePrefix+newPhone+".json")
	if err := os.Rename(oldPath, newPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("move notifications: %w", err)
	}
	return nil
}

// ListTransactions returns every transaction, newest first.
func (l *Local) ListTransactions(ctx context.Context) ([]domain.TransactionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var txs []domain.TransactionRecord
	if err := l.readFile(transactionsFile, &txs); err != nil {
		return nil, err
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].CreatedAt > txs[j].CreatedAt })
	return txs, nil
}

// GetTransaction resolves one transaction by id.
func (l *Local) GetTransaction(ctx context.Context, id string) (domain.TransactionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var txs []domain.TransactionRecord
	if err := l.readFile(transactionsFile, &txs); err != nil {
		return domain.TransactionRecord{}, err
	}
	for _, t := range txs {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.TransactionRecord{}, ErrNotFound
}

// CreateTransaction appends a new transaction record.
func (l *Local) CreateTransaction(ctx context.Context, t domain.TransactionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var txs []domain.TransactionRecord
	if err := l.readFile(transactionsFile, &txs); err != nil {
		return err
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().UnixMilli()
	}
	txs = append(txs, t)
	return l.writeFile(transactionsFile, txs)
}

// UpdateTransaction persists status and rejection reason for a matched id.
func (l *Local) UpdateTransaction(ctx context.Context, t domain.TransactionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var txs []domain.TransactionRecord
	if err := l.readFile(transactionsFile, &txs); err != nil {
		return err
	}
	for i := range txs {
		if txs[i].ID == t.ID {
			txs[i].Status = t.Status
			txs[i].RejectionReason = t.RejectionReason
			return l.writeFile(transactionsFile, txs)
		}
	}
	return ErrNotFound
}

func notifsFile(phone string) string {
	return notifsFilePrefix + phone + ".json"
}

// ListNotifications returns a user's notifications, newest first.
func (l *Local) ListNotifications(ctx context.Context, phone string) ([]domain.AppNotification, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var notifs []domain.AppNotification
	if err := l.readFile(notifsFile(phone), &notifs); err != nil {
		return nil, err
	}
	sort.SliceStable(notifs, func(i, j int) bool { return notifs[i].CreatedAt > notifs[j].CreatedAt })
	return notifs, nil
}

// AddNotification appends a notification to the user's collection.
func (l *Local) AddNotification(ctx context.Context, phone string, n domain.AppNotification) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var notifs []domain.AppNotification
	if err := l.readFile(notifsFile(phone), &notifs); err != nil {
		return err
	}
	n.UserPhone = phone
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().UnixMilli()
	}
	notifs = append(notifs, n)
	return l.writeFile(notifsFile(phone), notifs)
}

// MarkAllNotificationsRead flips the read flag on every notification.
func (l *Local) MarkAllNotificationsRead(ctx context.Context, phone string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var notifs []domain.AppNotification
	if err := l.readFile(notifsFile(phone), &notifs); err != nil {
		return err
	}
	for i := range notifs {
		notifs[i].IsRead = true
	}
	return l.writeFile(notifsFile(phone), notifs)
}

// ClearNotifications removes the user's notification collection.
func (l *Local) ClearNotifications(ctx context.Context, phone string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := os.Remove(filepath.Join(l.dir, notifsFile(phone)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}
