package session

import (
	"context"       // Store calls may suspend
	"errors"        // Error checks
	"fmt"           // Error wrapping
	"io/fs"         // Missing-file detection
	"os"            // Session file access
	"path/filepath" // Session file path
	"strings"       // Phone trimming

	"github.com/sirupsen/logrus" // Structured logging

	"mebe/internal/domain" // User model
	"mebe/internal/store"  // Record store
)

// sessionFile is the single client-local value: the active phone number.
const sessionFile = "session"

// Manager resolves "who is logged in" against the record store and applies
// the master-admin override. The override is a documented bootstrap
// mechanism: a login with the configured phone is always treated as admin,
// at session resolution and on every poll refresh, whatever the stored flag
// says.
type Manager struct {
	store       store.Store // Record store
	masterPhone string      // Phone always treated as admin
	dir         string      // Directory holding the session file
}

// NewManager wires a Manager over the given store. dir holds the persisted
// session marker and may be empty for callers that never use file sessions
// (the HTTP API carries the phone in the JWT instead).
func NewManager(st store.Store, masterPhone, dir string) *Manager {
	return &Manager{store: st, masterPhone: masterPhone, dir: dir}
}

// Resolve loads the user for a phone and applies the master-admin override.
func (m *Manager) Resolve(ctx context.Context, phone string) (domain.User, error) {
	user, err := m.store.GetUser(ctx, phone)
	if err != nil {
		return domain.User{}, err
	}
	return m.WithOverride(user), nil
}

// WithOverride forces the admin flag on a record matching the master phone.
func (m *Manager) WithOverride(u domain.User) domain.User {
	if m.masterPhone != "" && u.Phone == m.masterPhone {
		u.IsAdmin = true
	}
	return u
}

// StartSession persists the phone as the active session key.
func (m *Manager) StartSession(phone string) error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(m.path(), []byte(phone), 0o600); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// EndSession clears the persisted session key.
func (m *Manager) EndSession() error {
	err := os.Remove(m.path())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// ResolveSession reads the persisted phone and loads the matching user.
// A missing file or a phone with no backing record (deleted server-side)
// resolves to nil; the stale marker is cleared.
func (m *Manager) ResolveSession(ctx context.Context) (*domain.User, error) {
	b, err := os.ReadFile(m.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	phone := strings.TrimSpace(string(b))
	if phone == "" {
		return nil, nil
	}
	user, err := m.Resolve(ctx, phone)
	if errors.Is(err, store.ErrNotFound) {
		logrus.WithField("phone", phone).Warn("Session phone no longer resolves, clearing session")
		_ = m.EndSession()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SeedMasterAdmin ensures the master admin record exists, as the original
// deployment bootstraps itself on first start.
func (m *Manager) SeedMasterAdmin(ctx context.Context, avatarBase, passwordHash string) error {
	if m.masterPhone == "" {
		return nil
	}
	_, err := m.store.GetUser(ctx, m.masterPhone)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	admin := domain.User{
		Phone:    m.masterPhone,
		Name:     "Quản trị viên",
		Password: passwordHash,
		Balance:  999999999,
		Avatar:   avatarBase + "admin",
		IsAdmin:  true,
		Banks:    []domain.BankAccount{},
	}
	if err := m.store.CreateUser(ctx, admin); err != nil && !errors.Is(err, store.ErrDuplicateKey) {
		return err
	}
	logrus.WithField("phone", m.masterPhone).Info("Seeded master admin account")
	return nil
}

func (m *Manager) path() string {
	return filepath.Join(m.dir, sessionFile)
}
