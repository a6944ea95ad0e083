package store

import (
	"context" // Store contract
	"errors"  // Error checks
	"fmt"     // Error wrapping

	"gorm.io/gorm" // GORM ORM library

	"mebe/internal/domain" // Record models
)

// SQL is the Store backed by a remote table service through GORM. It performs
// no cross-collection transactions; a user replace is the only multi-row
// write and runs in one because banks live in an owned child table.
type SQL struct {
	db *gorm.DB // Database handle
}

// NewSQL wraps an open GORM handle.
func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db}
}

// banksInOrder preloads the bank list in insertion order.
func banksInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

// ListUsers returns every user with their bank accounts.
func (s *SQL) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := s.db.WithContext(ctx).Preload("Banks", banksInOrder).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetUser resolves one user by phone.
func (s *SQL) GetUser(ctx context.Context, phone string) (domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Preload("Banks", banksInOrder).Where("phone = ?", phone).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// CreateUser inserts a new user; a taken phone maps to ErrDuplicateKey.
func (s *SQL) CreateUser(ctx context.Context, u domain.User) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("phone = ?", u.Phone).Count(&count).Error; err != nil {
		return fmt.Errorf("check phone: %w", err)
	}
	if count > 0 {
		return ErrDuplicateKey
	}
	for i := range u.Banks {
		u.Banks[i].UserPhone = u.Phone
		u.Banks[i].Position = i
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateUser replaces the full record matched by phone, banks included.
func (s *SQL) UpdateUser(ctx context.Context, u domain.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// MySQL reports zero affected rows on a no-change update, so existence
		// is checked explicitly instead of through RowsAffected.
		var count int64
		if err := tx.Model(&domain.User{}).Where("phone = ?", u.Phone).Count(&count).Error; err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		err := tx.Model(&domain.User{}).Where("phone = ?", u.Phone).
			Updates(map[string]any{
				"name":     u.Name,
				"password": u.Password,
				"balance":  u.Balance,
				"avatar":   u.Avatar,
				"is_admin": u.IsAdmin,
			}).Error
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		// Replace the owned bank list wholesale.
		if err := tx.Where("user_phone = ?", u.Phone).Delete(&domain.BankAccount{}).Error; err != nil {
			return fmt.Errorf("clear banks: %w", err)
		}
		for i := range u.Banks {
			u.Banks[i].UserPhone = u.Phone
			u.Banks[i].Position = i
		}
		if len(u.Banks) > 0 {
			if err := tx.Create(&u.Banks).Error; err != nil {
				return fmt.Errorf("save banks: %w", err)
			}
		}
		return nil
	})
}

// MigratePhone re-keys a user and every record referencing the old phone.
func (s *SQL) MigratePhone(ctx context.Context, oldPhone, newPhone string) error {
	if oldPhone == newPhone {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.User{}).Where("phone = ?", newPhone).Count(&count).Error; err != nil {
			return fmt.Errorf("check phone: %w", err)
		}
		if count > 0 {
			return ErrDuplicateKey
		}
		res := tx.Model(&domain.User{}).Where("phone = ?", oldPhone).Update("phone", newPhone)
		if res.Error != nil {
			return fmt.Errorf("migrate user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Model(&domain.BankAccount{}).Where("user_phone = ?", oldPhone).Update("user_phone", newPhone).Error; err != nil {
			return fmt.Errorf("migrate banks: %w", err)
		}
		// userName and bankInfo snapshots stay as written; only the key moves.
		if err := tx.Model(&domain.TransactionRecord{}).Where("user_phone = ?", oldPhone).Update("user_phone", newPhone).Error; err != nil {
			return fmt.Errorf("migrate transactions: %w", err)
		}
		if err := tx.Model(&domain.AppNotification{}).Where("user_phone = ?", oldPhone).Update("user_phone", newPhone).Error; err != nil {
			return fmt.Errorf("migrate notifications: %w", err)
		}
		return nil
	})
}

// ListTransactions returns every transaction, newest first.
func (s *SQL) ListTransactions(ctx context.Context) ([]domain.TransactionRecord, error) {
	var txs []domain.TransactionRecord
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// GetTransaction resolves one transaction by id.
func (s *SQL) GetTransaction(ctx context.Context, id string) (domain.TransactionRecord, error) {
	var t domain.TransactionRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.TransactionRecord{}, ErrNotFound
	}
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// CreateTransaction inserts a new transaction record.
func (s *SQL) CreateTransaction(ctx context.Context, t domain.TransactionRecord) error {
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// UpdateTransaction persists status and rejection reason only.
func (s *SQL) UpdateTransaction(ctx context.Context, t domain.TransactionRecord) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.TransactionRecord{}).Where("id = ?", t.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("check transaction: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	err := s.db.WithContext(ctx).Model(&domain.TransactionRecord{}).Where("id = ?", t.ID).
		Updates(map[string]any{
			"status":           t.Status,
			"rejection_reason": t.RejectionReason,
		}).Error
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

// ListNotifications returns a user's notifications, newest first.
func (s *SQL) ListNotifications(ctx context.Context, phone string) ([]domain.AppNotification, error) {
	var notifs []domain.AppNotification
	if err := s.db.WithContext(ctx).Where("user_phone = ?", phone).Order("created_at desc").Find(&notifs).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifs, nil
}

// AddNotification inserts a notification for the user.
func (s *SQL) AddNotification(ctx context.Context, phone string, n domain.AppNotification) error {
	n.UserPhone = phone
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return fmt.Errorf("add notification: %w", err)
	}
	return nil
}

// MarkAllNotificationsRead flips the read flag for the whole collection.
func (s *SQL) MarkAllNotificationsRead(ctx context.Context, phone string) error {
	err := s.db.WithContext(ctx).Model(&domain.AppNotification{}).
		Where("user_phone = ? AND is_read = ?", phone, false).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

// ClearNotifications removes the user's notifications.
func (s *SQL) ClearNotifications(ctx context.Context, phone string) error {
	if err := s.db.WithContext(ctx).Where("user_phone = ?", phone).Delete(&domain.AppNotification{}).Error; err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}
