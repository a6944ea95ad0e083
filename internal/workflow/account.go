package workflow

import (
	"context" // Store calls may suspend
	"errors"  // Error checks
	"regexp"  // Phone validation
	"strings" // Input trimming

	"github.com/google/uuid"     // Record ids
	"github.com/sirupsen/logrus" // Structured logging
	"golang.org/x/crypto/bcrypt" // Password hashing

	"mebe/internal/domain" // Record models
	"mebe/internal/store"  // Record store
)

// Vietnamese mobile numbers: 0 or 84 prefix, then a 3/5/7/8/9 carrier digit
// and eight more digits.
var phonePattern = regexp.MustCompile(`^(0|84)(3|5|7|8|9)[0-9]{8}$`)

// ErrBadCredentials is returned by Login for a wrong phone or password.
var ErrBadCredentials = errors.New("bad credentials")

// Register validates the sign-up form, hashes the password, creates the user
// with a zero balance and a derived avatar, and emits one welcome
// notification. A taken phone surfaces store.ErrDuplicateKey.
func (s *Service) Register(ctx context.Context, name, phone, password, confirm, avatarBase string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, ValidationError{Msg: "Vui lòng nhập họ và tên"}
	}
	if !phonePattern.MatchString(phone) {
		return domain.User{}, ValidationError{Msg: "Số điện thoại không hợp lệ"}
	}
	if len(password) < 6 {
		return domain.User{}, ValidationError{Msg: "Mật khẩu phải có ít nhất 6 ký tự"}
	}
	if password != confirm {
		return domain.User{}, ValidationError{Msg: "Mật khẩu xác nhận không khớp"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	user := domain.User{
		Phone:    phone,
		Name:     name,
		Password: string(hash),
		Balance:  0,
		Avatar:   avatarBase + phone,
		Banks:    []domain.BankAccount{},
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	notif := domain.AppNotification{
		ID:      uuid.NewString(),
		Title:   "Chào mừng mẹ đến với Mẹ & Bé",
		Content: "Tài khoản của mẹ đã được tạo thành công. Liên kết ngân hàng để bắt đầu nạp và rút tiền.",
		Type:    domain.NotifInfo,
	}
	if err := s.store.AddNotification(ctx, phone, notif); err != nil {
		return domain.User{}, err
	}
	logrus.WithFields(logrus.Fields{"phone": phone, "name": name}).Info("User registered")
	return user, nil
}

// Login checks the phone and password against the stored bcrypt hash.
func (s *Service) Login(ctx context.Context, phone, password string) (domain.User, error) {
	user, err := s.store.GetUser(ctx, phone)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrBadCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrBadCredentials
	}
	return user, nil
}

// AddBank appends a bank account to the user's list; the holder name is the
// user's own name upper-cased, as the original form fixes it.
func (s *Service) AddBank(ctx context.Context, user domain.User, bankName, accountNumber string) (domain.User, error) {
	bankName = strings.TrimSpace(bankName)
	accountNumber = strings.TrimSpace(accountNumber)
	if bankName == "" || accountNumber == "" {
		return domain.User{}, ValidationError{Msg: "Vui lòng nhập đầy đủ thông tin ngân hàng"}
	}
	bank := domain.BankAccount{
		ID:            uuid.NewString(),
		UserPhone:     user.Phone,
		BankName:      bankName,
		AccountNumber: accountNumber,
		AccountHolder: strings.ToUpper(user.Name),
		Position:      len(user.Banks),
	}
	user.Banks = append(user.Banks, bank)
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	logrus.WithFields(logrus.Fields{"phone": user.Phone, "bank": bankName}).Info("Bank account linked")
	return user, nil
}

// ChangePassword verifies the current password and replaces the hash.
func (s *Service) ChangePassword(ctx context.Context, user domain.User, current, next, confirm string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return ValidationError{Msg: "Mật khẩu hiện tại không đúng"}
	}
	if len(next) < 6 {
		return ValidationError{Msg: "Mật khẩu phải có ít nhất 6 ký tự"}
	}
	if next != confirm {
		return ValidationError{Msg: "Mật khẩu xác nhận không khớp"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hash)
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return err
	}
	logrus.WithField("phone", user.Phone).Info("Password changed")
	return nil
}
