package workflow

import (
	"context" // Store calls may suspend
	"errors"  // Error checks
	"strconv" // Amount formatting
	"strings" // Reason trimming

	"github.com/google/uuid"     // Record ids
	"github.com/sirupsen/logrus" // Structured logging

	"mebe/internal/domain" // Record models
	"mebe/internal/store"  // Record store
)

// MinAmount is the smallest deposit or withdrawal, in whole currency units.
const MinAmount = 10000

// ValidationError is user input rejected before any store call. Always
// recoverable; surfaced inline on the originating screen, never retried.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

// Service owns the transaction lifecycle: PENDING at submission, flipped
// exactly once to APPROVED or REJECTED by admin action. It is the only path
// that mutates balances. The balance write and the status flip are two
// independent store calls; a failure between them is logged and surfaced
// with the transaction id but not compensated.
type Service struct {
	store store.Store // Record store
}

// NewService wires a Service over the given store.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// typeLabel returns the Vietnamese verb for a transaction type.
func typeLabel(txType string) string {
	if txType == domain.TxDeposit {
		return "Nạp"
	}
	return "Rút"
}

// typeLabelLower returns the full lower-case action name.
func typeLabelLower(txType string) string {
	if txType == domain.TxDeposit {
		return "nạp tiền"
	}
	return "rút tiền"
}

// Submit validates a deposit/withdraw request and creates it in PENDING
// state together with one PENDING notification for the submitting user.
// The balance is not touched here.
func (s *Service) Submit(ctx context.Context, user domain.User, txType string, amount int64, bank domain.BankAccount) (domain.TransactionRecord, error) {
	if amount < MinAmount {
		return domain.TransactionRecord{}, ValidationError{Msg: "Số tiền tối thiểu là 10.000đ"}
	}
	if txType == domain.TxWithdraw && amount > user.Balance {
		return domain.TransactionRecord{}, ValidationError{Msg: "Số dư không đủ để thực hiện rút tiền"}
	}
	if bank.ID == "" {
		return domain.TransactionRecord{}, ValidationError{Msg: "Vui lòng chọn ngân hàng liên kết"}
	}

	tx := domain.TransactionRecord{
		ID:        "TX-" + uuid.NewString(),
		UserPhone: user.Phone,
		UserName:  user.Name, // Snapshot: renames must not alter past records
		Type:      txType,
		Amount:    amount,
		BankInfo:  bank.BankName + " - " + bank.AccountNumber,
		Status:    domain.StatusPending,
	}
	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return domain.TransactionRecord{}, err
	}
	notif := domain.AppNotification{
		ID:      uuid.NewString(),
		Title:   "Yêu cầu " + typeLabelLower(txType) + " đang chờ",
		Content: "Mẹ vừa tạo yêu cầu " + typeLabelLower(txType) + " " + strconv.FormatInt(amount, 10) + "đ. Vui lòng đợi quản trị viên phê duyệt.",
		Type:    domain.NotifPending,
	}
	if err := s.store.AddNotification(ctx, user.Phone, notif); err != nil {
		return domain.TransactionRecord{}, err
	}
	logrus.WithFields(logrus.Fields{
		"tx_id":  tx.ID,
		"phone":  user.Phone,
		"type":   txType,
		"amount": amount,
	}).Info("Transaction submitted")
	return tx, nil
}

// Approve applies a PENDING transaction: balance delta on the owning user,
// status flip to APPROVED, one SUCCESS notification. A missing or already
// decided transaction is a silent no-op. The withdrawal balance is not
// re-checked here.
func (s *Service) Approve(ctx context.Context, txID string) error {
	tx, err := s.store.GetTransaction(ctx, txID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if tx.Status != domain.StatusPending {
		return nil
	}
	user, err := s.store.GetUser(ctx, tx.UserPhone)
	if errors.Is(err, store.ErrNotFound) {
		logrus.WithFields(logrus.Fields{"tx_id": txID, "phone": tx.UserPhone}).Warn("Approve skipped, owner missing")
		return nil
	}
	if err != nil {
		return err
	}

	if tx.Type == domain.TxDeposit {
		user.Balance += tx.Amount
	} else {
		user.Balance -= tx.Amount
	}
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return err
	}
	tx.Status = domain.StatusApproved
	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		// Balance already applied but the status is still PENDING; needs
		// manual correction. Logged with the id so an operator can find it.
		logrus.WithFields(logrus.Fields{"tx_id": txID, "phone": user.Phone}).Error("Balance applied but status flip failed")
		return err
	}
	notif := domain.AppNotification{
		ID:      uuid.NewString(),
		Title:   "Giao dịch thành công",
		Content: "Lệnh " + typeLabel(tx.Type) + " " + strconv.FormatInt(tx.Amount, 10) + "đ đã được duyệt.",
		Type:    domain.NotifSuccess,
	}
	if err := s.store.AddNotification(ctx, tx.UserPhone, notif); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"tx_id":  txID,
		"phone":  user.Phone,
		"type":   tx.Type,
		"amount": tx.Amount,
	}).Info("Transaction approved")
	return nil
}

// Reject flips a PENDING transaction to REJECTED with the given reason and
// emits one ERROR notification. The balance is untouched. The reason must
// not be blank; rejecting a missing or decided transaction is a no-op.
func (s *Service) Reject(ctx context.Context, txID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ValidationError{Msg: "Vui lòng nhập lý do từ chối"}
	}
	tx, err := s.store.GetTransaction(ctx, txID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if tx.Status != domain.StatusPending {
		return nil
	}

	tx.Status = domain.StatusRejected
	tx.RejectionReason = reason
	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return err
	}
	notif := domain.AppNotification{
		ID:      uuid.NewString(),
		Title:   "Giao dịch thất bại",
		Content: "Lệnh giao dịch bị từ chối. Lý do: " + reason,
		Type:    domain.NotifError,
	}
	if err := s.store.AddNotification(ctx, tx.UserPhone, notif); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"tx_id":  txID,
		"phone":  tx.UserPhone,
		"reason": reason,
	}).Info("Transaction rejected")
	return nil
}
