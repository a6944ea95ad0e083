package domain

// Transaction type
const (
	TxDeposit  = "DEPOSIT"  // Deposit request
	TxWithdraw = "WITHDRAW" // Withdraw request
)

// Transaction status. Transitions are one-directional:
// PENDING -> APPROVED or PENDING -> REJECTED, nothing else.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// TransactionRecord Model. UserName and BankInfo are historical snapshots
// taken at submission time; renaming the user later must not alter them.
type TransactionRecord struct {
	ID              string `gorm:"primaryKey;size:36" json:"id"`                   // Transaction id
	UserPhone       string `gorm:"index;size:16" json:"userPhone"`              // Foreign key to the owning User
	UserName        string `json:"userName"`                                      // Display name snapshot
	Type            string `gorm:"size:16;index" json:"type"`                     // DEPOSIT or WITHDRAW
	Amount          int64  `gorm:"not null" json:"amount"`                        // Positive amount in whole currency units
	BankInfo        string `json:"bankInfo"`                                      // Free-text bank snapshot
	Status          string `gorm:"size:16;index;default:PENDING" json:"status"`   // PENDING, APPROVED or REJECTED
	RejectionReason string `json:"rejectionReason,omitempty"`                     // Set only on REJECTED
	CreatedAt       int64  `gorm:"autoCreateTime:milli" json:"timestamp"`         // Creation timestamp in milliseconds
}
