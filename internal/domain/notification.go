package domain

// Notification type
const (
	NotifSuccess = "SUCCESS"
	NotifError   = "ERROR"
	NotifInfo    = "INFO"
	NotifPending = "PENDING"
)

// AppNotification Model. Mutated only to flip the read flag.
type AppNotification struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`          // Notification id
	UserPhone string `gorm:"index;size:16" json:"-"`                // Foreign key to the owning User
	Title     string `json:"title"`                                 // Short title
	Content   string `json:"content"`                               // Body text
	Type      string `gorm:"size:16" json:"type"`                   // SUCCESS, ERROR, INFO or PENDING
	IsRead    bool   `gorm:"default:false" json:"isRead"`           // Read flag
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"timestamp"` // Creation timestamp in milliseconds
}
