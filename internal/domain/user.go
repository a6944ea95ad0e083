package domain

// User Model. The phone number is the primary key and the only stable
// identifier across renames.
type User struct {
	Phone    string        `gorm:"primaryKey;size:16" json:"phone"`                    // Unique phone number (primary key)
	Name     string        `gorm:"not null" json:"name"`                               // Display name
	Password string        `gorm:"not null" json:"-"`                                  // bcrypt hash, never serialized
	Balance  int64         `gorm:"not null;default:0" json:"balance"`                  // Balance in whole currency units
	Avatar   string        `json:"avatar"`                                             // Avatar URL
	IsAdmin  bool          `gorm:"default:false" json:"isAdmin"`                       // Admin flag
	Banks    []BankAccount `gorm:"foreignKey:UserPhone;references:Phone" json:"banks"` // Linked bank accounts, in insertion order
}

// BankAccount Model. Owned exclusively by one User; never persisted on its own.
type BankAccount struct {
	ID            string `gorm:"primaryKey;size:36" json:"id"`  // Account id
	UserPhone     string `gorm:"index;size:16" json:"-"`        // Foreign key to the owning User
	BankName      string `gorm:"not null" json:"bankName"`      // Bank name
	AccountNumber string `gorm:"not null" json:"accountNumber"` // Account number
	AccountHolder string `json:"accountHolder"`                 // Account holder name
	Position      int    `json:"-"`                             // Insertion order within the user's list
}
