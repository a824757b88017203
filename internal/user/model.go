package user

import "time"

// User is a wallet holder in the demo ledger. Phone-only users are created on
// the fly when somebody pays an unknown number; they start with a zero balance
// and a placeholder name until the real owner signs up and the accounts merge.
type User struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"not null"`
	Email       *string `gorm:"uniqueIndex"`
	PhoneNumber *string `gorm:"uniqueIndex"`
	Balance     float64 `gorm:"not null;default:0"`
	PINHash     []byte  `gorm:"not null"`
	CreatedAt   time.Time
}

// TableName keeps the table name aligned with the seeded demo database.
func (User) TableName() string {
	return "users"
}
