package accounts

import "gorm.io/gorm"

// Account represents a registered user in the database.
type Account struct {
	gorm.Model
	ContactAddress string `gorm:"uniqueIndex"`
	DisplayName    string
	PasswordHash   []byte
}
