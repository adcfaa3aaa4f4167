package models

import "time"

// PasswordReset tracks the single outstanding reset request per email.
// Requesting a new reset replaces the row; redeeming or an expired lookup
// deletes it. Expiry is measured from UpdatedAt, checked lazily on read.
type PasswordReset struct {
	Email       string    `gorm:"primaryKey" json:"email"`
	Token       string    `gorm:"index" json:"token"`
	RedirectURL string    `json:"redirect_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName keeps the conventional password_resets table name.
func (PasswordReset) TableName() string {
	return "password_resets"
}
