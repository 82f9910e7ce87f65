package models

import "time"

// OTP: one-time verification code. Rows are append-only; a code is
// consumed by flipping Used, never by deleting the row.
type OTP struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;index;not null" json:"email"`
	Code      string    `gorm:"size:10;not null" json:"code"`
	Used      bool      `gorm:"not null;default:false" json:"used"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
