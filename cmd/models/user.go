package models

import (
	"time"
)

// User is a ledger participant. The original system recorded passwords in
// plain text; here only a bcrypt hash is stored and it is never serialized.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"column:username;size:50;not null" json:"username"`
	Email        string    `gorm:"column:email;size:50;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	Balance      float64   `gorm:"column:balance;not null" json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
