package model

import (
	"time"
)

// User represents a registered account
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose password hash
	CreatedAt    time.Time `json:"createdAt"`
}
