package models

import "time"

// User - модель пользователя в системе.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
