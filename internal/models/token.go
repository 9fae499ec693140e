package models

import "time"

// TokenTypeBearer - тип токена в ответах register/login.
const TokenTypeBearer = "bearer"

// Token - выпущенный access-токен.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}
