package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pribylovaa/go-contacts-service/internal/config"
)

// TokenManager выпускает и проверяет access-токены.
// Полезная нагрузка: sub (email), iat, exp = iat + TTL.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption настраивает TokenManager.
type TokenOption func(*TokenManager)

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewTokenManager создаёт менеджер токенов из конфигурации.
// Ротация секрета инвалидирует все ранее выпущенные токены.
func NewTokenManager(cfg config.AuthConfig, opts ...TokenOption) *TokenManager {
	m := &TokenManager{
		secret: []byte(cfg.SecretKey),
		ttl:    cfg.AccessTokenTTL,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Issue подписывает токен для subject и возвращает его вместе со временем истечения.
// Claim exp хранится в целых секундах: дробная часть now+ttl отбрасывается,
// поэтому токен живёт от ttl-1s до ttl.
func (m *TokenManager) Issue(subject string) (string, time.Time, error) {
	const op = "auth.token.Issue"

	now := m.now().UTC()
	exp := jwt.NewNumericDate(now.Add(m.ttl))

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: exp,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return signed, exp.Time, nil
}

// Verify проверяет подпись и срок действия токена и возвращает subject.
// Истёкший токен с верной подписью - ErrTokenExpired, всё прочее - ErrInvalidToken.
func (m *TokenManager) Verify(tokenStr string) (string, error) {
	const op = "auth.token.Verify"

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (any, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims.Subject, nil
}
