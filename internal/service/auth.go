package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/pribylovaa/go-contacts-service/internal/models"
	"github.com/pribylovaa/go-contacts-service/internal/pkg/log"
	"github.com/pribylovaa/go-contacts-service/internal/pkg/redact"
	"github.com/pribylovaa/go-contacts-service/internal/storage"
)

// RegisterUser регистрирует нового пользователя и сразу выпускает access-токен.
func (s *Service) RegisterUser(ctx context.Context, email, password string) (*models.Token, error) {
	const op = "service.auth.RegisterUser"

	email, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	_, err = s.storage.UserByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := &models.User{Email: email, PasswordHash: hash}
	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_registered",
		"op", op,
		"user_id", user.ID,
		"email", redact.Email(email),
	)

	return s.issueToken(op, user.Email)
}

// LoginUser выполняет вход по email+пароль.
// Неизвестный email и неверный пароль дают одну и ту же ErrInvalidCredentials.
func (s *Service) LoginUser(ctx context.Context, email, password string) (*models.Token, error) {
	const op = "service.auth.LoginUser"

	email, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.storage.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Сравнение с фиктивным хэшем выравнивает время ответа
			// для зарегистрированных и незарегистрированных email.
			s.hasher.Verify(password, s.fakeHash())
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return s.issueToken(op, user.Email)
}

func (s *Service) issueToken(op, email string) (*models.Token, error) {
	access, exp, err := s.tokens.Issue(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.Token{
		AccessToken: access,
		TokenType:   models.TokenTypeBearer,
		ExpiresAt:   exp,
	}, nil
}

// fakeHash лениво считает bcrypt-хэш той же стоимости, что и реальные.
func (s *Service) fakeHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("contacts-service-dummy-password")
		if err == nil {
			s.dummyHash = h
		}
	})

	return s.dummyHash
}

// validateEmail обрезает пробелы и проверяет, что строка - голый адрес
// без display name. Регистр сохраняется.
func validateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}

	return email, nil
}
