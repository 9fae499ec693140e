package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pribylovaa/go-contacts-service/internal/models"
	"github.com/pribylovaa/go-contacts-service/internal/pkg/log"
	"github.com/pribylovaa/go-contacts-service/internal/storage"
)

const bearerPrefix = "Bearer "

// Resolve превращает значение заголовка Authorization в пользователя.
// Любая неудача даёт ошибку: пользователь без успешной проверки не возвращается.
func (s *Service) Resolve(ctx context.Context, authHeader string) (*models.User, error) {
	const op = "service.identity.Resolve"

	// Пустой токен после префикса отдаётся на проверку и даёт ErrInvalidToken.
	raw, ok := strings.CutPrefix(authHeader, bearerPrefix)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingToken)
	}

	email, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user, ok := s.cachedUser(ctx, email); ok {
		return user, nil
	}

	user, err := s.storage.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUnknownUser)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.cacheUser(ctx, user)

	return user, nil
}

// cachedUser читает пользователя из кэша. Ошибки кэша логируются
// и приводят к чтению из хранилища.
func (s *Service) cachedUser(ctx context.Context, email string) (*models.User, bool) {
	if s.ucache == nil {
		return nil, false
	}

	user, ok, err := s.ucache.Get(ctx, email)
	if err != nil {
		log.From(ctx).Warn("user_cache_get_failed", "op", "service.identity.cachedUser", "err", err)
		return nil, false
	}

	return user, ok
}

func (s *Service) cacheUser(ctx context.Context, user *models.User) {
	if s.ucache == nil {
		return
	}

	if err := s.ucache.Set(ctx, user, s.cacheTTL); err != nil {
		log.From(ctx).Warn("user_cache_set_failed", "op", "service.identity.cacheUser", "err", err)
	}
}
