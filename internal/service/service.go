// service содержит бизнес-логику contacts-service:
// регистрацию/вход пользователей, резолвинг личности по access-токену
// и операции над контактами в рамках владельца.
//
// Основные аспекты:
//   - Service не хранит состояние запроса; экземпляр безопасен для
//     конкурентного использования при потокобезопасном storage.Storage.
//   - Каждая операция над контактами принимает ownerID уже резолвнутого
//     пользователя; чужой контакт неотличим от отсутствующего.
//   - Ошибки возвращаются как sentinel-значения и маппятся в HTTP
//     единственной границей internal/errors.
package service

import (
	"errors"
	"sync"
	"time"

	"github.com/pribylovaa/go-contacts-service/internal/auth"
	"github.com/pribylovaa/go-contacts-service/internal/cache"
	"github.com/pribylovaa/go-contacts-service/internal/config"
	"github.com/pribylovaa/go-contacts-service/internal/storage"
)

var (
	// ErrMissingToken - заголовок Authorization отсутствует или без префикса "Bearer ".
	// Транспорт: HTTP 401.
	ErrMissingToken = errors.New("missing token")

	// ErrInvalidToken - токен некорректен по формату, подписи или алгоритму.
	// Транспорт: HTTP 401.
	ErrInvalidToken = auth.ErrInvalidToken

	// ErrTokenExpired - срок действия токена истёк.
	// Транспорт: HTTP 401.
	ErrTokenExpired = auth.ErrTokenExpired

	// ErrUnknownUser - токен валиден, но пользователя с таким email нет.
	// Транспорт: HTTP 401.
	ErrUnknownUser = errors.New("unknown user")

	// ErrEmailTaken - e-mail уже зарегистрирован.
	// Транспорт: HTTP 400.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials - пользователь не найден или пароль неверен.
	// Два случая намеренно не различаются. Транспорт: HTTP 401.
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrContactNotFound - контакт отсутствует или принадлежит другому пользователю.
	// Транспорт: HTTP 404.
	ErrContactNotFound = errors.New("contact not found")

	// ErrInvalidEmail - e-mail имеет некорректный формат.
	// Транспорт: HTTP 422.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrPasswordTooLong - пароль длиннее 72 байт.
	// Транспорт: HTTP 422.
	ErrPasswordTooLong = auth.ErrPasswordTooLong
)

// Service описывает бизнес-логику contacts-service.
type Service struct {
	storage storage.Storage
	hasher  *auth.PasswordHasher
	tokens  *auth.TokenManager

	ucache   cache.UserCache // может быть nil, если кэш не сконфигурирован
	cacheTTL time.Duration

	dummyOnce sync.Once
	dummyHash string
}

// New создаёт новый экземпляр Service.
// opts пробрасываются в auth.NewTokenManager (например, auth.WithClock в тестах).
func New(storage storage.Storage, cfg config.AuthConfig, opts ...auth.TokenOption) *Service {
	return &Service{
		storage: storage,
		hasher:  auth.NewPasswordHasher(cfg.BcryptCost),
		tokens:  auth.NewTokenManager(cfg, opts...),
	}
}

// SetUserCache устанавливает кэш пользователей для Resolve (опционально).
func (s *Service) SetUserCache(c cache.UserCache, ttl time.Duration) {
	s.ucache = c
	s.cacheTTL = ttl
}
