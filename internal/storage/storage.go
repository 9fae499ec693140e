// storage задаёт контракт хранилища пользователей и контактов.
//
// Инвариант изоляции: каждая операция над контактами фильтруется по ownerID.
// Контакт чужого пользователя неотличим от отсутствующего (ErrNotFound).
package storage

//go:generate mockgen -destination=../../mocks/mock_storage.go -package=mocks github.com/pribylovaa/go-contacts-service/internal/storage Storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/go-contacts-service/internal/models"
)

var (
	// ErrNotFound - запись не найдена (или принадлежит другому пользователю).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists - нарушение уникальности (email).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создаёт пользователя и заполняет ID и CreatedAt.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email (с учётом регистра).
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id int64) (*models.User, error)
	// DeleteUser удаляет пользователя вместе со всеми его контактами.
	DeleteUser(ctx context.Context, id int64) error
}

// ContactStorage выполняет операции над контактами в рамках владельца.
type ContactStorage interface {
	// ListContacts возвращает контакты владельца в порядке создания.
	ListContacts(ctx context.Context, ownerID int64) ([]models.Contact, error)
	// SaveContact создаёт контакт и заполняет ID и таймстемпы.
	SaveContact(ctx context.Context, contact *models.Contact) error
	// UpdateContact атомарно применяет патч к контакту владельца.
	UpdateContact(ctx context.Context, id, ownerID int64, patch models.ContactPatch) (*models.Contact, error)
	// DeleteContact удаляет контакт владельца.
	DeleteContact(ctx context.Context, id, ownerID int64) error
}

// Storage задаёт контракт работы с БД.
type Storage interface {
	UserStorage
	ContactStorage
	// Ping проверяет доступность БД (readiness).
	Ping(ctx context.Context) error
	Close()
}
